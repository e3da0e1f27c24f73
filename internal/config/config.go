package config

import (
	"fmt"
	"strings"

	"github.com/openingclouds/internal/logger"

	"github.com/spf13/viper"
)

// Config 应用配置结构
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Database DatabaseConfig `mapstructure:"database"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Queue    QueueConfig    `mapstructure:"queue"`
	CORS     CORSConfig     `mapstructure:"cors"`
	Security SecurityConfig `mapstructure:"security"`
	Obsidian ObsidianConfig `mapstructure:"obsidian"`
	Search   SearchConfig   `mapstructure:"search"`
	Site     SiteConfig     `mapstructure:"site"`
	Remote   RemoteConfig   `mapstructure:"remote"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug / release
}

// LogConfig 日志配置
type LogConfig struct {
	Dir        string `mapstructure:"dir"`
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	Compress   bool   `mapstructure:"compress"`
}

// ToLoggerOptions 转换为 logger 配置
func (c LogConfig) ToLoggerOptions() logger.Options {
	return logger.Options{
		Dir:        c.Dir,
		Filename:   c.Filename,
		MaxSizeMB:  c.MaxSizeMB,
		MaxBackups: c.MaxBackups,
		MaxAgeDays: c.MaxAgeDays,
		Compress:   c.Compress,
	}
}

// DatabasePoolConfig 数据库连接池配置
type DatabasePoolConfig struct {
	MaxOpenConns           int `mapstructure:"max_open_conns"`
	MaxIdleConns           int `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeSeconds int `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTimeSeconds int `mapstructure:"conn_max_idle_time_seconds"`
}

// DatabaseConfig 数据库配置
type DatabaseConfig struct {
	Driver string             `mapstructure:"driver"` // 数据库驱动（sqlite/postgres）
	DSN    string             `mapstructure:"dsn"`    // 数据库连接串
	Pool   DatabasePoolConfig `mapstructure:"pool"`
}

// JWTConfig JWT 配置
type JWTConfig struct {
	SecretKey   string `mapstructure:"secret"`
	ExpireHours int    `mapstructure:"expire_hours"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// QueueConfig 异步队列配置
type QueueConfig struct {
	Enabled     bool           `mapstructure:"enabled"`
	Host        string         `mapstructure:"host"`
	Port        int            `mapstructure:"port"`
	Password    string         `mapstructure:"password"`
	DB          int            `mapstructure:"db"`
	Concurrency int            `mapstructure:"concurrency"`
	Queues      map[string]int `mapstructure:"queues"`
}

// CORSConfig 跨域配置
type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	LoginRateLimit LoginRateLimitConfig `mapstructure:"login_rate_limit"`
	PasswordPolicy PasswordPolicyConfig `mapstructure:"password_policy"`
	ViewThrottle   int                  `mapstructure:"view_throttle_seconds"`
}

// LoginRateLimitConfig 登录限流配置
type LoginRateLimitConfig struct {
	WindowSeconds int `mapstructure:"window_seconds"`
	MaxAttempts   int `mapstructure:"max_attempts"`
	BlockSeconds  int `mapstructure:"block_seconds"`
}

// PasswordPolicyConfig 密码策略配置
type PasswordPolicyConfig struct {
	MinLength      int  `mapstructure:"min_length"`
	RequireUpper   bool `mapstructure:"require_upper"`
	RequireLower   bool `mapstructure:"require_lower"`
	RequireNumber  bool `mapstructure:"require_number"`
	RequireSpecial bool `mapstructure:"require_special"`
}

// ObsidianConfig Obsidian 同步配置
type ObsidianConfig struct {
	VaultPath           string   `mapstructure:"vault_path"`            // 笔记库根目录
	IncludeRoots        []string `mapstructure:"include_roots"`         // 仅扫描的子目录（为空时扫描全库）
	ExcludedDirs        []string `mapstructure:"excluded_dirs"`         // 同步时排除的目录名
	PoolExcludedDirs    []string `mapstructure:"pool_excluded_dirs"`    // 文档池索引时排除的目录名
	PublishTag          string   `mapstructure:"publish_tag"`           // 发布标签
	DefaultCategory     string   `mapstructure:"default_category"`      // 默认分类
	Mode                string   `mapstructure:"mode"`                  // 冲突模式
	ReconcileBehavior   string   `mapstructure:"reconcile_behavior"`    // 对账行为
	MissingBehavior     string   `mapstructure:"missing_behavior"`      // 文档池缺失处理
	AutoUpdatePublished bool     `mapstructure:"auto_update_published"` // 文档池是否自动刷新已发布文章
	SyncToken           string   `mapstructure:"sync_token"`            // 远程推送令牌
	IndexCron           string   `mapstructure:"index_cron"`            // 定时索引 cron 表达式
	LockDir             string   `mapstructure:"lock_dir"`              // 文件锁目录（未启用 Redis 时）
	LockTTLSeconds      int      `mapstructure:"lock_ttl_seconds"`      // 笔记库锁超时
}

// SearchConfig 全文检索配置
type SearchConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	IndexPath string `mapstructure:"index_path"` // 为空时使用内存索引
}

// SiteConfig 站点展示配置
type SiteConfig struct {
	LaunchDate   string `mapstructure:"launch_date"` // YYYY-MM-DD
	HeroTitle    string `mapstructure:"hero_title"`
	HeroSubtitle string `mapstructure:"hero_subtitle"`
	ContactEmail string `mapstructure:"contact_email"`
	GithubURL    string `mapstructure:"github_url"`
}

// RemoteConfig 远程部署推送配置
type RemoteConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	Token          string `mapstructure:"token"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// Load 从 config.yml 加载配置
func Load() *Config {
	return LoadFrom("")
}

// LoadFrom 从指定文件加载配置，path 为空时按默认路径查找
func LoadFrom(path string) *Config {
	if strings.TrimSpace(path) != "" {
		viper.SetConfigFile(path)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")     // 从当前目录查找
		viper.AddConfigPath("./")    // 备用路径
		viper.AddConfigPath("../")   // 如果从 cmd/server 运行
		viper.AddConfigPath("./etc") // etc 文件夹
	}

	setDefaults(viper.GetViper())

	// 环境变量支持
	viper.AutomaticEnv()                                   // 自动读取环境变量
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_")) // 将 . 替换为 _ (例如 server.port -> SERVER_PORT)

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		logger.Warnw("config_file_read_failed",
			"error", err,
			"fallback", "env_or_defaults",
		)
	} else {
		logger.Infow("config_file_loaded", "file", viper.ConfigFileUsed())
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		logger.Errorw("config_unmarshal_failed", "error", err)
		panic(fmt.Errorf("配置解析失败: %w", err))
	}

	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("log.dir", "")
	v.SetDefault("log.filename", "app.log")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "./db/openingclouds.db")
	v.SetDefault("database.pool.max_open_conns", 1)
	v.SetDefault("database.pool.max_idle_conns", 1)
	v.SetDefault("database.pool.conn_max_lifetime_seconds", 0)
	v.SetDefault("database.pool.conn_max_idle_time_seconds", 0)
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.expire_hours", 24)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "127.0.0.1")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "oc")
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "127.0.0.1")
	v.SetDefault("queue.port", 6379)
	v.SetDefault("queue.password", "")
	v.SetDefault("queue.db", 1)
	v.SetDefault("queue.concurrency", 2)
	v.SetDefault("queue.queues", map[string]int{
		"default": 1,
	})
	v.SetDefault("cors.allowed_origins", []string{"*"})
	v.SetDefault("cors.allowed_methods", []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowed_headers", []string{
		"Content-Type",
		"Content-Length",
		"Accept-Encoding",
		"Authorization",
		"Cache-Control",
		"X-Requested-With",
		"X-Sync-Token",
	})
	v.SetDefault("cors.allow_credentials", true)
	v.SetDefault("cors.max_age", 600)
	v.SetDefault("security.login_rate_limit.window_seconds", 300)
	v.SetDefault("security.login_rate_limit.max_attempts", 5)
	v.SetDefault("security.login_rate_limit.block_seconds", 900)
	v.SetDefault("security.password_policy.min_length", 8)
	v.SetDefault("security.password_policy.require_upper", true)
	v.SetDefault("security.password_policy.require_lower", true)
	v.SetDefault("security.password_policy.require_number", true)
	v.SetDefault("security.password_policy.require_special", false)
	v.SetDefault("security.view_throttle_seconds", 1800)
	v.SetDefault("obsidian.vault_path", "")
	v.SetDefault("obsidian.include_roots", []string{})
	v.SetDefault("obsidian.excluded_dirs", []string{})
	v.SetDefault("obsidian.pool_excluded_dirs", []string{})
	v.SetDefault("obsidian.publish_tag", "publish")
	v.SetDefault("obsidian.default_category", "learning")
	v.SetDefault("obsidian.mode", "overwrite")
	v.SetDefault("obsidian.reconcile_behavior", "draft")
	v.SetDefault("obsidian.missing_behavior", "draft")
	v.SetDefault("obsidian.auto_update_published", false)
	v.SetDefault("obsidian.sync_token", "")
	v.SetDefault("obsidian.index_cron", "")
	v.SetDefault("obsidian.lock_dir", "")
	v.SetDefault("obsidian.lock_ttl_seconds", 900)
	v.SetDefault("search.enabled", true)
	v.SetDefault("search.index_path", "")
	v.SetDefault("site.launch_date", "2026-02-01")
	v.SetDefault("site.hero_title", "openingClouds")
	v.SetDefault("site.hero_subtitle", "")
	v.SetDefault("site.contact_email", "")
	v.SetDefault("site.github_url", "")
	v.SetDefault("remote.base_url", "")
	v.SetDefault("remote.token", "")
	v.SetDefault("remote.timeout_seconds", 30)
}
