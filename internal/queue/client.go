package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openingclouds/internal/config"
	"github.com/openingclouds/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// DefaultQueue 默认队列名称
	DefaultQueue = constants.QueueDefault
	// vaultTaskUniqueTTL 同一笔记库任务在此时间内只入队一次
	vaultTaskUniqueTTL = 10 * time.Minute
)

// ErrQueueDisabled 队列未启用
var ErrQueueDisabled = errors.New("queue disabled")

// EnqueueResult 入队结果
type EnqueueResult struct {
	TaskID string `json:"task_id"`
	Queue  string `json:"queue"`
	Type   string `json:"type"`
}

// Client 队列客户端封装
type Client struct {
	client       *asynq.Client
	enabled      bool
	defaultQueue string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	if cfg == nil || !cfg.Enabled {
		return &Client{enabled: false, defaultQueue: DefaultQueue}, nil
	}
	opt := buildRedisOpt(cfg)
	client := asynq.NewClient(opt)
	return &Client{
		client:       client,
		enabled:      true,
		defaultQueue: DefaultQueue,
	}, nil
}

// Enabled 判断是否启用
func (c *Client) Enabled() bool {
	return c != nil && c.enabled && c.client != nil
}

// Close 关闭客户端
func (c *Client) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

// EnqueueVaultSync 推送笔记库批量同步任务
func (c *Client) EnqueueVaultSync(payload VaultSyncPayload, opts ...asynq.Option) (*EnqueueResult, error) {
	if !c.Enabled() {
		return nil, ErrQueueDisabled
	}
	task, err := NewVaultSyncTask(payload)
	if err != nil {
		return nil, err
	}
	return c.enqueue(task, opts...)
}

// EnqueueDocumentIndex 推送文档池索引任务
func (c *Client) EnqueueDocumentIndex(payload DocumentIndexPayload, opts ...asynq.Option) (*EnqueueResult, error) {
	if !c.Enabled() {
		return nil, ErrQueueDisabled
	}
	task, err := NewDocumentIndexTask(payload)
	if err != nil {
		return nil, err
	}
	return c.enqueue(task, opts...)
}

func (c *Client) enqueue(task *asynq.Task, opts ...asynq.Option) (*EnqueueResult, error) {
	options := append([]asynq.Option{
		asynq.Queue(c.defaultQueue),
		asynq.MaxRetry(0),
		asynq.Unique(vaultTaskUniqueTTL),
	}, opts...)
	info, err := c.client.Enqueue(task, options...)
	if err != nil {
		return nil, err
	}
	return &EnqueueResult{TaskID: info.ID, Queue: info.Queue, Type: info.Type}, nil
}

// BuildServerConfig 生成队列服务配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	opt := buildRedisOpt(cfg)
	concurrency := 1
	if cfg != nil && cfg.Concurrency > 0 {
		concurrency = cfg.Concurrency
	}
	queues := map[string]int{DefaultQueue: 1}
	if cfg != nil && len(cfg.Queues) > 0 {
		queues = cfg.Queues
	}
	return opt, asynq.Config{
		Concurrency: concurrency,
		Queues:      queues,
	}
}

// NewScheduler 按 cron 表达式定时推送文档池索引任务，表达式为空时返回 nil
func NewScheduler(cfg *config.QueueConfig, cronSpec string) (*asynq.Scheduler, error) {
	cronSpec = strings.TrimSpace(cronSpec)
	if cfg == nil || !cfg.Enabled || cronSpec == "" {
		return nil, nil
	}
	task, err := NewDocumentIndexTask(DocumentIndexPayload{Trigger: constants.SyncRunTriggerScheduled})
	if err != nil {
		return nil, err
	}
	scheduler := asynq.NewScheduler(buildRedisOpt(cfg), &asynq.SchedulerOpts{Location: time.Local})
	if _, err := scheduler.Register(cronSpec, task, asynq.Queue(DefaultQueue), asynq.MaxRetry(0)); err != nil {
		return nil, fmt.Errorf("register index cron %q: %w", cronSpec, err)
	}
	return scheduler, nil
}

func buildRedisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	host := "127.0.0.1"
	port := 6379
	password := ""
	db := 0
	if cfg != nil {
		if strings.TrimSpace(cfg.Host) != "" {
			host = strings.TrimSpace(cfg.Host)
		}
		if cfg.Port > 0 {
			port = cfg.Port
		}
		password = cfg.Password
		db = cfg.DB
	}
	return asynq.RedisClientOpt{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		Password: password,
		DB:       db,
	}
}
