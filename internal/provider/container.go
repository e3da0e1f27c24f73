package provider

import (
	"time"

	"github.com/openingclouds/internal/authz"
	"github.com/openingclouds/internal/cache"
	"github.com/openingclouds/internal/config"
	"github.com/openingclouds/internal/lock"
	"github.com/openingclouds/internal/logger"
	"github.com/openingclouds/internal/models"
	"github.com/openingclouds/internal/queue"
	"github.com/openingclouds/internal/repository"
	"github.com/openingclouds/internal/search"
	"github.com/openingclouds/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client
	SearchIndex *search.Index
	VaultLocker lock.Locker

	// Repositories
	AdminRepo            repository.AdminRepository
	PostRepo             repository.PostRepository
	PostViewRepo         repository.PostViewRepository
	SyncLogRepo          repository.SyncLogRepository
	ObsidianDocumentRepo repository.ObsidianDocumentRepository
	ObsidianSyncRunRepo  repository.ObsidianSyncRunRepository
	TimelineRepo         repository.TimelineRepository
	TravelRepo           repository.TravelRepository
	SocialFriendRepo     repository.SocialFriendRepository
	HighlightRepo        repository.HighlightRepository
	StatsRepo            repository.StatsRepository
	AuthzAuditLogRepo    repository.AuthzAuditLogRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	AuthzAuditService   *service.AuthzAuditService
	PostService         *service.PostService
	ObsidianSyncService *service.ObsidianSyncService
	VaultSyncService    *service.VaultSyncService
	DocumentPoolService *service.DocumentPoolService
	TimelineService     *service.TimelineService
	TravelService       *service.TravelService
	SocialService       *service.SocialService
	HighlightService    *service.HighlightService
	HomeService         *service.HomeService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) *Container {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}
	c.initSearchIndex()
	c.initVaultLocker()

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c
}

func (c *Container) initSearchIndex() {
	if !c.Config.Search.Enabled {
		return
	}
	index, err := search.Open(c.Config.Search.IndexPath)
	if err != nil {
		logger.Errorw("provider_open_search_index_failed", "path", c.Config.Search.IndexPath, "error", err)
		return
	}
	c.SearchIndex = index
}

func (c *Container) initVaultLocker() {
	ttl := time.Duration(c.Config.Obsidian.LockTTLSeconds) * time.Second
	if client := cache.Client(); cache.Enabled() && client != nil {
		c.VaultLocker = lock.NewRedisLocker(client, c.Config.Redis.Prefix, ttl)
		return
	}
	c.VaultLocker = lock.NewFileLocker(c.Config.Obsidian.LockDir, ttl)
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.PostRepo = repository.NewPostRepository(db)
	c.PostViewRepo = repository.NewPostViewRepository(db)
	c.SyncLogRepo = repository.NewSyncLogRepository(db)
	c.ObsidianDocumentRepo = repository.NewObsidianDocumentRepository(db)
	c.ObsidianSyncRunRepo = repository.NewObsidianSyncRunRepository(db)
	c.TimelineRepo = repository.NewTimelineRepository(db)
	c.TravelRepo = repository.NewTravelRepository(db)
	c.SocialFriendRepo = repository.NewSocialFriendRepository(db)
	c.HighlightRepo = repository.NewHighlightRepository(db)
	c.StatsRepo = repository.NewStatsRepository(db)
	c.AuthzAuditLogRepo = repository.NewAuthzAuditLogRepository(db)
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	// 检索关闭时必须传入 nil 接口，而不是 nil 指针
	var indexer service.PostSearchIndexer
	var engine service.PostSearchEngine
	if c.SearchIndex != nil {
		indexer = c.SearchIndex
		engine = c.SearchIndex
	}

	obsidianCfg := c.Config.Obsidian
	throttleTTL := time.Duration(c.Config.Security.ViewThrottle) * time.Second

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.AuthzAuditService = service.NewAuthzAuditService(c.AuthzAuditLogRepo)
	c.PostService = service.NewPostService(c.PostRepo, c.PostViewRepo, engine, cache.NewViewThrottle(throttleTTL))
	c.ObsidianSyncService = service.NewObsidianSyncService(
		c.PostRepo,
		c.SyncLogRepo,
		indexer,
		obsidianCfg.PublishTag,
		obsidianCfg.DefaultCategory,
	)
	c.VaultSyncService = service.NewVaultSyncService(obsidianCfg, c.ObsidianSyncService, c.PostRepo, c.VaultLocker)
	c.DocumentPoolService = service.NewDocumentPoolService(
		obsidianCfg,
		c.ObsidianDocumentRepo,
		c.ObsidianSyncRunRepo,
		c.PostRepo,
		c.ObsidianSyncService,
		indexer,
		c.VaultLocker,
	)
	c.TimelineService = service.NewTimelineService(c.TimelineRepo)
	c.TravelService = service.NewTravelService(c.TravelRepo)
	c.SocialService = service.NewSocialService(c.SocialFriendRepo)
	c.HighlightService = service.NewHighlightService(c.HighlightRepo)
	c.HomeService = service.NewHomeService(
		c.Config.Site,
		c.StatsRepo,
		c.TimelineService,
		c.HighlightService,
		c.TravelService,
		c.SocialService,
	)
}

// Close 释放容器持有的资源
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
	if c.SearchIndex != nil {
		if err := c.SearchIndex.Close(); err != nil {
			logger.Warnw("provider_close_search_index_failed", "error", err)
		}
	}
	if err := cache.Close(); err != nil {
		logger.Warnw("provider_close_redis_failed", "error", err)
	}
}
