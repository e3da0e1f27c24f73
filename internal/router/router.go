package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/openingclouds/internal/authz"
	"github.com/openingclouds/internal/cache"
	"github.com/openingclouds/internal/config"
	"github.com/openingclouds/internal/constants"
	adminhandlers "github.com/openingclouds/internal/http/handlers/admin"
	publichandlers "github.com/openingclouds/internal/http/handlers/public"
	"github.com/openingclouds/internal/http/response"
	"github.com/openingclouds/internal/logger"
	"github.com/openingclouds/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = constants.RedisPrefixDefault
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxAttempts,
		BlockSeconds:  cfg.Security.LoginRateLimit.BlockSeconds,
		MessageKey:    "error.login_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		apiV1.GET("/health", publicHandler.Health)

		// 公开接口
		public := apiV1.Group("/public")
		{
			public.GET("/home", publicHandler.GetHome)
			public.GET("/posts", publicHandler.GetPosts)
			public.GET("/posts/search", publicHandler.SearchPosts)
			public.GET("/posts/:slug", publicHandler.GetPostBySlug)
			public.POST("/posts/:slug/view", publicHandler.RecordPostView)
			public.GET("/timeline", publicHandler.GetTimeline)
			public.GET("/highlights", publicHandler.GetHighlights)
			public.GET("/travel", publicHandler.GetTravel)
			public.GET("/social-graph", publicHandler.GetSocialGraph)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			// 同步接口（JWT + RBAC 或同步令牌）
			syncGroup := admin.Group("", SyncTokenOrAdminMiddleware(cfg.Obsidian.SyncToken, cfg.JWT.SecretKey, c.AdminRepo, c.AuthzService))
			{
				syncGroup.POST("/obsidian-sync", adminHandler.SyncObsidianPayload)
				syncGroup.POST("/obsidian-sync/reconcile", adminHandler.ReconcileObsidian)
			}

			// 需要鉴权的接口
			authorized := admin.Group("", JWTAuthMiddleware(cfg.JWT.SecretKey, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				// 当前管理员
				authorized.GET("/me", adminHandler.GetAdminMe)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 文章管理
				authorized.GET("/posts", adminHandler.GetAdminPosts)
				authorized.POST("/posts", adminHandler.CreatePost)
				authorized.GET("/posts/:id", adminHandler.GetAdminPost)
				authorized.PUT("/posts/:id", adminHandler.UpdatePost)
				authorized.DELETE("/posts/:id", adminHandler.DeletePost)
				authorized.PATCH("/posts/:id/status", adminHandler.UpdatePostStatus)
				authorized.POST("/search/rebuild", adminHandler.RebuildSearchIndex)

				// 时间线
				authorized.GET("/timeline", adminHandler.ListTimeline)
				authorized.POST("/timeline", adminHandler.CreateTimeline)
				authorized.POST("/timeline/reorder", adminHandler.ReorderTimeline)
				authorized.PUT("/timeline/:id", adminHandler.UpdateTimeline)
				authorized.DELETE("/timeline/:id", adminHandler.DeleteTimeline)

				// 旅行足迹
				authorized.GET("/travel", adminHandler.ListTravel)
				authorized.POST("/travel", adminHandler.CreateTravel)
				authorized.PUT("/travel/:id", adminHandler.UpdateTravel)
				authorized.DELETE("/travel/:id", adminHandler.DeleteTravel)

				// 社交关系
				authorized.GET("/social", adminHandler.ListSocial)
				authorized.POST("/social", adminHandler.CreateSocial)
				authorized.PUT("/social/:id", adminHandler.UpdateSocial)
				authorized.DELETE("/social/:id", adminHandler.DeleteSocial)

				// 高光时刻
				authorized.GET("/highlights/stages", adminHandler.ListHighlightStages)
				authorized.POST("/highlights/stages", adminHandler.CreateHighlightStage)
				authorized.PUT("/highlights/stages/:id", adminHandler.UpdateHighlightStage)
				authorized.DELETE("/highlights/stages/:id", adminHandler.DeleteHighlightStage)
				authorized.POST("/highlights/stages/:id/items", adminHandler.CreateHighlightItem)
				authorized.PUT("/highlights/items/:id", adminHandler.UpdateHighlightItem)
				authorized.DELETE("/highlights/items/:id", adminHandler.DeleteHighlightItem)
				authorized.POST("/highlights/reorder", adminHandler.ReorderHighlights)

				// Obsidian 批量同步与文档池
				authorized.POST("/obsidian-sync/vault", adminHandler.SyncVault)
				authorized.POST("/obsidian-documents/index", adminHandler.IndexObsidianDocuments)
				authorized.GET("/obsidian-documents", adminHandler.ListObsidianDocuments)
				authorized.GET("/obsidian-documents/:id", adminHandler.GetObsidianDocument)
				authorized.GET("/obsidian-sync-runs", adminHandler.ListObsidianSyncRuns)
				authorized.GET("/sync-logs", adminHandler.ListSyncLogs)
				authorized.GET("/sync-logs/:id", adminHandler.GetSyncLog)

				// 权限管理
				authorized.GET("/admins", adminHandler.ListAdmins)
				authorized.POST("/admins", adminHandler.CreateAdmin)
				authorized.GET("/admins/:id/roles", adminHandler.GetAdminRoles)
				authorized.PUT("/admins/:id/roles", adminHandler.SetAdminRoles)
				authorized.GET("/authz/roles", adminHandler.ListRoles)
				authorized.GET("/authz/audit-logs", adminHandler.ListAuthzAuditLogs)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", publicHandler.Health)

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
