package router

import (
	"crypto/subtle"
	"strconv"
	"strings"
	"time"

	"github.com/openingclouds/internal/authz"
	"github.com/openingclouds/internal/cache"
	"github.com/openingclouds/internal/config"
	"github.com/openingclouds/internal/constants"
	"github.com/openingclouds/internal/http/response"
	"github.com/openingclouds/internal/i18n"
	"github.com/openingclouds/internal/logger"
	"github.com/openingclouds/internal/repository"
	"github.com/openingclouds/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = "request_id"
const requestIDHeader = "X-Request-ID"
const adminIsSuperContextKey = "admin_is_super"
const syncTokenContextKey = "sync_token_auth"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			"X-CSRF-Token",
			constants.SyncTokenHeader,
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// JWTAuthMiddleware JWT 鉴权中间件
func JWTAuthMiddleware(secretKey string, adminRepo repository.AdminRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticateAdmin(c, secretKey, adminRepo) {
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminRBACMiddleware 管理端 RBAC 鉴权中间件
func AdminRBACMiddleware(authzService *authz.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authorizeAdmin(c, authzService) {
			c.Abort()
			return
		}
		c.Next()
	}
}

// SyncTokenOrAdminMiddleware 同步接口鉴权：携带同步令牌时校验令牌，否则走 JWT + RBAC
func SyncTokenOrAdminMiddleware(syncToken, secretKey string, adminRepo repository.AdminRepository, authzService *authz.Service) gin.HandlerFunc {
	expected := []byte(strings.TrimSpace(syncToken))
	return func(c *gin.Context) {
		provided := strings.TrimSpace(c.GetHeader(constants.SyncTokenHeader))
		if provided != "" {
			if len(expected) == 0 || subtle.ConstantTimeCompare([]byte(provided), expected) != 1 {
				logger.Warnw("sync_token_rejected",
					"path", c.Request.URL.Path,
					"client_ip", c.ClientIP(),
				)
				msg := i18n.T(i18n.ResolveLocale(c), "error.sync_token_invalid")
				response.Unauthorized(c, msg)
				c.Abort()
				return
			}
			c.Set(syncTokenContextKey, true)
			c.Next()
			return
		}
		if !authenticateAdmin(c, secretKey, adminRepo) || !authorizeAdmin(c, authzService) {
			c.Abort()
			return
		}
		c.Next()
	}
}

func rejectUnauthorized(c *gin.Context, key string) bool {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	response.Unauthorized(c, msg)
	return false
}

// authenticateAdmin 校验 Bearer token，成功时写入管理员上下文；失败时已写入响应
func authenticateAdmin(c *gin.Context, secretKey string, adminRepo repository.AdminRepository) bool {
	if secretKey == "" {
		return rejectUnauthorized(c, "error.jwt_secret_missing")
	}
	if adminRepo == nil {
		return rejectUnauthorized(c, "error.token_invalid")
	}
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return rejectUnauthorized(c, "error.auth_header_missing")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return rejectUnauthorized(c, "error.auth_header_invalid")
	}

	tokenString := parts[1]
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	claims := &service.JWTClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secretKey), nil
	})
	if err != nil || !token.Valid || claims.AdminID == 0 {
		return rejectUnauthorized(c, "error.token_invalid")
	}

	state, err := cache.LoadAdminAuthState(c.Request.Context(), claims.AdminID, adminRepo.GetByID)
	if err != nil || state == nil {
		return rejectUnauthorized(c, "error.token_invalid")
	}
	var issuedAt time.Time
	if claims.IssuedAt != nil {
		issuedAt = claims.IssuedAt.Time
	}
	if !state.Accepts(claims.TokenVersion, issuedAt) {
		return rejectUnauthorized(c, "error.token_revoked")
	}

	c.Set("admin_id", claims.AdminID)
	c.Set("username", claims.Username)
	c.Set(adminIsSuperContextKey, state.IsSuper)
	return true
}

// authorizeAdmin 超级管理员直接放行，其余按 casbin 策略校验路由模板与方法
func authorizeAdmin(c *gin.Context, authzService *authz.Service) bool {
	if authzService == nil {
		logger.Errorw("admin_rbac_service_unavailable")
		return rejectUnauthorized(c, "error.unauthorized")
	}

	if isSuper, ok := c.Get(adminIsSuperContextKey); ok {
		if superValue, typeOK := isSuper.(bool); typeOK && superValue {
			return true
		}
	}

	adminIDRaw, exists := c.Get("admin_id")
	if !exists {
		return rejectUnauthorized(c, "error.unauthorized")
	}
	adminID, _ := adminIDRaw.(uint)
	if adminID == 0 {
		return rejectUnauthorized(c, "error.unauthorized")
	}

	resource := c.FullPath()
	if strings.TrimSpace(resource) == "" {
		resource = c.Request.URL.Path
	}

	allowed, err := authzService.EnforceAdmin(adminID, resource, c.Request.Method)
	if err != nil {
		logger.Errorw("admin_rbac_enforce_failed",
			"admin_id", adminID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		return rejectUnauthorized(c, "error.unauthorized")
	}
	if !allowed {
		logger.Warnw("admin_rbac_permission_denied",
			"admin_id", adminID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"resource", authz.NormalizeObject(resource),
		)
		msg := i18n.T(i18n.ResolveLocale(c), "error.forbidden")
		response.Forbidden(c, msg)
		return false
	}
	return true
}

