package shared

import (
	"errors"

	"github.com/openingclouds/internal/authz"
	"github.com/openingclouds/internal/http/response"
	"github.com/openingclouds/internal/i18n"
	"github.com/openingclouds/internal/logger"
	"github.com/openingclouds/internal/queue"
	"github.com/openingclouds/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// RequestLog 提供携带 request_id 的日志实例。
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c == nil {
		return logger.S()
	}
	if requestID, ok := c.Get("request_id"); ok {
		if id, ok := requestID.(string); ok && id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 返回国际化错误响应，并在有原始错误时记录日志。
func RespondError(c *gin.Context, code int, key string, err error) {
	locale := i18n.ResolveLocale(c)
	msg := i18n.T(locale, key)
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Fail(c, appErr)
}

// RespondErrorWithMsg 返回自定义消息错误响应，并在有原始错误时记录日志。
func RespondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		RequestLog(c).Errorw("handler_error",
			"code", appErr.Code,
			"message", appErr.Message,
			"error", err,
		)
	}
	response.Fail(c, appErr)
}

// MappedError 业务错误到接口错误响应的映射。
type MappedError struct {
	Target error
	Code   int
	Key    string
}

// serviceErrorRules 业务哨兵错误的统一映射，命中时不记录错误日志。
var serviceErrorRules = []MappedError{
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrSlugRequired, Code: response.CodeBadRequest, Key: "error.slug_required"},
	{Target: service.ErrSyncSlugRequired, Code: response.CodeBadRequest, Key: "error.slug_required"},
	{Target: service.ErrSlugExists, Code: response.CodeConflict, Key: "error.slug_exists"},
	{Target: service.ErrSyncSlugExhausted, Code: response.CodeConflict, Key: "error.slug_exists"},
	{Target: service.ErrInvalidCategory, Code: response.CodeBadRequest, Key: "error.category_invalid"},
	{Target: service.ErrInvalidTimelineNode, Code: response.CodeBadRequest, Key: "error.timeline_invalid"},
	{Target: service.ErrBadTravelPlace, Code: response.CodeBadRequest, Key: "error.travel_invalid"},
	{Target: service.ErrTravelPlaceExists, Code: response.CodeConflict, Key: "error.travel_exists"},
	{Target: service.ErrInvalidSocialFriend, Code: response.CodeBadRequest, Key: "error.social_invalid"},
	{Target: service.ErrInvalidHighlight, Code: response.CodeBadRequest, Key: "error.highlight_invalid"},
	{Target: service.ErrHighlightStageNotFound, Code: response.CodeNotFound, Key: "error.highlight_stage_not_found"},
	{Target: service.ErrInvalidSourceDir, Code: response.CodeBadRequest, Key: "error.vault_path_invalid"},
	{Target: service.ErrVaultLocked, Code: response.CodeConflict, Key: "error.vault_locked"},
	{Target: service.ErrSearchDisabled, Code: response.CodeBadRequest, Key: "error.search_unavailable"},
	{Target: service.ErrAdminExists, Code: response.CodeConflict, Key: "error.admin_exists"},
	{Target: service.ErrInvalidPassword, Code: response.CodeBadRequest, Key: "error.password_old_invalid"},
	{Target: service.ErrWeakPassword, Code: response.CodeBadRequest, Key: "error.password_weak"},
	{Target: authz.ErrUnknownRole, Code: response.CodeBadRequest, Key: "error.role_invalid"},
	{Target: queue.ErrQueueDisabled, Code: response.CodeBadRequest, Key: "error.queue_unavailable"},
	{Target: asynq.ErrDuplicateTask, Code: response.CodeConflict, Key: "error.task_duplicate"},
	{Target: asynq.ErrTaskIDConflict, Code: response.CodeConflict, Key: "error.task_duplicate"},
}

// RespondMappedError 先按 extra 再按通用规则映射业务错误，均未命中时使用兜底并记录日志。
func RespondMappedError(c *gin.Context, err error, fallbackCode int, fallbackKey string, extra ...MappedError) {
	for _, rule := range extra {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	for _, rule := range serviceErrorRules {
		if errors.Is(err, rule.Target) {
			RespondError(c, rule.Code, rule.Key, nil)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}
