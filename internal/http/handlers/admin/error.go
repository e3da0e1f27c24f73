package admin

import (
	"errors"

	handlershared "github.com/openingclouds/internal/http/handlers/shared"
	"github.com/openingclouds/internal/http/response"
	"github.com/openingclouds/internal/i18n"
	"github.com/openingclouds/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondErrorWithMsg(c *gin.Context, code int, msg string, err error) {
	handlershared.RespondErrorWithMsg(c, code, msg, err)
}

func respondMappedError(c *gin.Context, err error, fallbackCode int, fallbackKey string, extra ...handlershared.MappedError) {
	handlershared.RespondMappedError(c, err, fallbackCode, fallbackKey, extra...)
}

// respondPasswordPolicyError 密码策略错误携带具体规则的国际化参数
func respondPasswordPolicyError(c *gin.Context, err error) bool {
	if err == nil || !errors.Is(err, service.ErrWeakPassword) {
		return false
	}
	if perr, ok := err.(interface {
		Key() string
		Args() []interface{}
	}); ok {
		msg := i18n.Sprintf(i18n.ResolveLocale(c), perr.Key(), perr.Args()...)
		respondErrorWithMsg(c, response.CodeBadRequest, msg, nil)
		return true
	}
	respondError(c, response.CodeBadRequest, "error.password_weak", nil)
	return true
}
