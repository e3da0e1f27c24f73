package public

import (
	handlershared "github.com/openingclouds/internal/http/handlers/shared"
	"github.com/openingclouds/internal/provider"

	"github.com/gin-gonic/gin"
)

// Handler 前台/公开接口处理器入口
// 说明：该处理器仅用于博客前台只读 API 与阅读计数。
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondMappedError(c *gin.Context, err error, fallbackCode int, fallbackKey string, extra ...handlershared.MappedError) {
	handlershared.RespondMappedError(c, err, fallbackCode, fallbackKey, extra...)
}
