package response

import "github.com/gin-gonic/gin"

// AppError 接口层错误：业务码、提示消息、原始错误，可附带响应数据（如同步结果、运行记录）
type AppError struct {
	Code    int
	Message string
	Err     error
	Data    interface{}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithData 附带响应数据
func (e *AppError) WithData(data interface{}) *AppError {
	e.Data = data
	return e
}

// WrapError 包装错误
func WrapError(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Fail 输出 AppError 对应的错误响应
func Fail(c *gin.Context, appErr *AppError) {
	if appErr == nil {
		return
	}
	if appErr.Data != nil {
		ErrorWithData(c, appErr.Code, appErr.Message, appErr.Data)
		return
	}
	Error(c, appErr.Code, appErr.Message)
}
