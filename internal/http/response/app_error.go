package response

import "github.com/gin-gonic/gin"

// AppError 处理器层错误：业务码、i18n 键、已翻译消息与原始错误
type AppError struct {
	Code    int
	Key     string
	Message string
	Err     error
}

// NewAppError 创建错误；key 可为空（自定义消息）
func NewAppError(code int, key, message string, err error) *AppError {
	return &AppError{Code: code, Key: key, Message: message, Err: err}
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *AppError) Unwrap() error { return e.Err }

// Internal 是否属于服务端错误
func (e *AppError) Internal() bool { return e.Code >= CodeInternal }

// Send 写出错误响应
func (e *AppError) Send(c *gin.Context) {
	Error(c, e.Code, e.Message)
}
