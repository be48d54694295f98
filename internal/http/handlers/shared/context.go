package shared

import (
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"

	"github.com/gin-gonic/gin"
)

// 鉴权中间件写入的上下文键
const (
	ContextKeyUserID      = "user_id"
	ContextKeyUsername    = "username"
	ContextKeyIsSuper     = "is_super"
	ContextKeyLocation    = "user_location"
	ContextKeyAccessLevel = "access_level"
)

// GetContextUintWithKeys 从上下文读取 uint 值并统一处理错误响应。
func GetContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		if v == 0 {
			RespondError(c, response.CodeUnauthorized, invalidKey, nil)
			return 0, false
		}
		return v, true
	case int:
		if v <= 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v <= 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return 0, false
	}
}

// CurrentActor 组装当前请求的操作人
func CurrentActor(c *gin.Context) (service.Actor, bool) {
	userID, ok := GetContextUintWithKeys(c, ContextKeyUserID, "error.unauthorized", "error.internal")
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{
		UserID:   userID,
		Username: c.GetString(ContextKeyUsername),
		IsSuper:  c.GetBool(ContextKeyIsSuper),
		Location: c.GetString(ContextKeyLocation),
	}, true
}
