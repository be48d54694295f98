package admin

import (
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/handlers/shared"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/provider"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler 网页后台接口（full 访问级别）与账号接口
type Handler struct {
	*provider.Container
}

// New 创建后台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func currentActor(c *gin.Context) (service.Actor, bool) {
	return shared.CurrentActor(c)
}

func parseID(c *gin.Context) (uint, bool) {
	return shared.ParseIDParam(c, "id", "error.id_invalid")
}

func parseClaimID(c *gin.Context) (uint, bool) {
	return shared.ParseIDParam(c, "id", "error.claim_id_invalid")
}

func respondError(c *gin.Context, code int, key string, err error) {
	shared.RespondError(c, code, key, err)
}

func respondServiceError(c *gin.Context, err error) {
	shared.RespondServiceError(c, err)
}
