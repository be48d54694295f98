package mobile

import (
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/handlers/shared"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/provider"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"

	"github.com/gin-gonic/gin"
)

// Handler 移动端（现场作业 App）接口
type Handler struct {
	*provider.Container
}

// New 创建移动端 Handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}

func currentActor(c *gin.Context) (service.Actor, bool) {
	return shared.CurrentActor(c)
}

func parseClaimID(c *gin.Context) (uint, bool) {
	return shared.ParseIDParam(c, "id", "error.claim_id_invalid")
}
