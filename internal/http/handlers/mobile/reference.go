package mobile

import (
	"context"
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/handlers/shared"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"

	"github.com/gin-gonic/gin"
)

// 移动端只看到启用中的主数据
func activeReferenceList[T any](c *gin.Context, list func(context.Context, service.Actor, repository.ReferenceListFilter) ([]T, int64, error)) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)
	active := true
	items, total, err := list(c.Request.Context(), actor, repository.ReferenceListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		Kind:     strings.TrimSpace(c.Query("kind")),
		IsActive: &active,
	})
	if err != nil {
		shared.RespondServiceError(c, err)
		return
	}
	shared.RespondPage(c, items, page, pageSize, total)
}

// ListClients 启用中的客户
func (h *Handler) ListClients(c *gin.Context) {
	activeReferenceList(c, h.ReferenceService.ListClients)
}

// ListDrivers 启用中的司机
func (h *Handler) ListDrivers(c *gin.Context) {
	activeReferenceList(c, h.ReferenceService.ListDrivers)
}

// ListVehicles 启用中的车辆（kind=main|trailer）
func (h *Handler) ListVehicles(c *gin.Context) {
	activeReferenceList(c, h.ReferenceService.ListVehicles)
}

// ListProducts 启用中的产品
func (h *Handler) ListProducts(c *gin.Context) {
	activeReferenceList(c, h.ReferenceService.ListProducts)
}
