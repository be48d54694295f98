package admin

import (
	"strconv"
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMetrics 看板快照（month/year 为空时取当前月份）
func (h *Handler) GetMetrics(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	input := service.MetricsQueryInput{
		ForceRefresh: c.Query("force_refresh") == "1" || strings.EqualFold(c.Query("force_refresh"), "true"),
	}
	var err error
	if raw := strings.TrimSpace(c.Query("month")); raw != "" {
		if input.Month, err = strconv.Atoi(raw); err != nil {
			respondError(c, response.CodeBadRequest, "error.metrics_period_invalid", err)
			return
		}
	}
	if raw := strings.TrimSpace(c.Query("year")); raw != "" {
		if input.Year, err = strconv.Atoi(raw); err != nil {
			respondError(c, response.CodeBadRequest, "error.metrics_period_invalid", err)
			return
		}
	}
	snapshot, err := h.MetricsService.Compute(c.Request.Context(), actor, input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, snapshot)
}
