package admin

import (
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/handlers/shared"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListAuthzAuditLogs 获取用户权限变更审计日志
func (h *Handler) ListAuthzAuditLogs(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)

	operatorID, err := shared.ParseOptionalUint(c.Query("operator_user_id"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	targetID, err := shared.ParseOptionalUint(c.Query("target_user_id"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdFrom, err := shared.ParseDateNullable(c.Query("created_from"), h.Location)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	createdTo, err := shared.ParseDateNullable(c.Query("created_to"), h.Location)
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	filter := repository.AuthzAuditLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		Action:      strings.TrimSpace(c.Query("action")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	}
	if operatorID != nil {
		filter.OperatorUserID = *operatorID
	}
	if targetID != nil {
		filter.TargetUserID = *targetID
	}
	items, total, err := h.AuthzAuditService.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	shared.RespondPage(c, items, page, pageSize, total)
}
