package admin

import (
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/handlers/shared"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetUserLoginLogs 获取用户登录日志列表
func (h *Handler) GetUserLoginLogs(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)

	userID, err := shared.ParseOptionalUint(c.Query("user_id"))
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

	filter := repository.UserLoginLogListFilter{
		Page:        page,
		PageSize:    pageSize,
		Username:    strings.TrimSpace(c.Query("username")),
		Status:      strings.TrimSpace(c.Query("status")),
		FailReason:  strings.TrimSpace(c.Query("fail_reason")),
		ClientIP:    strings.TrimSpace(c.Query("client_ip")),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	}
	if userID != nil {
		filter.UserID = *userID
	}
	logs, total, err := h.UserLoginLogService.List(c.Request.Context(), actor, filter)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	shared.RespondPage(c, logs, page, pageSize, total)
}
