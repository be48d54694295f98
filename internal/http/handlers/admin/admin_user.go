package admin

import (
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/authz"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/handlers/shared"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRequest 用户表单；roles 为 null 表示不修改角色
type UserRequest struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	DisplayName string   `json:"display_name"`
	Email       string   `json:"email"`
	Phone       string   `json:"phone"`
	AccessLevel string   `json:"access_level"`
	Location    string   `json:"location"`
	IsSuper     bool     `json:"is_super"`
	Roles       []string `json:"roles"`
}

func (r UserRequest) toInput() service.UserInput {
	return service.UserInput{
		Username:    r.Username,
		Password:    r.Password,
		DisplayName: r.DisplayName,
		Email:       r.Email,
		Phone:       r.Phone,
		AccessLevel: r.AccessLevel,
		Location:    r.Location,
		IsSuper:     r.IsSuper,
		Roles:       r.Roles,
	}
}

// ListUsers 用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	page, pageSize := shared.QueryPagination(c)
	active, err := shared.ParseOptionalBool(c.Query("active"))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	users, total, err := h.UserService.ListUsers(c.Request.Context(), actor, repository.UserListFilter{
		Page:        page,
		PageSize:    pageSize,
		Keyword:     strings.TrimSpace(c.Query("keyword")),
		AccessLevel: strings.TrimSpace(c.Query("access_level")),
		IsActive:    active,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	shared.RespondPage(c, users, page, pageSize, total)
}

// GetUser 用户详情（含角色）
func (h *Handler) GetUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	user, err := h.UserService.GetUser(c.Request.Context(), actor, id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// CreateUser 新建用户
func (h *Handler) CreateUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserService.CreateUser(c.Request.Context(), actor, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// UpdateUser 更新用户
func (h *Handler) UpdateUser(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	user, err := h.UserService.UpdateUser(c.Request.Context(), actor, id, req.toInput())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// DeactivateUser 停用用户
func (h *Handler) DeactivateUser(c *gin.Context) {
	h.setUserActive(c, false)
}

// ReactivateUser 重新启用用户
func (h *Handler) ReactivateUser(c *gin.Context) {
	h.setUserActive(c, true)
}

func (h *Handler) setUserActive(c *gin.Context, active bool) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := parseID(c)
	if !ok {
		return
	}
	if err := h.UserService.SetUserActive(c.Request.Context(), actor, id, active); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"id": id, "is_active": active})
}

// ListRoles 可分配的角色
func (h *Handler) ListRoles(c *gin.Context) {
	roles, err := h.AuthzService.ListRoles()
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, roles)
}

// ListCapabilities 全部能力标识
func (h *Handler) ListCapabilities(c *gin.Context) {
	response.Success(c, authz.AllCapabilities())
}
