package admin

import (
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/service"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求（source: web | mobile）
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Source   string `json:"source"`
}

// AccountView 当前账号信息
type AccountView struct {
	*models.User
	Roles        []string `json:"roles"`
	Capabilities []string `json:"capabilities"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expires_at"`
	User      *AccountView `json:"user"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

func (h *Handler) accountView(user *models.User) (*AccountView, error) {
	view := &AccountView{User: user, Roles: []string{}, Capabilities: []string{}}
	if h.AuthzService == nil {
		return view, nil
	}
	roles, err := h.AuthzService.GetUserRoles(user.ID)
	if err != nil {
		return nil, err
	}
	view.Roles = roles
	capabilities, err := h.AuthzService.GetUserCapabilities(user.ID)
	if err != nil {
		return nil, err
	}
	view.Capabilities = capabilities
	return view, nil
}

// Login 账号登录（网页端与移动端共用，移动端须传 source=mobile）
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}

	result, err := h.AuthService.Login(c.Request.Context(), service.LoginInput{
		Username:  req.Username,
		Password:  req.Password,
		Source:    req.Source,
		ClientIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: c.GetString("request_id"),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	view, err := h.accountView(result.User)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt.Format(time.RFC3339),
		User:      view,
	})
}

// GetMe 当前登录账号
func (h *Handler) GetMe(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	user, err := h.AuthService.GetCurrentUser(actor.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	view, err := h.accountView(user)
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.Success(c, view)
}

// ChangePassword 修改当前账号密码（成功后需重新登录）
func (h *Handler) ChangePassword(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.AuthService.ChangePassword(c.Request.Context(), actor.UserID, req.OldPassword, req.NewPassword); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, nil)
}
