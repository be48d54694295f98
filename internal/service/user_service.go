package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/authz"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/cache"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"
)

// RoleManager 用户角色读写
type RoleManager interface {
	SetUserRoles(userID uint, roles []string) error
	GetUserRoles(userID uint) ([]string, error)
}

// UserService 用户维护（仅超级用户或拥有 user:manage 能力者）
type UserService struct {
	users      repository.UserRepository
	auth       *AuthService
	roles      RoleManager
	authorizer Authorizer
	audit      *AuthzAuditService
}

// NewUserService 创建用户服务
func NewUserService(users repository.UserRepository, auth *AuthService, roles RoleManager, authorizer Authorizer, audit *AuthzAuditService) *UserService {
	return &UserService{users: users, auth: auth, roles: roles, authorizer: authorizer, audit: audit}
}

// UserInput 用户表单；Password 为空表示不修改，Roles 为 nil 表示不修改
type UserInput struct {
	Username    string
	Password    string
	DisplayName string
	Email       string
	Phone       string
	AccessLevel string
	Location    string
	IsSuper     bool
	Roles       []string
}

// UserView 用户及其角色
type UserView struct {
	models.User
	Roles []string `json:"roles"`
}

func normalizeAccessLevel(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", constants.UserAccessMobile:
		return constants.UserAccessMobile, true
	case constants.UserAccessFull:
		return constants.UserAccessFull, true
	default:
		return "", false
	}
}

func (s *UserService) canManage(ctx context.Context, actor Actor) error {
	return authorize(ctx, s.authorizer, actor, authz.CapUserManage)
}

func (s *UserService) view(user *models.User) (*UserView, error) {
	result := &UserView{User: *user, Roles: []string{}}
	if s.roles == nil {
		return result, nil
	}
	roles, err := s.roles.GetUserRoles(user.ID)
	if err != nil {
		return nil, err
	}
	result.Roles = roles
	return result, nil
}

func (s *UserService) applyRoles(ctx context.Context, actor Actor, user *models.User, roles []string) error {
	if roles == nil || s.roles == nil {
		return nil
	}
	if err := s.roles.SetUserRoles(user.ID, roles); err != nil {
		if errors.Is(err, authz.ErrRoleUnknown) {
			return invalid(ErrRoleInvalid, strings.Join(roles, ","))
		}
		return err
	}
	s.recordAudit(ctx, actor, user, AuthzAuditActionRolesSet, roles, nil)
	return nil
}

func (s *UserService) recordAudit(ctx context.Context, actor Actor, user *models.User, action string, roles []string, detail models.JSON) {
	userID := user.ID
	err := s.audit.Record(AuthzAuditRecordInput{
		Operator:       actor,
		TargetUserID:   &userID,
		TargetUsername: user.Username,
		Action:         action,
		Roles:          roles,
		RequestID:      logger.RequestIDFrom(ctx),
		Detail:         detail,
	})
	if err != nil {
		logger.Ctx(ctx).Warnw("authz_audit_record_failed", "action", action, "user_id", userID, "error", err)
	}
}

// ListUsers 用户列表
func (s *UserService) ListUsers(ctx context.Context, actor Actor, filter repository.UserListFilter) ([]models.User, int64, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, 0, err
	}
	return s.users.List(filter)
}

// GetUser 用户详情（含角色）
func (s *UserService) GetUser(ctx context.Context, actor Actor, id uint) (*UserView, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound(ErrUserNotFound, "user", id)
	}
	return s.view(user)
}

// CreateUser 新建用户
func (s *UserService) CreateUser(ctx context.Context, actor Actor, input UserInput) (*UserView, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, invalid(ErrInvalidCredentials, "username,password")
	}
	level, ok := normalizeAccessLevel(input.AccessLevel)
	if !ok {
		return nil, invalid(ErrAccessLevelDenied, input.AccessLevel)
	}
	exists, err := s.users.ExistsByUsername(username, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, conflict(ErrUsernameTaken, username)
	}
	if err := s.auth.ValidatePassword(input.Password); err != nil {
		return nil, err
	}
	hash, err := s.auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		PasswordHash: hash,
		DisplayName:  sanitizeText(input.DisplayName),
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		AccessLevel:  level,
		Location:     sanitizeText(input.Location),
		IsSuper:      input.IsSuper && actor.IsSuper,
		IsActive:     true,
	}
	if err := s.users.Create(user); err != nil {
		return nil, err
	}
	if err := s.applyRoles(ctx, actor, user, input.Roles); err != nil {
		return nil, err
	}
	logger.Ctx(ctx).Infow("user_created", "user_id", user.ID, "username", user.Username, "by", actor.Username)
	return s.view(user)
}

// UpdateUser 更新用户资料、访问级别与角色
func (s *UserService) UpdateUser(ctx context.Context, actor Actor, id uint, input UserInput) (*UserView, error) {
	if err := s.canManage(ctx, actor); err != nil {
		return nil, err
	}
	user, err := s.users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, notFound(ErrUserNotFound, "user", id)
	}
	level, ok := normalizeAccessLevel(input.AccessLevel)
	if !ok {
		return nil, invalid(ErrAccessLevelDenied, input.AccessLevel)
	}
	if username := strings.TrimSpace(input.Username); username != "" && username != user.Username {
		exists, err := s.users.ExistsByUsername(username, user.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, conflict(ErrUsernameTaken, username)
		}
		user.Username = username
	}

	previousLevel := user.AccessLevel
	revoke := level != previousLevel
	user.DisplayName = sanitizeText(input.DisplayName)
	user.Email = strings.TrimSpace(input.Email)
	user.Phone = strings.TrimSpace(input.Phone)
	user.AccessLevel = level
	user.Location = sanitizeText(input.Location)
	if actor.IsSuper {
		user.IsSuper = input.IsSuper
	}
	if input.Password != "" {
		if err := s.auth.ValidatePassword(input.Password); err != nil {
			return nil, err
		}
		hash, err := s.auth.HashPassword(input.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = hash
		revoke = true
	}
	if revoke {
		now := time.Now().UTC()
		user.TokenVersion++
		user.TokenInvalidBefore = &now
	}
	if err := s.users.Update(user); err != nil {
		return nil, err
	}
	if level != previousLevel {
		s.recordAudit(ctx, actor, user, AuthzAuditActionAccessChanged, nil, models.JSON{"from": previousLevel, "to": level})
	}
	if err := s.applyRoles(ctx, actor, user, input.Roles); err != nil {
		return nil, err
	}
	if err := cache.DelUserAuthState(ctx, user.ID); err != nil {
		logger.Ctx(ctx).Warnw("auth_state_cache_del_failed", "user_id", user.ID, "error", err)
	}
	logger.Ctx(ctx).Infow("user_updated", "user_id", user.ID, "by", actor.Username, "tokens_revoked", revoke)
	return s.view(user)
}

// SetUserActive 停用或重新启用用户；停用会使既有 Token 失效
func (s *UserService) SetUserActive(ctx context.Context, actor Actor, id uint, active bool) error {
	if err := s.canManage(ctx, actor); err != nil {
		return err
	}
	if !active && id == actor.UserID {
		return invalid(ErrUserSelfDeactivate, "")
	}
	user, err := s.users.GetByID(id)
	if err != nil {
		return err
	}
	if user == nil {
		return notFound(ErrUserNotFound, "user", id)
	}
	updates := map[string]interface{}{"is_active": active}
	if !active {
		now := time.Now().UTC()
		updates["token_version"] = user.TokenVersion + 1
		updates["token_invalid_before"] = now
	}
	if err := s.users.UpdateFields(id, updates); err != nil {
		return err
	}
	if err := cache.DelUserAuthState(ctx, id); err != nil {
		logger.Ctx(ctx).Warnw("auth_state_cache_del_failed", "user_id", id, "error", err)
	}
	action := AuthzAuditActionUserReactivated
	if !active {
		action = AuthzAuditActionUserDeactivated
	}
	s.recordAudit(ctx, actor, user, action, nil, nil)
	logger.Ctx(ctx).Infow("user_active_changed", "user_id", id, "active", active, "by", actor.Username)
	return nil
}
