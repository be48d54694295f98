package service

import (
	"context"
	"strings"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/authz"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"
)

// 权限审计动作
const (
	AuthzAuditActionRolesSet        = "user_roles_set"
	AuthzAuditActionAccessChanged   = "user_access_changed"
	AuthzAuditActionUserDeactivated = "user_deactivated"
	AuthzAuditActionUserReactivated = "user_reactivated"
)

// AuthzAuditRecordInput 权限审计记录输入
type AuthzAuditRecordInput struct {
	Operator       Actor
	TargetUserID   *uint
	TargetUsername string
	Action         string
	Roles          []string
	RequestID      string
	Detail         models.JSON
}

// AuthzAuditService 权限审计服务
type AuthzAuditService struct {
	repo       repository.AuthzAuditLogRepository
	authorizer Authorizer
}

// NewAuthzAuditService 创建权限审计服务
func NewAuthzAuditService(repo repository.AuthzAuditLogRepository, authorizer Authorizer) *AuthzAuditService {
	return &AuthzAuditService{repo: repo, authorizer: authorizer}
}

// Record 记录权限审计日志
func (s *AuthzAuditService) Record(input AuthzAuditRecordInput) error {
	if s == nil || s.repo == nil {
		return nil
	}
	if strings.TrimSpace(input.Action) == "" {
		return nil
	}

	item := &models.AuthzAuditLog{
		OperatorUserID:   input.Operator.UserID,
		OperatorUsername: strings.TrimSpace(input.Operator.Username),
		TargetUserID:     input.TargetUserID,
		TargetUsername:   strings.TrimSpace(input.TargetUsername),
		Action:           strings.TrimSpace(input.Action),
		Roles:            strings.Join(input.Roles, ","),
		RequestID:        strings.TrimSpace(input.RequestID),
		DetailJSON:       input.Detail,
		CreatedAt:        time.Now().UTC(),
	}
	return s.repo.Create(item)
}

// List 查询权限审计日志
func (s *AuthzAuditService) List(ctx context.Context, actor Actor, filter repository.AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error) {
	if s == nil || s.repo == nil {
		return []models.AuthzAuditLog{}, 0, nil
	}
	if err := authorize(ctx, s.authorizer, actor, authz.CapUserManage); err != nil {
		return nil, 0, err
	}
	return s.repo.List(filter)
}
