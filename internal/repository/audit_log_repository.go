package repository

import (
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"

	"gorm.io/gorm"
)

// UserLoginLogRepository 登录记录
type UserLoginLogRepository interface {
	Create(log *models.UserLoginLog) error
	List(filter UserLoginLogListFilter) ([]models.UserLoginLog, int64, error)
}

// AuthzAuditLogRepository 用户与角色变更审计
type AuthzAuditLogRepository interface {
	Create(log *models.AuthzAuditLog) error
	List(filter AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error)
}

// GormUserLoginLogRepository GORM 实现
type GormUserLoginLogRepository struct {
	db *gorm.DB
}

// NewUserLoginLogRepository 创建登录记录仓库
func NewUserLoginLogRepository(db *gorm.DB) *GormUserLoginLogRepository {
	return &GormUserLoginLogRepository{db: db}
}

func (r *GormUserLoginLogRepository) Create(log *models.UserLoginLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

// List 用户名按小写精确匹配
func (r *GormUserLoginLogRepository) List(filter UserLoginLogListFilter) ([]models.UserLoginLog, int64, error) {
	username := strings.ToLower(strings.TrimSpace(filter.Username))
	query := r.db.Model(&models.UserLoginLog{}).Scopes(
		whereEq("user_id", filter.UserID, filter.UserID == 0),
		whereEq("username", username, username == ""),
		whereEq("status", filter.Status, filter.Status == ""),
		whereEq("fail_reason", filter.FailReason, filter.FailReason == ""),
		whereEq("client_ip", filter.ClientIP, filter.ClientIP == ""),
		createdBetween(filter.CreatedFrom, filter.CreatedTo),
	)
	return listNewestFirst[models.UserLoginLog](query, filter.Page, filter.PageSize)
}

// GormAuthzAuditLogRepository GORM 实现
type GormAuthzAuditLogRepository struct {
	db *gorm.DB
}

// NewAuthzAuditLogRepository 创建审计仓库
func NewAuthzAuditLogRepository(db *gorm.DB) *GormAuthzAuditLogRepository {
	return &GormAuthzAuditLogRepository{db: db}
}

func (r *GormAuthzAuditLogRepository) Create(log *models.AuthzAuditLog) error {
	if log == nil {
		return nil
	}
	return r.db.Create(log).Error
}

func (r *GormAuthzAuditLogRepository) List(filter AuthzAuditLogListFilter) ([]models.AuthzAuditLog, int64, error) {
	query := r.db.Model(&models.AuthzAuditLog{}).Scopes(
		whereEq("operator_user_id", filter.OperatorUserID, filter.OperatorUserID == 0),
		whereEq("target_user_id", filter.TargetUserID, filter.TargetUserID == 0),
		whereEq("action", filter.Action, filter.Action == ""),
		createdBetween(filter.CreatedFrom, filter.CreatedTo),
	)
	return listNewestFirst[models.AuthzAuditLog](query, filter.Page, filter.PageSize)
}
