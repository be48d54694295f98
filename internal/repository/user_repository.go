package repository

import (
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
type UserRepository interface {
	GetByUsername(username string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	UpdateFields(id uint, updates map[string]interface{}) error
	List(filter UserListFilter) ([]models.User, int64, error)
	ExistsByUsername(username string, excludeID uint) (bool, error)
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

// GetByUsername 根据用户名获取用户（不区分大小写）
func (r *GormUserRepository) GetByUsername(username string) (*models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(username))
	return firstOrNil[models.User](r.db.Where("LOWER(username) = ?", normalized))
}

// GetByID 根据 ID 获取用户
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	return firstOrNil[models.User](r.db, id)
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 更新用户
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// UpdateFields 按字段更新用户
func (r *GormUserRepository) UpdateFields(id uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

// List 用户列表，keyword 匹配用户名、姓名、邮箱与所在地
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{}).Scopes(
		whereEq("access_level", filter.AccessLevel, filter.AccessLevel == ""),
		func(db *gorm.DB) *gorm.DB {
			if filter.IsActive == nil {
				return db
			}
			return db.Where("is_active = ?", *filter.IsActive)
		},
	)
	if keyword := strings.TrimSpace(filter.Keyword); keyword != "" {
		condition, argCount := buildLikeCondition(r.db, "username", "display_name", "email", "location")
		query = query.Where(condition, repeatLikeArgs(containsPattern(keyword), argCount)...)
	}
	return listNewestFirst[models.User](query, filter.Page, filter.PageSize)
}

// ExistsByUsername 用户名唯一性检查
func (r *GormUserRepository) ExistsByUsername(username string, excludeID uint) (bool, error) {
	query := r.db.Model(&models.User{}).Where("LOWER(username) = ?", strings.ToLower(strings.TrimSpace(username)))
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return false, err
	}
	return total > 0, nil
}
