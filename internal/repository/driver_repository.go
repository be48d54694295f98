package repository

import (
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"

	"gorm.io/gorm"
)

// DriverRepository 司机数据访问接口
type DriverRepository interface {
	GetByID(id uint) (*models.Driver, error)
	List(filter ReferenceListFilter) ([]models.Driver, int64, error)
	Create(item *models.Driver) error
	Update(item *models.Driver) error
	SetActive(id uint, active bool) (bool, error)
	ExistsByCPF(value string, excludeID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormDriverRepository
}

// GormDriverRepository GORM 实现
type GormDriverRepository struct {
	db *gorm.DB
}

// NewDriverRepository 创建司机仓库
func NewDriverRepository(db *gorm.DB) *GormDriverRepository {
	return &GormDriverRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDriverRepository) WithTx(tx *gorm.DB) *GormDriverRepository {
	if tx == nil {
		return r
	}
	return &GormDriverRepository{db: tx}
}

// GetByID 根据 ID 获取司机
func (r *GormDriverRepository) GetByID(id uint) (*models.Driver, error) {
	return firstOrNil[models.Driver](r.db, id)
}

// List 司机列表
func (r *GormDriverRepository) List(filter ReferenceListFilter) ([]models.Driver, int64, error) {
	query := applyReferenceFilter(r.db.Model(&models.Driver{}), filter, "name", "cpf")
	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}
	var items []models.Driver
	if err := query.Order("name asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create 创建司机
func (r *GormDriverRepository) Create(item *models.Driver) error {
	return r.db.Create(item).Error
}

// Update 更新司机
func (r *GormDriverRepository) Update(item *models.Driver) error {
	return r.db.Save(item).Error
}

// SetActive 停用或重新启用
func (r *GormDriverRepository) SetActive(id uint, active bool) (bool, error) {
	return setActive(r.db, &models.Driver{}, id, active)
}

// ExistsByCPF 唯一性检查
func (r *GormDriverRepository) ExistsByCPF(value string, excludeID uint) (bool, error) {
	return existsByColumn(r.db, &models.Driver{}, "cpf", value, excludeID)
}
