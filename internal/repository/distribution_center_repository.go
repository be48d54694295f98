package repository

import (
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"

	"gorm.io/gorm"
)

// DistributionCenterRepository 仓储中心数据访问接口
type DistributionCenterRepository interface {
	GetByID(id uint) (*models.DistributionCenter, error)
	List(filter ReferenceListFilter) ([]models.DistributionCenter, int64, error)
	Create(item *models.DistributionCenter) error
	Update(item *models.DistributionCenter) error
	SetActive(id uint, active bool) (bool, error)
	ExistsByCode(value string, excludeID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormDistributionCenterRepository
}

// GormDistributionCenterRepository GORM 实现
type GormDistributionCenterRepository struct {
	db *gorm.DB
}

// NewDistributionCenterRepository 创建仓储中心仓库
func NewDistributionCenterRepository(db *gorm.DB) *GormDistributionCenterRepository {
	return &GormDistributionCenterRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDistributionCenterRepository) WithTx(tx *gorm.DB) *GormDistributionCenterRepository {
	if tx == nil {
		return r
	}
	return &GormDistributionCenterRepository{db: tx}
}

// GetByID 根据 ID 获取仓储中心
func (r *GormDistributionCenterRepository) GetByID(id uint) (*models.DistributionCenter, error) {
	return firstOrNil[models.DistributionCenter](r.db, id)
}

// List 仓储中心列表
func (r *GormDistributionCenterRepository) List(filter ReferenceListFilter) ([]models.DistributionCenter, int64, error) {
	query := applyReferenceFilter(r.db.Model(&models.DistributionCenter{}), filter, "name", "code", "city")
	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}
	var items []models.DistributionCenter
	if err := query.Order("name asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create 创建仓储中心
func (r *GormDistributionCenterRepository) Create(item *models.DistributionCenter) error {
	return r.db.Create(item).Error
}

// Update 更新仓储中心
func (r *GormDistributionCenterRepository) Update(item *models.DistributionCenter) error {
	return r.db.Save(item).Error
}

// SetActive 停用或重新启用
func (r *GormDistributionCenterRepository) SetActive(id uint, active bool) (bool, error) {
	return setActive(r.db, &models.DistributionCenter{}, id, active)
}

// ExistsByCode 唯一性检查
func (r *GormDistributionCenterRepository) ExistsByCode(value string, excludeID uint) (bool, error) {
	return existsByColumn(r.db, &models.DistributionCenter{}, "code", value, excludeID)
}
