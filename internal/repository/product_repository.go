package repository

import (
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	GetByID(id uint) (*models.Product, error)
	List(filter ReferenceListFilter) ([]models.Product, int64, error)
	ListByIDs(ids []uint) ([]models.Product, error)
	Create(item *models.Product) error
	Update(item *models.Product) error
	SetActive(id uint, active bool) (bool, error)
	ExistsByControlCode(value string, excludeID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务
func (r *GormProductRepository) WithTx(tx *gorm.DB) *GormProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// GetByID 根据 ID 获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	return firstOrNil[models.Product](r.db, id)
}

// List 商品列表
func (r *GormProductRepository) List(filter ReferenceListFilter) ([]models.Product, int64, error) {
	query := applyReferenceFilter(r.db.Model(&models.Product{}), filter, "name", "laboratory", "control_code")
	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}
	var items []models.Product
	if err := query.Order("name asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListByIDs 批量获取商品（不过滤启用状态，由调用方判断）
func (r *GormProductRepository) ListByIDs(ids []uint) ([]models.Product, error) {
	if len(ids) == 0 {
		return []models.Product{}, nil
	}
	var items []models.Product
	if err := r.db.Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(item *models.Product) error {
	return r.db.Create(item).Error
}

// Update 更新商品
func (r *GormProductRepository) Update(item *models.Product) error {
	return r.db.Save(item).Error
}

// SetActive 停用或重新启用
func (r *GormProductRepository) SetActive(id uint, active bool) (bool, error) {
	return setActive(r.db, &models.Product{}, id, active)
}

// ExistsByControlCode 唯一性检查
func (r *GormProductRepository) ExistsByControlCode(value string, excludeID uint) (bool, error) {
	return existsByColumn(r.db, &models.Product{}, "control_code", value, excludeID)
}
