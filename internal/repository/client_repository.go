package repository

import (
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"

	"gorm.io/gorm"
)

// ClientRepository 客户数据访问接口
type ClientRepository interface {
	GetByID(id uint) (*models.Client, error)
	List(filter ReferenceListFilter) ([]models.Client, int64, error)
	Create(item *models.Client) error
	Update(item *models.Client) error
	SetActive(id uint, active bool) (bool, error)
	ExistsByCNPJ(value string, excludeID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormClientRepository
}

// GormClientRepository GORM 实现
type GormClientRepository struct {
	db *gorm.DB
}

// NewClientRepository 创建客户仓库
func NewClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClientRepository) WithTx(tx *gorm.DB) *GormClientRepository {
	if tx == nil {
		return r
	}
	return &GormClientRepository{db: tx}
}

// GetByID 根据 ID 获取客户
func (r *GormClientRepository) GetByID(id uint) (*models.Client, error) {
	return firstOrNil[models.Client](r.db, id)
}

// List 客户列表
func (r *GormClientRepository) List(filter ReferenceListFilter) ([]models.Client, int64, error) {
	query := applyReferenceFilter(r.db.Model(&models.Client{}), filter, "company_name", "cnpj")
	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}
	var items []models.Client
	if err := query.Order("company_name asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create 创建客户
func (r *GormClientRepository) Create(item *models.Client) error {
	return r.db.Create(item).Error
}

// Update 更新客户
func (r *GormClientRepository) Update(item *models.Client) error {
	return r.db.Save(item).Error
}

// SetActive 停用或重新启用
func (r *GormClientRepository) SetActive(id uint, active bool) (bool, error) {
	return setActive(r.db, &models.Client{}, id, active)
}

// ExistsByCNPJ 唯一性检查
func (r *GormClientRepository) ExistsByCNPJ(value string, excludeID uint) (bool, error) {
	return existsByColumn(r.db, &models.Client{}, "cnpj", value, excludeID)
}
