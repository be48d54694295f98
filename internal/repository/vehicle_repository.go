package repository

import (
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"

	"gorm.io/gorm"
)

// VehicleRepository 车辆数据访问接口
type VehicleRepository interface {
	GetByID(id uint) (*models.Vehicle, error)
	List(filter ReferenceListFilter) ([]models.Vehicle, int64, error)
	Create(item *models.Vehicle) error
	Update(item *models.Vehicle) error
	SetActive(id uint, active bool) (bool, error)
	ExistsByPlate(value string, excludeID uint) (bool, error)
	WithTx(tx *gorm.DB) *GormVehicleRepository
}

// GormVehicleRepository GORM 实现
type GormVehicleRepository struct {
	db *gorm.DB
}

// NewVehicleRepository 创建车辆仓库
func NewVehicleRepository(db *gorm.DB) *GormVehicleRepository {
	return &GormVehicleRepository{db: db}
}

// WithTx 绑定事务
func (r *GormVehicleRepository) WithTx(tx *gorm.DB) *GormVehicleRepository {
	if tx == nil {
		return r
	}
	return &GormVehicleRepository{db: tx}
}

// GetByID 根据 ID 获取车辆
func (r *GormVehicleRepository) GetByID(id uint) (*models.Vehicle, error) {
	return firstOrNil[models.Vehicle](r.db, id)
}

// List 车辆列表
func (r *GormVehicleRepository) List(filter ReferenceListFilter) ([]models.Vehicle, int64, error) {
	query := applyReferenceFilter(r.db.Model(&models.Vehicle{}), filter, "plate", "model", "carrier_name")
	if filter.Kind != "" {
		query = query.Where("kind = ?", filter.Kind)
	}
	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}
	var items []models.Vehicle
	if err := query.Order("plate asc").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// Create 创建车辆
func (r *GormVehicleRepository) Create(item *models.Vehicle) error {
	return r.db.Create(item).Error
}

// Update 更新车辆
func (r *GormVehicleRepository) Update(item *models.Vehicle) error {
	return r.db.Save(item).Error
}

// SetActive 停用或重新启用
func (r *GormVehicleRepository) SetActive(id uint, active bool) (bool, error) {
	return setActive(r.db, &models.Vehicle{}, id, active)
}

// ExistsByPlate 唯一性检查
func (r *GormVehicleRepository) ExistsByPlate(value string, excludeID uint) (bool, error) {
	return existsByColumn(r.db, &models.Vehicle{}, "plate", value, excludeID)
}
