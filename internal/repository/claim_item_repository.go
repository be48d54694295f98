package repository

import (
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"

	"gorm.io/gorm"
)

// ClaimItemRepository 索赔明细数据访问接口
type ClaimItemRepository interface {
	ListByClaim(claimID uint) ([]models.ClaimItem, error)
	CreateBatch(items []models.ClaimItem) error
	UpdateFields(claimID, itemID uint, updates map[string]interface{}) error
	DeleteByIDs(claimID uint, itemIDs []uint) (int64, error)
	WithTx(tx *gorm.DB) *GormClaimItemRepository
}

// GormClaimItemRepository GORM 实现
type GormClaimItemRepository struct {
	db *gorm.DB
}

// NewClaimItemRepository 创建索赔明细仓库
func NewClaimItemRepository(db *gorm.DB) *GormClaimItemRepository {
	return &GormClaimItemRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClaimItemRepository) WithTx(tx *gorm.DB) *GormClaimItemRepository {
	if tx == nil {
		return r
	}
	return &GormClaimItemRepository{db: tx}
}

// ListByClaim 按插入顺序返回索赔明细
func (r *GormClaimItemRepository) ListByClaim(claimID uint) ([]models.ClaimItem, error) {
	var items []models.ClaimItem
	if err := r.db.Preload("Product").Where("claim_id = ?", claimID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CreateBatch 批量新增明细
func (r *GormClaimItemRepository) CreateBatch(items []models.ClaimItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.Create(&items).Error
}

// UpdateFields 更新单条明细（限定所属索赔）
func (r *GormClaimItemRepository) UpdateFields(claimID, itemID uint, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.ClaimItem{}).
		Where("id = ? AND claim_id = ?", itemID, claimID).
		Updates(updates).Error
}

// DeleteByIDs 删除指定明细（限定所属索赔）
func (r *GormClaimItemRepository) DeleteByIDs(claimID uint, itemIDs []uint) (int64, error) {
	if len(itemIDs) == 0 {
		return 0, nil
	}
	result := r.db.Where("claim_id = ? AND id IN ?", claimID, itemIDs).Delete(&models.ClaimItem{})
	return result.RowsAffected, result.Error
}
