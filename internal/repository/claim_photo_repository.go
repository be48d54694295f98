package repository

import (
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"

	"gorm.io/gorm"
)

// ClaimPhotoRepository 索赔照片数据访问接口
type ClaimPhotoRepository interface {
	CreateBatch(photos []models.ClaimPhoto) error
	ListByClaim(claimID uint) ([]models.ClaimPhoto, error)
	CountByClaim(claimID uint, kind string) (int64, error)
	WithTx(tx *gorm.DB) *GormClaimPhotoRepository
}

// GormClaimPhotoRepository GORM 实现
type GormClaimPhotoRepository struct {
	db *gorm.DB
}

// NewClaimPhotoRepository 创建索赔照片仓库
func NewClaimPhotoRepository(db *gorm.DB) *GormClaimPhotoRepository {
	return &GormClaimPhotoRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClaimPhotoRepository) WithTx(tx *gorm.DB) *GormClaimPhotoRepository {
	if tx == nil {
		return r
	}
	return &GormClaimPhotoRepository{db: tx}
}

// CreateBatch 批量写入照片记录
func (r *GormClaimPhotoRepository) CreateBatch(photos []models.ClaimPhoto) error {
	if len(photos) == 0 {
		return nil
	}
	return r.db.Create(&photos).Error
}

// ListByClaim 获取索赔照片
func (r *GormClaimPhotoRepository) ListByClaim(claimID uint) ([]models.ClaimPhoto, error) {
	var photos []models.ClaimPhoto
	if err := r.db.Where("claim_id = ?", claimID).Order("id asc").Find(&photos).Error; err != nil {
		return nil, err
	}
	return photos, nil
}

// CountByClaim 统计照片数量，kind 为空时统计全部
func (r *GormClaimPhotoRepository) CountByClaim(claimID uint, kind string) (int64, error) {
	query := r.db.Model(&models.ClaimPhoto{}).Where("claim_id = ?", claimID)
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
