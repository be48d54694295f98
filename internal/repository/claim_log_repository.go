package repository

import (
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"

	"gorm.io/gorm"
)

// ClaimLogRepository 索赔审计日志数据访问接口（只追加，不提供更新与删除）
type ClaimLogRepository interface {
	Append(entry *models.ClaimLogEntry) error
	ListByClaim(claimID uint) ([]models.ClaimLogEntry, error)
	CountByClaim(claimID uint) (int64, error)
	WithTx(tx *gorm.DB) *GormClaimLogRepository
}

// GormClaimLogRepository GORM 实现
type GormClaimLogRepository struct {
	db *gorm.DB
}

// NewClaimLogRepository 创建审计日志仓库
func NewClaimLogRepository(db *gorm.DB) *GormClaimLogRepository {
	return &GormClaimLogRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClaimLogRepository) WithTx(tx *gorm.DB) *GormClaimLogRepository {
	if tx == nil {
		return r
	}
	return &GormClaimLogRepository{db: tx}
}

// Append 追加日志，Seq 取该索赔当前最大序号 + 1
func (r *GormClaimLogRepository) Append(entry *models.ClaimLogEntry) error {
	if entry == nil {
		return nil
	}
	var maxSeq int
	if err := r.db.Model(&models.ClaimLogEntry{}).
		Where("claim_id = ?", entry.ClaimID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error; err != nil {
		return err
	}
	entry.Seq = maxSeq + 1
	return r.db.Create(entry).Error
}

// ListByClaim 按序号返回日志
func (r *GormClaimLogRepository) ListByClaim(claimID uint) ([]models.ClaimLogEntry, error) {
	var entries []models.ClaimLogEntry
	if err := r.db.Where("claim_id = ?", claimID).Order("seq asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// CountByClaim 统计日志条数
func (r *GormClaimLogRepository) CountByClaim(claimID uint) (int64, error) {
	var total int64
	if err := r.db.Model(&models.ClaimLogEntry{}).Where("claim_id = ?", claimID).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
