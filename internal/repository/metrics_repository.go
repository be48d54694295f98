package repository

import (
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"

	"gorm.io/gorm"
)

// MetricsRepository 指标看板聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则；按月/年的分桶在服务层按业务时区完成。
type MetricsRepository interface {
	GetSummary(startAt, endAt time.Time) (MetricsSummaryRow, error)
	ListTimeline() ([]MetricsTimelineRow, error)
	ListLocationCounts() ([]MetricsLocationRow, error)
	TopClients(limit int) ([]MetricsClientRow, error)
	TopDrivers(limit int) ([]MetricsDriverRow, error)
	TopProducts(closure string, limit int) ([]MetricsProductRow, error)
}

// MetricsSummaryRow 总览原始统计结果
type MetricsSummaryRow struct {
	OpenCount                int64
	AwaitingReturnCount      int64
	ReturnsCompletedInPeriod int64
	CreatedInPeriod          int64
	FinalizedInPeriod        int64
	AcceptedCount            int64
	ReturnCompletedCount     int64
	OpenValue                models.Money
	ReturnedValue            models.Money
	AcceptedValue            models.Money
}

// MetricsTimelineRow 时间线投影（序列、SLA 与财务历史的原始数据）
type MetricsTimelineRow struct {
	ID              uint
	Status          string
	Closure         string
	Liability       string
	Value           *models.Money
	CreatedAt       time.Time
	DecidedAt       *time.Time
	ReturnStartedAt *time.Time
	FinalizedAt     *time.Time
}

// MetricsLocationRow 作业地点计数
type MetricsLocationRow struct {
	Location string
	Total    int64
}

// MetricsClientRow 客户排行原始行
type MetricsClientRow struct {
	ClientID    uint
	CompanyName string
	Accepted    int64
	Returned    int64
}

// MetricsDriverRow 司机排行原始行
type MetricsDriverRow struct {
	DriverID uint
	Name     string
	CPF      string
	Total    int64
}

// MetricsProductRow 商品排行原始行（按包含该商品的索赔去重计数）
type MetricsProductRow struct {
	ProductID uint
	Name      string
	Total     int64
}

// GormMetricsRepository GORM 指标聚合实现
type GormMetricsRepository struct {
	db *gorm.DB
}

// NewMetricsRepository 创建指标仓库
func NewMetricsRepository(db *gorm.DB) *GormMetricsRepository {
	return &GormMetricsRepository{db: db}
}

func (r *GormMetricsRepository) sumValue(query *gorm.DB) (models.Money, error) {
	var row struct {
		Total models.Money
	}
	if err := query.Select("COALESCE(SUM(value), 0) AS total").Scan(&row).Error; err != nil {
		return models.Money{}, err
	}
	return row.Total, nil
}

// GetSummary 获取总览统计，[startAt, endAt) 为统计周期
func (r *GormMetricsRepository) GetSummary(startAt, endAt time.Time) (MetricsSummaryRow, error) {
	result := MetricsSummaryRow{}
	claims := func() *gorm.DB {
		return r.db.Model(&models.Claim{})
	}
	finalized := func(closure string) *gorm.DB {
		return claims().Where("status = ? AND closure = ?", constants.ClaimStatusFinalized, closure)
	}

	if err := claims().Where("status = ?", constants.ClaimStatusOpen).Count(&result.OpenCount).Error; err != nil {
		return result, err
	}
	if err := claims().Where("status = ?", constants.ClaimStatusAwaitingReturn).Count(&result.AwaitingReturnCount).Error; err != nil {
		return result, err
	}
	if err := finalized(constants.ClaimClosureReturnCompleted).
		Where("finalized_at >= ? AND finalized_at < ?", startAt, endAt).
		Count(&result.ReturnsCompletedInPeriod).Error; err != nil {
		return result, err
	}
	if err := claims().Where("created_at >= ? AND created_at < ?", startAt, endAt).Count(&result.CreatedInPeriod).Error; err != nil {
		return result, err
	}
	if err := claims().Where("status = ? AND finalized_at >= ? AND finalized_at < ?", constants.ClaimStatusFinalized, startAt, endAt).
		Count(&result.FinalizedInPeriod).Error; err != nil {
		return result, err
	}
	if err := finalized(constants.ClaimClosureAccepted).Count(&result.AcceptedCount).Error; err != nil {
		return result, err
	}
	if err := finalized(constants.ClaimClosureReturnCompleted).Count(&result.ReturnCompletedCount).Error; err != nil {
		return result, err
	}

	var err error
	if result.OpenValue, err = r.sumValue(claims().Where("status = ?", constants.ClaimStatusOpen)); err != nil {
		return result, err
	}
	if result.ReturnedValue, err = r.sumValue(finalized(constants.ClaimClosureReturnCompleted)); err != nil {
		return result, err
	}
	if result.AcceptedValue, err = r.sumValue(finalized(constants.ClaimClosureAccepted)); err != nil {
		return result, err
	}
	return result, nil
}

// ListTimeline 获取全部索赔的时间线投影
func (r *GormMetricsRepository) ListTimeline() ([]MetricsTimelineRow, error) {
	var rows []MetricsTimelineRow
	if err := r.db.Model(&models.Claim{}).
		Select("id, status, closure, liability, value, created_at, decided_at, return_started_at, finalized_at").
		Order("id asc").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListLocationCounts 按作业地点计数（空地点忽略）
func (r *GormMetricsRepository) ListLocationCounts() ([]MetricsLocationRow, error) {
	var rows []MetricsLocationRow
	if err := r.db.Model(&models.Claim{}).
		Select("location, COUNT(*) AS total").
		Where("location IS NOT NULL AND location <> ''").
		Group("location").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TopClients 已结案索赔中按接受数排序的客户
func (r *GormMetricsRepository) TopClients(limit int) ([]MetricsClientRow, error) {
	var rows []MetricsClientRow
	query := r.db.Table("claims").
		Select("claims.client_id AS client_id, clients.company_name AS company_name, "+
			"SUM(CASE WHEN claims.closure = ? THEN 1 ELSE 0 END) AS accepted, "+
			"SUM(CASE WHEN claims.closure = ? THEN 1 ELSE 0 END) AS returned",
			constants.ClaimClosureAccepted, constants.ClaimClosureReturnCompleted).
		Joins("JOIN clients ON clients.id = claims.client_id").
		Where("claims.status = ?", constants.ClaimStatusFinalized).
		Group("claims.client_id, clients.company_name").
		Order("accepted DESC").
		Order("returned DESC").
		Order("claims.client_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TopDrivers 索赔数最多的司机
func (r *GormMetricsRepository) TopDrivers(limit int) ([]MetricsDriverRow, error) {
	var rows []MetricsDriverRow
	query := r.db.Table("claims").
		Select("claims.driver_id AS driver_id, drivers.name AS name, drivers.cpf AS cpf, COUNT(claims.id) AS total").
		Joins("JOIN drivers ON drivers.id = claims.driver_id").
		Group("claims.driver_id, drivers.name, drivers.cpf").
		Order("total DESC").
		Order("claims.driver_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// TopProducts 按包含商品的索赔数排序；closure 非空时仅统计该结案类型的已结案索赔
func (r *GormMetricsRepository) TopProducts(closure string, limit int) ([]MetricsProductRow, error) {
	var rows []MetricsProductRow
	query := r.db.Table("claim_items").
		Select("claim_items.product_id AS product_id, products.name AS name, COUNT(DISTINCT claim_items.claim_id) AS total").
		Joins("JOIN claims ON claims.id = claim_items.claim_id").
		Joins("JOIN products ON products.id = claim_items.product_id")
	if closure != "" {
		query = query.Where("claims.status = ? AND claims.closure = ?", constants.ClaimStatusFinalized, closure)
	}
	query = query.
		Group("claim_items.product_id, products.name").
		Order("total DESC").
		Order("claim_items.product_id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
