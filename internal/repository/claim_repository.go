package repository

import (
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"

	"gorm.io/gorm"
)

// ClaimRepository 索赔数据访问接口
type ClaimRepository interface {
	Create(claim *models.Claim) error
	GetByID(id uint) (*models.Claim, error)
	GetDetail(id uint) (*models.Claim, error)
	UpdateVersioned(id uint, version uint, updates map[string]interface{}) (bool, error)
	List(filter ClaimListFilter) ([]models.Claim, int64, error)
	CountAwaitingByDistributionCenter() (map[uint]int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) *GormClaimRepository
}

// GormClaimRepository GORM 实现
type GormClaimRepository struct {
	db *gorm.DB
}

// NewClaimRepository 创建索赔仓库
func NewClaimRepository(db *gorm.DB) *GormClaimRepository {
	return &GormClaimRepository{db: db}
}

// WithTx 绑定事务
func (r *GormClaimRepository) WithTx(tx *gorm.DB) *GormClaimRepository {
	if tx == nil {
		return r
	}
	return &GormClaimRepository{db: tx}
}

// Transaction 执行事务
func (r *GormClaimRepository) Transaction(fn func(tx *gorm.DB) error) error {
	return r.db.Transaction(fn)
}

func withClaimRelations(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Client").
		Preload("Driver").
		Preload("Vehicle").
		Preload("Trailer").
		Preload("DistributionCenter")
}

// Create 创建索赔（明细通过 Items 一并写入）
func (r *GormClaimRepository) Create(claim *models.Claim) error {
	return r.db.Create(claim).Error
}

// GetByID 获取索赔本体（不加载关联）
func (r *GormClaimRepository) GetByID(id uint) (*models.Claim, error) {
	return firstOrNil[models.Claim](r.db, id)
}

// GetDetail 获取索赔详情（含全部关联与有序日志）
func (r *GormClaimRepository) GetDetail(id uint) (*models.Claim, error) {
	query := withClaimRelations(r.db).
		Preload("ReturnDriver").
		Preload("ReturnVehicle").
		Preload("ReturnTrailer").
		Preload("CreatedBy").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("Items.Product").
		Preload("Photos", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).
		Preload("LogEntries", func(db *gorm.DB) *gorm.DB { return db.Order("seq asc") })
	return firstOrNil[models.Claim](query, id)
}

// UpdateVersioned 按版本号更新索赔，版本不匹配时返回 false
func (r *GormClaimRepository) UpdateVersioned(id uint, version uint, updates map[string]interface{}) (bool, error) {
	if id == 0 {
		return false, nil
	}
	payload := make(map[string]interface{}, len(updates)+1)
	for key, value := range updates {
		payload[key] = value
	}
	payload["version"] = gorm.Expr("version + 1")
	result := r.db.Model(&models.Claim{}).
		Where("id = ? AND version = ?", id, version).
		Updates(payload)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// List 按条件查询索赔列表，默认按创建时间倒序
func (r *GormClaimRepository) List(filter ClaimListFilter) ([]models.Claim, int64, error) {
	query := r.applyFilter(r.db.Model(&models.Claim{}), filter)

	query, total, err := countAndPage(query, filter.Page, filter.PageSize)
	if err != nil {
		return nil, 0, err
	}
	if filter.WithRelations {
		query = withClaimRelations(query)
	}
	if filter.WithItems {
		query = query.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id asc") }).Preload("Items.Product")
	}
	if filter.LiabilityPending {
		query = query.Order("finalized_at desc").Order("id desc")
	} else {
		query = query.Order("created_at desc").Order("id desc")
	}

	var claims []models.Claim
	if err := query.Find(&claims).Error; err != nil {
		return nil, 0, err
	}
	return claims, total, nil
}

func (r *GormClaimRepository) applyFilter(query *gorm.DB, filter ClaimListFilter) *gorm.DB {
	operator := likeOperator(r.db)
	like := func(column string) string { return likeClause(column, operator) }

	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("claims.status = ?", status)
	}
	if len(filter.Statuses) > 0 {
		query = query.Where("claims.status IN ?", filter.Statuses)
	}
	if filter.LiabilityPending {
		query = query.Where("claims.status = ? AND claims.closure = ? AND (claims.liability IS NULL OR claims.liability = '')",
			constants.ClaimStatusFinalized, constants.ClaimClosureReturnCompleted)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("claims.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("claims.created_at <= ?", *filter.CreatedTo)
	}
	if filter.ClientID != 0 {
		query = query.Where("claims.client_id = ?", filter.ClientID)
	}
	if filter.DistributionCenterID != nil {
		query = query.Where("claims.distribution_center_id = ?", *filter.DistributionCenterID)
	}
	if value := strings.TrimSpace(filter.InvoiceNumber); value != "" {
		query = query.Where(like("claims.invoice_number"), containsPattern(value))
	}
	if value := strings.TrimSpace(filter.ReturnInvoiceNumber); value != "" {
		query = query.Where(like("claims.return_invoice_number"), containsPattern(value))
	}
	if value := strings.TrimSpace(filter.Location); value != "" {
		query = query.Where(like("claims.location"), containsPattern(value))
	}
	if value := strings.TrimSpace(filter.Plate); value != "" {
		vehicles := r.db.Model(&models.Vehicle{}).Select("id").Where(like("plate"), containsPattern(value))
		query = query.Where("(claims.vehicle_id IN (?) OR claims.trailer_id IN (?))", vehicles, vehicles)
	}
	if value := strings.TrimSpace(filter.DriverCPF); value != "" {
		drivers := r.db.Model(&models.Driver{}).Select("id").Where(like("cpf"), containsPattern(value))
		query = query.Where("claims.driver_id IN (?)", drivers)
	}
	if value := strings.TrimSpace(filter.DriverName); value != "" {
		drivers := r.db.Model(&models.Driver{}).Select("id").Where(like("name"), containsPattern(value))
		query = query.Where("claims.driver_id IN (?)", drivers)
	}
	if value := strings.TrimSpace(filter.Keyword); value != "" {
		pattern := containsPattern(value)
		clients := r.db.Model(&models.Client{}).Select("id").Where(like("company_name"), pattern)
		products := r.db.Model(&models.Product{}).Select("id").Where(like("name"), pattern)
		items := r.db.Model(&models.ClaimItem{}).Select("claim_id").Where("product_id IN (?)", products)
		vehicles := r.db.Model(&models.Vehicle{}).Select("id").Where(like("plate"), pattern)
		drivers := r.db.Model(&models.Driver{}).Select("id").Where(like("name"), pattern)
		query = query.Where(
			"("+like("claims.invoice_number")+" OR claims.client_id IN (?) OR claims.id IN (?) OR claims.vehicle_id IN (?) OR claims.trailer_id IN (?) OR claims.driver_id IN (?))",
			pattern, clients, items, vehicles, vehicles, drivers,
		)
	}
	return query
}

// CountAwaitingByDistributionCenter 统计等待退货的索赔在各 CD 的数量（键 0 表示未指定 CD）
func (r *GormClaimRepository) CountAwaitingByDistributionCenter() (map[uint]int64, error) {
	type row struct {
		DistributionCenterID *uint
		Total                int64
	}
	var rows []row
	if err := r.db.Model(&models.Claim{}).
		Select("distribution_center_id, COUNT(*) as total").
		Where("status = ?", constants.ClaimStatusAwaitingReturn).
		Group("distribution_center_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make(map[uint]int64, len(rows))
	for _, item := range rows {
		key := uint(0)
		if item.DistributionCenterID != nil {
			key = *item.DistributionCenterID
		}
		result[key] += item.Total
	}
	return result, nil
}
