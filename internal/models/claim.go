package models

import (
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
)

// Claim 货损索赔（avaria）主表
type Claim struct {
	ID                   uint       `gorm:"primarykey" json:"id"`                                          // 主键
	ClientID             uint       `gorm:"index;not null" json:"client_id"`                               // 客户ID
	InvoiceNumber        string     `gorm:"type:varchar(50);index;not null" json:"invoice_number"`         // 发货发票号（NF）
	DriverID             *uint      `gorm:"index" json:"driver_id,omitempty"`                              // 事故司机ID
	VehicleID            *uint      `gorm:"index" json:"vehicle_id,omitempty"`                             // 事故车辆ID
	TrailerID            *uint      `gorm:"index" json:"trailer_id,omitempty"`                             // 事故挂车ID
	Status               string     `gorm:"type:varchar(30);index;not null" json:"status"`                 // 当前状态
	Decision             string     `gorm:"type:varchar(20)" json:"decision,omitempty"`                    // 决策动作（accept/return）
	InvoiceRetained      bool       `gorm:"not null;default:false" json:"invoice_retained"`                // 发票是否在验货时被扣留
	RetentionHours       *int       `json:"retention_hours,omitempty"`                                     // 扣留小时数
	Closure              string     `gorm:"type:varchar(30);index" json:"closure,omitempty"`               // 结案类型
	Liability            string     `gorm:"type:varchar(30);index" json:"liability,omitempty"`             // 损失责任方
	ReturnInvoiceNumber  string     `gorm:"type:varchar(50);index" json:"return_invoice_number,omitempty"` // 退货发票号（NFD）
	ReturnDriverID       *uint      `gorm:"index" json:"return_driver_id,omitempty"`                       // 退货司机ID
	ReturnVehicleID      *uint      `gorm:"index" json:"return_vehicle_id,omitempty"`                      // 退货车辆ID
	ReturnTrailerID      *uint      `gorm:"index" json:"return_trailer_id,omitempty"`                      // 退货挂车ID
	DistributionCenterID *uint      `gorm:"index" json:"distribution_center_id,omitempty"`                 // 逆向物流仓储中心ID
	CreatedByID          uint       `gorm:"index;not null" json:"created_by_id"`                           // 创建人ID
	Location             string     `gorm:"type:varchar(100);index" json:"location"`                       // 作业地点（自由文本）
	Value                *Money     `gorm:"type:decimal(12,2)" json:"value"`                               // 货值
	Version              uint       `gorm:"not null;default:1" json:"version"`                             // 乐观锁版本号
	CreatedAt            time.Time  `gorm:"index" json:"created_at"`                                       // 创建时间
	DecidedAt            *time.Time `gorm:"index" json:"decided_at"`                                       // 决策时间
	ReturnStartedAt      *time.Time `gorm:"index" json:"return_started_at"`                                // 退货出发时间
	FinalizedAt          *time.Time `gorm:"index" json:"finalized_at"`                                     // 结案时间
	UpdatedAt            time.Time  `gorm:"index" json:"updated_at"`                                       // 更新时间

	Client             *Client             `gorm:"foreignKey:ClientID" json:"client,omitempty"`                          // 客户
	Driver             *Driver             `gorm:"foreignKey:DriverID" json:"driver,omitempty"`                          // 事故司机
	Vehicle            *Vehicle            `gorm:"foreignKey:VehicleID" json:"vehicle,omitempty"`                        // 事故车辆
	Trailer            *Vehicle            `gorm:"foreignKey:TrailerID" json:"trailer,omitempty"`                        // 事故挂车
	ReturnDriver       *Driver             `gorm:"foreignKey:ReturnDriverID" json:"return_driver,omitempty"`             // 退货司机
	ReturnVehicle      *Vehicle            `gorm:"foreignKey:ReturnVehicleID" json:"return_vehicle,omitempty"`           // 退货车辆
	ReturnTrailer      *Vehicle            `gorm:"foreignKey:ReturnTrailerID" json:"return_trailer,omitempty"`           // 退货挂车
	DistributionCenter *DistributionCenter `gorm:"foreignKey:DistributionCenterID" json:"distribution_center,omitempty"` // 仓储中心
	CreatedBy          *User               `gorm:"foreignKey:CreatedByID" json:"created_by,omitempty"`                   // 创建人
	Items              []ClaimItem         `gorm:"foreignKey:ClaimID" json:"items,omitempty"`                            // 明细
	Photos             []ClaimPhoto        `gorm:"foreignKey:ClaimID" json:"photos,omitempty"`                           // 照片
	LogEntries         []ClaimLogEntry     `gorm:"foreignKey:ClaimID" json:"log_entries,omitempty"`                      // 审计日志
}

// TableName 指定表名
func (Claim) TableName() string {
	return "claims"
}

// DaysOpen 处于待决策阶段的天数（未决策时截至 now）
func (c *Claim) DaysOpen(now time.Time) int {
	if c == nil || c.CreatedAt.IsZero() {
		return 0
	}
	end := now
	if c.DecidedAt != nil {
		end = *c.DecidedAt
	}
	return wholeDays(c.CreatedAt, end)
}

// DaysAwaitingReturn 等待退货出发的天数
func (c *Claim) DaysAwaitingReturn(now time.Time) int {
	if c == nil || c.DecidedAt == nil || c.Decision != constants.ClaimDecisionReturn {
		return 0
	}
	end := now
	if c.ReturnStartedAt != nil {
		end = *c.ReturnStartedAt
	}
	return wholeDays(*c.DecidedAt, end)
}

// DaysInTransit 退货在途天数
func (c *Claim) DaysInTransit(now time.Time) int {
	if c == nil || c.ReturnStartedAt == nil {
		return 0
	}
	end := now
	if c.FinalizedAt != nil {
		end = *c.FinalizedAt
	}
	return wholeDays(*c.ReturnStartedAt, end)
}

func wholeDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours() / 24)
}

// ClaimItem 索赔商品明细
type ClaimItem struct {
	ID        uint      `gorm:"primarykey" json:"id"`               // 主键
	ClaimID   uint      `gorm:"index;not null" json:"claim_id"`     // 索赔ID
	ProductID uint      `gorm:"index;not null" json:"product_id"`   // 商品ID
	Quantity  int       `gorm:"not null;default:1" json:"quantity"` // 数量
	Lot       string    `gorm:"type:varchar(50)" json:"lot"`        // 批次号
	CreatedAt time.Time `json:"created_at"`                         // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                         // 更新时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 商品
}

// TableName 指定表名
func (ClaimItem) TableName() string {
	return "claim_items"
}

// ClaimPhoto 索赔照片（现场证据或签收凭证）
type ClaimPhoto struct {
	ID           uint      `gorm:"primarykey" json:"id"`                          // 主键
	ClaimID      uint      `gorm:"index;not null" json:"claim_id"`                // 索赔ID
	Kind         string    `gorm:"type:varchar(20);index;not null" json:"kind"`   // 照片类型
	StorageKey   string    `gorm:"type:varchar(255);not null" json:"storage_key"` // 存储键
	URL          string    `gorm:"type:varchar(500)" json:"url"`                  // 访问地址
	FileName     string    `gorm:"type:varchar(255)" json:"file_name"`            // 原始文件名
	MimeType     string    `gorm:"type:varchar(100)" json:"mime_type"`            // 文件类型
	Size         int64     `gorm:"not null;default:0" json:"size"`                // 文件大小
	UploadedByID *uint     `gorm:"index" json:"uploaded_by_id,omitempty"`         // 上传人ID
	UploadedBy   string    `gorm:"type:varchar(150)" json:"uploaded_by"`          // 上传人用户名
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                       // 上传时间
}

// TableName 指定表名
func (ClaimPhoto) TableName() string {
	return "claim_photos"
}

// ClaimLogEntry 索赔审计日志（只追加）
type ClaimLogEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`                                   // 主键
	ClaimID   uint      `gorm:"uniqueIndex:idx_claim_log_seq;not null" json:"claim_id"` // 索赔ID
	Seq       int       `gorm:"uniqueIndex:idx_claim_log_seq;not null" json:"seq"`      // 索赔内序号
	UserID    *uint     `gorm:"index" json:"user_id,omitempty"`                         // 操作人ID
	Username  string    `gorm:"type:varchar(150);not null" json:"username"`             // 操作人用户名
	Action    string    `gorm:"type:varchar(60);index;not null" json:"action"`          // 动作标签
	Detail    string    `gorm:"type:text" json:"detail"`                                // 详情
	CreatedAt time.Time `gorm:"index" json:"created_at"`                                // 记录时间
}

// TableName 指定表名
func (ClaimLogEntry) TableName() string {
	return "claim_log_entries"
}
