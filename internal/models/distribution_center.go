package models

import "time"

// DistributionCenter 逆向物流仓储中心（CD）
type DistributionCenter struct {
	ID        uint      `gorm:"primarykey" json:"id"`                              // 主键
	Name      string    `gorm:"type:varchar(200);index;not null" json:"name"`      // 名称
	Code      string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // 编码
	Address   string    `gorm:"type:text" json:"address"`                          // 地址
	City      string    `gorm:"type:varchar(100)" json:"city"`                     // 城市
	State     string    `gorm:"type:varchar(2)" json:"state"`                      // 州（UF）
	Manager   string    `gorm:"type:varchar(200)" json:"manager"`                  // 负责人
	Phone     string    `gorm:"type:varchar(20)" json:"phone"`                     // 电话
	Active    bool      `gorm:"not null;default:true;index" json:"active"`         // 是否启用
	CreatedAt time.Time `gorm:"index" json:"created_at"`                           // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                           // 更新时间
}

// TableName 指定表名
func (DistributionCenter) TableName() string {
	return "distribution_centers"
}

// Label 返回 "编码 - 名称" 形式的展示文本
func (d *DistributionCenter) Label() string {
	if d == nil {
		return ""
	}
	return d.Code + " - " + d.Name
}
