package models

import (
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
)

// Vehicle 车辆（牵引车或挂车）
type Vehicle struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                       // 主键
	Plate       string    `gorm:"type:varchar(8);uniqueIndex;not null" json:"plate"`          // 车牌
	Kind        string    `gorm:"type:varchar(20);not null;default:'main'" json:"kind"`       // 车辆类型
	Ownership   string    `gorm:"type:varchar(20);not null;default:'fleet'" json:"ownership"` // 车辆归属
	Model       string    `gorm:"type:varchar(100)" json:"model"`                             // 车型
	CarrierName string    `gorm:"type:varchar(200)" json:"carrier_name"`                      // 合作承运商名称
	CarrierCNPJ string    `gorm:"type:varchar(20)" json:"carrier_cnpj"`                       // 合作承运商税号
	Active      bool      `gorm:"not null;default:true;index" json:"active"`                  // 是否启用
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                    // 创建时间
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`                                    // 更新时间
}

// TableName 指定表名
func (Vehicle) TableName() string {
	return "vehicles"
}

// IsThirdParty 是否为第三方承运车辆
func (v *Vehicle) IsThirdParty() bool {
	return v != nil && v.Ownership == constants.VehicleOwnershipThirdParty
}
