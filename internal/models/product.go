package models

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Product 商品（药品）
type Product struct {
	ID          uint      `gorm:"primarykey" json:"id"`                                      // 主键
	Name        string    `gorm:"type:varchar(200);index;not null" json:"name"`              // 商品名称
	Laboratory  string    `gorm:"type:varchar(200)" json:"laboratory"`                       // 生产实验室
	ControlCode string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"control_code"` // 控制编码
	Active      bool      `gorm:"not null;default:true;index" json:"active"`                 // 是否启用
	CreatedAt   time.Time `gorm:"index" json:"created_at"`                                   // 创建时间
	UpdatedAt   time.Time `gorm:"index" json:"updated_at"`                                   // 更新时间
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}

// BeforeCreate 未填写控制编码时自动生成
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if strings.TrimSpace(p.ControlCode) == "" {
		p.ControlCode = GenerateControlCode(time.Now())
	}
	return nil
}

// GenerateControlCode 生成 CTL-{unix}-{100..999} 格式的控制编码
func GenerateControlCode(now time.Time) string {
	return fmt.Sprintf("CTL-%d-%d", now.Unix(), 100+rand.Intn(900))
}
