package models

import "time"

// Client 客户（托运方）
type Client struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                 // 主键
	CompanyName  string    `gorm:"type:varchar(200);index;not null" json:"company_name"` // 公司名称（razão social）
	CNPJ         string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"cnpj"`    // 企业税号
	Address      string    `gorm:"type:text" json:"address"`                             // 地址
	ContactName  string    `gorm:"type:varchar(100)" json:"contact_name"`                // 联系人
	ContactPhone string    `gorm:"type:varchar(20)" json:"contact_phone"`                // 联系电话
	Active       bool      `gorm:"not null;default:true;index" json:"active"`            // 是否启用
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt    time.Time `gorm:"index" json:"updated_at"`                              // 更新时间
}

// TableName 指定表名
func (Client) TableName() string {
	return "clients"
}

// DisplayLabel 责任描述使用的展示文本
func (c *Client) DisplayLabel() string {
	if c == nil {
		return ""
	}
	return c.CompanyName + " (" + c.CNPJ + ")"
}
