package models

import "time"

// Driver 司机
type Driver struct {
	ID        uint      `gorm:"primarykey" json:"id"`                             // 主键
	Name      string    `gorm:"type:varchar(200);index;not null" json:"name"`     // 姓名
	CPF       string    `gorm:"type:varchar(14);uniqueIndex;not null" json:"cpf"` // 个人税号
	Phone     string    `gorm:"type:varchar(20)" json:"phone"`                    // 电话
	Active    bool      `gorm:"not null;default:true;index" json:"active"`        // 是否启用
	CreatedAt time.Time `gorm:"index" json:"created_at"`                          // 创建时间
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`                          // 更新时间
}

// TableName 指定表名
func (Driver) TableName() string {
	return "drivers"
}
