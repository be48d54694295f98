package models

import (
	"time"
)

// User 系统用户（后台与移动端共用）
type User struct {
	ID                 uint       `gorm:"primarykey" json:"id"`                                           // 主键
	Username           string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`         // 登录名
	PasswordHash       string     `gorm:"not null" json:"-"`                                              // 密码哈希（不返回给前端）
	DisplayName        string     `gorm:"type:varchar(150);default:''" json:"display_name"`               // 显示名称
	Email              string     `gorm:"type:varchar(200);index" json:"email"`                           // 邮箱
	Phone              string     `gorm:"type:varchar(20)" json:"phone"`                                  // 电话
	AccessLevel        string     `gorm:"type:varchar(10);not null;default:'mobile'" json:"access_level"` // 访问级别
	Location           string     `gorm:"type:varchar(100)" json:"location"`                              // 作业地点
	IsSuper            bool       `gorm:"not null;default:false" json:"is_super"`                         // 是否超级用户
	IsActive           bool       `gorm:"not null;default:true;index" json:"is_active"`                   // 是否启用
	TokenVersion       uint64     `gorm:"not null;default:0" json:"-"`                                    // Token 版本（用于全量失效）
	TokenInvalidBefore *time.Time `gorm:"index" json:"-"`                                                 // 该时间点前签发的 Token 失效
	LastLoginAt        *time.Time `json:"last_login_at"`                                                  // 最后登录时间
	CreatedAt          time.Time  `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt          time.Time  `gorm:"index" json:"updated_at"`                                        // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
