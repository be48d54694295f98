package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// JSON 审计详情等半结构化字段
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = make(JSON)
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return nil
	}
}

// AuthzAuditLog 用户权限变更审计日志
// 说明：记录角色分配、访问级别调整与账号停用/启用，支持按操作人与时间范围检索。
type AuthzAuditLog struct {
	ID               uint      `gorm:"primarykey" json:"id"`
	OperatorUserID   uint      `gorm:"index;not null" json:"operator_user_id"`
	OperatorUsername string    `gorm:"type:varchar(150);index;not null;default:''" json:"operator_username"`
	TargetUserID     *uint     `gorm:"index" json:"target_user_id,omitempty"`
	TargetUsername   string    `gorm:"type:varchar(150);index;not null;default:''" json:"target_username"`
	Action           string    `gorm:"type:varchar(100);index;not null" json:"action"`
	Roles            string    `gorm:"type:varchar(255);not null;default:''" json:"roles"`
	RequestID        string    `gorm:"type:varchar(64);index;not null;default:''" json:"request_id"`
	DetailJSON       JSON      `gorm:"type:json" json:"detail"`
	CreatedAt        time.Time `gorm:"index" json:"created_at"`
}

// TableName 指定表名
func (AuthzAuditLog) TableName() string {
	return "authz_audit_logs"
}
