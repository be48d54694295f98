package repository

import "time"

// ClaimListFilter 查询索赔列表的过滤条件
type ClaimListFilter struct {
	Page                 int
	PageSize             int
	Status               string
	Statuses             []string
	CreatedFrom          *time.Time
	CreatedTo            *time.Time
	InvoiceNumber        string
	ReturnInvoiceNumber  string
	Plate                string
	DriverCPF            string
	DriverName           string
	Location             string
	Keyword              string
	ClientID             uint
	DistributionCenterID *uint
	LiabilityPending     bool
	WithRelations        bool
	WithItems            bool
}

// ReferenceListFilter 查询参考数据列表的过滤条件
type ReferenceListFilter struct {
	Page     int
	PageSize int
	Search   string
	Kind     string // 仅车辆使用（main/trailer）
	IsActive *bool
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	AccessLevel string
	IsActive    *bool
}

// UserLoginLogListFilter 查询用户登录日志列表的过滤条件
type UserLoginLogListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Username    string
	Status      string
	FailReason  string
	ClientIP    string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// AuthzAuditLogListFilter 查询权限审计日志的过滤条件
type AuthzAuditLogListFilter struct {
	Page           int
	PageSize       int
	OperatorUserID uint
	TargetUserID   uint
	Action         string
	CreatedFrom    *time.Time
	CreatedTo      *time.Time
}
