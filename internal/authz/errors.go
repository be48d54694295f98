package authz

import "errors"

var (
	// ErrCapabilityInvalid 能力标识格式错误
	ErrCapabilityInvalid = errors.New("invalid capability")
	// ErrRoleUnknown 角色未定义
	ErrRoleUnknown = errors.New("unknown role")
)
