package authz

import (
	"errors"
	"fmt"
	"strings"
)

// 能力标识（资源:动作）
const (
	CapClaimCreate    = "claim:create"
	CapClaimView      = "claim:view"
	CapClaimDecide    = "claim:decide"
	CapClaimReturn    = "claim:return"
	CapClaimNote      = "claim:note"
	CapClaimPhoto     = "claim:photo"
	CapClaimEdit      = "claim:edit"
	CapClaimSearch    = "claim:search"
	CapClaimExport    = "claim:export"
	CapClaimLiability = "claim:liability"
	CapDashboardView  = "dashboard:view"
	CapReferenceView  = "reference:view"
	CapReferenceEdit  = "reference:manage"
	CapUserManage     = "user:manage"
)

// AllCapabilities 全部能力（用于接口展示与校验）
func AllCapabilities() []string {
	return []string{
		CapClaimCreate,
		CapClaimView,
		CapClaimDecide,
		CapClaimReturn,
		CapClaimNote,
		CapClaimPhoto,
		CapClaimEdit,
		CapClaimSearch,
		CapClaimExport,
		CapClaimLiability,
		CapDashboardView,
		CapReferenceView,
		CapReferenceEdit,
		CapUserManage,
	}
}

// SplitCapability "Claim:Decide" -> ("claim", "decide")
func SplitCapability(capability string) (string, string, error) {
	obj, act, ok := strings.Cut(strings.ToLower(strings.TrimSpace(capability)), ":")
	obj, act = strings.TrimSpace(obj), strings.TrimSpace(act)
	if !ok || obj == "" || act == "" {
		return "", "", fmt.Errorf("%w: %q", ErrCapabilityInvalid, capability)
	}
	return obj, act, nil
}

// NormalizeRole "Gestor" -> "role:gestor"；空格替换为下划线，保留名不可用
func NormalizeRole(role string) (string, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(role)), " ", "_")
	name = strings.TrimPrefix(name, rolePrefix)
	if name == "" {
		return "", errors.New("role is required")
	}
	name = rolePrefix + name
	if name == roleAnchor {
		return "", errors.New("reserved role is not allowed")
	}
	return name, nil
}
