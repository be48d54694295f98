package authz

import "github.com/Transbirday/PROJETO-AVARIAS/internal/constants"

// RoleSeed 预置角色定义
type RoleSeed struct {
	Role         string
	Capabilities []string
}

// BuiltinRoleSeeds 系统预置角色矩阵
// gestor 拥有全部业务能力；operacional 不含看板、责任认定与全局检索导出。
// 用户管理仅超级用户可用，不下发给任何角色。
func BuiltinRoleSeeds() []RoleSeed {
	return []RoleSeed{
		{
			Role: constants.RoleManager,
			Capabilities: []string{
				"claim:*",
				CapDashboardView,
				"reference:*",
			},
		},
		{
			Role: constants.RoleOperational,
			Capabilities: []string{
				CapClaimCreate,
				CapClaimView,
				CapClaimDecide,
				CapClaimReturn,
				CapClaimNote,
				CapClaimPhoto,
				CapClaimEdit,
				"reference:*",
			},
		},
	}
}

// BootstrapBuiltinRoles 登记预置角色，可重复执行
func (s *Service) BootstrapBuiltinRoles() error {
	if err := s.ready(); err != nil {
		return err
	}
	for _, seed := range BuiltinRoleSeeds() {
		role, err := NormalizeRole(seed.Role)
		if err != nil {
			return err
		}
		if err := s.ensureRole(role, seed.Capabilities); err != nil {
			return err
		}
	}
	return nil
}
