package authz

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/casbin/casbin/v3/util"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

const (
	casbinTableName = "casbin_rule"
	userPrefix      = "user:"
	rolePrefix      = "role:"
	// 角色通过 g(role, anchor) 登记，便于列出未分配给任何用户的角色
	roleAnchor = "role:__anchor__"
)

// 主体为 user:{id} 或 role:{name}；obj 支持 keyMatch 通配（claim:* 即全部索赔能力）
const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = (g(r.sub, p.sub) || r.sub == p.sub) && keyMatch(r.obj, p.obj) && (r.act == p.act || p.act == "*")
`

var errUnavailable = errors.New("authz service unavailable")

// Service 基于 casbin 的能力判定与角色分配，策略持久化在 casbin_rule 表
type Service struct {
	enforcer *casbin.SyncedEnforcer
}

// NewService 创建授权服务并加载已有策略
func NewService(db *gorm.DB) (*Service, error) {
	if db == nil {
		return nil, errors.New("authz db is nil")
	}
	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter failed: %w", err)
	}
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model failed: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer failed: %w", err)
	}
	enforcer.AddFunction("keyMatch", util.KeyMatchFunc)
	enforcer.EnableAutoSave(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy failed: %w", err)
	}
	return &Service{enforcer: enforcer}, nil
}

func (s *Service) ready() error {
	if s == nil || s.enforcer == nil {
		return errUnavailable
	}
	return nil
}

func userSubject(userID uint) string {
	return userPrefix + strconv.FormatUint(uint64(userID), 10)
}

// Can 用户是否具备能力（形如 claim:decide）
func (s *Service) Can(userID uint, capability string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	obj, act, err := SplitCapability(capability)
	if err != nil {
		return false, err
	}
	return s.enforcer.Enforce(userSubject(userID), obj, act)
}

func (s *Service) roleExists(role string) (bool, error) {
	return s.enforcer.HasNamedGroupingPolicy("g", role, roleAnchor)
}

// ensureRole 登记角色并授予能力，重复执行不产生重复策略
func (s *Service) ensureRole(role string, capabilities []string) error {
	exists, err := s.roleExists(role)
	if err != nil {
		return fmt.Errorf("check role %s failed: %w", role, err)
	}
	if !exists {
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", role, roleAnchor); err != nil {
			return fmt.Errorf("create role %s failed: %w", role, err)
		}
	}
	for _, capability := range capabilities {
		obj, act, err := SplitCapability(capability)
		if err != nil {
			return err
		}
		if _, err := s.enforcer.AddPolicy(role, obj, act); err != nil {
			return fmt.Errorf("grant %s to %s failed: %w", capability, role, err)
		}
	}
	return nil
}

// ListRoles 已登记的角色（带 role: 前缀，排序）
func (s *Service) ListRoles() ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredNamedGroupingPolicy("g", 1, roleAnchor)
	if err != nil {
		return nil, fmt.Errorf("list roles failed: %w", err)
	}
	roles := make([]string, 0, len(rules))
	for _, rule := range rules {
		if len(rule) > 0 && strings.HasPrefix(rule[0], rolePrefix) {
			roles = append(roles, rule[0])
		}
	}
	sort.Strings(roles)
	return roles, nil
}

// RoleCapabilities 角色直接持有的能力（未展开通配）
func (s *Service) RoleCapabilities(role string) ([]string, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	normalized, err := NormalizeRole(role)
	if err != nil {
		return nil, err
	}
	rules, err := s.enforcer.GetFilteredPolicy(0, normalized)
	if err != nil {
		return nil, fmt.Errorf("get role policies failed: %w", err)
	}
	result := make([]string, 0, len(rules))
	for _, rule := range rules {
		if len(rule) >= 3 {
			result = append(result, rule[1]+":"+rule[2])
		}
	}
	sort.Strings(result)
	return result, nil
}

// SetUserRoles 覆盖用户角色；任一角色未登记则整体拒绝
func (s *Service) SetUserRoles(userID uint, roles []string) error {
	if userID == 0 {
		return errors.New("user id is required")
	}
	if err := s.ready(); err != nil {
		return err
	}
	normalized := make([]string, 0, len(roles))
	for _, role := range roles {
		name, err := NormalizeRole(role)
		if err != nil {
			return err
		}
		exists, err := s.roleExists(name)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("%w: %s", ErrRoleUnknown, name)
		}
		normalized = append(normalized, name)
	}

	subject := userSubject(userID)
	if _, err := s.enforcer.RemoveFilteredNamedGroupingPolicy("g", 0, subject); err != nil {
		return fmt.Errorf("clear user roles failed: %w", err)
	}
	for _, role := range normalized {
		if _, err := s.enforcer.AddNamedGroupingPolicy("g", subject, role); err != nil {
			return fmt.Errorf("assign user role failed: %w", err)
		}
	}
	return nil
}

// GetUserRoles 用户当前角色（排序）
func (s *Service) GetUserRoles(userID uint) ([]string, error) {
	if userID == 0 {
		return nil, errors.New("user id is required")
	}
	if err := s.ready(); err != nil {
		return nil, err
	}
	roles, err := s.enforcer.GetRolesForUser(userSubject(userID))
	if err != nil {
		return nil, fmt.Errorf("get user roles failed: %w", err)
	}
	result := make([]string, 0, len(roles))
	for _, role := range roles {
		if strings.HasPrefix(role, rolePrefix) && role != roleAnchor {
			result = append(result, role)
		}
	}
	sort.Strings(result)
	return result, nil
}

// GetUserCapabilities 用户生效能力（通配已展开）
func (s *Service) GetUserCapabilities(userID uint) ([]string, error) {
	result := make([]string, 0)
	for _, capability := range AllCapabilities() {
		allowed, err := s.Can(userID, capability)
		if err != nil {
			return nil, err
		}
		if allowed {
			result = append(result, capability)
		}
	}
	return result, nil
}
