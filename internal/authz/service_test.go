package authz

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupAuthzServiceTest(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	svc, err := NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	return svc
}

func TestBuiltinRoleMatrix(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SetUserRoles(1, []string{constants.RoleManager}); err != nil {
		t.Fatalf("set manager role failed: %v", err)
	}
	if err := svc.SetUserRoles(2, []string{constants.RoleOperational}); err != nil {
		t.Fatalf("set operational role failed: %v", err)
	}

	cases := []struct {
		userID     uint
		capability string
		want       bool
	}{
		{1, CapDashboardView, true},
		{1, CapClaimLiability, true},
		{1, CapClaimExport, true},
		{1, CapReferenceEdit, true},
		{1, CapUserManage, false},
		{2, CapClaimCreate, true},
		{2, CapClaimDecide, true},
		{2, CapReferenceEdit, true},
		{2, CapDashboardView, false},
		{2, CapClaimLiability, false},
		{2, CapClaimSearch, false},
		{2, CapClaimExport, false},
		{3, CapClaimView, false},
	}
	for _, tc := range cases {
		allowed, err := svc.Can(tc.userID, tc.capability)
		if err != nil {
			t.Fatalf("can %d %s failed: %v", tc.userID, tc.capability, err)
		}
		if allowed != tc.want {
			t.Fatalf("user %d capability %s want %v got %v", tc.userID, tc.capability, tc.want, allowed)
		}
	}
}

func TestSetUserRolesOverride(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.SetUserRoles(2, []string{"Gestor"}); err != nil {
		t.Fatalf("set first role failed: %v", err)
	}
	if err := svc.SetUserRoles(2, []string{constants.RoleOperational}); err != nil {
		t.Fatalf("set second role failed: %v", err)
	}
	roles, err := svc.GetUserRoles(2)
	if err != nil {
		t.Fatalf("get roles failed: %v", err)
	}
	if len(roles) != 1 || roles[0] != "role:operacional" {
		t.Fatalf("roles want [role:operacional], got=%v", roles)
	}
}

func TestSetUserRolesRejectsUnknownRole(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	err := svc.SetUserRoles(4, []string{"auditor"})
	if !errors.Is(err, ErrRoleUnknown) {
		t.Fatalf("expected ErrRoleUnknown, got %v", err)
	}
}

func TestListRolesAndCapabilities(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	roles, err := svc.ListRoles()
	if err != nil {
		t.Fatalf("list roles failed: %v", err)
	}
	if len(roles) != 2 || roles[0] != "role:gestor" || roles[1] != "role:operacional" {
		t.Fatalf("unexpected roles: %v", roles)
	}

	if err := svc.SetUserRoles(7, []string{constants.RoleOperational}); err != nil {
		t.Fatalf("set role failed: %v", err)
	}
	caps, err := svc.GetUserCapabilities(7)
	if err != nil {
		t.Fatalf("get capabilities failed: %v", err)
	}
	if len(caps) != 9 {
		t.Fatalf("operational capabilities want 9, got %d: %v", len(caps), caps)
	}
}

func TestBootstrapIsIdempotent(t *testing.T) {
	svc := setupAuthzServiceTest(t)
	if err := svc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}
	caps, err := svc.RoleCapabilities(constants.RoleManager)
	if err != nil {
		t.Fatalf("get role capabilities failed: %v", err)
	}
	if len(caps) != 3 || caps[0] != "claim:*" {
		t.Fatalf("manager capabilities want 3 starting with claim:*, got %v", caps)
	}
}

func TestSplitCapability(t *testing.T) {
	obj, act, err := SplitCapability(" Claim:Decide ")
	if err != nil || obj != "claim" || act != "decide" {
		t.Fatalf("unexpected split: %s %s %v", obj, act, err)
	}
	if _, _, err := SplitCapability("claim"); !errors.Is(err, ErrCapabilityInvalid) {
		t.Fatalf("expected ErrCapabilityInvalid, got %v", err)
	}
}

func TestNormalizeRole(t *testing.T) {
	got, err := NormalizeRole(" Role:Gestor ")
	if err != nil || got != "role:gestor" {
		t.Fatalf("unexpected role: %s %v", got, err)
	}
	for _, bad := range []string{"", "role:", "__anchor__"} {
		if _, err := NormalizeRole(bad); err == nil {
			t.Fatalf("role %q should be rejected", bad)
		}
	}
}
