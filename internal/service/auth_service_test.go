package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/authz"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"

	"gorm.io/gorm"
)

func setupAuthServiceTest(t *testing.T) (*AuthService, *gorm.DB) {
	t.Helper()
	db := openServiceTestDB(t)
	cfg := &config.Config{
		JWT: config.JWTConfig{SecretKey: "test-secret", ExpireHours: 8, MobileExpireHours: 72},
		Security: config.SecurityConfig{
			PasswordPolicy: config.PasswordPolicyConfig{MinLength: 8, RequireNumber: true},
		},
	}
	logs := NewUserLoginLogService(repository.NewUserLoginLogRepository(db), nil)
	return NewAuthService(cfg, repository.NewUserRepository(db), logs), db
}

func createAuthTestUser(t *testing.T, svc *AuthService, db *gorm.DB, username, accessLevel string) *models.User {
	t.Helper()
	hash, err := svc.HashPassword("Senha123")
	if err != nil {
		t.Fatalf("hash password failed: %v", err)
	}
	user := &models.User{Username: username, PasswordHash: hash, AccessLevel: accessLevel, IsActive: true}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	return user
}

func loginLogReasons(t *testing.T, db *gorm.DB) []string {
	t.Helper()
	var logs []models.UserLoginLog
	if err := db.Order("id asc").Find(&logs).Error; err != nil {
		t.Fatalf("load login logs failed: %v", err)
	}
	reasons := make([]string, 0, len(logs))
	for _, log := range logs {
		reasons = append(reasons, log.Status+":"+log.FailReason)
	}
	return reasons
}

func TestAuthServiceLogin(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	ctx := context.Background()
	createAuthTestUser(t, svc, db, "gestor", constants.UserAccessFull)
	createAuthTestUser(t, svc, db, "motorista", constants.UserAccessMobile)

	result, err := svc.Login(ctx, LoginInput{Username: "GESTOR", Password: "Senha123", ClientIP: "10.0.0.1"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" || result.User.LastLoginAt == nil {
		t.Fatalf("expected token and last login, got %+v", result)
	}
	claims, err := svc.ParseJWT(result.Token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if claims.UserID != result.User.ID || claims.AccessLevel != constants.UserAccessFull || claims.Source != constants.LoginLogSourceWeb {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := svc.Login(ctx, LoginInput{Username: "gestor", Password: "errada"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Username: "motorista", Password: "Senha123"}); !errors.Is(err, ErrAccessLevelDenied) {
		t.Fatalf("expected access level denied for web login, got %v", err)
	}
	mobile, err := svc.Login(ctx, LoginInput{Username: "motorista", Password: "Senha123", Source: "MOBILE"})
	if err != nil {
		t.Fatalf("mobile login failed: %v", err)
	}
	if got := mobile.ExpiresAt.Sub(time.Now()); got < 71*time.Hour {
		t.Fatalf("mobile token should use mobile expiry, got %s", got)
	}

	want := []string{
		"success:",
		"failed:" + constants.LoginLogFailReasonInvalidCredentials,
		"failed:" + constants.LoginLogFailReasonAccessDenied,
		"success:",
	}
	got := loginLogReasons(t, db)
	if len(got) != len(want) {
		t.Fatalf("login logs want %v got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("login log %d want %s got %s", i, want[i], got[i])
		}
	}
}

func TestAuthServiceDisabledUser(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	user := createAuthTestUser(t, svc, db, "inativo", constants.UserAccessFull)
	if err := db.Model(user).Update("is_active", false).Error; err != nil {
		t.Fatalf("disable user failed: %v", err)
	}
	if _, err := svc.Login(context.Background(), LoginInput{Username: "inativo", Password: "Senha123"}); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected user disabled, got %v", err)
	}
}

func TestAuthServiceChangePasswordRevokesTokens(t *testing.T) {
	svc, db := setupAuthServiceTest(t)
	ctx := context.Background()
	user := createAuthTestUser(t, svc, db, "gestor", constants.UserAccessFull)
	svc.now = func() time.Time { return time.Now().Add(-time.Hour) }

	result, err := svc.Login(ctx, LoginInput{Username: "gestor", Password: "Senha123"})
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	claims, err := svc.ParseJWT(result.Token)
	if err != nil {
		t.Fatalf("parse token failed: %v", err)
	}
	if _, err := svc.ValidateToken(ctx, claims); err != nil {
		t.Fatalf("token should be valid: %v", err)
	}

	if err := svc.ChangePassword(ctx, user.ID, "errada", "NovaSenha1"); !errors.Is(err, ErrInvalidPassword) {
		t.Fatalf("expected invalid password, got %v", err)
	}
	if err := svc.ChangePassword(ctx, user.ID, "Senha123", "curta"); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected weak password, got %v", err)
	}
	svc.now = time.Now
	if err := svc.ChangePassword(ctx, user.ID, "Senha123", "NovaSenha1"); err != nil {
		t.Fatalf("change password failed: %v", err)
	}
	if _, err := svc.ValidateToken(ctx, claims); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old token should be revoked, got %v", err)
	}
	if _, err := svc.Login(ctx, LoginInput{Username: "gestor", Password: "NovaSenha1"}); err != nil {
		t.Fatalf("login with new password failed: %v", err)
	}
}

func TestUserServiceManagement(t *testing.T) {
	authSvc, db := setupAuthServiceTest(t)
	authzSvc, err := authz.NewService(db)
	if err != nil {
		t.Fatalf("new authz service failed: %v", err)
	}
	if err := authzSvc.BootstrapBuiltinRoles(); err != nil {
		t.Fatalf("bootstrap roles failed: %v", err)
	}
	audit := NewAuthzAuditService(repository.NewAuthzAuditLogRepository(db), authzSvc)
	svc := NewUserService(repository.NewUserRepository(db), authSvc, authzSvc, authzSvc, audit)
	ctx := context.Background()
	root := Actor{UserID: 999, Username: "root", IsSuper: true}

	created, err := svc.CreateUser(ctx, root, UserInput{
		Username:    "operador",
		Password:    "Senha123",
		AccessLevel: "mobile",
		Location:    "Cajamar",
		Roles:       []string{constants.RoleOperational},
	})
	if err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	if len(created.Roles) != 1 || created.AccessLevel != constants.UserAccessMobile {
		t.Fatalf("unexpected created user: %+v", created)
	}
	if _, err := svc.CreateUser(ctx, root, UserInput{Username: "operador", Password: "Senha123"}); !errors.Is(err, ErrUsernameTaken) {
		t.Fatalf("expected username taken, got %v", err)
	}
	if _, err := svc.CreateUser(ctx, root, UserInput{Username: "x", Password: "Senha123", Roles: []string{"diretor"}}); !errors.Is(err, ErrRoleInvalid) {
		t.Fatalf("expected invalid role, got %v", err)
	}

	operator := Actor{UserID: created.ID, Username: created.Username}
	if _, _, err := svc.ListUsers(ctx, operator, repository.UserListFilter{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("operational user must not manage users, got %v", err)
	}

	updated, err := svc.UpdateUser(ctx, root, created.ID, UserInput{AccessLevel: "full", Location: "Extrema"})
	if err != nil {
		t.Fatalf("update user failed: %v", err)
	}
	if updated.AccessLevel != constants.UserAccessFull || updated.TokenVersion != 1 {
		t.Fatalf("access level change should bump token version: %+v", updated)
	}

	if err := svc.SetUserActive(ctx, root, root.UserID, false); !errors.Is(err, ErrUserSelfDeactivate) {
		t.Fatalf("expected self deactivate error, got %v", err)
	}
	if err := svc.SetUserActive(ctx, root, created.ID, false); err != nil {
		t.Fatalf("deactivate user failed: %v", err)
	}
	if _, err := authSvc.Login(ctx, LoginInput{Username: "operador", Password: "Senha123"}); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("deactivated user should not log in, got %v", err)
	}

	logs, total, err := audit.List(ctx, root, repository.AuthzAuditLogListFilter{TargetUserID: created.ID})
	if err != nil {
		t.Fatalf("list audit logs failed: %v", err)
	}
	if total != 3 {
		t.Fatalf("audit logs want 3 got %d", total)
	}
	if logs[0].Action != AuthzAuditActionUserDeactivated || logs[2].Action != AuthzAuditActionRolesSet {
		t.Fatalf("unexpected audit order: %s, %s", logs[0].Action, logs[2].Action)
	}
	if _, _, err := audit.List(ctx, operator, repository.AuthzAuditLogListFilter{}); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected forbidden audit listing, got %v", err)
	}
}
