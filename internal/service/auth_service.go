package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/cache"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/constants"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// AuthService 认证服务（后台与移动端共用账号体系）
type AuthService struct {
	cfg       *config.Config
	userRepo  repository.UserRepository
	loginLogs *UserLoginLogService
	now       func() time.Time
}

// NewAuthService 创建认证服务实例
func NewAuthService(cfg *config.Config, userRepo repository.UserRepository, loginLogs *UserLoginLogService) *AuthService {
	return &AuthService{
		cfg:       cfg,
		userRepo:  userRepo,
		loginLogs: loginLogs,
		now:       defaultClock(nil),
	}
}

// HashPassword 使用 bcrypt 加密密码
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword 验证密码
func (s *AuthService) VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

// ValidatePassword 校验密码是否符合策略
func (s *AuthService) ValidatePassword(password string) error {
	if s == nil || s.cfg == nil {
		return nil
	}
	return validatePassword(s.cfg.Security.PasswordPolicy, password)
}

// JWTClaims JWT 声明
type JWTClaims struct {
	UserID       uint   `json:"user_id"`
	Username     string `json:"username"`
	AccessLevel  string `json:"access_level"`
	Source       string `json:"source"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// GenerateJWT 生成 JWT Token（移动端使用独立的有效期）
func (s *AuthService) GenerateJWT(user *models.User, source string) (string, time.Time, error) {
	now := s.now()
	hours := s.cfg.JWT.ExpireHours
	if source == constants.LoginLogSourceMobile && s.cfg.JWT.MobileExpireHours > 0 {
		hours = s.cfg.JWT.MobileExpireHours
	}
	if hours <= 0 {
		hours = 24
	}
	expiresAt := now.Add(time.Duration(hours) * time.Hour)

	claims := JWTClaims{
		UserID:       user.ID,
		Username:     user.Username,
		AccessLevel:  user.AccessLevel,
		Source:       source,
		TokenVersion: user.TokenVersion,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.cfg.JWT.SecretKey))
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expiresAt, nil
}

// ParseJWT 解析 JWT Token
func (s *AuthService) ParseJWT(tokenString string) (*JWTClaims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	token, err := parser.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWT.SecretKey), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// LoginInput 登录请求
type LoginInput struct {
	Username  string
	Password  string
	Source    string
	ClientIP  string
	UserAgent string
	RequestID string
}

// LoginResult 登录结果
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

func normalizeLoginSource(raw string) string {
	if strings.EqualFold(strings.TrimSpace(raw), constants.LoginLogSourceMobile) {
		return constants.LoginLogSourceMobile
	}
	return constants.LoginLogSourceWeb
}

// Login 用户登录：移动端访问级别的账号不能登录后台
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	source := normalizeLoginSource(input.Source)
	record := func(userID uint, failReason string) {
		status := constants.LoginLogStatusSuccess
		if failReason != "" {
			status = constants.LoginLogStatusFailed
		}
		if err := s.loginLogs.Record(RecordUserLoginInput{
			UserID:      userID,
			Username:    username,
			Status:      status,
			FailReason:  failReason,
			ClientIP:    input.ClientIP,
			UserAgent:   input.UserAgent,
			LoginSource: source,
			RequestID:   input.RequestID,
		}); err != nil {
			logger.Ctx(ctx).Warnw("login_log_record_failed", "username", username, "error", err)
		}
	}

	user, err := s.userRepo.GetByUsername(username)
	if err != nil {
		record(0, constants.LoginLogFailReasonInternalError)
		return nil, err
	}
	if user == nil || s.VerifyPassword(user.PasswordHash, input.Password) != nil {
		var userID uint
		if user != nil {
			userID = user.ID
		}
		record(userID, constants.LoginLogFailReasonInvalidCredentials)
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		record(user.ID, constants.LoginLogFailReasonUserDisabled)
		return nil, ErrUserDisabled
	}
	if source == constants.LoginLogSourceWeb && !user.IsSuper && user.AccessLevel != constants.UserAccessFull {
		record(user.ID, constants.LoginLogFailReasonAccessDenied)
		return nil, ErrAccessLevelDenied
	}

	token, expiresAt, err := s.GenerateJWT(user, source)
	if err != nil {
		record(user.ID, constants.LoginLogFailReasonInternalError)
		return nil, err
	}

	now := s.now()
	user.LastLoginAt = &now
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"last_login_at": now}); err != nil {
		return nil, err
	}
	if err := cache.SetUserAuthState(ctx, cache.BuildUserAuthState(user)); err != nil {
		logger.Ctx(ctx).Warnw("auth_state_cache_set_failed", "user_id", user.ID, "error", err)
	}
	record(user.ID, "")
	logger.Ctx(ctx).Infow("user_login", "user_id", user.ID, "username", user.Username, "source", source)
	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// ResolveAuthState 读取鉴权快照，缓存未命中时回源数据库
func (s *AuthService) ResolveAuthState(ctx context.Context, userID uint) (*cache.UserAuthState, error) {
	state, hit, err := cache.GetUserAuthState(ctx, userID)
	if err != nil {
		logger.Ctx(ctx).Warnw("auth_state_cache_get_failed", "user_id", userID, "error", err)
	}
	if hit && state != nil {
		return state, nil
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	state = cache.BuildUserAuthState(user)
	if err := cache.SetUserAuthState(ctx, state); err != nil {
		logger.Ctx(ctx).Warnw("auth_state_cache_set_failed", "user_id", userID, "error", err)
	}
	return state, nil
}

// ValidateToken 校验 Token 与账号当前状态（停用、版本号、失效时间点）
func (s *AuthService) ValidateToken(ctx context.Context, claims *JWTClaims) (*cache.UserAuthState, error) {
	if claims == nil || claims.UserID == 0 {
		return nil, ErrInvalidCredentials
	}
	state, err := s.ResolveAuthState(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !state.IsActive {
		return nil, ErrUserDisabled
	}
	var issuedAt *time.Time
	if claims.IssuedAt != nil {
		issuedAt = &claims.IssuedAt.Time
	}
	if !state.Accepts(claims.TokenVersion, issuedAt) {
		return nil, ErrInvalidCredentials
	}
	return state, nil
}

// GetCurrentUser 当前登录用户
func (s *AuthService) GetCurrentUser(userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// ChangePassword 修改密码，成功后使既有 Token 全部失效
func (s *AuthService) ChangePassword(ctx context.Context, userID uint, oldPassword, newPassword string) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if err := s.VerifyPassword(user.PasswordHash, oldPassword); err != nil {
		return ErrInvalidPassword
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	hashedPassword, err := s.HashPassword(newPassword)
	if err != nil {
		return err
	}

	now := s.now()
	user.PasswordHash = hashedPassword
	user.TokenVersion++
	user.TokenInvalidBefore = &now
	if err := s.userRepo.Update(user); err != nil {
		return err
	}
	if err := cache.SetUserAuthState(ctx, cache.BuildUserAuthState(user)); err != nil {
		logger.Ctx(ctx).Warnw("auth_state_cache_set_failed", "user_id", user.ID, "error", err)
	}
	logger.Ctx(ctx).Infow("user_password_changed", "user_id", user.ID)
	return nil
}
