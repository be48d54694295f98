package cache

import (
	"context"
	"strconv"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/models"
)

// 账号状态变更时主动删除，TTL 只是兜底
const authStateCacheTTL = 10 * time.Minute

// UserAuthState JWT 中间件使用的账号快照
type UserAuthState struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	AccessLevel string `json:"access_level"`
	Location    string `json:"location"`
	IsActive    bool   `json:"is_active"`
	IsSuper     bool   `json:"is_super"`
	// TokenVersion 与 JWT 中的版本号不一致即视为吊销
	TokenVersion uint64 `json:"token_version"`
	// TokenInvalidBefore Unix 秒，早于该时间签发的 Token 失效；0 为未设置
	TokenInvalidBefore int64 `json:"token_invalid_before"`
	CachedAt           int64 `json:"cached_at"`
}

// Accepts 判断给定版本号与签发时间的 Token 是否仍有效（不检查停用）
func (s *UserAuthState) Accepts(version uint64, issuedAt *time.Time) bool {
	if s == nil || s.TokenVersion != version {
		return false
	}
	if s.TokenInvalidBefore <= 0 || issuedAt == nil {
		return true
	}
	return issuedAt.Unix() >= s.TokenInvalidBefore
}

func authStateKey(userID uint) string {
	return "auth:user:" + strconv.FormatUint(uint64(userID), 10)
}

// BuildUserAuthState 由用户记录生成快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	var invalidBefore int64
	if user.TokenInvalidBefore != nil {
		invalidBefore = user.TokenInvalidBefore.Unix()
	}
	return &UserAuthState{
		UserID:             user.ID,
		Username:           user.Username,
		AccessLevel:        user.AccessLevel,
		Location:           user.Location,
		IsActive:           user.IsActive,
		IsSuper:            user.IsSuper,
		TokenVersion:       user.TokenVersion,
		TokenInvalidBefore: invalidBefore,
		CachedAt:           time.Now().Unix(),
	}
}

// GetUserAuthState 读取快照，第二个返回值表示是否命中
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	state := new(UserAuthState)
	hit, err := GetJSON(ctx, authStateKey(userID), state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return state, true, nil
}

// SetUserAuthState 写入快照
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, authStateKey(state.UserID), state, authStateCacheTTL)
}

// DelUserAuthState 删除快照，下次请求回源数据库
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, authStateKey(userID))
}
