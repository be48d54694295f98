package service

import (
	"context"
	"html"
	"strings"
	"time"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"

	"github.com/microcosm-cc/bluemonday"
)

// Actor 执行操作的用户身份
type Actor struct {
	UserID   uint
	Username string
	IsSuper  bool
	Location string
}

// Authorizer 能力判定（capability 形如 claim:decide）
type Authorizer interface {
	Can(userID uint, capability string) (bool, error)
}

// authorize 超级用户直接放行；未配置授权器时不做能力校验
func authorize(ctx context.Context, authorizer Authorizer, actor Actor, capability string) error {
	if actor.IsSuper || authorizer == nil {
		return nil
	}
	if actor.UserID == 0 {
		return ErrForbidden
	}
	allowed, err := authorizer.Can(actor.UserID, capability)
	if err != nil {
		logger.Ctx(ctx).Errorw("authz_check_failed", "user_id", actor.UserID, "capability", capability, "error", err)
		return err
	}
	if !allowed {
		logger.Ctx(ctx).Warnw("authz_denied", "user_id", actor.UserID, "username", actor.Username, "capability", capability)
		return ErrForbidden
	}
	return nil
}

var strictPolicy = bluemonday.StrictPolicy()

// sanitizeText 去除 HTML 并裁剪空白
func sanitizeText(raw string) string {
	text := strings.TrimSpace(raw)
	if text == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(strictPolicy.Sanitize(text)))
}

// defaultClock 持久化的时间统一为 UTC，sqlite 以文本比较时间
func defaultClock(now func() time.Time) func() time.Time {
	if now == nil {
		now = time.Now
	}
	return func() time.Time { return now().UTC() }
}

func defaultLocation(loc *time.Location) *time.Location {
	if loc != nil {
		return loc
	}
	return time.UTC
}
