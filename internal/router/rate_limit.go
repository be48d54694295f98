package router

import (
	"bytes"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/http/response"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/i18n"
	"github.com/Transbirday/PROJETO-AVARIAS/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimitKeyFunc 生成限流 key 的函数
type RateLimitKeyFunc func(*gin.Context) string

// RateLimitRule 固定窗口限流规则；BlockSeconds > 0 时超限后整段封禁
type RateLimitRule struct {
	Prefix        string
	WindowSeconds int
	MaxRequests   int
	BlockSeconds  int
	MessageKey    string
	// OnLimited 被限流时回调（登录接口用于记录失败日志）
	OnLimited func(c *gin.Context, key string)
}

func (r RateLimitRule) enabled() bool {
	return r.WindowSeconds > 0 && r.MaxRequests > 0
}

func (r RateLimitRule) key(c *gin.Context, keyFunc RateLimitKeyFunc) string {
	key := ""
	if keyFunc != nil {
		key = strings.TrimSpace(keyFunc(c))
	}
	if key == "" {
		key = c.ClientIP()
	}
	if r.Prefix == "" {
		return key
	}
	return r.Prefix + ":" + key
}

// retryAfter 剩余等待秒数，TTL 不可用时退回窗口长度
func (r RateLimitRule) retryAfter(ttl int64) int {
	if ttl > 0 {
		return int(ttl)
	}
	if r.WindowSeconds > 0 {
		return r.WindowSeconds
	}
	return 1
}

func (r RateLimitRule) messageKey() string {
	if key := strings.TrimSpace(r.MessageKey); key != "" {
		return key
	}
	return "error.too_many_requests"
}

// 返回 {当前计数, 剩余 TTL}；首次超限时把过期时间延长为封禁时长
var rateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
	redis.call("EXPIRE", KEYS[1], ARGV[1])
end
if current == tonumber(ARGV[2]) + 1 and tonumber(ARGV[3]) > 0 then
	redis.call("EXPIRE", KEYS[1], ARGV[3])
end
local ttl = redis.call("TTL", KEYS[1])
return {current, ttl}
`)

// parseScriptResult 解析脚本返回的计数与 TTL
func parseScriptResult(result interface{}) (count int64, ttl int64, ok bool) {
	values, isSlice := result.([]interface{})
	if !isSlice || len(values) < 2 {
		return 0, 0, false
	}
	count, ok = values[0].(int64)
	if !ok {
		return 0, 0, false
	}
	ttl, _ = values[1].(int64)
	return count, ttl, true
}

// RateLimitMiddleware Redis 频率限制中间件；未配置 Redis 或规则时放行
func RateLimitMiddleware(client *redis.Client, rule RateLimitRule, keyFunc RateLimitKeyFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if client == nil || !rule.enabled() {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := rule.key(c, keyFunc)

		result, err := rateLimitScript.Run(ctx, client, []string{key}, rule.WindowSeconds, rule.MaxRequests, rule.BlockSeconds).Result()
		count, ttl, ok := parseScriptResult(result)
		if err != nil || !ok {
			logger.Ctx(ctx).Errorw("rate_limit_script_failed", "key", key, "result", result, "error", err)
			response.Error(c, response.CodeInternal, i18n.T(i18n.ResolveLocale(c), "error.rate_limit_unavailable"))
			c.Abort()
			return
		}
		if count <= int64(rule.MaxRequests) {
			c.Next()
			return
		}

		wait := rule.retryAfter(ttl)
		logger.Ctx(ctx).Warnw("rate_limited", "key", key, "count", count, "wait_seconds", wait)
		if rule.OnLimited != nil {
			rule.OnLimited(c, key)
		}
		c.Header("Retry-After", strconv.Itoa(wait))
		response.Error(c, response.CodeTooManyRequests, i18n.Sprintf(i18n.ResolveLocale(c), rule.messageKey(), wait))
		c.Abort()
	}
}

// KeyByIP 使用 IP 作为限流 key
func KeyByIP(c *gin.Context) string {
	return c.ClientIP()
}

// KeyByIPAndJSONField 使用 JSON 字段 + IP 作为限流 key（字段值小写）
func KeyByIPAndJSONField(field string) RateLimitKeyFunc {
	return func(c *gin.Context) string {
		value := strings.ToLower(readJSONField(c, field))
		if value == "" {
			return c.ClientIP()
		}
		return value + "|" + c.ClientIP()
	}
}

// readJSONField 读取 JSON 请求体中的字符串字段，读取后恢复请求体
func readJSONField(c *gin.Context, field string) string {
	if c == nil || c.Request == nil || c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return ""
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	text, _ := payload[field].(string)
	return strings.TrimSpace(text)
}
