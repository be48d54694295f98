package i18n

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
)

// 支持的语言
const (
	LocalePT = "pt-BR"
	LocaleEN = "en-US"

	DefaultLocale = LocalePT
)

// ResolveLocale 按 ?lang=、Accept-Language 顺序解析语言，默认 pt-BR
func ResolveLocale(c *gin.Context) string {
	if c == nil {
		return DefaultLocale
	}
	if lang := strings.TrimSpace(c.Query("lang")); lang != "" {
		return NormalizeLocale(lang)
	}
	header := c.GetHeader("Accept-Language")
	if header == "" {
		return DefaultLocale
	}
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(strings.SplitN(part, ";", 2)[0])
		if tag == "" || tag == "*" {
			continue
		}
		return NormalizeLocale(tag)
	}
	return DefaultLocale
}

// NormalizeLocale 归一化语言标签
func NormalizeLocale(raw string) string {
	lower := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.HasPrefix(lower, "en"):
		return LocaleEN
	default:
		return LocalePT
	}
}

// T 翻译消息键，缺失时依次回退到默认语言与键本身
func T(locale, key string) string {
	if table, ok := messages[NormalizeLocale(locale)]; ok {
		if msg, ok := table[key]; ok {
			return msg
		}
	}
	if msg, ok := messages[DefaultLocale][key]; ok {
		return msg
	}
	return key
}

// Sprintf 翻译带参数的消息
func Sprintf(locale, key string, args ...interface{}) string {
	return fmt.Sprintf(T(locale, key), args...)
}
