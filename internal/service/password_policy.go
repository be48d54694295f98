package service

import (
	"unicode"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
)

// bcrypt 只处理前 72 字节
const passwordMaxBytes = 72

type passwordPolicyError struct {
	key  string
	args []interface{}
}

func (e passwordPolicyError) Error() string { return e.key }

func (e passwordPolicyError) Is(target error) bool { return target == ErrWeakPassword }

// Key 消息键
func (e passwordPolicyError) Key() string { return e.key }

// Args 消息参数
func (e passwordPolicyError) Args() []interface{} { return e.args }

type passwordClass struct {
	required bool
	match    func(rune) bool
	key      string
}

func isSpecialRune(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// validatePassword 按配置的字符类别逐项检查，返回第一个不满足的规则
func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if len(password) > passwordMaxBytes {
		return passwordPolicyError{key: "error.password_max_length", args: []interface{}{passwordMaxBytes}}
	}
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return passwordPolicyError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}
	classes := []passwordClass{
		{policy.RequireUpper, unicode.IsUpper, "error.password_require_upper"},
		{policy.RequireLower, unicode.IsLower, "error.password_require_lower"},
		{policy.RequireNumber, unicode.IsDigit, "error.password_require_number"},
		{policy.RequireSpecial, isSpecialRune, "error.password_require_special"},
	}
	for _, class := range classes {
		if !class.required {
			continue
		}
		found := false
		for _, r := range password {
			if class.match(r) {
				found = true
				break
			}
		}
		if !found {
			return passwordPolicyError{key: class.key}
		}
	}
	return nil
}
