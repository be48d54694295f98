package service

import (
	"errors"
	"strings"
	"testing"

	"github.com/Transbirday/PROJETO-AVARIAS/internal/config"
)

func TestValidatePassword(t *testing.T) {
	policy := config.PasswordPolicyConfig{MinLength: 8, RequireUpper: true, RequireNumber: true, RequireSpecial: true}
	cases := []struct {
		password string
		key      string
	}{
		{"Ab1!", "error.password_min_length"},
		{"abcdefg1!", "error.password_require_upper"},
		{"Abcdefgh!", "error.password_require_number"},
		{"Abcdefgh1", "error.password_require_special"},
		{strings.Repeat("A1!", 25), "error.password_max_length"},
		{"Avarias#2024", ""},
	}
	for _, tc := range cases {
		err := validatePassword(policy, tc.password)
		if tc.key == "" {
			if err != nil {
				t.Fatalf("%q should pass, got %v", tc.password, err)
			}
			continue
		}
		var policyErr passwordPolicyError
		if !errors.As(err, &policyErr) || policyErr.Key() != tc.key {
			t.Fatalf("%q want %s got %v", tc.password, tc.key, err)
		}
		if !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("%q should match ErrWeakPassword", tc.password)
		}
	}
	if err := validatePassword(config.PasswordPolicyConfig{}, "x"); err != nil {
		t.Fatalf("empty policy should accept any password, got %v", err)
	}
}
