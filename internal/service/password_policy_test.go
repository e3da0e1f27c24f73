package service

import (
	"errors"
	"testing"

	"github.com/openingclouds/internal/config"
)

func TestValidatePassword(t *testing.T) {
	policy := config.PasswordPolicyConfig{MinLength: 8, RequireUpper: true, RequireLower: true, RequireNumber: true}
	cases := []struct {
		username string
		password string
		key      string
	}{
		{"writer", "Passw0rd!", ""},
		{"writer", "Short1A", "error.password_min_length"},
		{"writer", "password1", "error.password_require_upper"},
		{"writer", "MyWriter2024", "error.password_contains_username"},
		{"ab", "Abcdefg12", ""},
	}
	for _, tc := range cases {
		err := validatePassword(policy, tc.username, tc.password)
		if tc.key == "" {
			if err != nil {
				t.Fatalf("%s/%s: unexpected error %v", tc.username, tc.password, err)
			}
			continue
		}
		if !errors.Is(err, ErrWeakPassword) {
			t.Fatalf("%s/%s: expected weak password, got %v", tc.username, tc.password, err)
		}
		if err.Error() != tc.key {
			t.Fatalf("%s/%s: key want %s got %s", tc.username, tc.password, tc.key, err.Error())
		}
	}

	if err := validatePassword(config.PasswordPolicyConfig{}, "", "x"); err != nil {
		t.Fatalf("empty policy should accept any password: %v", err)
	}
}
