package main

import (
	"testing"

	"stockpos/backend/internal/config"
)

func TestValidateSecurityConfigRejectsWeakValues(t *testing.T) {
	cases := map[string]config.Config{
		"short secret":     {AuthSecret: "short"},
		"default password": {AuthSecret: "0123456789abcdef0123456789abcdef", AdminEmail: "root@example.com", AdminPassword: "admin123"},
		"short password":   {AuthSecret: "0123456789abcdef0123456789abcdef", AdminEmail: "root@example.com", AdminPassword: "k9#x"},
		"repeated":         {AuthSecret: "0123456789abcdef0123456789abcdef", AdminEmail: "root@example.com", AdminPassword: "zzzzzzzzzz"},
	}
	for name, cfg := range cases {
		if err := validateSecurityConfig(cfg); err == nil {
			t.Fatalf("%s: expected weak security config to be rejected", name)
		}
	}
}

func TestValidateSecurityConfigAcceptsStrongValues(t *testing.T) {
	err := validateSecurityConfig(config.Config{
		AuthSecret:    "0123456789abcdef0123456789abcdef",
		AdminEmail:    "root@example.com",
		AdminPassword: "t4ble-Lamp-91",
	})
	if err != nil {
		t.Fatalf("expected strong config to pass, got %v", err)
	}
}

func TestValidateSecurityConfigSkipsPasswordWithoutAdmin(t *testing.T) {
	if err := validateSecurityConfig(config.Config{AuthSecret: "0123456789abcdef0123456789abcdef"}); err != nil {
		t.Fatalf("expected config without bootstrap admin to pass, got %v", err)
	}
}
