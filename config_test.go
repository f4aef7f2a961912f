package tokenguard

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults with base url valid",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "base url missing",
			mutate: func(c *Config) {
				c.HTTP.BaseURL = ""
			},
			wantValid: false,
		},
		{
			name: "base url without scheme",
			mutate: func(c *Config) {
				c.HTTP.BaseURL = "api.example.com"
			},
			wantValid: false,
		},
		{
			name: "base url trailing slash",
			mutate: func(c *Config) {
				c.HTTP.BaseURL = "https://api.example.com/"
			},
			wantValid: false,
		},
		{
			name: "plain http allowed",
			mutate: func(c *Config) {
				c.HTTP.BaseURL = "http://localhost:8000"
			},
			wantValid: true,
		},
		{
			name: "negative request timeout",
			mutate: func(c *Config) {
				c.HTTP.RequestTimeout = -time.Second
			},
			wantValid: false,
		},
		{
			name: "zero refresh call timeout",
			mutate: func(c *Config) {
				c.Refresh.CallTimeout = 0
			},
			wantValid: false,
		},
		{
			name: "negative proactive window",
			mutate: func(c *Config) {
				c.Refresh.ProactiveWindow = -time.Minute
			},
			wantValid: false,
		},
		{
			name: "negative max waiters",
			mutate: func(c *Config) {
				c.Refresh.MaxWaiters = -1
			},
			wantValid: false,
		},
		{
			name: "endpoint without leading slash",
			mutate: func(c *Config) {
				c.Endpoints.Refresh = "auth/refresh"
			},
			wantValid: false,
		},
		{
			name: "empty endpoint",
			mutate: func(c *Config) {
				c.Endpoints.Logout = ""
			},
			wantValid: false,
		},
		{
			name: "mask width 128 valid",
			mutate: func(c *Config) {
				c.Permission.MaxBits = 128
			},
			wantValid: true,
		},
		{
			name: "mask width invalid",
			mutate: func(c *Config) {
				c.Permission.MaxBits = 96
			},
			wantValid: false,
		},
		{
			name: "audit enabled without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name: "audit disabled ignores buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = false
				c.Audit.BufferSize = 0
			},
			wantValid: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.HTTP.BaseURL = "https://api.example.com"
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected validation error, got nil")
			}
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Endpoints.Login != "/auth/login" || cfg.Endpoints.Refresh != "/auth/refresh" || cfg.Endpoints.Logout != "/auth/logout" {
		t.Fatalf("unexpected default endpoints: %+v", cfg.Endpoints)
	}
	if cfg.Refresh.CallTimeout != 10*time.Second {
		t.Fatalf("unexpected default call timeout: %v", cfg.Refresh.CallTimeout)
	}
	if cfg.Permission.MaxBits != 64 {
		t.Fatalf("unexpected default mask width: %d", cfg.Permission.MaxBits)
	}
	if !cfg.Metrics.Enabled {
		t.Fatal("metrics should default to enabled")
	}
	if cfg.Audit.Enabled {
		t.Fatal("audit should default to disabled")
	}
}

func TestCloneConfigIsolatesProtectedRoles(t *testing.T) {
	cfg := defaultConfig()
	clone := cloneConfig(cfg)
	clone.Permission.ProtectedRoles[0] = "mutated"

	if cfg.Permission.ProtectedRoles[0] == "mutated" {
		t.Fatal("clone must not share the protected roles slice")
	}
}
