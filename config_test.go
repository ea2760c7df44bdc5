package authsession

import (
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
	if cfg.Expiry.ClearStaleOnRestore {
		t.Fatal("stale records must be kept by default")
	}
	if cfg.Store.KeyPrefix != "" {
		t.Fatalf("default key prefix must be empty, got %q", cfg.Store.KeyPrefix)
	}
	if cfg.Navigation.HomeRoute != "/" {
		t.Fatalf("unexpected home route %q", cfg.Navigation.HomeRoute)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{name: "relative base url", mutate: func(c *Config) { c.Backend.BaseURL = "api/user" }},
		{name: "ftp base url", mutate: func(c *Config) { c.Backend.BaseURL = "ftp://example.com/api" }},
		{name: "signup path", mutate: func(c *Config) { c.Backend.SignupPath = "signup" }},
		{name: "login path", mutate: func(c *Config) { c.Backend.LoginPath = "" }},
		{name: "negative timeout", mutate: func(c *Config) { c.Backend.Timeout = -time.Second }},
		{name: "zero response size", mutate: func(c *Config) { c.Backend.MaxResponseSize = 0 }},
		{name: "unknown driver", mutate: func(c *Config) { c.Store.Driver = "etcd" }},
		{name: "redis without addr", mutate: func(c *Config) { c.Store.Driver = "redis" }},
		{name: "prefix whitespace", mutate: func(c *Config) { c.Store.KeyPrefix = "my app:" }},
		{name: "negative buffer", mutate: func(c *Config) { c.Status.SubscriberBuffer = -1 }},
		{name: "negative max lifetime", mutate: func(c *Config) { c.Expiry.MaxLifetime = -time.Minute }},
		{name: "home route", mutate: func(c *Config) { c.Navigation.HomeRoute = "home" }},
		{name: "audit buffer", mutate: func(c *Config) { c.Audit.Enabled = true; c.Audit.BufferSize = 0 }},
		{name: "histograms without metrics", mutate: func(c *Config) { c.Metrics.EnableLatencyHistograms = true }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestConfigValidateAccepts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend.BaseURL = ""
	cfg.Store.Driver = "redis"
	cfg.Store.RedisAddr = "localhost:6379"
	cfg.Store.KeyPrefix = "app:"
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("AUTHSESSION_BACKEND_BASE_URL", "https://auth.example.com/api/user")
	t.Setenv("AUTHSESSION_BACKEND_TIMEOUT", "5s")
	t.Setenv("AUTHSESSION_STORE_DRIVER", "sqlite")
	t.Setenv("AUTHSESSION_STORE_PATH", "/tmp/session.db")
	t.Setenv("AUTHSESSION_EXPIRY_CLEAR_STALE_ON_RESTORE", "true")
	t.Setenv("AUTHSESSION_NAV_HOME_ROUTE", "/dashboard")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Backend.BaseURL != "https://auth.example.com/api/user" {
		t.Fatalf("unexpected base url %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 5*time.Second {
		t.Fatalf("unexpected timeout %v", cfg.Backend.Timeout)
	}
	if cfg.Store.Driver != "sqlite" || cfg.Store.Path != "/tmp/session.db" {
		t.Fatalf("unexpected store config %+v", cfg.Store)
	}
	if !cfg.Expiry.ClearStaleOnRestore {
		t.Fatal("expected ClearStaleOnRestore from env")
	}
	if cfg.Navigation.HomeRoute != "/dashboard" {
		t.Fatalf("unexpected home route %q", cfg.Navigation.HomeRoute)
	}
	// untouched values keep their defaults
	if cfg.Backend.LoginPath != "/login" || cfg.Status.SubscriberBuffer != 16 {
		t.Fatalf("defaults lost: %+v", cfg)
	}
}

func TestLoadConfigRejectsInvalid(t *testing.T) {
	t.Setenv("AUTHSESSION_STORE_DRIVER", "redis")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for redis driver without address")
	}
}

func TestLoadConfigRejectsUnparsable(t *testing.T) {
	t.Setenv("AUTHSESSION_BACKEND_TIMEOUT", "soon")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}
