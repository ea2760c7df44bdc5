package authsession

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// EnvPrefix is prepended to every environment variable read by LoadConfig.
const EnvPrefix = "AUTHSESSION_"

// Config defines a public type used by authsession APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	Backend    BackendConfig    `envPrefix:"BACKEND_"`
	Store      StoreConfig      `envPrefix:"STORE_"`
	Status     StatusConfig     `envPrefix:"STATUS_"`
	Expiry     ExpiryConfig     `envPrefix:"EXPIRY_"`
	Navigation NavigationConfig `envPrefix:"NAV_"`
	Audit      AuditConfig      `envPrefix:"AUDIT_"`
	Metrics    MetricsConfig    `envPrefix:"METRICS_"`
}

/*
====================================
BACKEND CONFIG
====================================
*/

// BackendConfig describes where the credential backend lives. It is consumed by
// transport.New; the Manager itself never dials the backend.
type BackendConfig struct {
	BaseURL    string `env:"BASE_URL"`
	SignupPath string `env:"SIGNUP_PATH"`
	LoginPath  string `env:"LOGIN_PATH"`
	// Timeout bounds a single backend request. Zero disables the bound.
	Timeout         time.Duration `env:"TIMEOUT"`
	MaxResponseSize int64         `env:"MAX_RESPONSE_SIZE"`
	UserAgent       string        `env:"USER_AGENT"`
}

/*
====================================
STORE CONFIG
====================================
*/

// StoreConfig controls how the persisted session record is laid out in the durable store.
type StoreConfig struct {
	// Driver selects the durable store used by cmd/authsession: "memory", "file",
	// "sqlite" or "redis". The Manager accepts any DurableStore regardless.
	Driver    string `env:"DRIVER"`
	Path      string `env:"PATH"`
	RedisAddr string `env:"REDIS_ADDR"`
	// KeyPrefix is prepended to the four record keys. Empty keeps the bare keys
	// token, expiration, userId and userName.
	KeyPrefix string `env:"KEY_PREFIX"`
}

/*
====================================
STATUS CONFIG
====================================
*/

// StatusConfig controls the auth status broadcaster.
type StatusConfig struct {
	SubscriberBuffer int `env:"SUBSCRIBER_BUFFER"`
}

/*
====================================
EXPIRY CONFIG
====================================
*/

// ExpiryConfig controls expiry computation and stale-record handling.
type ExpiryConfig struct {
	// ClearStaleOnRestore removes an expired persisted record during RestoreSession.
	// Disabled by default: the stale record stays in the store until the next logout.
	ClearStaleOnRestore bool `env:"CLEAR_STALE_ON_RESTORE"`
	// UseTokenExpiry falls back to the token's exp claim when the backend reports a
	// non-positive expiresIn.
	UseTokenExpiry bool `env:"USE_TOKEN_EXPIRY"`
	// MaxLifetime caps the session lifetime accepted from the backend. Zero disables the cap.
	MaxLifetime time.Duration `env:"MAX_LIFETIME"`
}

/*
====================================
NAVIGATION CONFIG
====================================
*/

// NavigationConfig names the routes handed to the Navigator.
type NavigationConfig struct {
	HomeRoute string `env:"HOME_ROUTE"`
}

// AuditConfig defines a public type used by authsession APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool `env:"ENABLED"`
	BufferSize int  `env:"BUFFER_SIZE"`
	DropIfFull bool `env:"DROP_IF_FULL"`
}

// MetricsConfig defines a public type used by authsession APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool `env:"ENABLED"`
	EnableLatencyHistograms bool `env:"LATENCY_HISTOGRAMS"`
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns the configuration used when no overrides are supplied.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Backend: BackendConfig{
			BaseURL:         "http://localhost:3000/api/user",
			SignupPath:      "/signup",
			LoginPath:       "/login",
			Timeout:         0,
			MaxResponseSize: 1 << 20,
			UserAgent:       "authsession/1",
		},
		Store: StoreConfig{
			Driver:    "file",
			Path:      "",
			RedisAddr: "",
			KeyPrefix: "",
		},
		Status: StatusConfig{
			SubscriberBuffer: 16,
		},
		Expiry: ExpiryConfig{
			ClearStaleOnRestore: false,
			UseTokenExpiry:      true,
			MaxLifetime:         0,
		},
		Navigation: NavigationConfig{
			HomeRoute: "/",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	return cfg
}

// LoadConfig returns DefaultConfig overlaid with AUTHSESSION_* environment variables,
// for example AUTHSESSION_BACKEND_BASE_URL or AUTHSESSION_EXPIRY_CLEAR_STALE_ON_RESTORE.
// Variables that are not set leave the default in place.
func LoadConfig() (Config, error) {
	cfg := defaultConfig()
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

/*
====================================
VALIDATION
====================================
*/

// Validate describes the validate operation and its observable behavior.
//
// Validate returns the first configuration problem found, or nil.
func (c *Config) Validate() error {
	// Backend
	if strings.TrimSpace(c.Backend.BaseURL) != "" {
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return errors.New("Backend.BaseURL must be an absolute URL")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.New("Backend.BaseURL scheme must be http or https")
		}
	}
	if !strings.HasPrefix(c.Backend.SignupPath, "/") {
		return errors.New("Backend.SignupPath must start with /")
	}
	if !strings.HasPrefix(c.Backend.LoginPath, "/") {
		return errors.New("Backend.LoginPath must start with /")
	}
	if c.Backend.Timeout < 0 {
		return errors.New("Backend.Timeout must be >= 0")
	}
	if c.Backend.MaxResponseSize <= 0 {
		return errors.New("Backend.MaxResponseSize must be > 0")
	}

	// Store
	switch c.Store.Driver {
	case "memory", "file", "sqlite", "redis":
	default:
		return errors.New("Store.Driver must be one of memory, file, sqlite, redis")
	}
	if c.Store.Driver == "redis" && strings.TrimSpace(c.Store.RedisAddr) == "" {
		return errors.New("Store.RedisAddr required for redis driver")
	}
	if strings.ContainsAny(c.Store.KeyPrefix, " \t\n") {
		return errors.New("Store.KeyPrefix must not contain whitespace")
	}

	// Status
	if c.Status.SubscriberBuffer < 0 {
		return errors.New("Status.SubscriberBuffer must be >= 0")
	}

	// Expiry
	if c.Expiry.MaxLifetime < 0 {
		return errors.New("Expiry.MaxLifetime must be >= 0")
	}

	// Navigation
	if !strings.HasPrefix(c.Navigation.HomeRoute, "/") {
		return errors.New("Navigation.HomeRoute must start with /")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be > 0 when audit is enabled")
	}

	// Metrics
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return errors.New("Metrics.EnableLatencyHistograms requires Metrics.Enabled")
	}

	return nil
}
