package tokenguard

import (
	"errors"
	"strings"
	"time"
)

// Config defines a public type used by tokenguard APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	HTTP       HTTPConfig
	Refresh    RefreshConfig
	Endpoints  EndpointConfig
	Session    SessionConfig
	Permission PermissionConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
HTTP CONFIG
====================================
*/

// HTTPConfig defines a public type used by tokenguard APIs.
//
// HTTPConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type HTTPConfig struct {
	// BaseURL is the backend origin, e.g. "https://api.example.com".
	BaseURL string
	// RequestTimeout bounds a single guarded request, including retry.
	RequestTimeout time.Duration
	// AttachRequestID adds an X-Request-ID header to every outgoing request.
	AttachRequestID bool
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig defines a public type used by tokenguard APIs.
//
// RefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshConfig struct {
	// ProactiveWindow refreshes before a request when the access token
	// expires within this window. Zero disables proactive refresh.
	ProactiveWindow time.Duration
	// CallTimeout bounds the refresh call itself. The refresh call is
	// detached from the triggering request's context so one canceled
	// caller cannot fail the whole queue.
	CallTimeout time.Duration
	// MaxWaiters caps how many requests can park behind an in-flight
	// refresh. Zero means unlimited.
	MaxWaiters int
}

/*
====================================
ENDPOINT CONFIG
====================================
*/

// EndpointConfig defines a public type used by tokenguard APIs.
//
// EndpointConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type EndpointConfig struct {
	Login   string
	Refresh string
	Logout  string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig defines a public type used by tokenguard APIs.
//
// SessionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SessionConfig struct {
	// RedisPrefix namespaces the session key when a Redis store is used.
	RedisPrefix string
	// RedisTTL is the server-side expiry for Redis-stored sessions.
	RedisTTL time.Duration
}

/*
====================================
PERMISSION CONFIG
====================================
*/

// PermissionConfig defines a public type used by tokenguard APIs.
//
// PermissionConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type PermissionConfig struct {
	// MaxBits selects the permission mask width, 64 or 128.
	MaxBits int
	// ProtectedRoles are role names that must never be deleted.
	ProtectedRoles []string
}

// AuditConfig defines a public type used by tokenguard APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig defines a public type used by tokenguard APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		HTTP: HTTPConfig{
			RequestTimeout:  30 * time.Second,
			AttachRequestID: true,
		},
		Refresh: RefreshConfig{
			ProactiveWindow: 0,
			CallTimeout:     10 * time.Second,
			MaxWaiters:      0,
		},
		Endpoints: EndpointConfig{
			Login:   "/auth/login",
			Refresh: "/auth/refresh",
			Logout:  "/auth/logout",
		},
		Session: SessionConfig{
			RedisPrefix: "tokenguard",
			RedisTTL:    24 * time.Hour,
		},
		Permission: PermissionConfig{
			MaxBits:        64,
			ProtectedRoles: []string{"admin", "user"},
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	if cfg.Permission.ProtectedRoles != nil {
		out.Permission.ProtectedRoles = make([]string, len(cfg.Permission.ProtectedRoles))
		copy(out.Permission.ProtectedRoles, cfg.Permission.ProtectedRoles)
	}
	return out
}

// Validate describes the validate operation and its observable behavior.
//
// Validate may return an error when input validation, dependency calls, or security checks fail.
// Validate does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (c *Config) Validate() error {
	if c.HTTP.BaseURL == "" {
		return errors.New("http base url required")
	}
	if !strings.HasPrefix(c.HTTP.BaseURL, "http://") && !strings.HasPrefix(c.HTTP.BaseURL, "https://") {
		return errors.New("http base url must start with http:// or https://")
	}
	if strings.HasSuffix(c.HTTP.BaseURL, "/") {
		return errors.New("http base url must not end with /")
	}
	if c.HTTP.RequestTimeout < 0 {
		return errors.New("request timeout cannot be negative")
	}
	if c.Refresh.CallTimeout <= 0 {
		return errors.New("refresh call timeout must be positive")
	}
	if c.Refresh.ProactiveWindow < 0 {
		return errors.New("proactive window cannot be negative")
	}
	if c.Refresh.MaxWaiters < 0 {
		return errors.New("max waiters cannot be negative")
	}
	for _, ep := range []string{c.Endpoints.Login, c.Endpoints.Refresh, c.Endpoints.Logout} {
		if ep == "" || !strings.HasPrefix(ep, "/") {
			return errors.New("endpoints must be non-empty paths starting with /")
		}
	}
	if c.Permission.MaxBits != 64 && c.Permission.MaxBits != 128 {
		return errors.New("permission max bits must be 64 or 128")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("audit buffer size must be positive")
	}
	return nil
}
