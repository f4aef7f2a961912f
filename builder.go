package tokenguard

import (
	"errors"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tokenguard/tokenguard/permission"
	"github.com/tokenguard/tokenguard/session"
)

// Builder defines a public type used by tokenguard APIs.
//
// Builder instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Builder struct {
	config     Config
	httpClient *http.Client
	store      session.Store
	redis      redis.UniversalClient

	permissions []string
	roles       map[string]RoleSpec

	auditSink AuditSink
	onExpired func()

	built bool
}

// New describes the new operation and its observable behavior.
//
// New may return an error when input validation, dependency calls, or security checks fail.
// New does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig describes the withconfig operation and its observable behavior.
//
// WithConfig may return an error when input validation, dependency calls, or security checks fail.
// WithConfig does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithBaseURL describes the withbaseurl operation and its observable behavior.
//
// WithBaseURL may return an error when input validation, dependency calls, or security checks fail.
// WithBaseURL does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.HTTP.BaseURL = baseURL
	return b
}

// WithHTTPClient describes the withhttpclient operation and its observable behavior.
//
// WithHTTPClient may return an error when input validation, dependency calls, or security checks fail.
// WithHTTPClient does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithSessionStore describes the withsessionstore operation and its observable behavior.
//
// WithSessionStore may return an error when input validation, dependency calls, or security checks fail.
// WithSessionStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.store = store
	return b
}

// WithRedis describes the withredis operation and its observable behavior.
//
// WithRedis may return an error when input validation, dependency calls, or security checks fail.
// WithRedis does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithPermissions describes the withpermissions operation and its observable behavior.
//
// WithPermissions may return an error when input validation, dependency calls, or security checks fail.
// WithPermissions does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithPermissions(perms []string) *Builder {
	b.permissions = perms
	return b
}

// WithRoles describes the withroles operation and its observable behavior.
//
// WithRoles may return an error when input validation, dependency calls, or security checks fail.
// WithRoles does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithRoles(roles map[string]RoleSpec) *Builder {
	b.roles = roles
	return b
}

// WithAuditSink describes the withauditsink operation and its observable behavior.
//
// WithAuditSink may return an error when input validation, dependency calls, or security checks fail.
// WithAuditSink does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithSessionExpiredHandler registers a callback fired exactly once per
// terminal refresh failure, after the session has been cleared. Admin UIs
// typically route to the login screen from here.
func (b *Builder) WithSessionExpiredHandler(fn func()) *Builder {
	b.onExpired = fn
	return b
}

// WithProactiveWindow describes the withproactivewindow operation and its observable behavior.
//
// WithProactiveWindow may return an error when input validation, dependency calls, or security checks fail.
// WithProactiveWindow does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithProactiveWindow(w time.Duration) *Builder {
	b.config.Refresh.ProactiveWindow = w
	return b
}

// WithMetricsEnabled describes the withmetricsenabled operation and its observable behavior.
//
// WithMetricsEnabled may return an error when input validation, dependency calls, or security checks fail.
// WithMetricsEnabled does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms describes the withlatencyhistograms operation and its observable behavior.
//
// WithLatencyHistograms may return an error when input validation, dependency calls, or security checks fail.
// WithLatencyHistograms does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build describes the build operation and its observable behavior.
//
// Build may return an error when input validation, dependency calls, or security checks fail.
// Build does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (b *Builder) Build() (*Guard, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if len(b.permissions) == 0 {
		return nil, errors.New("permissions must be provided")
	}

	if len(b.roles) == 0 {
		return nil, errors.New("roles must be provided")
	}

	// -------- PERMISSION REGISTRY --------
	registry, err := permission.NewRegistry(cfg.Permission.MaxBits)
	if err != nil {
		return nil, err
	}
	for _, perm := range b.permissions {
		if _, err := registry.Register(perm); err != nil {
			return nil, err
		}
	}
	registry.Freeze()

	// -------- ROLE TABLE --------
	table, err := permission.NewTable(registry)
	if err != nil {
		return nil, err
	}
	for name, spec := range b.roles {
		if err := table.RegisterRole(name, spec.Level, spec.Permissions); err != nil {
			return nil, err
		}
	}
	for _, name := range cfg.Permission.ProtectedRoles {
		if err := table.MarkProtected(name); err != nil {
			return nil, err
		}
	}
	table.Freeze()

	resolver, err := permission.NewResolver(registry, table)
	if err != nil {
		return nil, err
	}

	// -------- SESSION STORE --------
	store := b.store
	if store == nil && b.redis != nil {
		store, err = session.NewRedis(b.redis, cfg.Session.RedisPrefix, cfg.Session.RedisTTL)
		if err != nil {
			return nil, err
		}
	}
	if store == nil {
		store = session.NewMemory()
	}

	// -------- HTTP CLIENTS --------
	raw := b.httpClient
	if raw == nil {
		raw = &http.Client{Timeout: cfg.HTTP.RequestTimeout}
	}
	base := raw.Transport
	if base == nil {
		base = http.DefaultTransport
	}

	g := &Guard{
		config:    cfg,
		store:     store,
		raw:       raw,
		registry:  registry,
		table:     table,
		resolver:  resolver,
		metrics:   NewMetrics(cfg.Metrics),
		audit:     newAuditDispatcher(cfg.Audit, b.auditSink),
		onExpired: b.onExpired,
	}
	g.client = &http.Client{
		Transport: &roundTripper{guard: g, base: base},
		Timeout:   cfg.HTTP.RequestTimeout,
	}

	b.built = true

	return g, nil
}
