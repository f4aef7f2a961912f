package tokenguard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/tokenguard/tokenguard/jwt"
	"github.com/tokenguard/tokenguard/permission"
	"github.com/tokenguard/tokenguard/session"
)

// Guard defines a public type used by tokenguard APIs.
//
// Guard instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Guard struct {
	config Config

	store    session.Store
	raw      *http.Client
	client   *http.Client
	registry *permission.Registry
	table    *permission.Table
	resolver *permission.Resolver

	audit     *auditDispatcher
	metrics   *Metrics
	onExpired func()

	mu         sync.Mutex
	current    *session.Session
	loaded     bool
	refreshing bool
	waiters    []chan error
	// epoch advances every time the session is installed or cleared. A
	// refresh that settles against a stale epoch discards its result.
	epoch  uint64
	closed bool
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) Close() {
	if g == nil {
		return
	}

	g.mu.Lock()
	g.closed = true
	waiters := g.waiters
	g.waiters = nil
	g.refreshing = false
	g.mu.Unlock()

	for _, ch := range waiters {
		ch <- ErrGuardClosed
	}

	if g.audit != nil {
		g.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped may return an error when input validation, dependency calls, or security checks fail.
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) AuditDropped() uint64 {
	if g == nil || g.audit == nil {
		return 0
	}
	return g.audit.Dropped()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot may return an error when input validation, dependency calls, or security checks fail.
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) MetricsSnapshot() MetricsSnapshot {
	if g == nil || g.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return g.metrics.Snapshot()
}

func (g *Guard) metricInc(id MetricID) {
	if g == nil || g.metrics == nil {
		return
	}
	g.metrics.Inc(id)
}

func (g *Guard) emitAudit(ctx context.Context, event AuditEvent) {
	if g == nil || g.audit == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	g.audit.Emit(ctx, event)
}

// Client returns the guarded HTTP client. Requests issued through it carry
// the current access token and refresh transparently on 401.
func (g *Guard) Client() *http.Client {
	if g == nil {
		return nil
	}
	return g.client
}

// Resolver returns the permission resolver built from the configured roles.
func (g *Guard) Resolver() *permission.Resolver {
	if g == nil {
		return nil
	}
	return g.resolver
}

// Login describes the login operation and its observable behavior.
//
// Login may return an error when input validation, dependency calls, or security checks fail.
// Login does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) Login(ctx context.Context, username, password string) (*Identity, error) {
	if g == nil {
		return nil, ErrGuardNotReady
	}

	requestID := ensureRequestID(ctx)

	tokens, err := g.postAuth(ctx, g.config.Endpoints.Login, loginRequest{
		Username: username,
		Password: password,
	}, requestID)
	if err != nil {
		g.metricInc(MetricLoginFailure)
		g.emitAudit(ctx, AuditEvent{
			EventType: auditLoginFailure,
			RequestID: requestID,
			Success:   false,
			Error:     err.Error(),
		})
		return nil, err
	}

	sess := sessionFromTokens(tokens, time.Now())

	if err := g.store.Save(ctx, sess); err != nil {
		g.metricInc(MetricLoginFailure)
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}

	g.installSession(sess)

	g.metricInc(MetricLoginSuccess)
	g.emitAudit(ctx, AuditEvent{
		EventType: auditLoginSuccess,
		UserID:    sess.UserID,
		RequestID: requestID,
		Success:   true,
	})

	return &Identity{UserID: sess.UserID, Roles: cloneRoles(sess.Roles)}, nil
}

// Logout describes the logout operation and its observable behavior.
//
// Logout may return an error when input validation, dependency calls, or security checks fail.
// Logout does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) Logout(ctx context.Context) error {
	if g == nil {
		return ErrGuardNotReady
	}

	g.mu.Lock()
	sess := g.current
	g.current = nil
	g.loaded = true
	g.epoch++
	waiters := g.waiters
	g.waiters = nil
	g.mu.Unlock()

	// An in-flight refresh now settles against a stale epoch and discards
	// its result; anyone parked behind it learns the session is gone.
	for _, ch := range waiters {
		ch <- ErrSessionCleared
	}

	if err := g.store.Clear(ctx); err != nil {
		return err
	}

	if sess != nil && sess.RefreshToken != "" {
		// Server-side revocation is best effort; local state is already gone.
		go func(refreshToken string) {
			ctx, cancel := context.WithTimeout(context.Background(), g.config.Refresh.CallTimeout)
			defer cancel()
			if _, err := g.postAuth(ctx, g.config.Endpoints.Logout, logoutRequest{RefreshToken: refreshToken}, uuid.NewString()); err != nil {
				log.Print("tokenguard: logout revocation failed: ", err)
			}
		}(sess.RefreshToken)
	}

	g.metricInc(MetricLogout)
	g.metricInc(MetricSessionCleared)
	g.emitAudit(ctx, AuditEvent{
		EventType: auditLogout,
		UserID:    userIDOf(sess),
		Success:   true,
	})

	return nil
}

// Refresh forces a token refresh now, joining any refresh already in flight.
func (g *Guard) Refresh(ctx context.Context) error {
	if g == nil {
		return ErrGuardNotReady
	}

	sess, err := g.currentSession(ctx)
	if err != nil {
		return err
	}
	return g.awaitRefresh(ctx, sess.AccessToken)
}

// Session returns a copy of the current session, loading it from the store
// on first use.
func (g *Guard) Session(ctx context.Context) (*session.Session, error) {
	sess, err := g.currentSession(ctx)
	if err != nil {
		return nil, err
	}
	return sess.Clone(), nil
}

// Tokens returns the current token pair. Callers handing credentials to
// something outside the guarded client, a websocket dial for instance, read
// them here instead of reaching into the store.
func (g *Guard) Tokens(ctx context.Context) (*TokenPair, error) {
	sess, err := g.currentSession(ctx)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  sess.AccessToken,
		RefreshToken: sess.RefreshToken,
		ExpiresAt:    sess.ExpiresAt,
	}, nil
}

// Identity describes the identity operation and its observable behavior.
//
// Identity may return an error when input validation, dependency calls, or security checks fail.
// Identity does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (g *Guard) Identity(ctx context.Context) (*Identity, error) {
	sess, err := g.currentSession(ctx)
	if err != nil {
		return nil, err
	}
	return &Identity{UserID: sess.UserID, Roles: cloneRoles(sess.Roles)}, nil
}

// Can reports whether the current session's roles grant the named
// permission. Without a session every permission is denied.
func (g *Guard) Can(ctx context.Context, perm string) bool {
	sess, err := g.currentSession(ctx)
	if err != nil {
		return false
	}
	return g.resolver.Can(sess.Roles, perm)
}

// EffectivePermissions returns all permissions granted by the current
// session's roles, in stable bit order.
func (g *Guard) EffectivePermissions(ctx context.Context) []string {
	sess, err := g.currentSession(ctx)
	if err != nil {
		return []string{}
	}
	return g.resolver.EffectivePermissions(sess.Roles)
}

// currentSession returns the live session, loading it from the store once.
func (g *Guard) currentSession(ctx context.Context) (*session.Session, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil, ErrGuardClosed
	}
	if g.loaded {
		sess := g.current
		g.mu.Unlock()
		if sess == nil {
			return nil, ErrNotAuthenticated
		}
		return sess, nil
	}
	g.mu.Unlock()

	stored, err := g.store.Load(ctx)
	if err != nil && !errors.Is(err, session.ErrNoSession) {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.loaded {
		g.current = stored
		g.loaded = true
		if stored != nil {
			g.epoch++
		}
	}
	if g.current == nil {
		return nil, ErrNotAuthenticated
	}
	return g.current, nil
}

func (g *Guard) installSession(sess *session.Session) {
	g.mu.Lock()
	g.current = sess
	g.loaded = true
	g.epoch++
	waiters := g.waiters
	g.waiters = nil
	g.refreshing = false
	g.mu.Unlock()

	for _, ch := range waiters {
		ch <- ErrSessionCleared
	}
}

// postAuth calls an auth endpoint through the raw (unguarded) client.
func (g *Guard) postAuth(ctx context.Context, path string, payload any, requestID string) (*tokenResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.config.HTTP.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.config.HTTP.AttachRequestID && requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := g.raw.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNoContent:
		io.Copy(io.Discard, resp.Body)
		return &tokenResponse{}, nil
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		io.Copy(io.Discard, resp.Body)
		return nil, ErrInvalidCredentials
	default:
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: unexpected status %d", ErrRefreshUnavailable, resp.StatusCode)
	}

	var tokens tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, errors.New("token response missing access_token")
	}

	return &tokens, nil
}

// sessionFromTokens builds a session from a token response. expires_in is
// authoritative; when absent the access token's exp claim is used. Identity
// claims are best effort: an opaque (non-JWT) access token still yields a
// usable session.
func sessionFromTokens(tokens *tokenResponse, now time.Time) *session.Session {
	sess := &session.Session{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		CreatedAt:    now.Unix(),
	}

	if tokens.ExpiresIn > 0 {
		sess.ExpiresAt = now.Unix() + tokens.ExpiresIn
	}

	if claims, err := jwt.Inspect(tokens.AccessToken); err == nil {
		sess.UserID = claims.UserID()
		sess.Roles = cloneRoles(claims.Roles)
		if sess.ExpiresAt == 0 {
			sess.ExpiresAt = claims.ExpiresUnix()
		}
	}

	return sess
}

func cloneRoles(roles []string) []string {
	if roles == nil {
		return nil
	}
	out := make([]string, len(roles))
	copy(out, roles)
	return out
}

func userIDOf(sess *session.Session) string {
	if sess == nil {
		return ""
	}
	return sess.UserID
}
