package tokenguard

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/tokenguard/tokenguard/session"
)

// awaitRefresh blocks until the access token equal to staleToken has been
// replaced. The first caller to arrive performs the refresh; everyone else
// parks in a FIFO queue and is released in arrival order when it settles.
// A nil return means a fresh token is installed.
func (g *Guard) awaitRefresh(ctx context.Context, staleToken string) error {
	g.mu.Lock()

	if g.closed {
		g.mu.Unlock()
		return ErrGuardClosed
	}
	if g.current == nil {
		g.mu.Unlock()
		return ErrSessionExpired
	}
	if g.current.AccessToken != staleToken {
		// Another caller already rotated the token.
		g.mu.Unlock()
		return nil
	}

	if g.refreshing {
		if max := g.config.Refresh.MaxWaiters; max > 0 && len(g.waiters) >= max {
			g.mu.Unlock()
			return ErrRefreshQueueFull
		}
		ch := make(chan error, 1)
		g.waiters = append(g.waiters, ch)
		g.mu.Unlock()

		g.metricInc(MetricRefreshJoined)

		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			// The refresh keeps running for the remaining waiters; only
			// this caller gives up.
			return ctx.Err()
		}
	}

	g.refreshing = true
	epoch := g.epoch
	refreshToken := g.current.RefreshToken
	g.mu.Unlock()

	next, err := g.doRefresh(ctx, refreshToken)
	return g.settleRefresh(ctx, epoch, next, err)
}

// doRefresh performs the network call. It runs on a context detached from
// the triggering request so one canceled caller cannot fail the queue.
func (g *Guard) doRefresh(ctx context.Context, refreshToken string) (*session.Session, error) {
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.config.Refresh.CallTimeout)
	defer cancel()

	tokens, err := g.postAuth(callCtx, g.config.Endpoints.Refresh, refreshRequest{
		RefreshToken: refreshToken,
	}, uuid.NewString())
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			// The backend rejected the refresh token itself.
			return nil, ErrSessionExpired
		}
		return nil, err
	}
	if tokens.AccessToken == "" {
		return nil, fmt.Errorf("%w: token response missing access_token", ErrRefreshUnavailable)
	}

	return sessionFromTokens(tokens, time.Now()), nil
}

// settleRefresh installs the refresh outcome and releases the queue in FIFO
// order. Any failure is terminal: the session is cleared, every waiter is
// rejected with ErrSessionExpired, and the expiry handler fires once.
func (g *Guard) settleRefresh(ctx context.Context, epoch uint64, next *session.Session, refreshErr error) error {
	g.mu.Lock()

	if g.closed {
		waiters := g.waiters
		g.waiters = nil
		g.refreshing = false
		g.mu.Unlock()
		for _, ch := range waiters {
			ch <- ErrGuardClosed
		}
		return ErrGuardClosed
	}

	if g.epoch != epoch {
		// Logout or a new login won the race. The result of this refresh
		// belongs to a session that no longer exists.
		waiters := g.waiters
		g.waiters = nil
		g.refreshing = false
		g.mu.Unlock()
		for _, ch := range waiters {
			ch <- ErrSessionCleared
		}
		return ErrSessionCleared
	}

	if refreshErr != nil {
		prev := g.current
		g.current = nil
		g.epoch++
		waiters := g.waiters
		g.waiters = nil
		g.refreshing = false
		g.mu.Unlock()

		clearCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.config.Refresh.CallTimeout)
		if err := g.store.Clear(clearCtx); err != nil {
			log.Print("tokenguard: failed to clear expired session: ", err)
		}
		cancel()

		g.metricInc(MetricRefreshFailure)
		g.metricInc(MetricSessionExpired)
		g.emitAudit(ctx, AuditEvent{
			EventType: auditRefreshFailure,
			UserID:    userIDOf(prev),
			Success:   false,
			Error:     refreshErr.Error(),
		})
		g.emitAudit(ctx, AuditEvent{
			EventType: auditSessionExpired,
			UserID:    userIDOf(prev),
			Success:   false,
		})

		for _, ch := range waiters {
			ch <- ErrSessionExpired
		}

		if g.onExpired != nil {
			g.onExpired()
		}

		return refreshErr
	}

	// Identity claims and the refresh token survive when the backend omits
	// them from the rotated pair.
	if prev := g.current; prev != nil {
		if next.UserID == "" {
			next.UserID = prev.UserID
			next.Roles = cloneRoles(prev.Roles)
		}
		if next.RefreshToken == "" {
			next.RefreshToken = prev.RefreshToken
		}
	}
	g.current = next
	g.epoch++
	waiters := g.waiters
	g.waiters = nil
	g.refreshing = false
	g.mu.Unlock()

	for _, ch := range waiters {
		ch <- nil
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.config.Refresh.CallTimeout)
	if err := g.store.Save(saveCtx, next); err != nil {
		log.Print("tokenguard: failed to persist refreshed session: ", err)
	}
	cancel()

	g.metricInc(MetricRefreshSuccess)
	g.emitAudit(ctx, AuditEvent{
		EventType: auditRefreshSuccess,
		UserID:    next.UserID,
		Success:   true,
	})

	return nil
}
