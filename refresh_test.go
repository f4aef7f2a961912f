package tokenguard

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tokenguard/tokenguard/session"
)

func TestRefreshRejectionIsTerminal(t *testing.T) {
	backend := newFakeBackend(t)
	backend.refreshStatus = http.StatusUnauthorized

	var expiredCount atomic.Int64
	guard := newTestGuard(t, backend, func(b *Builder) {
		b.WithSessionExpiredHandler(func() {
			expiredCount.Add(1)
		})
	})
	mustLogin(t, guard)
	backend.invalidateAccess()

	type outcome struct {
		status int
		err    error
	}

	const n = 3
	var wg sync.WaitGroup
	wg.Add(n)
	results := make(chan outcome, n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			resp, err := guard.Client().Get(backend.srv.URL + "/api/data")
			if err != nil {
				results <- outcome{err: err}
				return
			}
			resp.Body.Close()
			results <- outcome{status: resp.StatusCode}
		}()
	}
	wg.Wait()
	close(results)

	for got := range results {
		if got.err != nil {
			if !errors.Is(got.err, ErrSessionExpired) {
				t.Fatalf("expected ErrSessionExpired, got %v", got.err)
			}
			continue
		}
		// A caller that raced past the clear went out without a token and
		// got the backend's own 401.
		if got.status != http.StatusUnauthorized {
			t.Fatalf("expected 401 for post-clear request, got %d", got.status)
		}
	}

	if got := expiredCount.Load(); got != 1 {
		t.Fatalf("expiry handler must fire exactly once, fired %d times", got)
	}
	if got := backend.refreshCalls.Load(); got != 1 {
		t.Fatalf("expected 1 refresh call, got %d", got)
	}

	if _, err := guard.Identity(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected cleared session, got %v", err)
	}

	snap := guard.MetricsSnapshot()
	if snap.Counters[MetricSessionExpired] != 1 {
		t.Fatalf("expected 1 session expired metric, got %d", snap.Counters[MetricSessionExpired])
	}
}

func TestRefreshServerErrorIsTerminal(t *testing.T) {
	backend := newFakeBackend(t)
	backend.refreshStatus = http.StatusInternalServerError

	guard := newTestGuard(t, backend)
	mustLogin(t, guard)

	err := guard.Refresh(context.Background())
	if !errors.Is(err, ErrRefreshUnavailable) {
		t.Fatalf("expected ErrRefreshUnavailable, got %v", err)
	}

	// The failure clears the session regardless of cause.
	if _, err := guard.Identity(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected cleared session, got %v", err)
	}
}

func TestTerminalRefreshClearsStore(t *testing.T) {
	backend := newFakeBackend(t)
	backend.refreshStatus = http.StatusUnauthorized

	store := session.NewMemory()
	guard := newTestGuard(t, backend, func(b *Builder) {
		b.WithSessionStore(store)
	})
	mustLogin(t, guard)

	if err := guard.Refresh(context.Background()); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	if _, err := store.Load(context.Background()); !errors.Is(err, session.ErrNoSession) {
		t.Fatalf("expected store cleared, got %v", err)
	}
}

func TestLogoutDuringRefreshDiscardsResult(t *testing.T) {
	backend := newFakeBackend(t)
	gate := make(chan struct{})
	backend.refreshGate = gate

	guard := newTestGuard(t, backend)
	mustLogin(t, guard)
	backend.invalidateAccess()

	refreshErr := make(chan error, 1)
	go func() {
		refreshErr <- guard.Refresh(context.Background())
	}()

	// Wait until the refresh call is in flight, then log out underneath it.
	deadline := time.Now().Add(2 * time.Second)
	for backend.refreshCalls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := guard.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}
	close(gate)

	if err := <-refreshErr; !errors.Is(err, ErrSessionCleared) {
		t.Fatalf("expected ErrSessionCleared, got %v", err)
	}

	// The tokens minted by the discarded refresh must not be installed.
	if _, err := guard.Identity(context.Background()); !errors.Is(err, ErrNotAuthenticated) {
		t.Fatalf("expected no session after logout, got %v", err)
	}
}

func TestWaitersParkAndJoinSingleRefresh(t *testing.T) {
	backend := newFakeBackend(t)
	gate := make(chan struct{})
	backend.refreshGate = gate

	guard := newTestGuard(t, backend)
	mustLogin(t, guard)

	sess, _ := guard.Session(context.Background())
	stale := sess.AccessToken
	backend.invalidateAccess()

	// Initiator starts the refresh and blocks on the gate.
	initiatorDone := make(chan error, 1)
	go func() {
		initiatorDone <- guard.awaitRefresh(context.Background(), stale)
	}()
	deadline := time.Now().Add(2 * time.Second)
	for backend.refreshCalls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	// Waiters enqueue in arrival order behind it.
	const waiters = 4
	var wg sync.WaitGroup
	wg.Add(waiters)
	waiterErrs := make(chan error, waiters)
	for i := 0; i < waiters; i++ {
		want := i + 1
		go func() {
			defer wg.Done()
			waiterErrs <- guard.awaitRefresh(context.Background(), stale)
		}()
		// Confirm this waiter is parked before starting the next, so the
		// queue order is the arrival order.
		for time.Now().Before(deadline) {
			guard.mu.Lock()
			parked := len(guard.waiters)
			guard.mu.Unlock()
			if parked >= want {
				break
			}
			time.Sleep(2 * time.Millisecond)
		}
	}

	guard.mu.Lock()
	parked := len(guard.waiters)
	guard.mu.Unlock()
	if parked != waiters {
		t.Fatalf("expected %d parked waiters, got %d", waiters, parked)
	}

	close(gate)
	wg.Wait()
	close(waiterErrs)

	if err := <-initiatorDone; err != nil {
		t.Fatalf("initiator failed: %v", err)
	}
	for err := range waiterErrs {
		if err != nil {
			t.Fatalf("waiter failed: %v", err)
		}
	}

	if got := backend.refreshCalls.Load(); got != 1 {
		t.Fatalf("expected exactly one refresh call, got %d", got)
	}
	if got := guard.MetricsSnapshot().Counters[MetricRefreshJoined]; got != waiters {
		t.Fatalf("expected %d joined waiters, got %d", waiters, got)
	}
}

func TestWaiterQueueDrainedInOrderOnFailure(t *testing.T) {
	backend := newFakeBackend(t)
	guard := newTestGuard(t, backend)
	mustLogin(t, guard)

	// White-box: stage a waiter queue by hand and settle with a failure.
	// Every channel must receive the terminal error, in slice order.
	chans := make([]chan error, 3)
	guard.mu.Lock()
	guard.refreshing = true
	epoch := guard.epoch
	for i := range chans {
		chans[i] = make(chan error, 1)
		guard.waiters = append(guard.waiters, chans[i])
	}
	guard.mu.Unlock()

	err := guard.settleRefresh(context.Background(), epoch, nil, ErrSessionExpired)
	if !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired from settle, got %v", err)
	}

	for i, ch := range chans {
		select {
		case got := <-ch:
			if !errors.Is(got, ErrSessionExpired) {
				t.Fatalf("waiter %d: expected ErrSessionExpired, got %v", i, got)
			}
		default:
			t.Fatalf("waiter %d was never notified", i)
		}
	}
}

func TestStaleTokenShortCircuit(t *testing.T) {
	backend := newFakeBackend(t)
	guard := newTestGuard(t, backend)
	mustLogin(t, guard)

	sess, _ := guard.Session(context.Background())
	if err := guard.awaitRefresh(context.Background(), "some-older-token"); err != nil {
		t.Fatalf("expected no-op for already-rotated token, got %v", err)
	}
	if backend.refreshCalls.Load() != 0 {
		t.Fatal("already-rotated token must not trigger a refresh")
	}

	after, _ := guard.Session(context.Background())
	if after.AccessToken != sess.AccessToken {
		t.Fatal("session must be untouched")
	}
}

func TestCanceledWaiterLeavesQueueRunning(t *testing.T) {
	backend := newFakeBackend(t)
	gate := make(chan struct{})
	backend.refreshGate = gate

	guard := newTestGuard(t, backend)
	mustLogin(t, guard)

	sess, _ := guard.Session(context.Background())
	stale := sess.AccessToken
	backend.invalidateAccess()

	initiatorDone := make(chan error, 1)
	go func() {
		initiatorDone <- guard.awaitRefresh(context.Background(), stale)
	}()
	deadline := time.Now().Add(2 * time.Second)
	for backend.refreshCalls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	waiterDone := make(chan error, 1)
	go func() {
		waiterDone <- guard.awaitRefresh(ctx, stale)
	}()
	for time.Now().Before(deadline) {
		guard.mu.Lock()
		parked := len(guard.waiters)
		guard.mu.Unlock()
		if parked == 1 {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}

	cancel()
	if err := <-waiterDone; !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	// The refresh itself is unaffected by the canceled waiter.
	close(gate)
	if err := <-initiatorDone; err != nil {
		t.Fatalf("initiator failed: %v", err)
	}
	if backend.refreshCalls.Load() != 1 {
		t.Fatalf("expected 1 refresh call, got %d", backend.refreshCalls.Load())
	}
}

func TestWaiterQueueCap(t *testing.T) {
	backend := newFakeBackend(t)
	guard := newTestGuard(t, backend, func(b *Builder) {
		cfg := defaultConfig()
		cfg.HTTP.BaseURL = backend.srv.URL
		cfg.Refresh.MaxWaiters = 1
		b.WithConfig(cfg)
		b.WithHTTPClient(backend.srv.Client())
	})
	mustLogin(t, guard)

	sess, _ := guard.Session(context.Background())
	stale := sess.AccessToken

	guard.mu.Lock()
	guard.refreshing = true
	guard.waiters = append(guard.waiters, make(chan error, 1))
	guard.mu.Unlock()

	if err := guard.awaitRefresh(context.Background(), stale); !errors.Is(err, ErrRefreshQueueFull) {
		t.Fatalf("expected ErrRefreshQueueFull, got %v", err)
	}
}
