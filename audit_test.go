package tokenguard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

type countingSink struct {
	count atomic.Int64
}

func (s *countingSink) Emit(context.Context, AuditEvent) {
	s.count.Add(1)
}

func (s *countingSink) Count() int64 {
	return s.count.Load()
}

type gateSink struct {
	gate chan struct{}
}

func newGateSink() *gateSink {
	return &gateSink{
		gate: make(chan struct{}),
	}
}

func (s *gateSink) Emit(context.Context, AuditEvent) {
	<-s.gate
}

func collectEvents(t *testing.T, sink *ChannelSink, want int) []AuditEvent {
	t.Helper()

	events := make([]AuditEvent, 0, want)
	timeout := time.After(2 * time.Second)
	for len(events) < want {
		select {
		case event := <-sink.Events():
			events = append(events, event)
		case <-timeout:
			t.Fatalf("timed out waiting for audit events, got %d of %d", len(events), want)
		}
	}
	return events
}

func TestAuditDisabledNoSinkCalls(t *testing.T) {
	backend := newFakeBackend(t)
	sink := &countingSink{}

	// Sinks attached via WithAuditSink are live; disabling audit after the
	// fact must win.
	guard := newTestGuard(t, backend, func(b *Builder) {
		b.WithAuditSink(sink)
		cfg := defaultConfig()
		cfg.HTTP.BaseURL = backend.srv.URL
		cfg.Audit.Enabled = false
		b.WithConfig(cfg)
	})

	mustLogin(t, guard)
	time.Sleep(30 * time.Millisecond)

	if sink.Count() != 0 {
		t.Fatalf("expected no audit sink calls when disabled, got %d", sink.Count())
	}
}

func TestAuditLoginEvents(t *testing.T) {
	backend := newFakeBackend(t)
	sink := NewChannelSink(16)
	guard := newTestGuard(t, backend, func(b *Builder) {
		b.WithAuditSink(sink)
	})

	if _, err := guard.Login(context.Background(), "admin", "wrong-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	mustLogin(t, guard)

	events := collectEvents(t, sink, 2)
	if events[0].EventType != auditLoginFailure || events[0].Success {
		t.Fatalf("expected login_failure first, got %+v", events[0])
	}
	if events[1].EventType != auditLoginSuccess || !events[1].Success {
		t.Fatalf("expected login_success second, got %+v", events[1])
	}
	if events[1].UserID != "user-42" {
		t.Fatalf("expected user id on success event, got %q", events[1].UserID)
	}
	if events[1].Timestamp.IsZero() {
		t.Fatal("event timestamp must be set")
	}
}

func TestAuditRefreshAndLogoutEvents(t *testing.T) {
	backend := newFakeBackend(t)
	sink := NewChannelSink(16)
	guard := newTestGuard(t, backend, func(b *Builder) {
		b.WithAuditSink(sink)
	})
	mustLogin(t, guard)

	if err := guard.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}
	if err := guard.Logout(context.Background()); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	events := collectEvents(t, sink, 3)
	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.EventType)
	}
	want := []string{auditLoginSuccess, auditRefreshSuccess, auditLogout}
	for i, et := range want {
		if types[i] != et {
			t.Fatalf("expected event order %v, got %v", want, types)
		}
	}
}

func TestAuditTerminalRefreshEmitsExpiry(t *testing.T) {
	backend := newFakeBackend(t)
	backend.refreshStatus = 401

	sink := NewChannelSink(16)
	guard := newTestGuard(t, backend, func(b *Builder) {
		b.WithAuditSink(sink)
	})
	mustLogin(t, guard)

	if err := guard.Refresh(context.Background()); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}

	events := collectEvents(t, sink, 3)
	if events[1].EventType != auditRefreshFailure || events[1].Error == "" {
		t.Fatalf("expected refresh_failure with error detail, got %+v", events[1])
	}
	if events[2].EventType != auditSessionExpired {
		t.Fatalf("expected session_expired last, got %+v", events[2])
	}
}

func TestAuditDropIfFull(t *testing.T) {
	sink := newGateSink()

	cfg := AuditConfig{
		Enabled:    true,
		BufferSize: 1,
		DropIfFull: true,
	}
	d := newAuditDispatcher(cfg, sink)
	defer func() {
		close(sink.gate)
		d.Close()
	}()

	// First event occupies the worker, second fills the buffer, the rest
	// must drop without blocking.
	for i := 0; i < 5; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditLogout})
	}

	deadline := time.Now().Add(2 * time.Second)
	for d.Dropped() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if d.Dropped() == 0 {
		t.Fatal("expected dropped events with a full buffer")
	}
}

func TestAuditCloseDrainsBuffer(t *testing.T) {
	sink := &countingSink{}

	cfg := AuditConfig{
		Enabled:    true,
		BufferSize: 32,
		DropIfFull: true,
	}
	d := newAuditDispatcher(cfg, sink)

	const events = 10
	for i := 0; i < events; i++ {
		d.Emit(context.Background(), AuditEvent{EventType: auditLogout})
	}
	d.Close()

	if got := sink.Count(); got != events {
		t.Fatalf("expected %d delivered after Close, got %d", events, got)
	}
}

func TestAuditEmitAfterCloseIsNoOp(t *testing.T) {
	sink := &countingSink{}
	d := newAuditDispatcher(AuditConfig{Enabled: true, BufferSize: 4}, sink)
	d.Close()

	d.Emit(context.Background(), AuditEvent{EventType: auditLogout})
	if got := sink.Count(); got != 0 {
		t.Fatalf("expected no delivery after Close, got %d", got)
	}
}

func TestJSONWriterSinkWritesLine(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSONWriterSink(&buf)

	sink.Emit(context.Background(), AuditEvent{
		Timestamp: time.Unix(1700000000, 0).UTC(),
		EventType: auditLoginSuccess,
		UserID:    "user-42",
		Success:   true,
	})

	line := strings.TrimSpace(buf.String())
	var decoded AuditEvent
	if err := json.Unmarshal([]byte(line), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.EventType != auditLoginSuccess || decoded.UserID != "user-42" || !decoded.Success {
		t.Fatalf("unexpected decoded event: %+v", decoded)
	}
}
