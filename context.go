package tokenguard

import (
	"context"

	"github.com/google/uuid"
)

type requestIDContextKey struct{}

// WithRequestID attaches a request identifier to ctx. The guard stamps it on
// outgoing requests as X-Request-ID and on audit events, so a client log line
// can be matched against the backend's.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDContextKey{}, id)
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	id, _ := ctx.Value(requestIDContextKey{}).(string)
	return id
}

// ensureRequestID returns the request ID from ctx, generating a fresh UUID
// when none is attached.
func ensureRequestID(ctx context.Context) string {
	if id := requestIDFromContext(ctx); id != "" {
		return id
	}
	return uuid.NewString()
}
