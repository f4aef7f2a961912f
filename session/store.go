package session

import (
	"context"
	"errors"
)

// ErrNoSession is returned by [Store.Load] when no session is persisted.
var ErrNoSession = errors.New("no session stored")

// Store persists the current session. Implementations must be safe for
// concurrent use; the guard serializes writes but reads can race them.
type Store interface {
	// Load returns the stored session, or ErrNoSession if none exists.
	Load(ctx context.Context) (*Session, error)

	// Save replaces the stored session.
	Save(ctx context.Context, s *Session) error

	// Clear removes the stored session. Clearing an empty store is not
	// an error.
	Clear(ctx context.Context) error
}
