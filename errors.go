package tokenguard

import "errors"

var (
	// ErrNotAuthenticated is an exported constant or variable used by the token guard.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrInvalidCredentials is an exported constant or variable used by the token guard.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrSessionExpired is an exported constant or variable used by the token guard.
	ErrSessionExpired = errors.New("session expired")
	// ErrSessionCleared is an exported constant or variable used by the token guard.
	ErrSessionCleared = errors.New("session cleared during refresh")
	// ErrRefreshUnavailable is an exported constant or variable used by the token guard.
	ErrRefreshUnavailable = errors.New("refresh backend unavailable")
	// ErrRefreshQueueFull is an exported constant or variable used by the token guard.
	ErrRefreshQueueFull = errors.New("refresh waiter queue full")
	// ErrRequestNotReplayable is an exported constant or variable used by the token guard.
	ErrRequestNotReplayable = errors.New("request body cannot be replayed")
	// ErrGuardNotReady is an exported constant or variable used by the token guard.
	ErrGuardNotReady = errors.New("guard not initialized")
	// ErrGuardClosed is an exported constant or variable used by the token guard.
	ErrGuardClosed = errors.New("guard closed")
)
