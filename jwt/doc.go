// Package jwt inspects access tokens without verifying their signature.
//
// The client never holds the backend's signing key, so it cannot verify
// tokens; it only needs the claims the backend already vouched for over TLS
// (user id, roles, expiry) to drive local decisions like proactive refresh.
// Authorization is always re-enforced server-side.
//
// # What this package must NOT do
//
//   - Treat an inspected token as authenticated.
//   - Import tokenguard, session, or permission (no upward imports).
package jwt
