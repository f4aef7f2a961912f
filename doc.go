// Package tokenguard keeps an authenticated HTTP client alive: it attaches the
// access token to outgoing requests, refreshes it transparently when the backend
// answers 401, and exposes the caller's identity and permissions for local checks.
//
// # Refresh model
//
// All requests share one [Guard]. When a request fails with 401, the guard starts
// exactly one refresh call against the backend; every other request that fails
// while that call is in flight parks in a FIFO queue and is replayed, in arrival
// order, once the new token pair lands. A request is retried at most once; a 401
// on the replayed request is returned to the caller untouched.
//
// When the refresh call itself is rejected the session is terminal: the guard
// clears the session store, fails every parked request with [ErrSessionExpired],
// and fires the configured expiry handler exactly once.
//
// # Architecture boundaries
//
// The guard is a client-side convenience layer. Permission answers gate UI
// affordances only; the backend re-checks every call. Nothing in this module
// verifies token signatures.
package tokenguard
