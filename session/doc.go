// Package session provides session persistence for the token guard: the [Session]
// model and pluggable [Store] backends (in-memory, file, Redis).
//
// # Store backends
//
// [Memory] is the default and suits single-process use. [File] persists the session
// as a 0600 JSON file with atomic replace, so a CLI survives restarts. [Redis]
// shares the session between processes and lets the server-side TTL evict it.
//
// # Architecture boundaries
//
// This package owns persistence only. It does NOT interpret JWT tokens, talk to the
// auth backend, or evaluate permissions. Stores never decide whether a session is
// still valid; they report what they hold and the guard decides.
//
// # What this package must NOT do
//
//   - Import tokenguard, jwt, or permission (no upward imports).
//   - Refresh or revoke tokens.
//   - Log token material.
package session
