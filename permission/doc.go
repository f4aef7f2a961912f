// Package permission provides fixed-size bitmask types, a permission registry, and the
// static role table used for client-side RBAC checks.
//
// # Mask sizes
//
// Supported widths: 64 and 128 bits. A width is selected at registry construction time
// and is immutable thereafter. Bit positions are assigned by [Registry.Register] and are
// stable for the lifetime of the process.
//
// # Architecture boundaries
//
// This package is a pure in-memory data structure with no I/O. Every query on a frozen
// [Resolver] is a total function: unknown roles resolve to the empty permission set and
// unknown permissions are denied. A denied check is advisory: the backend re-enforces
// every permission server-side, so the resolver's job is gating UI affordances, not
// security.
//
// # What this package must NOT do
//
//   - Access the network, Redis, or databases.
//   - Import tokenguard, jwt, or session (no upward imports).
//   - Mutate the role table after [Table.Freeze].
package permission
