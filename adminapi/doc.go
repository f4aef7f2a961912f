// Package adminapi is a typed client for the admin panel's backend REST API:
// user management, role administration, audit log browsing, and GDPR tooling.
//
// The client is built on a guarded HTTP client, so every call carries the
// current access token and survives token expiry transparently. Backend
// errors arrive as FastAPI-style {"detail": "..."} bodies and are surfaced
// as [*APIError] values usable with errors.As.
package adminapi
