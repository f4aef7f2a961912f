package adminapi

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for use with errors.Is().
var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrPermissionDenied is returned when the backend rejects the caller's role.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrProtectedRole is returned when deleting a role the deployment protects.
	ErrProtectedRole = errors.New("role is protected")
)

// APIError is a non-2xx response from the backend. Detail carries the
// backend's human-readable message when the body was parseable.
type APIError struct {
	// StatusCode is the HTTP status the backend answered with.
	StatusCode int
	// Detail is the backend's error message, empty if the body had none.
	Detail string
	// RequestID is the X-Request-ID echoed by the backend, if any.
	RequestID string
}

// Error returns a human-readable description of the failure.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("admin api: %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("admin api: unexpected status %d", e.StatusCode)
}

// Is reports whether this error matches the target error.
// It supports errors.Is(err, ErrNotFound) and errors.Is(err, ErrPermissionDenied).
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrPermissionDenied:
		return e.StatusCode == http.StatusForbidden
	default:
		return false
	}
}

// IsNotFound reports whether err is a 404 from the backend.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsPermissionDenied reports whether err is a 403 from the backend.
func IsPermissionDenied(err error) bool {
	return errors.Is(err, ErrPermissionDenied)
}
