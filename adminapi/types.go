package adminapi

import "time"

// User is an admin panel account as the backend reports it.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateUserRequest is the payload for creating an account.
type CreateUserRequest struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles,omitempty"`
}

// UpdateUserRequest carries partial updates; nil fields are left unchanged.
type UpdateUserRequest struct {
	Email  *string  `json:"email,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	Active *bool    `json:"active,omitempty"`
}

// ListUsersOptions filters and pages the user listing.
type ListUsersOptions struct {
	// Query matches against username and email.
	Query string
	// Role keeps only users holding the role.
	Role string
	// Offset and Limit page the result. Limit of 0 uses the backend default.
	Offset int
	Limit  int
}

// UserPage is one page of the user listing.
type UserPage struct {
	Users  []User `json:"users"`
	Total  int    `json:"total"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

// Role is a backend role definition.
type Role struct {
	Name        string   `json:"name"`
	Level       int      `json:"level"`
	Permissions []string `json:"permissions"`
	Protected   bool     `json:"protected"`
}

// AuditEntry is one backend audit log record.
type AuditEntry struct {
	ID        string            `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Actor     string            `json:"actor"`
	Action    string            `json:"action"`
	Target    string            `json:"target,omitempty"`
	Success   bool              `json:"success"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// ListAuditOptions filters and pages the audit log.
type ListAuditOptions struct {
	Actor  string
	Action string
	Since  time.Time
	Until  time.Time
	Offset int
	Limit  int
}

// AuditPage is one page of the audit log.
type AuditPage struct {
	Entries []AuditEntry `json:"entries"`
	Total   int          `json:"total"`
	Offset  int          `json:"offset"`
	Limit   int          `json:"limit"`
}

// GDPRExport is the backend's bundle of everything held about a user.
type GDPRExport struct {
	UserID      string          `json:"user_id"`
	GeneratedAt time.Time       `json:"generated_at"`
	Profile     User            `json:"profile"`
	AuditTrail  []AuditEntry    `json:"audit_trail"`
	Extra       map[string]any  `json:"extra,omitempty"`
}

// ErasureReceipt confirms a GDPR erasure request.
type ErasureReceipt struct {
	UserID    string    `json:"user_id"`
	RequestID string    `json:"request_id"`
	ErasedAt  time.Time `json:"erased_at"`
}
