package session

import "time"

// Session holds the token pair and the identity claims extracted at login.
//
// Session instances are treated as immutable by stores: mutate a copy and
// Save it rather than editing a shared pointer.
type Session struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresAt    int64    `json:"expires_at"`
	UserID       string   `json:"user_id"`
	Roles        []string `json:"roles,omitempty"`
	CreatedAt    int64    `json:"created_at"`
}

// Expired reports whether the access token expiry has passed at time now.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt != 0 && now.Unix() >= s.ExpiresAt
}

// ExpiresWithin reports whether the access token expires within d of now.
// A session without a known expiry never reports true.
func (s *Session) ExpiresWithin(now time.Time, d time.Duration) bool {
	if s.ExpiresAt == 0 {
		return false
	}
	return now.Add(d).Unix() >= s.ExpiresAt
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	out := *s
	if s.Roles != nil {
		out.Roles = make([]string, len(s.Roles))
		copy(out.Roles, s.Roles)
	}
	return &out
}
