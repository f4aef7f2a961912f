package jwt

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedToken is returned when a token cannot be parsed at all.
var ErrMalformedToken = errors.New("malformed token")

// AccessClaims are the claims carried by backend-issued access tokens.
type AccessClaims struct {
	UID   string   `json:"uid,omitempty"`
	Roles []string `json:"roles,omitempty"`
	SID   string   `json:"sid,omitempty"`
	jwt.RegisteredClaims
}

// UserID returns the user identifier: the uid claim when present,
// otherwise the registered subject.
func (c *AccessClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject
}

// ExpiresUnix returns the exp claim as a unix timestamp, or 0 when absent.
func (c *AccessClaims) ExpiresUnix() int64 {
	if c.ExpiresAt == nil {
		return 0
	}
	return c.ExpiresAt.Unix()
}

// Inspect parses the claims of a token WITHOUT verifying its signature.
// Use only on tokens received directly from the backend over TLS.
func Inspect(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return claims, nil
}
