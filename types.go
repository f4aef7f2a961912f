package tokenguard

// Identity defines a public type used by tokenguard APIs.
//
// Identity instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Identity struct {
	UserID string
	Roles  []string
}

// TokenPair defines a public type used by tokenguard APIs.
//
// TokenPair instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	// ExpiresAt is the unix time the access token expires, 0 if unknown.
	ExpiresAt int64
}

// RoleSpec defines a public type used by tokenguard APIs.
//
// RoleSpec instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RoleSpec struct {
	Level       int
	Permissions []string
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type,omitempty"`
}
