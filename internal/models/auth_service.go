package models

import "context"

// AuthUser is the identity resolved from an access token by the external
// auth provider.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthService verifies access tokens against the external auth provider.
// Session handling itself lives entirely on the provider side; this boundary
// only answers "whose token is this".
type AuthService interface {
	// GetUser resolves the user behind an access token. Returns
	// ErrUnauthorized for invalid or expired tokens.
	GetUser(ctx context.Context, accessToken string) (*AuthUser, error)
}
