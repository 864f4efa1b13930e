package auth

import "time"

// IssuedToken is a signed token and the instant it stops being valid.
type IssuedToken struct {
	Value     string
	ExpiresAt time.Time
}

// TokenManager abstracts token issuance and verification.
type TokenManager interface {
	Generate(userID string) (IssuedToken, error)
	// Validate returns the user id of a valid, unexpired token.
	Validate(token string) (string, error)
}
