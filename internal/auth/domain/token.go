package domain

import "time"

// TokenPurpose separates activation and password reset tokens that share a
// table; a token minted for one purpose never redeems for the other.
type TokenPurpose string

const (
	PurposeActivation    TokenPurpose = "activation"
	PurposePasswordReset TokenPurpose = "password_reset"
)

// VerificationToken is a single-use emailed proof. Only the SHA-256
// fingerprint of the token is ever stored.
type VerificationToken struct {
	ID        string
	UserID    string
	Purpose   TokenPurpose
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}
