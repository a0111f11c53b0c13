package domain

import "time"

// OAuthClaims is what we keep from a provider callback.
type OAuthClaims struct {
	Provider      string `json:"provider"`
	Subject       string `json:"subject"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"emailVerified,omitempty"`
	Name          string `json:"name,omitempty"`
}

// OAuthIdentity links a provider account to a user. (Provider, Subject) is
// unique, so an identity can only ever point at one user.
type OAuthIdentity struct {
	Provider  string
	Subject   string
	UserID    string
	Email     string
	CreatedAt time.Time
}

// OAuthTicket holds provider claims while we wait for the user to supply an
// email address.
type OAuthTicket struct {
	ID         string
	Claims     OAuthClaims
	ExpiresAt  time.Time
	ConsumedAt *time.Time
	CreatedAt  time.Time
}
