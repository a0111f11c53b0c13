package domain

import "time"

// Status is the account lifecycle axis. It is independent of Role: a BANNED
// user may still be "active" and a FOUNDER may be "disabled". Both are gates.
type Status string

const (
	StatusPendingVerification Status = "pending_verification"
	StatusActive              Status = "active"
	StatusDisabled            Status = "disabled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPendingVerification, StatusActive, StatusDisabled:
		return true
	}
	return false
}

type User struct {
	ID           string
	Email        string
	PasswordHash string // argon2 encoded; empty for accounts created through OAuth
	Role         Role
	Status       Status

	TermsAcceptedAt *time.Time
	TermsVersion    string

	// Permissions overrides the role grant when non-nil. An empty, non-nil
	// slice grants nothing.
	Permissions []string

	// FeatureFlags holds explicit flags; a missing key reads as false.
	FeatureFlags map[string]bool

	DeletedAt     *time.Time
	DeletedReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasPassword is false for users that only ever signed in through a provider.
func (u User) HasPassword() bool { return u.PasswordHash != "" }

// IsDeleted reports whether the user has been soft-deleted.
func (u User) IsDeleted() bool { return u.DeletedAt != nil }

// Flag returns the value of a feature flag, false when unset.
func (u User) Flag(name string) bool { return u.FeatureFlags[name] }
