package domain

import "time"

// Session is an opaque-token login session. The token itself is never
// stored, only its fingerprint.
type Session struct {
	ID          string
	UserID      string
	TokenHash   string
	UserAgent   string
	IP          string
	DeviceHash  string
	DeviceLabel string
	CreatedAt   time.Time
	LastSeenAt  time.Time
	ExpiresAt   time.Time
	RevokedAt   *time.Time

	// IsCurrent is a presentation hint filled in when listing; it marks the
	// session the listing request itself rides on.
	IsCurrent bool
}

// Active reports revokedAt == nil && now < expiresAt.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// DeviceInfo describes the client a session is being created for.
type DeviceInfo struct {
	UserAgent string
	IP        string
}
