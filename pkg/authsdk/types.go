package authsdk

import "time"

// ============================================================================
// Envelope Types
// ============================================================================

// Envelope is the success body: {"status":"OK","message":..,"data":..}.
type Envelope[T any] struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data,omitempty"`
}

// ============================================================================
// Login Types
// ============================================================================

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// TwoFactorMethods lists which second factors a ticket can be redeemed with.
type TwoFactorMethods struct {
	TOTP     bool `json:"totp"`
	Recovery bool `json:"recovery"`
}

// TwoFactorChallenge is the flattened 2FA_REQUIRED body a login returns when
// the account has a second factor.
type TwoFactorChallenge struct {
	Status    string           `json:"status"`
	Ticket    string           `json:"ticket"`
	Methods   TwoFactorMethods `json:"methods"`
	ExpiresAt time.Time        `json:"expiresAt"`
}

// TwoFactorRequest is the body of POST /auth/login/2fa.
type TwoFactorRequest struct {
	Ticket string `json:"ticket" validate:"required"`
	Mode   string `json:"mode" validate:"required"`
	Code   string `json:"code" validate:"required,max=32"`
}

// LoginResponse is the data of a completed login. Token is the opaque
// session token; browsers get it as a cookie as well.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Principal `json:"user"`
}

// SessionStatus is the data of GET /auth/session.
type SessionStatus struct {
	Authenticated bool       `json:"authenticated"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
}

// Principal is the signed-in user as GET /auth/me describes it.
type Principal struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Role         string          `json:"role"`
	Status       string          `json:"status"`
	Permissions  []string        `json:"permissions"`
	FeatureFlags map[string]bool `json:"featureFlags"`
	HasPassword  bool            `json:"hasPassword"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// HasPermission reports whether the principal holds perm.
func (p *Principal) HasPermission(perm string) bool {
	for _, have := range p.Permissions {
		if have == perm {
			return true
		}
	}
	return false
}

// ============================================================================
// Account Types
// ============================================================================

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email         string `json:"email" validate:"required,max=254"`
	Password      string `json:"password" validate:"required,max=128"`
	TermsAccepted bool   `json:"termsAccepted"`
	TermsVersion  string `json:"termsVersion,omitempty" validate:"max=32"`
}

// EmailRequest carries a bare email: activation resend and forgot password.
type EmailRequest struct {
	Email string `json:"email" validate:"required,max=254"`
}

// TokenRequest carries an emailed token.
type TokenRequest struct {
	Token string `json:"token" validate:"required,max=128"`
}

// ResetPasswordRequest is the body of POST /auth/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required,max=128"`
	Password string `json:"password" validate:"required,max=128"`
}

// ChangePasswordRequest is the body of POST /auth/password/change.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required,max=128"`
	NewPassword     string `json:"newPassword" validate:"required,max=128"`
}

// UserResponse is the public view of an account after register or activate.
type UserResponse struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

// ============================================================================
// OAuth Types
// ============================================================================

// OAuthEmailRequired is the AWAITING_EMAIL body of a provider callback that
// did not come with a usable email.
type OAuthEmailRequired struct {
	Status    string    `json:"status"`
	Ticket    string    `json:"ticket"`
	Provider  string    `json:"provider"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// OAuthCompleteRequest is the body of POST /auth/oauth/complete.
type OAuthCompleteRequest struct {
	Ticket string `json:"ticket" validate:"required"`
	Email  string `json:"email" validate:"required,max=254"`
}

// ============================================================================
// Security Types
// ============================================================================

// SessionInfo describes one session in a listing.
type SessionInfo struct {
	ID          string     `json:"id"`
	DeviceLabel string     `json:"deviceLabel"`
	UserAgent   string     `json:"userAgent,omitempty"`
	IP          string     `json:"ip,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastSeenAt  time.Time  `json:"lastSeenAt"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	RevokedAt   *time.Time `json:"revokedAt,omitempty"`
	IsCurrent   bool       `json:"isCurrent"`
}

// RevokeResult reports how many sessions a bulk revoke ended.
type RevokeResult struct {
	Revoked int64 `json:"revoked"`
}

// TwoFactorStatus is the data of GET /user/security/2fa.
type TwoFactorStatus struct {
	Enabled                bool       `json:"enabled"`
	Pending                bool       `json:"pending"`
	EnabledAt              *time.Time `json:"enabledAt,omitempty"`
	RemainingRecoveryCodes int        `json:"remainingRecoveryCodes"`
}

// TwoFactorSetup is returned once when setup starts.
type TwoFactorSetup struct {
	Secret     string `json:"secret"`
	OTPAuthURI string `json:"otpauthUri"`
	Issuer     string `json:"issuer"`
	Account    string `json:"account"`
}

// CodeRequest carries a single TOTP code.
type CodeRequest struct {
	Code string `json:"code" validate:"required,max=16"`
}

// RecoveryCodes are shown exactly once.
type RecoveryCodes struct {
	Codes []string `json:"codes"`
}

// ============================================================================
// Admin Types
// ============================================================================

// AdminUser is the account summary an admin sees.
type AdminUser struct {
	ID           string          `json:"id"`
	Email        string          `json:"email"`
	Role         string          `json:"role"`
	Status       string          `json:"status"`
	Permissions  []string        `json:"permissions"`
	FeatureFlags map[string]bool `json:"featureFlags"`
	Deleted      bool            `json:"deleted"`
}

// Activity is one audit row.
type Activity struct {
	ID        string            `json:"id"`
	ActorID   string            `json:"actorId,omitempty"`
	SubjectID string            `json:"subjectId,omitempty"`
	Action    string            `json:"action"`
	IP        string            `json:"ip,omitempty"`
	UserAgent string            `json:"userAgent,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
}

// AdminSessionsView is the data of GET /admin/users/{id}/sessions. Degraded
// is also signalled by the x-admin-mode response header.
type AdminSessionsView struct {
	User     AdminUser     `json:"user"`
	Sessions []SessionInfo `json:"sessions"`
	Activity []Activity    `json:"activity"`
	Degraded bool          `json:"degraded"`
}

// AdminRevokeRequest is the optional body of the admin revoke endpoints.
type AdminRevokeRequest struct {
	ConfirmSelf bool `json:"confirmSelf"`
}

// StatusRequest is the body of PUT /admin/users/{id}/status.
type StatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// RoleRequest is the body of PUT /admin/users/{id}/role.
type RoleRequest struct {
	Role string `json:"role" validate:"required"`
}

// PermissionsRequest is the body of PUT /admin/users/{id}/permissions. A
// null list drops the override.
type PermissionsRequest struct {
	Permissions []string `json:"permissions"`
}

// FeatureFlagRequest is the body of PATCH /admin/users/{id}/flags/{flag}.
// Expected is the value the caller believes the flag holds now.
type FeatureFlagRequest struct {
	Expected *bool `json:"expected" validate:"required"`
	Value    *bool `json:"value" validate:"required"`
}

// FeatureFlagResponse reports the stored value.
type FeatureFlagResponse struct {
	Flag  string `json:"flag"`
	Value bool   `json:"value"`
}

// DeleteUserRequest is the optional body of DELETE /admin/users/{id}.
type DeleteUserRequest struct {
	Reason string `json:"reason" validate:"max=256"`
}

// ============================================================================
// Bootstrap Types
// ============================================================================

// BootstrapRequest is the body of POST /auth/bootstrap. The token travels in the
// X-Bootstrap-Token header.
type BootstrapRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=128"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
	Counter  string `json:"counter,omitempty"`
}
