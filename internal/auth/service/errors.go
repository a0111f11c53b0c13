package service

import (
	"errors"
	"fmt"
)

// Login and second factor.
var (
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountNotVerified  = errors.New("account not verified")
	ErrAccountDisabled     = errors.New("account disabled")
	ErrAccountSuspended    = errors.New("account suspended")
	ErrAccountBanned       = errors.New("account banned")
	ErrInvalidTicket       = errors.New("invalid 2fa ticket")
	ErrInvalidTOTPCode     = errors.New("invalid totp code")
	ErrInvalidRecoveryCode = errors.New("invalid recovery code")
	ErrInvalidMode         = errors.New("unknown second factor mode")
	ErrRateLimited         = errors.New("too many attempts")
	ErrUnauthenticated     = errors.New("unauthenticated")
)

// Account flows.
var (
	ErrEmailExists         = errors.New("email already exists")
	ErrTermsNotAccepted    = errors.New("terms not accepted")
	ErrInvalidEmail        = errors.New("invalid email")
	ErrWeakPassword        = errors.New("password does not meet requirements")
	ErrActivationInvalid   = errors.New("activation token invalid or expired")
	ErrResetTokenInvalid   = errors.New("reset token invalid or expired")
	ErrIncorrectPassword   = errors.New("current password incorrect")
	ErrPasswordNotSet      = errors.New("account has no password")
	ErrTwoFactorEnabled    = errors.New("2fa already enabled")
	ErrTwoFactorNotEnabled = errors.New("2fa not enabled")
	ErrTwoFactorNotPending = errors.New("2fa setup not started")
	ErrSessionNotFound     = errors.New("session not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTokenInvalid        = errors.New("token invalid or expired")
)

// Admin.
var (
	ErrForbidden                      = errors.New("forbidden")
	ErrSelfRevokeConfirmationRequired = errors.New("self revocation requires confirmation")
	ErrInvalidRole                    = errors.New("invalid role")
	ErrInvalidStatus                  = errors.New("invalid status")
	ErrInvalidPermission              = errors.New("invalid permission")
	ErrInvalidFlag                    = errors.New("invalid feature flag name")
	ErrFeatureFlagConflict            = errors.New("feature flag changed concurrently")
)

// OAuth.
var (
	ErrOAuthTicketInvalid = errors.New("oauth ticket invalid")
	ErrOAuthEmailConflict = errors.New("email belongs to another account")
	ErrUnknownProvider    = errors.New("unknown oauth provider")
	ErrOAuthExchange      = errors.New("oauth code exchange failed")
)

// FeatureFlagConflictError carries the value the flag actually holds so the
// caller can roll its optimistic update back to it.
type FeatureFlagConflictError struct {
	Flag    string
	Current bool
}

func (e *FeatureFlagConflictError) Error() string {
	return fmt.Sprintf("feature flag %q is currently %t", e.Flag, e.Current)
}

func (e *FeatureFlagConflictError) Is(target error) bool {
	return target == ErrFeatureFlagConflict
}
