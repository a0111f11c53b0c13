package authsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
)

// Error codes carried in the "code" field of every error body.
const (
	CodeInvalidCredentials      = "INVALID_CREDENTIALS"
	CodeAccountNotVerified      = "ACCOUNT_NOT_VERIFIED"
	CodeAccountDisabled         = "ACCOUNT_DISABLED"
	CodeAccountSuspended        = "ACCOUNT_SUSPENDED"
	CodeAccountBanned           = "ACCOUNT_BANNED"
	CodeInvalidTwoFactorTicket  = "INVALID_2FA_TICKET"
	CodeInvalidTOTPCode         = "INVALID_TOTP_CODE"
	CodeInvalidRecoveryCode     = "INVALID_RECOVERY_CODE"
	CodeInvalidMode             = "INVALID_MODE"
	CodeRateLimitExceeded       = "RATE_LIMIT_EXCEEDED"
	CodeUnauthenticated         = "UNAUTHENTICATED"
	CodeEmailAlreadyExists      = "EMAIL_ALREADY_EXISTS"
	CodeTermsNotAccepted        = "TERMS_NOT_ACCEPTED"
	CodeActivationTokenInvalid  = "ACTIVATION_TOKEN_INVALID_OR_EXPIRED"
	CodeResetTokenInvalid       = "RESET_TOKEN_INVALID_OR_EXPIRED"
	CodeIncorrectPassword       = "INCORRECT_PASSWORD"
	CodePasswordNotSet          = "PASSWORD_NOT_SET"
	CodeTwoFactorAlreadyEnabled = "TWO_FACTOR_ALREADY_ENABLED"
	CodeTwoFactorNotEnabled     = "TWO_FACTOR_NOT_ENABLED"
	CodeTwoFactorNotPending     = "TWO_FACTOR_SETUP_NOT_STARTED"
	CodeOAuthTicketInvalid      = "OAUTH_TICKET_INVALID"
	CodeOAuthEmailConflict      = "OAUTH_EMAIL_CONFLICT"
	CodeOAuthStateInvalid       = "OAUTH_STATE_INVALID"
	CodeOAuthExchangeFailed     = "OAUTH_EXCHANGE_FAILED"
	CodeUnknownProvider         = "UNKNOWN_PROVIDER"
	CodeSessionNotFound         = "SESSION_NOT_FOUND"
	CodeUserNotFound            = "USER_NOT_FOUND"
	CodeSelfRevokeConfirmation  = "SELF_REVOKE_CONFIRMATION_REQUIRED"
	CodeForbidden               = "FORBIDDEN"
	CodeFeatureFlagConflict     = "FEATURE_FLAG_CONFLICT"
	CodeValidation              = "VALIDATION_ERROR"
	CodeInternal                = "INTERNAL_ERROR"
	CodeBootstrapDisabled       = "BOOTSTRAP_DISABLED"
	CodeBootstrapUnauthorized   = "BOOTSTRAP_UNAUTHORIZED"
	CodeAlreadyBootstrapped     = "ALREADY_BOOTSTRAPPED"
)

// APIError is the error shape of the service. The server writes it and the
// client returns it, so callers can switch on Code either side.
type APIError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`

	// Current is set on FEATURE_FLAG_CONFLICT and holds the value the flag
	// actually has on the server.
	Current *bool `json:"current,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is matches another *APIError by code, so errors.Is(err, authsdk.ErrForbidden)
// works on errors decoded from a response.
func (e *APIError) Is(target error) bool {
	var t *APIError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WriteError writes the error as a {"status":"ERROR",...} body.
func (e *APIError) WriteError(w http.ResponseWriter) {
	httpx.WriteJSON(w, e.StatusCode, errorBody{
		Status:  httpx.StatusError,
		Code:    e.Code,
		Message: e.Message,
		Current: e.Current,
	})
}

// WithMessage returns a copy carrying a more specific message.
func (e *APIError) WithMessage(msg string) *APIError {
	c := *e
	c.Message = msg
	return &c
}

type errorBody struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Current *bool  `json:"current,omitempty"`
}

func newErr(status int, code, msg string) *APIError {
	return &APIError{StatusCode: status, Code: code, Message: msg}
}

var (
	ErrInvalidCredentials      = newErr(http.StatusUnauthorized, CodeInvalidCredentials, "invalid email or password")
	ErrAccountNotVerified      = newErr(http.StatusForbidden, CodeAccountNotVerified, "account has not been activated")
	ErrAccountDisabled         = newErr(http.StatusForbidden, CodeAccountDisabled, "account is disabled")
	ErrAccountSuspended        = newErr(http.StatusForbidden, CodeAccountSuspended, "account is suspended")
	ErrAccountBanned           = newErr(http.StatusForbidden, CodeAccountBanned, "account is banned")
	ErrInvalidTwoFactorTicket  = newErr(http.StatusUnauthorized, CodeInvalidTwoFactorTicket, "two-factor ticket is invalid or expired")
	ErrInvalidTOTPCode         = newErr(http.StatusUnauthorized, CodeInvalidTOTPCode, "invalid authentication code")
	ErrInvalidRecoveryCode     = newErr(http.StatusUnauthorized, CodeInvalidRecoveryCode, "invalid recovery code")
	ErrInvalidMode             = newErr(http.StatusBadRequest, CodeInvalidMode, "mode must be totp or recovery")
	ErrRateLimitExceeded       = newErr(http.StatusTooManyRequests, CodeRateLimitExceeded, "too many attempts, please try again later")
	ErrUnauthenticated         = newErr(http.StatusUnauthorized, CodeUnauthenticated, "authentication required")
	ErrEmailAlreadyExists      = newErr(http.StatusConflict, CodeEmailAlreadyExists, "an account with this email already exists")
	ErrTermsNotAccepted        = newErr(http.StatusBadRequest, CodeTermsNotAccepted, "terms must be accepted")
	ErrActivationTokenInvalid  = newErr(http.StatusBadRequest, CodeActivationTokenInvalid, "activation link is invalid or has expired")
	ErrResetTokenInvalid       = newErr(http.StatusBadRequest, CodeResetTokenInvalid, "reset link is invalid or has expired")
	ErrIncorrectPassword       = newErr(http.StatusBadRequest, CodeIncorrectPassword, "current password is incorrect")
	ErrPasswordNotSet          = newErr(http.StatusBadRequest, CodePasswordNotSet, "account has no password")
	ErrTwoFactorAlreadyEnabled = newErr(http.StatusConflict, CodeTwoFactorAlreadyEnabled, "two-factor authentication is already enabled")
	ErrTwoFactorNotEnabled     = newErr(http.StatusBadRequest, CodeTwoFactorNotEnabled, "two-factor authentication is not enabled")
	ErrTwoFactorNotPending     = newErr(http.StatusBadRequest, CodeTwoFactorNotPending, "two-factor setup has not been started")
	ErrOAuthTicketInvalid      = newErr(http.StatusBadRequest, CodeOAuthTicketInvalid, "sign-in ticket is invalid or expired")
	ErrOAuthEmailConflict      = newErr(http.StatusConflict, CodeOAuthEmailConflict, "email belongs to another account")
	ErrOAuthStateInvalid       = newErr(http.StatusBadRequest, CodeOAuthStateInvalid, "sign-in state mismatch")
	ErrOAuthExchangeFailed     = newErr(http.StatusBadGateway, CodeOAuthExchangeFailed, "provider sign-in failed")
	ErrUnknownProvider         = newErr(http.StatusNotFound, CodeUnknownProvider, "unknown sign-in provider")
	ErrSessionNotFound         = newErr(http.StatusNotFound, CodeSessionNotFound, "session not found")
	ErrUserNotFound            = newErr(http.StatusNotFound, CodeUserNotFound, "user not found")
	ErrSelfRevokeConfirmation  = newErr(http.StatusForbidden, CodeSelfRevokeConfirmation, "revoking your own session requires confirmation")
	ErrForbidden               = newErr(http.StatusForbidden, CodeForbidden, "insufficient permissions")
	ErrFeatureFlagConflict     = newErr(http.StatusConflict, CodeFeatureFlagConflict, "feature flag was changed by someone else")
	ErrValidation              = newErr(http.StatusBadRequest, CodeValidation, "request is invalid")
	ErrInternal                = newErr(http.StatusInternalServerError, CodeInternal, "internal server error")
	ErrBootstrapDisabled       = newErr(http.StatusNotFound, CodeBootstrapDisabled, "bootstrap endpoint is not enabled")
	ErrBootstrapUnauthorized   = newErr(http.StatusUnauthorized, CodeBootstrapUnauthorized, "bootstrap token is missing or invalid")
	ErrAlreadyBootstrapped     = newErr(http.StatusConflict, CodeAlreadyBootstrapped, "system is already bootstrapped")
)

// parseErrorResponse turns a non-2xx response into an *APIError. Bodies that
// are not ours still produce an error carrying the status code.
func parseErrorResponse(resp *http.Response, body []byte) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Code != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       eb.Code,
			Message:    eb.Message,
			Current:    eb.Current,
		}
	}

	code := CodeInternal
	if resp.StatusCode == http.StatusUnauthorized {
		code = CodeUnauthenticated
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       code,
		Message:    fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
