package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// serviceErrors maps service sentinels onto the wire. Order matters only
// where one error wraps another.
var serviceErrors = []struct {
	err error
	api *authsdk.APIError
}{
	{service.ErrInvalidCredentials, authsdk.ErrInvalidCredentials},
	{service.ErrAccountNotVerified, authsdk.ErrAccountNotVerified},
	{service.ErrAccountDisabled, authsdk.ErrAccountDisabled},
	{service.ErrAccountSuspended, authsdk.ErrAccountSuspended},
	{service.ErrAccountBanned, authsdk.ErrAccountBanned},
	{service.ErrInvalidTicket, authsdk.ErrInvalidTwoFactorTicket},
	{service.ErrInvalidTOTPCode, authsdk.ErrInvalidTOTPCode},
	{service.ErrInvalidRecoveryCode, authsdk.ErrInvalidRecoveryCode},
	{service.ErrInvalidMode, authsdk.ErrInvalidMode},
	{service.ErrRateLimited, authsdk.ErrRateLimitExceeded},
	{service.ErrUnauthenticated, authsdk.ErrUnauthenticated},

	{service.ErrEmailExists, authsdk.ErrEmailAlreadyExists},
	{service.ErrTermsNotAccepted, authsdk.ErrTermsNotAccepted},
	{service.ErrInvalidEmail, authsdk.ErrValidation.WithMessage("email address is invalid")},
	{service.ErrWeakPassword, authsdk.ErrValidation.WithMessage("password must be 8 to 128 characters")},
	{service.ErrActivationInvalid, authsdk.ErrActivationTokenInvalid},
	{service.ErrResetTokenInvalid, authsdk.ErrResetTokenInvalid},
	{service.ErrIncorrectPassword, authsdk.ErrIncorrectPassword},
	{service.ErrPasswordNotSet, authsdk.ErrPasswordNotSet},
	{service.ErrTwoFactorEnabled, authsdk.ErrTwoFactorAlreadyEnabled},
	{service.ErrTwoFactorNotEnabled, authsdk.ErrTwoFactorNotEnabled},
	{service.ErrTwoFactorNotPending, authsdk.ErrTwoFactorNotPending},
	{service.ErrSessionNotFound, authsdk.ErrSessionNotFound},
	{service.ErrUserNotFound, authsdk.ErrUserNotFound},

	{service.ErrForbidden, authsdk.ErrForbidden},
	{service.ErrSelfRevokeConfirmationRequired, authsdk.ErrSelfRevokeConfirmation},
	{service.ErrInvalidRole, authsdk.ErrValidation.WithMessage("unknown role")},
	{service.ErrInvalidStatus, authsdk.ErrValidation.WithMessage("unknown status")},
	{service.ErrInvalidPermission, authsdk.ErrValidation.WithMessage("unknown permission")},
	{service.ErrInvalidFlag, authsdk.ErrValidation.WithMessage("flag names are 1 to 64 of a-z, 0-9 and _")},

	{service.ErrOAuthTicketInvalid, authsdk.ErrOAuthTicketInvalid},
	{service.ErrOAuthEmailConflict, authsdk.ErrOAuthEmailConflict},
	{service.ErrUnknownProvider, authsdk.ErrUnknownProvider},
	{service.ErrOAuthExchange, authsdk.ErrOAuthExchangeFailed},

	{service.ErrBootstrapDisabled, authsdk.ErrBootstrapDisabled},
	{service.ErrBootstrapUnauthorized, authsdk.ErrBootstrapUnauthorized},
	{service.ErrBootstrapAlready, authsdk.ErrAlreadyBootstrapped},
}

// writeServiceError writes the wire form of err. Anything unmapped is a
// server fault and is logged as such; mapped errors are user outcomes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	log := slogx.FromContext(r.Context())

	var conflict *service.FeatureFlagConflictError
	if errors.As(err, &conflict) {
		apiErr := *authsdk.ErrFeatureFlagConflict
		current := conflict.Current
		apiErr.Current = &current
		log.Info("feature flag conflict", "flag", conflict.Flag)
		apiErr.WriteError(w)
		return
	}

	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			log.Debug("request refused", "code", m.api.Code, "err", err)
			m.api.WriteError(w)
			return
		}
	}

	log.Error("unhandled service error", "err", err)
	authsdk.ErrInternal.WriteError(w)
}
