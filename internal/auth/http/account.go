package http

import (
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
)

// AccountHandler serves registration, activation and the password flows.
type AccountHandler struct {
	Accounts *service.AccountService
}

// HandleRegister godoc
//
//	@Summary		Register an account
//	@Description	Creates a pending_verification account and mails an activation link. Terms must be accepted.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.RegisterRequest					true	"New account"
//	@Success		201		{object}	authsdk.Envelope[authsdk.UserResponse]	"Account created"
//	@Failure		400		{object}	httpx.ErrorBody							"TERMS_NOT_ACCEPTED, VALIDATION_ERROR"
//	@Failure		409		{object}	httpx.ErrorBody							"EMAIL_ALREADY_EXISTS"
//	@Failure		429		{object}	httpx.ErrorBody							"RATE_LIMIT_EXCEEDED"
//	@Router			/auth/register [post]
func (h *AccountHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req authsdk.RegisterRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.Accounts.Register(r.Context(), service.RegisterInput{
		Email:         req.Email,
		Password:      req.Password,
		TermsAccepted: req.TermsAccepted,
		TermsVersion:  req.TermsVersion,
	}, deviceFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteOK(w, http.StatusCreated, "check your email to activate the account", toUserResponse(user))
}

// HandleActivate godoc
//
//	@Summary		Activate an account
//	@Description	Consumes an activation token. Tokens are single use and expire.
//	@Tags			Account
//	@Produce		json
//	@Param			token	query		string									true	"Activation token"
//	@Success		200		{object}	authsdk.Envelope[authsdk.UserResponse]	"Account activated"
//	@Failure		400		{object}	httpx.ErrorBody							"ACTIVATION_TOKEN_INVALID_OR_EXPIRED"
//	@Router			/auth/activate [get]
func (h *AccountHandler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	httpx.NoCache(w)

	token := r.URL.Query().Get("token")
	if token == "" {
		authsdk.ErrActivationTokenInvalid.WriteError(w)
		return
	}

	user, err := h.Accounts.Activate(r.Context(), token, deviceFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteOK(w, http.StatusOK, "account activated", toUserResponse(user))
}

// HandleResendActivation godoc
//
//	@Summary		Resend the activation email
//	@Description	Always succeeds so the response does not reveal whether the email is registered.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.EmailRequest	true	"Email"
//	@Success		200		{object}	httpx.Envelope
//	@Router			/auth/activate/resend [post]
func (h *AccountHandler) HandleResendActivation(w http.ResponseWriter, r *http.Request) {
	var req authsdk.EmailRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Accounts.ResendActivation(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "if the account is awaiting activation, a new link has been sent", nil)
}

// HandleForgotPassword godoc
//
//	@Summary		Request a password reset
//	@Description	Always succeeds so the response does not reveal whether the email is registered.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.EmailRequest	true	"Email"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		429		{object}	httpx.ErrorBody	"RATE_LIMIT_EXCEEDED"
//	@Router			/auth/forgot-password [post]
func (h *AccountHandler) HandleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.EmailRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Accounts.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "if the account exists, a reset link has been sent", nil)
}

// HandleValidateReset godoc
//
//	@Summary		Check a reset token
//	@Description	Reports whether a reset token is still redeemable without consuming it.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TokenRequest	true	"Reset token"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		400		{object}	httpx.ErrorBody	"RESET_TOKEN_INVALID_OR_EXPIRED"
//	@Router			/auth/password/reset/validate [post]
func (h *AccountHandler) HandleValidateReset(w http.ResponseWriter, r *http.Request) {
	var req authsdk.TokenRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Accounts.ValidateReset(r.Context(), req.Token); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "token is valid", nil)
}

// HandleResetPassword godoc
//
//	@Summary		Reset a password
//	@Description	Consumes a reset token, sets the new password and revokes every session of the account.
//	@Tags			Account
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ResetPasswordRequest	true	"Token and new password"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		400		{object}	httpx.ErrorBody	"RESET_TOKEN_INVALID_OR_EXPIRED, VALIDATION_ERROR"
//	@Failure		429		{object}	httpx.ErrorBody	"RATE_LIMIT_EXCEEDED"
//	@Router			/auth/reset-password [post]
func (h *AccountHandler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ResetPasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	if err := h.Accounts.ResetPassword(r.Context(), req.Token, req.Password, deviceFrom(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "password updated", nil)
}

// HandleChangePassword godoc
//
//	@Summary		Change password
//	@Description	Changes the password of the signed-in user. Every other session is revoked.
//	@Tags			Account
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.ChangePasswordRequest	true	"Current and new password"
//	@Success		200		{object}	httpx.Envelope
//	@Failure		400		{object}	httpx.ErrorBody	"INCORRECT_PASSWORD, PASSWORD_NOT_SET, VALIDATION_ERROR"
//	@Failure		401		{object}	httpx.ErrorBody	"UNAUTHENTICATED"
//	@Router			/auth/password/change [post]
func (h *AccountHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req authsdk.ChangePasswordRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	ctx := r.Context()
	err := h.Accounts.ChangePassword(ctx,
		httpx.UserIDFromContext(ctx), httpx.SessionIDFromContext(ctx),
		req.CurrentPassword, req.NewPassword, deviceFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "password changed", nil)
}
