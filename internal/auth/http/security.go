package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
)

// SecurityHandler is the signed-in user's own security page: sessions and
// second factor. Every route sits behind AuthnMiddleware.
type SecurityHandler struct {
	Store     store.Store
	Sessions  *service.SessionService
	TwoFactor *service.TwoFactorService
	Cookies   Cookies
}

// HandleListSessions godoc
//
//	@Summary		List my sessions
//	@Description	All sessions of the signed-in user, revoked ones included, most recently seen first. isCurrent marks the calling session.
//	@Tags			Security
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Envelope[[]authsdk.SessionInfo]
//	@Failure		401	{object}	httpx.ErrorBody	"UNAUTHENTICATED"
//	@Router			/user/security/sessions [get]
func (h *SecurityHandler) HandleListSessions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httpx.NoCache(w)

	sessions, err := h.Sessions.List(ctx, httpx.UserIDFromContext(ctx), httpx.SessionIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "", toSessionInfos(sessions))
}

// HandleRevokeSession godoc
//
//	@Summary		Revoke one of my sessions
//	@Description	Revoking an already revoked session succeeds. Revoking the calling session logs it out.
//	@Tags			Security
//	@Security		BearerAuth
//	@Produce		json
//	@Param			id	path		string	true	"Session ID"
//	@Success		200	{object}	httpx.Envelope
//	@Failure		404	{object}	httpx.ErrorBody	"SESSION_NOT_FOUND"
//	@Router			/user/security/sessions/{id}/revoke [post]
func (h *SecurityHandler) HandleRevokeSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	if err := h.Sessions.Revoke(ctx, httpx.UserIDFromContext(ctx), id, deviceFrom(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}

	if id == httpx.SessionIDFromContext(ctx) {
		h.Cookies.ClearSession(w)
	}
	httpx.WriteOK(w, http.StatusOK, "session revoked", nil)
}

// HandleRevokeOthers godoc
//
//	@Summary		Sign out everywhere else
//	@Description	Revokes every active session of the user except the calling one.
//	@Tags			Security
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Envelope[authsdk.RevokeResult]
//	@Router			/user/security/sessions/revoke-others [post]
func (h *SecurityHandler) HandleRevokeOthers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	n, err := h.Sessions.RevokeAllOthers(ctx, httpx.UserIDFromContext(ctx), httpx.SessionIDFromContext(ctx), deviceFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "other sessions revoked", authsdk.RevokeResult{Revoked: n})
}

// HandleTwoFactorStatus godoc
//
//	@Summary		Second factor status
//	@Tags			Security
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Envelope[authsdk.TwoFactorStatus]
//	@Router			/user/security/2fa [get]
func (h *SecurityHandler) HandleTwoFactorStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httpx.NoCache(w)

	st, err := h.TwoFactor.Status(ctx, httpx.UserIDFromContext(ctx))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "", toTwoFactorStatus(st))
}

// HandleSetup godoc
//
//	@Summary		Start TOTP setup
//	@Description	Generates a new secret. It only takes effect once confirmed with a code; starting
//	@Description	again replaces an unconfirmed secret.
//	@Tags			Security
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Envelope[authsdk.TwoFactorSetup]
//	@Failure		409	{object}	httpx.ErrorBody	"TWO_FACTOR_ALREADY_ENABLED"
//	@Router			/user/security/2fa/setup [post]
func (h *SecurityHandler) HandleSetup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	httpx.NoCache(w)

	user, err := h.Store.Users().GetUserByID(ctx, httpx.UserIDFromContext(ctx))
	if errors.Is(err, store.ErrNotFound) {
		authsdk.ErrUserNotFound.WriteError(w)
		return
	}
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	setup, err := h.TwoFactor.StartSetup(ctx, user.ID, user.Email)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "scan the code, then confirm", authsdk.TwoFactorSetup{
		Secret:     setup.Secret,
		OTPAuthURI: setup.URI,
		Issuer:     setup.Issuer,
		Account:    setup.Account,
	})
}

// HandleConfirm godoc
//
//	@Summary		Confirm TOTP setup
//	@Description	Enables the second factor and returns recovery codes. They are shown only once.
//	@Tags			Security
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CodeRequest	true	"Current TOTP code"
//	@Success		200		{object}	authsdk.Envelope[authsdk.RecoveryCodes]
//	@Failure		400		{object}	httpx.ErrorBody	"TWO_FACTOR_SETUP_NOT_STARTED"
//	@Failure		401		{object}	httpx.ErrorBody	"INVALID_TOTP_CODE"
//	@Router			/user/security/2fa/confirm [post]
func (h *SecurityHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CodeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	ctx := r.Context()
	codes, err := h.TwoFactor.ConfirmSetup(ctx, httpx.UserIDFromContext(ctx), req.Code, deviceFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	httpx.WriteOK(w, http.StatusOK, "two-factor authentication enabled", authsdk.RecoveryCodes{Codes: codes})
}

// HandleRegenerate godoc
//
//	@Summary		Regenerate recovery codes
//	@Description	Replaces every recovery code. Requires a current TOTP code.
//	@Tags			Security
//	@Security		BearerAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.CodeRequest	true	"Current TOTP code"
//	@Success		200		{object}	authsdk.Envelope[authsdk.RecoveryCodes]
//	@Failure		400		{object}	httpx.ErrorBody	"TWO_FACTOR_NOT_ENABLED"
//	@Failure		401		{object}	httpx.ErrorBody	"INVALID_TOTP_CODE"
//	@Router			/user/security/2fa/recovery-codes [post]
func (h *SecurityHandler) HandleRegenerate(w http.ResponseWriter, r *http.Request) {
	var req authsdk.CodeRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	ctx := r.Context()
	codes, err := h.TwoFactor.RegenerateRecoveryCodes(ctx, httpx.UserIDFromContext(ctx), req.Code, deviceFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.NoCache(w)
	httpx.WriteOK(w, http.StatusOK, "recovery codes regenerated", authsdk.RecoveryCodes{Codes: codes})
}

// HandleDisable godoc
//
//	@Summary		Disable the second factor
//	@Tags			Security
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope
//	@Failure		400	{object}	httpx.ErrorBody	"TWO_FACTOR_NOT_ENABLED"
//	@Router			/user/security/2fa/disable [post]
func (h *SecurityHandler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.TwoFactor.Disable(ctx, httpx.UserIDFromContext(ctx), deviceFrom(r)); err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteOK(w, http.StatusOK, "two-factor authentication disabled", nil)
}
