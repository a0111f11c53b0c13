package http

import (
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// LoginHandler serves the password and second-factor steps and the
// session probes.
type LoginHandler struct {
	Login    *service.LoginService
	Sessions *service.SessionService
	Cookies  Cookies
}

// HandleLogin godoc
//
//	@Summary		Password login
//	@Description	Verifies email and password. Accounts without a second factor get a session
//	@Description	immediately; accounts with one get a flattened 2FA_REQUIRED body carrying a ticket.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.LoginRequest						true	"Credentials"
//	@Success		200		{object}	authsdk.Envelope[authsdk.LoginResponse]	"Logged in"
//	@Success		200		{object}	authsdk.TwoFactorChallenge				"Second factor required"
//	@Failure		401		{object}	httpx.ErrorBody							"INVALID_CREDENTIALS"
//	@Failure		403		{object}	httpx.ErrorBody							"ACCOUNT_NOT_VERIFIED, ACCOUNT_DISABLED, ACCOUNT_SUSPENDED, ACCOUNT_BANNED"
//	@Failure		429		{object}	httpx.ErrorBody							"RATE_LIMIT_EXCEEDED"
//	@Router			/auth/login [post]
func (h *LoginHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	res, err := h.Login.Login(r.Context(), req.Email, req.Password, deviceFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeResult(w, r, res)
}

// HandleTwoFactor godoc
//
//	@Summary		Complete a login with a second factor
//	@Description	Redeems a 2FA ticket with a TOTP code (mode "totp") or a recovery code (mode "recovery").
//	@Description	Wrong codes count against the ticket; once the limit is reached the ticket is locked.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.TwoFactorRequest					true	"Ticket and code"
//	@Success		200		{object}	authsdk.Envelope[authsdk.LoginResponse]	"Logged in"
//	@Failure		400		{object}	httpx.ErrorBody							"INVALID_MODE, VALIDATION_ERROR"
//	@Failure		401		{object}	httpx.ErrorBody							"INVALID_2FA_TICKET, INVALID_TOTP_CODE, INVALID_RECOVERY_CODE"
//	@Failure		429		{object}	httpx.ErrorBody							"RATE_LIMIT_EXCEEDED"
//	@Router			/auth/login/2fa [post]
//	@Router			/auth/2fa/verify [post]
func (h *LoginHandler) HandleTwoFactor(w http.ResponseWriter, r *http.Request) {
	var req authsdk.TwoFactorRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	auth, err := h.Login.CompleteTwoFactor(r.Context(), req.Ticket, req.Mode, req.Code, deviceFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.writeResult(w, r, auth)
}

// HandleLogout godoc
//
//	@Summary		Log out
//	@Description	Revokes the session the request is authenticated with and clears the cookie.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	httpx.Envelope	"Logged out"
//	@Failure		401	{object}	httpx.ErrorBody	"UNAUTHENTICATED"
//	@Router			/auth/logout [post]
func (h *LoginHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	err := h.Login.Logout(ctx, httpx.UserIDFromContext(ctx), httpx.SessionIDFromContext(ctx), deviceFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookies.ClearSession(w)
	httpx.NoCache(w)
	httpx.WriteOK(w, http.StatusOK, "logged out", nil)
}

// HandleSession godoc
//
//	@Summary		Session liveness
//	@Description	Reports whether the request carries a live session. Never fails; an anonymous
//	@Description	caller simply gets authenticated=false.
//	@Tags			Auth
//	@Produce		json
//	@Success		200	{object}	authsdk.Envelope[authsdk.SessionStatus]
//	@Router			/auth/session [get]
func (h *LoginHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	httpx.NoCache(w)

	expiresAt, ok := httpx.ExpiresAtFromContext(r.Context())
	if !ok {
		httpx.WriteOK(w, http.StatusOK, "", authsdk.SessionStatus{Authenticated: false})
		return
	}
	httpx.WriteOK(w, http.StatusOK, "", authsdk.SessionStatus{Authenticated: true, ExpiresAt: &expiresAt})
}

// HandleMe godoc
//
//	@Summary		Current user
//	@Description	Returns the signed-in user with resolved permissions and feature flags.
//	@Tags			Auth
//	@Security		BearerAuth
//	@Produce		json
//	@Success		200	{object}	authsdk.Envelope[authsdk.Principal]
//	@Failure		401	{object}	httpx.ErrorBody	"UNAUTHENTICATED"
//	@Router			/auth/me [get]
func (h *LoginHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	httpx.NoCache(w)

	token := httpx.ExtractSessionToken(r, SessionCookieName)
	sess, user, err := h.Sessions.Resolve(r.Context(), token)
	if err != nil {
		authsdk.ErrUnauthenticated.WriteError(w)
		return
	}
	h.Sessions.Touch(r.Context(), sess.ID)

	httpx.WriteOK(w, http.StatusOK, "", toPrincipal(user))
}

// writeResult renders any login outcome. Sessions also get the cookie so
// browser and API clients can share the endpoint.
func (h *LoginHandler) writeResult(w http.ResponseWriter, r *http.Request, res domain.LoginResult) {
	httpx.NoCache(w)

	switch v := res.(type) {
	case domain.Authenticated:
		h.Cookies.SetSession(w, v.Token, v.Session.ExpiresAt)
		httpx.WriteOK(w, http.StatusOK, "logged in", toLoginResponse(v))
	case domain.AwaitingSecondFactor:
		httpx.WriteJSON(w, http.StatusOK, toChallenge(v))
	case domain.AwaitingEmail:
		httpx.WriteJSON(w, http.StatusOK, toEmailRequired(v))
	default:
		slogx.FromContext(r.Context()).Error("unknown login result", "type", v)
		authsdk.ErrInternal.WriteError(w)
	}
}
