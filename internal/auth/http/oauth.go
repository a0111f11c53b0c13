package http

import (
	"net/http"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// OAuthHandler drives the provider redirect and callback. Results are
// rendered by the same writer the password login uses.
type OAuthHandler struct {
	OAuth   *service.OAuthService
	Results *LoginHandler
	Cookies Cookies
}

// HandleStart godoc
//
//	@Summary		Start a provider login
//	@Description	Redirects to the provider's consent page with a fresh state value, which is
//	@Description	also stored in a short-lived cookie scoped to the callback.
//	@Tags			OAuth
//	@Param			provider	path	string	true	"Provider name"
//	@Success		302
//	@Failure		404	{object}	httpx.ErrorBody	"UNKNOWN_PROVIDER"
//	@Router			/auth/oauth/{provider}/start [get]
func (h *OAuthHandler) HandleStart(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("provider")

	provider, err := h.OAuth.Provider(name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	state, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		slogx.FromContext(r.Context()).Error("failed to generate oauth state", "err", err)
		authsdk.ErrInternal.WriteError(w)
		return
	}

	h.Cookies.SetOAuthState(w, name, state)
	httpx.NoCache(w)
	http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
}

// HandleCallback godoc
//
//	@Summary		Provider callback
//	@Description	Checks the state, exchanges the code and resolves the provider identity. The
//	@Description	result is a session, a 2FA_REQUIRED challenge, or an AWAITING_EMAIL ticket when
//	@Description	the provider did not supply a verified email.
//	@Tags			OAuth
//	@Produce		json
//	@Param			provider	path		string	true	"Provider name"
//	@Param			code		query		string	true	"Authorization code"
//	@Param			state		query		string	true	"State echoed by the provider"
//	@Success		200			{object}	authsdk.Envelope[authsdk.LoginResponse]	"Logged in"
//	@Success		200			{object}	authsdk.OAuthEmailRequired				"Email required"
//	@Failure		400			{object}	httpx.ErrorBody							"OAUTH_STATE_INVALID"
//	@Failure		409			{object}	httpx.ErrorBody							"OAUTH_EMAIL_CONFLICT"
//	@Failure		502			{object}	httpx.ErrorBody							"OAUTH_EXCHANGE_FAILED"
//	@Router			/auth/oauth/{provider}/callback [get]
func (h *OAuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.PathValue("provider")

	provider, err := h.OAuth.Provider(name)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	q := r.URL.Query()
	cookie, cookieErr := r.Cookie(OAuthStateCookieName)
	h.Cookies.ClearOAuthState(w, name)

	if cookieErr != nil || q.Get("state") == "" || !cryptox.EqualStrings(cookie.Value, q.Get("state")) {
		slogx.FromContext(ctx).Info("oauth state mismatch", "provider", name)
		authsdk.ErrOAuthStateInvalid.WriteError(w)
		return
	}
	if e := q.Get("error"); e != "" {
		slogx.FromContext(ctx).Info("provider returned an error", "provider", name, "error", e)
		authsdk.ErrOAuthExchangeFailed.WithMessage("provider declined: " + e).WriteError(w)
		return
	}

	claims, err := provider.Exchange(ctx, q.Get("code"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	res, err := h.OAuth.HandleCallback(ctx, claims, deviceFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.Results.writeResult(w, r, res)
}

// HandleComplete godoc
//
//	@Summary		Finish a provider login with an email
//	@Description	Redeems an AWAITING_EMAIL ticket with a user supplied email. An email owned by another
//	@Description	account is a conflict and never merges the two.
//	@Tags			OAuth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		authsdk.OAuthCompleteRequest				true	"Ticket and email"
//	@Success		200		{object}	authsdk.Envelope[authsdk.LoginResponse]	"Logged in"
//	@Failure		400		{object}	httpx.ErrorBody							"OAUTH_TICKET_INVALID, VALIDATION_ERROR"
//	@Failure		409		{object}	httpx.ErrorBody							"OAUTH_EMAIL_CONFLICT"
//	@Router			/auth/oauth/complete [post]
func (h *OAuthHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	var req authsdk.OAuthCompleteRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	res, err := h.OAuth.CompleteWithEmail(r.Context(), req.Ticket, req.Email, deviceFrom(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	h.Results.writeResult(w, r, res)
}
