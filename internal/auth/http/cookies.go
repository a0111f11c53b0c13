package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/service"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
)

const (
	SessionCookieName    = "gk_session"
	OAuthStateCookieName = "gk_oauth_state"

	oauthStateTTL = 10 * time.Minute
)

// Cookies writes the session and OAuth state cookies. Secure is off only
// for plain-http development.
type Cookies struct {
	Secure bool
}

func (c Cookies) SetSession(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) ClearSession(w http.ResponseWriter) {
	c.clear(w, SessionCookieName, "/")
}

// SetOAuthState scopes the state cookie to the provider's callback path.
func (c Cookies) SetOAuthState(w http.ResponseWriter, provider, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     OAuthStateCookieName,
		Value:    state,
		Path:     oauthPath(provider),
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c Cookies) ClearOAuthState(w http.ResponseWriter, provider string) {
	c.clear(w, OAuthStateCookieName, oauthPath(provider))
}

func (c Cookies) clear(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func oauthPath(provider string) string {
	return "/auth/oauth/" + provider
}

// SessionAuthenticator resolves session tokens for httpx.AuthnMiddleware.
// Each successful lookup bumps the session's last-seen time.
func SessionAuthenticator(sessions *service.SessionService) httpx.Authenticator {
	return func(ctx context.Context, token string) (httpx.Identity, error) {
		sess, user, err := sessions.Resolve(ctx, token)
		if err != nil {
			return httpx.Identity{}, err
		}
		sessions.Touch(ctx, sess.ID)

		return httpx.Identity{
			UserID:      user.ID,
			SessionID:   sess.ID,
			Permissions: []string(domain.ResolvePermissions(user)),
			ExpiresAt:   sess.ExpiresAt,
		}, nil
	}
}
