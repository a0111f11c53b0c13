package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

// ErrNoCredentials is returned by Authenticators when the request carried no
// session token at all.
var ErrNoCredentials = errors.New("httpx: no credentials")

// Authenticator resolves an opaque session token into the caller's identity.
type Authenticator func(ctx context.Context, token string) (Identity, error)

// ExtractSessionToken reads the session token from the bearer header or,
// failing that, the named cookie. Both are accepted interchangeably.
func ExtractSessionToken(r *http.Request, cookieName string) string {
	if authz := r.Header.Get("Authorization"); authz != "" {
		if len(authz) > 7 && strings.EqualFold(authz[:7], "Bearer ") {
			return strings.TrimSpace(authz[7:])
		}
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}

// AuthnMiddleware rejects requests without a live session with 401
// UNAUTHENTICATED and injects the identity for everything else.
func AuthnMiddleware(cookieName string, authn Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := ExtractSessionToken(r, cookieName)
			if token == "" {
				WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
				return
			}

			id, err := authn(ctx, token)
			if err != nil {
				slogx.FromContext(ctx).Debug("session lookup rejected", "err", err)
				WriteError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "authentication required")
				return
			}

			ctx = WithIdentity(ctx, id)
			ctx = slogx.WithUserID(ctx, id.UserID, id.SessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuthn is AuthnMiddleware without the 401: anonymous requests pass
// through with no identity in the context.
func OptionalAuthn(cookieName string, authn Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if token := ExtractSessionToken(r, cookieName); token != "" {
				if id, err := authn(ctx, token); err == nil {
					ctx = WithIdentity(ctx, id)
					ctx = slogx.WithUserID(ctx, id.UserID, id.SessionID)
				}
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
