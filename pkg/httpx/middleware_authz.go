package httpx

import (
	"net/http"
)

// RequireAnyPermission the caller must hold at least one of the permissions.
func RequireAnyPermission(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range required {
				if HasPermission(r.Context(), p) {
					next.ServeHTTP(w, r)
					return
				}
			}
			WriteError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
		})
	}
}

// RequireAllPermissions the caller must hold every permission listed.
func RequireAllPermissions(required ...string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, p := range required {
				if !HasPermission(r.Context(), p) {
					WriteError(w, http.StatusForbidden, "FORBIDDEN", "insufficient permissions")
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
