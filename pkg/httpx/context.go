package httpx

import (
	"context"
	"slices"
	"time"
)

type ctxKey string

const (
	CtxKeyUserID      ctxKey = "user_id"
	CtxKeySessionID   ctxKey = "session_id"
	CtxKeyPermissions ctxKey = "permissions"
	CtxKeyExpiresAt   ctxKey = "expires_at"
)

// Identity is what the authentication middleware learns about the caller.
type Identity struct {
	UserID      string
	SessionID   string
	Permissions []string
	ExpiresAt   time.Time
}

// WithIdentity injects the caller into ctx for downstream handlers.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	ctx = context.WithValue(ctx, CtxKeyUserID, id.UserID)
	ctx = context.WithValue(ctx, CtxKeySessionID, id.SessionID)
	ctx = context.WithValue(ctx, CtxKeyPermissions, id.Permissions)
	ctx = context.WithValue(ctx, CtxKeyExpiresAt, id.ExpiresAt)
	return ctx
}

// UserIDFromContext returns the authenticated user id or "".
func UserIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeyUserID).(string)
	return v
}

// SessionIDFromContext returns the id of the session the request rides on.
func SessionIDFromContext(ctx context.Context) string {
	v, _ := ctx.Value(CtxKeySessionID).(string)
	return v
}

// ExpiresAtFromContext returns when the caller's session expires. The bool is
// false for anonymous requests.
func ExpiresAtFromContext(ctx context.Context) (time.Time, bool) {
	v, ok := ctx.Value(CtxKeyExpiresAt).(time.Time)
	return v, ok && !v.IsZero()
}

// PermissionsFromContext returns the caller's resolved permission set.
func PermissionsFromContext(ctx context.Context) []string {
	v, _ := ctx.Value(CtxKeyPermissions).([]string)
	return v
}

// HasPermission reports whether the caller holds perm.
func HasPermission(ctx context.Context, perm string) bool {
	return slices.Contains(PermissionsFromContext(ctx), perm)
}
