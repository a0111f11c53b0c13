package authsdk_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/aussiebroadwan/gatekeeper/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func writeData(w http.ResponseWriter, data any) {
	httpx.WriteOK(w, http.StatusOK, "", data)
}

func TestLogin_TwoFactorChallenge(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{
			"status":  "2FA_REQUIRED",
			"ticket":  "tkt",
			"methods": map[string]bool{"totp": true, "recovery": false},
		})
	})
	mux.HandleFunc("POST /auth/login/2fa", func(w http.ResponseWriter, r *http.Request) {
		var req authsdk.TwoFactorRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Ticket != "tkt" || req.Code != "123456" {
			authsdk.ErrInvalidTOTPCode.WriteError(w)
			return
		}
		writeData(w, authsdk.LoginResponse{Token: "session-token"})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := authsdk.NewSDKClient(srv.URL)
	ctx := context.Background()

	sess, ch, err := c.Login(ctx, "a@example.com", "pw")
	require.NoError(t, err)
	require.Nil(t, sess)
	require.NotNil(t, ch)
	require.True(t, ch.Methods.TOTP)
	require.False(t, ch.Methods.Recovery)

	_, err = c.CompleteTwoFactor(ctx, ch.Ticket, "totp", "000000")
	require.ErrorIs(t, err, authsdk.ErrInvalidTOTPCode)

	sess, err = c.CompleteTwoFactor(ctx, ch.Ticket, "totp", "123456")
	require.NoError(t, err)
	require.Equal(t, "session-token", sess.Token())
}

func TestLogin_ErrorCodes(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authsdk.ErrAccountBanned.WriteError(w)
	}))
	t.Cleanup(srv.Close)

	_, _, err := authsdk.NewSDKClient(srv.URL).Login(context.Background(), "a@example.com", "pw")
	require.ErrorIs(t, err, authsdk.ErrAccountBanned)
	require.NotErrorIs(t, err, authsdk.ErrAccountDisabled)

	var apiErr *authsdk.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
}

func TestSession_PrincipalCache(t *testing.T) {
	t.Parallel()

	var meCalls atomic.Int32
	var revoked atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/me", func(w http.ResponseWriter, r *http.Request) {
		meCalls.Add(1)
		if revoked.Load() || r.Header.Get("Authorization") != "Bearer tok" {
			authsdk.ErrUnauthenticated.WriteError(w)
			return
		}
		writeData(w, authsdk.Principal{ID: "u1", Email: "a@example.com", Permissions: []string{"profile:read"}})
	})
	mux.HandleFunc("GET /user/security/sessions", func(w http.ResponseWriter, r *http.Request) {
		if revoked.Load() {
			authsdk.ErrUnauthenticated.WriteError(w)
			return
		}
		writeData(w, []authsdk.SessionInfo{{ID: "s1", IsCurrent: true}})
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteOK(w, http.StatusOK, "logged out", nil)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	sess := authsdk.NewSDKClient(srv.URL).NewSessionFromToken("tok")

	p, err := sess.Me(ctx)
	require.NoError(t, err)
	require.True(t, p.HasPermission("profile:read"))
	_, err = sess.Me(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, meCalls.Load(), "second Me is served from cache")

	list, err := sess.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Any 401 drops the cache.
	revoked.Store(true)
	_, err = sess.Sessions(ctx)
	require.ErrorIs(t, err, authsdk.ErrUnauthenticated)
	_, err = sess.Me(ctx)
	require.ErrorIs(t, err, authsdk.ErrUnauthenticated)
	require.EqualValues(t, 2, meCalls.Load())

	revoked.Store(false)
	_, err = sess.Me(ctx)
	require.NoError(t, err)
	require.NoError(t, sess.Logout(ctx))
	require.Empty(t, sess.Token())

	_, err = sess.Me(ctx)
	require.ErrorIs(t, err, authsdk.ErrUnauthenticated)
}

func TestSession_SetFeatureFlagRollback(t *testing.T) {
	t.Parallel()

	var server atomic.Bool // the flag value the server holds
	var failNext atomic.Bool

	mux := http.NewServeMux()
	mux.HandleFunc("GET /admin/users/u2/sessions", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, authsdk.AdminSessionsView{
			User: authsdk.AdminUser{ID: "u2", FeatureFlags: map[string]bool{"beta": server.Load()}},
		})
	})
	mux.HandleFunc("PATCH /admin/users/u2/flags/beta", func(w http.ResponseWriter, r *http.Request) {
		var req authsdk.FeatureFlagRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		if failNext.Swap(false) {
			authsdk.ErrInternal.WriteError(w)
			return
		}
		if *req.Expected != server.Load() {
			cur := server.Load()
			e := *authsdk.ErrFeatureFlagConflict
			e.Current = &cur
			e.WriteError(w)
			return
		}
		server.Store(*req.Value)
		writeData(w, authsdk.FeatureFlagResponse{Flag: "beta", Value: *req.Value})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	sess := authsdk.NewSDKClient(srv.URL).NewSessionFromToken("tok")

	_, err := sess.AdminUserSessions(ctx, "u2")
	require.NoError(t, err)
	require.False(t, sess.Flag("u2", "beta"))

	require.NoError(t, sess.SetFeatureFlag(ctx, "u2", "beta", true))
	require.True(t, sess.Flag("u2", "beta"))
	require.True(t, server.Load())

	t.Run("server failure restores the previous value", func(t *testing.T) {
		failNext.Store(true)
		err := sess.SetFeatureFlag(ctx, "u2", "beta", false)
		require.ErrorIs(t, err, authsdk.ErrInternal)
		require.True(t, sess.Flag("u2", "beta"))
	})

	t.Run("conflict adopts the server value", func(t *testing.T) {
		server.Store(false) // someone else turned it off
		err := sess.SetFeatureFlag(ctx, "u2", "beta", false)
		require.ErrorIs(t, err, authsdk.ErrFeatureFlagConflict)
		require.False(t, sess.Flag("u2", "beta"))
	})
}
