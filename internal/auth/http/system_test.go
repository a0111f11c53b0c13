package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	authhttp "github.com/aussiebroadwan/gatekeeper/internal/auth/http"
	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestHealth(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	live, err := h.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)
	require.Nil(t, live.Checks)

	ready, err := h.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Status)
	require.NotNil(t, ready.Checks)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Signer)
	require.Empty(t, ready.Checks.Counter)
}

func TestReadyz_CounterDown(t *testing.T) {
	h := newHarness(t, func(r *authhttp.Router) {
		r.CounterPing = func(context.Context) error { return errors.New("connection refused") }
	})

	resp, err := http.Get(h.server.URL + "/readyz")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var health authsdk.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "error: connection refused", health.Checks.Counter)
}

func TestBootstrapEndpoint(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	req := authsdk.BootstrapRequest{Email: "founder@example.com", Password: testPassword}

	_, err := h.client.Bootstrap(ctx, "", req)
	require.ErrorIs(t, err, authsdk.ErrBootstrapUnauthorized)

	_, err = h.client.Bootstrap(ctx, "wrong", req)
	require.ErrorIs(t, err, authsdk.ErrBootstrapUnauthorized)

	_, err = h.client.Bootstrap(ctx, bootstrapToken, authsdk.BootstrapRequest{Email: "founder@example.com", Password: "short"})
	require.ErrorIs(t, err, authsdk.ErrValidation)

	u, err := h.client.Bootstrap(ctx, bootstrapToken, req)
	require.NoError(t, err)
	require.Equal(t, "active", u.Status)

	_, err = h.client.Bootstrap(ctx, bootstrapToken, req)
	require.ErrorIs(t, err, authsdk.ErrAlreadyBootstrapped)

	// The endpoint sits under /auth with the rest of the account routes.
	raw, err := http.NewRequest(http.MethodPost, h.server.URL+"/auth/bootstrap",
		strings.NewReader(`{"email":"again@example.com","password":"`+testPassword+`"}`))
	require.NoError(t, err)
	raw.Header.Set("Content-Type", "application/json")
	raw.Header.Set(authsdk.BootstrapTokenHeader, bootstrapToken)
	resp, err := http.DefaultClient.Do(raw)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	sess := h.login(t, "founder@example.com")
	me, err := sess.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "FOUNDER", me.Role)
}

func TestBootstrapEndpoint_Disabled(t *testing.T) {
	h := newHarness(t, func(r *authhttp.Router) { r.BootstrapService.Token = "" })

	_, err := h.client.Bootstrap(context.Background(), "anything", authsdk.BootstrapRequest{
		Email:    "founder@example.com",
		Password: testPassword,
	})
	require.ErrorIs(t, err, authsdk.ErrBootstrapDisabled)
}
