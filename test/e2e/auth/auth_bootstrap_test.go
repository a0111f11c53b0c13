package auth_test

import (
	"testing"

	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

// TestBootstrapSuccess verifies bootstrap creates a founder with admin access.
func TestBootstrapSuccess(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	session, founderID := bootstrapFounder(t, client)

	me, err := session.Me(t.Context())
	require.NoError(t, err)
	require.Equal(t, founderID, me.ID)
	require.Equal(t, "FOUNDER", me.Role)
	require.True(t, me.HasPermission("admin:access"))

	t.Logf("Bootstrap successful, founder %s", founderID)
}

// TestBootstrapIdempotency verifies that bootstrap can only be called once.
func TestBootstrapIdempotency(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	bootstrapFounder(t, client)

	_, err := client.Bootstrap(t.Context(), bootstrapToken, authsdk.BootstrapRequest{
		Email:    "another@example.com",
		Password: "AnotherPassword123!",
	})
	require.ErrorIs(t, err, authsdk.ErrAlreadyBootstrapped)

	t.Logf("Second bootstrap correctly rejected")
}

// TestBootstrapWrongToken verifies the token is enforced.
func TestBootstrapWrongToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	_, err := client.Bootstrap(t.Context(), "not-the-token", authsdk.BootstrapRequest{
		Email:    founderEmail,
		Password: founderPass,
	})
	require.ErrorIs(t, err, authsdk.ErrBootstrapUnauthorized)
}
