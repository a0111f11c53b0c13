package auth_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/authsdk"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
)

// TestInvalidCredentials verifies that login with wrong password is rejected.
func TestInvalidCredentials(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)
	bootstrapFounder(t, client)

	_, _, err := client.Login(t.Context(), founderEmail, "wrong-password")
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	_, _, err = client.Login(t.Context(), "nobody@example.com", founderPass)
	require.ErrorIs(t, err, authsdk.ErrInvalidCredentials)

	t.Logf("Invalid credentials correctly rejected with 401")
}

// TestInvalidSessionToken verifies that a made-up token is rejected.
func TestInvalidSessionToken(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	client := authsdk.NewSDKClient(baseURL)

	_, err := client.NewSessionFromToken("invalid-token-12345").Me(t.Context())
	require.ErrorIs(t, err, authsdk.ErrUnauthenticated)
}

// TestRegistrationRequiresActivation walks a fresh account from pending to
// signed in.
func TestRegistrationRequiresActivation(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	ctx := t.Context()
	client := authsdk.NewSDKClient(baseURL)
	founder, _ := bootstrapFounder(t, client)

	user, err := client.Register(ctx, authsdk.RegisterRequest{
		Email:         "alice@example.com",
		Password:      userPassword,
		TermsAccepted: true,
	})
	require.NoError(t, err)

	_, _, err = client.Login(ctx, "alice@example.com", userPassword)
	require.ErrorIs(t, err, authsdk.ErrAccountNotVerified)

	require.NoError(t, founder.SetUserStatus(ctx, user.ID, "active"))
	performLogin(t, client, "alice@example.com", userPassword)
}

// TestSessionManagement covers listing, revoking and logging out.
func TestSessionManagement(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	ctx := t.Context()
	client := authsdk.NewSDKClient(baseURL)
	founder, _ := bootstrapFounder(t, client)
	registerActivatedUser(t, client, founder, "alice@example.com")

	laptop := performLogin(t, client, "alice@example.com", userPassword)
	phone := performLogin(t, client, "alice@example.com", userPassword)
	tablet := performLogin(t, client, "alice@example.com", userPassword)

	sessions, err := laptop.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 3)

	n, err := laptop.RevokeOtherSessions(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), n)

	_, err = phone.Me(ctx)
	require.ErrorIs(t, err, authsdk.ErrUnauthenticated)
	_, err = tablet.Me(ctx)
	require.ErrorIs(t, err, authsdk.ErrUnauthenticated)

	token := laptop.Token()
	require.NoError(t, laptop.Logout(ctx))
	_, err = client.NewSessionFromToken(token).Me(ctx)
	require.ErrorIs(t, err, authsdk.ErrUnauthenticated)
}

// TestTwoFactorLogin enrols TOTP and completes a login with a recovery
// code. The TOTP step used to confirm cannot be reused, so the second
// factor here is a recovery code.
func TestTwoFactorLogin(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	ctx := t.Context()
	client := authsdk.NewSDKClient(baseURL)
	founder, _ := bootstrapFounder(t, client)
	registerActivatedUser(t, client, founder, "alice@example.com")

	session := performLogin(t, client, "alice@example.com", userPassword)

	setup, err := session.StartTwoFactorSetup(ctx)
	require.NoError(t, err)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)

	codes, err := session.ConfirmTwoFactorSetup(ctx, code)
	require.NoError(t, err)
	require.NotEmpty(t, codes)

	none, challenge, err := client.Login(ctx, "alice@example.com", userPassword)
	require.NoError(t, err)
	require.Nil(t, none)
	require.NotNil(t, challenge)
	require.True(t, challenge.Methods.TOTP)
	require.True(t, challenge.Methods.Recovery)

	second, err := client.CompleteTwoFactor(ctx, challenge.Ticket, "recovery", codes[0])
	require.NoError(t, err)

	me, err := second.Me(ctx)
	require.NoError(t, err)
	require.Equal(t, "alice@example.com", me.Email)

	status, err := second.TwoFactorStatus(ctx)
	require.NoError(t, err)
	require.True(t, status.Enabled)
	require.Equal(t, len(codes)-1, status.RemainingRecoveryCodes)

	t.Logf("2FA login completed with a recovery code")
}

// TestTwoFactorLockout verifies a ticket locks after repeated wrong codes.
func TestTwoFactorLockout(t *testing.T) {
	baseURL, cleanup := setupAuthContainer(t)
	defer cleanup()

	ctx := t.Context()
	client := authsdk.NewSDKClient(baseURL)
	founder, _ := bootstrapFounder(t, client)
	registerActivatedUser(t, client, founder, "alice@example.com")

	session := performLogin(t, client, "alice@example.com", userPassword)
	setup, err := session.StartTwoFactorSetup(ctx)
	require.NoError(t, err)
	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	codes, err := session.ConfirmTwoFactorSetup(ctx, code)
	require.NoError(t, err)

	_, challenge, err := client.Login(ctx, "alice@example.com", userPassword)
	require.NoError(t, err)

	for range 2 {
		_, err = client.CompleteTwoFactor(ctx, challenge.Ticket, "recovery", "AAAA-BBBB-CCCC")
		require.ErrorIs(t, err, authsdk.ErrInvalidRecoveryCode)
	}

	// The third failure locks the ticket.
	_, err = client.CompleteTwoFactor(ctx, challenge.Ticket, "recovery", "AAAA-BBBB-CCCC")
	require.ErrorIs(t, err, authsdk.ErrRateLimitExceeded)

	_, err = client.CompleteTwoFactor(ctx, challenge.Ticket, "recovery", codes[0])
	require.ErrorIs(t, err, authsdk.ErrRateLimitExceeded)
}
