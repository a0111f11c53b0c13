package service

import (
	"context"
	"testing"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestRegisterActivateScenario(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.accounts.Register(ctx, RegisterInput{
		Email:         "New.User@Example.com",
		Password:      testPassword,
		TermsAccepted: true,
		TermsVersion:  "2024-01",
	}, device)
	require.NoError(t, err)
	require.Equal(t, "new.user@example.com", u.Email)
	require.Equal(t, domain.StatusPendingVerification, u.Status)
	require.Equal(t, domain.RoleStandardUser, u.Role)

	_, err = h.login.Login(ctx, u.Email, testPassword, device)
	require.ErrorIs(t, err, ErrAccountNotVerified)

	t1 := h.mailer.lastToken(t, "activation:"+u.Email)

	activated, err := h.accounts.Activate(ctx, t1, device)
	require.NoError(t, err)
	require.Equal(t, domain.StatusActive, activated.Status)

	_, err = h.accounts.Activate(ctx, t1, device)
	require.ErrorIs(t, err, ErrActivationInvalid)

	h.passwordLogin(t, u.Email)
}

func TestRegister_Validation(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.createUser(t, "taken@example.com")

	cases := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"terms", RegisterInput{Email: "a@example.com", Password: testPassword}, ErrTermsNotAccepted},
		{"email", RegisterInput{Email: "not-an-email", Password: testPassword, TermsAccepted: true}, ErrInvalidEmail},
		{"password", RegisterInput{Email: "b@example.com", Password: "short", TermsAccepted: true}, ErrWeakPassword},
		{"duplicate", RegisterInput{Email: "TAKEN@example.com", Password: testPassword, TermsAccepted: true}, ErrEmailExists},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := h.accounts.Register(ctx, tc.in, device)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestResendActivation_InvalidatesEarlierToken(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	u, err := h.accounts.Register(ctx, RegisterInput{Email: "resend@example.com", Password: testPassword, TermsAccepted: true}, device)
	require.NoError(t, err)
	first := h.mailer.lastToken(t, "activation:"+u.Email)

	require.NoError(t, h.accounts.ResendActivation(ctx, u.Email))
	second := h.mailer.lastToken(t, "activation:"+u.Email)
	require.NotEqual(t, first, second)

	_, err = h.accounts.Activate(ctx, first, device)
	require.ErrorIs(t, err, ErrActivationInvalid)
	_, err = h.accounts.Activate(ctx, second, device)
	require.NoError(t, err)

	// Active and unknown addresses both succeed silently.
	require.NoError(t, h.accounts.ResendActivation(ctx, u.Email))
	require.NoError(t, h.accounts.ResendActivation(ctx, "nobody@example.com"))
	require.Equal(t, 2, h.mailer.count("activation:"+u.Email))
}

func TestForgotPassword_AlwaysSucceeds(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	require.NoError(t, h.accounts.ForgotPassword(ctx, "ghost@example.com"))
	require.Zero(t, h.mailer.count("reset:ghost@example.com"))
}

func TestResetPassword_SingleUseAndRevokesSessions(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.createUser(t, "reset@example.com")
	auth := h.passwordLogin(t, u.Email)

	require.NoError(t, h.accounts.ForgotPassword(ctx, u.Email))
	token := h.mailer.lastToken(t, "reset:"+u.Email)

	require.NoError(t, h.accounts.ValidateReset(ctx, token))
	require.NoError(t, h.accounts.ValidateReset(ctx, token), "validation does not spend the token")

	require.ErrorIs(t, h.accounts.ResetPassword(ctx, token, "short", device), ErrWeakPassword)
	require.NoError(t, h.accounts.ResetPassword(ctx, token, "a brand new passphrase", device))
	require.ErrorIs(t, h.accounts.ResetPassword(ctx, token, "another passphrase", device), ErrResetTokenInvalid)
	require.ErrorIs(t, h.accounts.ValidateReset(ctx, token), ErrResetTokenInvalid)

	_, _, err := h.sessions.Resolve(ctx, auth.Token)
	require.ErrorIs(t, err, ErrUnauthenticated)

	_, err = h.login.Login(ctx, u.Email, testPassword, device)
	require.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = h.login.Login(ctx, u.Email, "a brand new passphrase", device)
	require.NoError(t, err)
}

func TestResetToken_DoesNotActivate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.createUser(t, "purpose@example.com", func(u *domain.User) { u.Status = domain.StatusPendingVerification })

	require.NoError(t, h.accounts.ForgotPassword(ctx, u.Email))
	token := h.mailer.lastToken(t, "reset:"+u.Email)

	_, err := h.accounts.Activate(ctx, token, device)
	require.ErrorIs(t, err, ErrActivationInvalid)
}

func TestChangePassword_KeepsCurrentSessionOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.createUser(t, "change@example.com")

	current := h.passwordLogin(t, u.Email)
	other := h.passwordLogin(t, u.Email)

	err := h.accounts.ChangePassword(ctx, u.ID, current.Session.ID, "wrong", "new passphrase!", device)
	require.ErrorIs(t, err, ErrIncorrectPassword)

	require.NoError(t, h.accounts.ChangePassword(ctx, u.ID, current.Session.ID, testPassword, "new passphrase!", device))

	_, _, err = h.sessions.Resolve(ctx, current.Token)
	require.NoError(t, err)
	_, _, err = h.sessions.Resolve(ctx, other.Token)
	require.ErrorIs(t, err, ErrUnauthenticated)
}
