package jwtx_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const exampleIssuer = "gatekeeper-test"

func TestNewTicketClaims(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	c := jwtx.NewTicketClaims("user-1", "ticket-1", jwtx.AudienceTwoFactor, exampleIssuer,
		[]string{"totp", "recovery"}, 5*time.Minute, now)

	require.Equal(t, "user-1", c.Subject)
	require.Equal(t, "ticket-1", c.ID)
	require.Equal(t, jwt.ClaimStrings{jwtx.AudienceTwoFactor}, c.Audience)
	require.Equal(t, now.Add(5*time.Minute), c.ExpiresAt.Time)
	require.Equal(t, []string{"totp", "recovery"}, c.Methods)
}

func TestValidateIssuer(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Issuer: exampleIssuer}}

	require.NoError(t, c.ValidateIssuer(exampleIssuer))
	require.NoError(t, c.ValidateIssuer(""), "empty expectation is not enforced")
	require.ErrorIs(t, c.ValidateIssuer("someone-else"), jwtx.ErrIssuer)
}

func TestValidateAudience(t *testing.T) {
	c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{Audience: []string{jwtx.AudienceOAuth}}}

	require.NoError(t, c.ValidateAudience([]string{jwtx.AudienceOAuth}))
	require.NoError(t, c.ValidateAudience([]string{"foo", jwtx.AudienceOAuth}))
	require.NoError(t, c.ValidateAudience(nil))

	// A 2FA ticket must never be accepted where an OAuth ticket is expected.
	require.ErrorIs(t, c.ValidateAudience([]string{jwtx.AudienceTwoFactor}), jwtx.ErrAudience)
}

func TestValidateExpiry(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid ticket", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
		}}
		require.NoError(t, c.ValidateExpiry())
	})

	t.Run("expired ticket", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute)),
		}}
		require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrExpired)
	})

	t.Run("not yet valid", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			NotBefore: jwt.NewNumericDate(now.Add(time.Minute)),
		}}
		require.ErrorIs(t, c.ValidateExpiry(), jwtx.ErrNotYetValid)
	})

	t.Run("leeway absorbs small skew", func(t *testing.T) {
		c := &jwtx.Claims{RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(-10 * time.Second)),
		}}
		require.NoError(t, c.ValidateExpiryWithLeeway(30*time.Second))
		require.ErrorIs(t, c.ValidateExpiryWithLeeway(time.Second), jwtx.ErrExpired)
	})
}
