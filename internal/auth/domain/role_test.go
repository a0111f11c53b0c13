package domain_test

import (
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

func TestResolvePermissions_RoleGrant(t *testing.T) {
	admin := domain.ResolvePermissions(domain.User{Role: domain.RoleAdmin})
	require.True(t, admin.Has(domain.PermSessionsWrite))
	require.True(t, admin.Has(domain.PermAdminAccess))

	mod := domain.ResolvePermissions(domain.User{Role: domain.RoleModerator})
	require.True(t, mod.Has(domain.PermSessionsRead))
	require.False(t, mod.Has(domain.PermSessionsWrite))

	std := domain.ResolvePermissions(domain.User{Role: domain.RoleStandardUser})
	require.Equal(t, domain.PermissionSet{"profile:read", "profile:write", "wallet:read"}, std)
}

func TestResolvePermissions_Override(t *testing.T) {
	u := domain.User{
		Role:        domain.RoleStandardUser,
		Permissions: []string{"sessions:read", "bogus:perm", "sessions:read", "audit:read"},
	}
	got := domain.ResolvePermissions(u)
	require.Equal(t, domain.PermissionSet{"audit:read", "sessions:read"}, got)

	// Empty but non-nil override grants nothing.
	u.Permissions = []string{}
	require.Empty(t, domain.ResolvePermissions(u))
}

func TestResolvePermissions_SuspendedAndBannedGetNothing(t *testing.T) {
	for _, r := range []domain.Role{domain.RoleSuspended, domain.RoleBanned} {
		u := domain.User{Role: r, Permissions: []string{domain.PermAdminAccess}}
		require.Empty(t, domain.ResolvePermissions(u), r)
	}
}

func TestRoleAndStatusValid(t *testing.T) {
	require.True(t, domain.RoleCreator.Valid())
	require.False(t, domain.Role("WIZARD").Valid())
	require.True(t, domain.StatusDisabled.Valid())
	require.False(t, domain.Status("asleep").Valid())
}

func TestSessionActive(t *testing.T) {
	now := time.Now()
	s := domain.Session{ExpiresAt: now.Add(time.Hour)}
	require.True(t, s.Active(now))
	require.False(t, s.Active(now.Add(2*time.Hour)))

	s.RevokedAt = &now
	require.False(t, s.Active(now))
}

func TestTwoFactorMethodsList(t *testing.T) {
	require.Equal(t, []string{"totp", "recovery"}, domain.TwoFactorMethods{TOTP: true, Recovery: true}.List())
	require.Equal(t, []string{"totp"}, domain.TwoFactorMethods{TOTP: true}.List())
}
