package sqlite_test

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(sqlite.DSN(filepath.Join(t.TempDir(), "auth.db")))
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedUser(t *testing.T, st store.Store, email string) domain.User {
	t.Helper()

	u := domain.User{
		ID:           idx.New().String(),
		Email:        email,
		PasswordHash: "hash",
		Role:         domain.RoleStandardUser,
		Status:       domain.StatusActive,
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), u))
	return u
}

func TestMigrationsAreIdempotent(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.ApplyMigrations())
	require.NoError(t, st.Ping(context.Background()))
}

func TestUsers_EmailIsCaseInsensitiveAndUnique(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "Alice@Example.com")

	got, err := st.Users().GetUserByEmail(ctx, "alice@example.COM")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, domain.RoleStandardUser, got.Role)
	require.Nil(t, got.Permissions)
	require.Empty(t, got.FeatureFlags)

	err = st.Users().CreateUser(ctx, domain.User{
		ID: idx.New().String(), Email: "alice@example.com",
		Role: domain.RoleStandardUser, Status: domain.StatusActive,
	})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	_, err = st.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsers_SoftDeleteReleasesEmail(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "bob@example.com")

	require.NoError(t, st.Users().SoftDelete(ctx, u.ID, "requested"))
	require.ErrorIs(t, st.Users().SoftDelete(ctx, u.ID, "again"), store.ErrConflict)

	_, err := st.Users().GetUserByEmail(ctx, "bob@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	byID, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, byID.IsDeleted())
	require.Equal(t, "requested", byID.DeletedReason)

	seedUser(t, st, "bob@example.com")
}

func TestUsers_ActivateOnlyFromPending(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	u := domain.User{
		ID: idx.New().String(), Email: "p@example.com",
		Role: domain.RoleStandardUser, Status: domain.StatusPendingVerification,
	}
	require.NoError(t, st.Users().CreateUser(ctx, u))
	require.NoError(t, st.Users().ActivateUser(ctx, u.ID))
	require.ErrorIs(t, st.Users().ActivateUser(ctx, u.ID), store.ErrConflict)
}

func TestUsers_PermissionsOverride(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "perm@example.com")

	require.NoError(t, st.Users().SetPermissions(ctx, u.ID, []string{domain.PermSessionsRead}))
	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, []string{domain.PermSessionsRead}, got.Permissions)

	require.NoError(t, st.Users().SetPermissions(ctx, u.ID, []string{}))
	got, err = st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Permissions)
	require.Empty(t, got.Permissions)

	require.NoError(t, st.Users().SetPermissions(ctx, u.ID, nil))
	got, err = st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Nil(t, got.Permissions)
}

func TestUsers_CompareAndSetFeatureFlag(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "flags@example.com")

	v, err := st.Users().CompareAndSetFeatureFlag(ctx, u.ID, "beta_ui", false, true)
	require.NoError(t, err)
	require.True(t, v)

	// Stale expectation loses and reports the stored value.
	v, err = st.Users().CompareAndSetFeatureFlag(ctx, u.ID, "beta_ui", false, true)
	require.ErrorIs(t, err, store.ErrConflict)
	require.True(t, v)

	v, err = st.Users().CompareAndSetFeatureFlag(ctx, u.ID, "beta_ui", true, false)
	require.NoError(t, err)
	require.False(t, v)

	got, err := st.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, map[string]bool{"beta_ui": false}, got.FeatureFlags)
}

func TestVerificationTokens_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "tok@example.com")
	now := time.Now()

	tok := domain.VerificationToken{
		ID: idx.New().String(), UserID: u.ID, Purpose: domain.PurposePasswordReset,
		TokenHash: "h1", ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}
	require.NoError(t, st.VerificationTokens().CreateToken(ctx, tok))

	// Wrong purpose never redeems.
	_, err := st.VerificationTokens().Consume(ctx, "h1", domain.PurposeActivation, now)
	require.ErrorIs(t, err, store.ErrNotFound)

	userID, err := st.VerificationTokens().Consume(ctx, "h1", domain.PurposePasswordReset, now)
	require.NoError(t, err)
	require.Equal(t, u.ID, userID)

	_, err = st.VerificationTokens().Consume(ctx, "h1", domain.PurposePasswordReset, now)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestVerificationTokens_ExpiredNotRedeemable(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "exp@example.com")
	now := time.Now()

	require.NoError(t, st.VerificationTokens().CreateToken(ctx, domain.VerificationToken{
		ID: idx.New().String(), UserID: u.ID, Purpose: domain.PurposeActivation,
		TokenHash: "old", ExpiresAt: now.Add(-time.Minute), CreatedAt: now.Add(-time.Hour),
	}))

	_, err := st.VerificationTokens().GetActiveByHash(ctx, "old", domain.PurposeActivation, now)
	require.ErrorIs(t, err, store.ErrNotFound)

	n, err := st.VerificationTokens().DeleteExpired(ctx, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)
}

func TestTwoFactor_Lifecycle(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "tf@example.com")
	now := time.Now()

	require.NoError(t, st.TwoFactor().UpsertPending(ctx, u.ID, []byte("a"), now))
	require.NoError(t, st.TwoFactor().UpsertPending(ctx, u.ID, []byte("b"), now))

	tf, err := st.TwoFactor().Get(ctx, u.ID)
	require.NoError(t, err)
	require.False(t, tf.Enabled)
	require.Equal(t, []byte("b"), tf.SecretEnc)

	require.NoError(t, st.TwoFactor().Enable(ctx, u.ID, 100, now))
	require.ErrorIs(t, st.TwoFactor().UpsertPending(ctx, u.ID, []byte("c"), now), store.ErrConflict)

	require.ErrorIs(t, st.TwoFactor().AdvanceStep(ctx, u.ID, 100, now), store.ErrConflict)
	require.NoError(t, st.TwoFactor().AdvanceStep(ctx, u.ID, 101, now))

	tf, err = st.TwoFactor().Get(ctx, u.ID)
	require.NoError(t, err)
	require.True(t, tf.Enabled)
	require.EqualValues(t, 101, tf.LastUsedStep)
	require.NotNil(t, tf.EnabledAt)

	require.NoError(t, st.TwoFactor().Delete(ctx, u.ID))
	_, err = st.TwoFactor().Get(ctx, u.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestRecoveryCodes_MarkUsedOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "rc@example.com")
	now := time.Now()

	ids := []string{idx.New().String(), idx.New().String()}
	for _, id := range ids {
		require.NoError(t, st.RecoveryCodes().CreateCode(ctx, domain.RecoveryCode{
			ID: id, UserID: u.ID, CodeHash: "h-" + id, CreatedAt: now,
		}))
	}

	require.NoError(t, st.RecoveryCodes().MarkUsed(ctx, ids[0], now))
	require.ErrorIs(t, st.RecoveryCodes().MarkUsed(ctx, ids[0], now), store.ErrConflict)

	n, err := st.RecoveryCodes().CountUnused(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, 1, n)

	unused, err := st.RecoveryCodes().ListUnused(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, unused, 1)
	require.Equal(t, ids[1], unused[0].ID)
}

func TestRecoveryCodes_ConcurrentMarkUsedHasOneWinner(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "race@example.com")
	now := time.Now()

	id := idx.New().String()
	require.NoError(t, st.RecoveryCodes().CreateCode(ctx, domain.RecoveryCode{
		ID: id, UserID: u.ID, CodeHash: "h", CreatedAt: now,
	}))

	const workers = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := st.RecoveryCodes().MarkUsed(ctx, id, now); err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, 1, wins)
}

func TestTwoFactorTickets_ConsumeAndClose(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "ticket@example.com")
	now := time.Now()

	mk := func() string {
		id := idx.New().String()
		require.NoError(t, st.TwoFactorTickets().CreateTicket(ctx, domain.TwoFactorTicket{
			ID: id, UserID: u.ID, ExpiresAt: now.Add(5 * time.Minute), CreatedAt: now,
		}))
		return id
	}

	first := mk()
	require.NoError(t, st.TwoFactorTickets().Consume(ctx, first, now))
	require.ErrorIs(t, st.TwoFactorTickets().Consume(ctx, first, now), store.ErrConflict)

	second := mk()
	require.NoError(t, st.TwoFactorTickets().CloseOpenForUser(ctx, u.ID, now))
	require.ErrorIs(t, st.TwoFactorTickets().Consume(ctx, second, now), store.ErrConflict)

	third := mk()
	require.ErrorIs(t, st.TwoFactorTickets().Consume(ctx, third, now.Add(10*time.Minute)), store.ErrConflict)
}

func TestSessions_RevokeAndList(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "sess@example.com")
	other := seedUser(t, st, "other@example.com")
	now := time.Now()

	mk := func(userID, hash string, lastSeen time.Time) domain.Session {
		s := domain.Session{
			ID: idx.New().String(), UserID: userID, TokenHash: hash,
			CreatedAt: now, LastSeenAt: lastSeen, ExpiresAt: now.Add(time.Hour),
		}
		require.NoError(t, st.Sessions().CreateSession(ctx, s))
		return s
	}

	a := mk(u.ID, "a", now.Add(-2*time.Minute))
	b := mk(u.ID, "b", now.Add(-1*time.Minute))
	c := mk(u.ID, "c", now.Add(-3*time.Minute))
	foreign := mk(other.ID, "d", now)

	all, err := st.Sessions().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, []string{b.ID, a.ID, c.ID}, sessionIDs(all))

	// Revoking someone else's session is a silent no-op.
	ok, err := st.Sessions().Revoke(ctx, foreign.ID, u.ID, now)
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = st.Sessions().Revoke(ctx, c.ID, u.ID, now)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = st.Sessions().Revoke(ctx, c.ID, u.ID, now)
	require.NoError(t, err)
	require.False(t, ok)

	n, err := st.Sessions().RevokeAllExcept(ctx, u.ID, a.ID, now)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	all, err = st.Sessions().ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, all, 3)
	for _, s := range all {
		require.Equal(t, s.ID == a.ID, s.RevokedAt == nil)
	}

	recent, err := st.Sessions().ListRecent(ctx, u.ID, 2)
	require.NoError(t, err)
	require.Equal(t, []string{b.ID, a.ID}, sessionIDs(recent))

	stillThere, err := st.Sessions().GetByTokenHash(ctx, "d")
	require.NoError(t, err)
	require.Nil(t, stillThere.RevokedAt)
}

func TestSessions_DuplicateTokenHash(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "dup@example.com")
	now := time.Now()

	s := domain.Session{
		ID: idx.New().String(), UserID: u.ID, TokenHash: "same",
		CreatedAt: now, LastSeenAt: now, ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, st.Sessions().CreateSession(ctx, s))
	s.ID = idx.New().String()
	require.ErrorIs(t, st.Sessions().CreateSession(ctx, s), store.ErrAlreadyExists)
}

func TestSessions_TouchIsThrottled(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "touch@example.com")
	now := time.Now().Truncate(time.Millisecond)

	s := domain.Session{
		ID: idx.New().String(), UserID: u.ID, TokenHash: "t",
		CreatedAt: now, LastSeenAt: now, ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, st.Sessions().CreateSession(ctx, s))

	require.NoError(t, st.Sessions().Touch(ctx, s.ID, now.Add(10*time.Second), time.Minute))
	got, err := st.Sessions().GetByID(ctx, s.ID)
	require.NoError(t, err)
	require.True(t, got.LastSeenAt.Equal(now))

	later := now.Add(2 * time.Minute)
	require.NoError(t, st.Sessions().Touch(ctx, s.ID, later, time.Minute))
	got, err = st.Sessions().GetByID(ctx, s.ID)
	require.NoError(t, err)
	require.True(t, got.LastSeenAt.Equal(later))
}

func TestSessions_DeleteExpiredBefore(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "sweep@example.com")
	now := time.Now()

	old := domain.Session{
		ID: idx.New().String(), UserID: u.ID, TokenHash: "old",
		CreatedAt: now.Add(-60 * 24 * time.Hour), LastSeenAt: now.Add(-60 * 24 * time.Hour),
		ExpiresAt: now.Add(-45 * 24 * time.Hour),
	}
	recent := domain.Session{
		ID: idx.New().String(), UserID: u.ID, TokenHash: "recent",
		CreatedAt: now.Add(-2 * 24 * time.Hour), LastSeenAt: now.Add(-2 * 24 * time.Hour),
		ExpiresAt: now.Add(-24 * time.Hour),
	}
	require.NoError(t, st.Sessions().CreateSession(ctx, old))
	require.NoError(t, st.Sessions().CreateSession(ctx, recent))

	n, err := st.Sessions().DeleteExpiredBefore(ctx, now.Add(-30*24*time.Hour))
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	_, err = st.Sessions().GetByID(ctx, recent.ID)
	require.NoError(t, err)
}

func TestOAuthIdentities_Link(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "o@example.com")
	other := seedUser(t, st, "o2@example.com")

	id := domain.OAuthIdentity{Provider: "google", Subject: "123", UserID: u.ID, CreatedAt: time.Now()}
	require.NoError(t, st.OAuthIdentities().Link(ctx, id))
	require.NoError(t, st.OAuthIdentities().Link(ctx, id))

	id.UserID = other.ID
	require.ErrorIs(t, st.OAuthIdentities().Link(ctx, id), store.ErrConflict)

	got, err := st.OAuthIdentities().GetIdentity(ctx, "google", "123")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.UserID)
}

func TestOAuthTickets_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	now := time.Now()

	tk := domain.OAuthTicket{
		ID:        idx.New().String(),
		Claims:    domain.OAuthClaims{Provider: "github", Subject: "42", Name: "Octo"},
		ExpiresAt: now.Add(10 * time.Minute),
		CreatedAt: now,
	}
	require.NoError(t, st.OAuthTickets().CreateTicket(ctx, tk))

	got, err := st.OAuthTickets().Consume(ctx, tk.ID, now)
	require.NoError(t, err)
	require.Equal(t, tk.Claims, got.Claims)
	require.NotNil(t, got.ConsumedAt)

	_, err = st.OAuthTickets().Consume(ctx, tk.ID, now)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestActivity_RecordAndList(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	u := seedUser(t, st, "audit@example.com")
	now := time.Now()

	require.NoError(t, st.Activity().Record(ctx, domain.Activity{
		ID: idx.New().String(), SubjectID: u.ID, Action: domain.ActionLoginSuccess, CreatedAt: now,
	}))
	require.NoError(t, st.Activity().Record(ctx, domain.Activity{
		ID: idx.New().String(), ActorID: "admin", SubjectID: u.ID, Action: domain.ActionAdminSessionRevoked,
		Metadata: map[string]string{"sessionId": "s1"}, CreatedAt: now.Add(time.Second),
	}))

	got, err := st.Activity().ListForSubject(ctx, u.ID, 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, domain.ActionAdminSessionRevoked, got[0].Action)
	require.Equal(t, "admin", got[0].ActorID)
	require.Equal(t, "s1", got[0].Metadata["sessionId"])
	require.Empty(t, got[1].ActorID)
}

func TestWithTx_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)

	err := st.WithTx(ctx, func(tx store.Tx) error {
		require.NoError(t, tx.Users().CreateUser(ctx, domain.User{
			ID: idx.New().String(), Email: "tx@example.com",
			Role: domain.RoleStandardUser, Status: domain.StatusActive,
		}))
		return store.ErrConflict
	})
	require.ErrorIs(t, err, store.ErrConflict)

	_, err = st.Users().GetUserByEmail(ctx, "tx@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestAttemptCounter(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	c := sqlite.NewAttemptCounter(st, time.Minute)

	n, err := c.Attempts(ctx, "k")
	require.NoError(t, err)
	require.Zero(t, n)

	for want := 1; want <= 3; want++ {
		n, err = c.Increment(ctx, "k")
		require.NoError(t, err)
		require.Equal(t, want, n)
	}

	n, err = c.Attempts(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, 3, n)

	require.NoError(t, c.Reset(ctx, "k"))
	n, err = c.Attempts(ctx, "k")
	require.NoError(t, err)
	require.Zero(t, n)
}

func sessionIDs(in []domain.Session) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = s.ID
	}
	return out
}
