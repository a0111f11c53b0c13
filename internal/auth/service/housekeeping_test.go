package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestHousekeeping_Cleanup(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	u := h.createUser(t, "sweep@example.com")
	now := time.Now().UTC()

	mk := func(token string, expires time.Time) domain.Session {
		s := domain.Session{
			ID:         idx.New().String(),
			UserID:     u.ID,
			TokenHash:  token,
			CreatedAt:  expires.Add(-time.Hour),
			LastSeenAt: expires.Add(-time.Hour),
			ExpiresAt:  expires,
		}
		require.NoError(t, h.store.Sessions().CreateSession(ctx, s))
		return s
	}

	longGone := mk("a", now.Add(-45*24*time.Hour))
	recent := mk("b", now.Add(-24*time.Hour))
	live := mk("c", now.Add(24*time.Hour))

	attempts := sqlite.NewAttemptCounter(h.store, time.Minute)
	svc := NewHousekeepingService(h.store, attempts, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour, 0)

	require.GreaterOrEqual(t, svc.Cleanup(ctx), int64(1))

	_, err := h.store.Sessions().GetByID(ctx, longGone.ID)
	require.Error(t, err)
	_, err = h.store.Sessions().GetByID(ctx, recent.ID)
	require.NoError(t, err, "expired sessions stay visible for the purge window")
	_, err = h.store.Sessions().GetByID(ctx, live.ID)
	require.NoError(t, err)
}

func TestHousekeeping_StartStop(t *testing.T) {
	h := newHarness(t)
	svc := NewHousekeepingService(h.store, nil, slog.New(slog.NewTextHandler(io.Discard, nil)), time.Hour, time.Hour)

	svc.Start()
	svc.Stop()
}
