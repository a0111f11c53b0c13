package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
)

// DefaultSessionPurgeAfter is how long an expired session lingers before
// the sweep deletes it. Revocation is the security action; this is storage
// hygiene.
const DefaultSessionPurgeAfter = 30 * 24 * time.Hour

// HousekeepingService periodically deletes expired sessions, tokens,
// tickets and attempt counters so the tables do not grow without bound.
type HousekeepingService struct {
	Store      store.Store
	Attempts   store.AttemptCounter
	Logger     *slog.Logger
	Interval   time.Duration
	PurgeAfter time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(
	st store.Store,
	attempts store.AttemptCounter,
	logger *slog.Logger,
	interval, purgeAfter time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if purgeAfter <= 0 {
		purgeAfter = DefaultSessionPurgeAfter
	}

	return &HousekeepingService{
		Store:      st,
		Attempts:   attempts,
		Logger:     logger,
		Interval:   interval,
		PurgeAfter: purgeAfter,
		stopCh:     make(chan struct{}),
		doneCh:     make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking and should be called after the database is ready.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.Cleanup(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Cleanup(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup runs one sweep. Each step is independent; a failure in one is
// logged and the rest still run. It returns the number of rows removed.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	now := time.Now()
	s.Logger.Info("starting housekeeping cleanup")

	steps := []struct {
		name string
		fn   func() (int64, error)
	}{
		{"sessions", func() (int64, error) {
			return s.Store.Sessions().DeleteExpiredBefore(ctx, now.Add(-s.PurgeAfter))
		}},
		{"verification_tokens", func() (int64, error) {
			return s.Store.VerificationTokens().DeleteExpired(ctx, now)
		}},
		{"two_factor_tickets", func() (int64, error) {
			return s.Store.TwoFactorTickets().DeleteExpired(ctx, now)
		}},
		{"oauth_tickets", func() (int64, error) {
			return s.Store.OAuthTickets().DeleteExpired(ctx, now)
		}},
		{"attempt_counters", func() (int64, error) {
			if s.Attempts == nil {
				return 0, nil
			}
			return s.Attempts.PurgeExpired(ctx)
		}},
	}

	var total int64
	for _, step := range steps {
		n, err := step.fn()
		if err != nil {
			s.Logger.Error("housekeeping step failed", "step", step.name, "error", err)
			continue
		}
		s.Logger.Debug("housekeeping step done", "step", step.name, "deleted", n)
		total += n
	}

	s.Logger.Info("housekeeping cleanup completed", "deleted", total)
	return total
}
