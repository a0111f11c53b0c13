package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// AttemptCounter is the SQLite backed store.AttemptCounter. A counter's
// window opens on its first failure; once locked_until passes the next
// failure starts a fresh window.
type AttemptCounter struct {
	db     *sql.DB
	window time.Duration
	now    func() time.Time
}

// NewAttemptCounter shares the store's connection pool.
func NewAttemptCounter(s *Store, window time.Duration) *AttemptCounter {
	return &AttemptCounter{db: s.db, window: window, now: time.Now}
}

func (c *AttemptCounter) Attempts(ctx context.Context, key string) (int, error) {
	var n int
	err := c.db.QueryRowContext(ctx,
		`SELECT attempts FROM ticket_attempts WHERE ticket_id = ? AND locked_until > ?`,
		key, ms(c.now()),
	).Scan(&n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	return n, err
}

func (c *AttemptCounter) Increment(ctx context.Context, key string) (int, error) {
	now := c.now()

	var n int
	err := c.db.QueryRowContext(ctx, `
		INSERT INTO ticket_attempts (ticket_id, attempts, locked_until, updated_at)
		VALUES (?, 1, ?, ?)
		ON CONFLICT (ticket_id) DO UPDATE SET
			attempts     = CASE WHEN ticket_attempts.locked_until <= ? THEN 1 ELSE ticket_attempts.attempts + 1 END,
			locked_until = CASE WHEN ticket_attempts.locked_until <= ? THEN excluded.locked_until ELSE ticket_attempts.locked_until END,
			updated_at   = excluded.updated_at
		RETURNING attempts`,
		key, ms(now.Add(c.window)), ms(now), ms(now), ms(now),
	).Scan(&n)
	return n, err
}

func (c *AttemptCounter) Reset(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `DELETE FROM ticket_attempts WHERE ticket_id = ?`, key)
	return err
}

func (c *AttemptCounter) PurgeExpired(ctx context.Context) (int64, error) {
	return affected(c.db.ExecContext(ctx,
		`DELETE FROM ticket_attempts WHERE locked_until <= ?`, ms(c.now())))
}
