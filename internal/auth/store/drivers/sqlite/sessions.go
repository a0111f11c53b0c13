package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

type sessionsRepo struct {
	db dbtx
}

const sessionColumns = `id, user_id, token_hash, user_agent, ip, device_hash, device_label,
	created_at, last_seen_at, expires_at, revoked_at`

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, user_agent, ip, device_hash, device_label,
			created_at, last_seen_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.TokenHash, s.UserAgent, s.IP, s.DeviceHash, s.DeviceLabel,
		ms(s.CreatedAt), ms(s.LastSeenAt), ms(s.ExpiresAt),
	)
	return mapInsertErr(err)
}

func (r *sessionsRepo) GetByTokenHash(ctx context.Context, hash string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE token_hash = ?`, hash)
	return scanSession(row)
}

func (r *sessionsRepo) GetByID(ctx context.Context, id string) (domain.Session, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

func (r *sessionsRepo) ListByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE user_id = ?
		ORDER BY last_seen_at DESC, id DESC`,
		userID)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

func (r *sessionsRepo) ListRecent(ctx context.Context, userID string, limit int) ([]domain.Session, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+sessionColumns+` FROM sessions
		WHERE user_id = ?
		ORDER BY last_seen_at DESC, id DESC
		LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

func (r *sessionsRepo) Revoke(ctx context.Context, id, userID string, now time.Time) (bool, error) {
	n, err := affected(r.db.ExecContext(ctx,
		`UPDATE sessions SET revoked_at = ? WHERE id = ? AND user_id = ? AND revoked_at IS NULL`,
		ms(now), id, userID))
	return n > 0, err
}

func (r *sessionsRepo) RevokeAllExcept(ctx context.Context, userID, exceptID string, now time.Time) (int64, error) {
	return affected(r.db.ExecContext(ctx, `
		UPDATE sessions SET revoked_at = ?
		WHERE user_id = ? AND id <> ? AND revoked_at IS NULL AND expires_at > ?`,
		ms(now), userID, exceptID, ms(now)))
}

func (r *sessionsRepo) Touch(ctx context.Context, id string, now time.Time, minInterval time.Duration) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE sessions SET last_seen_at = ?
		WHERE id = ? AND revoked_at IS NULL AND last_seen_at < ?`,
		ms(now), id, ms(now.Add(-minInterval)))
	return err
}

func (r *sessionsRepo) DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return affected(r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, ms(cutoff)))
}

func collectSessions(rows *sql.Rows) ([]domain.Session, error) {
	defer rows.Close()

	out := []domain.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		s          domain.Session
		createdAt  int64
		lastSeenAt int64
		expiresAt  int64
		revokedAt  sql.NullInt64
	)
	err := row.Scan(&s.ID, &s.UserID, &s.TokenHash, &s.UserAgent, &s.IP, &s.DeviceHash, &s.DeviceLabel,
		&createdAt, &lastSeenAt, &expiresAt, &revokedAt)
	if err != nil {
		return domain.Session{}, mapNotFound(err)
	}
	s.CreatedAt = fromMs(createdAt)
	s.LastSeenAt = fromMs(lastSeenAt)
	s.ExpiresAt = fromMs(expiresAt)
	s.RevokedAt = fromNullMs(revokedAt)
	return s, nil
}
