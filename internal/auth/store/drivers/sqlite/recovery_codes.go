package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
)

type recoveryCodesRepo struct {
	db dbtx
}

func (r *recoveryCodesRepo) CreateCode(ctx context.Context, c domain.RecoveryCode) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO recovery_codes (id, user_id, code_hash, used, created_at)
		VALUES (?, ?, ?, 0, ?)`,
		c.ID, c.UserID, c.CodeHash, ms(c.CreatedAt),
	)
	return mapInsertErr(err)
}

func (r *recoveryCodesRepo) ListUnused(ctx context.Context, userID string) ([]domain.RecoveryCode, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, code_hash, used, used_at, created_at
		FROM recovery_codes WHERE user_id = ? AND used = 0
		ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RecoveryCode
	for rows.Next() {
		var (
			c         domain.RecoveryCode
			used      int
			usedAt    sql.NullInt64
			createdAt int64
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.CodeHash, &used, &usedAt, &createdAt); err != nil {
			return nil, err
		}
		c.Used = used != 0
		c.UsedAt = fromNullMs(usedAt)
		c.CreatedAt = fromMs(createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *recoveryCodesRepo) MarkUsed(ctx context.Context, id string, now time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE recovery_codes SET used = 1, used_at = ? WHERE id = ? AND used = 0`,
		ms(now), id)
	return mustAffect(res, err, store.ErrConflict)
}

func (r *recoveryCodesRepo) DeleteAll(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM recovery_codes WHERE user_id = ?`, userID)
	return err
}

func (r *recoveryCodesRepo) CountUnused(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM recovery_codes WHERE user_id = ? AND used = 0`, userID,
	).Scan(&n)
	return n, err
}
