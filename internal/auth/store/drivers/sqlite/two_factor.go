package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
)

type twoFactorRepo struct {
	db dbtx
}

func (r *twoFactorRepo) Get(ctx context.Context, userID string) (domain.TwoFactor, error) {
	var (
		tf          domain.TwoFactor
		enabled     int
		confirmedAt sql.NullInt64
		enabledAt   sql.NullInt64
		createdAt   int64
		updatedAt   int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, secret_enc, enabled, confirmed_at, enabled_at, last_used_step, created_at, updated_at
		FROM user_two_factor WHERE user_id = ?`, userID,
	).Scan(&tf.UserID, &tf.SecretEnc, &enabled, &confirmedAt, &enabledAt, &tf.LastUsedStep, &createdAt, &updatedAt)
	if err != nil {
		return domain.TwoFactor{}, mapNotFound(err)
	}

	tf.Enabled = enabled != 0
	tf.ConfirmedAt = fromNullMs(confirmedAt)
	tf.EnabledAt = fromNullMs(enabledAt)
	tf.CreatedAt = fromMs(createdAt)
	tf.UpdatedAt = fromMs(updatedAt)
	return tf, nil
}

func (r *twoFactorRepo) UpsertPending(ctx context.Context, userID string, secretEnc []byte, now time.Time) error {
	// The WHERE on the upsert leaves an enabled record untouched, which
	// shows up as zero rows affected.
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO user_two_factor (user_id, secret_enc, enabled, last_used_step, created_at, updated_at)
		VALUES (?, ?, 0, 0, ?, ?)
		ON CONFLICT (user_id) DO UPDATE
		SET secret_enc = excluded.secret_enc, last_used_step = 0, updated_at = excluded.updated_at
		WHERE user_two_factor.enabled = 0`,
		userID, secretEnc, ms(now), ms(now),
	)
	return mustAffect(res, err, store.ErrConflict)
}

func (r *twoFactorRepo) Enable(ctx context.Context, userID string, step int64, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_two_factor
		SET enabled = 1, confirmed_at = ?, enabled_at = ?, last_used_step = ?, updated_at = ?
		WHERE user_id = ? AND enabled = 0`,
		ms(now), ms(now), step, ms(now), userID,
	)
	return mustAffect(res, err, store.ErrConflict)
}

func (r *twoFactorRepo) AdvanceStep(ctx context.Context, userID string, step int64, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE user_two_factor SET last_used_step = ?, updated_at = ?
		WHERE user_id = ? AND enabled = 1 AND last_used_step < ?`,
		step, ms(now), userID, step,
	)
	return mustAffect(res, err, store.ErrConflict)
}

func (r *twoFactorRepo) Delete(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM user_two_factor WHERE user_id = ?`, userID)
	return err
}
