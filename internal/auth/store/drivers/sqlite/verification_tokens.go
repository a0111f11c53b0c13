package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

type verificationTokensRepo struct {
	db dbtx
}

func (r *verificationTokensRepo) CreateToken(ctx context.Context, t domain.VerificationToken) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO verification_tokens (id, user_id, purpose, token_hash, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Purpose), t.TokenHash, ms(t.ExpiresAt), ms(t.CreatedAt),
	)
	return mapInsertErr(err)
}

func (r *verificationTokensRepo) DeleteUnused(ctx context.Context, userID string, purpose domain.TokenPurpose) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE user_id = ? AND purpose = ? AND used_at IS NULL`,
		userID, string(purpose))
	return err
}

func (r *verificationTokensRepo) GetActiveByHash(
	ctx context.Context,
	hash string,
	purpose domain.TokenPurpose,
	now time.Time,
) (domain.VerificationToken, error) {
	var (
		t         domain.VerificationToken
		p         string
		expiresAt int64
		usedAt    sql.NullInt64
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, purpose, token_hash, expires_at, used_at, created_at
		FROM verification_tokens
		WHERE token_hash = ? AND purpose = ? AND used_at IS NULL AND expires_at > ?`,
		hash, string(purpose), ms(now),
	).Scan(&t.ID, &t.UserID, &p, &t.TokenHash, &expiresAt, &usedAt, &createdAt)
	if err != nil {
		return domain.VerificationToken{}, mapNotFound(err)
	}

	t.Purpose = domain.TokenPurpose(p)
	t.ExpiresAt = fromMs(expiresAt)
	t.UsedAt = fromNullMs(usedAt)
	t.CreatedAt = fromMs(createdAt)
	return t, nil
}

func (r *verificationTokensRepo) Consume(
	ctx context.Context,
	hash string,
	purpose domain.TokenPurpose,
	now time.Time,
) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx, `
		UPDATE verification_tokens SET used_at = ?
		WHERE token_hash = ? AND purpose = ? AND used_at IS NULL AND expires_at > ?
		RETURNING user_id`,
		ms(now), hash, string(purpose), ms(now),
	).Scan(&userID)
	if err != nil {
		return "", mapNotFound(err)
	}
	return userID, nil
}

func (r *verificationTokensRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return affected(r.db.ExecContext(ctx,
		`DELETE FROM verification_tokens WHERE expires_at <= ? OR used_at IS NOT NULL`, ms(now)))
}
