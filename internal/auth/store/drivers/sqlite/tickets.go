package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
)

type twoFactorTicketsRepo struct {
	db dbtx
}

func (r *twoFactorTicketsRepo) CreateTicket(ctx context.Context, t domain.TwoFactorTicket) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO two_factor_tickets (id, user_id, expires_at, created_at)
		VALUES (?, ?, ?, ?)`,
		t.ID, t.UserID, ms(t.ExpiresAt), ms(t.CreatedAt),
	)
	return mapInsertErr(err)
}

func (r *twoFactorTicketsRepo) GetTicket(ctx context.Context, id string) (domain.TwoFactorTicket, error) {
	var (
		t          domain.TwoFactorTicket
		expiresAt  int64
		consumedAt sql.NullInt64
		createdAt  int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, expires_at, consumed_at, created_at
		FROM two_factor_tickets WHERE id = ?`, id,
	).Scan(&t.ID, &t.UserID, &expiresAt, &consumedAt, &createdAt)
	if err != nil {
		return domain.TwoFactorTicket{}, mapNotFound(err)
	}
	t.ExpiresAt = fromMs(expiresAt)
	t.ConsumedAt = fromNullMs(consumedAt)
	t.CreatedAt = fromMs(createdAt)
	return t, nil
}

func (r *twoFactorTicketsRepo) Consume(ctx context.Context, id string, now time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE two_factor_tickets SET consumed_at = ?
		WHERE id = ? AND consumed_at IS NULL AND expires_at > ?`,
		ms(now), id, ms(now))
	return mustAffect(res, err, store.ErrConflict)
}

func (r *twoFactorTicketsRepo) CloseOpenForUser(ctx context.Context, userID string, now time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE two_factor_tickets SET consumed_at = ? WHERE user_id = ? AND consumed_at IS NULL`,
		ms(now), userID)
	return err
}

func (r *twoFactorTicketsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return affected(r.db.ExecContext(ctx,
		`DELETE FROM two_factor_tickets WHERE expires_at <= ? OR consumed_at IS NOT NULL`, ms(now)))
}

type oauthTicketsRepo struct {
	db dbtx
}

func (r *oauthTicketsRepo) CreateTicket(ctx context.Context, t domain.OAuthTicket) error {
	claims, err := json.Marshal(t.Claims)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO oauth_tickets (id, provider, subject, claims, expires_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		t.ID, t.Claims.Provider, t.Claims.Subject, string(claims), ms(t.ExpiresAt), ms(t.CreatedAt),
	)
	return mapInsertErr(err)
}

func (r *oauthTicketsRepo) Consume(ctx context.Context, id string, now time.Time) (domain.OAuthTicket, error) {
	var (
		t          domain.OAuthTicket
		claims     string
		expiresAt  int64
		consumedAt sql.NullInt64
		createdAt  int64
	)
	err := r.db.QueryRowContext(ctx, `
		UPDATE oauth_tickets SET consumed_at = ?
		WHERE id = ? AND consumed_at IS NULL AND expires_at > ?
		RETURNING id, claims, expires_at, consumed_at, created_at`,
		ms(now), id, ms(now),
	).Scan(&t.ID, &claims, &expiresAt, &consumedAt, &createdAt)
	if err != nil {
		return domain.OAuthTicket{}, mapNotFound(err)
	}

	if err := json.Unmarshal([]byte(claims), &t.Claims); err != nil {
		return domain.OAuthTicket{}, fmt.Errorf("sqlite: decode oauth claims: %w", err)
	}
	t.ExpiresAt = fromMs(expiresAt)
	t.ConsumedAt = fromNullMs(consumedAt)
	t.CreatedAt = fromMs(createdAt)
	return t, nil
}

func (r *oauthTicketsRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return affected(r.db.ExecContext(ctx,
		`DELETE FROM oauth_tickets WHERE expires_at <= ? OR consumed_at IS NOT NULL`, ms(now)))
}
