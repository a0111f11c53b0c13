package sqlite

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
)

type oauthIdentitiesRepo struct {
	db dbtx
}

func (r *oauthIdentitiesRepo) GetIdentity(ctx context.Context, provider, subject string) (domain.OAuthIdentity, error) {
	var (
		id        domain.OAuthIdentity
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT provider, subject, user_id, email, created_at
		FROM oauth_identities WHERE provider = ? AND subject = ?`,
		provider, subject,
	).Scan(&id.Provider, &id.Subject, &id.UserID, &id.Email, &createdAt)
	if err != nil {
		return domain.OAuthIdentity{}, mapNotFound(err)
	}
	id.CreatedAt = fromMs(createdAt)
	return id, nil
}

func (r *oauthIdentitiesRepo) Link(ctx context.Context, id domain.OAuthIdentity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO oauth_identities (provider, subject, user_id, email, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		id.Provider, id.Subject, id.UserID, id.Email, ms(id.CreatedAt),
	)
	if err = mapInsertErr(err); !errors.Is(err, store.ErrAlreadyExists) {
		return err
	}

	existing, err := r.GetIdentity(ctx, id.Provider, id.Subject)
	if err != nil {
		return err
	}
	if existing.UserID != id.UserID {
		return store.ErrConflict
	}
	return nil
}
