package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
)

// TokenIssuer mints and redeems the emailed single-use tokens. Only the
// SHA-256 fingerprint of a token is ever written down.
type TokenIssuer struct {
	Store store.Store
}

// Issue creates a fresh token for the user and drops any earlier unused
// token of the same purpose, all through st, so a caller holding a Tx gets
// "at most one valid token" atomically.
func (t *TokenIssuer) Issue(
	ctx context.Context,
	st store.Store,
	userID string,
	purpose domain.TokenPurpose,
	ttl time.Duration,
) (string, error) {
	plaintext, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", err
	}

	now := time.Now().UTC()
	if err := st.VerificationTokens().DeleteUnused(ctx, userID, purpose); err != nil {
		return "", fmt.Errorf("failed to drop old %s tokens: %w", purpose, err)
	}

	err = st.VerificationTokens().CreateToken(ctx, domain.VerificationToken{
		ID:        idx.NewAt(now).String(),
		UserID:    userID,
		Purpose:   purpose,
		TokenHash: cryptox.FingerprintToken(plaintext),
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store %s token: %w", purpose, err)
	}

	return plaintext, nil
}

// Peek validates a token without redeeming it.
func (t *TokenIssuer) Peek(ctx context.Context, plaintext string, purpose domain.TokenPurpose) (domain.VerificationToken, error) {
	if plaintext == "" {
		return domain.VerificationToken{}, ErrTokenInvalid
	}

	tok, err := t.Store.VerificationTokens().GetActiveByHash(ctx, cryptox.FingerprintToken(plaintext), purpose, time.Now())
	if errors.Is(err, store.ErrNotFound) {
		return domain.VerificationToken{}, ErrTokenInvalid
	}
	return tok, err
}

// Consume redeems the token through st and returns its owner. Unknown, used
// and expired tokens all come back as ErrTokenInvalid.
func (t *TokenIssuer) Consume(
	ctx context.Context,
	st store.Store,
	plaintext string,
	purpose domain.TokenPurpose,
) (string, error) {
	if plaintext == "" {
		return "", ErrTokenInvalid
	}

	userID, err := st.VerificationTokens().Consume(ctx, cryptox.FingerprintToken(plaintext), purpose, time.Now())
	if errors.Is(err, store.ErrNotFound) {
		return "", ErrTokenInvalid
	}
	return userID, err
}
