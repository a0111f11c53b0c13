package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // caller will commit/rollback and outer DB stays open

// Ping is a no-op for transactions, the connection is already held.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users { return &usersRepo{db: t.tx} }
func (t *txStore) VerificationTokens() store.VerificationTokens {
	return &verificationTokensRepo{db: t.tx}
}
func (t *txStore) TwoFactor() store.TwoFactor               { return &twoFactorRepo{db: t.tx} }
func (t *txStore) RecoveryCodes() store.RecoveryCodes       { return &recoveryCodesRepo{db: t.tx} }
func (t *txStore) TwoFactorTickets() store.TwoFactorTickets { return &twoFactorTicketsRepo{db: t.tx} }
func (t *txStore) Sessions() store.Sessions                 { return &sessionsRepo{db: t.tx} }
func (t *txStore) OAuthIdentities() store.OAuthIdentities   { return &oauthIdentitiesRepo{db: t.tx} }
func (t *txStore) OAuthTickets() store.OAuthTickets         { return &oauthTicketsRepo{db: t.tx} }
func (t *txStore) Activity() store.Activity                 { return &activityRepo{db: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // migrations run before any tx is opened
