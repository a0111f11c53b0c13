package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrConflict is returned when a conditional update touched no rows: the
	// credential was already used, the session already revoked, the flag
	// no longer held the expected value.
	ErrConflict = errors.New("store: conflict")
)

// Store is the root data access interface. Concrete drivers implement this.
// Sub-repositories are exposed as methods so a Tx can hand out the same
// repositories bound to the transaction, and so nobody opens a transaction
// inside a transaction.
type Store interface {
	Users() Users
	VerificationTokens() VerificationTokens
	TwoFactor() TwoFactor
	RecoveryCodes() RecoveryCodes
	TwoFactorTickets() TwoFactorTickets
	Sessions() Sessions
	OAuthIdentities() OAuthIdentities
	OAuthTickets() OAuthTickets
	Activity() Activity

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction, committing when fn returns
	// nil and rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user. A duplicate email is ErrAlreadyExists.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByID returns a user by id, soft-deleted users included.
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively and never returns
	// soft-deleted users.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	UpdatePasswordHash(ctx context.Context, userID, hash string) error

	// ActivateUser flips pending_verification to active. Any other starting
	// status is ErrConflict.
	ActivateUser(ctx context.Context, userID string) error

	SetStatus(ctx context.Context, userID string, status domain.Status) error
	SetRole(ctx context.Context, userID string, role domain.Role) error

	// SetPermissions stores an override list; nil clears it so the role
	// grant applies again.
	SetPermissions(ctx context.Context, userID string, perms []string) error

	// CompareAndSetFeatureFlag writes value only if the flag currently reads
	// expected. On mismatch it returns the current value and ErrConflict.
	CompareAndSetFeatureFlag(ctx context.Context, userID, flag string, expected, value bool) (bool, error)

	// SoftDelete stamps deleted_at and the reason. Deleting twice is ErrConflict.
	SoftDelete(ctx context.Context, userID, reason string) error

	// IsEmpty returns true if there are no users, deleted ones included.
	IsEmpty(ctx context.Context) (bool, error)
}

type VerificationTokens interface {
	CreateToken(ctx context.Context, t domain.VerificationToken) error

	// DeleteUnused removes every unused token of the purpose for the user, so
	// issuing a fresh one leaves at most one redeemable.
	DeleteUnused(ctx context.Context, userID string, purpose domain.TokenPurpose) error

	// GetActiveByHash returns an unused, unexpired token without consuming it.
	GetActiveByHash(ctx context.Context, hash string, purpose domain.TokenPurpose, now time.Time) (domain.VerificationToken, error)

	// Consume marks the token used in one conditional update and returns the
	// owning user. Unknown, used and expired tokens are all ErrNotFound.
	Consume(ctx context.Context, hash string, purpose domain.TokenPurpose, now time.Time) (string, error)

	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type TwoFactor interface {
	Get(ctx context.Context, userID string) (domain.TwoFactor, error)

	// UpsertPending stores a new unconfirmed secret, replacing any earlier
	// unconfirmed one. When 2FA is already enabled it is ErrConflict.
	UpsertPending(ctx context.Context, userID string, secretEnc []byte, now time.Time) error

	// Enable promotes the pending record and records the step that proved it.
	Enable(ctx context.Context, userID string, step int64, now time.Time) error

	// AdvanceStep records step as the last accepted one, only if it is newer
	// than what is stored. A replayed step is ErrConflict.
	AdvanceStep(ctx context.Context, userID string, step int64, now time.Time) error

	Delete(ctx context.Context, userID string) error
}

type RecoveryCodes interface {
	CreateCode(ctx context.Context, c domain.RecoveryCode) error
	ListUnused(ctx context.Context, userID string) ([]domain.RecoveryCode, error)

	// MarkUsed is the single-use guard: UPDATE ... WHERE id=? AND used=0.
	// ErrConflict when another request got there first.
	MarkUsed(ctx context.Context, id string, now time.Time) error

	DeleteAll(ctx context.Context, userID string) error
	CountUnused(ctx context.Context, userID string) (int, error)
}

type TwoFactorTickets interface {
	CreateTicket(ctx context.Context, t domain.TwoFactorTicket) error
	GetTicket(ctx context.Context, id string) (domain.TwoFactorTicket, error)

	// Consume marks the ticket used if it is still open and unexpired.
	// ErrConflict otherwise.
	Consume(ctx context.Context, id string, now time.Time) error

	// CloseOpenForUser consumes every open ticket for the user; a new login
	// supersedes any half finished one.
	CloseOpenForUser(ctx context.Context, userID string, now time.Time) error

	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Sessions interface {
	// CreateSession inserts a session; a token fingerprint collision is
	// ErrAlreadyExists.
	CreateSession(ctx context.Context, s domain.Session) error

	GetByTokenHash(ctx context.Context, hash string) (domain.Session, error)
	GetByID(ctx context.Context, id string) (domain.Session, error)

	// ListByUser returns every stored session of the user, revoked and
	// expired ones included, most recently seen first.
	ListByUser(ctx context.Context, userID string) ([]domain.Session, error)

	// ListRecent is ListByUser capped at limit rows.
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.Session, error)

	// Revoke sets revoked_at on the session only if it belongs to userID and
	// is not already revoked. It reports whether a row changed.
	Revoke(ctx context.Context, id, userID string, now time.Time) (bool, error)

	// RevokeAllExcept revokes every live session of the user except
	// exceptID (empty revokes all) in a single statement.
	RevokeAllExcept(ctx context.Context, userID, exceptID string, now time.Time) (int64, error)

	// Touch bumps last_seen_at if it is older than now-minInterval.
	Touch(ctx context.Context, id string, now time.Time, minInterval time.Duration) error

	// DeleteExpiredBefore purges sessions whose expiry is older than cutoff.
	DeleteExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type OAuthIdentities interface {
	GetIdentity(ctx context.Context, provider, subject string) (domain.OAuthIdentity, error)

	// Link is idempotent for the same user. Linking an identity that already
	// belongs to someone else is ErrConflict.
	Link(ctx context.Context, id domain.OAuthIdentity) error
}

type OAuthTickets interface {
	CreateTicket(ctx context.Context, t domain.OAuthTicket) error

	// Consume atomically marks the ticket used and returns it. Unknown,
	// consumed and expired tickets are ErrNotFound.
	Consume(ctx context.Context, id string, now time.Time) (domain.OAuthTicket, error)

	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Activity interface {
	Record(ctx context.Context, a domain.Activity) error
	ListForSubject(ctx context.Context, subjectID string, limit int) ([]domain.Activity, error)
}

// AttemptCounter counts failed second-factor attempts per ticket. The window
// starts at the first failure and is independent of the ticket's own TTL.
type AttemptCounter interface {
	// Attempts returns the failures recorded inside the current window.
	Attempts(ctx context.Context, key string) (int, error)

	// Increment atomically adds one failure and returns the new count.
	Increment(ctx context.Context, key string) (int, error)

	Reset(ctx context.Context, key string) error

	// PurgeExpired drops counters whose window has closed. Backends with
	// native expiry return 0.
	PurgeExpired(ctx context.Context) (int64, error)
}
