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

type usersRepo struct {
	db dbtx
}

const userColumns = `id, email, password_hash, role, status, terms_accepted_at, terms_version,
	permissions, feature_flags, deleted_at, deleted_reason, created_at, updated_at`

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	perms, err := encodePermissions(u.Permissions)
	if err != nil {
		return err
	}
	flags, err := encodeFlags(u.FeatureFlags)
	if err != nil {
		return err
	}

	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, role, status, terms_accepted_at, terms_version,
			permissions, feature_flags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.PasswordHash, string(u.Role), string(u.Status),
		nullMs(u.TermsAcceptedAt), u.TermsVersion, perms, flags,
		ms(u.CreatedAt), ms(u.UpdatedAt),
	)
	return mapInsertErr(err)
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (r *usersRepo) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = ? AND deleted_at IS NULL`, email)
	return scanUser(row)
}

func (r *usersRepo) UpdatePasswordHash(ctx context.Context, userID, hash string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = ?, updated_at = ? WHERE id = ?`,
		hash, ms(time.Now()), userID)
	return mustAffect(res, err, store.ErrNotFound)
}

func (r *usersRepo) ActivateUser(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = ?, updated_at = ? WHERE id = ? AND status = ?`,
		string(domain.StatusActive), ms(time.Now()), userID, string(domain.StatusPendingVerification))
	return mustAffect(res, err, store.ErrConflict)
}

func (r *usersRepo) SetStatus(ctx context.Context, userID string, status domain.Status) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), ms(time.Now()), userID)
	return mustAffect(res, err, store.ErrNotFound)
}

func (r *usersRepo) SetRole(ctx context.Context, userID string, role domain.Role) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = ?, updated_at = ? WHERE id = ?`,
		string(role), ms(time.Now()), userID)
	return mustAffect(res, err, store.ErrNotFound)
}

func (r *usersRepo) SetPermissions(ctx context.Context, userID string, perms []string) error {
	enc, err := encodePermissions(perms)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET permissions = ?, updated_at = ? WHERE id = ?`,
		enc, ms(time.Now()), userID)
	return mustAffect(res, err, store.ErrNotFound)
}

// CompareAndSetFeatureFlag relies on json_extract returning NULL for a
// missing key, which coalesces to false. The flag name is interpolated
// into a JSON path so callers must have validated it.
func (r *usersRepo) CompareAndSetFeatureFlag(
	ctx context.Context,
	userID, flag string,
	expected, value bool,
) (bool, error) {
	path := "$." + flag

	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET feature_flags = json_set(feature_flags, ?, json(?)), updated_at = ?
		WHERE id = ? AND COALESCE(json_extract(feature_flags, ?), 0) = ?`,
		path, boolJSON(value), ms(time.Now()), userID, path, boolInt(expected),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if n == 1 {
		return value, nil
	}

	var current sql.NullInt64
	err = r.db.QueryRowContext(ctx,
		`SELECT json_extract(feature_flags, ?) FROM users WHERE id = ?`, path, userID,
	).Scan(&current)
	if err != nil {
		return false, mapNotFound(err)
	}
	return current.Valid && current.Int64 != 0, store.ErrConflict
}

func (r *usersRepo) SoftDelete(ctx context.Context, userID, reason string) error {
	now := ms(time.Now())
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET deleted_at = ?, deleted_reason = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL`,
		now, reason, now, userID)
	return mustAffect(res, err, store.ErrConflict)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (domain.User, error) {
	var (
		u         domain.User
		role      string
		status    string
		termsAt   sql.NullInt64
		perms     sql.NullString
		flags     string
		deletedAt sql.NullInt64
		createdAt int64
		updatedAt int64
	)
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &role, &status, &termsAt, &u.TermsVersion,
		&perms, &flags, &deletedAt, &u.DeletedReason, &createdAt, &updatedAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}

	u.Role = domain.Role(role)
	u.Status = domain.Status(status)
	u.TermsAcceptedAt = fromNullMs(termsAt)
	u.DeletedAt = fromNullMs(deletedAt)
	u.CreatedAt = fromMs(createdAt)
	u.UpdatedAt = fromMs(updatedAt)

	if perms.Valid {
		u.Permissions = []string{}
		if err := json.Unmarshal([]byte(perms.String), &u.Permissions); err != nil {
			return domain.User{}, fmt.Errorf("sqlite: decode permissions: %w", err)
		}
	}

	u.FeatureFlags = map[string]bool{}
	if flags != "" {
		if err := json.Unmarshal([]byte(flags), &u.FeatureFlags); err != nil {
			return domain.User{}, fmt.Errorf("sqlite: decode feature flags: %w", err)
		}
	}
	return u, nil
}

func encodePermissions(perms []string) (sql.NullString, error) {
	if perms == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(perms)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func encodeFlags(flags map[string]bool) (string, error) {
	if len(flags) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(flags)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func boolJSON(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

func (r *usersRepo) IsEmpty(ctx context.Context) (bool, error) {
	var exists int
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users)`).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists == 0, nil
}
