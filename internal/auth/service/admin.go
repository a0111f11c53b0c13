package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

const defaultAdminActivityLimit = 50

// AdminService is the privileged path onto sessions and accounts. Every
// method checks the actor's resolved permissions itself, so it stays safe
// whatever the transport does.
type AdminService struct {
	Store    store.Store
	Sessions *SessionService

	ActivityLimit int
}

// UserSessionsView is what an admin sees for a user. Degraded means the
// activity read failed and the caller should render read-only.
type UserSessionsView struct {
	User     domain.User       `json:"-"`
	Sessions []domain.Session  `json:"sessions"`
	Activity []domain.Activity `json:"activity"`
	Degraded bool              `json:"degraded"`
}

func (s *AdminService) require(actor Actor, perm string) error {
	if !actor.Permissions.Has(perm) {
		return ErrForbidden
	}
	return nil
}

func (s *AdminService) loadUser(ctx context.Context, userID string) (domain.User, error) {
	u, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.User{}, ErrUserNotFound
	}
	return u, err
}

// ListUserSessions returns the user's recent sessions, live and dead, plus
// their recent activity.
func (s *AdminService) ListUserSessions(ctx context.Context, actor Actor, userID string) (UserSessionsView, error) {
	if err := s.require(actor, domain.PermSessionsRead); err != nil {
		return UserSessionsView{}, err
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return UserSessionsView{}, err
	}

	limit := s.ActivityLimit
	if limit <= 0 {
		limit = defaultAdminActivityLimit
	}

	sessions, err := s.Store.Sessions().ListRecent(ctx, userID, limit)
	if err != nil {
		return UserSessionsView{}, err
	}
	for i := range sessions {
		sessions[i].IsCurrent = sessions[i].ID == actor.SessionID
	}

	view := UserSessionsView{User: user, Sessions: sessions, Activity: []domain.Activity{}}

	activity, err := s.Store.Activity().ListForSubject(ctx, userID, limit)
	if err != nil {
		slogx.FromContext(ctx).Warn("admin session view degraded",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
		view.Degraded = true
		return view, nil
	}
	view.Activity = activity
	return view, nil
}

// RevokeUserSession force-ends one session. Revoking a session the actor
// owns needs confirmSelf, otherwise the admin would quietly log themselves
// out.
func (s *AdminService) RevokeUserSession(ctx context.Context, actor Actor, userID, sessionID string, confirmSelf bool) error {
	if err := s.require(actor, domain.PermSessionsWrite); err != nil {
		return err
	}

	sess, err := s.Store.Sessions().GetByID(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && sess.UserID != userID) {
		return ErrSessionNotFound
	}
	if err != nil {
		return err
	}

	if sess.UserID == actor.UserID && !confirmSelf {
		return ErrSelfRevokeConfirmationRequired
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		revoked, err := tx.Sessions().Revoke(ctx, sessionID, userID, time.Now())
		if err != nil {
			return err
		}
		if !revoked {
			return nil
		}
		return record(ctx, tx, domain.ActionAdminSessionRevoked, actor.UserID, userID, actor.Device,
			map[string]string{"sessionId": sessionID})
	})
}

// RevokeAllUserSessions force-ends every session of the user.
func (s *AdminService) RevokeAllUserSessions(ctx context.Context, actor Actor, userID string, confirmSelf bool) (int64, error) {
	if err := s.require(actor, domain.PermSessionsWrite); err != nil {
		return 0, err
	}
	if userID == actor.UserID && !confirmSelf {
		return 0, ErrSelfRevokeConfirmationRequired
	}
	if _, err := s.loadUser(ctx, userID); err != nil {
		return 0, err
	}

	var n int64
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		n, err = s.Sessions.RevokeAll(ctx, tx, userID)
		if err != nil {
			return err
		}
		return record(ctx, tx, domain.ActionAdminSessionsRevoked, actor.UserID, userID, actor.Device,
			map[string]string{"count": strconv.FormatInt(n, 10)})
	})
	return n, err
}

// SetUserStatus changes the account status. Disabling signs the user out
// everywhere.
func (s *AdminService) SetUserStatus(ctx context.Context, actor Actor, userID string, status domain.Status) error {
	if err := s.require(actor, domain.PermUsersWrite); err != nil {
		return err
	}
	if !status.Valid() {
		return ErrInvalidStatus
	}

	return s.mutate(ctx, actor, userID, domain.ActionAdminStatusChanged,
		map[string]string{"status": string(status)},
		status == domain.StatusDisabled,
		func(tx store.Tx) error { return tx.Users().SetStatus(ctx, userID, status) },
	)
}

// SetUserRole changes the role. Suspending or banning signs the user out
// everywhere.
func (s *AdminService) SetUserRole(ctx context.Context, actor Actor, userID string, role domain.Role) error {
	if err := s.require(actor, domain.PermUsersWrite); err != nil {
		return err
	}
	if !role.Valid() {
		return ErrInvalidRole
	}

	return s.mutate(ctx, actor, userID, domain.ActionAdminRoleChanged,
		map[string]string{"role": string(role)},
		role == domain.RoleSuspended || role == domain.RoleBanned,
		func(tx store.Tx) error { return tx.Users().SetRole(ctx, userID, role) },
	)
}

// SetUserPermissions stores an override list; nil goes back to the role
// grant.
func (s *AdminService) SetUserPermissions(ctx context.Context, actor Actor, userID string, perms []string) error {
	if err := s.require(actor, domain.PermUsersWrite); err != nil {
		return err
	}
	for _, p := range perms {
		if !domain.IsPermission(p) {
			return fmt.Errorf("%w: %q", ErrInvalidPermission, p)
		}
	}

	meta := map[string]string{"permissions": "role"}
	if perms != nil {
		meta["permissions"] = fmt.Sprint(perms)
	}
	return s.mutate(ctx, actor, userID, domain.ActionAdminPermsChanged, meta, false,
		func(tx store.Tx) error { return tx.Users().SetPermissions(ctx, userID, perms) },
	)
}

// SetFeatureFlag flips a flag only if it still holds expected. A lost race
// returns a *FeatureFlagConflictError with the current value.
func (s *AdminService) SetFeatureFlag(ctx context.Context, actor Actor, userID, flag string, expected, value bool) (bool, error) {
	if err := s.require(actor, domain.PermUsersWrite); err != nil {
		return false, err
	}
	if !ValidFlagName(flag) {
		return false, ErrInvalidFlag
	}
	if _, err := s.loadUser(ctx, userID); err != nil {
		return false, err
	}

	var current bool
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		current, err = tx.Users().CompareAndSetFeatureFlag(ctx, userID, flag, expected, value)
		if errors.Is(err, store.ErrConflict) {
			return &FeatureFlagConflictError{Flag: flag, Current: current}
		}
		if err != nil {
			return err
		}
		return record(ctx, tx, domain.ActionAdminFlagChanged, actor.UserID, userID, actor.Device,
			map[string]string{"flag": flag, "value": strconv.FormatBool(value)})
	})
	if err != nil {
		return current, err
	}
	return current, nil
}

// SoftDeleteUser stamps the account deleted and signs it out everywhere.
// The row stays for audit.
func (s *AdminService) SoftDeleteUser(ctx context.Context, actor Actor, userID, reason string) error {
	if err := s.require(actor, domain.PermUsersWrite); err != nil {
		return err
	}

	return s.mutate(ctx, actor, userID, domain.ActionAdminUserDeleted,
		map[string]string{"reason": reason}, true,
		func(tx store.Tx) error {
			err := tx.Users().SoftDelete(ctx, userID, reason)
			if errors.Is(err, store.ErrConflict) {
				return ErrUserNotFound
			}
			return err
		},
	)
}

// mutate runs an account change, the optional session sweep and the audit
// row in one transaction.
func (s *AdminService) mutate(
	ctx context.Context,
	actor Actor,
	userID, action string,
	meta map[string]string,
	revokeSessions bool,
	fn func(tx store.Tx) error,
) error {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsDeleted() {
		return ErrUserNotFound
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := fn(tx); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if revokeSessions {
			n, err := s.Sessions.RevokeAll(ctx, tx, userID)
			if err != nil {
				return err
			}
			meta["revokedSessions"] = strconv.FormatInt(n, 10)
		}

		return record(ctx, tx, action, actor.UserID, userID, actor.Device, meta)
	})
}
