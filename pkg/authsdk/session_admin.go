package authsdk

import (
	"context"
	"errors"
	"maps"
	"net/http"
	"net/url"
)

func adminUserPath(userID string) string {
	return "/admin/users/" + url.PathEscape(userID)
}

// AdminUserSessions returns an admin's view of a user's sessions. It also
// refreshes the flag state SetFeatureFlag works from.
func (s *Session) AdminUserSessions(ctx context.Context, userID string) (*AdminSessionsView, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, adminUserPath(userID)+"/sessions", nil)
	if err != nil {
		return nil, err
	}
	view, err := decodeData[AdminSessionsView](resp)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.flags[userID] = maps.Clone(view.User.FeatureFlags)
	if s.flags[userID] == nil {
		s.flags[userID] = map[string]bool{}
	}
	s.mu.Unlock()

	return &view, nil
}

// AdminRevokeSession force-ends one session of a user. confirmSelf must be
// set when the session is the caller's own.
func (s *Session) AdminRevokeSession(ctx context.Context, userID, sessionID string, confirmSelf bool) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost,
		adminUserPath(userID)+"/sessions/"+url.PathEscape(sessionID)+"/revoke",
		AdminRevokeRequest{ConfirmSelf: confirmSelf})
	if err != nil {
		return err
	}
	return checkOK(resp)
}

// AdminRevokeAllSessions force-ends every session of a user.
func (s *Session) AdminRevokeAllSessions(ctx context.Context, userID string, confirmSelf bool) (int64, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, adminUserPath(userID)+"/sessions/revoke-all",
		AdminRevokeRequest{ConfirmSelf: confirmSelf})
	if err != nil {
		return 0, err
	}
	res, err := decodeData[RevokeResult](resp)
	return res.Revoked, err
}

// SetUserStatus changes a user's account status.
func (s *Session) SetUserStatus(ctx context.Context, userID, status string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, adminUserPath(userID)+"/status", StatusRequest{Status: status})
	if err != nil {
		return err
	}
	return checkOK(resp)
}

// SetUserRole changes a user's role.
func (s *Session) SetUserRole(ctx context.Context, userID, role string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPut, adminUserPath(userID)+"/role", RoleRequest{Role: role})
	if err != nil {
		return err
	}
	return checkOK(resp)
}

// Flag returns the last known value of a user's flag.
func (s *Session) Flag(userID, flag string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flags[userID][flag]
}

// SetFeatureFlag sets a user's flag optimistically: the local view changes
// first and is rolled back if the server refuses. On a conflict the local
// view takes the value the server reported instead.
func (s *Session) SetFeatureFlag(ctx context.Context, userID, flag string, value bool) error {
	s.mu.Lock()
	if s.flags[userID] == nil {
		s.flags[userID] = map[string]bool{}
	}
	previous := s.flags[userID][flag]
	s.flags[userID][flag] = value
	s.mu.Unlock()

	err := s.putFlag(ctx, userID, flag, previous, value)
	if err == nil {
		return nil
	}

	rollback := previous
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Code == CodeFeatureFlagConflict && apiErr.Current != nil {
		rollback = *apiErr.Current
	}

	s.mu.Lock()
	s.flags[userID][flag] = rollback
	s.mu.Unlock()
	return err
}

func (s *Session) putFlag(ctx context.Context, userID, flag string, expected, value bool) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPatch,
		adminUserPath(userID)+"/flags/"+url.PathEscape(flag),
		FeatureFlagRequest{Expected: &expected, Value: &value})
	if err != nil {
		return err
	}
	return checkOK(resp)
}
