package authsdk

import (
	"context"
	"net/http"
	"net/url"
)

// Sessions lists all of the caller's sessions; revoked ones carry RevokedAt.
func (s *Session) Sessions(ctx context.Context) ([]SessionInfo, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/user/security/sessions", nil)
	if err != nil {
		return nil, err
	}
	return decodeData[[]SessionInfo](resp)
}

// RevokeSession ends one of the caller's sessions. Revoking the current one
// is allowed and behaves like Logout on the next request.
func (s *Session) RevokeSession(ctx context.Context, sessionID string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost,
		"/user/security/sessions/"+url.PathEscape(sessionID)+"/revoke", nil)
	if err != nil {
		return err
	}
	return checkOK(resp)
}

// RevokeOtherSessions ends every session except this one.
func (s *Session) RevokeOtherSessions(ctx context.Context) (int64, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/user/security/sessions/revoke-others", nil)
	if err != nil {
		return 0, err
	}
	res, err := decodeData[RevokeResult](resp)
	return res.Revoked, err
}

// ChangePassword sets a new password; other sessions are signed out.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/password/change",
		ChangePasswordRequest{CurrentPassword: current, NewPassword: next})
	if err != nil {
		return err
	}
	return checkOK(resp)
}

// TwoFactorStatus reports whether a second factor is configured.
func (s *Session) TwoFactorStatus(ctx context.Context) (*TwoFactorStatus, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/user/security/2fa", nil)
	if err != nil {
		return nil, err
	}
	st, err := decodeData[TwoFactorStatus](resp)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// StartTwoFactorSetup returns a fresh secret to load into an authenticator.
func (s *Session) StartTwoFactorSetup(ctx context.Context) (*TwoFactorSetup, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/user/security/2fa/setup", nil)
	if err != nil {
		return nil, err
	}
	setup, err := decodeData[TwoFactorSetup](resp)
	if err != nil {
		return nil, err
	}
	return &setup, nil
}

// ConfirmTwoFactorSetup enables 2FA and returns the recovery codes.
func (s *Session) ConfirmTwoFactorSetup(ctx context.Context, code string) ([]string, error) {
	return s.recoveryCodes(ctx, "/user/security/2fa/confirm", code)
}

// RegenerateRecoveryCodes replaces every recovery code after a TOTP check.
func (s *Session) RegenerateRecoveryCodes(ctx context.Context, code string) ([]string, error) {
	return s.recoveryCodes(ctx, "/user/security/2fa/recovery-codes", code)
}

// DisableTwoFactor removes the second factor.
func (s *Session) DisableTwoFactor(ctx context.Context) error {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/user/security/2fa/disable", nil)
	if err != nil {
		return err
	}
	return checkOK(resp)
}

func (s *Session) recoveryCodes(ctx context.Context, path, code string) ([]string, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, path, CodeRequest{Code: code})
	if err != nil {
		return nil, err
	}
	rc, err := decodeData[RecoveryCodes](resp)
	return rc.Codes, err
}
