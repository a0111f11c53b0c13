package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultSessionTTL    = 30 * 24 * time.Hour
	DefaultTouchInterval = time.Minute

	// sessionCreateAttempts bounds retries on a token fingerprint collision.
	sessionCreateAttempts = 3
)

type SessionService struct {
	Store         store.Store
	TTL           time.Duration
	TouchInterval time.Duration
}

func (s *SessionService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultSessionTTL
	}
	return s.TTL
}

func (s *SessionService) touchInterval() time.Duration {
	if s.TouchInterval <= 0 {
		return DefaultTouchInterval
	}
	return s.TouchInterval
}

// Create inserts a new session through st and returns it along with the
// opaque token, which is not stored anywhere.
func (s *SessionService) Create(
	ctx context.Context,
	st store.Store,
	userID string,
	device domain.DeviceInfo,
) (domain.Session, string, error) {
	now := time.Now().UTC()

	for range sessionCreateAttempts {
		token, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return domain.Session{}, "", err
		}

		sess := domain.Session{
			ID:          idx.NewAt(now).String(),
			UserID:      userID,
			TokenHash:   cryptox.FingerprintToken(token),
			UserAgent:   truncate(device.UserAgent, 512),
			IP:          device.IP,
			DeviceHash:  cryptox.FingerprintToken(device.UserAgent),
			DeviceLabel: DeviceLabel(device.UserAgent),
			CreatedAt:   now,
			LastSeenAt:  now,
			ExpiresAt:   now.Add(s.ttl()),
		}

		err = st.Sessions().CreateSession(ctx, sess)
		if errors.Is(err, store.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return domain.Session{}, "", fmt.Errorf("failed to create session: %w", err)
		}
		return sess, token, nil
	}

	return domain.Session{}, "", errors.New("failed to create session: token collision")
}

// Resolve maps an opaque token to its live session and user. The lookup is
// a pure read, so transient storage failures are retried with backoff;
// anything that means "no such session" is not.
func (s *SessionService) Resolve(ctx context.Context, token string) (domain.Session, domain.User, error) {
	if token == "" {
		return domain.Session{}, domain.User{}, ErrUnauthenticated
	}
	hash := cryptox.FingerprintToken(token)

	var (
		sess domain.Session
		user domain.User
	)
	op := func() error {
		var err error
		sess, err = s.Store.Sessions().GetByTokenHash(ctx, hash)
		if errors.Is(err, store.ErrNotFound) {
			return backoff.Permanent(ErrUnauthenticated)
		}
		if err != nil {
			return err
		}

		user, err = s.Store.Users().GetUserByID(ctx, sess.UserID)
		if errors.Is(err, store.ErrNotFound) {
			return backoff.Permanent(ErrUnauthenticated)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 20 * time.Millisecond
	policy.MaxElapsedTime = time.Second

	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(policy, 3), ctx)); err != nil {
		return domain.Session{}, domain.User{}, err
	}

	if !sess.Active(time.Now()) {
		return domain.Session{}, domain.User{}, ErrUnauthenticated
	}
	if err := checkGates(user); err != nil {
		return domain.Session{}, domain.User{}, ErrUnauthenticated
	}

	return sess, user, nil
}

// List returns all of the user's sessions, most recently seen first, with
// IsCurrent set on the one currentSessionID names. Revoked and expired rows
// stay listed until housekeeping purges them.
func (s *SessionService) List(ctx context.Context, userID, currentSessionID string) ([]domain.Session, error) {
	sessions, err := s.Store.Sessions().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		sessions[i].IsCurrent = sessions[i].ID == currentSessionID
	}
	return sessions, nil
}

// Revoke ends one of the user's own sessions. Revoking an already revoked
// session succeeds; a session belonging to someone else looks like it does
// not exist.
func (s *SessionService) Revoke(ctx context.Context, userID, sessionID string, device domain.DeviceInfo) error {
	revoked, err := s.Store.Sessions().Revoke(ctx, sessionID, userID, time.Now())
	if err != nil {
		return err
	}

	if !revoked {
		sess, err := s.Store.Sessions().GetByID(ctx, sessionID)
		if errors.Is(err, store.ErrNotFound) || (err == nil && sess.UserID != userID) {
			return ErrSessionNotFound
		}
		return err
	}

	recordBestEffort(ctx, s.Store, domain.ActionSessionRevoked, userID, userID, device,
		map[string]string{"sessionId": sessionID})
	return nil
}

// RevokeAllOthers revokes every other live session of the user in one
// statement and reports how many were revoked.
func (s *SessionService) RevokeAllOthers(ctx context.Context, userID, currentSessionID string, device domain.DeviceInfo) (int64, error) {
	n, err := s.Store.Sessions().RevokeAllExcept(ctx, userID, currentSessionID, time.Now())
	if err != nil {
		return 0, err
	}

	recordBestEffort(ctx, s.Store, domain.ActionSessionsRevokedOther, userID, userID, device,
		map[string]string{"count": fmt.Sprint(n)})
	return n, nil
}

// RevokeAll revokes every live session of the user through st.
func (s *SessionService) RevokeAll(ctx context.Context, st store.Store, userID string) (int64, error) {
	return st.Sessions().RevokeAllExcept(ctx, userID, "", time.Now())
}

// Touch records that the session was just used. It never fails the request.
func (s *SessionService) Touch(ctx context.Context, sessionID string) {
	if err := s.Store.Sessions().Touch(ctx, sessionID, time.Now(), s.touchInterval()); err != nil {
		slogx.FromContext(ctx).Warn("failed to touch session",
			slog.String("session_id", sessionID),
			slog.Any("error", err),
		)
	}
}

// DeviceLabel turns a user agent into something a person recognises in a
// session list, e.g. "Firefox on Linux".
func DeviceLabel(userAgent string) string {
	ua := strings.ToLower(userAgent)
	if ua == "" {
		return "Unknown device"
	}

	browser := "Unknown browser"
	switch {
	case strings.Contains(ua, "edg/"):
		browser = "Edge"
	case strings.Contains(ua, "opr/"), strings.Contains(ua, "opera"):
		browser = "Opera"
	case strings.Contains(ua, "firefox/"):
		browser = "Firefox"
	case strings.Contains(ua, "chrome/"), strings.Contains(ua, "crios/"):
		browser = "Chrome"
	case strings.Contains(ua, "safari/"):
		browser = "Safari"
	case strings.Contains(ua, "curl/"):
		browser = "curl"
	case strings.Contains(ua, "go-http-client"):
		browser = "Go client"
	}

	os := ""
	switch {
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"):
		os = "iOS"
	case strings.Contains(ua, "android"):
		os = "Android"
	case strings.Contains(ua, "windows"):
		os = "Windows"
	case strings.Contains(ua, "mac os"), strings.Contains(ua, "macintosh"):
		os = "macOS"
	case strings.Contains(ua, "linux"):
		os = "Linux"
	}

	if os == "" {
		return browser
	}
	return browser + " on " + os
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
