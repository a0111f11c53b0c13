package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

const (
	DefaultActivationTTL = 48 * time.Hour
	DefaultResetTTL      = time.Hour
)

type AccountService struct {
	Store    store.Store
	Tokens   *TokenIssuer
	Sessions *SessionService
	Mailer   Mailer

	// PublicURL is the base emailed links point at.
	PublicURL     string
	ActivationTTL time.Duration
	ResetTTL      time.Duration
}

type RegisterInput struct {
	Email         string
	Password      string
	TermsAccepted bool
	TermsVersion  string
}

// Register creates a pending account and mails its activation link.
func (s *AccountService) Register(ctx context.Context, in RegisterInput, device domain.DeviceInfo) (domain.User, error) {
	email := NormalizeEmail(in.Email)
	if err := checkEmail(email); err != nil {
		return domain.User{}, err
	}
	if err := checkPassword(in.Password); err != nil {
		return domain.User{}, err
	}
	if !in.TermsAccepted {
		return domain.User{}, ErrTermsNotAccepted
	}

	hash, err := cryptox.HashPassword(in.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:              idx.NewAt(now).String(),
		Email:           email,
		PasswordHash:    hash,
		Role:            domain.RoleStandardUser,
		Status:          domain.StatusPendingVerification,
		TermsAcceptedAt: &now,
		TermsVersion:    in.TermsVersion,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	var token string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrEmailExists
			}
			return err
		}

		var err error
		token, err = s.Tokens.Issue(ctx, tx, user.ID, domain.PurposeActivation, s.activationTTL())
		if err != nil {
			return err
		}
		return record(ctx, tx, domain.ActionRegistered, user.ID, user.ID, device, nil)
	})
	if err != nil {
		return domain.User{}, err
	}

	s.send(ctx, user.Email, "/auth/activate", token, s.Mailer.SendActivation)
	return user, nil
}

// ResendActivation reissues the activation link for pending accounts. It
// never says whether the address exists.
func (s *AccountService) ResendActivation(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("failed to load user for activation resend", slog.Any("error", err))
		}
		return nil
	}
	if user.Status != domain.StatusPendingVerification {
		return nil
	}

	var token string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		token, err = s.Tokens.Issue(ctx, tx, user.ID, domain.PurposeActivation, s.activationTTL())
		return err
	})
	if err != nil {
		l.Error("failed to reissue activation token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil
	}

	s.send(ctx, user.Email, "/auth/activate", token, s.Mailer.SendActivation)
	return nil
}

// Activate redeems an activation token and flips the account to active in
// one transaction.
func (s *AccountService) Activate(ctx context.Context, token string, device domain.DeviceInfo) (domain.User, error) {
	var user domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		userID, err := s.Tokens.Consume(ctx, tx, token, domain.PurposeActivation)
		if errors.Is(err, ErrTokenInvalid) {
			return ErrActivationInvalid
		}
		if err != nil {
			return err
		}

		if err := tx.Users().ActivateUser(ctx, userID); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrActivationInvalid
			}
			return err
		}

		user, err = tx.Users().GetUserByID(ctx, userID)
		if err != nil {
			return err
		}
		return record(ctx, tx, domain.ActionActivated, userID, userID, device, nil)
	})
	return user, err
}

// ForgotPassword mails a reset link when the address belongs to an account
// that can use one. It always reports success.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) error {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			l.Error("failed to load user for password reset", slog.Any("error", err))
		}
		return nil
	}

	var token string
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		token, err = s.Tokens.Issue(ctx, tx, user.ID, domain.PurposePasswordReset, s.resetTTL())
		return err
	})
	if err != nil {
		l.Error("failed to issue reset token", slog.String("user_id", user.ID), slog.Any("error", err))
		return nil
	}

	s.send(ctx, user.Email, "/auth/reset-password", token, s.Mailer.SendPasswordReset)
	return nil
}

// ValidateReset checks a reset token without spending it, so the UI can
// refuse early instead of after the user typed a new password.
func (s *AccountService) ValidateReset(ctx context.Context, token string) error {
	_, err := s.Tokens.Peek(ctx, token, domain.PurposePasswordReset)
	if errors.Is(err, ErrTokenInvalid) {
		return ErrResetTokenInvalid
	}
	return err
}

// ResetPassword spends the token, sets the new password and revokes every
// session of the user.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string, device domain.DeviceInfo) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		userID, err := s.Tokens.Consume(ctx, tx, token, domain.PurposePasswordReset)
		if errors.Is(err, ErrTokenInvalid) {
			return ErrResetTokenInvalid
		}
		if err != nil {
			return err
		}

		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return err
		}

		n, err := s.Sessions.RevokeAll(ctx, tx, userID)
		if err != nil {
			return err
		}
		return record(ctx, tx, domain.ActionPasswordReset, userID, userID, device,
			map[string]string{"revokedSessions": fmt.Sprint(n)})
	})
}

// ChangePassword verifies the current password, stores the new one and
// signs out every other session.
func (s *AccountService) ChangePassword(
	ctx context.Context,
	userID, currentSessionID, oldPassword, newPassword string,
	device domain.DeviceInfo,
) error {
	if err := checkPassword(newPassword); err != nil {
		return err
	}

	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	if err != nil {
		return err
	}
	if !user.HasPassword() {
		return ErrPasswordNotSet
	}
	if err := cryptox.VerifyPassword(oldPassword, user.PasswordHash); err != nil {
		return ErrIncorrectPassword
	}

	hash, err := cryptox.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().UpdatePasswordHash(ctx, userID, hash); err != nil {
			return err
		}
		if _, err := tx.Sessions().RevokeAllExcept(ctx, userID, currentSessionID, time.Now()); err != nil {
			return err
		}
		return record(ctx, tx, domain.ActionPasswordChanged, userID, userID, device, nil)
	})
}

// send mails a link. Failing to send does not undo the token; the user can
// ask again.
func (s *AccountService) send(
	ctx context.Context,
	to, path, token string,
	fn func(ctx context.Context, to, link string) error,
) {
	link := strings.TrimRight(s.PublicURL, "/") + path + "?token=" + url.QueryEscape(token)
	if err := fn(ctx, to, link); err != nil {
		slogx.FromContext(ctx).Error("failed to send email", slog.String("path", path), slog.Any("error", err))
	}
}

func (s *AccountService) activationTTL() time.Duration {
	if s.ActivationTTL <= 0 {
		return DefaultActivationTTL
	}
	return s.ActivationTTL
}

func (s *AccountService) resetTTL() time.Duration {
	if s.ResetTTL <= 0 {
		return DefaultResetTTL
	}
	return s.ResetTTL
}
