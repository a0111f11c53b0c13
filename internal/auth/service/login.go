package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

const (
	DefaultTicketTTL   = 5 * time.Minute
	DefaultMaxAttempts = 3
)

type LoginService struct {
	Store     store.Store
	Sessions  *SessionService
	TwoFactor *TwoFactorService
	Keys      *jwtx.KeyManager
	Attempts  store.AttemptCounter

	TicketTTL   time.Duration
	MaxAttempts int
}

func (s *LoginService) ticketTTL() time.Duration {
	if s.TicketTTL <= 0 {
		return DefaultTicketTTL
	}
	return s.TicketTTL
}

func (s *LoginService) maxAttempts() int {
	if s.MaxAttempts <= 0 {
		return DefaultMaxAttempts
	}
	return s.MaxAttempts
}

// Login runs the password step. A missing user and a wrong password are the
// same ErrInvalidCredentials, and both pay for one argon2 verification.
func (s *LoginService) Login(ctx context.Context, email, password string, device domain.DeviceInfo) (domain.LoginResult, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		cryptox.BurnPasswordCheck(password)
		l.Info("login failed", slog.String("reason", "unknown_email"))
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if !user.HasPassword() {
		cryptox.BurnPasswordCheck(password)
		l.Info("login failed", slog.String("reason", "no_password"), slog.String("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			l.Error("failed to verify password", slog.String("user_id", user.ID), slog.Any("error", err))
		}
		l.Info("login failed", slog.String("reason", "bad_password"), slog.String("user_id", user.ID))
		recordBestEffort(ctx, s.Store, domain.ActionLoginFailed, "", user.ID, device, nil)
		return nil, ErrInvalidCredentials
	}

	if err := checkGates(user); err != nil {
		l.Info("login refused", slog.String("user_id", user.ID), slog.Any("reason", err))
		return nil, err
	}

	return s.Establish(ctx, user, device, domain.ActionLoginSuccess, nil)
}

// Establish finishes a login for a user whose first factor has been
// accepted: a ticket when 2FA is on, a session otherwise. Password and
// provider logins share it so they share the 2FA requirement.
func (s *LoginService) Establish(
	ctx context.Context,
	user domain.User,
	device domain.DeviceInfo,
	action string,
	meta map[string]string,
) (domain.LoginResult, error) {
	methods, enabled, err := s.TwoFactor.Methods(ctx, s.Store, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read 2fa state: %w", err)
	}
	if enabled {
		return s.issueTicket(ctx, user, methods)
	}

	var result domain.Authenticated
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		result, err = s.authenticate(ctx, tx, user, device, action, meta)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *LoginService) authenticate(
	ctx context.Context,
	tx store.Tx,
	user domain.User,
	device domain.DeviceInfo,
	action string,
	meta map[string]string,
) (domain.Authenticated, error) {
	sess, token, err := s.Sessions.Create(ctx, tx, user.ID, device)
	if err != nil {
		return domain.Authenticated{}, err
	}

	if meta == nil {
		meta = map[string]string{}
	}
	meta["sessionId"] = sess.ID
	if err := record(ctx, tx, action, user.ID, user.ID, device, meta); err != nil {
		return domain.Authenticated{}, err
	}

	slogx.FromContext(ctx).Info("login succeeded",
		slog.String("user_id", user.ID),
		slog.String("session_id", sess.ID),
		slog.String("action", action),
	)
	return domain.Authenticated{User: user, Session: sess, Token: token}, nil
}

// issueTicket closes any half finished login for the user and mints a new
// ticket, so at most one is ever redeemable.
func (s *LoginService) issueTicket(ctx context.Context, user domain.User, methods domain.TwoFactorMethods) (domain.LoginResult, error) {
	now := time.Now().UTC()
	ticket := domain.TwoFactorTicket{
		ID:        idx.NewAt(now).String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ticketTTL()),
		CreatedAt: now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.TwoFactorTickets().CloseOpenForUser(ctx, user.ID, now); err != nil {
			return err
		}
		return tx.TwoFactorTickets().CreateTicket(ctx, ticket)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store 2fa ticket: %w", err)
	}

	signed, err := s.Keys.Mint(user.ID, ticket.ID, jwtx.AudienceTwoFactor, methods.List(), s.ticketTTL())
	if err != nil {
		return nil, fmt.Errorf("failed to sign 2fa ticket: %w", err)
	}

	slogx.FromContext(ctx).Info("2fa required", slog.String("user_id", user.ID), slog.String("ticket_id", ticket.ID))
	return domain.AwaitingSecondFactor{Ticket: signed, Methods: methods, ExpiresAt: ticket.ExpiresAt}, nil
}

// CompleteTwoFactor redeems a ticket with a TOTP or recovery code. Wrong
// codes leave the ticket open but count against it; once the count reaches
// the limit every attempt is ErrRateLimited, right code or not.
func (s *LoginService) CompleteTwoFactor(
	ctx context.Context,
	ticket, mode, code string,
	device domain.DeviceInfo,
) (domain.Authenticated, error) {
	l := slogx.FromContext(ctx)

	claims, err := s.Keys.Verifier(jwtx.AudienceTwoFactor).Verify(ticket)
	if err != nil {
		l.Debug("2fa ticket rejected", slog.Any("error", err))
		return domain.Authenticated{}, ErrInvalidTicket
	}

	row, err := s.Store.TwoFactorTickets().GetTicket(ctx, claims.ID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Authenticated{}, ErrInvalidTicket
	}
	if err != nil {
		return domain.Authenticated{}, err
	}
	if row.UserID != claims.Subject || row.ConsumedAt != nil || !time.Now().Before(row.ExpiresAt) {
		return domain.Authenticated{}, ErrInvalidTicket
	}

	if mode != domain.MethodTOTP && mode != domain.MethodRecovery {
		return domain.Authenticated{}, ErrInvalidMode
	}

	attempts, err := s.Attempts.Attempts(ctx, row.ID)
	if err != nil {
		return domain.Authenticated{}, fmt.Errorf("failed to read attempt counter: %w", err)
	}
	if attempts >= s.maxAttempts() {
		l.Info("2fa locked out", slog.String("ticket_id", row.ID), slog.Int("attempts", attempts))
		return domain.Authenticated{}, ErrRateLimited
	}

	user, err := s.Store.Users().GetUserByID(ctx, row.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Authenticated{}, ErrInvalidTicket
	}
	if err != nil {
		return domain.Authenticated{}, err
	}
	if user.IsDeleted() {
		return domain.Authenticated{}, ErrInvalidTicket
	}
	if err := checkGates(user); err != nil {
		return domain.Authenticated{}, err
	}

	// Recovery codes are salted hashes; find the match before taking the
	// write lock.
	var recoveryID string
	if mode == domain.MethodRecovery {
		recoveryID, err = s.TwoFactor.MatchRecoveryCode(ctx, user.ID, code)
		if err != nil {
			return domain.Authenticated{}, s.failAttempt(ctx, row.ID, err)
		}
	}

	action := domain.ActionLoginSuccess2FA
	var result domain.Authenticated
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		switch mode {
		case domain.MethodTOTP:
			if err := s.TwoFactor.VerifyTOTP(ctx, tx, user.ID, code); err != nil {
				return err
			}
		case domain.MethodRecovery:
			if err := s.TwoFactor.SpendRecoveryCode(ctx, tx, recoveryID); err != nil {
				return err
			}
		}

		if err := tx.TwoFactorTickets().Consume(ctx, row.ID, time.Now()); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrInvalidTicket
			}
			return err
		}

		var err error
		result, err = s.authenticate(ctx, tx, user, device, action, map[string]string{"method": mode})
		if err != nil {
			return err
		}

		if mode == domain.MethodRecovery {
			return record(ctx, tx, domain.ActionRecoveryCodeUsed, user.ID, user.ID, device, nil)
		}
		return nil
	})
	if err != nil {
		return domain.Authenticated{}, s.failAttempt(ctx, row.ID, err)
	}

	if err := s.Attempts.Reset(ctx, row.ID); err != nil {
		l.Warn("failed to reset attempt counter", slog.String("ticket_id", row.ID), slog.Any("error", err))
	}
	return result, nil
}

// failAttempt counts wrong codes against the ticket and passes every other
// error through untouched.
func (s *LoginService) failAttempt(ctx context.Context, ticketID string, err error) error {
	if !errors.Is(err, ErrInvalidTOTPCode) && !errors.Is(err, ErrInvalidRecoveryCode) {
		return err
	}

	n, incErr := s.Attempts.Increment(ctx, ticketID)
	if incErr != nil {
		return fmt.Errorf("failed to count 2fa attempt: %w", incErr)
	}

	slogx.FromContext(ctx).Info("2fa code rejected", slog.String("ticket_id", ticketID), slog.Int("attempts", n))
	if n >= s.maxAttempts() {
		return ErrRateLimited
	}
	return err
}

// Logout revokes the session the request rides on.
func (s *LoginService) Logout(ctx context.Context, userID, sessionID string, device domain.DeviceInfo) error {
	if _, err := s.Store.Sessions().Revoke(ctx, sessionID, userID, time.Now()); err != nil {
		return err
	}
	recordBestEffort(ctx, s.Store, domain.ActionLogout, userID, userID, device,
		map[string]string{"sessionId": sessionID})
	return nil
}

// checkGates applies the account status and role gates. They are
// independent; a banned user can be active and a founder can be disabled.
func checkGates(u domain.User) error {
	switch u.Status {
	case domain.StatusPendingVerification:
		return ErrAccountNotVerified
	case domain.StatusDisabled:
		return ErrAccountDisabled
	}
	switch u.Role {
	case domain.RoleSuspended:
		return ErrAccountSuspended
	case domain.RoleBanned:
		return ErrAccountBanned
	}
	if u.IsDeleted() {
		return ErrAccountDisabled
	}
	return nil
}
