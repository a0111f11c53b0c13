package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

const DefaultOAuthTicketTTL = 10 * time.Minute

// OAuthService reconciles a provider identity with local accounts. It never
// merges two accounts; an email that points somewhere else is a conflict.
type OAuthService struct {
	Store     store.Store
	Login     *LoginService
	Keys      *jwtx.KeyManager
	Providers map[string]Provider
	TicketTTL time.Duration
}

// Provider returns the configured provider by name.
func (s *OAuthService) Provider(name string) (Provider, error) {
	p, ok := s.Providers[name]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p, nil
}

// HandleCallback resolves provider claims to a login result. Without a
// verified email and no existing link, the result is AwaitingEmail.
func (s *OAuthService) HandleCallback(ctx context.Context, claims domain.OAuthClaims, device domain.DeviceInfo) (domain.LoginResult, error) {
	if claims.Provider == "" || claims.Subject == "" {
		return nil, ErrOAuthExchange
	}
	claims.Email = NormalizeEmail(claims.Email)
	if claims.Email != "" && checkEmail(claims.Email) != nil {
		claims.Email, claims.EmailVerified = "", false
	}

	identity, err := s.Store.OAuthIdentities().GetIdentity(ctx, claims.Provider, claims.Subject)
	switch {
	case err == nil:
		if claims.EmailVerified && claims.Email != "" {
			if err := s.checkEmailOwner(ctx, claims.Email, identity.UserID); err != nil {
				return nil, err
			}
		}
		return s.loginLinked(ctx, identity.UserID, claims.Provider, device)
	case !errors.Is(err, store.ErrNotFound):
		return nil, fmt.Errorf("failed to load oauth identity: %w", err)
	}

	if claims.Email == "" || !claims.EmailVerified {
		return s.issueTicket(ctx, claims)
	}

	user, err := s.Store.Users().GetUserByEmail(ctx, claims.Email)
	switch {
	case err == nil:
		return s.linkAndLogin(ctx, user, claims, device)
	case errors.Is(err, store.ErrNotFound):
		return s.createAndLogin(ctx, claims, device)
	default:
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
}

// CompleteWithEmail finishes a login that was parked for lack of an email.
// The email is validated before the ticket is spent, so a typo does not
// burn it. A supplied address is unverified and therefore never links to
// an existing account.
func (s *OAuthService) CompleteWithEmail(ctx context.Context, ticket, email string, device domain.DeviceInfo) (domain.LoginResult, error) {
	email = NormalizeEmail(email)
	if err := checkEmail(email); err != nil {
		return nil, err
	}

	tc, err := s.Keys.Verifier(jwtx.AudienceOAuth).Verify(ticket)
	if err != nil {
		return nil, ErrOAuthTicketInvalid
	}

	row, err := s.Store.OAuthTickets().Consume(ctx, tc.ID, time.Now())
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrOAuthTicketInvalid
	}
	if err != nil {
		return nil, err
	}

	claims := row.Claims
	claims.Email, claims.EmailVerified = email, false

	// Someone may have linked this identity while the ticket was parked.
	identity, err := s.Store.OAuthIdentities().GetIdentity(ctx, claims.Provider, claims.Subject)
	switch {
	case err == nil:
		if err := s.checkEmailOwner(ctx, email, identity.UserID); err != nil {
			return nil, err
		}
		return s.loginLinked(ctx, identity.UserID, claims.Provider, device)
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	_, err = s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		return nil, ErrOAuthEmailConflict
	case !errors.Is(err, store.ErrNotFound):
		return nil, err
	}

	return s.createAndLogin(ctx, claims, device)
}

// checkEmailOwner fails when email belongs to an account other than userID.
func (s *OAuthService) checkEmailOwner(ctx context.Context, email, userID string) error {
	owner, err := s.Store.Users().GetUserByEmail(ctx, email)
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if owner.ID != userID {
		return ErrOAuthEmailConflict
	}
	return nil
}

func (s *OAuthService) loginLinked(ctx context.Context, userID, provider string, device domain.DeviceInfo) (domain.LoginResult, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load linked user: %w", err)
	}
	if err := checkGates(user); err != nil {
		return nil, err
	}
	return s.Login.Establish(ctx, user, device, domain.ActionLoginSuccess, map[string]string{"provider": provider})
}

func (s *OAuthService) linkAndLogin(ctx context.Context, user domain.User, claims domain.OAuthClaims, device domain.DeviceInfo) (domain.LoginResult, error) {
	if err := checkGates(user); err != nil {
		return nil, err
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := link(ctx, tx, user.ID, claims); err != nil {
			return err
		}
		return record(ctx, tx, domain.ActionOAuthLinked, user.ID, user.ID, device,
			map[string]string{"provider": claims.Provider})
	})
	if err != nil {
		return nil, err
	}

	return s.Login.Establish(ctx, user, device, domain.ActionLoginSuccess, map[string]string{"provider": claims.Provider})
}

// createAndLogin makes an active, password-less account. Provider accounts
// skip activation.
func (s *OAuthService) createAndLogin(ctx context.Context, claims domain.OAuthClaims, device domain.DeviceInfo) (domain.LoginResult, error) {
	now := time.Now().UTC()
	user := domain.User{
		ID:        idx.NewAt(now).String(),
		Email:     claims.Email,
		Role:      domain.RoleStandardUser,
		Status:    domain.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var result domain.Authenticated
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrOAuthEmailConflict
			}
			return err
		}
		if err := link(ctx, tx, user.ID, claims); err != nil {
			return err
		}
		if err := record(ctx, tx, domain.ActionRegistered, user.ID, user.ID, device,
			map[string]string{"provider": claims.Provider}); err != nil {
			return err
		}

		var err error
		result, err = s.Login.authenticate(ctx, tx, user, device, domain.ActionLoginSuccess,
			map[string]string{"provider": claims.Provider})
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *OAuthService) issueTicket(ctx context.Context, claims domain.OAuthClaims) (domain.LoginResult, error) {
	ttl := s.TicketTTL
	if ttl <= 0 {
		ttl = DefaultOAuthTicketTTL
	}

	now := time.Now().UTC()
	row := domain.OAuthTicket{
		ID:        idx.NewAt(now).String(),
		Claims:    claims,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := s.Store.OAuthTickets().CreateTicket(ctx, row); err != nil {
		return nil, fmt.Errorf("failed to store oauth ticket: %w", err)
	}

	signed, err := s.Keys.Mint(claims.Provider+":"+claims.Subject, row.ID, jwtx.AudienceOAuth, nil, ttl)
	if err != nil {
		return nil, fmt.Errorf("failed to sign oauth ticket: %w", err)
	}

	slogx.FromContext(ctx).Info("oauth login needs email", slog.String("provider", claims.Provider))
	return domain.AwaitingEmail{Ticket: signed, Provider: claims.Provider, ExpiresAt: row.ExpiresAt}, nil
}

func link(ctx context.Context, st store.Store, userID string, claims domain.OAuthClaims) error {
	err := st.OAuthIdentities().Link(ctx, domain.OAuthIdentity{
		Provider:  claims.Provider,
		Subject:   claims.Subject,
		UserID:    userID,
		Email:     claims.Email,
		CreatedAt: time.Now().UTC(),
	})
	if errors.Is(err, store.ErrConflict) {
		return ErrOAuthEmailConflict
	}
	return err
}
