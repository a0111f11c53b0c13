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
	"github.com/aussiebroadwan/gatekeeper/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
	ErrBootstrapDisabled     = errors.New("bootstrap is not configured")
)

// BootstrapService creates the first account, a FOUNDER, on an empty
// database. Every later account goes through registration or OAuth.
type BootstrapService struct {
	Store store.Store
	Token string // pre-configured bootstrap token; empty disables bootstrap
}

func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Users().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap creates an active founder account with the given credentials.
func (s *BootstrapService) Bootstrap(ctx context.Context, token, email, password string, device domain.DeviceInfo) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if s.Token == "" {
		return domain.User{}, ErrBootstrapDisabled
	}
	if !cryptox.EqualStrings(token, s.Token) {
		l.Warn("unauthorized bootstrap attempt", slog.String("ip", device.IP))
		return domain.User{}, ErrBootstrapUnauthorized
	}

	bootstrapped, err := s.IsBootstrapped(ctx)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to check bootstrap state: %w", err)
	}
	if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return domain.User{}, ErrBootstrapAlready
	}

	email = NormalizeEmail(email)
	if err := checkEmail(email); err != nil {
		return domain.User{}, err
	}
	if err := checkPassword(password); err != nil {
		return domain.User{}, err
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.NewAt(now).String(),
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleFounder,
		Status:       domain.StatusActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Checked again inside the transaction; two racing bootstraps must
		// not both create a founder.
		empty, err := tx.Users().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			return err
		}
		return record(ctx, tx, domain.ActionRegistered, user.ID, user.ID, device,
			map[string]string{"via": "bootstrap"})
	})
	if err != nil {
		return domain.User{}, err
	}

	l.Info("system bootstrapped", slog.String("user_id", user.ID))
	return user, nil
}
