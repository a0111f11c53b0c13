package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/gatekeeper/internal/auth/domain"
	"github.com/aussiebroadwan/gatekeeper/internal/auth/store"
	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/idx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	recoveryCodeCount = 10
	totpPeriod        = 30
	totpSkew          = 1 // steps accepted either side of now
)

var totpOpts = totp.ValidateOpts{
	Period:    totpPeriod,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

type TwoFactorService struct {
	Store  store.Store
	Issuer string // shown in the authenticator app

	// Now is overridable in tests; TOTP codes are a function of time.
	Now func() time.Time
}

func (s *TwoFactorService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// StartSetup generates a new secret and stores it unconfirmed, replacing
// any earlier unconfirmed one. The secret only governs login after
// ConfirmSetup.
func (s *TwoFactorService) StartSetup(ctx context.Context, userID, accountName string) (domain.TwoFactorSetup, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.Issuer,
		AccountName: accountName,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return domain.TwoFactorSetup{}, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	sealed, err := cryptox.EncryptSecret([]byte(key.Secret()), userID)
	if err != nil {
		return domain.TwoFactorSetup{}, fmt.Errorf("failed to seal TOTP secret: %w", err)
	}

	err = s.Store.TwoFactor().UpsertPending(ctx, userID, sealed, s.now().UTC())
	if errors.Is(err, store.ErrConflict) {
		return domain.TwoFactorSetup{}, ErrTwoFactorEnabled
	}
	if err != nil {
		return domain.TwoFactorSetup{}, fmt.Errorf("failed to store TOTP secret: %w", err)
	}

	return domain.TwoFactorSetup{
		Secret:  key.Secret(),
		URI:     key.URL(),
		Issuer:  s.Issuer,
		Account: accountName,
	}, nil
}

// ConfirmSetup proves possession of the pending secret, enables 2FA and
// returns a fresh set of recovery codes. The codes are never shown again.
func (s *TwoFactorService) ConfirmSetup(ctx context.Context, userID, code string, device domain.DeviceInfo) ([]string, error) {
	tf, err := s.Store.TwoFactor().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrTwoFactorNotPending
	}
	if err != nil {
		return nil, err
	}
	if tf.Enabled {
		return nil, ErrTwoFactorEnabled
	}

	step, err := s.matchStep(tf, code)
	if err != nil {
		return nil, err
	}

	codes, hashes, err := newRecoveryCodes()
	if err != nil {
		return nil, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.TwoFactor().Enable(ctx, userID, step, s.now().UTC()); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return ErrTwoFactorEnabled
			}
			return err
		}
		if err := replaceRecoveryCodes(ctx, tx, userID, hashes); err != nil {
			return err
		}
		return record(ctx, tx, domain.ActionTwoFactorEnabled, userID, userID, device, nil)
	})
	if err != nil {
		return nil, err
	}

	return codes, nil
}

// Disable drops the secret and every recovery code. There is no undo.
func (s *TwoFactorService) Disable(ctx context.Context, userID string, device domain.DeviceInfo) error {
	tf, err := s.Store.TwoFactor().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTwoFactorNotEnabled
	}
	if err != nil {
		return err
	}

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.TwoFactor().Delete(ctx, userID); err != nil {
			return err
		}
		if err := tx.RecoveryCodes().DeleteAll(ctx, userID); err != nil {
			return err
		}
		if !tf.Enabled {
			return nil // abandoning a setup is not worth an audit row
		}
		return record(ctx, tx, domain.ActionTwoFactorDisabled, userID, userID, device, nil)
	})
}

// RegenerateRecoveryCodes swaps the whole set in one transaction after a
// TOTP check, so old and new codes are never valid together.
func (s *TwoFactorService) RegenerateRecoveryCodes(ctx context.Context, userID, totpCode string, device domain.DeviceInfo) ([]string, error) {
	codes, hashes, err := newRecoveryCodes()
	if err != nil {
		return nil, err
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := s.VerifyTOTP(ctx, tx, userID, totpCode); err != nil {
			return err
		}
		if err := replaceRecoveryCodes(ctx, tx, userID, hashes); err != nil {
			return err
		}
		return record(ctx, tx, domain.ActionRecoveryRegenerated, userID, userID, device, nil)
	})
	if err != nil {
		return nil, err
	}
	return codes, nil
}

func (s *TwoFactorService) Status(ctx context.Context, userID string) (domain.TwoFactorStatus, error) {
	tf, err := s.Store.TwoFactor().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TwoFactorStatus{}, nil
	}
	if err != nil {
		return domain.TwoFactorStatus{}, err
	}

	remaining, err := s.Store.RecoveryCodes().CountUnused(ctx, userID)
	if err != nil {
		return domain.TwoFactorStatus{}, err
	}

	return domain.TwoFactorStatus{
		Enabled:                tf.Enabled,
		Pending:                !tf.Enabled,
		EnabledAt:              tf.EnabledAt,
		RemainingRecoveryCodes: remaining,
	}, nil
}

// Methods reports which second factors the user can finish a login with.
// enabled is false when the user has no confirmed second factor at all.
func (s *TwoFactorService) Methods(ctx context.Context, st store.Store, userID string) (domain.TwoFactorMethods, bool, error) {
	tf, err := st.TwoFactor().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return domain.TwoFactorMethods{}, false, nil
	}
	if err != nil {
		return domain.TwoFactorMethods{}, false, err
	}
	if !tf.Enabled {
		return domain.TwoFactorMethods{}, false, nil
	}

	remaining, err := st.RecoveryCodes().CountUnused(ctx, userID)
	if err != nil {
		return domain.TwoFactorMethods{}, false, err
	}
	return domain.TwoFactorMethods{TOTP: true, Recovery: remaining > 0}, true, nil
}

// VerifyTOTP checks code against the user's enabled secret and records the
// matched step through st. A code whose step is not newer than the last
// accepted one is a replay and fails like a wrong code.
func (s *TwoFactorService) VerifyTOTP(ctx context.Context, st store.Store, userID, code string) error {
	tf, err := st.TwoFactor().Get(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTwoFactorNotEnabled
	}
	if err != nil {
		return err
	}
	if !tf.Enabled {
		return ErrTwoFactorNotEnabled
	}

	step, err := s.matchStep(tf, code)
	if err != nil {
		return err
	}
	if step <= tf.LastUsedStep {
		return ErrInvalidTOTPCode
	}

	err = st.TwoFactor().AdvanceStep(ctx, userID, step, s.now().UTC())
	if errors.Is(err, store.ErrConflict) {
		return ErrInvalidTOTPCode
	}
	return err
}

// MatchRecoveryCode finds the unused code that matches without spending it.
// Codes are salted hashes, so each candidate is compared in turn.
func (s *TwoFactorService) MatchRecoveryCode(ctx context.Context, userID, code string) (string, error) {
	code = cryptox.NormalizeRecoveryCode(code)
	if code == "" {
		return "", ErrInvalidRecoveryCode
	}

	candidates, err := s.Store.RecoveryCodes().ListUnused(ctx, userID)
	if err != nil {
		return "", err
	}
	for _, c := range candidates {
		if cryptox.VerifyPassword(code, c.CodeHash) == nil {
			return c.ID, nil
		}
	}
	return "", ErrInvalidRecoveryCode
}

// SpendRecoveryCode marks a matched code used through st. Losing the race
// to a concurrent request is ErrInvalidRecoveryCode.
func (s *TwoFactorService) SpendRecoveryCode(ctx context.Context, st store.Store, codeID string) error {
	err := st.RecoveryCodes().MarkUsed(ctx, codeID, s.now().UTC())
	if errors.Is(err, store.ErrConflict) {
		return ErrInvalidRecoveryCode
	}
	return err
}

// VerifyRecoveryCode matches and spends a recovery code in one call.
func (s *TwoFactorService) VerifyRecoveryCode(ctx context.Context, userID, code string) error {
	id, err := s.MatchRecoveryCode(ctx, userID, code)
	if err != nil {
		return err
	}
	return s.SpendRecoveryCode(ctx, s.Store, id)
}

// matchStep returns the time step code was generated for, checking the
// current step and one either side.
func (s *TwoFactorService) matchStep(tf domain.TwoFactor, code string) (int64, error) {
	if len(code) != int(otp.DigitsSix) {
		return 0, ErrInvalidTOTPCode
	}

	secret, err := cryptox.DecryptSecret(tf.SecretEnc, tf.UserID)
	if err != nil {
		return 0, fmt.Errorf("failed to open TOTP secret: %w", err)
	}

	current := s.now().Unix() / totpPeriod
	for step := current - totpSkew; step <= current+totpSkew; step++ {
		want, err := totp.GenerateCodeCustom(string(secret), time.Unix(step*totpPeriod, 0).UTC(), totpOpts)
		if err != nil {
			return 0, fmt.Errorf("failed to compute TOTP code: %w", err)
		}
		if cryptox.EqualStrings(want, code) {
			return step, nil
		}
	}
	return 0, ErrInvalidTOTPCode
}

func newRecoveryCodes() ([]string, []string, error) {
	codes := make([]string, recoveryCodeCount)
	hashes := make([]string, recoveryCodeCount)
	for i := range recoveryCodeCount {
		code, err := cryptox.GenerateRecoveryCode()
		if err != nil {
			return nil, nil, err
		}
		hash, err := cryptox.HashPassword(cryptox.NormalizeRecoveryCode(code))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to hash recovery code: %w", err)
		}
		codes[i], hashes[i] = code, hash
	}
	return codes, hashes, nil
}

func replaceRecoveryCodes(ctx context.Context, st store.Store, userID string, hashes []string) error {
	if err := st.RecoveryCodes().DeleteAll(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete old recovery codes: %w", err)
	}

	now := time.Now().UTC()
	for _, h := range hashes {
		err := st.RecoveryCodes().CreateCode(ctx, domain.RecoveryCode{
			ID:        idx.NewAt(now).String(),
			UserID:    userID,
			CodeHash:  h,
			CreatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("failed to store recovery code: %w", err)
		}
	}
	return nil
}
