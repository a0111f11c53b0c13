package app

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeeper/pkg/jwtx"
)

// InitAuthKeys prepares the key material the service depends on.
//
//   - Ticket signing keys are Ed25519 and live only in memory. Tickets are
//     minutes long, so losing them on restart just means logging in again.
//   - The master key seals TOTP secrets at rest. It comes from
//     AUTH_MASTER_KEY_PATH or AUTH_MASTER_KEY; without either, a throwaway
//     key is generated and every enrolled second factor is lost on restart.
//   - The pepper is mixed into every password hash.
func InitAuthKeys(cfg Config, logger *slog.Logger) (*jwtx.KeyManager, error) {
	cryptox.SetPepperPath(cfg.PepperFile)

	if cfg.MasterKeyPath != "" {
		cryptox.SetMasterKeyPath(cfg.MasterKeyPath)
		logger.Info("master key path configured", "path", cfg.MasterKeyPath)
	} else if os.Getenv("AUTH_MASTER_KEY") == "" {
		logger.Warn("no master key configured, TOTP secrets will not survive a restart")
	}

	keyManager, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{
		Issuer:  cfg.Issuer,
		NumKeys: cfg.NumKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize ticket signing keys: %w", err)
	}

	logger.Info("ticket signing keys generated", "issuer", cfg.Issuer)
	return keyManager, nil
}
