package jwtx

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
)

// KeyManager owns the ephemeral Ed25519 keys tickets are signed with. Keys
// only exist in memory, so every outstanding ticket dies on restart and the
// user simply logs in again.
type KeyManager struct {
	KeySet *KeySet
	issuer string

	signers []Signer
}

// KeyManagerOptions configures the KeyManager.
type KeyManagerOptions struct {
	// Issuer is stamped into every ticket and enforced on verification.
	Issuer string

	// NumKeys specifies how many signing keys to generate.
	// Defaults to 3 if not specified. Minimum is 1, maximum is 10.
	NumKeys int
}

// NewEphemeralKeyManager creates a new KeyManager with freshly generated keys.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	numKeys := opts.NumKeys
	if numKeys <= 0 {
		numKeys = 3
	}
	if numKeys > 10 {
		numKeys = 10
	}

	keyset := NewKeySet()
	signers := make([]Signer, 0, numKeys)

	for i := range numKeys {
		kid, err := generateRandomKeyID()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate key ID: %w", err)
		}

		signer, err := NewEphemeralSignerEdDSA(kid)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate signer %d: %w", i+1, err)
		}

		if err := keyset.AddSigner(signer); err != nil {
			return nil, fmt.Errorf("jwtx: failed to add signer %d to keyset: %w", i+1, err)
		}
		signers = append(signers, signer)
	}

	return &KeyManager{
		KeySet:  keyset,
		issuer:  opts.Issuer,
		signers: signers,
	}, nil
}

// Issuer returns the issuer every ticket is minted with.
func (km *KeyManager) Issuer() string { return km.issuer }

// IsReady returns true if the KeyManager has valid keys loaded.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}

// GetSigner returns a randomly selected signer from the available keys.
func (km *KeyManager) GetSigner() Signer {
	if len(km.signers) == 1 {
		return km.signers[0]
	}
	return km.signers[rand.IntN(len(km.signers))] // #nosec G404 - key selection, not secret material
}

// Mint signs a ticket for the given audience.
func (km *KeyManager) Mint(subject, ticketID, audience string, methods []string, ttl time.Duration) (string, error) {
	claims := NewTicketClaims(subject, ticketID, audience, km.issuer, methods, ttl, time.Now().UTC())
	return km.GetSigner().Sign(claims)
}

// Verifier returns a verifier that only accepts tickets for the given audience.
func (km *KeyManager) Verifier(audience string) Verifier {
	return NewVerifierEdDSA(km.KeySet, km.issuer, []string{audience})
}

// generateRandomKeyID creates a key identifier of the form "gk-{token}".
func generateRandomKeyID() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("failed to generate random key ID: %w", err)
	}
	return "gk-" + token, nil
}
