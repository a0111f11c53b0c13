package cryptox_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aussiebroadwan/gatekeeper/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptSecret(t *testing.T) {
	os.Setenv("AUTH_MASTER_KEY", "test-master-key-for-encryption-12345")
	t.Cleanup(func() {
		os.Unsetenv("AUTH_MASTER_KEY")
		cryptox.ResetMasterKeyForTesting()
	})

	seed := []byte("JBSWY3DPEHPK3PXP")

	encrypted, err := cryptox.EncryptSecret(seed, "user-1")
	require.NoError(t, err)
	require.NotEqual(t, seed, encrypted, "encrypted data should differ from plaintext")

	decrypted, err := cryptox.DecryptSecret(encrypted, "user-1")
	require.NoError(t, err)
	require.Equal(t, seed, decrypted)
}

func TestEncryptSecretUsesFreshNonce(t *testing.T) {
	os.Setenv("AUTH_MASTER_KEY", "test-master-key-multiple-times-xyz")
	t.Cleanup(func() {
		os.Unsetenv("AUTH_MASTER_KEY")
		cryptox.ResetMasterKeyForTesting()
	})

	seed := []byte("sensitive-seed")

	first, err := cryptox.EncryptSecret(seed, "user-1")
	require.NoError(t, err)
	second, err := cryptox.EncryptSecret(seed, "user-1")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	for _, ct := range [][]byte{first, second} {
		plain, err := cryptox.DecryptSecret(ct, "user-1")
		require.NoError(t, err)
		require.Equal(t, seed, plain)
	}
}

func TestDecryptSecretRejectsOtherOwner(t *testing.T) {
	os.Setenv("AUTH_MASTER_KEY", "test-master-key-owner-binding")
	t.Cleanup(func() {
		os.Unsetenv("AUTH_MASTER_KEY")
		cryptox.ResetMasterKeyForTesting()
	})

	encrypted, err := cryptox.EncryptSecret([]byte("seed"), "user-1")
	require.NoError(t, err)

	_, err = cryptox.DecryptSecret(encrypted, "user-2")
	require.Error(t, err)
}

func TestDecryptSecretTamperedCiphertext(t *testing.T) {
	os.Setenv("AUTH_MASTER_KEY", "test-master-key-tamper")
	t.Cleanup(func() {
		os.Unsetenv("AUTH_MASTER_KEY")
		cryptox.ResetMasterKeyForTesting()
	})

	encrypted, err := cryptox.EncryptSecret([]byte("seed"), "user-1")
	require.NoError(t, err)

	encrypted[len(encrypted)-1] ^= 0xFF
	_, err = cryptox.DecryptSecret(encrypted, "user-1")
	require.Error(t, err)

	_, err = cryptox.DecryptSecret([]byte{1, 2, 3}, "user-1")
	require.Error(t, err)
}

func TestMasterKeyFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.key")
	require.NoError(t, os.WriteFile(path, []byte("file-based-master-key"), 0o600))

	cryptox.SetMasterKeyPath(path)
	t.Cleanup(func() {
		cryptox.SetMasterKeyPath("")
		cryptox.ResetMasterKeyForTesting()
	})
	cryptox.ResetMasterKeyForTesting()

	encrypted, err := cryptox.EncryptSecret([]byte("seed"), "u")
	require.NoError(t, err)

	plain, err := cryptox.DecryptSecret(encrypted, "u")
	require.NoError(t, err)
	require.Equal(t, []byte("seed"), plain)
}
