package provider_test

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/caspercreds/go-deploy/internal/deploy"
	"github/caspercreds/go-deploy/internal/deploy/provider"
	"github/caspercreds/go-deploy/internal/deploy/sign"
)

func newTestKey(t *testing.T) ed25519.PrivateKey {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	return ed25519.NewKeyFromSeed(seed)
}

func TestLocalKeySignsDeployHash(t *testing.T) {
	key := newTestKey(t)
	desc, err := provider.NewLocalKey(key)
	require.NoError(t, err)

	signer := provider.LocalKeyPublicHex(key)
	assert.Equal(t, "01", signer[:2])

	d := &deploy.Deploy{
		Hash:   "a3b8c1d2e4f5a3b8c1d2e4f5a3b8c1d2e4f5a3b8c1d2e4f5a3b8c1d2e4f5a3b8",
		Header: deploy.Header{Account: signer},
	}

	res, err := desc.SignDeploy(context.Background(), d, signer)
	require.NoError(t, err)
	require.Equal(t, sign.KindRawSignature, res.Kind)

	sigHex, ok := res.Payload.(string)
	require.True(t, ok)
	sigBytes, err := hex.DecodeString(sigHex)
	require.NoError(t, err)
	require.Len(t, sigBytes, ed25519.SignatureSize)

	hashBytes, err := hex.DecodeString(d.Hash)
	require.NoError(t, err)
	assert.True(t, ed25519.Verify(key.Public().(ed25519.PublicKey), hashBytes, sigBytes))
}

func TestLocalKeyRejectsForeignSigner(t *testing.T) {
	key := newTestKey(t)
	desc, err := provider.NewLocalKey(key)
	require.NoError(t, err)

	otherSeed := make([]byte, ed25519.SeedSize)
	otherSeed[0] = 0xee
	other := provider.LocalKeyPublicHex(ed25519.NewKeyFromSeed(otherSeed))

	res, err := desc.SignDeploy(context.Background(), &deploy.Deploy{Hash: "ab"}, other)
	require.NoError(t, err)
	assert.Equal(t, sign.KindFailed, res.Kind)
}

func TestNewLocalKeyRejectsShortKey(t *testing.T) {
	_, err := provider.NewLocalKey(make([]byte, 12))
	assert.Error(t, err)
}

func TestLoadLocalKey(t *testing.T) {
	key := newTestKey(t)
	dir := t.TempDir()

	seedPath := filepath.Join(dir, "seed.hex")
	require.NoError(t, os.WriteFile(seedPath, []byte(hex.EncodeToString(key.Seed())+"\n"), 0o600))
	loaded, err := provider.LoadLocalKey(seedPath)
	require.NoError(t, err)
	assert.Equal(t, key, loaded)

	fullPath := filepath.Join(dir, "full.hex")
	require.NoError(t, os.WriteFile(fullPath, []byte(hex.EncodeToString(key)), 0o600))
	loaded, err = provider.LoadLocalKey(fullPath)
	require.NoError(t, err)
	assert.Equal(t, key, loaded)

	badPath := filepath.Join(dir, "bad.hex")
	require.NoError(t, os.WriteFile(badPath, []byte("abcd"), 0o600))
	_, err = provider.LoadLocalKey(badPath)
	assert.Error(t, err)
}
