package provider

import (
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github/caspercreds/go-deploy/internal/deploy"
	"github/caspercreds/go-deploy/internal/deploy/codec"
	"github/caspercreds/go-deploy/internal/deploy/sign"
)

// NewLocalKey returns a descriptor that signs with an in-process ed25519
// key, for headless use (CLI, CI pipelines). It deliberately returns the
// untagged 64-byte signature so the normal tagging path is exercised the
// same way it is for browser wallets.
func NewLocalKey(key ed25519.PrivateKey) (*Descriptor, error) {
	if l := len(key); l != ed25519.PrivateKeySize {
		return nil, errors.Errorf("ed25519 private key must be %d bytes, got %d", ed25519.PrivateKeySize, l)
	}
	publicHex := "01" + hex.EncodeToString(key.Public().(ed25519.PublicKey))

	signPayload := func(_ context.Context, payloadHex, publicKeyHex string) (sign.SigningResult, error) {
		if !strings.EqualFold(publicKeyHex, publicHex) {
			return sign.Failed("requested signer does not match local key"), nil
		}
		payload, err := codec.FromHex(payloadHex)
		if err != nil {
			return sign.SigningResult{}, errors.Wrap(err, "signing payload")
		}
		return sign.Raw(hex.EncodeToString(ed25519.Sign(key, payload))), nil
	}

	return &Descriptor{
		Sign: signPayload,
		SignDeploy: func(ctx context.Context, d *deploy.Deploy, publicKeyHex string) (sign.SigningResult, error) {
			return signPayload(ctx, d.Hash, publicKeyHex)
		},
	}, nil
}

// LocalKeyPublicHex returns the tagged public key hex for a local ed25519
// key, the identity callers pass through the signing flow.
func LocalKeyPublicHex(key ed25519.PrivateKey) string {
	return "01" + hex.EncodeToString(key.Public().(ed25519.PublicKey))
}

// LoadLocalKey reads an ed25519 private key from a file holding either the
// 32-byte seed or the full 64-byte key as hex.
func LoadLocalKey(path string) (ed25519.PrivateKey, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read key file")
	}
	decoded, err := codec.FromHex(strings.TrimSpace(string(raw)))
	if err != nil {
		return nil, errors.Wrap(err, "decode key file")
	}
	switch len(decoded) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(decoded), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(decoded), nil
	default:
		return nil, errors.Errorf("key file must hold a %d or %d byte key, got %d",
			ed25519.SeedSize, ed25519.PrivateKeySize, len(decoded))
	}
}
