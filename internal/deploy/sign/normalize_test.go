package sign_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/caspercreds/go-deploy/internal/deploy"
	"github/caspercreds/go-deploy/internal/deploy/sign"
)

const (
	ed25519Key   = "01" + "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	secp256k1Key = "02" + "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
)

var rawSig = strings.Repeat("aa", 64)

func TestNormalizeTagsRawSignature(t *testing.T) {
	got, err := sign.Normalize(sign.Raw(rawSig), secp256k1Key)
	require.NoError(t, err)
	require.False(t, got.AlreadySigned())

	assert.Len(t, got.SignatureHex, 130)
	assert.Equal(t, "02"+rawSig, got.SignatureHex)
}

func TestNormalizeTagFollowsKeyFamily(t *testing.T) {
	got, err := sign.Normalize(sign.Raw(rawSig), ed25519Key)
	require.NoError(t, err)
	assert.Equal(t, "01"+rawSig, got.SignatureHex)
}

func TestNormalizeTaggedSignaturePassesThrough(t *testing.T) {
	tagged := "01" + rawSig

	got, err := sign.Normalize(sign.Raw(tagged), ed25519Key)
	require.NoError(t, err)
	assert.Equal(t, tagged, got.SignatureHex)

	// idempotent
	again, err := sign.Normalize(sign.Raw(got.SignatureHex), ed25519Key)
	require.NoError(t, err)
	assert.Equal(t, got.SignatureHex, again.SignatureHex)
}

func TestNormalizeUnsupportedLength(t *testing.T) {
	_, err := sign.Normalize(sign.Raw(strings.Repeat("aa", 32)), ed25519Key)
	assert.True(t, errors.Is(err, sign.ErrUnsupportedSignatureLength))
}

func TestNormalizePrefersStringField(t *testing.T) {
	payload := map[string]any{
		"signatureHex": rawSig,
		"signature":    []any{float64(1), float64(2)},
	}

	got, err := sign.Normalize(sign.Raw(payload), secp256k1Key)
	require.NoError(t, err)
	assert.Equal(t, "02"+rawSig, got.SignatureHex)
}

func TestNormalizeBytesField(t *testing.T) {
	raw := make([]any, 64)
	for i := range raw {
		raw[i] = float64(0xaa)
	}

	got, err := sign.Normalize(sign.Raw(map[string]any{"signature": raw}), secp256k1Key)
	require.NoError(t, err)
	assert.Equal(t, "02"+rawSig, got.SignatureHex)
}

func TestNormalizeNoSignatureField(t *testing.T) {
	_, err := sign.Normalize(sign.Raw(map[string]any{"foo": "bar"}), secp256k1Key)
	assert.True(t, errors.Is(err, sign.ErrMalformedResult))
}

func TestNormalizeNestedDeploy(t *testing.T) {
	d := &deploy.Deploy{
		Hash: strings.Repeat("11", 32),
		Header: deploy.Header{
			Account:   secp256k1Key,
			ChainName: "casper-test",
		},
		Approvals: []deploy.Approval{{Signer: secp256k1Key, Signature: "02" + rawSig}},
	}
	raw, err := json.Marshal(d)
	require.NoError(t, err)

	var nested map[string]any
	require.NoError(t, json.Unmarshal(raw, &nested))

	got, err := sign.Normalize(sign.Raw(map[string]any{"deploy": nested}), secp256k1Key)
	require.NoError(t, err)
	require.True(t, got.AlreadySigned())
	assert.Equal(t, d.Hash, got.Deploy.Hash)
	assert.Len(t, got.Deploy.Approvals, 1)
}

func TestNormalizeSignedDeployResult(t *testing.T) {
	d := &deploy.Deploy{Header: deploy.Header{Account: ed25519Key}}

	got, err := sign.Normalize(sign.Signed(d), ed25519Key)
	require.NoError(t, err)
	assert.True(t, got.AlreadySigned())
	assert.Same(t, d, got.Deploy)
}

func TestAlgorithmTag(t *testing.T) {
	tag, err := sign.AlgorithmTag(ed25519Key)
	require.NoError(t, err)
	assert.Equal(t, sign.TagEd25519, tag)

	tag, err = sign.AlgorithmTag(secp256k1Key)
	require.NoError(t, err)
	assert.Equal(t, sign.TagSecp256k1, tag)

	_, err = sign.AlgorithmTag("07" + strings.Repeat("00", 32))
	assert.True(t, errors.Is(err, sign.ErrUnknownAlgorithmTag))
}
