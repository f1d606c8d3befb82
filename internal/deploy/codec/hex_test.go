package codec_test

import (
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/caspercreds/go-deploy/internal/deploy/codec"
)

func TestToHexFromBytes(t *testing.T) {
	out, err := codec.ToHex([]byte{0x00, 0xab, 0xff})
	require.NoError(t, err)
	assert.Equal(t, "00abff", out)
}

func TestToHexIdempotentOnHexString(t *testing.T) {
	out, err := codec.ToHex("00ABff")
	require.NoError(t, err)
	assert.Equal(t, "00abff", out)

	again, err := codec.ToHex(out)
	require.NoError(t, err)
	assert.Equal(t, out, again)
}

func TestToHexStripsPrefix(t *testing.T) {
	out, err := codec.ToHex("0xdeadbeef")
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", out)
}

func TestToHexFromJSONArray(t *testing.T) {
	var decoded []any
	require.NoError(t, json.Unmarshal([]byte("[222,173,190,239]"), &decoded))

	out, err := codec.ToHex(decoded)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", out)
}

func TestToHexFromIndexedObject(t *testing.T) {
	// JSON shape of a serialized Uint8Array
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(`{"0":222,"1":173,"2":190,"3":239}`), &decoded))

	out, err := codec.ToHex(decoded)
	require.NoError(t, err)
	assert.Equal(t, "deadbeef", out)
}

func TestToHexRejectsUnknownShape(t *testing.T) {
	_, err := codec.ToHex(42)
	assert.Error(t, err)
}

func TestToHexRejectsOutOfRangeElement(t *testing.T) {
	_, err := codec.ToHex([]any{float64(256)})
	assert.Error(t, err)
}

func TestFromHexMalformed(t *testing.T) {
	_, err := codec.FromHex("abc")
	assert.True(t, errors.Is(err, codec.ErrMalformedHex))

	_, err = codec.FromHex("zz")
	assert.True(t, errors.Is(err, codec.ErrMalformedHex))
}

func TestRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x00},
		{0x01, 0x02, 0x03, 0xfe, 0xff},
	}

	for _, payload := range payloads {
		encoded, err := codec.ToHex(payload)
		require.NoError(t, err)

		decoded, err := codec.FromHex(encoded)
		require.NoError(t, err)
		assert.Equal(t, payload, decoded)
	}
}

func TestRoundTripAcrossShapes(t *testing.T) {
	want := []byte{0x10, 0x20, 0xf0}

	asString, err := codec.ToHex("1020f0")
	require.NoError(t, err)

	asBytes, err := codec.ToHex([]byte{0x10, 0x20, 0xf0})
	require.NoError(t, err)

	asArray, err := codec.ToHex([]any{float64(16), float64(32), float64(240)})
	require.NoError(t, err)

	assert.Equal(t, asString, asBytes)
	assert.Equal(t, asBytes, asArray)

	decoded, err := codec.FromHex(asArray)
	require.NoError(t, err)
	assert.Equal(t, want, decoded)
}
