package deploy

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"
	"math/big"

	"github.com/pkg/errors"
	"github/caspercreds/go-deploy/internal/deploy/codec"
)

// CL type tag names used in NamedArg.Type.
const (
	CLTypeString = "String"
	CLTypeU64    = "U64"
	CLTypeU256   = "U256"
	CLTypeU512   = "U512"
	CLTypeKey    = "Key"
)

// StringArg serializes a string argument: u32 LE length prefix + UTF-8 bytes.
func StringArg(name, value string) NamedArg {
	var buf bytes.Buffer
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(value)))
	buf.Write(tmp[:])
	buf.WriteString(value)
	return NamedArg{Name: name, Type: CLTypeString, Value: hex.EncodeToString(buf.Bytes())}
}

// U64Arg serializes a fixed-width unsigned integer as 8 little-endian bytes.
func U64Arg(name string, value uint64) NamedArg {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], value)
	return NamedArg{Name: name, Type: CLTypeU64, Value: hex.EncodeToString(tmp[:])}
}

// U256Arg serializes an unsigned big number: 1-byte significant-byte count
// followed by the value's little-endian bytes.
func U256Arg(name string, value *big.Int) (NamedArg, error) {
	encoded, err := bigIntBytes(value)
	if err != nil {
		return NamedArg{}, errors.Wrapf(err, "arg %q", name)
	}
	return NamedArg{Name: name, Type: CLTypeU256, Value: encoded}, nil
}

// U512Arg serializes a payment amount the same way as U256Arg, tagged U512.
func U512Arg(name string, value *big.Int) (NamedArg, error) {
	encoded, err := bigIntBytes(value)
	if err != nil {
		return NamedArg{}, errors.Wrapf(err, "arg %q", name)
	}
	return NamedArg{Name: name, Type: CLTypeU512, Value: encoded}, nil
}

// KeyArg serializes an account-hash key: tag byte 0x00 + 32-byte hash.
func KeyArg(name, accountHashHex string) (NamedArg, error) {
	hash, err := codec.FromHex(accountHashHex)
	if err != nil {
		return NamedArg{}, errors.Wrapf(err, "arg %q", name)
	}
	if len(hash) != 32 {
		return NamedArg{}, errors.Errorf("arg %q: account hash must be 32 bytes, got %d", name, len(hash))
	}
	return NamedArg{Name: name, Type: CLTypeKey, Value: "00" + hex.EncodeToString(hash)}, nil
}

func bigIntBytes(value *big.Int) (string, error) {
	if value == nil || value.Sign() < 0 {
		return "", errors.New("value must be a non-negative integer")
	}
	be := value.Bytes()
	if len(be) > 255 {
		return "", errors.Errorf("value needs %d bytes, exceeds encoding limit", len(be))
	}
	// reverse to little-endian
	le := make([]byte, len(be))
	for i, b := range be {
		le[len(be)-1-i] = b
	}
	out := make([]byte, 0, len(le)+1)
	out = append(out, byte(len(le)))
	out = append(out, le...)
	return hex.EncodeToString(out), nil
}
