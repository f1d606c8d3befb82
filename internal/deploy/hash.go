package deploy

import (
	"bytes"
	"encoding/binary"
	"encoding/hex"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
	"github/caspercreds/go-deploy/internal/deploy/codec"
)

// Byte serialization for hashing. The node hashes blake2b-256 over a
// little-endian field encoding; strings and byte blobs carry a u32 length
// prefix, item kinds and arg types a 1-byte tag.

var itemKindTags = map[ItemKind]byte{
	KindModuleBytes:    0,
	KindStoredContract: 1,
	KindStoredPackage:  2,
}

// ComputeBodyHash hashes the payment and session clauses.
func ComputeBodyHash(payment, session ExecutableItem) (string, error) {
	var buf bytes.Buffer
	if err := writeItem(&buf, payment); err != nil {
		return "", errors.Wrap(err, "serialize payment")
	}
	if err := writeItem(&buf, session); err != nil {
		return "", errors.Wrap(err, "serialize session")
	}
	sum := blake2b.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

// ComputeHash hashes the header. The header must already carry the body hash,
// so compute it first via ComputeBodyHash.
func ComputeHash(h Header) (string, error) {
	var buf bytes.Buffer

	account, err := codec.FromHex(h.Account)
	if err != nil {
		return "", errors.Wrap(err, "account key")
	}
	buf.Write(account)

	writeU64(&buf, uint64(h.Timestamp.UnixMilli()))
	writeU64(&buf, h.TTL.Millis())
	writeU64(&buf, h.GasPrice)

	bodyHash, err := codec.FromHex(h.BodyHash)
	if err != nil {
		return "", errors.Wrap(err, "body hash")
	}
	buf.Write(bodyHash)

	writeU32(&buf, uint32(len(h.Dependencies)))
	for _, dep := range h.Dependencies {
		depBytes, err := codec.FromHex(dep)
		if err != nil {
			return "", errors.Wrapf(err, "dependency %q", dep)
		}
		buf.Write(depBytes)
	}

	writeString(&buf, h.ChainName)

	sum := blake2b.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:]), nil
}

func writeItem(buf *bytes.Buffer, item ExecutableItem) error {
	tag, ok := itemKindTags[item.Kind]
	if !ok {
		return errors.Errorf("unknown executable item kind %q", item.Kind)
	}
	buf.WriteByte(tag)

	moduleBytes, err := codec.FromHex(item.ModuleBytes)
	if err != nil {
		return errors.Wrap(err, "module bytes")
	}
	writeBytes(buf, moduleBytes)

	if item.Kind != KindModuleBytes {
		addr, err := codec.FromHex(item.Address)
		if err != nil {
			return errors.Wrap(err, "item address")
		}
		writeBytes(buf, addr)
		writeString(buf, item.EntryPoint)
	}

	writeU32(buf, uint32(len(item.Args)))
	for _, arg := range item.Args {
		writeString(buf, arg.Name)
		value, err := codec.FromHex(arg.Value)
		if err != nil {
			return errors.Wrapf(err, "arg %q", arg.Name)
		}
		writeBytes(buf, value)
		writeString(buf, arg.Type)
	}
	return nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	buf.Write(tmp[:])
}

func writeBytes(buf *bytes.Buffer, b []byte) {
	writeU32(buf, uint32(len(b)))
	buf.Write(b)
}

func writeString(buf *bytes.Buffer, s string) {
	writeBytes(buf, []byte(s))
}
