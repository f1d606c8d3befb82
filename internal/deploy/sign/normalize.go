package sign

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github/caspercreds/go-deploy/internal/deploy"
	"github/caspercreds/go-deploy/internal/deploy/codec"
)

// Algorithm tag bytes, as used by both public keys and canonical signatures.
const (
	TagEd25519   byte = 0x01
	TagSecp256k1 byte = 0x02
)

const (
	rawSignatureHexLen    = 128 // 64-byte untagged signature
	taggedSignatureHexLen = 130 // 1-byte tag + 64-byte signature
)

var (
	// ErrUnsupportedSignatureLength is returned for signatures that are
	// neither 64 nor 65 bytes.
	ErrUnsupportedSignatureLength = errors.New("unsupported signature length")

	// ErrUnknownAlgorithmTag is returned when the signer's public key does
	// not start with a known algorithm tag.
	ErrUnknownAlgorithmTag = errors.New("unknown algorithm tag")

	// ErrMalformedResult is returned when a raw provider payload carries no
	// recognizable signature.
	ErrMalformedResult = errors.New("malformed provider result")
)

// Provider field names a raw result payload may carry its signature under.
// The string-typed field wins when both are present, since callers may
// supply a friendlier decoded variant there.
const (
	fieldSignatureHex = "signatureHex"
	fieldSignature    = "signature"
	fieldDeploy       = "deploy"
	fieldSignedDeploy = "signedDeploy"
)

// Normalized is the normalizer's output: either an already-signed deploy or
// a canonical tagged signature hex, never both.
type Normalized struct {
	Deploy       *deploy.Deploy
	SignatureHex string
}

// AlreadySigned reports whether normalization short-circuited on a full
// signed deploy.
func (n Normalized) AlreadySigned() bool {
	return n.Deploy != nil
}

// Normalize turns a signing result into either an already-signed deploy or
// a canonical 65-byte tagged signature in hex. Untagged 64-byte signatures
// get a tag derived from the signer's public key prepended; the provider is
// never trusted to supply the tag itself, because the key already encodes
// the algorithm and some provider versions tag inconsistently.
func Normalize(res SigningResult, signerPublicKeyHex string) (Normalized, error) {
	switch res.Kind {
	case KindSignedDeploy:
		if res.Deploy == nil {
			return Normalized{}, errors.Wrap(ErrMalformedResult, "signed-deploy result without deploy")
		}
		return Normalized{Deploy: res.Deploy}, nil
	case KindRawSignature:
		return normalizeRaw(res.Payload, signerPublicKeyHex)
	case KindCancelled:
		return Normalized{}, errors.New("cannot normalize a cancelled result")
	case KindFailed:
		return Normalized{}, errors.Errorf("cannot normalize a failed result: %s", res.Reason)
	case KindSubmitted:
		return Normalized{}, errors.New("cannot normalize an already-submitted result")
	default:
		return Normalized{}, errors.Wrapf(ErrMalformedResult, "unknown result kind %d", res.Kind)
	}
}

func normalizeRaw(payload any, signerPublicKeyHex string) (Normalized, error) {
	if payload == nil {
		return Normalized{}, errors.Wrap(ErrMalformedResult, "empty payload")
	}

	if m, ok := payload.(map[string]any); ok {
		// A nested full deploy means the provider signed the whole thing.
		for _, field := range []string{fieldSignedDeploy, fieldDeploy} {
			if nested, ok := m[field]; ok && nested != nil {
				d, err := decodeDeploy(nested)
				if err != nil {
					return Normalized{}, err
				}
				return Normalized{Deploy: d}, nil
			}
		}

		located, err := locateSignature(m)
		if err != nil {
			return Normalized{}, err
		}
		payload = located
	}

	sigHex, err := codec.ToHex(payload)
	if err != nil {
		return Normalized{}, errors.Wrap(err, "signature payload")
	}

	switch len(sigHex) {
	case taggedSignatureHexLen:
		return Normalized{SignatureHex: sigHex}, nil
	case rawSignatureHexLen:
		tag, err := AlgorithmTag(signerPublicKeyHex)
		if err != nil {
			return Normalized{}, err
		}
		return Normalized{SignatureHex: tagHex(tag) + sigHex}, nil
	default:
		return Normalized{}, errors.Wrapf(ErrUnsupportedSignatureLength, "%d hex chars", len(sigHex))
	}
}

// locateSignature picks the signature payload out of a raw provider map,
// preferring the string-typed field.
func locateSignature(m map[string]any) (any, error) {
	if v, ok := m[fieldSignatureHex]; ok {
		if s, ok := v.(string); ok && s != "" {
			return s, nil
		}
	}
	if v, ok := m[fieldSignature]; ok && v != nil {
		return v, nil
	}
	return nil, errors.Wrap(ErrMalformedResult, "no signature field present")
}

// AlgorithmTag derives the 1-byte algorithm tag from the first byte-pair of
// the signer's public key hex.
func AlgorithmTag(publicKeyHex string) (byte, error) {
	keyBytes, err := codec.FromHex(publicKeyHex)
	if err != nil {
		return 0, errors.Wrap(err, "signer public key")
	}
	if len(keyBytes) == 0 {
		return 0, errors.Wrap(ErrUnknownAlgorithmTag, "empty public key")
	}
	tag := keyBytes[0]
	if tag != TagEd25519 && tag != TagSecp256k1 {
		return 0, errors.Wrapf(ErrUnknownAlgorithmTag, "0x%02x", tag)
	}
	return tag, nil
}

func tagHex(tag byte) string {
	const hexDigits = "0123456789abcdef"
	return string([]byte{hexDigits[tag>>4], hexDigits[tag&0x0f]})
}

// decodeDeploy round-trips an untyped nested deploy through JSON into the
// typed model.
func decodeDeploy(v any) (*deploy.Deploy, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedResult, err.Error())
	}
	var d deploy.Deploy
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, errors.Wrap(ErrMalformedResult, err.Error())
	}
	if d.Header.Account == "" {
		return nil, errors.Wrap(ErrMalformedResult, "nested deploy has no header")
	}
	return &d, nil
}
