package codec

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrMalformedHex is returned when a hex string has odd length or contains
// non-hex characters.
var ErrMalformedHex = errors.New("malformed hex input")

// ToHex converts a provider-supplied byte payload to a lowercase hex string
// without prefix. Signing providers disagree on the shape they hand back, so
// the accepted inputs are:
//
//   - string: treated as hex (optional 0x prefix stripped), validated and
//     lower-cased; already-hex input round-trips unchanged
//   - []byte
//   - []any / []float64 / []int: JSON-decoded numeric arrays, values 0-255
//   - map[string]any with consecutive numeric keys: the JSON shape of a
//     serialized typed array ({"0":171,"1":12,...})
func ToHex(v any) (string, error) {
	switch val := v.(type) {
	case string:
		s := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(val, "0x"), "0X"))
		if err := validateHex(s); err != nil {
			return "", err
		}
		return s, nil
	case []byte:
		return hex.EncodeToString(val), nil
	case []any:
		return sliceToHex(val)
	case []float64:
		anys := make([]any, len(val))
		for i, f := range val {
			anys[i] = f
		}
		return sliceToHex(anys)
	case []int:
		anys := make([]any, len(val))
		for i, n := range val {
			anys[i] = n
		}
		return sliceToHex(anys)
	case map[string]any:
		return indexedMapToHex(val)
	default:
		return "", errors.Errorf("unsupported byte payload shape %T", v)
	}
}

// FromHex decodes a hex string (optional 0x prefix) into bytes. Fails with
// ErrMalformedHex on odd length or non-hex characters.
func FromHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if err := validateHex(s); err != nil {
		return nil, err
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(ErrMalformedHex, err.Error())
	}
	return b, nil
}

func validateHex(s string) error {
	if len(s)%2 != 0 {
		return errors.Wrapf(ErrMalformedHex, "odd length %d", len(s))
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		isHexDigit := (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
		if !isHexDigit {
			return errors.Wrapf(ErrMalformedHex, "invalid character %q at offset %d", c, i)
		}
	}
	return nil
}

func sliceToHex(vals []any) (string, error) {
	buf := make([]byte, len(vals))
	for i, v := range vals {
		b, err := byteValue(v)
		if err != nil {
			return "", errors.Wrapf(err, "element %d", i)
		}
		buf[i] = b
	}
	return hex.EncodeToString(buf), nil
}

// indexedMapToHex handles the JSON representation of a typed array, an object
// keyed "0".."n-1". Keys must be consecutive starting at zero.
func indexedMapToHex(m map[string]any) (string, error) {
	buf := make([]byte, len(m))
	for i := range buf {
		v, ok := m[strconv.Itoa(i)]
		if !ok {
			return "", errors.Errorf("indexed byte object missing key %d", i)
		}
		b, err := byteValue(v)
		if err != nil {
			return "", errors.Wrapf(err, "key %d", i)
		}
		buf[i] = b
	}
	return hex.EncodeToString(buf), nil
}

func byteValue(v any) (byte, error) {
	var n int64
	switch num := v.(type) {
	case float64:
		if num != float64(int64(num)) {
			return 0, errors.Errorf("non-integral byte value %v", num)
		}
		n = int64(num)
	case int:
		n = int64(num)
	case int64:
		n = num
	case uint64:
		if num > 255 {
			return 0, errors.Errorf("byte value %d out of range", num)
		}
		n = int64(num)
	case json.Number:
		parsed, err := num.Int64()
		if err != nil {
			return 0, errors.Wrap(err, "non-integral byte value")
		}
		n = parsed
	default:
		return 0, errors.Errorf("unsupported byte value shape %T", v)
	}
	if n < 0 || n > 255 {
		return 0, fmt.Errorf("byte value %d out of range", n)
	}
	return byte(n), nil
}
