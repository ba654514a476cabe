package cachyr

import (
	"errors"
	"fmt"
	"strings"
)

// Key encoding errors.
var (
	errMalformedEncodedKey = errors.New("malformed encoded key")
)

// escapeByte introduces a two-digit hex escape in encoded keys.
// It must itself be escaped so decoding stays unambiguous.
const escapeByte = '%'

// hexDigits is the upper-case alphabet used for escape sequences.
const hexDigits = "0123456789ABCDEF"

// isDisallowedInStorageName reports whether a key byte may not appear
// literally in a filename. The set is the ASCII control range, DEL, and
// the characters rejected by the strictest common filesystems, plus the
// escape byte itself. Bytes >= 0x80 (UTF-8 continuation and lead bytes)
// are always allowed, so multi-byte characters pass through untouched.
func isDisallowedInStorageName(b byte) bool {
	if b <= 0x1F || b == 0x7F {
		return true
	}

	switch b {
	case '"', '*', '/', ':', '<', '>', '?', '\\', '|', escapeByte:
		return true
	}

	return false
}

// encodeKey maps an arbitrary key to a filesystem-legal form by
// percent-escaping every disallowed byte. The mapping is a bijection:
// decodeKey inverts it exactly. It never fails.
func encodeKey(key string) string {
	// Fast path: most keys contain no disallowed bytes.
	clean := true

	for i := 0; i < len(key); i++ {
		if isDisallowedInStorageName(key[i]) {
			clean = false

			break
		}
	}

	if clean {
		return key
	}

	var sb strings.Builder

	sb.Grow(len(key) + 2*3) // room for a few escapes without regrowing

	for i := 0; i < len(key); i++ {
		b := key[i]
		if isDisallowedInStorageName(b) {
			sb.WriteByte(escapeByte)
			sb.WriteByte(hexDigits[b>>4])
			sb.WriteByte(hexDigits[b&0x0F])

			continue
		}

		sb.WriteByte(b)
	}

	return sb.String()
}

// decodeKey is the exact inverse of encodeKey.
//
// It fails only on malformed input (a truncated or non-hex escape), which
// can occur when a legacy filename that was never produced by encodeKey
// is decoded during index migration.
func decodeKey(encoded string) (string, error) {
	idx := strings.IndexByte(encoded, escapeByte)
	if idx < 0 {
		return encoded, nil
	}

	var sb strings.Builder

	sb.Grow(len(encoded))

	for i := 0; i < len(encoded); i++ {
		b := encoded[i]
		if b != escapeByte {
			sb.WriteByte(b)

			continue
		}

		if i+2 >= len(encoded) {
			return "", fmt.Errorf("%w: truncated escape at offset %d", errMalformedEncodedKey, i)
		}

		hi := hexValue(encoded[i+1])
		lo := hexValue(encoded[i+2])

		if hi < 0 || lo < 0 {
			return "", fmt.Errorf("%w: invalid escape %q at offset %d", errMalformedEncodedKey, encoded[i:i+3], i)
		}

		sb.WriteByte(byte(hi<<4 | lo))
		i += 2
	}

	return sb.String(), nil
}

// hexValue returns the value of a hex digit, or -1.
// Both cases are accepted on decode even though encodeKey emits upper case.
func hexValue(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'A' && b <= 'F':
		return int(b-'A') + 10
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	default:
		return -1
	}
}
