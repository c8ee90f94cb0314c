package otp

import (
	"encoding/base32"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// MinSecretLength is the shortest normalized secret accepted from manual entry.
const MinSecretLength = 16

// ErrDecode indicates the secret is not valid base32 text.
var ErrDecode = errors.New("otp: secret is not valid base32")

var reSecret = regexp.MustCompile(`^[A-Z2-7]+=*$`)

// NormalizeSecret removes every whitespace rune and upper-cases the rest.
func NormalizeSecret(raw string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw))
}

// CanonicalSecret reports whether the normalized secret uses only the base32
// alphabet with optional trailing padding. No length floor is applied, which
// is what provisioned (scanned or imported) secrets need.
func CanonicalSecret(secret string) bool {
	return reSecret.MatchString(NormalizeSecret(secret))
}

// StoredSecret reports whether secret is already in canonical form: no
// whitespace, upper case, base32 alphabet with optional trailing padding.
func StoredSecret(secret string) bool {
	return secret == NormalizeSecret(secret) && reSecret.MatchString(secret)
}

// ValidSecret reports whether a manually entered secret is acceptable: the
// canonical alphabet and at least MinSecretLength characters after
// normalization.
func ValidSecret(secret string) bool {
	s := NormalizeSecret(secret)
	return len(s) >= MinSecretLength && reSecret.MatchString(s)
}

// DecodeSecret returns the raw key bytes of a base32 secret. Missing padding
// is restored before decoding.
func DecodeSecret(secret string) ([]byte, error) {
	padded, err := paddedSecret(secret)
	if err != nil {
		return nil, err
	}

	key, err := base32.StdEncoding.DecodeString(padded)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return key, nil
}

func paddedSecret(secret string) (string, error) {
	s := NormalizeSecret(secret)
	if !reSecret.MatchString(s) {
		return "", ErrDecode
	}

	s = strings.TrimRight(s, "=")
	if n := len(s) % 8; n != 0 {
		s += strings.Repeat("=", 8-n)
	}

	return s, nil
}
