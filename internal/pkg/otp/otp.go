package otp

import (
	"errors"
	"fmt"
	"strings"
	"time"

	libOTP "github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

const (
	MinDigits     = 1
	MaxDigits     = 10
	DefaultDigits = 6

	MinPeriod     = 1
	MaxPeriod     = 300
	DefaultPeriod = 30
)

// ErrInvalidParams indicates an unsupported algorithm, digit count or period.
var ErrInvalidParams = errors.New("otp: invalid parameters")

// Params is everything needed to compute a TOTP code.
type Params struct {
	Secret    string
	Algorithm Algorithm
	Digits    int
	Period    int
}

// Generate returns the HOTP code for counter as exactly digits decimal
// characters, left-padded with zeros.
func Generate(secret string, alg Algorithm, digits int, counter uint64) (string, error) {
	lib, ok := alg.library()
	if !ok {
		return "", fmt.Errorf("%w: algorithm %q", ErrInvalidParams, alg)
	}
	if digits < MinDigits || digits > MaxDigits {
		return "", fmt.Errorf("%w: digits %d", ErrInvalidParams, digits)
	}

	padded, err := paddedSecret(secret)
	if err != nil {
		return "", err
	}

	code, err := hotp.GenerateCodeCustom(padded, counter, hotp.ValidateOpts{
		Digits:    libOTP.Digits(digits),
		Algorithm: lib,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return code, nil
}

// CurrentCounter returns the RFC 6238 time step floor(unix / period).
func CurrentCounter(period int, now time.Time) uint64 {
	t := now.Unix()
	if period <= 0 || t < 0 {
		return 0
	}
	return uint64(t) / uint64(period)
}

// GenerateTOTP returns the code valid at now.
func GenerateTOTP(p Params, now time.Time) (string, error) {
	if p.Period < MinPeriod || p.Period > MaxPeriod {
		return "", fmt.Errorf("%w: period %d", ErrInvalidParams, p.Period)
	}
	return Generate(p.Secret, p.Algorithm, p.Digits, CurrentCounter(p.Period, now))
}

// Placeholder is the non-numeric filler shown in place of a code that could
// not be computed.
func Placeholder(digits int) string {
	if digits < DefaultDigits {
		digits = DefaultDigits
	}
	if digits > MaxDigits {
		digits = MaxDigits
	}
	return strings.Repeat("-", digits)
}
