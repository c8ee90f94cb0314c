package otpauth

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shandysiswandi/gotp/internal/pkg/otp"
)

const (
	// Scheme is the provisioning URI scheme.
	Scheme = "otpauth"
	// TypeTOTP is the only accepted URI type (host position).
	TypeTOTP = "totp"
	// UnknownIssuer replaces an issuer that is empty after parsing.
	UnknownIssuer = "Unknown"
)

// ErrParse indicates the text is not an acceptable TOTP provisioning URI.
var ErrParse = errors.New("otpauth: invalid provisioning uri")

// Credential is the structured form of a provisioning URI.
type Credential struct {
	Issuer    string
	Label     string
	Secret    string
	Algorithm otp.Algorithm
	Digits    int
	Period    int
}

// Parse decodes an otpauth://totp URI. The label path is split on its first
// colon into issuer and label; an issuer query parameter overrides the path
// issuer. Missing algorithm, digits and period take the SHA1/6/30 defaults.
func Parse(uri string) (*Credential, error) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if !strings.EqualFold(u.Scheme, Scheme) {
		return nil, fmt.Errorf("%w: scheme %q", ErrParse, u.Scheme)
	}
	if !strings.EqualFold(u.Host, TypeTOTP) {
		return nil, fmt.Errorf("%w: type %q", ErrParse, u.Host)
	}

	issuer, label := splitLabel(strings.TrimPrefix(u.Path, "/"))

	q := u.Query()

	secret := otp.NormalizeSecret(q.Get("secret"))
	if secret == "" {
		return nil, fmt.Errorf("%w: missing secret", ErrParse)
	}
	if !otp.CanonicalSecret(secret) {
		return nil, fmt.Errorf("%w: secret is not base32", ErrParse)
	}

	if v := strings.TrimSpace(q.Get("issuer")); v != "" {
		issuer = v
	}
	if issuer == "" {
		issuer = UnknownIssuer
	}

	alg := otp.DefaultAlgorithm
	if q.Has("algorithm") {
		var ok bool
		if alg, ok = otp.ParseAlgorithm(q.Get("algorithm")); !ok {
			return nil, fmt.Errorf("%w: algorithm %q", ErrParse, q.Get("algorithm"))
		}
	}

	digits, err := intParam(q, "digits", otp.DefaultDigits, otp.MinDigits, otp.MaxDigits)
	if err != nil {
		return nil, err
	}

	period, err := intParam(q, "period", otp.DefaultPeriod, otp.MinPeriod, otp.MaxPeriod)
	if err != nil {
		return nil, err
	}

	return &Credential{
		Issuer:    issuer,
		Label:     label,
		Secret:    secret,
		Algorithm: alg,
		Digits:    digits,
		Period:    period,
	}, nil
}

// Format builds the provisioning URI for c such that Parse(Format(c)) yields c.
func Format(c Credential) string {
	q := url.Values{}
	q.Set("secret", c.Secret)
	if c.Issuer != "" {
		q.Set("issuer", c.Issuer)
	}
	q.Set("algorithm", c.Algorithm.String())
	q.Set("digits", strconv.Itoa(c.Digits))
	q.Set("period", strconv.Itoa(c.Period))

	// An issuer that itself holds a colon cannot live in the label path; the
	// query parameter carries it alone. A leading colon keeps a label that
	// holds a colon from being split on parse.
	path := c.Label
	switch {
	case c.Issuer != "" && !strings.Contains(c.Issuer, ":"):
		path = c.Issuer + ":" + c.Label
	case strings.Contains(c.Label, ":"):
		path = ":" + c.Label
	}

	u := url.URL{
		Scheme:   Scheme,
		Host:     TypeTOTP,
		Path:     "/" + path,
		RawQuery: strings.ReplaceAll(q.Encode(), "+", "%20"),
	}

	return u.String()
}

func splitLabel(path string) (issuer, label string) {
	before, after, found := strings.Cut(path, ":")
	if !found {
		return "", strings.TrimSpace(path)
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}

func intParam(q url.Values, key string, def, lo, hi int) (int, error) {
	if !q.Has(key) {
		return def, nil
	}

	n, err := strconv.ParseInt(strings.TrimSpace(q.Get(key)), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s is not an integer", ErrParse, key)
	}
	if int(n) < lo || int(n) > hi {
		return 0, fmt.Errorf("%w: %s %d out of range [%d,%d]", ErrParse, key, n, lo, hi)
	}

	return int(n), nil
}
