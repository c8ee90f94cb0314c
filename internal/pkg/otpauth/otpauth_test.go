package otpauth

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		uri  string
		want Credential
	}{
		{
			name: "full uri",
			uri:  "otpauth://totp/ACME%20Co:john.doe@email.com?secret=HXDMVJECJJWSRB3HWIZR4IFUGFTMXBOZ&issuer=ACME%20Co&algorithm=SHA256&digits=8&period=60",
			want: Credential{Issuer: "ACME Co", Label: "john.doe@email.com", Secret: "HXDMVJECJJWSRB3HWIZR4IFUGFTMXBOZ", Algorithm: otp.AlgorithmSHA256, Digits: 8, Period: 60},
		},
		{
			name: "defaults",
			uri:  "otpauth://totp/Example:alice@google.com?secret=JBSWY3DPEHPK3PXP",
			want: Credential{Issuer: "Example", Label: "alice@google.com", Secret: "JBSWY3DPEHPK3PXP", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30},
		},
		{
			name: "query issuer overrides path issuer",
			uri:  "otpauth://totp/Old:alice?secret=JBSWY3DPEHPK3PXP&issuer=New",
			want: Credential{Issuer: "New", Label: "alice", Secret: "JBSWY3DPEHPK3PXP", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30},
		},
		{
			name: "no issuer anywhere",
			uri:  "otpauth://totp/alice?secret=JBSWY3DPEHPK3PXP",
			want: Credential{Issuer: UnknownIssuer, Label: "alice", Secret: "JBSWY3DPEHPK3PXP", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30},
		},
		{
			name: "label keeps later colons",
			uri:  "otpauth://totp/Corp:team:alice?secret=JBSWY3DPEHPK3PXP",
			want: Credential{Issuer: "Corp", Label: "team:alice", Secret: "JBSWY3DPEHPK3PXP", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30},
		},
		{
			name: "encoded colon in label path",
			uri:  "otpauth://totp/Corp%3Aalice?secret=JBSWY3DPEHPK3PXP",
			want: Credential{Issuer: "Corp", Label: "alice", Secret: "JBSWY3DPEHPK3PXP", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30},
		},
		{
			name: "lowercase secret and algorithm",
			uri:  "otpauth://totp/Corp:alice?secret=jbswy3dpehpk3pxp&algorithm=sha512",
			want: Credential{Issuer: "Corp", Label: "alice", Secret: "JBSWY3DPEHPK3PXP", Algorithm: otp.AlgorithmSHA512, Digits: 6, Period: 30},
		},
		{
			name: "short provisioned secret is trusted",
			uri:  "otpauth://totp/Corp:alice?secret=GEZA",
			want: Credential{Issuer: "Corp", Label: "alice", Secret: "GEZA", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30},
		},
		{
			name: "case-insensitive scheme and type",
			uri:  "OTPAUTH://TOTP/Corp:alice?secret=JBSWY3DPEHPK3PXP",
			want: Credential{Issuer: "Corp", Label: "alice", Secret: "JBSWY3DPEHPK3PXP", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.uri)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		uri  string
	}{
		{name: "wrong scheme", uri: "http://totp/Corp:alice?secret=JBSWY3DPEHPK3PXP"},
		{name: "hotp type", uri: "otpauth://hotp/Corp:alice?secret=JBSWY3DPEHPK3PXP&counter=0"},
		{name: "missing type", uri: "otpauth:///Corp:alice?secret=JBSWY3DPEHPK3PXP"},
		{name: "missing secret", uri: "otpauth://totp/Corp:alice?issuer=Corp"},
		{name: "empty secret", uri: "otpauth://totp/Corp:alice?secret="},
		{name: "secret outside alphabet", uri: "otpauth://totp/Corp:alice?secret=JBSWY3DPEHPK3PX1"},
		{name: "unknown algorithm", uri: "otpauth://totp/Corp:alice?secret=JBSWY3DPEHPK3PXP&algorithm=MD5"},
		{name: "digits not a number", uri: "otpauth://totp/Corp:alice?secret=JBSWY3DPEHPK3PXP&digits=six"},
		{name: "digits out of range", uri: "otpauth://totp/Corp:alice?secret=JBSWY3DPEHPK3PXP&digits=11"},
		{name: "period zero", uri: "otpauth://totp/Corp:alice?secret=JBSWY3DPEHPK3PXP&period=0"},
		{name: "period too long", uri: "otpauth://totp/Corp:alice?secret=JBSWY3DPEHPK3PXP&period=301"},
		{name: "not a uri", uri: "::::"},
		{name: "empty", uri: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.uri)
			assert.ErrorIs(t, err, ErrParse)
			assert.Nil(t, got)
		})
	}
}

func TestFormat_RoundTrip(t *testing.T) {
	creds := []Credential{
		{Issuer: "ACME Co", Label: "john.doe@email.com", Secret: "HXDMVJECJJWSRB3HWIZR4IFUGFTMXBOZ", Algorithm: otp.AlgorithmSHA256, Digits: 8, Period: 60},
		{Issuer: "GitHub", Label: "octocat", Secret: "JBSWY3DPEHPK3PXP", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30},
		{Issuer: "B&Q + Sons", Label: "a/b?c#d", Secret: "GEZDGNBVGY3TQOJQ", Algorithm: otp.AlgorithmSHA512, Digits: 10, Period: 300},
		{Issuer: "Corp", Label: "team:alice", Secret: "GEZA", Algorithm: otp.AlgorithmSHA1, Digits: 1, Period: 1},
		{Issuer: "a:b", Label: "alice", Secret: "GEZA", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30},
		{Issuer: "a:b", Label: "team:alice", Secret: "GEZA", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30},
		{Issuer: UnknownIssuer, Label: "ops:on-call", Secret: "GEZA", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30},
		{Issuer: "Ünïcødé", Label: "名前", Secret: "JBSWY3DPEHPK3PXP", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30},
	}
	for _, c := range creds {
		uri := Format(c)

		got, err := Parse(uri)
		require.NoError(t, err, uri)
		assert.Equal(t, c, *got, uri)
	}
}

func TestFormat_Shape(t *testing.T) {
	uri := Format(Credential{Issuer: "ACME Co", Label: "alice", Secret: "JBSWY3DPEHPK3PXP", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30})

	assert.Equal(t, "otpauth://totp/ACME%20Co:alice?algorithm=SHA1&digits=6&issuer=ACME%20Co&period=30&secret=JBSWY3DPEHPK3PXP", uri)
}

func TestFormat_ColonInIssuerAndLabel(t *testing.T) {
	uri := Format(Credential{Issuer: "a:b", Label: "team:alice", Secret: "GEZA", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30})

	assert.Equal(t, "otpauth://totp/:team:alice?algorithm=SHA1&digits=6&issuer=a%3Ab&period=30&secret=GEZA", uri)
}

func TestQRCode(t *testing.T) {
	uri := Format(Credential{Issuer: "ACME", Label: "alice", Secret: "JBSWY3DPEHPK3PXP", Algorithm: otp.AlgorithmSHA1, Digits: 6, Period: 30})

	data, err := QRCode(uri, 128)
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())
	assert.Equal(t, 128, img.Bounds().Dy())
}
