package validator

import (
	"testing"

	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAccount struct {
	Secret      string        `validate:"required,max=512,otpbase32"`
	Algorithm   otp.Algorithm `validate:"otpalgorithm"`
	Digits      int           `validate:"min=1,max=10"`
	BackupCodes []string      `validate:"max=100,dive,max=128"`
}

type testBundle struct {
	Version  int           `validate:"eq=1"`
	Accounts []testAccount `validate:"dive"`
}

type testManual struct {
	Issuer string `validate:"max=256"`
	Secret string `validate:"required,otpsecret"`
}

func newValidator(t *testing.T) *V10Validator {
	t.Helper()
	v, err := NewV10Validator()
	require.NoError(t, err)
	return v
}

func TestV10Validator_Valid(t *testing.T) {
	v := newValidator(t)

	err := v.Validate(testBundle{
		Version: 1,
		Accounts: []testAccount{
			{Secret: "GEZA", Algorithm: otp.AlgorithmSHA256, Digits: 6},
		},
	})

	assert.NoError(t, err)
}

func TestV10Validator_NestedKeys(t *testing.T) {
	v := newValidator(t)

	err := v.Validate(testBundle{
		Version: 1,
		Accounts: []testAccount{
			{Secret: "GEZA", Algorithm: otp.AlgorithmSHA1, Digits: 6},
			{Secret: "GEZ1", Algorithm: otp.Algorithm("MD5"), Digits: 11, BackupCodes: []string{string(make([]byte, 129))}},
		},
	})

	var verr V10ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr, 4)
	assert.Contains(t, verr, "accounts[1].secret")
	assert.Contains(t, verr, "accounts[1].digits")
	assert.Contains(t, verr, "accounts[1].backup_codes[0]")
	assert.Equal(t, "Algorithm must be one of SHA1, SHA256, SHA512", verr["accounts[1].algorithm"])
	assert.Equal(t, "Secret must be upper-case base32 (A-Z, 2-7) without spaces", verr["accounts[1].secret"])
}

func TestV10Validator_StoredSecretIsStrict(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{name: "canonical", secret: "JBSWY3DPEHPK3PXP"},
		{name: "lowercase", secret: "jbswy3dpehpk3pxp", wantErr: true},
		{name: "grouped", secret: "jbsw y3dp ehpk 3pxp", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(testAccount{Secret: tt.secret, Algorithm: otp.AlgorithmSHA1, Digits: 6})
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var verr V10ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr, "secret")
		})
	}
}

func TestV10Validator_ManualSecret(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.Validate(testManual{Secret: "JBSWY3DPEHPK3PXP"}))

	err := v.Validate(testManual{Secret: "JBSWY3DP"})
	var verr V10ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "Secret must be at least 16 base32 characters (A-Z, 2-7)", verr["secret"])
}

func TestV10ValidationError_Error(t *testing.T) {
	assert.Equal(t, "validation error", V10ValidationError{}.Error())
	assert.JSONEq(t, `{"digits":"bad"}`, V10ValidationError{"digits": "bad"}.Error())
}
