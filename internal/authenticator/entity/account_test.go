package entity

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/stretchr/testify/assert"
)

func TestAccount_CloneIsDeep(t *testing.T) {
	a := Account{ID: "a1", BackupCodes: []string{"one", "two"}}

	c := a.Clone()
	c.BackupCodes[0] = "changed"

	assert.Equal(t, "one", a.BackupCodes[0])
	assert.NotNil(t, Account{}.Clone().BackupCodes)
	assert.Empty(t, Account{}.Clone().BackupCodes)
}

func TestAccount_Params(t *testing.T) {
	a := Account{Secret: "JBSWY3DPEHPK3PXP", Algorithm: otp.AlgorithmSHA256, Digits: 8, Period: 60}

	assert.Equal(t, otp.Params{Secret: "JBSWY3DPEHPK3PXP", Algorithm: otp.AlgorithmSHA256, Digits: 8, Period: 60}, a.Params())
	assert.Equal(t, Credential{Secret: "JBSWY3DPEHPK3PXP", Algorithm: otp.AlgorithmSHA256, Digits: 8, Period: 60}, a.Credential())
}

func TestPatch_Apply(t *testing.T) {
	a := Account{ID: "a1", Issuer: "ACME", Label: "alice", Digits: 6, Period: 30, BackupCodes: []string{"x"}}

	issuer := "Globex"
	period := 60
	p := Patch{Issuer: &issuer, Period: &period}

	got := p.Apply(a)
	assert.Equal(t, "Globex", got.Issuer)
	assert.Equal(t, "alice", got.Label)
	assert.Equal(t, 60, got.Period)
	assert.Equal(t, 6, got.Digits)
	assert.Equal(t, "a1", got.ID)
	assert.Equal(t, "ACME", a.Issuer, "original untouched")

	assert.False(t, p.Empty())
	assert.True(t, Patch{}.Empty())
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("import: %w", NewValidationError(map[string]string{
		"accounts[1].digits": "Digits must be 10 or less",
		"accounts[0].secret": "Secret is a required field",
	}))

	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "import: validation failed: accounts[0].secret: Secret is a required field; accounts[1].digits: Digits must be 10 or less", err.Error())

	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 2)

	assert.Equal(t, "validation failed", NewValidationError(nil).Error())
}
