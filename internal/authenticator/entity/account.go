package entity

import (
	"slices"
	"time"

	"github.com/shandysiswandi/gotp/internal/pkg/otp"
)

// Field ceilings shared by manual entry, updates and bundle import.
const (
	MaxIssuerLen     = 256
	MaxLabelLen      = 256
	MaxSecretLen     = 512
	MaxBackupCodes   = 100
	MaxBackupCodeLen = 128
)

// Account is a stored OTP credential. The JSON names are the persisted and
// exported wire format.
type Account struct {
	ID          string        `json:"id"`
	Issuer      string        `json:"issuer"`
	Label       string        `json:"label"`
	Secret      string        `json:"secret"`
	Algorithm   otp.Algorithm `json:"algorithm"`
	Digits      int           `json:"digits"`
	Period      int           `json:"period"`
	CreatedAt   int64         `json:"createdAt"`
	BackupCodes []string      `json:"backupCodes"`
}

// Params returns what the engine needs to render the account's code.
func (a Account) Params() otp.Params {
	return otp.Params{
		Secret:    a.Secret,
		Algorithm: a.Algorithm,
		Digits:    a.Digits,
		Period:    a.Period,
	}
}

// Credential returns the account without its identity and backup codes.
func (a Account) Credential() Credential {
	return Credential{
		Issuer:    a.Issuer,
		Label:     a.Label,
		Secret:    a.Secret,
		Algorithm: a.Algorithm,
		Digits:    a.Digits,
		Period:    a.Period,
	}
}

// Created returns CreatedAt as a time.
func (a Account) Created() time.Time {
	return time.UnixMilli(a.CreatedAt)
}

// Clone returns a deep copy. BackupCodes is never nil in the copy.
func (a Account) Clone() Account {
	a.BackupCodes = CloneCodes(a.BackupCodes)
	return a
}

// CloneCodes copies codes, turning nil into an empty slice.
func CloneCodes(codes []string) []string {
	if codes == nil {
		return []string{}
	}
	return slices.Clone(codes)
}

// Credential is a validated but not yet stored account. It comes from a
// scanned provisioning URI or from manual entry.
type Credential struct {
	Issuer    string
	Label     string
	Secret    string
	Algorithm otp.Algorithm
	Digits    int
	Period    int
}

// Patch lists replacement values for an account. Nil fields are left alone.
type Patch struct {
	Issuer    *string
	Label     *string
	Secret    *string
	Algorithm *otp.Algorithm
	Digits    *int
	Period    *int
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.Issuer == nil && p.Label == nil && p.Secret == nil &&
		p.Algorithm == nil && p.Digits == nil && p.Period == nil
}

// Apply returns a copy of a with the patch fields replaced.
func (p Patch) Apply(a Account) Account {
	a = a.Clone()
	if p.Issuer != nil {
		a.Issuer = *p.Issuer
	}
	if p.Label != nil {
		a.Label = *p.Label
	}
	if p.Secret != nil {
		a.Secret = *p.Secret
	}
	if p.Algorithm != nil {
		a.Algorithm = *p.Algorithm
	}
	if p.Digits != nil {
		a.Digits = *p.Digits
	}
	if p.Period != nil {
		a.Period = *p.Period
	}
	return a
}
