// Package bundle encodes and decodes versioned account backups.
package bundle

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/otpauth"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

// ContentType is the MIME type of an exported bundle.
const ContentType = "application/json"

// ErrMalformed is returned when the bundle is not a single JSON document of
// the expected shape.
var ErrMalformed = errors.New("bundle: malformed document")

type document struct {
	Version    *int     `json:"version"`
	ExportedAt int64    `json:"exportedAt"`
	Accounts   []record `json:"accounts" validate:"dive"`
}

type record struct {
	ID          string        `json:"id"`
	Issuer      string        `json:"issuer" validate:"max=256"`
	Label       string        `json:"label" validate:"max=256"`
	Secret      string        `json:"secret" validate:"required,max=512,otpbase32"`
	Algorithm   otp.Algorithm `json:"algorithm" validate:"required,otpalgorithm"`
	Digits      int           `json:"digits" validate:"min=1,max=10"`
	Period      int           `json:"period" validate:"min=1,max=300"`
	CreatedAt   int64         `json:"createdAt"`
	BackupCodes []string      `json:"backupCodes" validate:"max=100,dive,max=128"`
}

// Codec turns account lists into bundles and back.
type Codec struct {
	validate validator.Validator
	ids      uid.StringID
	clock    clock.Clocker
}

// NewCodec returns a Codec. Imported accounts get ids from ids and creation
// times from clk.
func NewCodec(v validator.Validator, ids uid.StringID, clk clock.Clocker) *Codec {
	return &Codec{validate: v, ids: ids, clock: clk}
}

// Export serializes accounts as a version 1 bundle stamped with now.
func (c *Codec) Export(accounts []entity.Account, now time.Time) ([]byte, error) {
	b := entity.Bundle{
		Version:    entity.BundleVersion,
		ExportedAt: now.UnixMilli(),
		Accounts: lo.Map(accounts, func(a entity.Account, _ int) entity.Account {
			return a.Clone()
		}),
	}

	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("bundle: encode: %w", err)
	}
	return data, nil
}

// Import decodes and validates a bundle. Any invalid record rejects the whole
// bundle. Returned accounts carry fresh ids and creation times. Issuer and
// label are trimmed the way manual entry trims them, with an empty issuer
// becoming otpauth.UnknownIssuer; everything else is taken verbatim.
func (c *Codec) Import(data []byte) ([]entity.Account, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: trailing data after document", ErrMalformed)
	}

	if doc.Version == nil {
		return nil, fmt.Errorf("%w: missing version", entity.ErrSchemaVersion)
	}
	if *doc.Version != entity.BundleVersion {
		return nil, fmt.Errorf("%w: %d", entity.ErrSchemaVersion, *doc.Version)
	}

	if err := c.validate.Validate(doc); err != nil {
		var verr validator.V10ValidationError
		if errors.As(err, &verr) {
			return nil, entity.NewValidationError(verr.Values())
		}
		return nil, err
	}

	now := c.clock.Now().UnixMilli()
	return lo.Map(doc.Accounts, func(r record, _ int) entity.Account {
		return entity.Account{
			ID:          c.ids.Generate(),
			Issuer:      issuerOrUnknown(r.Issuer),
			Label:       strings.TrimSpace(r.Label),
			Secret:      r.Secret,
			Algorithm:   r.Algorithm,
			Digits:      r.Digits,
			Period:      r.Period,
			CreatedAt:   now,
			BackupCodes: entity.CloneCodes(r.BackupCodes),
		}
	}), nil
}

func issuerOrUnknown(issuer string) string {
	if v := strings.TrimSpace(issuer); v != "" {
		return v
	}
	return otpauth.UnknownIssuer
}

// FileName returns the suggested download name for a bundle exported at now.
func FileName(now time.Time) string {
	return "gotp-backup-" + now.Format(time.DateOnly) + ".json"
}
