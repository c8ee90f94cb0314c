package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/otpauth"
)

type (
	AddAccountInput struct {
		Issuer    string `validate:"max=256"`
		Label     string `validate:"required,max=256"`
		Secret    string `validate:"required,max=512,otpsecret"`
		Algorithm string `validate:"required,otpalgorithm"`
		Digits    int    `validate:"min=1,max=10"`
		Period    int    `validate:"min=1,max=300"`
	}

	ScanAccountInput struct {
		URI string `validate:"required,max=4096"`
	}

	AccountOutput struct {
		Account AccountSummary
	}
)

// withDefaults trims text fields, normalizes the secret and fills the
// SHA1/6/30 defaults for parameters the caller left out.
func (in AddAccountInput) withDefaults() AddAccountInput {
	in.Issuer = strings.TrimSpace(in.Issuer)
	in.Label = strings.TrimSpace(in.Label)
	in.Secret = otp.NormalizeSecret(in.Secret)
	in.Algorithm = strings.ToUpper(strings.TrimSpace(in.Algorithm))
	if in.Algorithm == "" {
		in.Algorithm = otp.DefaultAlgorithm.String()
	}
	if in.Digits == 0 {
		in.Digits = otp.DefaultDigits
	}
	if in.Period == 0 {
		in.Period = otp.DefaultPeriod
	}
	return in
}

// AddAccount stores a manually entered credential.
func (s *Usecase) AddAccount(ctx context.Context, in AddAccountInput) (*AccountOutput, error) {
	ctx, span := s.startSpan(ctx, "AddAccount")
	defer span.End()

	in = in.withDefaults()
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	issuer := in.Issuer
	if issuer == "" {
		issuer = otpauth.UnknownIssuer
	}

	return s.addCredential(ctx, entity.Credential{
		Issuer:    issuer,
		Label:     in.Label,
		Secret:    in.Secret,
		Algorithm: otp.Algorithm(in.Algorithm),
		Digits:    in.Digits,
		Period:    in.Period,
	})
}

// ScanAccount stores the credential carried by a provisioning URI decoded
// from a QR code.
func (s *Usecase) ScanAccount(ctx context.Context, in ScanAccountInput) (*AccountOutput, error) {
	ctx, span := s.startSpan(ctx, "ScanAccount")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	cred, err := otpauth.Parse(in.URI)
	if errors.Is(err, otpauth.ErrParse) {
		slog.WarnContext(ctx, "rejected provisioning uri", "error", err)
		return nil, goerror.NewInvalidFormat("invalid QR code")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse provisioning uri", "error", err)
		return nil, goerror.NewServer(err)
	}

	if utf8.RuneCountInString(cred.Issuer) > entity.MaxIssuerLen ||
		utf8.RuneCountInString(cred.Label) > entity.MaxLabelLen ||
		utf8.RuneCountInString(cred.Secret) > entity.MaxSecretLen {
		return nil, goerror.NewInvalidFormat("invalid QR code")
	}

	return s.addCredential(ctx, entity.Credential{
		Issuer:    cred.Issuer,
		Label:     cred.Label,
		Secret:    cred.Secret,
		Algorithm: cred.Algorithm,
		Digits:    cred.Digits,
		Period:    cred.Period,
	})
}

func (s *Usecase) addCredential(ctx context.Context, c entity.Credential) (*AccountOutput, error) {
	s.mu.Lock()
	acc, err := s.store.Add(ctx, c)
	s.mu.Unlock()
	if err != nil {
		slog.ErrorContext(ctx, "failed to add account", "error", err)
		return nil, goerror.NewServer(err)
	}

	s.notify()
	slog.InfoContext(ctx, "account added", "account_id", acc.ID, "issuer", acc.Issuer)

	return &AccountOutput{Account: summarize(acc)}, nil
}
