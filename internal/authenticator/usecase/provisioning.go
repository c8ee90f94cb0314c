package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/otpauth"
)

type (
	ProvisioningURIInput struct {
		ID string `validate:"required"`
	}

	ProvisioningURIOutput struct {
		URI string
	}

	QRCodeInput struct {
		ID   string `validate:"required"`
		Size int    `validate:"omitempty,min=64,max=1024"`
	}

	QRCodeOutput struct {
		PNG []byte
	}
)

func (s *Usecase) provisioningURI(ctx context.Context, id string) (string, error) {
	s.mu.RLock()
	acc, err := s.getAccount(ctx, id)
	s.mu.RUnlock()
	if err != nil {
		return "", err
	}

	return otpauth.Format(otpauth.Credential{
		Issuer:    acc.Issuer,
		Label:     acc.Label,
		Secret:    acc.Secret,
		Algorithm: acc.Algorithm,
		Digits:    acc.Digits,
		Period:    acc.Period,
	}), nil
}

// ProvisioningURI rebuilds the otpauth URI of an account for export to
// another authenticator.
func (s *Usecase) ProvisioningURI(ctx context.Context, in ProvisioningURIInput) (*ProvisioningURIOutput, error) {
	ctx, span := s.startSpan(ctx, "ProvisioningURI")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	uri, err := s.provisioningURI(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	return &ProvisioningURIOutput{URI: uri}, nil
}

// QRCode renders the provisioning URI of an account as a PNG.
func (s *Usecase) QRCode(ctx context.Context, in QRCodeInput) (*QRCodeOutput, error) {
	ctx, span := s.startSpan(ctx, "QRCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	uri, err := s.provisioningURI(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	img, err := otpauth.QRCode(uri, in.Size)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render qr code", "account_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &QRCodeOutput{PNG: img}, nil
}
