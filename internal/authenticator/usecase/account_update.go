package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"github.com/shandysiswandi/gotp/internal/pkg/otpauth"
)

type (
	// UpdateAccountInput replaces the non-nil fields of an account. A present
	// label must not be blank; a blank issuer becomes otpauth.UnknownIssuer.
	UpdateAccountInput struct {
		ID        string  `validate:"required"`
		Issuer    *string `validate:"omitempty,max=256"`
		Label     *string `validate:"omitempty,min=1,max=256"`
		Secret    *string `validate:"omitempty,max=512,otpsecret"`
		Algorithm *string `validate:"omitempty,otpalgorithm"`
		Digits    *int    `validate:"omitempty,min=1,max=10"`
		Period    *int    `validate:"omitempty,min=1,max=300"`
	}
)

func (in UpdateAccountInput) normalized() UpdateAccountInput {
	if in.Issuer != nil {
		v := strings.TrimSpace(*in.Issuer)
		if v == "" {
			v = otpauth.UnknownIssuer
		}
		in.Issuer = &v
	}
	if in.Label != nil {
		v := strings.TrimSpace(*in.Label)
		in.Label = &v
	}
	if in.Secret != nil {
		v := otp.NormalizeSecret(*in.Secret)
		in.Secret = &v
	}
	if in.Algorithm != nil {
		v := strings.ToUpper(strings.TrimSpace(*in.Algorithm))
		in.Algorithm = &v
	}
	return in
}

func (in UpdateAccountInput) patch() entity.Patch {
	p := entity.Patch{
		Issuer: in.Issuer,
		Label:  in.Label,
		Secret: in.Secret,
		Digits: in.Digits,
		Period: in.Period,
	}
	if in.Algorithm != nil {
		alg := otp.Algorithm(*in.Algorithm)
		p.Algorithm = &alg
	}
	return p
}

func (s *Usecase) UpdateAccount(ctx context.Context, in UpdateAccountInput) (*AccountOutput, error) {
	ctx, span := s.startSpan(ctx, "UpdateAccount")
	defer span.End()

	in = in.normalized()
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getAccount(ctx, in.ID); err != nil {
		return nil, err
	}

	p := in.patch()
	if !p.Empty() {
		if err := s.store.Update(ctx, in.ID, p); err != nil {
			slog.ErrorContext(ctx, "failed to update account", "account_id", in.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
		s.notify()
	}

	acc, err := s.getAccount(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	return &AccountOutput{Account: summarize(acc)}, nil
}
