package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type (
	CurrentCodeInput struct {
		ID string `validate:"required"`
	}

	// CodeOutput is the code of one account at a point in time. When the
	// code cannot be computed Code holds a placeholder and Valid is false.
	CodeOutput struct {
		ID         string
		Code       string
		Valid      bool
		Remaining  int
		Period     int
		ValidUntil time.Time
	}
)

func (s *Usecase) CurrentCode(ctx context.Context, in CurrentCodeInput) (*CodeOutput, error) {
	ctx, span := s.startSpan(ctx, "CurrentCode")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	s.mu.RLock()
	acc, err := s.getAccount(ctx, in.ID)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	out := s.codeFor(ctx, acc, s.clock.Now())
	return &out, nil
}

func (s *Usecase) codeFor(ctx context.Context, acc entity.Account, now time.Time) CodeOutput {
	out := CodeOutput{
		ID:         acc.ID,
		Period:     acc.Period,
		Remaining:  otp.Remaining(acc.Period, now.Unix()),
		ValidUntil: otp.ValidUntil(acc.Period, now),
	}

	code, err := otp.GenerateTOTP(acc.Params(), now)
	if err != nil {
		slog.WarnContext(ctx, "failed to generate code", "account_id", acc.ID, "error", err)
		out.Code = otp.Placeholder(acc.Digits)
		return out
	}

	s.codesGenerated.Add(ctx, 1, metric.WithAttributes(attribute.String("algorithm", acc.Algorithm.String())))

	out.Code = code
	out.Valid = true
	return out
}
