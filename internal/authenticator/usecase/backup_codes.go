package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type (
	GetBackupCodesInput struct {
		ID string `validate:"required"`
	}

	SetBackupCodesInput struct {
		ID    string   `validate:"required"`
		Codes []string `validate:"max=100,dive,max=128"`
	}

	BackupCodesOutput struct {
		ID    string
		Codes []string
	}
)

func (s *Usecase) GetBackupCodes(ctx context.Context, in GetBackupCodesInput) (*BackupCodesOutput, error) {
	ctx, span := s.startSpan(ctx, "GetBackupCodes")
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

	return &BackupCodesOutput{ID: acc.ID, Codes: acc.BackupCodes}, nil
}

// SetBackupCodes replaces the account's backup codes. Codes are trimmed and
// blank entries dropped; an empty list clears them.
func (s *Usecase) SetBackupCodes(ctx context.Context, in SetBackupCodesInput) (*BackupCodesOutput, error) {
	ctx, span := s.startSpan(ctx, "SetBackupCodes")
	defer span.End()

	in.Codes = lo.FilterMap(in.Codes, func(c string, _ int) (string, bool) {
		c = strings.TrimSpace(c)
		return c, c != ""
	})
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.getAccount(ctx, in.ID); err != nil {
		return nil, err
	}

	if err := s.store.SetBackupCodes(ctx, in.ID, in.Codes); err != nil {
		slog.ErrorContext(ctx, "failed to set backup codes", "account_id", in.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	s.notify()

	acc, err := s.getAccount(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	return &BackupCodesOutput{ID: acc.ID, Codes: acc.BackupCodes}, nil
}
