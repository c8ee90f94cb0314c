package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type (
	DeleteAccountInput struct {
		ID string `validate:"required"`
	}

	ClearAccountsOutput struct {
		Removed int
	}
)

// DeleteAccount removes one account. Deleting an unknown id succeeds.
func (s *Usecase) DeleteAccount(ctx context.Context, in DeleteAccountInput) error {
	ctx, span := s.startSpan(ctx, "DeleteAccount")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.store.Get(in.ID); !ok {
		return nil
	}

	if err := s.store.Remove(ctx, in.ID); err != nil {
		slog.ErrorContext(ctx, "failed to remove account", "account_id", in.ID, "error", err)
		return goerror.NewServer(err)
	}

	s.notify()
	slog.InfoContext(ctx, "account removed", "account_id", in.ID)

	return nil
}

// ClearAccounts removes every account.
func (s *Usecase) ClearAccounts(ctx context.Context) (*ClearAccountsOutput, error) {
	ctx, span := s.startSpan(ctx, "ClearAccounts")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.store.Len()
	if err := s.store.ClearAll(ctx); err != nil {
		slog.ErrorContext(ctx, "failed to clear accounts", "error", err)
		return nil, goerror.NewServer(err)
	}

	s.notify()
	slog.InfoContext(ctx, "accounts cleared", "removed", removed)

	return &ClearAccountsOutput{Removed: removed}, nil
}
