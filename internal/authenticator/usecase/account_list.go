package usecase

import (
	"context"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/otp"
)

type (
	// AccountSummary is an account without its secret.
	AccountSummary struct {
		ID               string
		Issuer           string
		Label            string
		Algorithm        otp.Algorithm
		Digits           int
		Period           int
		CreatedAt        int64
		BackupCodesCount int
	}

	ListAccountsOutput struct {
		Accounts []AccountSummary
	}
)

func summarize(a entity.Account) AccountSummary {
	return AccountSummary{
		ID:               a.ID,
		Issuer:           a.Issuer,
		Label:            a.Label,
		Algorithm:        a.Algorithm,
		Digits:           a.Digits,
		Period:           a.Period,
		CreatedAt:        a.CreatedAt,
		BackupCodesCount: len(a.BackupCodes),
	}
}

func (s *Usecase) ListAccounts(ctx context.Context) (*ListAccountsOutput, error) {
	_, span := s.startSpan(ctx, "ListAccounts")
	defer span.End()

	s.mu.RLock()
	accounts := s.store.List()
	s.mu.RUnlock()

	return &ListAccountsOutput{
		Accounts: lo.Map(accounts, func(a entity.Account, _ int) AccountSummary {
			return summarize(a)
		}),
	}, nil
}
