package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/authenticator/bundle"
	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
)

type (
	ExportBundleOutput struct {
		FileName    string
		ContentType string
		Data        []byte
		Accounts    int
	}

	ImportBundleInput struct {
		Data []byte
	}

	ImportBundleOutput struct {
		Imported int
		Total    int
	}
)

func (s *Usecase) ExportBundle(ctx context.Context) (*ExportBundleOutput, error) {
	ctx, span := s.startSpan(ctx, "ExportBundle")
	defer span.End()

	s.mu.RLock()
	accounts := s.store.List()
	s.mu.RUnlock()

	now := s.clock.Now()
	data, err := s.bundle.Export(accounts, now)
	if err != nil {
		slog.ErrorContext(ctx, "failed to export bundle", "error", err)
		return nil, goerror.NewServer(err)
	}

	slog.InfoContext(ctx, "bundle exported", "accounts", len(accounts))

	return &ExportBundleOutput{
		FileName:    bundle.FileName(now),
		ContentType: bundle.ContentType,
		Data:        data,
		Accounts:    len(accounts),
	}, nil
}

// ImportBundle appends the accounts of a backup bundle. The bundle is
// accepted or rejected as a whole.
func (s *Usecase) ImportBundle(ctx context.Context, in ImportBundleInput) (*ImportBundleOutput, error) {
	ctx, span := s.startSpan(ctx, "ImportBundle")
	defer span.End()

	accounts, err := s.bundle.Import(in.Data)
	if err != nil {
		var verr *entity.ValidationError
		switch {
		case errors.As(err, &verr):
			return nil, goerror.NewInvalidInputFields(err, verr.Fields)
		case errors.Is(err, entity.ErrSchemaVersion):
			slog.WarnContext(ctx, "rejected bundle version", "error", err)
			return nil, goerror.NewBusiness("unsupported backup version", goerror.CodeUnsupported)
		case errors.Is(err, bundle.ErrMalformed):
			return nil, goerror.NewInvalidFormat("invalid backup file")
		default:
			slog.ErrorContext(ctx, "failed to import bundle", "error", err)
			return nil, goerror.NewServer(err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.ImportMany(ctx, accounts); err != nil {
		slog.ErrorContext(ctx, "failed to store imported accounts", "error", err)
		return nil, goerror.NewServer(err)
	}

	if len(accounts) > 0 {
		s.notify()
	}
	slog.InfoContext(ctx, "bundle imported", "imported", len(accounts))

	return &ImportBundleOutput{Imported: len(accounts), Total: s.store.Len()}, nil
}
