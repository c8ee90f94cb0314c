// Package snapshot persists the account list as one value in a storage driver,
// optionally sealed with AES-GCM.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/seal"
	"github.com/shandysiswandi/gotp/internal/pkg/storage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Key is the storage key holding the account snapshot.
const Key = "gotp.accounts"

// ErrSealed is wrapped when a sealed snapshot is found but no sealer is configured.
var ErrSealed = errors.New("snapshot: sealed but no encryption key configured")

var scope = seal.Scope{Key: Key, Purpose: seal.PurposeSnapshot}

type Snapshot struct {
	storage storage.Storage
	sealer  seal.Sealer
	ins     instrument.Instrumentation
}

// New returns a Snapshot backed by st. A nil sealer stores plain JSON.
func New(st storage.Storage, sealer seal.Sealer, ins instrument.Instrumentation) *Snapshot {
	return &Snapshot{storage: st, sealer: sealer, ins: ins}
}

func (s *Snapshot) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("authenticator.outbound.snapshot").Start(ctx, name)
}

func (s *Snapshot) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Load returns the saved accounts. A missing snapshot wraps storage.ErrNotFound;
// one that cannot be read, unsealed or decoded wraps entity.ErrStorageRead.
func (s *Snapshot) Load(ctx context.Context) (accounts []entity.Account, err error) {
	ctx, span := s.startSpan(ctx, "Load")
	defer func() { s.endSpan(span, err) }()

	data, err := s.storage.Get(ctx, Key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrStorageRead, err)
	}

	sealed := seal.IsSealed(data)
	span.SetAttributes(attribute.Bool("snapshot.sealed", sealed), attribute.Int("snapshot.bytes", len(data)))

	switch {
	case sealed && s.sealer == nil:
		return nil, fmt.Errorf("%w: %w", entity.ErrStorageRead, ErrSealed)
	case sealed:
		if data, err = s.sealer.Open(data, scope); err != nil {
			return nil, fmt.Errorf("%w: %w", entity.ErrStorageRead, err)
		}
	case s.sealer != nil:
		slog.WarnContext(ctx, "account snapshot is not sealed, it will be sealed on the next write")
	}

	if err := json.Unmarshal(data, &accounts); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrStorageRead, err)
	}

	return accounts, nil
}

// Save replaces the stored snapshot with accounts.
func (s *Snapshot) Save(ctx context.Context, accounts []entity.Account) (err error) {
	ctx, span := s.startSpan(ctx, "Save")
	defer func() { s.endSpan(span, err) }()

	if accounts == nil {
		accounts = []entity.Account{}
	}

	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("snapshot: encode: %w", err)
	}

	if s.sealer != nil {
		if data, err = s.sealer.Seal(data, scope); err != nil {
			return fmt.Errorf("snapshot: seal: %w", err)
		}
	}

	span.SetAttributes(attribute.Int("snapshot.accounts", len(accounts)))

	return s.storage.Put(ctx, Key, data)
}

// Ping reports whether the stored snapshot is reachable and, when sealed,
// whether a sealer is configured to open it. A missing snapshot is healthy.
func (s *Snapshot) Ping(ctx context.Context) error {
	data, err := s.storage.Get(ctx, Key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %w", entity.ErrStorageRead, err)
	}
	if s.sealer == nil && seal.IsSealed(data) {
		return fmt.Errorf("%w: %w", entity.ErrStorageRead, ErrSealed)
	}

	return nil
}
