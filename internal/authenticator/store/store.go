// Package store holds the authoritative account list. Every mutation writes a
// full snapshot through the Repository and only then replaces the in-memory
// list, so a failed write leaves the store exactly as it was.
//
// Store does no locking of its own; callers serialize access.
package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/samber/lo"
	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/storage"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
)

// ErrIDCollision is returned when the id generator repeats an active id.
var ErrIDCollision = errors.New("store: generated id already in use")

// Repository persists whole account snapshots.
type Repository interface {
	// Load returns the saved accounts. A missing snapshot is reported as
	// storage.ErrNotFound.
	Load(ctx context.Context) ([]entity.Account, error)
	// Save replaces the saved snapshot with accounts.
	Save(ctx context.Context, accounts []entity.Account) error
}

// Store is the in-memory account list backed by a Repository.
type Store struct {
	repo     Repository
	ids      uid.StringID
	clock    clock.Clocker
	accounts []entity.Account
}

// Open loads the persisted snapshot. A missing snapshot yields an empty
// store. An unreadable one is logged and also yields an empty store; its bytes
// stay in place until the next successful write.
func Open(ctx context.Context, repo Repository, ids uid.StringID, clk clock.Clocker) *Store {
	s := &Store{repo: repo, ids: ids, clock: clk, accounts: []entity.Account{}}

	accounts, err := repo.Load(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		slog.InfoContext(ctx, "no account snapshot found, starting empty")
		return s
	case err != nil:
		slog.ErrorContext(ctx, "failed to load account snapshot, starting empty", "error", err)
		return s
	}

	s.accounts = cloneAll(accounts)
	slog.InfoContext(ctx, "account snapshot loaded", "accounts", len(s.accounts))

	return s
}

func cloneAll(accounts []entity.Account) []entity.Account {
	return lo.Map(accounts, func(a entity.Account, _ int) entity.Account {
		return a.Clone()
	})
}

func (s *Store) index(id string) int {
	_, idx, found := lo.FindIndexOf(s.accounts, func(a entity.Account) bool {
		return a.ID == id
	})
	if !found {
		return -1
	}
	return idx
}

// commit persists next and adopts it only when the write succeeded.
func (s *Store) commit(ctx context.Context, next []entity.Account) error {
	if err := s.repo.Save(ctx, next); err != nil {
		return err
	}
	s.accounts = next
	return nil
}

// List returns a deep copy of all accounts in insertion order.
func (s *Store) List() []entity.Account {
	return cloneAll(s.accounts)
}

// Get returns a copy of the account with id.
func (s *Store) Get(id string) (entity.Account, bool) {
	idx := s.index(id)
	if idx < 0 {
		return entity.Account{}, false
	}
	return s.accounts[idx].Clone(), true
}

// Len returns the number of accounts.
func (s *Store) Len() int {
	return len(s.accounts)
}

// Add promotes c to an account with a fresh id and the current time, appends
// it and persists.
func (s *Store) Add(ctx context.Context, c entity.Credential) (entity.Account, error) {
	id := s.ids.Generate()
	if s.index(id) >= 0 {
		return entity.Account{}, ErrIDCollision
	}

	acc := entity.Account{
		ID:          id,
		Issuer:      c.Issuer,
		Label:       c.Label,
		Secret:      c.Secret,
		Algorithm:   c.Algorithm,
		Digits:      c.Digits,
		Period:      c.Period,
		CreatedAt:   s.clock.Now().UnixMilli(),
		BackupCodes: []string{},
	}

	if err := s.commit(ctx, slices.Concat(s.accounts, []entity.Account{acc})); err != nil {
		return entity.Account{}, err
	}

	return acc.Clone(), nil
}

// Remove deletes the account with id. An unknown id is a no-op.
func (s *Store) Remove(ctx context.Context, id string) error {
	idx := s.index(id)
	if idx < 0 {
		return nil
	}

	return s.commit(ctx, slices.Delete(slices.Clone(s.accounts), idx, idx+1))
}

// Update merges p into the account with id. An unknown id is a no-op.
func (s *Store) Update(ctx context.Context, id string, p entity.Patch) error {
	idx := s.index(id)
	if idx < 0 {
		return nil
	}

	next := slices.Clone(s.accounts)
	next[idx] = p.Apply(next[idx])

	return s.commit(ctx, next)
}

// SetBackupCodes replaces the backup codes of the account with id wholesale.
// Nil codes store an empty list. An unknown id is a no-op.
func (s *Store) SetBackupCodes(ctx context.Context, id string, codes []string) error {
	idx := s.index(id)
	if idx < 0 {
		return nil
	}

	next := slices.Clone(s.accounts)
	next[idx].BackupCodes = entity.CloneCodes(codes)

	return s.commit(ctx, next)
}

// ImportMany appends accounts as given, keeping their ids and creation times.
func (s *Store) ImportMany(ctx context.Context, accounts []entity.Account) error {
	if len(accounts) == 0 {
		return nil
	}

	return s.commit(ctx, slices.Concat(s.accounts, cloneAll(accounts)))
}

// ClearAll removes every account.
func (s *Store) ClearAll(ctx context.Context) error {
	return s.commit(ctx, []entity.Account{})
}
