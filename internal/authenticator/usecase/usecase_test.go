package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shandysiswandi/gotp/internal/authenticator/bundle"
	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/authenticator/outbound/snapshot"
	"github.com/shandysiswandi/gotp/internal/authenticator/store"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/storage"
	"github.com/shandysiswandi/gotp/internal/pkg/uid"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rfcSecret = "GEZDGNBVGY3TQOJQGEZDGNBVGY3TQOJQ"

var errWrite = errors.New("write failed")

// flakyStorage fails every Put while fail is set.
type flakyStorage struct {
	*storage.Memory
	mu   sync.Mutex
	fail bool
}

func (f *flakyStorage) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *flakyStorage) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errWrite
	}
	return f.Memory.Put(ctx, key, value)
}

type fixture struct {
	uc      *Usecase
	store   *store.Store
	storage *flakyStorage
	clock   *clock.Manual
	manager *goroutine.Manager
}

func newFixture(t *testing.T, seed ...entity.Account) *fixture {
	t.Helper()

	ctx := context.Background()
	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	cfg, err := config.NewViperFromBytes("yaml", []byte("stream:\n  tick_seconds: 1\n"))
	require.NoError(t, err)

	clk := clock.NewManualUnix(59)
	ids := uid.NewUUID()
	st := &flakyStorage{Memory: storage.NewMemory()}
	repo := snapshot.New(st, nil, instrument.NewNoop())
	if len(seed) > 0 {
		require.NoError(t, repo.Save(ctx, seed))
	}

	accounts := store.Open(ctx, repo, ids, clk)
	mgr := goroutine.NewManager(4)
	t.Cleanup(func() { _ = mgr.Wait() })

	uc := New(Dependency{
		Store:      accounts,
		Bundle:     bundle.NewCodec(v, ids, clk),
		Validator:  v,
		Config:     cfg,
		Clock:      clk,
		Instrument: instrument.NewNoop(),
		Goroutine:  mgr,
	})

	return &fixture{uc: uc, store: accounts, storage: st, clock: clk, manager: mgr}
}

func (f *fixture) add(t *testing.T, label string) AccountSummary {
	t.Helper()
	out, err := f.uc.AddAccount(context.Background(), AddAccountInput{
		Issuer: "ACME",
		Label:  label,
		Secret: rfcSecret,
	})
	require.NoError(t, err)
	return out.Account
}

func requireCode(t *testing.T, err error, code goerror.Code) *goerror.Error {
	t.Helper()
	var gerr *goerror.Error
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, code, gerr.Code(), gerr.Msg())
	return gerr
}

func requireField(t *testing.T, err error, field string) {
	t.Helper()
	requireCode(t, err, goerror.CodeInvalidInput)
	var verr validator.V10ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr, field)
}
