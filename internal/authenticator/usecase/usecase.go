package usecase

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/shandysiswandi/gotp/internal/authenticator/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/clock"
	"github.com/shandysiswandi/gotp/internal/pkg/config"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
)

// ErrStreamRejected is wrapped when no worker slot is left for a code stream.
var ErrStreamRejected = errors.New("usecase: code stream rejected")

type accountStore interface {
	List() []entity.Account
	Get(id string) (entity.Account, bool)
	Len() int

	Add(ctx context.Context, c entity.Credential) (entity.Account, error)
	Remove(ctx context.Context, id string) error
	Update(ctx context.Context, id string, p entity.Patch) error
	SetBackupCodes(ctx context.Context, id string, codes []string) error
	ImportMany(ctx context.Context, accounts []entity.Account) error
	ClearAll(ctx context.Context) error
}

type bundleCodec interface {
	Export(accounts []entity.Account, now time.Time) ([]byte, error)
	Import(data []byte) ([]entity.Account, error)
}

type Usecase struct {
	store     accountStore
	bundle    bundleCodec
	validator validator.Validator
	cfg       config.Config
	clock     clock.Clocker
	ins       instrument.Instrumentation
	goroutine *goroutine.Manager

	codesGenerated metric.Int64Counter

	// mu serializes store access; the store itself does not lock.
	mu sync.RWMutex

	subsMu sync.Mutex
	subs   map[int]chan struct{}
	nextID int
}

type Dependency struct {
	Store      accountStore
	Bundle     bundleCodec
	Validator  validator.Validator
	Config     config.Config
	Clock      clock.Clocker
	Instrument instrument.Instrumentation
	Goroutine  *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	counter, err := dep.Instrument.Meter("authenticator.usecase").Int64Counter(
		"gotp.codes.generated",
		metric.WithDescription("Number of one-time codes computed."),
	)
	if err != nil {
		slog.Warn("failed to create codes counter, metric disabled", "error", err)
		counter = metricnoop.Int64Counter{}
	}

	return &Usecase{
		store:          dep.Store,
		bundle:         dep.Bundle,
		validator:      dep.Validator,
		cfg:            dep.Config,
		clock:          dep.Clock,
		ins:            dep.Instrument,
		goroutine:      dep.Goroutine,
		codesGenerated: counter,
		subs:           make(map[int]chan struct{}),
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("authenticator.usecase").Start(ctx, name)
}

func (s *Usecase) getAccount(ctx context.Context, id string) (entity.Account, error) {
	acc, ok := s.store.Get(id)
	if !ok {
		slog.WarnContext(ctx, "account not found", "account_id", id)
		return entity.Account{}, goerror.NewBusiness("account not found", goerror.CodeNotFound)
	}
	return acc, nil
}

// subscribe registers a change listener. The returned channel receives a
// value after any successful mutation; bursts coalesce into one signal.
func (s *Usecase) subscribe() (<-chan struct{}, func()) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	id := s.nextID
	s.nextID++

	ch := make(chan struct{}, 1)
	s.subs[id] = ch

	return ch, func() {
		s.subsMu.Lock()
		delete(s.subs, id)
		s.subsMu.Unlock()
	}
}

func (s *Usecase) notify() {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()

	for _, ch := range s.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
