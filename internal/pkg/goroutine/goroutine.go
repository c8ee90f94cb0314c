package goroutine

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"runtime/debug"
	"sync"

	"github.com/shandysiswandi/gotp/internal/pkg/stacktrace"
)

// DefaultMaxGoroutine is used per CPU when NewManager receives a non-positive limit.
const DefaultMaxGoroutine int = 100

// ErrPanic is collected by Wait when a managed function panics.
var ErrPanic = errors.New("goroutine: panic recovered")

// Manager runs named background jobs with a concurrency limit. Wait closes
// the manager to new work and blocks until every running job returns.
type Manager struct {
	mu      sync.Mutex
	errs    []error
	wg      sync.WaitGroup
	sema    chan struct{}
	stateMu sync.RWMutex
	closed  bool
}

// NewManager creates a new Manager with the provided maximum concurrency.
func NewManager(maxGoroutine int) *Manager {
	if maxGoroutine < 1 {
		maxGoroutine = runtime.NumCPU() * DefaultMaxGoroutine
	}

	return &Manager{sema: make(chan struct{}, maxGoroutine)}
}

// Go runs f in a goroutine when a slot is free and reports whether it started.
// It never blocks: a full or closed manager rejects the job and logs why.
func (g *Manager) Go(ctx context.Context, name string, f func(ctx context.Context) error) bool {
	if g == nil {
		return false
	}

	g.stateMu.RLock()
	defer g.stateMu.RUnlock()

	if g.closed {
		slog.WarnContext(ctx, "goroutine manager is closed, skipping job", "job", name)
		return false
	}

	select {
	case g.sema <- struct{}{}:
	default:
		slog.WarnContext(ctx, "maximum goroutine limit reached, skipping job", "job", name, "limit", cap(g.sema))
		return false
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() { <-g.sema }()
		defer g.recoverJob(ctx, name)

		if err := ctx.Err(); err != nil {
			slog.WarnContext(ctx, "goroutine canceled before start", "job", name, "because", err)
			return
		}
		if err := f(ctx); err != nil {
			g.collect(err)
		}
	}()

	return true
}

func (g *Manager) recoverJob(ctx context.Context, name string) {
	rvr := recover()
	if rvr == nil {
		return
	}

	stack := debug.Stack()
	if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
		slog.ErrorContext(ctx, "panic occurred in goroutine", "job", name, "because", rvr, "stack", paths)
	} else {
		slog.ErrorContext(ctx, "panic occurred in goroutine", "job", name, "because", rvr, "stack", string(stack))
	}
	g.collect(ErrPanic)
}

func (g *Manager) collect(err error) {
	g.mu.Lock()
	g.errs = append(g.errs, err)
	g.mu.Unlock()
}

// Running returns the number of jobs currently holding a slot.
func (g *Manager) Running() int {
	if g == nil {
		return 0
	}
	return len(g.sema)
}

// Wait blocks until all scheduled goroutines finish and returns any collected errors.
func (g *Manager) Wait() error {
	if g == nil {
		return nil
	}

	g.stateMu.Lock()
	g.closed = true
	g.stateMu.Unlock()

	g.wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	return errors.Join(g.errs...)
}
