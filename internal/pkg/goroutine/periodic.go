package goroutine

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/shandysiswandi/gotp/internal/pkg/stacktrace"
	"go.uber.org/atomic"
)

// Task is a running periodic job. Stop it through the handle returned by Every.
type Task struct {
	cancel  context.CancelFunc
	done    chan struct{}
	stopped *atomic.Bool
}

// Every calls fn immediately and then on every tick of interval until ctx is
// canceled or the returned Task is stopped. A panic in fn is logged and ends
// the task.
func Every(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{
		cancel:  cancel,
		done:    make(chan struct{}),
		stopped: atomic.NewBool(false),
	}

	go func() {
		defer close(t.done)
		defer func() {
			if rvr := recover(); rvr != nil {
				stack := debug.Stack()
				if paths := stacktrace.InternalPaths(stack); len(paths) > 0 {
					slog.ErrorContext(ctx, "panic occurred in periodic task", "because", rvr, "stack", paths)
				} else {
					slog.ErrorContext(ctx, "panic occurred in periodic task", "because", rvr, "stack", string(stack))
				}
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			// Checked before every call so Stop wins over an already-fired tick.
			if ctx.Err() != nil {
				return
			}
			fn(ctx)

			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return t
}

// Stop cancels the task and blocks until its loop has exited. No call to fn
// starts after Stop returns. Stop is safe to call more than once.
func (t *Task) Stop() {
	if t == nil {
		return
	}
	t.stopped.Store(true)
	t.cancel()
	<-t.done
}

// Stopped reports whether Stop was called.
func (t *Task) Stopped() bool {
	return t != nil && t.stopped.Load()
}

// Done is closed once the task loop has exited.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Scheduler keeps at most one periodic task per key.
type Scheduler struct {
	mu    sync.Mutex
	tasks map[string]scheduled
}

type scheduled struct {
	task     *Task
	interval time.Duration
	tag      string
}

// NewScheduler returns an empty Scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{tasks: make(map[string]scheduled)}
}

// Schedule starts fn every interval under key. An existing task under the same
// key is stopped first, so schedules are replaced and never stacked.
func (s *Scheduler) Schedule(ctx context.Context, key string, interval time.Duration, fn func(ctx context.Context)) {
	s.schedule(ctx, key, "", interval, fn)
}

func (s *Scheduler) schedule(ctx context.Context, key, tag string, interval time.Duration, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.tasks[key]; ok {
		old.task.Stop()
	}
	s.tasks[key] = scheduled{task: Every(ctx, interval, fn), interval: interval, tag: tag}
}

// Ensure schedules fn under key unless a live task with the same interval and
// tag is already running. The tag describes what fn was built from (for
// example the account parameters it renders); a different tag replaces the
// task. It reports whether a new task was started.
func (s *Scheduler) Ensure(ctx context.Context, key, tag string, interval time.Duration, fn func(ctx context.Context)) bool {
	s.mu.Lock()
	cur, ok := s.tasks[key]
	s.mu.Unlock()

	if ok && cur.interval == interval && cur.tag == tag {
		select {
		case <-cur.task.Done():
		default:
			return false
		}
	}

	s.schedule(ctx, key, tag, interval, fn)
	return true
}

// Cancel stops and forgets the task under key, if any.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cur, ok := s.tasks[key]; ok {
		cur.task.Stop()
		delete(s.tasks, key)
	}
}

// Retain cancels every task whose key is not in keep.
func (s *Scheduler) Retain(keep map[string]struct{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, cur := range s.tasks {
		if _, ok := keep[key]; !ok {
			cur.task.Stop()
			delete(s.tasks, key)
		}
	}
}

// Keys returns the keys of all scheduled tasks.
func (s *Scheduler) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.tasks))
	for key := range s.tasks {
		keys = append(keys, key)
	}
	return keys
}

// StopAll stops every task and empties the scheduler.
func (s *Scheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, cur := range s.tasks {
		cur.task.Stop()
		delete(s.tasks, key)
	}
}
