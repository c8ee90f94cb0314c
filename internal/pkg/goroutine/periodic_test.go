package goroutine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func TestEvery_RunsImmediatelyAndStops(t *testing.T) {
	calls := atomic.NewInt64(0)

	task := Every(context.Background(), 5*time.Millisecond, func(context.Context) {
		calls.Inc()
	})

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, time.Millisecond)

	task.Stop()
	after := calls.Load()
	time.Sleep(30 * time.Millisecond)

	assert.Equal(t, after, calls.Load())
	assert.True(t, task.Stopped())

	// a second stop is harmless
	task.Stop()
}

func TestEvery_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	task := Every(ctx, time.Hour, func(context.Context) {})
	cancel()

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not exit after parent cancel")
	}
	assert.False(t, task.Stopped())
}

func TestEvery_RecoversPanic(t *testing.T) {
	task := Every(context.Background(), time.Millisecond, func(context.Context) {
		panic("boom")
	})

	select {
	case <-task.Done():
	case <-time.After(time.Second):
		t.Fatal("task did not exit after panic")
	}
}

func TestScheduler_ReplacesInsteadOfStacking(t *testing.T) {
	s := NewScheduler()
	defer s.StopAll()

	first := atomic.NewInt64(0)
	second := atomic.NewInt64(0)

	s.Schedule(context.Background(), "acc-1", 5*time.Millisecond, func(context.Context) { first.Inc() })
	require.Eventually(t, func() bool { return first.Load() >= 1 }, time.Second, time.Millisecond)

	s.Schedule(context.Background(), "acc-1", 5*time.Millisecond, func(context.Context) { second.Inc() })
	frozen := first.Load()

	require.Eventually(t, func() bool { return second.Load() >= 3 }, time.Second, time.Millisecond)
	assert.Equal(t, frozen, first.Load())
	assert.Equal(t, []string{"acc-1"}, s.Keys())
}

func TestScheduler_Ensure(t *testing.T) {
	s := NewScheduler()
	defer s.StopAll()

	assert.True(t, s.Ensure(context.Background(), "a", "p30", time.Hour, func(context.Context) {}))
	assert.False(t, s.Ensure(context.Background(), "a", "p30", time.Hour, func(context.Context) {}))
	assert.True(t, s.Ensure(context.Background(), "a", "p30", time.Minute, func(context.Context) {}))
	assert.True(t, s.Ensure(context.Background(), "a", "p60", time.Minute, func(context.Context) {}))
	assert.Equal(t, []string{"a"}, s.Keys())
}

func TestScheduler_CancelRetainStopAll(t *testing.T) {
	s := NewScheduler()

	calls := map[string]*atomic.Int64{"a": atomic.NewInt64(0), "b": atomic.NewInt64(0), "c": atomic.NewInt64(0)}
	for key, counter := range calls {
		s.Schedule(context.Background(), key, time.Millisecond, func(context.Context) { counter.Inc() })
	}

	s.Cancel("a")
	s.Cancel("missing")
	s.Retain(map[string]struct{}{"b": {}})
	assert.Equal(t, []string{"b"}, s.Keys())

	s.StopAll()
	assert.Empty(t, s.Keys())

	snapshot := calls["b"].Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, snapshot, calls["b"].Load())
}
