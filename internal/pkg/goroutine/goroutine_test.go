package goroutine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_CollectsErrors(t *testing.T) {
	m := NewManager(4)
	errBoom := errors.New("boom")

	assert.True(t, m.Go(context.Background(), "ok", func(context.Context) error { return nil }))
	assert.True(t, m.Go(context.Background(), "boom", func(context.Context) error { return errBoom }))

	err := m.Wait()
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
}

func TestManager_RecoversPanic(t *testing.T) {
	m := NewManager(1)
	m.Go(context.Background(), "panics", func(context.Context) error { panic("bad") })

	assert.ErrorIs(t, m.Wait(), ErrPanic)
	assert.Equal(t, 0, m.Running())
}

func TestManager_RejectsWhenFull(t *testing.T) {
	m := NewManager(1)
	release := make(chan struct{})

	require.True(t, m.Go(context.Background(), "hold", func(context.Context) error {
		<-release
		return nil
	}))
	assert.False(t, m.Go(context.Background(), "extra", func(context.Context) error { return nil }))
	assert.Equal(t, 1, m.Running())

	close(release)
	require.NoError(t, m.Wait())
}

func TestManager_SkipsCanceledContext(t *testing.T) {
	m := NewManager(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	assert.True(t, m.Go(ctx, "late", func(context.Context) error {
		ran = true
		return nil
	}))
	require.NoError(t, m.Wait())
	assert.False(t, ran)
}

func TestManager_SkipsAfterWait(t *testing.T) {
	m := NewManager(1)
	require.NoError(t, m.Wait())

	ran := false
	assert.False(t, m.Go(context.Background(), "after", func(context.Context) error {
		ran = true
		return nil
	}))

	require.NoError(t, m.Wait())
	assert.False(t, ran)
}

func TestManager_NilSafe(t *testing.T) {
	var m *Manager
	assert.False(t, m.Go(context.Background(), "nil", func(context.Context) error { return nil }))
	assert.Equal(t, 0, m.Running())
	assert.NoError(t, m.Wait())
}
