package lifecycle

import (
	"context"
	"errors"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func TestShutdownStopsNewestFirst(t *testing.T) {
	m := New(time.Second, nil)

	var order []string
	m.Register("task_store", func(context.Context) error { order = append(order, "task_store"); return nil })
	m.RegisterCloser("session_store", closerFunc(func() error { order = append(order, "session_store"); return nil }))
	m.Register("http_server", func(context.Context) error { order = append(order, "http_server"); return nil })

	require.NoError(t, m.Shutdown(context.Background()))
	assert.Equal(t, []string{"http_server", "session_store", "task_store"}, order)

	assert.NoError(t, m.Shutdown(context.Background()), "components stop once")
	assert.Len(t, order, 3)
}

func TestShutdownReportsEveryFailure(t *testing.T) {
	m := New(time.Second, nil)
	storeErr := errors.New("close failed")
	redisErr := errors.New("connection reset")
	m.Register("task_store", func(context.Context) error { return storeErr })
	m.RegisterCloser("redis", closerFunc(func() error { return redisErr }))
	m.Register("nil", nil)
	m.RegisterCloser("nil closer", nil)

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, storeErr)
	assert.ErrorIs(t, err, redisErr)
	assert.Contains(t, err.Error(), "task_store: close failed")
}

func TestShutdownSkipsComponentsAfterDeadline(t *testing.T) {
	m := New(time.Second, nil)
	called := false
	m.Register("session_janitor", func(context.Context) error { called = true; return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Shutdown(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Contains(t, err.Error(), "session_janitor")
	assert.False(t, called)
}

func TestShutdownAppliesTimeout(t *testing.T) {
	m := New(20*time.Millisecond, nil)
	m.Register("http_server", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	err := m.Shutdown(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSignalContextCancelsOnInterrupt(t *testing.T) {
	m := New(time.Second, nil)
	ctx, stop := m.SignalContext(context.Background())
	defer stop()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	select {
	case <-ctx.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("context not cancelled by SIGINT")
	}
}
