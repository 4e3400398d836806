package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
	boltRepo "github.com/fastygo/taskboard/repository/bolt"
)

type failingSweeper struct{}

func (failingSweeper) Cleanup(time.Time) (int, error) { return 0, errors.New("disk full") }

func TestSweepRemovesExpiredSessions(t *testing.T) {
	store, err := boltRepo.Open(filepath.Join(t.TempDir(), "sessions.db"), time.Hour)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	require.NoError(t, store.Save(ctx, domain.NewSession("stale", time.Millisecond)))
	require.NoError(t, store.Save(ctx, domain.NewSession("fresh", time.Hour)))

	janitor, err := NewSessionJanitor(store, time.Minute, nil)
	require.NoError(t, err)
	janitor.now = func() time.Time { return time.Now().Add(time.Minute) }

	removed, err := janitor.Sweep()
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(ctx, "stale")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}

func TestSweepReportsStoreErrors(t *testing.T) {
	janitor, err := NewSessionJanitor(failingSweeper{}, time.Second, nil)
	require.NoError(t, err)

	_, err = janitor.Sweep()
	assert.Error(t, err)
}

func TestJanitorStartStop(t *testing.T) {
	janitor, err := NewSessionJanitor(failingSweeper{}, time.Hour, nil)
	require.NoError(t, err)

	janitor.Start()
	assert.NoError(t, janitor.Stop(context.Background()))
}

func TestJanitorRequiresStore(t *testing.T) {
	_, err := NewSessionJanitor(nil, time.Second, nil)
	assert.Error(t, err)
}
