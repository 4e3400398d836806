package monitor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshAggregatesProbes(t *testing.T) {
	m := New(time.Minute, nil)
	m.Add("tasks", func(context.Context) error { return nil }, 0)
	m.Add("sessions", func(context.Context) error { return errors.New("connection refused") }, time.Second)

	assert.False(t, m.IsOnline(), "nothing checked yet")

	status := m.Refresh(context.Background())
	assert.False(t, status.Online)
	assert.True(t, status.Components["tasks"].Healthy)
	assert.Equal(t, "connection refused", status.Components["sessions"].Error)
	assert.Equal(t, []string{"sessions", "tasks"}, m.Names())

	snapshot := m.GetStatus()
	snapshot.Components["tasks"] = ComponentStatus{}
	assert.True(t, m.GetStatus().Components["tasks"].Healthy, "snapshots are copies")
}

func TestRefreshHonoursProbeTimeout(t *testing.T) {
	m := New(time.Minute, nil)
	m.Add("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, 10*time.Millisecond)

	status := m.Refresh(context.Background())
	assert.False(t, status.Components["slow"].Healthy)
}

func TestStartAndStop(t *testing.T) {
	m := New(5*time.Millisecond, nil)
	m.Add("tasks", func(context.Context) error { return nil }, 0)
	m.Start()

	assert.Eventually(t, m.IsOnline, time.Second, 5*time.Millisecond)
	m.Stop()
	m.Stop()
}
