package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSessionDefaults(t *testing.T) {
	s := NewSession("abc", time.Minute)

	assert.Equal(t, NewTask(), s.EditBuffer)
	assert.NotNil(t, s.Listing)
	assert.Equal(t, StatusInProgress, s.Filter.Status)
	assert.False(t, s.IsExpired(time.Now()))
	assert.True(t, s.IsExpired(time.Now().Add(2*time.Minute)))
}

func TestSessionMessagesAreDistinctPerCycle(t *testing.T) {
	s := NewSession("abc", time.Minute)

	assert.True(t, s.AddMessage("Enter the task title."))
	assert.False(t, s.AddMessage("Enter the task title."))
	assert.True(t, s.AddMessage("Enter the task description."))

	drained := s.DrainMessages()
	assert.Len(t, drained, 2)
	assert.Empty(t, s.Messages)
	assert.Equal(t, []Message{}, s.DrainMessages())

	assert.True(t, s.AddMessage("Enter the task title."), "a new cycle starts clean")
}

func TestSessionPendingDue(t *testing.T) {
	s := NewSession("abc", time.Minute)
	due := time.Date(2026, 5, 1, 17, 30, 0, 0, time.UTC)

	s.SetPendingDue(due)
	require.NotNil(t, s.PendingDue)

	task := NewTask()
	s.ApplyPendingDue(&task)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), task.DueDate)

	s.SetPendingDue(time.Time{})
	assert.Nil(t, s.PendingDue)
	s.ApplyPendingDue(&task)
	assert.True(t, task.DueDate.IsZero())
}
