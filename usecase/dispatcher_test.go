package usecase

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/taskboard/domain"
)

func TestDispatcherExecute(t *testing.T) {
	d := NewDispatcher()
	var gotPayload interface{}
	d.Register("touch", func(ctx context.Context, s *domain.Session, payload interface{}) error {
		gotPayload = payload
		s.AddMessage("touched")
		return nil
	})

	session := domain.NewSession("s", 0)
	require.NoError(t, d.Execute(context.Background(), "touch", session, 42))
	assert.Equal(t, 42, gotPayload)
	assert.Len(t, session.Messages, 1)
}

func TestDispatcherUnknownAction(t *testing.T) {
	d := NewDispatcher()
	err := d.Execute(context.Background(), "missing", domain.NewSession("s", 0), nil)

	assert.ErrorIs(t, err, domain.ErrUnknownAction)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeNotFound))
}

func TestDispatcherActionsSorted(t *testing.T) {
	d := NewDispatcher()
	noop := func(context.Context, *domain.Session, interface{}) error { return nil }
	d.Register("submit", noop)
	d.Register("complete", noop)
	d.Register("list", noop)

	assert.Equal(t, []string{"complete", "list", "submit"}, d.Actions())
}
