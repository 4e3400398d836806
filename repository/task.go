package repository

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// TaskRepository is the durable store for tasks. Every mutation runs in its own
// transaction; connections are never held across calls.
type TaskRepository interface {
	// Save inserts a new task and assigns its ID.
	Save(ctx context.Context, task *domain.Task) error
	// Update overwrites every column of the stored row. An unknown ID is a no-op.
	Update(ctx context.Context, task *domain.Task) error
	// Remove deletes the task if it exists.
	Remove(ctx context.Context, id int64) error
	// FindByID returns domain.ErrTaskNotFound when nothing matches.
	FindByID(ctx context.Context, id int64) (*domain.Task, error)
	ListAll(ctx context.Context) ([]domain.Task, error)
	// Filter returns the tasks matching every supplied criterion, never nil.
	Filter(ctx context.Context, filter domain.TaskFilter) ([]domain.Task, error)
}
