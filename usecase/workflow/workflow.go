// Package workflow drives the task board: it owns the editing and filtering
// protocol between the UI and the task store. All state lives in the
// domain.Session handed to each call.
package workflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type Controller struct {
	tasks  repository.TaskRepository
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Controller)

// WithClock replaces time.Now, used for due-date validation.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

func New(tasks repository.TaskRepository, logger *zap.Logger, opts ...Option) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		tasks:  tasks,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Today returns the current calendar date as seen by the controller.
func (c *Controller) Today() time.Time {
	return domain.DateOf(c.now())
}

// Initialize fills the listing the first time a session is activated.
func (c *Controller) Initialize(ctx context.Context, s *domain.Session) error {
	if s.Initialized {
		return nil
	}
	if err := c.ListDefault(ctx, s); err != nil {
		return err
	}
	s.Initialized = true
	return nil
}

// Create persists the active task as a new IN_PROGRESS task.
func (c *Controller) Create(ctx context.Context, s *domain.Session) error {
	task := s.ActiveTask.Clone()
	task.ID = 0
	task.Status = domain.StatusInProgress
	s.ApplyPendingDue(&task)

	if err := c.tasks.Save(ctx, &task); err != nil {
		return err
	}
	c.logger.Info("task created", zap.Int64("task_id", task.ID))

	s.ActiveTask = domain.Task{}
	s.PendingDue = nil
	return c.ListDefault(ctx, s)
}

// Update writes the active task back over its stored row.
func (c *Controller) Update(ctx context.Context, s *domain.Session) error {
	task := s.ActiveTask.Clone()
	s.ApplyPendingDue(&task)

	if err := c.update(ctx, &task); err != nil {
		return err
	}
	c.logger.Info("task updated", zap.Int64("task_id", task.ID))

	s.ActiveTask = domain.Task{}
	s.PendingDue = nil
	return c.ListDefault(ctx, s)
}

func (c *Controller) Remove(ctx context.Context, s *domain.Session, id int64) error {
	if err := c.tasks.Remove(ctx, id); err != nil {
		return err
	}
	c.logger.Info("task removed", zap.Int64("task_id", id))
	return c.ListDefault(ctx, s)
}

// Complete marks an IN_PROGRESS task DONE. Unknown or already-done tasks are left alone.
func (c *Controller) Complete(ctx context.Context, s *domain.Session, id int64) error {
	task, err := c.tasks.FindByID(ctx, id)
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		c.logger.Debug("complete skipped, task not found", zap.Int64("task_id", id))
	case err != nil:
		return err
	case task.Complete():
		if err := c.tasks.Update(ctx, task); err != nil {
			return err
		}
		c.logger.Info("task completed", zap.Int64("task_id", id))
	}
	return c.ListDefault(ctx, s)
}

// ListDefault shows every IN_PROGRESS task.
func (c *Controller) ListDefault(ctx context.Context, s *domain.Session) error {
	all, err := c.tasks.ListAll(ctx)
	if err != nil {
		return err
	}
	listing := make([]domain.Task, 0, len(all))
	for _, task := range all {
		if task.Status == domain.StatusInProgress {
			listing = append(listing, task)
		}
	}
	s.Listing = listing
	return nil
}

// ApplyFilter replaces the listing with the store's result for the session's criteria.
func (c *Controller) ApplyFilter(ctx context.Context, s *domain.Session) error {
	tasks, err := c.tasks.Filter(ctx, s.Filter)
	if err != nil {
		return err
	}
	s.Listing = tasks
	return nil
}

// PrepareCreate resets the edit buffer for a new task.
func (c *Controller) PrepareCreate(s *domain.Session) {
	s.EditBuffer = domain.NewTask()
	s.PendingDue = nil
}

// PrepareEdit loads an independent copy of source into the edit buffer.
func (c *Controller) PrepareEdit(s *domain.Session, source domain.Task) {
	s.EditBuffer = source.Clone()
	s.SetPendingDue(source.DueDate)
}

// SubmitEditBuffer validates the edit buffer and saves it. When validation
// fails the messages are added to the session, nothing is written and
// ErrValidation is returned.
func (c *Controller) SubmitEditBuffer(ctx context.Context, s *domain.Session) error {
	s.ApplyPendingDue(&s.EditBuffer)

	if violations := domain.Validate(s.EditBuffer, c.now()); len(violations) > 0 {
		for _, v := range violations {
			s.AddMessage(v.Message)
		}
		c.logger.Debug("edit buffer rejected", zap.Int("violations", len(violations)))
		return domain.ErrValidation
	}

	task := s.EditBuffer.Clone()
	if task.IsNew() {
		task.Status = domain.StatusInProgress
		if err := c.tasks.Save(ctx, &task); err != nil {
			return err
		}
		c.logger.Info("task created", zap.Int64("task_id", task.ID))
	} else {
		if err := c.update(ctx, &task); err != nil {
			return err
		}
		c.logger.Info("task updated", zap.Int64("task_id", task.ID))
	}

	s.EditBuffer = domain.NewTask()
	s.PendingDue = nil
	return c.ListDefault(ctx, s)
}

// update writes task over the stored row, keeping DONE when the stored row is
// already DONE so a stale form cannot reopen a completed task.
func (c *Controller) update(ctx context.Context, task *domain.Task) error {
	stored, err := c.tasks.FindByID(ctx, task.ID)
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
	case err != nil:
		return err
	case stored.IsCompleted():
		task.Status = domain.StatusDone
	}
	return c.tasks.Update(ctx, task)
}
