package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/usecase"
)

// Action names understood by Register.
const (
	ActionCreate        = "create"
	ActionUpdate        = "update"
	ActionRemove        = "remove"
	ActionComplete      = "complete"
	ActionList          = "list"
	ActionFilter        = "filter"
	ActionPrepareCreate = "prepare-create"
	ActionPrepareEdit   = "prepare-edit"
	ActionSubmit        = "submit"
)

// Input is the payload every registered action receives. Task and Filter are
// bound onto the session before the action runs, the way a form posts its
// fields ahead of the button that submitted it.
type Input struct {
	ID     int64
	Task   *Form
	Filter *domain.TaskFilter
}

// Register wires the controller operations into d.
func (c *Controller) Register(d *usecase.Dispatcher) {
	d.Register(ActionCreate, c.action(func(ctx context.Context, s *domain.Session, in Input) error {
		if in.Task != nil {
			c.BindActive(s, *in.Task)
		}
		return c.Create(ctx, s)
	}))
	d.Register(ActionUpdate, c.action(func(ctx context.Context, s *domain.Session, in Input) error {
		if in.Task != nil {
			c.BindActive(s, *in.Task)
		}
		return c.Update(ctx, s)
	}))
	d.Register(ActionRemove, c.action(func(ctx context.Context, s *domain.Session, in Input) error {
		if in.ID <= 0 {
			return domain.WrapError(domain.ErrCodeInvalid, "remove requires an id", domain.ErrInvalidPayload)
		}
		return c.Remove(ctx, s, in.ID)
	}))
	d.Register(ActionComplete, c.action(func(ctx context.Context, s *domain.Session, in Input) error {
		if in.ID <= 0 {
			return domain.WrapError(domain.ErrCodeInvalid, "complete requires an id", domain.ErrInvalidPayload)
		}
		return c.Complete(ctx, s, in.ID)
	}))
	d.Register(ActionList, c.action(func(ctx context.Context, s *domain.Session, _ Input) error {
		return c.ListDefault(ctx, s)
	}))
	d.Register(ActionFilter, c.action(func(ctx context.Context, s *domain.Session, in Input) error {
		if in.Filter != nil {
			c.SetFilter(s, *in.Filter)
		}
		return c.ApplyFilter(ctx, s)
	}))
	d.Register(ActionPrepareCreate, c.action(func(_ context.Context, s *domain.Session, _ Input) error {
		c.PrepareCreate(s)
		return nil
	}))
	d.Register(ActionPrepareEdit, c.action(func(ctx context.Context, s *domain.Session, in Input) error {
		source, err := c.editSource(ctx, s, in.ID)
		if err != nil {
			return err
		}
		c.PrepareEdit(s, source)
		return nil
	}))
	d.Register(ActionSubmit, c.action(func(ctx context.Context, s *domain.Session, in Input) error {
		if in.Task != nil {
			c.BindEdit(s, *in.Task)
		}
		return c.SubmitEditBuffer(ctx, s)
	}))
}

func (c *Controller) action(fn func(ctx context.Context, s *domain.Session, in Input) error) usecase.ActionHandler {
	return func(ctx context.Context, s *domain.Session, payload interface{}) error {
		var in Input
		switch p := payload.(type) {
		case nil:
		case Input:
			in = p
		case *Input:
			if p != nil {
				in = *p
			}
		default:
			return domain.WrapError(domain.ErrCodeInvalid, fmt.Sprintf("unexpected payload %T", payload), domain.ErrInvalidPayload)
		}
		return fn(ctx, s, in)
	}
}

// editSource finds the row the UI picked: from the current listing when
// present, otherwise from the store.
func (c *Controller) editSource(ctx context.Context, s *domain.Session, id int64) (domain.Task, error) {
	if id <= 0 {
		return domain.Task{}, domain.WrapError(domain.ErrCodeInvalid, "prepare-edit requires an id", domain.ErrInvalidPayload)
	}
	for _, task := range s.Listing {
		if task.ID == id {
			return task, nil
		}
	}
	task, err := c.tasks.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrTaskNotFound) {
			return domain.Task{}, err
		}
		return domain.Task{}, fmt.Errorf("load task %d: %w", id, err)
	}
	return *task, nil
}
