package workflow

import (
	"time"

	"github.com/fastygo/taskboard/domain"
)

// Form carries the values a UI form submits for a task.
type Form struct {
	ID          int64
	Title       string
	Description string
	Owner       string
	Priority    domain.Priority
	Status      domain.Status
	DueDate     time.Time
}

// BindActive replaces the active task with the form values and stages its due date.
func (c *Controller) BindActive(s *domain.Session, f Form) {
	s.ActiveTask = domain.Task{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		Owner:       f.Owner,
		Priority:    f.Priority,
		Status:      f.Status,
	}
	s.SetPendingDue(f.DueDate)
}

// BindEdit writes the form values into the edit buffer. The buffer keeps the
// id it was prepared with; a form cannot retarget another record.
func (c *Controller) BindEdit(s *domain.Session, f Form) {
	s.EditBuffer.Title = f.Title
	s.EditBuffer.Description = f.Description
	s.EditBuffer.Owner = f.Owner
	s.EditBuffer.Priority = f.Priority
	if f.Status != "" && !s.EditBuffer.IsCompleted() {
		s.EditBuffer.Status = f.Status
	}
	s.SetPendingDue(f.DueDate)
}

// SetFilter replaces the session's filter criteria.
func (c *Controller) SetFilter(s *domain.Session, f domain.TaskFilter) {
	s.Filter = f.Normalized()
}
