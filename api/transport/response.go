package transport

import (
	"encoding/json"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// Envelope is the standard API response wrapper used for both success and error payloads.
type Envelope struct {
	Status string      `json:"status"`
	Code   string      `json:"code,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	Error  interface{} `json:"error,omitempty"`
	Meta   interface{} `json:"meta,omitempty"`
}

func NewSuccess(data interface{}, meta interface{}) Envelope {
	return Envelope{
		Status: "success",
		Data:   data,
		Meta:   meta,
	}
}

// NewError returns an error envelope; data is filled when the caller still has a view to show.
func NewError(code string, err interface{}, data interface{}) Envelope {
	return Envelope{
		Status: "error",
		Code:   code,
		Error:  err,
		Data:   data,
	}
}

// String returns the JSON representation (best-effort) for logging purposes.
func (e Envelope) String() string {
	out, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(out)
}

type TaskView struct {
	ID            int64  `json:"id,omitempty"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Owner         string `json:"owner"`
	Priority      string `json:"priority,omitempty"`
	PriorityLabel string `json:"priority_label,omitempty"`
	Status        string `json:"status,omitempty"`
	StatusLabel   string `json:"status_label,omitempty"`
	DueDate       string `json:"due_date,omitempty"`
	Overdue       bool   `json:"overdue,omitempty"`
}

type FilterView struct {
	ID       int64  `json:"id,omitempty"`
	Text     string `json:"text,omitempty"`
	Owner    string `json:"owner,omitempty"`
	Priority string `json:"priority,omitempty"`
	Status   string `json:"status,omitempty"`
}

// SessionView is everything a UI needs to redraw the task board.
type SessionView struct {
	SessionID  string           `json:"session_id"`
	ActiveTask TaskView         `json:"active_task"`
	EditBuffer TaskView         `json:"edit_buffer"`
	PendingDue string           `json:"pending_due,omitempty"`
	Listing    []TaskView       `json:"listing"`
	Filter     FilterView       `json:"filter"`
	Messages   []domain.Message `json:"messages"`
	Today      string           `json:"today"`
}

type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

type ReferenceView struct {
	Priorities []Option `json:"priorities"`
	Statuses   []Option `json:"statuses"`
	Owners     []string `json:"owners"`
	Actions    []string `json:"actions"`
	Today      string   `json:"today"`
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}

// NewTaskView renders t; today marks open tasks whose due date has passed.
func NewTaskView(t domain.Task, today time.Time) TaskView {
	return TaskView{
		ID:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		Owner:         t.Owner,
		Priority:      string(t.Priority),
		PriorityLabel: t.Priority.Label(),
		Status:        string(t.Status),
		StatusLabel:   t.Status.Label(),
		DueDate:       formatDate(t.DueDate),
		Overdue:       !t.IsCompleted() && !t.DueDate.IsZero() && t.DueDate.Before(today),
	}
}

func NewTaskViews(tasks []domain.Task, today time.Time) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		views = append(views, NewTaskView(t, today))
	}
	return views
}

// NewSessionView renders s with the messages of the current display cycle.
func NewSessionView(s *domain.Session, messages []domain.Message, today time.Time) SessionView {
	view := SessionView{
		SessionID:  s.ID,
		ActiveTask: NewTaskView(s.ActiveTask, today),
		EditBuffer: NewTaskView(s.EditBuffer, today),
		Listing:    NewTaskViews(s.Listing, today),
		Filter: FilterView{
			ID:       s.Filter.ID,
			Text:     s.Filter.Text,
			Owner:    s.Filter.Owner,
			Priority: string(s.Filter.Priority),
			Status:   string(s.Filter.Status),
		},
		Messages: messages,
		Today:    formatDate(today),
	}
	if s.PendingDue != nil {
		view.PendingDue = formatDate(*s.PendingDue)
	}
	if view.Messages == nil {
		view.Messages = []domain.Message{}
	}
	return view
}

func NewReferenceView(owners, actions []string, today time.Time) ReferenceView {
	view := ReferenceView{
		Owners:  append([]string{}, owners...),
		Actions: append([]string{}, actions...),
		Today:   formatDate(today),
	}
	for _, p := range domain.Priorities {
		view.Priorities = append(view.Priorities, Option{Value: string(p), Label: p.Label()})
	}
	for _, s := range domain.Statuses {
		view.Statuses = append(view.Statuses, Option{Value: string(s), Label: s.Label()})
	}
	return view
}
