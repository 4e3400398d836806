package domain

import "time"

// Message is a user-visible notice raised during a UI action.
type Message struct {
	Severity string `json:"severity"`
	Text     string `json:"text"`
}

const SeverityError = "error"

// Session is the per-user editing state of the task board. It is persisted
// between requests by a SessionRepository and never shared between users.
type Session struct {
	ID         string     `json:"id"`
	ActiveTask Task       `json:"active_task"`
	EditBuffer Task       `json:"edit_buffer"`
	Listing    []Task     `json:"listing"`
	Filter     TaskFilter `json:"filter"`
	// PendingDue is the date picked in the edit form, applied to the buffer on submission.
	PendingDue  *time.Time `json:"pending_due,omitempty"`
	Messages    []Message  `json:"messages,omitempty"`
	Initialized bool       `json:"initialized"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
}

// NewSession creates an empty session. The status filter starts at IN_PROGRESS,
// matching the default selection of the filter form.
func NewSession(id string, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		ActiveTask: Task{},
		EditBuffer: NewTask(),
		Listing:    []Task{},
		Filter:     TaskFilter{Status: StatusInProgress},
		CreatedAt:  now,
		ExpiresAt:  now.Add(ttl),
	}
}

func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	if reference.IsZero() {
		reference = time.Now()
	}
	return !s.ExpiresAt.After(reference)
}

// AddMessage appends an error message unless the same text is already pending.
// It reports whether the message was added.
func (s *Session) AddMessage(text string) bool {
	for _, m := range s.Messages {
		if m.Text == text {
			return false
		}
	}
	s.Messages = append(s.Messages, Message{Severity: SeverityError, Text: text})
	return true
}

// DrainMessages returns the pending messages and clears them, ending a display cycle.
func (s *Session) DrainMessages() []Message {
	out := s.Messages
	s.Messages = nil
	if out == nil {
		out = []Message{}
	}
	return out
}

// SetPendingDue stores a copy of due, or clears the pending date when due is zero.
func (s *Session) SetPendingDue(due time.Time) {
	if due.IsZero() {
		s.PendingDue = nil
		return
	}
	d := DateOf(due)
	s.PendingDue = &d
}

func (s *Session) pendingDue() time.Time {
	if s.PendingDue == nil {
		return time.Time{}
	}
	return *s.PendingDue
}

// ApplyPendingDue copies the pending date into task.
func (s *Session) ApplyPendingDue(task *Task) {
	task.DueDate = s.pendingDue()
}
