package domain

import (
	"fmt"
	"strings"
)

// TaskFilter holds optional predicates. Zero values impose no constraint.
// Text matches title OR description; everything else is ANDed.
type TaskFilter struct {
	ID       int64    `json:"id,omitempty"`
	Text     string   `json:"text,omitempty"`
	Owner    string   `json:"owner,omitempty"`
	Priority Priority `json:"priority,omitempty"`
	Status   Status   `json:"status,omitempty"`
}

// Normalized trims free-text criteria and drops enum values that are not recognised.
func (f TaskFilter) Normalized() TaskFilter {
	f.Text = strings.TrimSpace(f.Text)
	f.Owner = strings.TrimSpace(f.Owner)
	if f.ID < 0 {
		f.ID = 0
	}
	if !f.Priority.Valid() {
		f.Priority = ""
	}
	if !f.Status.Valid() {
		f.Status = ""
	}
	return f
}

// Check rejects enum criteria that name no known value. Empty criteria pass.
func (f TaskFilter) Check() error {
	if f.Priority != "" && !f.Priority.Valid() {
		return WrapError(ErrCodeInvalid, fmt.Sprintf("unknown priority %q", string(f.Priority)), ErrInvalidPayload)
	}
	if f.Status != "" && !f.Status.Valid() {
		return WrapError(ErrCodeInvalid, fmt.Sprintf("unknown status %q", string(f.Status)), ErrInvalidPayload)
	}
	if f.ID < 0 {
		return WrapError(ErrCodeInvalid, "id must not be negative", ErrInvalidPayload)
	}
	return nil
}

func (f TaskFilter) IsEmpty() bool {
	n := f.Normalized()
	return n.ID == 0 && n.Text == "" && n.Owner == "" && n.Priority == "" && n.Status == ""
}

// Matches applies the same semantics as the stores, for in-memory listings.
func (f TaskFilter) Matches(t Task) bool {
	n := f.Normalized()
	if n.ID != 0 && t.ID != n.ID {
		return false
	}
	if n.Text != "" {
		needle := strings.ToLower(n.Text)
		if !strings.Contains(strings.ToLower(t.Title), needle) &&
			!strings.Contains(strings.ToLower(t.Description), needle) {
			return false
		}
	}
	if n.Owner != "" && !strings.EqualFold(t.Owner, n.Owner) {
		return false
	}
	if n.Priority != "" && t.Priority != n.Priority {
		return false
	}
	if n.Status != "" && t.Status != n.Status {
		return false
	}
	return true
}
