package domain

import (
	"strings"
	"time"
)

// Priority ranks how urgent a task is. It is persisted as text.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// Priorities lists the selectable priorities in display order.
var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Label returns the human-readable form shown in the UI.
func (p Priority) Label() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	}
	return ""
}

// ParsePriority accepts the stored value in any letter case.
func ParsePriority(value string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(value)))
	return p, p.Valid()
}

// Status is the lifecycle state of a task. IN_PROGRESS -> DONE is the only transition.
type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// Statuses lists the selectable statuses in display order.
var Statuses = []Status{StatusInProgress, StatusDone}

func (s Status) Valid() bool {
	return s == StatusInProgress || s == StatusDone
}

func (s Status) Label() string {
	switch s {
	case StatusInProgress:
		return "In progress"
	case StatusDone:
		return "Done"
	}
	return ""
}

// ParseStatus accepts the stored value in any letter case.
func ParseStatus(value string) (Status, bool) {
	s := Status(strings.ToUpper(strings.TrimSpace(value)))
	return s, s.Valid()
}

// Task is the single tracked record. ID is zero until the store assigns one.
type Task struct {
	ID          int64     `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Owner       string    `json:"owner"`
	Priority    Priority  `json:"priority,omitempty"`
	DueDate     time.Time `json:"due_date"`
	Status      Status    `json:"status,omitempty"`
}

// NewTask returns an empty task ready to be filled by a form.
func NewTask() Task {
	return Task{Status: StatusInProgress}
}

func (t *Task) IsNew() bool {
	return t == nil || t.ID == 0
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusDone
}

// Complete moves an in-progress task to DONE. It reports whether anything changed.
func (t *Task) Complete() bool {
	if t == nil || t.Status != StatusInProgress {
		return false
	}
	t.Status = StatusDone
	return true
}

// Clone returns an independent copy. Task holds no reference fields, so a value copy is deep.
func (t Task) Clone() Task {
	return t
}

// DateOf strips the clock part of t, keeping the calendar day it falls on.
func DateOf(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate reads a YYYY-MM-DD calendar date.
func ParseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, err
	}
	return DateOf(parsed), nil
}

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"
