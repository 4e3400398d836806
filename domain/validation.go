package domain

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength       = 120
	MaxDescriptionLength = 500
	MaxOwnerLength       = 80
)

// Violation describes one broken field rule.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Validate checks every field rule of t. The due date must not be earlier than
// the calendar day of now. Violations come back in field order.
func Validate(t Task, now time.Time) []Violation {
	return validate(t, now, true)
}

// CheckStorable reports the first data-model rule t breaks, as the stores
// enforce them. Past due dates are accepted: a task that became overdue while
// in progress can still be updated and completed.
func CheckStorable(t Task) error {
	violations := validate(t, time.Time{}, false)
	if len(violations) == 0 {
		return nil
	}
	v := violations[0]
	return WrapError(ErrCodeInvalid, fmt.Sprintf("%s: %s", v.Field, v.Message), ErrTaskConstraint)
}

func validate(t Task, now time.Time, rejectPast bool) []Violation {
	var violations []Violation
	add := func(field, message string) {
		violations = append(violations, Violation{Field: field, Message: message})
	}

	checkText := func(field, value string, max int, blankMsg, longMsg string) {
		if strings.TrimSpace(value) == "" {
			add(field, blankMsg)
			return
		}
		if utf8.RuneCountInString(value) > max {
			add(field, longMsg)
		}
	}

	checkText("title", t.Title, MaxTitleLength,
		"Enter the task title.", "The title must be at most 120 characters.")
	checkText("description", t.Description, MaxDescriptionLength,
		"Enter the task description.", "The description must be at most 500 characters.")
	checkText("owner", t.Owner, MaxOwnerLength,
		"Enter the task owner.", "The owner must be at most 80 characters.")

	if !t.Priority.Valid() {
		add("priority", "Select a priority.")
	}

	switch {
	case t.DueDate.IsZero():
		add("due_date", "Enter the due date.")
	case rejectPast && DateOf(t.DueDate).Before(DateOf(now)):
		add("due_date", "The due date cannot be in the past.")
	}

	if !t.Status.Valid() {
		add("status", "Select the task status.")
	}

	return violations
}
