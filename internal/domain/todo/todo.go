// Package todo defines the Todo entity and its value types: the status and
// category enumerations, calendar dates, list filters, partial-update
// patches, and result pages.
package todo

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jsamuelsen11/todo-api/internal/domain"
)

// Field length limits, in runes.
const (
	MaxTitleLen       = 255
	MaxDescriptionLen = 1000
)

// Todo represents a single task item.
//
// Description, DueDate, and OwnerID are nullable. A todo without an owner
// may be mutated by any caller; an owned todo only by its owner.
type Todo struct {
	ID          int64
	Title       string
	Description *string
	Status      Status
	Category    Category
	DueDate     *Date
	OwnerID     *int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate checks business rules for the Todo entity against the given
// reference date. Returns a *domain.ValidationError (wrapping
// domain.ErrValidation) with per-field details, or nil if all rules pass.
func (t *Todo) Validate(today Date) error {
	fields := make(map[string]string)

	validateTitle(fields, t.Title)
	if t.Description != nil {
		validateDescription(fields, *t.Description)
	}
	if !t.Status.IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", t.Status)
	}
	if !t.Category.IsValid() {
		fields["category"] = fmt.Sprintf("invalid: %q", t.Category)
	}
	if t.DueDate != nil {
		validateDueDate(fields, *t.DueDate, today)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func validateTitle(fields map[string]string, title string) {
	if strings.TrimSpace(title) == "" {
		fields["title"] = domain.MsgRequired
		return
	}
	if utf8.RuneCountInString(title) > MaxTitleLen {
		fields["title"] = fmt.Sprintf("must not exceed %d characters", MaxTitleLen)
	}
}

func validateDescription(fields map[string]string, description string) {
	if utf8.RuneCountInString(description) > MaxDescriptionLen {
		fields["description"] = fmt.Sprintf("must not exceed %d characters", MaxDescriptionLen)
	}
}

func validateDueDate(fields map[string]string, due, today Date) {
	if !due.After(today) {
		fields["due_date"] = "must be after today"
	}
}
