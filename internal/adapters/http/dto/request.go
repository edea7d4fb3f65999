package dto

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jsamuelsen11/todo-api/internal/domain"
	"github.com/jsamuelsen11/todo-api/internal/domain/todo"
)

// CreateTodoRequest represents the JSON body for creating a new todo.
// Status is optional and defaults to pending. DueDate, when present, must be
// a "2006-01-02" calendar date.
type CreateTodoRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Status      string  `json:"status,omitempty"`
	Category    string  `json:"category"`
	DueDate     *string `json:"due_date,omitempty"`
}

// Validate checks that required fields are present and optional fields have
// valid values. Returns a *domain.ValidationError if any checks fail.
// Date-against-today rules are enforced by the domain layer, not here.
func (r *CreateTodoRequest) Validate() error {
	fields := make(map[string]string)

	if strings.TrimSpace(r.Title) == "" {
		fields["title"] = domain.MsgRequired
	} else if utf8.RuneCountInString(r.Title) > todo.MaxTitleLen {
		fields["title"] = fmt.Sprintf("must not exceed %d characters", todo.MaxTitleLen)
	}
	if r.Description != nil && utf8.RuneCountInString(*r.Description) > todo.MaxDescriptionLen {
		fields["description"] = fmt.Sprintf("must not exceed %d characters", todo.MaxDescriptionLen)
	}
	if r.Status != "" && !todo.Status(r.Status).IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", r.Status)
	}
	if strings.TrimSpace(r.Category) == "" {
		fields["category"] = domain.MsgRequired
	} else if !todo.Category(r.Category).IsValid() {
		fields["category"] = fmt.Sprintf("invalid: %q", r.Category)
	}
	if r.DueDate != nil {
		if _, err := todo.ParseDate(*r.DueDate); err != nil {
			fields["due_date"] = "must be a date in 2006-01-02 form"
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// UpdateTodoRequest represents the JSON body for partially updating a todo.
// Omitted fields are left unchanged. Description and DueDate accept an
// explicit null to clear the stored value.
type UpdateTodoRequest struct {
	Title       *string        `json:"title"`
	Description NullableString `json:"description"`
	Status      *string        `json:"status"`
	Category    *string        `json:"category"`
	DueDate     NullableString `json:"due_date"`
}

// Validate checks that any provided fields have valid values.
// Returns a *domain.ValidationError if any checks fail.
func (r *UpdateTodoRequest) Validate() error {
	fields := make(map[string]string)

	if r.Title != nil {
		if strings.TrimSpace(*r.Title) == "" {
			fields["title"] = domain.MsgMustNotEmpty
		} else if utf8.RuneCountInString(*r.Title) > todo.MaxTitleLen {
			fields["title"] = fmt.Sprintf("must not exceed %d characters", todo.MaxTitleLen)
		}
	}
	if r.Description.Present && r.Description.Value != nil &&
		utf8.RuneCountInString(*r.Description.Value) > todo.MaxDescriptionLen {
		fields["description"] = fmt.Sprintf("must not exceed %d characters", todo.MaxDescriptionLen)
	}
	if r.Status != nil && !todo.Status(*r.Status).IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", *r.Status)
	}
	if r.Category != nil && !todo.Category(*r.Category).IsValid() {
		fields["category"] = fmt.Sprintf("invalid: %q", *r.Category)
	}
	if r.DueDate.Present && r.DueDate.Value != nil {
		if _, err := todo.ParseDate(*r.DueDate.Value); err != nil {
			fields["due_date"] = "must be a date in 2006-01-02 form"
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}
