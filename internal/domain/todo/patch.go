package todo

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jsamuelsen11/todo-api/internal/domain"
)

// Patch describes a partial update. Nil pointer fields are left unchanged.
// Description and DueDate use Optional so that an explicit null (clear the
// field) is distinguishable from the field being omitted.
type Patch struct {
	Title       *string
	Description domain.Optional[*string]
	Status      *Status
	Category    *Category
	DueDate     domain.Optional[*Date]
}

// Validate checks the supplied fields only, mirroring "sometimes" update
// semantics: omitted fields are not validated, so an existing todo with a
// now-past due date can still have its title changed. Returns a
// *domain.ValidationError with per-field details, or nil.
func (p Patch) Validate(today Date) error {
	fields := make(map[string]string)

	if p.Title != nil {
		if strings.TrimSpace(*p.Title) == "" {
			fields["title"] = domain.MsgMustNotEmpty
		} else if utf8.RuneCountInString(*p.Title) > MaxTitleLen {
			fields["title"] = fmt.Sprintf("must not exceed %d characters", MaxTitleLen)
		}
	}
	if desc, ok := p.Description.Get(); ok && desc != nil {
		validateDescription(fields, *desc)
	}
	if p.Status != nil && !p.Status.IsValid() {
		fields["status"] = fmt.Sprintf("invalid: %q", *p.Status)
	}
	if p.Category != nil && !p.Category.IsValid() {
		fields["category"] = fmt.Sprintf("invalid: %q", *p.Category)
	}
	if due, ok := p.DueDate.Get(); ok && due != nil {
		validateDueDate(fields, *due, today)
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// Apply copies the supplied fields onto t, leaving omitted fields untouched.
// Timestamps and identity are not modified; the caller owns those.
func (p Patch) Apply(t *Todo) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if desc, ok := p.Description.Get(); ok {
		t.Description = desc
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if due, ok := p.DueDate.Get(); ok {
		t.DueDate = due
	}
}
