package ports

import (
	"context"

	"github.com/jsamuelsen11/todo-api/internal/domain"
	"github.com/jsamuelsen11/todo-api/internal/domain/todo"
)

// TodoService defines the service port for todo operations.
// Implemented by the application layer; called by inbound adapters (handlers).
//
// Mutating operations take an explicit domain.Actor: todos that carry an
// owner may only be updated or deleted by that owner.
type TodoService interface {
	// ListTodos returns one page of todos matching the filter. Pagination
	// defaults are applied to the filter before it is executed. Requesting
	// a page beyond the last returns an empty page with true totals.
	ListTodos(ctx context.Context, filter todo.Filter) (*todo.Page, error)

	// GetTodo returns a single todo by ID.
	// Returns domain.ErrNotFound if the todo does not exist.
	GetTodo(ctx context.Context, id int64) (*todo.Todo, error)

	// CreateTodo validates and creates a new todo, returning the created
	// entity with store-assigned fields (ID, timestamps). A non-anonymous
	// actor becomes the todo's owner.
	// Returns domain.ErrValidation if the todo fails validation.
	CreateTodo(ctx context.Context, actor domain.Actor, t *todo.Todo) (*todo.Todo, error)

	// UpdateTodo applies a partial update: only the fields supplied in the
	// patch are validated and changed.
	// Returns domain.ErrNotFound if the todo does not exist,
	// domain.ErrForbidden if the actor is not the owner of an owned todo,
	// and domain.ErrValidation if any supplied field is invalid.
	UpdateTodo(ctx context.Context, actor domain.Actor, id int64, patch todo.Patch) (*todo.Todo, error)

	// DeleteTodo permanently removes a todo.
	// Returns domain.ErrNotFound if the todo does not exist and
	// domain.ErrForbidden if the actor is not the owner of an owned todo.
	DeleteTodo(ctx context.Context, actor domain.Actor, id int64) error

	// AdvanceStatus moves the todo's status one step along the cycle
	// pending → in_progress → completed → pending (cancelled restarts at
	// pending) and returns the updated entity.
	// Returns domain.ErrNotFound if the todo does not exist.
	AdvanceStatus(ctx context.Context, id int64) (*todo.Todo, error)
}
