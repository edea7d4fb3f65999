package ports

import (
	"context"

	"github.com/jsamuelsen11/todo-api/internal/domain/todo"
)

// TodoStore defines the record-store port for the todo collection.
// Implemented by storage adapters; called by the application layer.
//
// Implementations must guarantee atomicity of a single row's write but are
// not required to provide cross-row transactions; every operation touches at
// most one row, except ListTodos which reads many and mutates none.
// A store that is unreachable or rejects an operation returns an error
// wrapping domain.ErrUnavailable.
type TodoStore interface {
	// ListTodos returns the rows for the filter's page, ordered by
	// created_at descending with id descending as tiebreak, together with
	// the total matching-row count across all pages. The filter must be
	// normalized by the caller.
	ListTodos(ctx context.Context, filter todo.Filter) ([]todo.Todo, int, error)

	// GetTodo returns a single todo by ID.
	// Returns domain.ErrNotFound if no row exists.
	GetTodo(ctx context.Context, id int64) (*todo.Todo, error)

	// InsertTodo persists a new todo, assigning its ID and timestamps, and
	// returns the stored entity.
	InsertTodo(ctx context.Context, t *todo.Todo) (*todo.Todo, error)

	// UpdateTodo overwrites the mutable fields of an existing row and
	// refreshes updated_at. Returns the stored entity, or
	// domain.ErrNotFound if no row exists.
	UpdateTodo(ctx context.Context, t *todo.Todo) (*todo.Todo, error)

	// DeleteTodo removes a row by ID.
	// Returns domain.ErrNotFound if no row exists.
	DeleteTodo(ctx context.Context, id int64) error
}
