// Package app provides application services that orchestrate use cases by
// coordinating between domain logic and infrastructure through port interfaces.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/jsamuelsen11/todo-api/internal/domain"
	"github.com/jsamuelsen11/todo-api/internal/domain/todo"
	"github.com/jsamuelsen11/todo-api/internal/ports"
)

// Compile-time check that TodoService implements ports.TodoService.
var _ ports.TodoService = (*TodoService)(nil)

// TodoService implements ports.TodoService on top of a TodoStore port.
// It owns validation, ownership checks, and the status-transition rules;
// persistence details stay behind the store port.
type TodoService struct {
	store  ports.TodoStore
	logger *slog.Logger
	now    func() time.Time
}

// Option configures a TodoService.
type Option func(*TodoService)

// WithClock overrides the service's clock. Used by tests to pin "today" for
// due-date validation.
func WithClock(now func() time.Time) Option {
	return func(s *TodoService) {
		s.now = now
	}
}

// NewTodoService creates a TodoService backed by the given store.
func NewTodoService(store ports.TodoStore, logger *slog.Logger, opts ...Option) *TodoService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	s := &TodoService{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListTodos returns one page of todos matching the filter. The filter is
// normalized (page >= 1, per_page defaulted and capped) before execution.
func (s *TodoService) ListTodos(ctx context.Context, filter todo.Filter) (*todo.Page, error) {
	filter = filter.Normalized()

	items, total, err := s.store.ListTodos(ctx, filter)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list todos",
			slog.String("operation", "ListTodos"),
			slog.Any("error", err),
		)
		return nil, err
	}

	page := todo.NewPage(items, total, filter.Page, filter.PerPage)
	return &page, nil
}

// GetTodo returns a single todo by ID.
func (s *TodoService) GetTodo(ctx context.Context, id int64) (*todo.Todo, error) {
	t, err := s.store.GetTodo(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch todo",
			slog.String("operation", "GetTodo"),
			slog.Int64("todo_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}
	return t, nil
}

// CreateTodo validates and persists a new todo. A missing status defaults to
// pending. A non-anonymous actor becomes the owner.
func (s *TodoService) CreateTodo(ctx context.Context, actor domain.Actor, t *todo.Todo) (*todo.Todo, error) {
	if t.Status == "" {
		t.Status = todo.StatusPending
	}
	if !actor.Anonymous() {
		ownerID := actor.UserID
		t.OwnerID = &ownerID
	}

	if err := t.Validate(s.today()); err != nil {
		return nil, err
	}

	created, err := s.store.InsertTodo(ctx, t)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to create todo",
			slog.String("operation", "CreateTodo"),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "todo created",
		slog.Int64("todo_id", created.ID),
		slog.String("status", created.Status.String()),
	)
	return created, nil
}

// UpdateTodo applies a partial update to an existing todo. Only supplied
// fields are validated and changed; validation failures never reach the
// store.
func (s *TodoService) UpdateTodo(ctx context.Context, actor domain.Actor, id int64, patch todo.Patch) (*todo.Todo, error) {
	if err := patch.Validate(s.today()); err != nil {
		return nil, err
	}

	current, err := s.store.GetTodo(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch todo for update",
			slog.String("operation", "UpdateTodo"),
			slog.Int64("todo_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	if !actor.Owns(current.OwnerID) {
		s.logger.WarnContext(ctx, "update denied",
			slog.Int64("todo_id", id),
			slog.Int64("user_id", actor.UserID),
		)
		return nil, domain.ErrForbidden
	}

	patch.Apply(current)

	updated, err := s.store.UpdateTodo(ctx, current)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update todo",
			slog.String("operation", "UpdateTodo"),
			slog.Int64("todo_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	return updated, nil
}

// DeleteTodo permanently removes a todo.
func (s *TodoService) DeleteTodo(ctx context.Context, actor domain.Actor, id int64) error {
	current, err := s.store.GetTodo(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch todo for delete",
			slog.String("operation", "DeleteTodo"),
			slog.Int64("todo_id", id),
			slog.Any("error", err),
		)
		return err
	}

	if !actor.Owns(current.OwnerID) {
		s.logger.WarnContext(ctx, "delete denied",
			slog.Int64("todo_id", id),
			slog.Int64("user_id", actor.UserID),
		)
		return domain.ErrForbidden
	}

	if err := s.store.DeleteTodo(ctx, id); err != nil {
		s.logger.ErrorContext(ctx, "failed to delete todo",
			slog.String("operation", "DeleteTodo"),
			slog.Int64("todo_id", id),
			slog.Any("error", err),
		)
		return err
	}

	s.logger.InfoContext(ctx, "todo deleted", slog.Int64("todo_id", id))
	return nil
}

// AdvanceStatus moves a todo one step along the status cycle and persists
// the result. Racing advances are last-write-wins; the store serializes the
// row write itself.
func (s *TodoService) AdvanceStatus(ctx context.Context, id int64) (*todo.Todo, error) {
	current, err := s.store.GetTodo(ctx, id)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch todo for status advance",
			slog.String("operation", "AdvanceStatus"),
			slog.Int64("todo_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	from := current.Status
	current.Status = from.Next()

	updated, err := s.store.UpdateTodo(ctx, current)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to persist status advance",
			slog.String("operation", "AdvanceStatus"),
			slog.Int64("todo_id", id),
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "todo status advanced",
		slog.Int64("todo_id", id),
		slog.String("from", from.String()),
		slog.String("to", updated.Status.String()),
	)
	return updated, nil
}

// today returns the current calendar date from the service clock.
func (s *TodoService) today() todo.Date {
	return todo.DateOf(s.now())
}
