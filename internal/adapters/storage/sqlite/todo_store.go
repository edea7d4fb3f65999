package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jsamuelsen11/todo-api/internal/domain"
	"github.com/jsamuelsen11/todo-api/internal/domain/todo"
)

// todoRow is the storage representation of a todo, decoupled from the
// domain entity.
type todoRow struct {
	ID          int64      `db:"id"`
	Title       string     `db:"title"`
	Description *string    `db:"description"`
	Status      string     `db:"status"`
	Category    string     `db:"category"`
	DueDate     *todo.Date `db:"due_date"`
	OwnerID     *int64     `db:"owner_id"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

func (r todoRow) toDomain() todo.Todo {
	return todo.Todo{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Status:      todo.Status(r.Status),
		Category:    todo.Category(r.Category),
		DueDate:     r.DueDate,
		OwnerID:     r.OwnerID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// listResult bundles one page of rows with the total matching-row count so
// both travel through the circuit breaker as a single value.
type listResult struct {
	items []todo.Todo
	total int
}

// ListTodos returns the filter's page of todos ordered by created_at
// descending (id descending as tiebreak) and the total matching-row count.
func (s *Store) ListTodos(ctx context.Context, filter todo.Filter) ([]todo.Todo, int, error) {
	result, err := execute(ctx, s, "ListTodos", func(ctx context.Context) (listResult, error) {
		where, args := buildTodoPredicates(filter)

		var total int
		countQuery := "SELECT COUNT(*) FROM todos" + where
		if err := s.db.GetContext(ctx, &total, countQuery, args...); err != nil {
			return listResult{}, unavailable("counting todos", err)
		}

		query := "SELECT * FROM todos" + where +
			" ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?"
		pageArgs := append(args, filter.PerPage, filter.Offset())

		var rows []todoRow
		if err := s.db.SelectContext(ctx, &rows, query, pageArgs...); err != nil {
			return listResult{}, unavailable("selecting todos", err)
		}

		items := make([]todo.Todo, len(rows))
		for i, r := range rows {
			items[i] = r.toDomain()
		}
		return listResult{items: items, total: total}, nil
	})
	if err != nil {
		return nil, 0, err
	}
	return result.items, result.total, nil
}

// buildTodoPredicates translates the filter dimensions into a WHERE clause.
// Search uses instr() on lowered text: substring semantics with no LIKE
// wildcard escaping to worry about. Both sides fold through the registered
// unicode_lower function so non-ASCII titles match case-insensitively too
// (SQLite's own lower() stops at A-Z).
func buildTodoPredicates(filter todo.Filter) (string, []any) {
	var preds []string
	var args []any

	if filter.Search != "" {
		preds = append(preds,
			"(instr(unicode_lower(title), ?) > 0 OR instr(unicode_lower(coalesce(description, '')), ?) > 0)")
		needle := strings.ToLower(filter.Search)
		args = append(args, needle, needle)
	}
	if filter.Status != "" {
		preds = append(preds, "status = ?")
		args = append(args, string(filter.Status))
	}
	if filter.Category != "" {
		preds = append(preds, "category = ?")
		args = append(args, string(filter.Category))
	}

	if len(preds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(preds, " AND "), args
}

// GetTodo returns a single todo by ID.
func (s *Store) GetTodo(ctx context.Context, id int64) (*todo.Todo, error) {
	return execute(ctx, s, "GetTodo", func(ctx context.Context) (*todo.Todo, error) {
		var row todoRow
		err := s.db.GetContext(ctx, &row, "SELECT * FROM todos WHERE id = ?", id)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("todo %d: %w", id, domain.ErrNotFound)
		}
		if err != nil {
			return nil, unavailable("selecting todo", err)
		}
		t := row.toDomain()
		return &t, nil
	})
}

// InsertTodo persists a new todo, assigning its ID and timestamps.
func (s *Store) InsertTodo(ctx context.Context, t *todo.Todo) (*todo.Todo, error) {
	return execute(ctx, s, "InsertTodo", func(ctx context.Context) (*todo.Todo, error) {
		now := time.Now().UTC()

		res, err := s.db.ExecContext(ctx, `
			INSERT INTO todos (title, description, status, category, due_date, owner_id, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Title, t.Description, string(t.Status), string(t.Category),
			t.DueDate, t.OwnerID, now, now,
		)
		if err != nil {
			return nil, unavailable("inserting todo", err)
		}

		id, err := res.LastInsertId()
		if err != nil {
			return nil, unavailable("reading inserted todo id", err)
		}

		created := *t
		created.ID = id
		created.CreatedAt = now
		created.UpdatedAt = now
		return &created, nil
	})
}

// UpdateTodo overwrites the mutable fields of an existing row and refreshes
// updated_at. Identity, ownership, and created_at are immutable.
func (s *Store) UpdateTodo(ctx context.Context, t *todo.Todo) (*todo.Todo, error) {
	return execute(ctx, s, "UpdateTodo", func(ctx context.Context) (*todo.Todo, error) {
		now := time.Now().UTC()

		res, err := s.db.ExecContext(ctx, `
			UPDATE todos
			SET title = ?, description = ?, status = ?, category = ?, due_date = ?, updated_at = ?
			WHERE id = ?`,
			t.Title, t.Description, string(t.Status), string(t.Category),
			t.DueDate, now, t.ID,
		)
		if err != nil {
			return nil, unavailable("updating todo", err)
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return nil, unavailable("reading update row count", err)
		}
		if rows == 0 {
			return nil, fmt.Errorf("todo %d: %w", t.ID, domain.ErrNotFound)
		}

		updated := *t
		updated.UpdatedAt = now
		return &updated, nil
	})
}

// DeleteTodo permanently removes a row by ID.
func (s *Store) DeleteTodo(ctx context.Context, id int64) error {
	_, err := execute(ctx, s, "DeleteTodo", func(ctx context.Context) (struct{}, error) {
		res, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
		if err != nil {
			return struct{}{}, unavailable("deleting todo", err)
		}

		rows, err := res.RowsAffected()
		if err != nil {
			return struct{}{}, unavailable("reading delete row count", err)
		}
		if rows == 0 {
			return struct{}{}, fmt.Errorf("todo %d: %w", id, domain.ErrNotFound)
		}
		return struct{}{}, nil
	})
	return err
}
