package sqlite

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/jsamuelsen11/todo-api/internal/domain"
	"github.com/jsamuelsen11/todo-api/internal/domain/todo"
	"github.com/jsamuelsen11/todo-api/internal/platform/config"
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := &config.StorageConfig{
		Path:        filepath.Join(t.TempDir(), "test.db"),
		BusyTimeout: 5 * time.Second,
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
	}

	s, err := New(cfg, nil, slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// insert is a test helper that persists a todo and fails the test on error.
func insert(t *testing.T, s *Store, td todo.Todo) *todo.Todo {
	t.Helper()

	created, err := s.InsertTodo(context.Background(), &td)
	if err != nil {
		t.Fatalf("InsertTodo() error: %v", err)
	}
	return created
}

func baseTodo() todo.Todo {
	return todo.Todo{
		Title:    "Buy groceries",
		Status:   todo.StatusPending,
		Category: todo.CategoryShopping,
	}
}

func TestStore_InsertAndGet(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	due := todo.NewDate(2026, time.January, 15)
	td := baseTodo()
	td.Description = strPtr("Milk, eggs, bread")
	td.DueDate = &due
	td.OwnerID = int64Ptr(7)

	created := insert(t, s, td)

	if created.ID == 0 {
		t.Error("InsertTodo() did not assign an ID")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Error("InsertTodo() did not assign timestamps")
	}

	got, err := s.GetTodo(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTodo() error: %v", err)
	}

	if got.Title != td.Title {
		t.Errorf("Title = %q, want %q", got.Title, td.Title)
	}
	if got.Description == nil || *got.Description != "Milk, eggs, bread" {
		t.Errorf("Description = %v, want %q", got.Description, "Milk, eggs, bread")
	}
	if got.Status != todo.StatusPending {
		t.Errorf("Status = %q, want %q", got.Status, todo.StatusPending)
	}
	if got.Category != todo.CategoryShopping {
		t.Errorf("Category = %q, want %q", got.Category, todo.CategoryShopping)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("DueDate = %v, want %v", got.DueDate, due)
	}
	if got.OwnerID == nil || *got.OwnerID != 7 {
		t.Errorf("OwnerID = %v, want 7", got.OwnerID)
	}
}

func TestStore_InsertNullableFieldsStayNull(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	created := insert(t, s, baseTodo())

	got, err := s.GetTodo(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetTodo() error: %v", err)
	}
	if got.Description != nil {
		t.Errorf("Description = %v, want nil", got.Description)
	}
	if got.DueDate != nil {
		t.Errorf("DueDate = %v, want nil", got.DueDate)
	}
	if got.OwnerID != nil {
		t.Errorf("OwnerID = %v, want nil", got.OwnerID)
	}
}

func TestStore_GetTodo_NotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	_, err := s.GetTodo(context.Background(), 9999)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetTodo() error = %v, want ErrNotFound", err)
	}
}

func TestStore_UpdateTodo(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	created := insert(t, s, baseTodo())

	created.Title = "Renamed"
	created.Status = todo.StatusInProgress
	created.Description = strPtr("now with notes")

	updated, err := s.UpdateTodo(ctx, created)
	if err != nil {
		t.Fatalf("UpdateTodo() error: %v", err)
	}
	if updated.UpdatedAt.Before(created.CreatedAt) {
		t.Error("UpdateTodo() did not refresh updated_at")
	}

	got, err := s.GetTodo(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTodo() error: %v", err)
	}
	if got.Title != "Renamed" || got.Status != todo.StatusInProgress {
		t.Errorf("row = %+v, want renamed in_progress", got)
	}
	if got.Description == nil || *got.Description != "now with notes" {
		t.Errorf("Description = %v, want %q", got.Description, "now with notes")
	}
}

func TestStore_UpdateTodo_OwnerImmutable(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	td := baseTodo()
	td.OwnerID = int64Ptr(5)
	created := insert(t, s, td)

	// The update statement never writes owner_id, even if the entity
	// carries a different value.
	created.OwnerID = nil
	if _, err := s.UpdateTodo(ctx, created); err != nil {
		t.Fatalf("UpdateTodo() error: %v", err)
	}

	got, err := s.GetTodo(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetTodo() error: %v", err)
	}
	if got.OwnerID == nil || *got.OwnerID != 5 {
		t.Errorf("OwnerID = %v, want 5", got.OwnerID)
	}
}

func TestStore_UpdateTodo_NotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	td := baseTodo()
	td.ID = 9999
	_, err := s.UpdateTodo(context.Background(), &td)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("UpdateTodo() error = %v, want ErrNotFound", err)
	}
}

func TestStore_DeleteTodo(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	created := insert(t, s, baseTodo())

	if err := s.DeleteTodo(ctx, created.ID); err != nil {
		t.Fatalf("DeleteTodo() error: %v", err)
	}

	_, err := s.GetTodo(ctx, created.ID)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetTodo() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting again is not found.
	if err := s.DeleteTodo(ctx, created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("second DeleteTodo() error = %v, want ErrNotFound", err)
	}
}

// seedListFixtures inserts a deterministic mix of todos for list tests and
// returns them in insertion order.
func seedListFixtures(t *testing.T, s *Store) []*todo.Todo {
	t.Helper()

	fixtures := []todo.Todo{
		{Title: "Write report", Description: strPtr("quarterly numbers"), Status: todo.StatusPending, Category: todo.CategoryWork},
		{Title: "Buy groceries", Description: strPtr("Milk and Bread"), Status: todo.StatusPending, Category: todo.CategoryShopping},
		{Title: "Morning run", Status: todo.StatusCompleted, Category: todo.CategoryHealth},
		{Title: "Read GROCERY flyer", Status: todo.StatusInProgress, Category: todo.CategoryShopping},
		{Title: "Study Go", Description: strPtr("contexts and channels"), Status: todo.StatusPending, Category: todo.CategoryStudy},
	}

	out := make([]*todo.Todo, len(fixtures))
	for i, f := range fixtures {
		out[i] = insert(t, s, f)
	}
	return out
}

func TestStore_ListTodos_NoFilter(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	seedListFixtures(t, s)

	items, total, err := s.ListTodos(context.Background(), todo.Filter{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListTodos() error: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(items) != 5 {
		t.Errorf("len(items) = %d, want 5", len(items))
	}
}

func TestStore_ListTodos_NewestFirst(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	seeded := seedListFixtures(t, s)

	items, _, err := s.ListTodos(context.Background(), todo.Filter{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListTodos() error: %v", err)
	}

	// Insertion order reversed: equal timestamps fall back to id descending.
	last := seeded[len(seeded)-1]
	if items[0].ID != last.ID {
		t.Errorf("items[0].ID = %d, want %d (most recent insert)", items[0].ID, last.ID)
	}
	for i := 1; i < len(items); i++ {
		if items[i].ID > items[i-1].ID {
			t.Errorf("items out of order at %d: id %d after %d", i, items[i].ID, items[i-1].ID)
		}
	}
}

func TestStore_ListTodos_SearchCaseInsensitive(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	seedListFixtures(t, s)

	// "grocer" matches "Buy groceries" (title), "Milk and Bread" does not
	// match, "Read GROCERY flyer" matches (title, different case).
	items, total, err := s.ListTodos(context.Background(), todo.Filter{Search: "GrOcEr", Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListTodos() error: %v", err)
	}
	if total != 2 {
		t.Errorf("total = %d, want 2", total)
	}
	for _, it := range items {
		if it.Title != "Buy groceries" && it.Title != "Read GROCERY flyer" {
			t.Errorf("unexpected match %q", it.Title)
		}
	}
}

func TestStore_ListTodos_SearchFoldsNonASCII(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	td := baseTodo()
	td.Title = "ÉCLAIR order"
	insert(t, s, td)

	other := baseTodo()
	other.Title = "Walk dog"
	other.Description = strPtr("Grüße mitbringen")
	insert(t, s, other)

	// Folding must agree on both sides: uppercase, lowercase, and mixed-case
	// non-ASCII needles all hit the same row.
	for _, search := range []string{"ÉCLAIR", "éclair", "Éclair"} {
		items, total, err := s.ListTodos(context.Background(), todo.Filter{Search: search, Page: 1, PerPage: 10})
		if err != nil {
			t.Fatalf("ListTodos(%q) error: %v", search, err)
		}
		if total != 1 {
			t.Errorf("ListTodos(%q) total = %d, want 1", search, total)
			continue
		}
		if items[0].Title != "ÉCLAIR order" {
			t.Errorf("ListTodos(%q) matched %q, want %q", search, items[0].Title, "ÉCLAIR order")
		}
	}

	// Non-ASCII description match.
	_, total, err := s.ListTodos(context.Background(), todo.Filter{Search: "GrÜße", Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListTodos() error: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1 (non-ASCII description match)", total)
	}
}

func TestStore_ListTodos_SearchMatchesDescription(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	seedListFixtures(t, s)

	_, total, err := s.ListTodos(context.Background(), todo.Filter{Search: "milk", Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("ListTodos() error: %v", err)
	}
	if total != 1 {
		t.Errorf("total = %d, want 1 (description match)", total)
	}
}

func TestStore_ListTodos_FiltersCompose(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	seedListFixtures(t, s)

	tests := []struct {
		name      string
		filter    todo.Filter
		wantTotal int
	}{
		{
			name:      "status only",
			filter:    todo.Filter{Status: todo.StatusPending, Page: 1, PerPage: 10},
			wantTotal: 3,
		},
		{
			name:      "category only",
			filter:    todo.Filter{Category: todo.CategoryShopping, Page: 1, PerPage: 10},
			wantTotal: 2,
		},
		{
			name:      "status AND category",
			filter:    todo.Filter{Status: todo.StatusPending, Category: todo.CategoryShopping, Page: 1, PerPage: 10},
			wantTotal: 1,
		},
		{
			name:      "search AND status",
			filter:    todo.Filter{Search: "grocer", Status: todo.StatusInProgress, Page: 1, PerPage: 10},
			wantTotal: 1,
		},
		{
			name:      "no matches",
			filter:    todo.Filter{Search: "grocer", Status: todo.StatusCompleted, Page: 1, PerPage: 10},
			wantTotal: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, total, err := s.ListTodos(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("ListTodos() error: %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
		})
	}
}

func TestStore_ListTodos_Pagination(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	seedListFixtures(t, s)

	ctx := context.Background()

	page1, total, err := s.ListTodos(ctx, todo.Filter{Page: 1, PerPage: 2})
	if err != nil {
		t.Fatalf("ListTodos(page 1) error: %v", err)
	}
	if total != 5 || len(page1) != 2 {
		t.Errorf("page 1: total=%d len=%d, want 5/2", total, len(page1))
	}

	page3, total, err := s.ListTodos(ctx, todo.Filter{Page: 3, PerPage: 2})
	if err != nil {
		t.Fatalf("ListTodos(page 3) error: %v", err)
	}
	if total != 5 || len(page3) != 1 {
		t.Errorf("page 3: total=%d len=%d, want 5/1", total, len(page3))
	}

	// A page past the end is empty but still reports the true total.
	beyond, total, err := s.ListTodos(ctx, todo.Filter{Page: 9, PerPage: 2})
	if err != nil {
		t.Fatalf("ListTodos(page 9) error: %v", err)
	}
	if total != 5 || len(beyond) != 0 {
		t.Errorf("page beyond end: total=%d len=%d, want 5/0", total, len(beyond))
	}
}

func TestStore_NotFoundDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	// More consecutive not-founds than the breaker's failure threshold.
	for range 10 {
		if _, err := s.GetTodo(ctx, 12345); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("GetTodo() error = %v, want ErrNotFound", err)
		}
	}

	// The store must still accept writes.
	if _, err := s.InsertTodo(ctx, &todo.Todo{Title: "still alive", Status: todo.StatusPending, Category: todo.CategoryWork}); err != nil {
		t.Fatalf("InsertTodo() after not-found streak error: %v", err)
	}
}

func TestStore_BreakerOpensOnPersistentFailure(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	// Closing the database makes every call an infrastructure failure.
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	for range 5 {
		_, _ = s.GetTodo(ctx, 1)
	}

	// Past the threshold the breaker rejects calls outright; either way the
	// caller sees ErrUnavailable.
	_, err := s.GetTodo(ctx, 1)
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("GetTodo() on closed store error = %v, want ErrUnavailable", err)
	}
}

func TestStore_HealthCheck(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)

	if got := s.Name(); got != "sqlite" {
		t.Errorf("Name() = %q, want %q", got, "sqlite")
	}
	if err := s.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error: %v", err)
	}
}

func TestStore_MigrationsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.db")
	cfg := &config.StorageConfig{
		Path:        path,
		BusyTimeout: 5 * time.Second,
		CircuitBreaker: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
	}
	logger := slog.New(slog.DiscardHandler)

	s1, err := New(cfg, nil, logger)
	if err != nil {
		t.Fatalf("first New() error: %v", err)
	}
	created := insert(t, s1, baseTodo())
	if err := s1.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	// Reopening the same file must not re-run migrations or lose rows.
	s2, err := New(cfg, nil, logger)
	if err != nil {
		t.Fatalf("second New() error: %v", err)
	}
	t.Cleanup(func() { _ = s2.Close() })

	got, err := s2.GetTodo(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetTodo() after reopen error: %v", err)
	}
	if got.Title != created.Title {
		t.Errorf("Title = %q, want %q", got.Title, created.Title)
	}
}
