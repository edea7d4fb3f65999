package app

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/jsamuelsen11/todo-api/internal/domain"
	"github.com/jsamuelsen11/todo-api/internal/domain/todo"
	"github.com/jsamuelsen11/todo-api/mocks"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(s string) *string { return &s }

// fixedClock pins the service clock so due-date validation is deterministic:
// "today" is 2025-06-15.
func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.June, 15, 10, 30, 0, 0, time.UTC)
	}
}

func newService(store *mocks.MockTodoStore) *TodoService {
	return NewTodoService(store, discardLogger(), WithClock(fixedClock()))
}

func validTodo() todo.Todo {
	return todo.Todo{
		ID:        1,
		Title:     "Buy groceries",
		Status:    todo.StatusPending,
		Category:  todo.CategoryShopping,
		CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestNewTodoService_NilLogger(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockTodoStore(t)
	svc := NewTodoService(store, nil)
	if svc.logger == nil {
		t.Fatal("NewTodoService(nil logger) should create a no-op logger, got nil")
	}
}

// --- ListTodos ---

func TestTodoService_ListTodos_NormalizesFilter(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockTodoStore(t)
	svc := newService(store)

	// Zero filter must reach the store with defaults applied.
	want := todo.Filter{Page: 1, PerPage: todo.DefaultPerPage}
	store.EXPECT().ListTodos(mock.Anything, want).Return([]todo.Todo{}, 0, nil)

	page, err := svc.ListTodos(context.Background(), todo.Filter{})
	if err != nil {
		t.Fatalf("ListTodos() error: %v", err)
	}
	if page.CurrentPage != 1 || page.PerPage != todo.DefaultPerPage {
		t.Errorf("page = %+v, want current_page=1 per_page=%d", page, todo.DefaultPerPage)
	}
}

func TestTodoService_ListTodos_CapsPerPage(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockTodoStore(t)
	svc := newService(store)

	want := todo.Filter{Page: 2, PerPage: todo.MaxPerPage}
	store.EXPECT().ListTodos(mock.Anything, want).Return([]todo.Todo{}, 0, nil)

	if _, err := svc.ListTodos(context.Background(), todo.Filter{Page: 2, PerPage: 5000}); err != nil {
		t.Fatalf("ListTodos() error: %v", err)
	}
}

func TestTodoService_ListTodos_BuildsPageMetadata(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockTodoStore(t)
	svc := newService(store)

	items := []todo.Todo{validTodo(), validTodo()}
	filter := todo.Filter{Page: 2, PerPage: 2}
	store.EXPECT().ListTodos(mock.Anything, filter).Return(items, 5, nil)

	page, err := svc.ListTodos(context.Background(), filter)
	if err != nil {
		t.Fatalf("ListTodos() error: %v", err)
	}

	if page.Total != 5 {
		t.Errorf("Total = %d, want 5", page.Total)
	}
	if page.LastPage != 3 {
		t.Errorf("LastPage = %d, want 3", page.LastPage)
	}
	if page.From != 3 || page.To != 4 {
		t.Errorf("From/To = %d/%d, want 3/4", page.From, page.To)
	}
	if !page.HasMore {
		t.Error("HasMore = false, want true")
	}
}

func TestTodoService_ListTodos_StoreError(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockTodoStore(t)
	svc := newService(store)

	store.EXPECT().ListTodos(mock.Anything, mock.Anything).Return(nil, 0, domain.ErrUnavailable)

	_, err := svc.ListTodos(context.Background(), todo.Filter{})
	if !errors.Is(err, domain.ErrUnavailable) {
		t.Errorf("ListTodos() error = %v, want ErrUnavailable", err)
	}
}

// --- GetTodo ---

func TestTodoService_GetTodo(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockTodoStore(t)
	svc := newService(store)

	td := validTodo()
	store.EXPECT().GetTodo(mock.Anything, int64(1)).Return(&td, nil)

	got, err := svc.GetTodo(context.Background(), 1)
	if err != nil {
		t.Fatalf("GetTodo() error: %v", err)
	}
	if got.ID != 1 {
		t.Errorf("ID = %d, want 1", got.ID)
	}
}

func TestTodoService_GetTodo_NotFound(t *testing.T) {
	t.Parallel()

	store := mocks.NewMockTodoStore(t)
	svc := newService(store)

	store.EXPECT().GetTodo(mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)

	_, err := svc.GetTodo(context.Background(), 99)
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("GetTodo() error = %v, want ErrNotFound", err)
	}
}

// --- CreateTodo ---

func TestTodoService_CreateTodo(t *testing.T) {
	t.Parallel()

	t.Run("missing status defaults to pending", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		td := validTodo()
		td.Status = ""

		store.EXPECT().InsertTodo(mock.Anything, mock.AnythingOfType("*todo.Todo")).
			RunAndReturn(func(_ context.Context, in *todo.Todo) (*todo.Todo, error) {
				if in.Status != todo.StatusPending {
					t.Errorf("inserted status = %q, want %q", in.Status, todo.StatusPending)
				}
				out := *in
				out.ID = 10
				return &out, nil
			})

		created, err := svc.CreateTodo(context.Background(), domain.Actor{}, &td)
		if err != nil {
			t.Fatalf("CreateTodo() error: %v", err)
		}
		if created.ID != 10 {
			t.Errorf("ID = %d, want 10", created.ID)
		}
	})

	t.Run("authenticated actor becomes owner", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		td := validTodo()

		store.EXPECT().InsertTodo(mock.Anything, mock.AnythingOfType("*todo.Todo")).
			RunAndReturn(func(_ context.Context, in *todo.Todo) (*todo.Todo, error) {
				if in.OwnerID == nil || *in.OwnerID != 7 {
					t.Errorf("inserted owner = %v, want 7", in.OwnerID)
				}
				return in, nil
			})

		if _, err := svc.CreateTodo(context.Background(), domain.Actor{UserID: 7}, &td); err != nil {
			t.Fatalf("CreateTodo() error: %v", err)
		}
	})

	t.Run("anonymous actor leaves todo unowned", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		td := validTodo()

		store.EXPECT().InsertTodo(mock.Anything, mock.AnythingOfType("*todo.Todo")).
			RunAndReturn(func(_ context.Context, in *todo.Todo) (*todo.Todo, error) {
				if in.OwnerID != nil {
					t.Errorf("inserted owner = %v, want nil", in.OwnerID)
				}
				return in, nil
			})

		if _, err := svc.CreateTodo(context.Background(), domain.Actor{}, &td); err != nil {
			t.Fatalf("CreateTodo() error: %v", err)
		}
	})

	t.Run("validation failure never reaches the store", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		td := validTodo()
		td.Title = ""

		_, err := svc.CreateTodo(context.Background(), domain.Actor{}, &td)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("CreateTodo() error = %v, want ErrValidation", err)
		}
	})

	t.Run("past due date rejected against service clock", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		due := todo.NewDate(2025, time.June, 15) // today, not strictly after
		td := validTodo()
		td.DueDate = &due

		_, err := svc.CreateTodo(context.Background(), domain.Actor{}, &td)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("CreateTodo() error = %v, want ErrValidation", err)
		}
	})

	t.Run("store error propagates", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		td := validTodo()
		store.EXPECT().InsertTodo(mock.Anything, mock.Anything).Return(nil, domain.ErrUnavailable)

		_, err := svc.CreateTodo(context.Background(), domain.Actor{}, &td)
		if !errors.Is(err, domain.ErrUnavailable) {
			t.Errorf("CreateTodo() error = %v, want ErrUnavailable", err)
		}
	})
}

// --- UpdateTodo ---

func TestTodoService_UpdateTodo(t *testing.T) {
	t.Parallel()

	t.Run("applies supplied fields only", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		current := validTodo()
		store.EXPECT().GetTodo(mock.Anything, int64(1)).Return(&current, nil)
		store.EXPECT().UpdateTodo(mock.Anything, mock.AnythingOfType("*todo.Todo")).
			RunAndReturn(func(_ context.Context, in *todo.Todo) (*todo.Todo, error) {
				if in.Title != "Renamed" {
					t.Errorf("updated title = %q, want %q", in.Title, "Renamed")
				}
				if in.Category != todo.CategoryShopping {
					t.Errorf("category changed to %q, want untouched", in.Category)
				}
				return in, nil
			})

		patch := todo.Patch{Title: strPtr("Renamed")}
		if _, err := svc.UpdateTodo(context.Background(), domain.Actor{}, 1, patch); err != nil {
			t.Fatalf("UpdateTodo() error: %v", err)
		}
	})

	t.Run("invalid patch never reaches the store", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		patch := todo.Patch{Title: strPtr("  ")}
		_, err := svc.UpdateTodo(context.Background(), domain.Actor{}, 1, patch)
		if !errors.Is(err, domain.ErrValidation) {
			t.Errorf("UpdateTodo() error = %v, want ErrValidation", err)
		}
	})

	t.Run("not found propagates", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		store.EXPECT().GetTodo(mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)

		_, err := svc.UpdateTodo(context.Background(), domain.Actor{}, 99, todo.Patch{Title: strPtr("x")})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("UpdateTodo() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		current := validTodo()
		current.OwnerID = int64Ptr(5)
		store.EXPECT().GetTodo(mock.Anything, int64(1)).Return(&current, nil)

		_, err := svc.UpdateTodo(context.Background(), domain.Actor{UserID: 6}, 1, todo.Patch{Title: strPtr("x")})
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("UpdateTodo() error = %v, want ErrForbidden", err)
		}
	})

	t.Run("owner may update", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		current := validTodo()
		current.OwnerID = int64Ptr(5)
		store.EXPECT().GetTodo(mock.Anything, int64(1)).Return(&current, nil)
		store.EXPECT().UpdateTodo(mock.Anything, mock.Anything).Return(&current, nil)

		if _, err := svc.UpdateTodo(context.Background(), domain.Actor{UserID: 5}, 1, todo.Patch{Title: strPtr("x")}); err != nil {
			t.Fatalf("UpdateTodo() error: %v", err)
		}
	})

	t.Run("anyone may update an unowned todo", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		current := validTodo()
		store.EXPECT().GetTodo(mock.Anything, int64(1)).Return(&current, nil)
		store.EXPECT().UpdateTodo(mock.Anything, mock.Anything).Return(&current, nil)

		if _, err := svc.UpdateTodo(context.Background(), domain.Actor{}, 1, todo.Patch{Title: strPtr("x")}); err != nil {
			t.Fatalf("UpdateTodo() error: %v", err)
		}
	})
}

// --- DeleteTodo ---

func TestTodoService_DeleteTodo(t *testing.T) {
	t.Parallel()

	t.Run("deletes existing todo", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		current := validTodo()
		store.EXPECT().GetTodo(mock.Anything, int64(1)).Return(&current, nil)
		store.EXPECT().DeleteTodo(mock.Anything, int64(1)).Return(nil)

		if err := svc.DeleteTodo(context.Background(), domain.Actor{}, 1); err != nil {
			t.Fatalf("DeleteTodo() error: %v", err)
		}
	})

	t.Run("not found propagates", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		store.EXPECT().GetTodo(mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)

		err := svc.DeleteTodo(context.Background(), domain.Actor{}, 99)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("DeleteTodo() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("non-owner is forbidden", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		current := validTodo()
		current.OwnerID = int64Ptr(5)
		store.EXPECT().GetTodo(mock.Anything, int64(1)).Return(&current, nil)

		err := svc.DeleteTodo(context.Background(), domain.Actor{}, 1)
		if !errors.Is(err, domain.ErrForbidden) {
			t.Errorf("DeleteTodo() error = %v, want ErrForbidden", err)
		}
	})

	t.Run("store delete error propagates", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		current := validTodo()
		store.EXPECT().GetTodo(mock.Anything, int64(1)).Return(&current, nil)
		store.EXPECT().DeleteTodo(mock.Anything, int64(1)).Return(domain.ErrUnavailable)

		err := svc.DeleteTodo(context.Background(), domain.Actor{}, 1)
		if !errors.Is(err, domain.ErrUnavailable) {
			t.Errorf("DeleteTodo() error = %v, want ErrUnavailable", err)
		}
	})
}

// --- AdvanceStatus ---

func TestTodoService_AdvanceStatus(t *testing.T) {
	t.Parallel()

	transitions := []struct {
		from todo.Status
		to   todo.Status
	}{
		{todo.StatusPending, todo.StatusInProgress},
		{todo.StatusInProgress, todo.StatusCompleted},
		{todo.StatusCompleted, todo.StatusPending},
		{todo.StatusCancelled, todo.StatusPending},
	}

	for _, tr := range transitions {
		t.Run(string(tr.from)+" to "+string(tr.to), func(t *testing.T) {
			t.Parallel()

			store := mocks.NewMockTodoStore(t)
			svc := newService(store)

			current := validTodo()
			current.Status = tr.from
			store.EXPECT().GetTodo(mock.Anything, int64(1)).Return(&current, nil)
			store.EXPECT().UpdateTodo(mock.Anything, mock.AnythingOfType("*todo.Todo")).
				RunAndReturn(func(_ context.Context, in *todo.Todo) (*todo.Todo, error) {
					if in.Status != tr.to {
						t.Errorf("persisted status = %q, want %q", in.Status, tr.to)
					}
					return in, nil
				})

			updated, err := svc.AdvanceStatus(context.Background(), 1)
			if err != nil {
				t.Fatalf("AdvanceStatus() error: %v", err)
			}
			if updated.Status != tr.to {
				t.Errorf("Status = %q, want %q", updated.Status, tr.to)
			}
		})
	}

	t.Run("not found propagates", func(t *testing.T) {
		t.Parallel()

		store := mocks.NewMockTodoStore(t)
		svc := newService(store)

		store.EXPECT().GetTodo(mock.Anything, int64(99)).Return(nil, domain.ErrNotFound)

		_, err := svc.AdvanceStatus(context.Background(), 99)
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("AdvanceStatus() error = %v, want ErrNotFound", err)
		}
	})
}
