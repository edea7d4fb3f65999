package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/jsamuelsen11/todo-api/internal/adapters/http/dto"
	"github.com/jsamuelsen11/todo-api/internal/domain"
	"github.com/jsamuelsen11/todo-api/internal/domain/todo"
)

// parseID extracts an int64 path parameter from the chi URL params.
func parseID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &domain.ValidationError{
			In:     "path",
			Fields: map[string]string{param: "must be a valid integer"},
		}
	}
	return id, nil
}

// parseTodoFilter builds a todo.Filter from list query parameters.
//
// Unrecognized status or category values impose no filter rather than
// failing the request; filter dropdowns and bookmarked URLs with stale
// values still return a sensible listing. Pagination parameters, in
// contrast, must be positive integers when supplied.
func parseTodoFilter(r *http.Request) (todo.Filter, error) {
	q := r.URL.Query()

	filter := todo.Filter{Search: q.Get("search")}

	if s := todo.Status(q.Get("status")); s.IsValid() {
		filter.Status = s
	}
	if c := todo.Category(q.Get("category")); c.IsValid() {
		filter.Category = c
	}

	fields := make(map[string]string)
	filter.Page = parsePositiveInt(q.Get("page"), fields, "page")
	filter.PerPage = parsePositiveInt(q.Get("per_page"), fields, "per_page")
	if len(fields) > 0 {
		return todo.Filter{}, &domain.ValidationError{In: "query", Fields: fields}
	}

	return filter, nil
}

// parsePositiveInt parses an optional positive integer query parameter,
// recording a field error for values that are not positive integers.
// Returns 0 for an absent parameter.
func parsePositiveInt(raw string, fields map[string]string, name string) int {
	if raw == "" {
		return 0
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		fields[name] = "must be a positive integer"
		return 0
	}
	return v
}

// mapCreateTodoRequest converts a validated CreateTodoRequest DTO to a
// domain Todo entity. The request must already have passed Validate, so the
// due date is known to parse.
func mapCreateTodoRequest(req *dto.CreateTodoRequest) *todo.Todo {
	t := &todo.Todo{
		Title:       req.Title,
		Description: req.Description,
		Status:      todo.StatusPending,
		Category:    todo.Category(req.Category),
	}
	if req.Status != "" {
		t.Status = todo.Status(req.Status)
	}
	if req.DueDate != nil {
		if due, err := todo.ParseDate(*req.DueDate); err == nil {
			t.DueDate = &due
		}
	}
	return t
}

// mapUpdateTodoRequest converts a validated UpdateTodoRequest DTO to a
// domain Patch, preserving the omitted / null / value distinction for the
// clearable fields.
func mapUpdateTodoRequest(req *dto.UpdateTodoRequest) todo.Patch {
	patch := todo.Patch{Title: req.Title}

	if req.Description.Present {
		patch.Description = domain.Some(req.Description.Value)
	}
	if req.Status != nil {
		s := todo.Status(*req.Status)
		patch.Status = &s
	}
	if req.Category != nil {
		c := todo.Category(*req.Category)
		patch.Category = &c
	}
	if req.DueDate.Present {
		if req.DueDate.Value == nil {
			patch.DueDate = domain.Some[*todo.Date](nil)
		} else if due, err := todo.ParseDate(*req.DueDate.Value); err == nil {
			patch.DueDate = domain.Some(&due)
		}
	}

	return patch
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

// maxJSONBodyBytes is the maximum allowed size for a JSON request body (1 MB).
const maxJSONBodyBytes = 1 << 20

// decodeJSONBody decodes the request body as JSON into dst. The body is
// limited to maxJSONBodyBytes to prevent resource exhaustion. On failure,
// it writes a 400 error response and returns false.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{
			Fields: map[string]string{"body": "invalid JSON"},
		})
		return false
	}
	return true
}

// validatable is implemented by request DTOs that support validation.
type validatable interface {
	Validate() error
}

// decodeAndValidate decodes the JSON request body into dst and validates it.
// On decode or validation failure it writes an error response and returns false.
func decodeAndValidate[T validatable](w http.ResponseWriter, r *http.Request, dst T) bool {
	if !decodeJSONBody(w, r, dst) {
		return false
	}
	if err := dst.Validate(); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return false
	}
	return true
}
