// Package dto provides HTTP request/response data transfer objects and
// RFC 9457 Problem Details error responses for the inbound HTTP adapter layer.
package dto

import (
	"time"

	"github.com/jsamuelsen11/todo-api/internal/domain/todo"
)

// TodoResponse represents a single todo in HTTP responses. Status and
// category are serialized as their plain enumeration string values; due_date
// is a "2006-01-02" calendar date or null.
type TodoResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Status      string  `json:"status"`
	Category    string  `json:"category"`
	DueDate     *string `json:"due_date"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

// ToTodoResponse converts a domain Todo entity to an HTTP response DTO.
func ToTodoResponse(t *todo.Todo) TodoResponse {
	resp := TodoResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Status:      t.Status.String(),
		Category:    t.Category.String(),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		due := t.DueDate.String()
		resp.DueDate = &due
	}
	return resp
}

// PaginationResponse carries list paging metadata. Total always reflects the
// full matching-row count, even for a page past the end.
type PaginationResponse struct {
	CurrentPage int  `json:"current_page"`
	PerPage     int  `json:"per_page"`
	LastPage    int  `json:"last_page"`
	Total       int  `json:"total"`
	From        int  `json:"from"`
	To          int  `json:"to"`
	HasMore     bool `json:"has_more"`
}

// TodoListResponse represents one page of todos in HTTP responses.
type TodoListResponse struct {
	Todos      []TodoResponse     `json:"todos"`
	Pagination PaginationResponse `json:"pagination"`
}

// ToTodoListResponse converts a domain result page to an HTTP list response DTO.
func ToTodoListResponse(page *todo.Page) TodoListResponse {
	items := make([]TodoResponse, len(page.Items))
	for i := range page.Items {
		items[i] = ToTodoResponse(&page.Items[i])
	}
	return TodoListResponse{
		Todos: items,
		Pagination: PaginationResponse{
			CurrentPage: page.CurrentPage,
			PerPage:     page.PerPage,
			LastPage:    page.LastPage,
			Total:       page.Total,
			From:        page.From,
			To:          page.To,
			HasMore:     page.HasMore,
		},
	}
}
