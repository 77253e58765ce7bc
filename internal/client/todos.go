package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"todo-manager/internal/models"

	"github.com/gofrs/uuid"
)

// TodoListParams mirrors the listing query filters.
type TodoListParams struct {
	Search     string
	CategoryID *uuid.UUID
	IsComplete *bool
	SortBy     string
	SortOrder  string
}

func (p TodoListParams) values() url.Values {
	query := url.Values{}
	if p.Search != "" {
		query.Set("search", p.Search)
	}
	if p.CategoryID != nil {
		query.Set("category_id", p.CategoryID.String())
	}
	if p.IsComplete != nil {
		query.Set("is_complete", strconv.FormatBool(*p.IsComplete))
	}
	if p.SortBy != "" {
		query.Set("sort_by", p.SortBy)
	}
	if p.SortOrder != "" {
		query.Set("sort_order", p.SortOrder)
	}
	return query
}

// TodoCreate carries the fields of a new todo.
type TodoCreate struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	CategoryID  *uuid.UUID   `json:"category_id,omitempty"`
	DueDate     *models.Date `json:"due_date,omitempty"`
}

// TodoUpdate carries a partial update. Nil fields are omitted; the Clear
// flags send explicit nulls so the server empties those fields.
type TodoUpdate struct {
	Title         *string
	Description   *string
	IsComplete    *bool
	CategoryID    *uuid.UUID
	DueDate       *models.Date
	ClearCategory bool
	ClearDueDate  bool
}

func (u TodoUpdate) payload() map[string]interface{} {
	body := map[string]interface{}{}
	if u.Title != nil {
		body["title"] = *u.Title
	}
	if u.Description != nil {
		body["description"] = *u.Description
	}
	if u.IsComplete != nil {
		body["is_complete"] = *u.IsComplete
	}
	if u.CategoryID != nil {
		body["category_id"] = u.CategoryID.String()
	} else if u.ClearCategory {
		body["category_id"] = nil
	}
	if u.DueDate != nil {
		body["due_date"] = u.DueDate.String()
	} else if u.ClearDueDate {
		body["due_date"] = nil
	}
	return body
}

// TodoStore caches the todo collection. Each mutation touches the cache only
// after the server confirms it; failures leave the cache as-is and set Err.
type TodoStore struct {
	client *Client

	mu       sync.RWMutex
	todos    []models.Todo
	loading  bool
	err      string
	toggling map[uuid.UUID]struct{}
	deleting map[uuid.UUID]struct{}
	updating map[uuid.UUID]struct{}
}

func NewTodoStore(c *Client) *TodoStore {
	return &TodoStore{
		client:   c,
		toggling: make(map[uuid.UUID]struct{}),
		deleting: make(map[uuid.UUID]struct{}),
		updating: make(map[uuid.UUID]struct{}),
	}
}

func (s *TodoStore) Fetch(ctx context.Context, params TodoListParams) error {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	var todos []models.Todo
	err := s.client.do(ctx, http.MethodGet, "/api/todos", params.values(), nil, &todos)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = errMessage(err, "Failed to fetch todos")
		return err
	}
	s.todos = todos
	return nil
}

func (s *TodoStore) Add(ctx context.Context, input TodoCreate) (*models.Todo, error) {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	var todo models.Todo
	err := s.client.do(ctx, http.MethodPost, "/api/todos", nil, input, &todo)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = errMessage(err, "Failed to add todo")
		return nil, err
	}
	s.todos = append([]models.Todo{todo}, s.todos...)
	return &todo, nil
}

// Toggle flips a todo's completion flag. Concurrent toggles of different
// todos are tracked independently.
func (s *TodoStore) Toggle(ctx context.Context, todo models.Todo) error {
	s.mu.Lock()
	s.toggling[todo.ID] = struct{}{}
	s.err = ""
	s.mu.Unlock()

	flipped := !todo.IsComplete
	var updated models.Todo
	err := s.client.do(ctx, http.MethodPut, "/api/todos/"+todo.ID.String(), nil,
		map[string]interface{}{"is_complete": flipped}, &updated)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.toggling, todo.ID)
	if err != nil {
		s.err = errMessage(err, "Failed to update todo")
		return err
	}
	s.replace(updated)
	return nil
}

func (s *TodoStore) Update(ctx context.Context, id uuid.UUID, update TodoUpdate) error {
	s.mu.Lock()
	s.updating[id] = struct{}{}
	s.err = ""
	s.mu.Unlock()

	var updated models.Todo
	err := s.client.do(ctx, http.MethodPut, "/api/todos/"+id.String(), nil, update.payload(), &updated)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.updating, id)
	if err != nil {
		s.err = errMessage(err, "Failed to update todo")
		return err
	}
	s.replace(updated)
	return nil
}

func (s *TodoStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	s.deleting[id] = struct{}{}
	s.err = ""
	s.mu.Unlock()

	err := s.client.do(ctx, http.MethodDelete, "/api/todos/"+id.String(), nil, nil, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deleting, id)
	if err != nil {
		s.err = errMessage(err, "Failed to delete todo")
		return err
	}
	kept := s.todos[:0]
	for _, t := range s.todos {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	s.todos = kept
	return nil
}

// Todos returns a copy of the cached collection.
func (s *TodoStore) Todos() []models.Todo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Todo, len(s.todos))
	copy(out, s.todos)
	return out
}

func (s *TodoStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *TodoStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *TodoStore) IsToggling(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.toggling[id]
	return ok
}

func (s *TodoStore) IsDeleting(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.deleting[id]
	return ok
}

func (s *TodoStore) IsUpdating(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.updating[id]
	return ok
}

// replace swaps the cached row matching updated.ID. Callers hold s.mu.
func (s *TodoStore) replace(updated models.Todo) {
	for i := range s.todos {
		if s.todos[i].ID == updated.ID {
			s.todos[i] = updated
			return
		}
	}
}

func errMessage(err error, fallback string) string {
	if apiErr, ok := err.(*APIError); ok && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
