package client

import (
	"context"
	"net/http"
	"sync"

	"todo-manager/internal/models"

	"github.com/gofrs/uuid"
)

type CategoryCreate struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type CategoryUpdate struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

// CategoryStore caches the category collection with per-item tracking for
// deletes and updates, like TodoStore without the toggle set.
type CategoryStore struct {
	client *Client

	mu         sync.RWMutex
	categories []models.Category
	loading    bool
	err        string
	deleting   map[uuid.UUID]struct{}
	updating   map[uuid.UUID]struct{}
}

func NewCategoryStore(c *Client) *CategoryStore {
	return &CategoryStore{
		client:   c,
		deleting: make(map[uuid.UUID]struct{}),
		updating: make(map[uuid.UUID]struct{}),
	}
}

func (s *CategoryStore) Fetch(ctx context.Context) error {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	var categories []models.Category
	err := s.client.do(ctx, http.MethodGet, "/api/categories", nil, nil, &categories)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = errMessage(err, "Failed to fetch categories")
		return err
	}
	s.categories = categories
	return nil
}

func (s *CategoryStore) Add(ctx context.Context, input CategoryCreate) (*models.Category, error) {
	s.mu.Lock()
	s.loading = true
	s.err = ""
	s.mu.Unlock()

	var category models.Category
	err := s.client.do(ctx, http.MethodPost, "/api/categories", nil, input, &category)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.err = errMessage(err, "Failed to add category")
		return nil, err
	}
	s.categories = append([]models.Category{category}, s.categories...)
	return &category, nil
}

func (s *CategoryStore) Update(ctx context.Context, id uuid.UUID, update CategoryUpdate) error {
	s.mu.Lock()
	s.updating[id] = struct{}{}
	s.err = ""
	s.mu.Unlock()

	var updated models.Category
	err := s.client.do(ctx, http.MethodPut, "/api/categories/"+id.String(), nil, update, &updated)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.updating, id)
	if err != nil {
		s.err = errMessage(err, "Failed to update category")
		return err
	}
	for i := range s.categories {
		if s.categories[i].ID == updated.ID {
			s.categories[i] = updated
			break
		}
	}
	return nil
}

func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	s.deleting[id] = struct{}{}
	s.err = ""
	s.mu.Unlock()

	err := s.client.do(ctx, http.MethodDelete, "/api/categories/"+id.String(), nil, nil, nil)

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.deleting, id)
	if err != nil {
		s.err = errMessage(err, "Failed to delete category")
		return err
	}
	kept := s.categories[:0]
	for _, c := range s.categories {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.categories = kept
	return nil
}

func (s *CategoryStore) Categories() []models.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Category, len(s.categories))
	copy(out, s.categories)
	return out
}

func (s *CategoryStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *CategoryStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

func (s *CategoryStore) IsDeleting(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.deleting[id]
	return ok
}

func (s *CategoryStore) IsUpdating(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.updating[id]
	return ok
}
