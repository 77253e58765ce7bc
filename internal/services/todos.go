package services

import (
	"errors"
	"strings"

	"todo-manager/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

const (
	SortByCreatedAt = "created_at"
	SortByDueDate   = "due_date"
	SortByTitle     = "title"

	SortAsc  = "asc"
	SortDesc = "desc"
)

// TodoFilter narrows and orders a user's todo listing. Nil fields are
// inactive; active filters combine as a logical AND.
type TodoFilter struct {
	Search     *string
	CategoryID *uuid.UUID
	IsComplete *bool
	SortBy     string
	SortOrder  string
}

// TodoInput carries the writable fields of a new todo. The owner is never
// part of the input; it is always the authenticated user.
type TodoInput struct {
	Title       string
	Description string
	IsComplete  bool
	CategoryID  *uuid.UUID
	DueDate     *models.Date
}

// TodoPatch applies a partial update: only fields flagged as present are
// written, so an omitted field is distinguishable from one set to null.
type TodoPatch struct {
	Title          *string
	Description    *string
	DescriptionSet bool
	IsComplete     *bool
	CategoryID     *uuid.UUID
	CategorySet    bool
	DueDate        *models.Date
	DueDateSet     bool
}

type TodoService interface {
	List(db *gorm.DB, userID uuid.UUID, filter TodoFilter) ([]models.Todo, error)
	Create(db *gorm.DB, user *models.User, input TodoInput) (*models.Todo, error)
	GetByID(db *gorm.DB, user *models.User, id uuid.UUID) (*models.Todo, error)
	Update(db *gorm.DB, user *models.User, id uuid.UUID, patch TodoPatch) (*models.Todo, error)
	Delete(db *gorm.DB, user *models.User, id uuid.UUID) error
}

type TodoServiceImpl struct{}

func NewTodoService() *TodoServiceImpl {
	return &TodoServiceImpl{}
}

// List composes the filtered, sorted listing. Predicates apply in a fixed
// order: ownership first, then search, category, completion, then ordering.
func (s *TodoServiceImpl) List(db *gorm.DB, userID uuid.UUID, filter TodoFilter) ([]models.Todo, error) {
	query := db.Model(&models.Todo{}).
		Preload("Category").
		Where("user_id = ?", userID)

	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + strings.ToLower(*filter.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.IsComplete != nil {
		query = query.Where("is_complete = ?", *filter.IsComplete)
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = SortByCreatedAt
	}
	sortOrder := filter.SortOrder
	if sortOrder == "" {
		sortOrder = SortDesc
	}
	switch sortBy {
	case SortByCreatedAt, SortByTitle:
		query = query.Order(sortBy + " " + sortOrder)
	case SortByDueDate:
		// Undated todos sort after dated ones in both directions.
		query = query.Order("due_date IS NULL, due_date " + sortOrder)
	default:
		return nil, models.NewValidationError("sort_by", "must be one of: created_at, due_date, title")
	}

	var todos []models.Todo
	if err := query.Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

func (s *TodoServiceImpl) Create(db *gorm.DB, user *models.User, input TodoInput) (*models.Todo, error) {
	if input.CategoryID != nil {
		if err := validateCategoryOwnership(db, user, *input.CategoryID); err != nil {
			return nil, err
		}
	}

	todo := models.Todo{
		UserID:      user.ID,
		Title:       input.Title,
		Description: input.Description,
		IsComplete:  input.IsComplete,
		CategoryID:  input.CategoryID,
		DueDate:     input.DueDate,
	}
	if err := db.Create(&todo).Error; err != nil {
		return nil, err
	}
	return s.reload(db, todo.ID)
}

func (s *TodoServiceImpl) GetByID(db *gorm.DB, user *models.User, id uuid.UUID) (*models.Todo, error) {
	todo, err := s.find(db, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(user, todo); err != nil {
		return nil, err
	}
	return todo, nil
}

func (s *TodoServiceImpl) Update(db *gorm.DB, user *models.User, id uuid.UUID, patch TodoPatch) (*models.Todo, error) {
	todo, err := s.find(db, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(user, todo); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.DescriptionSet {
		desc := ""
		if patch.Description != nil {
			desc = *patch.Description
		}
		updates["description"] = desc
	}
	if patch.IsComplete != nil {
		updates["is_complete"] = *patch.IsComplete
	}
	if patch.CategorySet {
		if patch.CategoryID != nil {
			if err := validateCategoryOwnership(db, user, *patch.CategoryID); err != nil {
				return nil, err
			}
		}
		updates["category_id"] = patch.CategoryID
	}
	if patch.DueDateSet {
		updates["due_date"] = patch.DueDate
	}

	if len(updates) > 0 {
		if err := db.Model(todo).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return s.reload(db, todo.ID)
}

func (s *TodoServiceImpl) Delete(db *gorm.DB, user *models.User, id uuid.UUID) error {
	todo, err := s.find(db, id)
	if err != nil {
		return err
	}
	if err := authorize(user, todo); err != nil {
		return err
	}
	return db.Delete(todo).Error
}

func (s *TodoServiceImpl) find(db *gorm.DB, id uuid.UUID) (*models.Todo, error) {
	var todo models.Todo
	if err := db.First(&todo, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &todo, nil
}

func (s *TodoServiceImpl) reload(db *gorm.DB, id uuid.UUID) (*models.Todo, error) {
	var todo models.Todo
	if err := db.Preload("Category").First(&todo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

// validateCategoryOwnership ties a referenced category to the writing user.
// The check runs at validation time: a missing category and another user's
// category fail the same way.
func validateCategoryOwnership(db *gorm.DB, user *models.User, categoryID uuid.UUID) error {
	var count int64
	err := db.Model(&models.Category{}).
		Where("id = ? AND user_id = ?", categoryID, user.ID).
		Count(&count).Error
	if err != nil {
		return err
	}
	if count == 0 {
		return models.NewValidationError("category_id", "the selected category is invalid")
	}
	return nil
}
