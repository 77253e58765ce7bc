package services

import (
	"errors"

	"todo-manager/internal/models"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name  string
	Color string
}

// CategoryPatch applies a partial update to a category.
type CategoryPatch struct {
	Name  *string
	Color *string
}

type CategoryService interface {
	List(db *gorm.DB, userID uuid.UUID) ([]models.Category, error)
	Create(db *gorm.DB, user *models.User, input CategoryInput) (*models.Category, error)
	GetByID(db *gorm.DB, user *models.User, id uuid.UUID) (*models.Category, error)
	Update(db *gorm.DB, user *models.User, id uuid.UUID, patch CategoryPatch) (*models.Category, error)
	Delete(db *gorm.DB, user *models.User, id uuid.UUID) error
}

type CategoryServiceImpl struct{}

func NewCategoryService() *CategoryServiceImpl {
	return &CategoryServiceImpl{}
}

func (s *CategoryServiceImpl) List(db *gorm.DB, userID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := db.Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (s *CategoryServiceImpl) Create(db *gorm.DB, user *models.User, input CategoryInput) (*models.Category, error) {
	category := models.Category{
		UserID: user.ID,
		Name:   input.Name,
		Color:  input.Color,
	}
	if err := db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CategoryServiceImpl) GetByID(db *gorm.DB, user *models.User, id uuid.UUID) (*models.Category, error) {
	category, err := s.find(db, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(user, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *CategoryServiceImpl) Update(db *gorm.DB, user *models.User, id uuid.UUID, patch CategoryPatch) (*models.Category, error) {
	category, err := s.find(db, id)
	if err != nil {
		return nil, err
	}
	if err := authorize(user, category); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Name != nil {
		updates["name"] = *patch.Name
	}
	if patch.Color != nil {
		updates["color"] = *patch.Color
	}
	if len(updates) > 0 {
		if err := db.Model(category).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	return category, nil
}

// Delete removes a category and detaches its todos. Todos are never
// cascade-deleted; they fall back to uncategorized.
func (s *CategoryServiceImpl) Delete(db *gorm.DB, user *models.User, id uuid.UUID) error {
	category, err := s.find(db, id)
	if err != nil {
		return err
	}
	if err := authorize(user, category); err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Todo{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error
		if err != nil {
			return err
		}
		return tx.Delete(category).Error
	})
}

func (s *CategoryServiceImpl) find(db *gorm.DB, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}
