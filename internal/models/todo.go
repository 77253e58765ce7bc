package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

type Todo struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	IsComplete  bool       `json:"is_complete" gorm:"not null;default:false"`
	DueDate     *Date      `json:"due_date"`
	CategoryID  *uuid.UUID `json:"category_id" gorm:"type:uuid;index"`

	// Category is nil when the todo is uncategorized, including after its
	// category has been deleted out from under it.
	Category *Category `json:"category"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (t *Todo) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		t.ID = id
	}
	return nil
}

func (t *Todo) OwnerID() uuid.UUID {
	return t.UserID
}
