package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// Token is an opaque bearer credential. It carries no client-decodable
// structure; the server resolves it to a user by lookup. A user may hold any
// number of live tokens at once.
type Token struct {
	ID     uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID uuid.UUID `json:"user_id" gorm:"type:uuid;not null;index"`
	Token  string    `json:"-" gorm:"uniqueIndex;not null"`

	CreatedAt time.Time `json:"created_at"`

	User *User `json:"-"`
}

func (t *Token) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		id, err := uuid.NewV4()
		if err != nil {
			return err
		}
		t.ID = id
	}
	return nil
}
