package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a row of the user directory. The queue only reads it to render
// participant summaries.
type User struct {
	ID          string    `gorm:"primaryKey" json:"id"` // anonymous UUID
	Username    string    `gorm:"uniqueIndex;not null" json:"username"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// BeforeCreate is a GORM hook that assigns a UUID when the ID is not set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}
