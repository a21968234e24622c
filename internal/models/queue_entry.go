package models

import (
	"time"

	"github.com/google/uuid"
)

// QueueEntry is a user's row in the matchmaking pool.
// Available is true while the user waits and false once they are paired.
type QueueEntry struct {
	PoolID    string    `gorm:"primaryKey" json:"pool_id"`
	UserID    string    `gorm:"not null;uniqueIndex" json:"user_id"`
	Available bool      `gorm:"not null;index" json:"available"`
	JoinedAt  time.Time `gorm:"not null;index" json:"joined_at"`
}

// NewQueueEntry returns an available entry for userID.
func NewQueueEntry(userID string, now time.Time) *QueueEntry {
	return &QueueEntry{
		PoolID:    uuid.New().String(),
		UserID:    userID,
		Available: true,
		JoinedAt:  now,
	}
}
