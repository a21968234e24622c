package storage

import (
	"anonpair/backend/internal/models"
	"context"
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrMemberInSession is returned by SaveSession when either member already
// belongs to a session, in either slot.
var ErrMemberInSession = errors.New("user already belongs to a chat session")

// SaveSession inserts a new chat session. The per-column unique indexes do
// not cover a user moving between slots, so both columns are checked first.
func (s *Service) SaveSession(ctx context.Context, session *models.ChatSession) error {
	members := []string{session.UserAID, session.UserBID}
	var taken int64
	err := s.DB.WithContext(ctx).Model(&models.ChatSession{}).
		Where("user_a_id IN ? OR user_b_id IN ?", members, members).
		Count(&taken).Error
	if err != nil {
		return fmt.Errorf("check session members: %w", err)
	}
	if taken > 0 {
		return fmt.Errorf("save session %s: %w", session.ChatID, ErrMemberInSession)
	}

	if err := s.DB.WithContext(ctx).Create(session).Error; err != nil {
		log.Printf("ERROR: Failed to save session %s: %v", session.ChatID, err)
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// GetSessionForUser finds the active session the user belongs to, or nil.
func (s *Service) GetSessionForUser(ctx context.Context, userID string) (*models.ChatSession, error) {
	return findSessionForUser(s.DB.WithContext(ctx), userID)
}

// LockSessionForUser is GetSessionForUser with a row lock held until the
// transaction ends. Teardown paths take this lock before any queue row.
func (s *Service) LockSessionForUser(ctx context.Context, userID string) (*models.ChatSession, error) {
	return findSessionForUser(s.DB.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), userID)
}

func findSessionForUser(db *gorm.DB, userID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := db.Where("user_a_id = ? OR user_b_id = ?", userID, userID).Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find session for %s: %w", userID, err)
	}
	return &session, nil
}

// GetSessionByID returns the session with chatID, or nil.
func (s *Service) GetSessionByID(ctx context.Context, chatID string) (*models.ChatSession, error) {
	var session models.ChatSession
	err := s.DB.WithContext(ctx).Where("chat_id = ?", chatID).Take(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", chatID, err)
	}
	return &session, nil
}

// DeleteSession removes the session row. Messages must be purged first.
func (s *Service) DeleteSession(ctx context.Context, chatID string) (int64, error) {
	result := s.DB.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&models.ChatSession{})
	if result.Error != nil {
		return 0, fmt.Errorf("delete session %s: %w", chatID, result.Error)
	}
	return result.RowsAffected, nil
}

// ListSessions returns every active session, oldest first.
func (s *Service) ListSessions(ctx context.Context) ([]models.ChatSession, error) {
	var sessions []models.ChatSession
	if err := s.DB.WithContext(ctx).Order("created_at ASC").Find(&sessions).Error; err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return sessions, nil
}
