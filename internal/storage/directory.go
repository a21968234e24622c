package storage

import (
	"anonpair/backend/internal/models"
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// SaveUser stores a directory user.
func (s *Service) SaveUser(ctx context.Context, user *models.User) error {
	return s.DB.WithContext(ctx).Save(user).Error
}

// GetUsersByIDs loads the directory rows that exist for ids. Missing ids are
// simply absent from the result.
func (s *Service) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	var users []models.User
	if len(ids) == 0 {
		return users, nil
	}
	if err := s.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	return users, nil
}

// GetRelationship reads the friend graph edge between two users, in either direction.
func (s *Service) GetRelationship(ctx context.Context, viewerID, otherID string) (models.RelationshipStatus, error) {
	var edge models.Friendship
	err := s.DB.WithContext(ctx).
		Where("(requester_id = ? AND addressee_id = ?) OR (requester_id = ? AND addressee_id = ?)",
			viewerID, otherID, otherID, viewerID).
		Order("accepted DESC").
		Take(&edge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.RelationshipNone, nil
	}
	if err != nil {
		return models.RelationshipNone, fmt.Errorf("get relationship: %w", err)
	}
	return edge.RelationshipFrom(viewerID), nil
}
