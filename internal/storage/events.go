package storage

import (
	"anonpair/backend/internal/config"
	"anonpair/backend/internal/models"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// UserChannel is the Redis pub/sub channel carrying one user's queue events.
func UserChannel(userID string) string {
	return config.UserEventChannelPrefix + userID
}

// PublishEvent publishes a queue event to the user's channel.
func (s *Service) PublishEvent(ctx context.Context, userID string, event models.QueueEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := s.Redis.Publish(ctx, UserChannel(userID), payload).Err(); err != nil {
		return fmt.Errorf("publish %s event to %s: %w", event.Type, userID, err)
	}
	return nil
}

// SubscribeUser subscribes to the user's event channel. The caller closes the PubSub.
func (s *Service) SubscribeUser(ctx context.Context, userID string) *redis.PubSub {
	return s.Redis.Subscribe(ctx, UserChannel(userID))
}

// IsUserBanned checks the ban key in Redis
func (s *Service) IsUserBanned(ctx context.Context, userID string) (bool, error) {
	status, err := s.Redis.Get(ctx, config.BanKeyPrefix+userID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return status != "", nil
}

// BanUser sets the ban key. A zero ttl bans until UnbanUser is called.
func (s *Service) BanUser(ctx context.Context, userID string, ttl time.Duration) error {
	return s.Redis.Set(ctx, config.BanKeyPrefix+userID, "active", ttl).Err()
}

// UnbanUser removes the ban key.
func (s *Service) UnbanUser(ctx context.Context, userID string) error {
	return s.Redis.Del(ctx, config.BanKeyPrefix+userID).Err()
}
