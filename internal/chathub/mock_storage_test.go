package chathub_test

import (
	"anonpair/backend/internal/models"
	"anonpair/backend/internal/storage"
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockStorage is a testify mock of storage.Storage. Transaction hands the
// mock itself to the callback unless an error is configured for it.
type MockStorage struct {
	mock.Mock
}

var _ storage.Storage = (*MockStorage)(nil)

func (m *MockStorage) Transaction(ctx context.Context, fn func(tx storage.Storage) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m)
}

func (m *MockStorage) CreateQueueEntry(ctx context.Context, entry *models.QueueEntry) (bool, error) {
	args := m.Called(ctx, entry)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetQueueEntry(ctx context.Context, userID string) (*models.QueueEntry, error) {
	args := m.Called(ctx, userID)
	entry, _ := args.Get(0).(*models.QueueEntry)
	return entry, args.Error(1)
}

func (m *MockStorage) LockQueueEntry(ctx context.Context, userID string) (*models.QueueEntry, error) {
	args := m.Called(ctx, userID)
	entry, _ := args.Get(0).(*models.QueueEntry)
	return entry, args.Error(1)
}

func (m *MockStorage) LockAvailableEntries(ctx context.Context) ([]models.QueueEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]models.QueueEntry)
	return entries, args.Error(1)
}

func (m *MockStorage) CountAvailable(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) SetAvailability(ctx context.Context, userID string, available bool) (int64, error) {
	args := m.Called(ctx, userID, available)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) ClaimEntry(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) DeleteQueueEntry(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) ListQueue(ctx context.Context) ([]models.QueueEntry, error) {
	args := m.Called(ctx)
	entries, _ := args.Get(0).([]models.QueueEntry)
	return entries, args.Error(1)
}

func (m *MockStorage) SaveSession(ctx context.Context, session *models.ChatSession) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockStorage) GetSessionForUser(ctx context.Context, userID string) (*models.ChatSession, error) {
	args := m.Called(ctx, userID)
	session, _ := args.Get(0).(*models.ChatSession)
	return session, args.Error(1)
}

func (m *MockStorage) LockSessionForUser(ctx context.Context, userID string) (*models.ChatSession, error) {
	args := m.Called(ctx, userID)
	session, _ := args.Get(0).(*models.ChatSession)
	return session, args.Error(1)
}

func (m *MockStorage) GetSessionByID(ctx context.Context, chatID string) (*models.ChatSession, error) {
	args := m.Called(ctx, chatID)
	session, _ := args.Get(0).(*models.ChatSession)
	return session, args.Error(1)
}

func (m *MockStorage) DeleteSession(ctx context.Context, chatID string) (int64, error) {
	args := m.Called(ctx, chatID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) ListSessions(ctx context.Context) ([]models.ChatSession, error) {
	args := m.Called(ctx)
	sessions, _ := args.Get(0).([]models.ChatSession)
	return sessions, args.Error(1)
}

func (m *MockStorage) SaveMessage(ctx context.Context, msg *models.ChatHistory) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockStorage) GetRecentMessages(ctx context.Context, chatID string, limit int) ([]models.ChatHistory, error) {
	args := m.Called(ctx, chatID, limit)
	history, _ := args.Get(0).([]models.ChatHistory)
	return history, args.Error(1)
}

func (m *MockStorage) DeleteMessages(ctx context.Context, chatID string) error {
	args := m.Called(ctx, chatID)
	return args.Error(0)
}

func (m *MockStorage) SaveUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockStorage) GetUsersByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	args := m.Called(ctx, ids)
	users, _ := args.Get(0).([]models.User)
	return users, args.Error(1)
}

func (m *MockStorage) GetRelationship(ctx context.Context, viewerID, otherID string) (models.RelationshipStatus, error) {
	args := m.Called(ctx, viewerID, otherID)
	return args.Get(0).(models.RelationshipStatus), args.Error(1)
}

func (m *MockStorage) PublishEvent(ctx context.Context, userID string, event models.QueueEvent) error {
	args := m.Called(ctx, userID, event)
	return args.Error(0)
}

func (m *MockStorage) SubscribeUser(ctx context.Context, userID string) *redis.PubSub {
	args := m.Called(ctx, userID)
	pubsub, _ := args.Get(0).(*redis.PubSub)
	return pubsub
}

func (m *MockStorage) IsUserBanned(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) BanUser(ctx context.Context, userID string, ttl time.Duration) error {
	args := m.Called(ctx, userID, ttl)
	return args.Error(0)
}

func (m *MockStorage) UnbanUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
