package handler

import (
	"anonpair/backend/internal/chathub"
	"anonpair/backend/internal/models"
	"context"

	"github.com/stretchr/testify/mock"
)

type MockQueueService struct {
	mock.Mock
}

var _ QueueService = (*MockQueueService)(nil)

func (m *MockQueueService) Join(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockQueueService) ResolveStatus(ctx context.Context, userID string) (*chathub.Status, error) {
	args := m.Called(ctx, userID)
	status, _ := args.Get(0).(*chathub.Status)
	return status, args.Error(1)
}

func (m *MockQueueService) Send(ctx context.Context, chatID, userID, content string) (*models.ChatMessage, error) {
	args := m.Called(ctx, chatID, userID, content)
	msg, _ := args.Get(0).(*models.ChatMessage)
	return msg, args.Error(1)
}

func (m *MockQueueService) SkipToNext(ctx context.Context, chatID, callerID, otherUserID string) (*chathub.LeaveResult, error) {
	args := m.Called(ctx, chatID, callerID, otherUserID)
	result, _ := args.Get(0).(*chathub.LeaveResult)
	return result, args.Error(1)
}

func (m *MockQueueService) FullLeave(ctx context.Context, userID string) (*chathub.LeaveResult, error) {
	args := m.Called(ctx, userID)
	result, _ := args.Get(0).(*chathub.LeaveResult)
	return result, args.Error(1)
}

func (m *MockQueueService) Subscribe(ctx context.Context, userID string) (<-chan models.QueueEvent, error) {
	args := m.Called(ctx, userID)
	events, _ := args.Get(0).(<-chan models.QueueEvent)
	return events, args.Error(1)
}

func (m *MockQueueService) RegisterUser(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockQueueService) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
