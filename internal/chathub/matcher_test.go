package chathub_test

import (
	"anonpair/backend/internal/apperr"
	"anonpair/backend/internal/chathub"
	"anonpair/backend/internal/models"
	"anonpair/backend/internal/storage"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTick_ScenarioA_TwoUsersShareOneChat(t *testing.T) {
	h := newHarness(t)
	h.register(t, "user_1", "user_2")
	h.join(t, "user_1", "user_2")

	result := h.tick(t)

	require.Len(t, result.Sessions, 1)
	s1 := h.status(t, "user_1")
	s2 := h.status(t, "user_2")
	assert.Equal(t, chathub.StateMatched, s1.State)
	assert.Equal(t, chathub.StateMatched, s2.State)
	assert.Equal(t, result.Sessions[0].ChatID, s1.ChatID)
	assert.Equal(t, s1.ChatID, s2.ChatID)

	require.Len(t, s1.Participants, 2)
	assert.True(t, s1.Participants[0].IsSelf)
	assert.Equal(t, "user_2", s1.Participants[1].UserID)
	assert.Equal(t, models.RelationshipNone, s1.Participants[1].Relationship)
}

func TestTick_ScenarioB_OddUserKeepsWaiting(t *testing.T) {
	h := newHarness(t)
	h.join(t, "user_1", "user_2", "user_3")

	result := h.tick(t)

	require.Len(t, result.Sessions, 1)
	assert.Equal(t, 1, result.Waiting)
	assert.Equal(t, chathub.StateMatched, h.status(t, "user_1").State)
	assert.Equal(t, chathub.StateMatched, h.status(t, "user_2").State)

	waiting := h.status(t, "user_3")
	assert.Equal(t, chathub.StateWaiting, waiting.State)
	assert.EqualValues(t, 1, waiting.QueueSize)
}

func TestTick_PairsEveryUserExactlyOnce(t *testing.T) {
	h := newHarness(t)
	const n = 7
	for i := 0; i < n; i++ {
		h.join(t, fmt.Sprintf("user_%d", i))
	}

	h.tick(t)
	again := h.tick(t)
	assert.Empty(t, again.Sessions, "the leftover user cannot pair with itself")

	sessions, err := h.store.ListSessions(context.Background())
	require.NoError(t, err)
	assert.Len(t, sessions, n/2)

	seen := map[string]bool{}
	for _, s := range sessions {
		assert.NotEqual(t, s.UserAID, s.UserBID)
		for _, id := range []string{s.UserAID, s.UserBID} {
			assert.False(t, seen[id], "%s is in two sessions", id)
			seen[id] = true
		}
	}

	count, err := h.store.CountAvailable(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, n%2, count)
}

func TestTick_RollsBackWholeBatch(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.join(t, "user_1", "user_2", "user_3", "user_4")
	// A stale row holds user_4 in the first slot; the second pair would put
	// user_4 in the second slot, which no single-column index catches.
	require.NoError(t, h.store.DB.Create(&models.ChatSession{ChatID: "stale", UserAID: "user_4", UserBID: "ghost", CreatedAt: time.Now()}).Error)

	_, err := h.matcher.Tick(ctx)

	require.Error(t, err)
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
	assert.ErrorIs(t, err, storage.ErrMemberInSession)
	for _, id := range []string{"user_1", "user_2", "user_3", "user_4"} {
		assert.Equal(t, chathub.StateWaiting, h.status(t, id).State, id)
	}
	sessions, err := h.store.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 1, "only the stale row remains")
	assert.EqualValues(t, 1, h.matcher.Stats().Failures)
}

func TestTick_PublishesMatchedAfterCommit(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, err := h.hub.Subscribe(ctx, "user_1")
	require.NoError(t, err)
	h.join(t, "user_1", "user_2")

	result := h.tick(t)

	select {
	case ev := <-events:
		assert.Equal(t, models.EventMatched, ev.Type)
		assert.Equal(t, result.Sessions[0].ChatID, ev.ChatID)
	case <-time.After(2 * time.Second):
		t.Fatal("matched event not delivered")
	}
}

func TestMatcher_LoopPairsInBackground(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.matcher.Start(context.Background()))
	assert.ErrorIs(t, h.matcher.Start(context.Background()), chathub.ErrMatcherRunning)

	h.join(t, "user_1", "user_2")

	assert.Eventually(t, func() bool {
		st, err := h.hub.ResolveStatus(context.Background(), "user_1")
		return err == nil && st.State == chathub.StateMatched
	}, 2*time.Second, 10*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, h.matcher.Stop(stopCtx))
	assert.ErrorIs(t, h.matcher.Stop(stopCtx), chathub.ErrMatcherNotRunning)
}

func TestMatcher_LoopSurvivesFailingTicks(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("Transaction", mock.Anything).Return(errors.New("connection refused"))
	matcher := chathub.NewMatcherService(storageMock, 5*time.Millisecond)

	require.NoError(t, matcher.Start(context.Background()))
	assert.Eventually(t, func() bool {
		return matcher.Stats().Failures >= 3
	}, 2*time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, matcher.Stop(stopCtx))
	storageMock.AssertNotCalled(t, "SaveSession", mock.Anything, mock.Anything)
}

func TestMatcher_LoopSurvivesPanickingTick(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("Transaction", mock.Anything).Return(nil)
	storageMock.On("LockAvailableEntries", mock.Anything).
		Run(func(mock.Arguments) { panic("driver bug") }).
		Return(nil, nil)
	matcher := chathub.NewMatcherService(storageMock, 5*time.Millisecond)

	require.NoError(t, matcher.Start(context.Background()))
	assert.Eventually(t, func() bool {
		return matcher.Stats().Failures >= 2
	}, 2*time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, matcher.Stop(stopCtx))
}

func TestTick_StorageErrorIsClassified(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("Transaction", mock.Anything).Return(nil)
	storageMock.On("LockAvailableEntries", mock.Anything).Return(nil, errors.New("deadlock detected"))
	matcher := chathub.NewMatcherService(storageMock, time.Second)

	result, err := matcher.Tick(context.Background())

	assert.Nil(t, result)
	assert.Equal(t, apperr.CodeStorage, apperr.CodeOf(err))
	storageMock.AssertNotCalled(t, "PublishEvent", mock.Anything, mock.Anything, mock.Anything)
}
