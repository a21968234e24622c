package chathub_test

import (
	"anonpair/backend/internal/chathub"
	"anonpair/backend/internal/models"
	"anonpair/backend/internal/storage"
	"anonpair/backend/internal/storage/storagetest"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

// harness wires the real services to SQLite and miniredis.
type harness struct {
	store   *storage.Service
	redis   *miniredis.Miniredis
	hub     *chathub.ManagerService
	matcher *chathub.MatcherService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, mr := storagetest.New(t)

	clock := fakeClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
	hub := chathub.NewManagerService(store, 100)
	hub.Now = clock
	matcher := chathub.NewMatcherService(store, 10*time.Millisecond)
	matcher.Now = clock

	return &harness{store: store, redis: mr, hub: hub, matcher: matcher}
}

// fakeClock returns strictly increasing times so arrival order is deterministic.
func fakeClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		now = now.Add(time.Second)
		return now
	}
}

func (h *harness) register(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, h.hub.RegisterUser(context.Background(), &models.User{ID: id, Username: "anon-" + id}))
	}
}

func (h *harness) join(t *testing.T, ids ...string) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, h.hub.Join(context.Background(), id))
	}
}

func (h *harness) tick(t *testing.T) *chathub.TickResult {
	t.Helper()
	result, err := h.matcher.Tick(context.Background())
	require.NoError(t, err)
	return result
}

func (h *harness) status(t *testing.T, id string) *chathub.Status {
	t.Helper()
	st, err := h.hub.ResolveStatus(context.Background(), id)
	require.NoError(t, err)
	return st
}

// matched joins and pairs two users and returns their chat id.
func (h *harness) matched(t *testing.T, a, b string) string {
	t.Helper()
	h.register(t, a, b)
	h.join(t, a, b)
	result := h.tick(t)
	require.Len(t, result.Sessions, 1)
	return result.Sessions[0].ChatID
}
