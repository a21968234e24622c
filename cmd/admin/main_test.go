package main

import (
	"anonpair/backend/internal/config"
	"anonpair/backend/internal/models"
	"anonpair/backend/internal/storage/storagetest"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	s, _ := storagetest.New(t)
	ctx := context.Background()
	cfg := &config.Config{MatchInterval: time.Second}
	for i, id := range []string{"user_1", "user_2"} {
		_, err := s.CreateQueueEntry(ctx, models.NewQueueEntry(id, time.Unix(int64(i), 0)))
		require.NoError(t, err)
	}

	require.NoError(t, run(ctx, s, cfg, "tick", nil))
	require.NoError(t, run(ctx, s, cfg, "sessions", nil))

	require.NoError(t, run(ctx, s, cfg, "kick", []string{"user_1"}))
	entry, err := s.GetQueueEntry(ctx, "user_2")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.True(t, entry.Available, "partner is requeued")
	require.NoError(t, run(ctx, s, cfg, "queue", nil))

	require.NoError(t, run(ctx, s, cfg, "ban", []string{"user_1", "2"}))
	banned, err := s.IsUserBanned(ctx, "user_1")
	require.NoError(t, err)
	assert.True(t, banned)
	require.NoError(t, run(ctx, s, cfg, "unban", []string{"user_1"}))
	banned, err = s.IsUserBanned(ctx, "user_1")
	require.NoError(t, err)
	assert.False(t, banned)
}

func TestRun_BadArguments(t *testing.T) {
	s, _ := storagetest.New(t)
	ctx := context.Background()
	cfg := &config.Config{}

	assert.Error(t, run(ctx, s, cfg, "ban", []string{"user_1", "soon"}))
	assert.Error(t, run(ctx, s, cfg, "kick", nil))
	assert.Error(t, run(ctx, s, cfg, "kick", []string{"nobody"}))
	assert.Error(t, run(ctx, s, cfg, "explode", nil))
}
