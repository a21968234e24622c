package models_test

import (
	"anonpair/backend/internal/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPair_Rejects(t *testing.T) {
	tests := []struct {
		name          string
		first, second string
		wantErr       error
	}{
		{name: "both empty", wantErr: models.ErrIncompletePair},
		{name: "second empty", first: "user_A", wantErr: models.ErrIncompletePair},
		{name: "first empty", second: "user_B", wantErr: models.ErrIncompletePair},
		{name: "same user", first: "user_A", second: "user_A", wantErr: models.ErrSelfPair},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := models.NewPair(tt.first, tt.second)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestPair_MembersAndPartner(t *testing.T) {
	pair, err := models.NewPair("user_A", "user_B")
	require.NoError(t, err)

	assert.Equal(t, [2]string{"user_A", "user_B"}, pair.Members())
	assert.True(t, pair.Has("user_A"))
	assert.False(t, pair.Has("user_C"))
	assert.False(t, pair.Has(""))

	partner, ok := pair.Partner("user_B")
	assert.True(t, ok)
	assert.Equal(t, "user_A", partner)

	_, ok = pair.Partner("user_C")
	assert.False(t, ok)
}

func TestNewChatSession_CarriesBothMembers(t *testing.T) {
	pair, err := models.NewPair("user_A", "user_B")
	require.NoError(t, err)
	now := time.Now()

	session := models.NewChatSession(pair, now)

	assert.NotEmpty(t, session.ChatID)
	assert.Equal(t, "user_A", session.UserAID)
	assert.Equal(t, "user_B", session.UserBID)
	assert.Equal(t, now, session.CreatedAt)

	roundTrip, err := session.Pair()
	require.NoError(t, err)
	assert.Equal(t, pair, roundTrip)
}

func TestChatSession_PairRejectsHalfFormedRow(t *testing.T) {
	row := &models.ChatSession{ChatID: "c1", UserAID: "user_A"}

	_, err := row.Pair()

	assert.ErrorIs(t, err, models.ErrIncompletePair)
}
