package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk/models"
)

func TestSubmitRatingAttributesAssignedAgent(t *testing.T) {
	db := testDB(t)
	svc := NewRatingService(db)

	agent := seedAgent(t, db, 0, 5)
	conv := seedConversation(t, db, agent.ID, models.ConversationResolved)

	rating, err := svc.SubmitRating(conv.ID, 4, "quick and helpful")
	require.NoError(t, err)
	require.NotNil(t, rating.AgentID)
	assert.Equal(t, agent.ID, *rating.AgentID)
}

func TestSubmitRatingValidation(t *testing.T) {
	db := testDB(t)
	svc := NewRatingService(db)
	conv := seedConversation(t, db, 0, models.ConversationResolved)

	_, err := svc.SubmitRating(conv.ID, 0, "")
	assert.ErrorIs(t, err, ErrInvalidScore)
	_, err = svc.SubmitRating(conv.ID, 6, "")
	assert.ErrorIs(t, err, ErrInvalidScore)
	_, err = svc.SubmitRating(9999, 3, "")
	assert.ErrorIs(t, err, ErrConversationNotFound)

	_, err = svc.SubmitRating(conv.ID, 5, "first")
	require.NoError(t, err)
	_, err = svc.SubmitRating(conv.ID, 1, "changed my mind")
	assert.ErrorIs(t, err, ErrAlreadyRated)
}

func TestAgentAverage(t *testing.T) {
	db := testDB(t)
	svc := NewRatingService(db)
	agent := seedAgent(t, db, 0, 5)

	for _, score := range []int{5, 4, 3} {
		conv := seedConversation(t, db, agent.ID, models.ConversationResolved)
		_, err := svc.SubmitRating(conv.ID, score, "")
		require.NoError(t, err)
	}

	avg, count, err := svc.AgentAverage(agent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
	assert.InDelta(t, 4.0, avg, 0.001)

	// No ratings yields zero, not an error.
	other := seedAgent(t, db, 0, 5)
	avg, count, err = svc.AgentAverage(other.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)
	assert.Zero(t, avg)
}
