package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk/models"
)

func TestRoundRobinCyclesFairly(t *testing.T) {
	db := testDB(t)
	state := newMemoryState()
	router := NewRouterService(db, state)

	agents := make([]*models.Agent, 3)
	for i := range agents {
		agents[i] = seedAgent(t, db, 0, 5)
	}

	// Two full cycles: every agent selected exactly twice, no agent
	// twice before all three have gone once.
	counts := map[uint]int{}
	var order []uint
	for i := 0; i < 6; i++ {
		agent, err := router.SelectAgent(context.Background(), 0, PolicyRoundRobin)
		require.NoError(t, err)
		require.NotNil(t, agent)
		counts[agent.ID]++
		order = append(order, agent.ID)
	}

	for _, a := range agents {
		assert.Equal(t, 2, counts[a.ID])
	}

	firstCycle := map[uint]bool{}
	for _, id := range order[:3] {
		assert.False(t, firstCycle[id], "agent %d selected twice before full cycle", id)
		firstCycle[id] = true
	}
}

func TestRoundRobinWrapsWhenCursorIsLastAgent(t *testing.T) {
	db := testDB(t)
	state := newMemoryState()
	router := NewRouterService(db, state)

	a1 := seedAgent(t, db, 0, 5)
	a2 := seedAgent(t, db, 0, 5)

	require.NoError(t, state.SetLastAgent(context.Background(), 0, a2.ID))

	agent, err := router.SelectAgent(context.Background(), 0, PolicyRoundRobin)
	require.NoError(t, err)
	require.NotNil(t, agent)
	assert.Equal(t, a1.ID, agent.ID)
}

func TestRoundRobinSkipsOfflineCursorAgent(t *testing.T) {
	db := testDB(t)
	state := newMemoryState()
	router := NewRouterService(db, state)

	a1 := seedAgent(t, db, 0, 5)
	a2 := seedAgent(t, db, 0, 5)
	a3 := seedAgent(t, db, 0, 5)

	require.NoError(t, state.SetLastAgent(context.Background(), 0, a1.ID))
	require.NoError(t, db.Model(a2).Update("is_online", false).Error)

	agent, err := router.SelectAgent(context.Background(), 0, PolicyRoundRobin)
	require.NoError(t, err)
	require.NotNil(t, agent)
	assert.Equal(t, a3.ID, agent.ID)
}

func TestLeastBusyPicksFewestOpenLowestID(t *testing.T) {
	db := testDB(t)
	router := NewRouterService(db, newMemoryState())

	// Open counts 3, 1, 4, 1: the tie at 1 goes to the lower id.
	openCounts := []int{3, 1, 4, 1}
	agents := make([]*models.Agent, len(openCounts))
	for i, n := range openCounts {
		agents[i] = seedAgent(t, db, 0, 10)
		for j := 0; j < n; j++ {
			seedConversation(t, db, agents[i].ID, models.ConversationOpen)
		}
	}

	agent, err := router.SelectAgent(context.Background(), 0, PolicyLeastBusy)
	require.NoError(t, err)
	require.NotNil(t, agent)
	assert.Equal(t, agents[1].ID, agent.ID)
}

func TestLeastBusyIgnoresClosedConversations(t *testing.T) {
	db := testDB(t)
	router := NewRouterService(db, newMemoryState())

	a1 := seedAgent(t, db, 0, 10)
	a2 := seedAgent(t, db, 0, 10)

	seedConversation(t, db, a1.ID, models.ConversationOpen)
	for i := 0; i < 5; i++ {
		seedConversation(t, db, a2.ID, models.ConversationResolved)
	}

	agent, err := router.SelectAgent(context.Background(), 0, PolicyLeastBusy)
	require.NoError(t, err)
	require.NotNil(t, agent)
	assert.Equal(t, a2.ID, agent.ID)
}

func TestSelectExcludesAgentsAtCapacity(t *testing.T) {
	db := testDB(t)
	router := NewRouterService(db, newMemoryState())

	full := seedAgent(t, db, 0, 2)
	free := seedAgent(t, db, 0, 2)
	seedConversation(t, db, full.ID, models.ConversationOpen)
	seedConversation(t, db, full.ID, models.ConversationOpen)

	for i := 0; i < 3; i++ {
		agent, err := router.SelectAgent(context.Background(), 0, PolicyLeastBusy)
		require.NoError(t, err)
		require.NotNil(t, agent)
		assert.Equal(t, free.ID, agent.ID)
	}
}

func TestSelectFiltersByDepartment(t *testing.T) {
	db := testDB(t)
	router := NewRouterService(db, newMemoryState())

	dept := models.Department{Name: "Billing"}
	require.NoError(t, db.Create(&dept).Error)
	other := models.Department{Name: "Sales"}
	require.NoError(t, db.Create(&other).Error)

	seedAgent(t, db, other.ID, 5)
	inDept := seedAgent(t, db, dept.ID, 5)

	agent, err := router.SelectAgent(context.Background(), dept.ID, PolicyLeastBusy)
	require.NoError(t, err)
	require.NotNil(t, agent)
	assert.Equal(t, inDept.ID, agent.ID)
}

func TestSelectReturnsNilWhenNoneEligible(t *testing.T) {
	db := testDB(t)
	router := NewRouterService(db, newMemoryState())

	offline := seedAgent(t, db, 0, 5)
	require.NoError(t, db.Model(offline).Update("is_online", false).Error)

	agent, err := router.SelectAgent(context.Background(), 0, PolicyLeastBusy)
	require.NoError(t, err)
	assert.Nil(t, agent)

	agent, err = router.SelectAgent(context.Background(), 0, PolicyRoundRobin)
	require.NoError(t, err)
	assert.Nil(t, agent)
}

func TestSelectUnknownPolicy(t *testing.T) {
	db := testDB(t)
	router := NewRouterService(db, newMemoryState())

	_, err := router.SelectAgent(context.Background(), 0, Policy("random"))
	assert.ErrorIs(t, err, ErrUnknownPolicy)
}
