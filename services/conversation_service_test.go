package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk/events"
	"helpdesk/models"
)

func TestCreateConversationDefaultsAndEvent(t *testing.T) {
	db := testDB(t)
	bus := events.NewBus()
	svc := NewConversationService(db, bus)

	var published []events.Event
	bus.Subscribe(events.NewConversation, func(e events.Event) {
		published = append(published, e)
	})

	conv := models.Conversation{UserEmail: "new@example.com"}
	require.NoError(t, svc.CreateConversation(&conv))

	assert.Equal(t, models.ConversationOpen, conv.Status)
	assert.Equal(t, "chat", conv.Source)
	require.Len(t, published, 1)
	assert.Equal(t, conv.ID, published[0].ConversationID)
}

func TestCreateConversationRequiresVisitor(t *testing.T) {
	svc := NewConversationService(testDB(t), events.NewBus())
	err := svc.CreateConversation(&models.Conversation{Subject: "anonymous"})
	assert.ErrorIs(t, err, ErrVisitorRequired)
}

func TestUpdateStatusRejectsUnknownValues(t *testing.T) {
	db := testDB(t)
	svc := NewConversationService(db, events.NewBus())
	conv := seedConversation(t, db, 0, models.ConversationOpen)

	assert.ErrorIs(t, svc.UpdateStatus(conv.ID, "closed"), ErrInvalidStatus)
	require.NoError(t, svc.UpdateStatus(conv.ID, models.ConversationResolved))

	// Any known status may follow any other.
	require.NoError(t, svc.UpdateStatus(conv.ID, models.ConversationOpen))

	assert.ErrorIs(t, svc.UpdateStatus(9999, models.ConversationOpen), ErrConversationNotFound)
}

func TestListConversationsFiltersAndPaginates(t *testing.T) {
	db := testDB(t)
	svc := NewConversationService(db, events.NewBus())

	agent := seedAgent(t, db, 0, 5)
	for i := 0; i < 3; i++ {
		seedConversation(t, db, agent.ID, models.ConversationOpen)
	}
	seedConversation(t, db, 0, models.ConversationResolved)

	open, total, err := svc.ListConversations(ConversationFilter{Status: models.ConversationOpen})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, open, 3)

	paged, total, err := svc.ListConversations(ConversationFilter{Status: models.ConversationOpen, PerPage: 2, Page: 2})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, paged, 1)

	byAgent, _, err := svc.ListConversations(ConversationFilter{AgentID: agent.ID})
	require.NoError(t, err)
	assert.Len(t, byAgent, 3)
}

func TestListConversationsSearch(t *testing.T) {
	db := testDB(t)
	svc := NewConversationService(db, events.NewBus())

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	require.NoError(t, db.Model(conv).Update("subject", "Billing question").Error)
	seedConversation(t, db, 0, models.ConversationOpen)

	found, total, err := svc.ListConversations(ConversationFilter{Search: "billing"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, found, 1)
	assert.Equal(t, conv.ID, found[0].ID)
}

func TestDeleteConversationCascadesMessages(t *testing.T) {
	db := testDB(t)
	svc := NewConversationService(db, events.NewBus())

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	user := seedUser(t, db, "cascade@example.com")
	for i := 0; i < 2; i++ {
		require.NoError(t, db.Create(&models.Message{ConversationID: conv.ID, UserID: &user.ID, Content: "m"}).Error)
	}

	require.NoError(t, svc.DeleteConversation(conv.ID))

	var msgCount int64
	require.NoError(t, db.Model(&models.Message{}).Where("conversation_id = ?", conv.ID).Count(&msgCount).Error)
	assert.EqualValues(t, 0, msgCount)

	_, err := svc.GetConversation(conv.ID)
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestAssignAgentAndDepartment(t *testing.T) {
	db := testDB(t)
	svc := NewConversationService(db, events.NewBus())

	agent := seedAgent(t, db, 0, 5)
	dept := models.Department{Name: "Sales"}
	require.NoError(t, db.Create(&dept).Error)
	conv := seedConversation(t, db, 0, models.ConversationOpen)

	require.NoError(t, svc.AssignAgent(conv.ID, agent.ID))
	require.NoError(t, svc.AssignDepartment(conv.ID, dept.ID))

	got, err := svc.GetConversation(conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AgentID)
	require.NotNil(t, got.DepartmentID)
	assert.Equal(t, agent.ID, *got.AgentID)
	assert.Equal(t, dept.ID, *got.DepartmentID)
}
