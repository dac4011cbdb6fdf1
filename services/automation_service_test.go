package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk/models"
)

func createAutomation(t *testing.T, svc *AutomationService, trigger, conditions, actionType, actionData string) *models.Automation {
	t.Helper()
	a := &models.Automation{
		Name:        "rule",
		TriggerType: trigger,
		Conditions:  conditions,
		ActionType:  actionType,
		ActionData:  actionData,
	}
	require.NoError(t, svc.CreateAutomation(a))
	return a
}

func TestAutomationValidation(t *testing.T) {
	svc := NewAutomationService(testDB(t))

	err := svc.CreateAutomation(&models.Automation{TriggerType: models.TriggerNewConversation, ActionType: models.ActionAddTag})
	assert.ErrorIs(t, err, ErrAutomationName)

	err = svc.CreateAutomation(&models.Automation{Name: "x", TriggerType: "bogus", ActionType: models.ActionAddTag})
	assert.ErrorIs(t, err, ErrInvalidTrigger)

	err = svc.CreateAutomation(&models.Automation{Name: "x", TriggerType: models.TriggerNewConversation, ActionType: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestAutomationConditionsAreANDed(t *testing.T) {
	db := testDB(t)
	svc := NewAutomationService(db)

	createAutomation(t, svc, models.TriggerNewConversation,
		`[{"field":"source","operator":"equals","value":"chat"},
		  {"field":"subject","operator":"contains","value":"refund"}]`,
		models.ActionAddTag, `{"tag":"billing"}`)

	matching := seedConversation(t, db, 0, models.ConversationOpen)
	require.NoError(t, db.Model(matching).Update("subject", "Refund please").Error)
	svc.TriggerNewConversation(matching.ID)

	var got models.Conversation
	require.NoError(t, db.First(&got, matching.ID).Error)
	assert.Equal(t, "billing", got.Tags)

	// Only one clause matches: must not fire.
	partial := seedConversation(t, db, 0, models.ConversationOpen)
	require.NoError(t, db.Model(partial).Update("subject", "hello").Error)
	svc.TriggerNewConversation(partial.ID)

	var gotPartial models.Conversation
	require.NoError(t, db.First(&gotPartial, partial.ID).Error)
	assert.Empty(t, gotPartial.Tags)
}

func TestAutomationEmptyConditionsAlwaysFire(t *testing.T) {
	db := testDB(t)
	svc := NewAutomationService(db)

	createAutomation(t, svc, models.TriggerNewConversation, "[]",
		models.ActionChangeStatus, `{"status":"pending"}`)

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	svc.TriggerNewConversation(conv.ID)

	var got models.Conversation
	require.NoError(t, db.First(&got, conv.ID).Error)
	assert.Equal(t, models.ConversationPending, got.Status)
}

func TestAutomationContainsIsCaseInsensitive(t *testing.T) {
	db := testDB(t)
	svc := NewAutomationService(db)

	createAutomation(t, svc, models.TriggerNewConversation,
		`[{"field":"subject","operator":"contains","value":"URGENT"}]`,
		models.ActionAddTag, `{"tag":"hot"}`)

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	require.NoError(t, db.Model(conv).Update("subject", "this is urgent!").Error)
	svc.TriggerNewConversation(conv.ID)

	var got models.Conversation
	require.NoError(t, db.First(&got, conv.ID).Error)
	assert.Equal(t, "hot", got.Tags)
}

func TestAutomationUnknownOperatorPasses(t *testing.T) {
	db := testDB(t)
	svc := NewAutomationService(db)

	createAutomation(t, svc, models.TriggerNewConversation,
		`[{"field":"subject","operator":"regex","value":".*"}]`,
		models.ActionAddTag, `{"tag":"tagged"}`)

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	svc.TriggerNewConversation(conv.ID)

	var got models.Conversation
	require.NoError(t, db.First(&got, conv.ID).Error)
	assert.Equal(t, "tagged", got.Tags)
}

func TestAutomationMissingFieldReadsEmpty(t *testing.T) {
	db := testDB(t)
	svc := NewAutomationService(db)

	// not_equals on a field nothing in the context resolves: "" != "x".
	createAutomation(t, svc, models.TriggerNewConversation,
		`[{"field":"no_such_field","operator":"not_equals","value":"x"}]`,
		models.ActionAddTag, `{"tag":"seen"}`)

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	svc.TriggerNewConversation(conv.ID)

	var got models.Conversation
	require.NoError(t, db.First(&got, conv.ID).Error)
	assert.Equal(t, "seen", got.Tags)
}

func TestAutomationAssignAgentAction(t *testing.T) {
	db := testDB(t)
	svc := NewAutomationService(db)
	agent := seedAgent(t, db, 0, 5)

	createAutomation(t, svc, models.TriggerNewConversation, "[]",
		models.ActionAssignAgent, `{"agent_id":`+itoa(agent.ID)+`}`)

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	svc.TriggerNewConversation(conv.ID)

	var got models.Conversation
	require.NoError(t, db.First(&got, conv.ID).Error)
	require.NotNil(t, got.AgentID)
	assert.Equal(t, agent.ID, *got.AgentID)
}

func TestAutomationSendMessageInsertsSystemMessage(t *testing.T) {
	db := testDB(t)
	svc := NewAutomationService(db)

	createAutomation(t, svc, models.TriggerNewConversation, "[]",
		models.ActionSendMessage, `{"message":"Welcome! An agent will be right with you."}`)

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	svc.TriggerNewConversation(conv.ID)

	var msgs []models.Message
	require.NoError(t, db.Where("conversation_id = ?", conv.ID).Find(&msgs).Error)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.MessageSystem, msgs[0].MessageType)
	assert.True(t, msgs[0].IsSystem())
}

func TestAutomationMalformedActionDataSkipsSilently(t *testing.T) {
	db := testDB(t)
	svc := NewAutomationService(db)

	createAutomation(t, svc, models.TriggerNewConversation, "[]",
		models.ActionAssignAgent, `{not json`)

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	svc.TriggerNewConversation(conv.ID)

	var got models.Conversation
	require.NoError(t, db.First(&got, conv.ID).Error)
	assert.Nil(t, got.AgentID)
}

func TestAutomationInactiveRulesSkipped(t *testing.T) {
	db := testDB(t)
	svc := NewAutomationService(db)

	a := createAutomation(t, svc, models.TriggerNewConversation, "[]",
		models.ActionAddTag, `{"tag":"x"}`)
	a.IsActive = false
	require.NoError(t, svc.UpdateAutomation(a))

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	svc.TriggerNewConversation(conv.ID)

	var got models.Conversation
	require.NoError(t, db.First(&got, conv.ID).Error)
	assert.Empty(t, got.Tags)
}

// A later rule must observe the writes of an earlier one: the first rule
// routes urgent tickets to department 2, the second fires only on
// department 2 and escalates.
func TestAutomationsSeeEarlierWrites(t *testing.T) {
	db := testDB(t)
	svc := NewAutomationService(db)

	dept := models.Department{Name: "Escalations"}
	require.NoError(t, db.Create(&dept).Error)

	createAutomation(t, svc, models.TriggerTicketCreated,
		`[{"field":"priority","operator":"equals","value":"urgent"}]`,
		models.ActionAssignDept, `{"department_id":`+itoa(dept.ID)+`}`)
	createAutomation(t, svc, models.TriggerTicketCreated,
		`[{"field":"department_id","operator":"equals","value":"`+itoa(dept.ID)+`"}]`,
		models.ActionChangeStatus, `{"status":"in_progress"}`)

	ticket := models.Ticket{
		UserEmail: "urgent@example.com",
		Subject:   "everything is down",
		Status:    models.TicketOpen,
		Priority:  models.PriorityUrgent,
	}
	require.NoError(t, db.Create(&ticket).Error)

	svc.TriggerNewTicket(ticket.ID)

	var got models.Ticket
	require.NoError(t, db.First(&got, ticket.ID).Error)
	require.NotNil(t, got.DepartmentID)
	assert.Equal(t, dept.ID, *got.DepartmentID)
	assert.Equal(t, models.TicketInProgress, got.Status)
}

func TestAutomationAddTagAppendsWithoutDuplicates(t *testing.T) {
	db := testDB(t)
	svc := NewAutomationService(db)

	createAutomation(t, svc, models.TriggerNewConversation, "[]",
		models.ActionAddTag, `{"tag":"vip"}`)

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	require.NoError(t, db.Model(conv).Update("tags", "sales,vip").Error)
	svc.TriggerNewConversation(conv.ID)

	var got models.Conversation
	require.NoError(t, db.First(&got, conv.ID).Error)
	assert.Equal(t, "sales,vip", got.Tags)
}

func TestAutomationSystemMessagesDoNotTrigger(t *testing.T) {
	db := testDB(t)
	svc := NewAutomationService(db)

	createAutomation(t, svc, models.TriggerMessageReceived, "[]",
		models.ActionAddTag, `{"tag":"touched"}`)

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	msg := models.Message{ConversationID: conv.ID, Content: "auto", MessageType: models.MessageSystem}
	require.NoError(t, db.Create(&msg).Error)

	svc.TriggerNewMessage(msg.ID, conv.ID)

	var got models.Conversation
	require.NoError(t, db.First(&got, conv.ID).Error)
	assert.Empty(t, got.Tags)
}

func TestAutomationMessageContentCondition(t *testing.T) {
	db := testDB(t)
	svc := NewAutomationService(db)

	createAutomation(t, svc, models.TriggerMessageReceived,
		`[{"field":"content","operator":"contains","value":"cancel"}]`,
		models.ActionAddTag, `{"tag":"churn-risk"}`)

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	user := seedUser(t, db, "vis@example.com")
	msg := models.Message{ConversationID: conv.ID, UserID: &user.ID, Content: "I want to CANCEL my plan"}
	require.NoError(t, db.Create(&msg).Error)

	svc.TriggerNewMessage(msg.ID, conv.ID)

	var got models.Conversation
	require.NoError(t, db.First(&got, conv.ID).Error)
	assert.Equal(t, "churn-risk", got.Tags)
}
