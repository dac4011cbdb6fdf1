package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk/events"
	"helpdesk/models"
)

// Wires a bus the way the server does: automations first, then
// notifications. A rule that assigns the conversation must redirect the
// dispatcher from a broadcast to a single targeted notification.
func TestAutomationAssignmentRedirectsNotifications(t *testing.T) {
	db := testDB(t)
	bus := events.NewBus()

	automationService := NewAutomationService(db)
	notificationService := NewNotificationService(db, nil)
	conversationService := NewConversationService(db, bus)

	bus.Subscribe(events.NewConversation, func(e events.Event) {
		automationService.TriggerNewConversation(e.ConversationID)
	})
	bus.Subscribe(events.NewConversation, func(e events.Event) {
		notificationService.OnNewConversation(e.ConversationID)
	})

	target := seedAgent(t, db, 0, 5)
	bystander := seedAgent(t, db, 0, 5)

	require.NoError(t, automationService.CreateAutomation(&models.Automation{
		Name:        "route vips",
		TriggerType: models.TriggerNewConversation,
		Conditions:  `[{"field":"subject","operator":"contains","value":"vip"}]`,
		ActionType:  models.ActionAssignAgent,
		ActionData:  `{"agent_id":` + itoa(target.ID) + `}`,
	}))

	conv := models.Conversation{UserEmail: "vip@example.com", Subject: "VIP onboarding"}
	require.NoError(t, conversationService.CreateConversation(&conv))

	got, err := conversationService.GetConversation(conv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AgentID)
	assert.Equal(t, target.ID, *got.AgentID)

	// Assigned agent got exactly one notification; nobody else was
	// broadcast to.
	assert.Len(t, notificationsFor(t, db, target.ID), 1)
	assert.Empty(t, notificationsFor(t, db, bystander.ID))
}

// A ticket-created rule that reroutes the department, followed by the
// notification pass, all driven by the service-level create call.
func TestTicketPipelineEndToEnd(t *testing.T) {
	db := testDB(t)
	bus := events.NewBus()

	automationService := NewAutomationService(db)
	notificationService := NewNotificationService(db, nil)
	ticketService := NewTicketService(db, bus)

	bus.Subscribe(events.NewTicket, func(e events.Event) {
		automationService.TriggerNewTicket(e.TicketID)
	})
	bus.Subscribe(events.NewTicket, func(e events.Event) {
		notificationService.OnNewTicket(e.TicketID)
	})

	agent := seedAgent(t, db, 0, 5)

	require.NoError(t, automationService.CreateAutomation(&models.Automation{
		Name:        "assign urgent",
		TriggerType: models.TriggerTicketCreated,
		Conditions:  `[{"field":"priority","operator":"equals","value":"urgent"}]`,
		ActionType:  models.ActionAssignAgent,
		ActionData:  `{"agent_id":` + itoa(agent.ID) + `}`,
	}))

	ticket := models.Ticket{UserEmail: "panic@example.com", Subject: "prod down", Priority: models.PriorityUrgent}
	require.NoError(t, ticketService.CreateTicket(&ticket))

	got, err := ticketService.GetTicket(ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AssignedAgentID)
	assert.Equal(t, agent.ID, *got.AssignedAgentID)

	notifications := notificationsFor(t, db, agent.ID)
	require.Len(t, notifications, 1)
	assert.Equal(t, models.NotifyNewTicket, notifications[0].Type)
}
