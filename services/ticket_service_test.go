package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk/events"
	"helpdesk/models"
)

func TestCreateTicketDefaultsAndValidation(t *testing.T) {
	db := testDB(t)
	bus := events.NewBus()
	svc := NewTicketService(db, bus)

	var published []events.Event
	bus.Subscribe(events.NewTicket, func(e events.Event) {
		published = append(published, e)
	})

	ticket := models.Ticket{UserEmail: "t@example.com", Subject: "broken login"}
	require.NoError(t, svc.CreateTicket(&ticket))
	assert.Equal(t, models.TicketOpen, ticket.Status)
	assert.Equal(t, models.PriorityMedium, ticket.Priority)
	require.Len(t, published, 1)
	assert.Equal(t, ticket.ID, published[0].TicketID)

	assert.ErrorIs(t, svc.CreateTicket(&models.Ticket{UserEmail: "x@example.com"}), ErrTicketSubject)
	assert.ErrorIs(t, svc.CreateTicket(&models.Ticket{Subject: "no requester"}), ErrTicketRequester)
	assert.ErrorIs(t, svc.CreateTicket(&models.Ticket{UserEmail: "x@example.com", Subject: "s", Priority: "asap"}), ErrInvalidPriority)
}

func TestTicketStatusAndPriorityUpdates(t *testing.T) {
	db := testDB(t)
	svc := NewTicketService(db, events.NewBus())

	ticket := models.Ticket{UserEmail: "t@example.com", Subject: "s"}
	require.NoError(t, svc.CreateTicket(&ticket))

	assert.ErrorIs(t, svc.UpdateStatus(ticket.ID, "done"), ErrInvalidStatus)
	require.NoError(t, svc.UpdateStatus(ticket.ID, models.TicketResolved))

	assert.ErrorIs(t, svc.UpdatePriority(ticket.ID, "whenever"), ErrInvalidPriority)
	require.NoError(t, svc.UpdatePriority(ticket.ID, models.PriorityUrgent))

	got, err := svc.GetTicket(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketResolved, got.Status)
	assert.Equal(t, models.PriorityUrgent, got.Priority)

	assert.ErrorIs(t, svc.UpdateStatus(9999, models.TicketOpen), ErrTicketNotFound)
}

func TestAddReplyPublishesAndBumps(t *testing.T) {
	db := testDB(t)
	bus := events.NewBus()
	svc := NewTicketService(db, bus)

	var published []events.Event
	bus.Subscribe(events.TicketReply, func(e events.Event) {
		published = append(published, e)
	})

	ticket := models.Ticket{UserEmail: "t@example.com", Subject: "s"}
	require.NoError(t, svc.CreateTicket(&ticket))
	user := seedUser(t, db, "replier@example.com")

	assert.ErrorIs(t, svc.AddReply(&models.TicketReply{TicketID: ticket.ID, UserID: &user.ID}), ErrEmptyReply)
	assert.ErrorIs(t, svc.AddReply(&models.TicketReply{TicketID: ticket.ID, Content: "orphan"}), ErrReplySenderNeeded)

	reply := models.TicketReply{TicketID: ticket.ID, UserID: &user.ID, Content: "any update?"}
	require.NoError(t, svc.AddReply(&reply))

	require.Len(t, published, 1)
	assert.Equal(t, reply.ID, published[0].ReplyID)
	assert.Equal(t, ticket.ID, published[0].TicketID)
}

func TestRepliesFilterNotes(t *testing.T) {
	db := testDB(t)
	svc := NewTicketService(db, events.NewBus())

	ticket := models.Ticket{UserEmail: "t@example.com", Subject: "s"}
	require.NoError(t, svc.CreateTicket(&ticket))
	agent := seedAgent(t, db, 0, 5)

	require.NoError(t, svc.AddReply(&models.TicketReply{TicketID: ticket.ID, AgentID: &agent.ID, Content: "public answer"}))
	require.NoError(t, svc.AddReply(&models.TicketReply{TicketID: ticket.ID, AgentID: &agent.ID, Content: "internal note", IsNote: true}))

	all, err := svc.Replies(ticket.ID, true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	visible, err := svc.Replies(ticket.ID, false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "public answer", visible[0].Content)
}

func TestDeleteTicketCascadesReplies(t *testing.T) {
	db := testDB(t)
	svc := NewTicketService(db, events.NewBus())

	ticket := models.Ticket{UserEmail: "t@example.com", Subject: "s"}
	require.NoError(t, svc.CreateTicket(&ticket))
	user := seedUser(t, db, "gone@example.com")
	require.NoError(t, svc.AddReply(&models.TicketReply{TicketID: ticket.ID, UserID: &user.ID, Content: "r"}))

	require.NoError(t, svc.DeleteTicket(ticket.ID))

	var replyCount int64
	require.NoError(t, db.Model(&models.TicketReply{}).Where("ticket_id = ?", ticket.ID).Count(&replyCount).Error)
	assert.EqualValues(t, 0, replyCount)

	_, err := svc.GetTicket(ticket.ID)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}
