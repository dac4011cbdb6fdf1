package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"helpdesk/events"
	"helpdesk/models"
)

func TestCreateMessageBumpsConversation(t *testing.T) {
	db := testDB(t)
	bus := events.NewBus()
	svc := NewMessageService(db, bus)

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	require.NoError(t, db.Model(conv).UpdateColumn("updated_at", time.Now().Add(-time.Hour)).Error)

	var published []events.Event
	bus.Subscribe(events.NewMessage, func(e events.Event) {
		published = append(published, e)
	})

	user := seedUser(t, db, "bump@example.com")
	msg := models.Message{ConversationID: conv.ID, UserID: &user.ID, Content: "hi"}
	require.NoError(t, svc.CreateMessage(&msg))

	var got models.Conversation
	require.NoError(t, db.First(&got, conv.ID).Error)
	assert.WithinDuration(t, time.Now(), got.UpdatedAt, time.Minute)

	require.Len(t, published, 1)
	assert.Equal(t, msg.ID, published[0].MessageID)
	assert.Equal(t, conv.ID, published[0].ConversationID)
}

func TestCreateMessageValidation(t *testing.T) {
	db := testDB(t)
	svc := NewMessageService(db, events.NewBus())

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	user := seedUser(t, db, "v@example.com")
	agent := seedAgent(t, db, 0, 5)

	err := svc.CreateMessage(&models.Message{ConversationID: conv.ID, UserID: &user.ID})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	err = svc.CreateMessage(&models.Message{ConversationID: conv.ID, UserID: &user.ID, AgentID: &agent.ID, Content: "x"})
	assert.ErrorIs(t, err, ErrAmbiguousSender)

	err = svc.CreateMessage(&models.Message{ConversationID: 9999, UserID: &user.ID, Content: "x"})
	assert.ErrorIs(t, err, ErrConversationNotFound)
}

func TestListMessagesSinceID(t *testing.T) {
	db := testDB(t)
	svc := NewMessageService(db, events.NewBus())

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	user := seedUser(t, db, "since@example.com")

	var ids []uint
	for i := 0; i < 5; i++ {
		msg := models.Message{ConversationID: conv.ID, UserID: &user.ID, Content: "m"}
		require.NoError(t, svc.CreateMessage(&msg))
		ids = append(ids, msg.ID)
	}

	messages, err := svc.ListMessages(conv.ID, ids[2], 0, 0)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, ids[3], messages[0].ID)
	assert.Equal(t, ids[4], messages[1].ID)
}

// Agent reading marks visitor messages; visitor reading marks agent
// messages; system messages stay untouched either way.
func TestUnreadScopingByReaderType(t *testing.T) {
	db := testDB(t)
	svc := NewMessageService(db, events.NewBus())

	conv := seedConversation(t, db, 0, models.ConversationOpen)
	user := seedUser(t, db, "reader@example.com")
	agent := seedAgent(t, db, 0, 5)

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.CreateMessage(&models.Message{ConversationID: conv.ID, UserID: &user.ID, Content: "from visitor"}))
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, svc.CreateMessage(&models.Message{ConversationID: conv.ID, AgentID: &agent.ID, Content: "from agent"}))
	}
	require.NoError(t, svc.CreateMessage(&models.Message{ConversationID: conv.ID, Content: "system notice", MessageType: models.MessageSystem}))

	agentUnread, err := svc.UnreadCount(conv.ID, ReaderAgent)
	require.NoError(t, err)
	assert.EqualValues(t, 3, agentUnread)

	userUnread, err := svc.UnreadCount(conv.ID, ReaderUser)
	require.NoError(t, err)
	assert.EqualValues(t, 2, userUnread)

	marked, err := svc.MarkRead(conv.ID, ReaderAgent)
	require.NoError(t, err)
	assert.EqualValues(t, 3, marked)

	agentUnread, err = svc.UnreadCount(conv.ID, ReaderAgent)
	require.NoError(t, err)
	assert.EqualValues(t, 0, agentUnread)

	// The agent's own messages are still unread for the visitor.
	userUnread, err = svc.UnreadCount(conv.ID, ReaderUser)
	require.NoError(t, err)
	assert.EqualValues(t, 2, userUnread)

	_, err = svc.MarkRead(conv.ID, "bot")
	assert.ErrorIs(t, err, ErrInvalidReaderType)
}
