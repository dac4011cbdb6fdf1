package models

import "time"

// Notification types.
const (
	NotifyNewChat     = "new_chat"
	NotifyNewMessage  = "new_message"
	NotifyNewTicket   = "new_ticket"
	NotifyTicketReply = "ticket_reply"
	NotifyAssigned    = "assigned"
)

type Notification struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	AgentID        uint      `json:"agent_id" gorm:"index"`
	ConversationID *uint     `json:"conversation_id"`
	TicketID       *uint     `json:"ticket_id"`
	Type           string    `json:"type"`
	Message        string    `json:"message"`
	IsRead         bool      `json:"is_read" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
}
