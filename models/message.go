package models

import "time"

// Message types.
const (
	MessageText   = "text"
	MessageImage  = "image"
	MessageFile   = "file"
	MessageSystem = "system"
	MessageNote   = "note"
	MessageRich   = "rich"
	MessageEmail  = "email"
)

// A message belongs to exactly one sender: a visitor (UserID), an agent
// (AgentID), or neither for system messages inserted by automations.
type Message struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"conversation_id" gorm:"index"`
	UserID         *uint     `json:"user_id"`
	AgentID        *uint     `json:"agent_id"`
	Content        string    `json:"content" gorm:"type:text"`
	Attachments    string    `json:"attachments" gorm:"type:text"` // JSON-encoded
	MessageType    string    `json:"message_type" gorm:"default:'text'"`
	IsRead         bool      `json:"is_read" gorm:"default:false"`
	CreatedAt      time.Time `json:"created_at"`
}

// IsSystem reports whether the message has no human sender.
func (m *Message) IsSystem() bool {
	return m.UserID == nil && m.AgentID == nil
}
