package models

import "time"

// Conversation statuses.
const (
	ConversationOpen     = "open"
	ConversationPending  = "pending"
	ConversationResolved = "resolved"
	ConversationArchived = "archived"
)

type Conversation struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	UserID       *uint     `json:"user_id"`
	AgentID      *uint     `json:"agent_id" gorm:"index"`
	DepartmentID *uint     `json:"department_id" gorm:"index"`
	Status       string    `json:"status" gorm:"default:'open'"` // open, pending, resolved, archived
	Subject      string    `json:"subject"`
	Source       string    `json:"source" gorm:"default:'chat'"` // chat, email, ticket
	UserEmail    string    `json:"user_email" gorm:"index"`
	UserName     string    `json:"user_name"`
	UserIP       string    `json:"user_ip"`
	UserBrowser  string    `json:"user_browser"`
	CurrentPage  string    `json:"current_page"`
	Tags         string    `json:"tags"` // comma-separated
	ExtraData    string    `json:"extra_data" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"` // bumped on every new message
}
