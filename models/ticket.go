package models

import "time"

// Ticket statuses.
const (
	TicketOpen       = "open"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"
)

// Ticket priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
	PriorityUrgent = "urgent"
)

type Ticket struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	ConversationID  *uint     `json:"conversation_id"`
	UserID          *uint     `json:"user_id"`
	UserEmail       string    `json:"user_email" gorm:"index"`
	Subject         string    `json:"subject"`
	Status          string    `json:"status" gorm:"default:'open'"`     // open, in_progress, resolved, closed
	Priority        string    `json:"priority" gorm:"default:'medium'"` // low, medium, high, urgent
	AssignedAgentID *uint     `json:"assigned_agent_id" gorm:"index"`
	DepartmentID    *uint     `json:"department_id" gorm:"index"`
	Tags            string    `json:"tags"` // comma-separated
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type TicketReply struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	TicketID    uint      `json:"ticket_id" gorm:"index"`
	UserID      *uint     `json:"user_id"`
	AgentID     *uint     `json:"agent_id"`
	Content     string    `json:"content" gorm:"type:text"`
	Attachments string    `json:"attachments" gorm:"type:text"`
	IsNote      bool      `json:"is_note" gorm:"default:false"` // internal notes invisible to requester
	CreatedAt   time.Time `json:"created_at"`
}
