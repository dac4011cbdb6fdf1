package models

import "time"

// Automation trigger types.
const (
	TriggerNewConversation = "new_conversation"
	TriggerMessageReceived = "message_received"
	TriggerTicketCreated   = "ticket_created"
)

// Automation action types.
const (
	ActionAssignAgent  = "assign_agent"
	ActionAssignDept   = "assign_dept"
	ActionSendMessage  = "send_message"
	ActionChangeStatus = "change_status"
	ActionAddTag       = "add_tag"
)

type Automation struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name"`
	TriggerType string    `json:"trigger_type" gorm:"index"`
	Conditions  string    `json:"conditions" gorm:"type:text;default:'[]'"`  // JSON array of {field, operator, value}
	ActionType  string    `json:"action_type"`
	ActionData  string    `json:"action_data" gorm:"type:text;default:'{}'"` // JSON action payload
	IsActive    bool      `json:"is_active" gorm:"default:true"`
	CreatedAt   time.Time `json:"created_at"`
}
