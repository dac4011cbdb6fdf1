package models

import "time"

type Rating struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	ConversationID uint      `json:"conversation_id" gorm:"index"`
	AgentID        *uint     `json:"agent_id" gorm:"index"`
	Score          int       `json:"rating"` // 1-5
	Comment        string    `json:"comment"`
	CreatedAt      time.Time `json:"created_at"`
}

type SavedReply struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Title     string    `json:"title"`
	Shortcut  string    `json:"shortcut" gorm:"index"`
	Content   string    `json:"content" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
