package models

import "time"

type KBCategory struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug" gorm:"uniqueIndex"`
	ParentID  *uint     `json:"parent_id"`
	CreatedAt time.Time `json:"created_at"`
}

type KBArticle struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	CategoryID *uint     `json:"category_id" gorm:"index"`
	Title      string    `json:"title"`
	Slug       string    `json:"slug" gorm:"uniqueIndex"`
	Content    string    `json:"content" gorm:"type:text"`
	Views      int       `json:"views" gorm:"default:0"`
	HelpfulYes int       `json:"helpful_yes" gorm:"default:0"`
	HelpfulNo  int       `json:"helpful_no" gorm:"default:0"`
	Status     string    `json:"status" gorm:"default:'published'"` // published, draft
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
