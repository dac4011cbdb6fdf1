package models

import "time"

// Agent roles.
const (
	RoleAgent      = "agent"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

// Agent online statuses.
const (
	AgentActive  = "active"
	AgentAway    = "away"
	AgentOffline = "offline"
)

type Agent struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	UserID       uint       `json:"user_id" gorm:"index"`
	DepartmentID *uint      `json:"department_id" gorm:"index"`
	Role         string     `json:"role" gorm:"default:'agent'"`
	MaxChats     int        `json:"max_chats" gorm:"default:5"`
	ProfileImage string     `json:"profile_image"`
	Status       string     `json:"status" gorm:"default:'offline'"` // active, away, offline
	IsOnline     bool       `json:"is_online" gorm:"default:false"`
	LastSeen     time.Time  `json:"last_seen"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	User         User       `json:"user" gorm:"foreignKey:UserID"`
}

type Department struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
