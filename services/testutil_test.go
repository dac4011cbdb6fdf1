package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"helpdesk/models"
)

// testDB opens a fresh in-memory database per test.
func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	// A named shared-cache memory db keeps gorm's pooled connections on
	// the same database while staying isolated between tests.
	dsn := fmt.Sprintf("file:test%d?mode=memory&cache=shared", nextSeq())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := models.AutoMigrateAll(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: email, Type: "agent"}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

// seedAgent creates an online agent with its backing user. departmentID 0
// leaves the agent unattached.
func seedAgent(t *testing.T, db *gorm.DB, departmentID uint, maxChats int) *models.Agent {
	t.Helper()
	user := seedUser(t, db, fmt.Sprintf("agent%d@example.com", nextSeq()))
	agent := &models.Agent{
		UserID:   user.ID,
		MaxChats: maxChats,
		Status:   models.AgentActive,
		IsOnline: true,
	}
	if departmentID != 0 {
		agent.DepartmentID = &departmentID
	}
	if err := db.Create(agent).Error; err != nil {
		t.Fatalf("seed agent: %v", err)
	}
	return agent
}

func seedConversation(t *testing.T, db *gorm.DB, agentID uint, status string) *models.Conversation {
	t.Helper()
	conv := &models.Conversation{
		UserEmail: fmt.Sprintf("visitor%d@example.com", nextSeq()),
		UserName:  "Visitor",
		Status:    status,
		Source:    "chat",
	}
	if agentID != 0 {
		conv.AgentID = &agentID
	}
	if err := db.Create(conv).Error; err != nil {
		t.Fatalf("seed conversation: %v", err)
	}
	return conv
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

var (
	seqMu sync.Mutex
	seq   int
)

func nextSeq() int {
	seqMu.Lock()
	defer seqMu.Unlock()
	seq++
	return seq
}

// memoryState is an in-process RoutingState for router tests.
type memoryState struct {
	mu      sync.Mutex
	cursors map[uint]uint
}

func newMemoryState() *memoryState {
	return &memoryState{cursors: make(map[uint]uint)}
}

func (m *memoryState) LastAgent(_ context.Context, departmentID uint) (uint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cursors[departmentID], nil
}

func (m *memoryState) SetLastAgent(_ context.Context, departmentID, agentID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cursors[departmentID] = agentID
	return nil
}
