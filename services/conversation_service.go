package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"helpdesk/events"
	"helpdesk/models"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrVisitorRequired      = errors.New("visitor identity required")
	ErrInvalidStatus        = errors.New("invalid status")
)

var conversationStatuses = map[string]bool{
	models.ConversationOpen:     true,
	models.ConversationPending:  true,
	models.ConversationResolved: true,
	models.ConversationArchived: true,
}

type ConversationFilter struct {
	Status       string
	DepartmentID uint
	AgentID      uint
	Source       string
	Search       string // matched against subject, user_name, user_email
	DateFrom     time.Time
	DateTo       time.Time
	OrderBy      string
	Order        string
	Page         int
	PerPage      int
}

type ConversationService struct {
	db  *gorm.DB
	bus *events.Bus
}

func NewConversationService(db *gorm.DB, bus *events.Bus) *ConversationService {
	return &ConversationService{db: db, bus: bus}
}

// CreateConversation persists a new conversation and publishes the
// new-conversation event to all subscribers (automations first, then
// notifications — see server wiring).
func (s *ConversationService) CreateConversation(conv *models.Conversation) error {
	if conv.UserID == nil && conv.UserEmail == "" {
		return ErrVisitorRequired
	}
	if conv.Status == "" {
		conv.Status = models.ConversationOpen
	}
	if !conversationStatuses[conv.Status] {
		return ErrInvalidStatus
	}
	if conv.Source == "" {
		conv.Source = "chat"
	}
	if err := s.db.Create(conv).Error; err != nil {
		return err
	}

	s.bus.Publish(events.Event{
		Type:           events.NewConversation,
		ConversationID: conv.ID,
	})
	return nil
}

func (s *ConversationService) GetConversation(id uint) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.First(&conv, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conv, nil
}

var conversationOrderColumns = map[string]bool{
	"id": true, "status": true, "source": true, "created_at": true, "updated_at": true,
}

func (s *ConversationService) ListConversations(f ConversationFilter) ([]models.Conversation, int64, error) {
	query := s.db.Model(&models.Conversation{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.DepartmentID != 0 {
		query = query.Where("department_id = ?", f.DepartmentID)
	}
	if f.AgentID != 0 {
		query = query.Where("agent_id = ?", f.AgentID)
	}
	if f.Source != "" {
		query = query.Where("source = ?", f.Source)
	}
	if !f.DateFrom.IsZero() {
		query = query.Where("created_at >= ?", f.DateFrom)
	}
	if !f.DateTo.IsZero() {
		query = query.Where("created_at <= ?", f.DateTo)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("subject LIKE ? OR user_name LIKE ? OR user_email LIKE ?", like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := f.OrderBy
	if !conversationOrderColumns[orderBy] {
		orderBy = "updated_at"
	}
	order := "DESC"
	if f.Order == "ASC" || f.Order == "asc" {
		order = "ASC"
	}

	perPage := f.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	page := f.Page
	if page <= 0 {
		page = 1
	}

	var conversations []models.Conversation
	err := query.Order(orderBy + " " + order).
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&conversations).Error
	if err != nil {
		return nil, 0, err
	}
	return conversations, total, nil
}

// UpdateStatus is permissive about transitions (any status may follow any
// other) but rejects values outside the known set.
func (s *ConversationService) UpdateStatus(id uint, status string) error {
	if !conversationStatuses[status] {
		return ErrInvalidStatus
	}
	return s.touchUpdate(id, map[string]interface{}{"status": status})
}

func (s *ConversationService) AssignAgent(id, agentID uint) error {
	return s.touchUpdate(id, map[string]interface{}{"agent_id": agentID})
}

func (s *ConversationService) AssignDepartment(id, departmentID uint) error {
	return s.touchUpdate(id, map[string]interface{}{"department_id": departmentID})
}

func (s *ConversationService) touchUpdate(id uint, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := s.db.Model(&models.Conversation{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrConversationNotFound
	}
	return nil
}

// DeleteConversation removes a conversation together with its messages.
func (s *ConversationService) DeleteConversation(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.First(&conv, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConversationNotFound
			}
			return err
		}
		if err := tx.Where("conversation_id = ?", id).Delete(&models.Message{}).Error; err != nil {
			return err
		}
		return tx.Delete(&conv).Error
	})
}

func (s *ConversationService) CountByStatus(status string) (int64, error) {
	var count int64
	query := s.db.Model(&models.Conversation{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}

// UserConversations lists a visitor's conversations by email, most
// recently active first.
func (s *ConversationService) UserConversations(email string) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := s.db.Where("user_email = ?", email).
		Order("updated_at DESC").
		Find(&conversations).Error
	return conversations, err
}
