package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"helpdesk/events"
	"helpdesk/models"
)

var (
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrTicketSubject     = errors.New("ticket subject required")
	ErrTicketRequester   = errors.New("ticket requester identity required")
	ErrInvalidPriority   = errors.New("invalid priority")
	ErrEmptyReply        = errors.New("reply content required")
	ErrReplySenderNeeded = errors.New("reply requires a sender")
)

var ticketStatuses = map[string]bool{
	models.TicketOpen:       true,
	models.TicketInProgress: true,
	models.TicketResolved:   true,
	models.TicketClosed:     true,
}

var ticketPriorities = map[string]bool{
	models.PriorityLow:    true,
	models.PriorityMedium: true,
	models.PriorityHigh:   true,
	models.PriorityUrgent: true,
}

type TicketFilter struct {
	Status          string
	Priority        string
	AssignedAgentID uint
	DepartmentID    uint
	Search          string // matched against subject and user_email
	OrderBy         string
	Order           string
	Page            int
	PerPage         int
}

type TicketService struct {
	db  *gorm.DB
	bus *events.Bus
}

func NewTicketService(db *gorm.DB, bus *events.Bus) *TicketService {
	return &TicketService{db: db, bus: bus}
}

// CreateTicket validates and persists a ticket, then publishes the
// ticket-created event.
func (s *TicketService) CreateTicket(ticket *models.Ticket) error {
	if ticket.Subject == "" {
		return ErrTicketSubject
	}
	if ticket.UserID == nil && ticket.UserEmail == "" {
		return ErrTicketRequester
	}
	if ticket.Status == "" {
		ticket.Status = models.TicketOpen
	}
	if !ticketStatuses[ticket.Status] {
		return ErrInvalidStatus
	}
	if ticket.Priority == "" {
		ticket.Priority = models.PriorityMedium
	}
	if !ticketPriorities[ticket.Priority] {
		return ErrInvalidPriority
	}
	if err := s.db.Create(ticket).Error; err != nil {
		return err
	}

	s.bus.Publish(events.Event{
		Type:     events.NewTicket,
		TicketID: ticket.ID,
	})
	return nil
}

func (s *TicketService) GetTicket(id uint) (*models.Ticket, error) {
	var ticket models.Ticket
	if err := s.db.First(&ticket, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

var ticketOrderColumns = map[string]bool{
	"id": true, "status": true, "priority": true, "created_at": true, "updated_at": true,
}

func (s *TicketService) ListTickets(f TicketFilter) ([]models.Ticket, int64, error) {
	query := s.db.Model(&models.Ticket{})
	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		query = query.Where("priority = ?", f.Priority)
	}
	if f.AssignedAgentID != 0 {
		query = query.Where("assigned_agent_id = ?", f.AssignedAgentID)
	}
	if f.DepartmentID != 0 {
		query = query.Where("department_id = ?", f.DepartmentID)
	}
	if f.Search != "" {
		like := "%" + f.Search + "%"
		query = query.Where("subject LIKE ? OR user_email LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	orderBy := f.OrderBy
	if !ticketOrderColumns[orderBy] {
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

	var tickets []models.Ticket
	err := query.Order(orderBy + " " + order).
		Limit(perPage).
		Offset((page - 1) * perPage).
		Find(&tickets).Error
	if err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func (s *TicketService) UpdateStatus(id uint, status string) error {
	if !ticketStatuses[status] {
		return ErrInvalidStatus
	}
	return s.touchUpdate(id, map[string]interface{}{"status": status})
}

func (s *TicketService) UpdatePriority(id uint, priority string) error {
	if !ticketPriorities[priority] {
		return ErrInvalidPriority
	}
	return s.touchUpdate(id, map[string]interface{}{"priority": priority})
}

func (s *TicketService) AssignAgent(id, agentID uint) error {
	return s.touchUpdate(id, map[string]interface{}{"assigned_agent_id": agentID})
}

func (s *TicketService) AssignDepartment(id, departmentID uint) error {
	return s.touchUpdate(id, map[string]interface{}{"department_id": departmentID})
}

func (s *TicketService) touchUpdate(id uint, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now()
	result := s.db.Model(&models.Ticket{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTicketNotFound
	}
	return nil
}

// DeleteTicket removes a ticket together with its replies.
func (s *TicketService) DeleteTicket(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := tx.First(&ticket, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return err
		}
		if err := tx.Where("ticket_id = ?", id).Delete(&models.TicketReply{}).Error; err != nil {
			return err
		}
		return tx.Delete(&ticket).Error
	})
}

// AddReply appends a reply, bumps the parent ticket's updated_at and
// publishes the ticket-reply event. Internal notes (IsNote) stay hidden
// from the requester in the handlers.
func (s *TicketService) AddReply(reply *models.TicketReply) error {
	if reply.Content == "" {
		return ErrEmptyReply
	}
	if reply.UserID == nil && reply.AgentID == nil {
		return ErrReplySenderNeeded
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var ticket models.Ticket
		if err := tx.First(&ticket, reply.TicketID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTicketNotFound
			}
			return err
		}
		if err := tx.Create(reply).Error; err != nil {
			return err
		}
		return tx.Model(&ticket).UpdateColumn("updated_at", time.Now()).Error
	})
	if err != nil {
		return err
	}

	s.bus.Publish(events.Event{
		Type:     events.TicketReply,
		ReplyID:  reply.ID,
		TicketID: reply.TicketID,
	})
	return nil
}

// Replies lists a ticket's replies oldest first. includeNotes=false
// filters out internal notes for requester-facing views.
func (s *TicketService) Replies(ticketID uint, includeNotes bool) ([]models.TicketReply, error) {
	query := s.db.Where("ticket_id = ?", ticketID)
	if !includeNotes {
		query = query.Where("is_note = ?", false)
	}
	var replies []models.TicketReply
	err := query.Order("created_at ASC").Find(&replies).Error
	return replies, err
}

func (s *TicketService) UserTickets(userID uint) ([]models.Ticket, error) {
	var tickets []models.Ticket
	err := s.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Find(&tickets).Error
	return tickets, err
}

func (s *TicketService) CountByStatus(status string) (int64, error) {
	var count int64
	query := s.db.Model(&models.Ticket{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	err := query.Count(&count).Error
	return count, err
}
