package services

import (
	"fmt"
	"log"
	"strings"

	"gorm.io/gorm"

	"helpdesk/models"
)

// Mailer is the outbound notification transport. Failures are logged and
// swallowed; the dispatcher never lets a mail error surface.
type Mailer interface {
	Send(to, subject, body string) error
}

// NotificationService fans notification records out to agents on domain
// events. Every handler is fire-and-forget: a failed create is logged and
// must not fail the triggering operation, and one failed recipient must
// not prevent the others.
type NotificationService struct {
	db     *gorm.DB
	mailer Mailer
}

func NewNotificationService(db *gorm.DB, mailer Mailer) *NotificationService {
	return &NotificationService{db: db, mailer: mailer}
}

// OnNewConversation notifies the assigned agent if there is one, otherwise
// every online agent of the conversation's department, otherwise every
// online agent.
func (s *NotificationService) OnNewConversation(conversationID uint) {
	var conv models.Conversation
	if err := s.db.First(&conv, conversationID).Error; err != nil {
		log.Printf("notification: conversation %d not found: %v", conversationID, err)
		return
	}

	from := conv.UserName
	if from == "" {
		from = conv.UserEmail
	}
	message := fmt.Sprintf("New conversation from %s", from)

	if conv.AgentID != nil {
		s.create(&models.Notification{
			AgentID:        *conv.AgentID,
			ConversationID: &conv.ID,
			Type:           models.NotifyNewChat,
			Message:        message,
		})
		s.email(*conv.AgentID, "New conversation assigned to you", message)
		return
	}

	var departmentID uint
	if conv.DepartmentID != nil {
		departmentID = *conv.DepartmentID
	}

	var agents []models.Agent
	query := s.db.Where("is_online = ?", true)
	if departmentID != 0 {
		query = query.Where("department_id = ?", departmentID)
	}
	if err := query.Order("id ASC").Find(&agents).Error; err != nil {
		log.Printf("notification: listing online agents failed: %v", err)
		return
	}

	for _, agent := range agents {
		s.create(&models.Notification{
			AgentID:        agent.ID,
			ConversationID: &conv.ID,
			Type:           models.NotifyNewChat,
			Message:        message,
		})
	}
}

// OnNewMessage notifies the assigned agent when a visitor writes into an
// already-assigned conversation. Agent-authored and system messages never
// notify.
func (s *NotificationService) OnNewMessage(messageID, conversationID uint) {
	var msg models.Message
	if err := s.db.First(&msg, messageID).Error; err != nil {
		log.Printf("notification: message %d not found: %v", messageID, err)
		return
	}
	if msg.AgentID != nil || msg.UserID == nil {
		return
	}

	var conv models.Conversation
	if err := s.db.First(&conv, conversationID).Error; err != nil || conv.AgentID == nil {
		return
	}

	s.create(&models.Notification{
		AgentID:        *conv.AgentID,
		ConversationID: &conv.ID,
		Type:           models.NotifyNewMessage,
		Message:        fmt.Sprintf("New message: %s", trimWords(msg.Content, 10)),
	})
}

// OnNewTicket notifies the assigned agent, if any.
func (s *NotificationService) OnNewTicket(ticketID uint) {
	var ticket models.Ticket
	if err := s.db.First(&ticket, ticketID).Error; err != nil {
		log.Printf("notification: ticket %d not found: %v", ticketID, err)
		return
	}
	if ticket.AssignedAgentID == nil {
		return
	}

	message := fmt.Sprintf("New ticket: %s", ticket.Subject)
	s.create(&models.Notification{
		AgentID:  *ticket.AssignedAgentID,
		TicketID: &ticket.ID,
		Type:     models.NotifyNewTicket,
		Message:  message,
	})
	s.email(*ticket.AssignedAgentID, "New ticket assigned to you", message)
}

// OnTicketReply notifies the assigned agent about requester replies.
// Agents replying to their own tickets never self-notify.
func (s *NotificationService) OnTicketReply(replyID, ticketID uint) {
	var reply models.TicketReply
	if err := s.db.First(&reply, replyID).Error; err != nil {
		log.Printf("notification: ticket reply %d not found: %v", replyID, err)
		return
	}
	if reply.AgentID != nil {
		return
	}

	var ticket models.Ticket
	if err := s.db.First(&ticket, ticketID).Error; err != nil || ticket.AssignedAgentID == nil {
		return
	}

	s.create(&models.Notification{
		AgentID:  *ticket.AssignedAgentID,
		TicketID: &ticket.ID,
		Type:     models.NotifyTicketReply,
		Message:  fmt.Sprintf("New reply on ticket: %s", ticket.Subject),
	})
}

func (s *NotificationService) List(agentID uint, limit int) ([]models.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	var notifications []models.Notification
	err := s.db.Where("agent_id = ?", agentID).
		Order("created_at DESC").
		Limit(limit).
		Find(&notifications).Error
	return notifications, err
}

func (s *NotificationService) UnreadCount(agentID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("agent_id = ? AND is_read = ?", agentID, false).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) MarkAllRead(agentID uint) (int64, error) {
	result := s.db.Model(&models.Notification{}).
		Where("agent_id = ? AND is_read = ?", agentID, false).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

func (s *NotificationService) create(n *models.Notification) {
	if err := s.db.Create(n).Error; err != nil {
		log.Printf("notification create failed for agent %d: %v", n.AgentID, err)
	}
}

// email sends an outbound mail to the agent's linked user address,
// fire-and-forget.
func (s *NotificationService) email(agentID uint, subject, body string) {
	if s.mailer == nil {
		return
	}
	var agent models.Agent
	if err := s.db.Preload("User").First(&agent, agentID).Error; err != nil {
		log.Printf("notification mail: agent %d not found: %v", agentID, err)
		return
	}
	if agent.User.Email == "" {
		return
	}
	if err := s.mailer.Send(agent.User.Email, subject, body); err != nil {
		log.Printf("notification mail to %s failed: %v", agent.User.Email, err)
	}
}

// trimWords truncates text to the first n words, appending an ellipsis
// when anything was cut.
func trimWords(text string, n int) string {
	words := strings.Fields(text)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
