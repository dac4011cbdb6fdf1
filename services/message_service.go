package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"helpdesk/events"
	"helpdesk/models"
)

var (
	ErrMessageNotFound   = errors.New("message not found")
	ErrEmptyMessage      = errors.New("message content required")
	ErrAmbiguousSender   = errors.New("message cannot have both a user and an agent sender")
	ErrInvalidReaderType = errors.New("reader type must be agent or user")
)

// Reader types for unread tracking.
const (
	ReaderAgent = "agent"
	ReaderUser  = "user"
)

type MessageService struct {
	db  *gorm.DB
	bus *events.Bus
}

func NewMessageService(db *gorm.DB, bus *events.Bus) *MessageService {
	return &MessageService{db: db, bus: bus}
}

// CreateMessage inserts a message, bumps the parent conversation's
// updated_at and publishes the new-message event. Messages are immutable
// once created except for the read flag.
func (s *MessageService) CreateMessage(msg *models.Message) error {
	if msg.Content == "" {
		return ErrEmptyMessage
	}
	if msg.UserID != nil && msg.AgentID != nil {
		return ErrAmbiguousSender
	}
	if msg.MessageType == "" {
		msg.MessageType = models.MessageText
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.First(&conv, msg.ConversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConversationNotFound
			}
			return err
		}
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&conv).UpdateColumn("updated_at", time.Now()).Error
	})
	if err != nil {
		return err
	}

	s.bus.Publish(events.Event{
		Type:           events.NewMessage,
		MessageID:      msg.ID,
		ConversationID: msg.ConversationID,
	})
	return nil
}

func (s *MessageService) GetMessage(id uint) (*models.Message, error) {
	var msg models.Message
	if err := s.db.First(&msg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &msg, nil
}

// ListMessages returns a conversation's messages in id order. sinceID
// supports incremental polling by the chat widget.
func (s *MessageService) ListMessages(conversationID, sinceID uint, limit, offset int) ([]models.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	query := s.db.Where("conversation_id = ?", conversationID)
	if sinceID != 0 {
		query = query.Where("id > ?", sinceID)
	}

	var messages []models.Message
	err := query.Order("id ASC").Limit(limit).Offset(offset).Find(&messages).Error
	return messages, err
}

// MarkRead flags the opposite party's messages as read: an agent reading
// marks visitor messages, a visitor reading marks agent messages. System
// messages carry no sender and are never touched.
func (s *MessageService) MarkRead(conversationID uint, readerType string) (int64, error) {
	query := s.db.Model(&models.Message{}).
		Where("conversation_id = ? AND is_read = ?", conversationID, false)

	switch readerType {
	case ReaderAgent:
		query = query.Where("user_id IS NOT NULL AND agent_id IS NULL")
	case ReaderUser:
		query = query.Where("agent_id IS NOT NULL AND user_id IS NULL")
	default:
		return 0, ErrInvalidReaderType
	}

	result := query.Update("is_read", true)
	return result.RowsAffected, result.Error
}

// UnreadCount counts the opposite party's unread messages, with the same
// scoping as MarkRead.
func (s *MessageService) UnreadCount(conversationID uint, readerType string) (int64, error) {
	query := s.db.Model(&models.Message{}).
		Where("conversation_id = ? AND is_read = ?", conversationID, false)

	switch readerType {
	case ReaderAgent:
		query = query.Where("user_id IS NOT NULL AND agent_id IS NULL")
	case ReaderUser:
		query = query.Where("agent_id IS NOT NULL AND user_id IS NULL")
	default:
		return 0, ErrInvalidReaderType
	}

	var count int64
	err := query.Count(&count).Error
	return count, err
}
