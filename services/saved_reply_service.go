package services

import (
	"errors"

	"gorm.io/gorm"

	"helpdesk/models"
)

var (
	ErrSavedReplyNotFound = errors.New("saved reply not found")
	ErrSavedReplyContent  = errors.New("saved reply content required")
)

type SavedReplyService struct {
	db *gorm.DB
}

func NewSavedReplyService(db *gorm.DB) *SavedReplyService {
	return &SavedReplyService{db: db}
}

func (s *SavedReplyService) CreateSavedReply(reply *models.SavedReply) error {
	if reply.Content == "" {
		return ErrSavedReplyContent
	}
	return s.db.Create(reply).Error
}

func (s *SavedReplyService) GetSavedReply(id uint) (*models.SavedReply, error) {
	var reply models.SavedReply
	if err := s.db.First(&reply, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSavedReplyNotFound
		}
		return nil, err
	}
	return &reply, nil
}

// ListSavedReplies optionally filters by a search term over title,
// shortcut and content. Agents use this for the slash-command picker.
func (s *SavedReplyService) ListSavedReplies(search string) ([]models.SavedReply, error) {
	query := s.db.Order("title ASC")
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR shortcut LIKE ? OR content LIKE ?", like, like, like)
	}
	var replies []models.SavedReply
	err := query.Find(&replies).Error
	return replies, err
}

func (s *SavedReplyService) UpdateSavedReply(reply *models.SavedReply) error {
	if reply.Content == "" {
		return ErrSavedReplyContent
	}
	result := s.db.Model(&models.SavedReply{}).Where("id = ?", reply.ID).Updates(map[string]interface{}{
		"title":    reply.Title,
		"shortcut": reply.Shortcut,
		"content":  reply.Content,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSavedReplyNotFound
	}
	return nil
}

func (s *SavedReplyService) DeleteSavedReply(id uint) error {
	result := s.db.Delete(&models.SavedReply{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrSavedReplyNotFound
	}
	return nil
}
