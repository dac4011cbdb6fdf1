package services

import (
	"errors"

	"gorm.io/gorm"

	"helpdesk/models"
)

var (
	ErrInvalidScore   = errors.New("rating must be between 1 and 5")
	ErrAlreadyRated   = errors.New("conversation already rated")
	ErrRatingNotFound = errors.New("rating not found")
)

type RatingService struct {
	db *gorm.DB
}

func NewRatingService(db *gorm.DB) *RatingService {
	return &RatingService{db: db}
}

// SubmitRating records a visitor rating for a conversation, attributing
// it to the agent assigned at submission time. One rating per
// conversation.
func (s *RatingService) SubmitRating(conversationID uint, score int, comment string) (*models.Rating, error) {
	if score < 1 || score > 5 {
		return nil, ErrInvalidScore
	}

	var rating models.Rating
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var conv models.Conversation
		if err := tx.First(&conv, conversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrConversationNotFound
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.Rating{}).
			Where("conversation_id = ?", conversationID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyRated
		}

		rating = models.Rating{
			ConversationID: conversationID,
			AgentID:        conv.AgentID,
			Score:          score,
			Comment:        comment,
		}
		return tx.Create(&rating).Error
	})
	if err != nil {
		return nil, err
	}
	return &rating, nil
}

func (s *RatingService) ConversationRating(conversationID uint) (*models.Rating, error) {
	var rating models.Rating
	err := s.db.Where("conversation_id = ?", conversationID).First(&rating).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRatingNotFound
		}
		return nil, err
	}
	return &rating, nil
}

// AgentAverage returns an agent's mean score and rating count. A zero
// count yields a zero average rather than an error.
func (s *RatingService) AgentAverage(agentID uint) (float64, int64, error) {
	var result struct {
		Avg   float64
		Count int64
	}
	err := s.db.Model(&models.Rating{}).
		Select("COALESCE(AVG(score), 0) AS avg, COUNT(*) AS count").
		Where("agent_id = ?", agentID).
		Scan(&result).Error
	if err != nil {
		return 0, 0, err
	}
	return result.Avg, result.Count, nil
}

func (s *RatingService) ListRatings(agentID uint, limit int) ([]models.Rating, error) {
	if limit <= 0 {
		limit = 50
	}
	query := s.db.Order("created_at DESC").Limit(limit)
	if agentID != 0 {
		query = query.Where("agent_id = ?", agentID)
	}
	var ratings []models.Rating
	err := query.Find(&ratings).Error
	return ratings, err
}
