package services

import (
	"errors"

	"gorm.io/gorm"

	"helpdesk/models"
)

var (
	ErrArticleNotFound  = errors.New("article not found")
	ErrArticleTitle     = errors.New("article title required")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryName     = errors.New("category name required")
)

type KBService struct {
	db *gorm.DB
}

func NewKBService(db *gorm.DB) *KBService {
	return &KBService{db: db}
}

func (s *KBService) CreateCategory(cat *models.KBCategory) error {
	if cat.Name == "" {
		return ErrCategoryName
	}
	return s.db.Create(cat).Error
}

func (s *KBService) ListCategories() ([]models.KBCategory, error) {
	var categories []models.KBCategory
	err := s.db.Order("name ASC").Find(&categories).Error
	return categories, err
}

// DeleteCategory removes a category and detaches its articles rather
// than deleting them.
func (s *KBService) DeleteCategory(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var cat models.KBCategory
		if err := tx.First(&cat, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
		if err := tx.Model(&models.KBArticle{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&cat).Error
	})
}

func (s *KBService) CreateArticle(article *models.KBArticle) error {
	if article.Title == "" {
		return ErrArticleTitle
	}
	if article.Status == "" {
		article.Status = "published"
	}
	return s.db.Create(article).Error
}

func (s *KBService) GetArticle(id uint) (*models.KBArticle, error) {
	var article models.KBArticle
	if err := s.db.First(&article, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

func (s *KBService) GetArticleBySlug(slug string) (*models.KBArticle, error) {
	var article models.KBArticle
	if err := s.db.Where("slug = ?", slug).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, err
	}
	return &article, nil
}

// ListArticles returns published articles, optionally scoped to a
// category or matched against a search term. Drafts are only listed when
// includeDrafts is set (agent views).
func (s *KBService) ListArticles(categoryID uint, search string, includeDrafts bool) ([]models.KBArticle, error) {
	query := s.db.Order("title ASC")
	if !includeDrafts {
		query = query.Where("status = ?", "published")
	}
	if categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR content LIKE ?", like, like)
	}
	var articles []models.KBArticle
	err := query.Find(&articles).Error
	return articles, err
}

func (s *KBService) UpdateArticle(article *models.KBArticle) error {
	if article.Title == "" {
		return ErrArticleTitle
	}
	result := s.db.Model(&models.KBArticle{}).Where("id = ?", article.ID).Updates(map[string]interface{}{
		"category_id": article.CategoryID,
		"title":       article.Title,
		"slug":        article.Slug,
		"content":     article.Content,
		"status":      article.Status,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArticleNotFound
	}
	return nil
}

func (s *KBService) DeleteArticle(id uint) error {
	result := s.db.Delete(&models.KBArticle{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArticleNotFound
	}
	return nil
}

// IncrementViews bumps the view counter atomically in SQL; concurrent
// readers never lose counts to a read-modify-write race.
func (s *KBService) IncrementViews(id uint) error {
	return s.db.Model(&models.KBArticle{}).
		Where("id = ?", id).
		Update("views", gorm.Expr("views + 1")).Error
}

// RecordFeedback bumps the helpful counter for a reader vote.
func (s *KBService) RecordFeedback(id uint, helpful bool) error {
	column := "helpful_no"
	if helpful {
		column = "helpful_yes"
	}
	result := s.db.Model(&models.KBArticle{}).
		Where("id = ?", id).
		Update(column, gorm.Expr(column+" + 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrArticleNotFound
	}
	return nil
}
