package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"helpdesk/models"
	"helpdesk/services"
)

type KBHandler struct {
	kbService *services.KBService
}

func NewKBHandler(kbService *services.KBService) *KBHandler {
	return &KBHandler{kbService: kbService}
}

func (h *KBHandler) ListCategories(c echo.Context) error {
	categories, err := h.kbService.ListCategories()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch categories"})
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *KBHandler) CreateCategory(c echo.Context) error {
	var cat models.KBCategory
	if err := c.Bind(&cat); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := h.kbService.CreateCategory(&cat); err != nil {
		switch err {
		case services.ErrCategoryName:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create category"})
		}
	}
	return c.JSON(http.StatusCreated, cat)
}

func (h *KBHandler) DeleteCategory(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid category ID"})
	}
	if err := h.kbService.DeleteCategory(id); err != nil {
		switch err {
		case services.ErrCategoryNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete category"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "category deleted"})
}

// ListArticles serves the agent view, drafts included.
func (h *KBHandler) ListArticles(c echo.Context) error {
	articles, err := h.kbService.ListArticles(uintQuery(c, "category_id"), c.QueryParam("search"), true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch articles"})
	}
	return c.JSON(http.StatusOK, articles)
}

func (h *KBHandler) GetArticle(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid article ID"})
	}
	article, err := h.kbService.GetArticle(id)
	if err != nil {
		switch err {
		case services.ErrArticleNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch article"})
		}
	}
	return c.JSON(http.StatusOK, article)
}

func (h *KBHandler) CreateArticle(c echo.Context) error {
	var article models.KBArticle
	if err := c.Bind(&article); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := h.kbService.CreateArticle(&article); err != nil {
		switch err {
		case services.ErrArticleTitle:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create article"})
		}
	}
	return c.JSON(http.StatusCreated, article)
}

func (h *KBHandler) UpdateArticle(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid article ID"})
	}
	var article models.KBArticle
	if err := c.Bind(&article); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	article.ID = id
	if err := h.kbService.UpdateArticle(&article); err != nil {
		switch err {
		case services.ErrArticleTitle:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case services.ErrArticleNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update article"})
		}
	}
	return c.JSON(http.StatusOK, article)
}

func (h *KBHandler) DeleteArticle(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid article ID"})
	}
	if err := h.kbService.DeleteArticle(id); err != nil {
		switch err {
		case services.ErrArticleNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete article"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "article deleted"})
}
