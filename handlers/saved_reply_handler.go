package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"helpdesk/models"
	"helpdesk/services"
)

type SavedReplyHandler struct {
	savedReplyService *services.SavedReplyService
}

func NewSavedReplyHandler(savedReplyService *services.SavedReplyService) *SavedReplyHandler {
	return &SavedReplyHandler{savedReplyService: savedReplyService}
}

func (h *SavedReplyHandler) ListSavedReplies(c echo.Context) error {
	replies, err := h.savedReplyService.ListSavedReplies(c.QueryParam("search"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch saved replies"})
	}
	return c.JSON(http.StatusOK, replies)
}

func (h *SavedReplyHandler) CreateSavedReply(c echo.Context) error {
	var reply models.SavedReply
	if err := c.Bind(&reply); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := h.savedReplyService.CreateSavedReply(&reply); err != nil {
		switch err {
		case services.ErrSavedReplyContent:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create saved reply"})
		}
	}
	return c.JSON(http.StatusCreated, reply)
}

func (h *SavedReplyHandler) UpdateSavedReply(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid saved reply ID"})
	}
	var reply models.SavedReply
	if err := c.Bind(&reply); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	reply.ID = id
	if err := h.savedReplyService.UpdateSavedReply(&reply); err != nil {
		switch err {
		case services.ErrSavedReplyContent:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case services.ErrSavedReplyNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update saved reply"})
		}
	}
	return c.JSON(http.StatusOK, reply)
}

func (h *SavedReplyHandler) DeleteSavedReply(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid saved reply ID"})
	}
	if err := h.savedReplyService.DeleteSavedReply(id); err != nil {
		switch err {
		case services.ErrSavedReplyNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete saved reply"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "saved reply deleted"})
}
