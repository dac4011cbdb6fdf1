package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"helpdesk/models"
	"helpdesk/services"
)

type ConversationHandler struct {
	conversationService *services.ConversationService
	messageService      *services.MessageService
}

func NewConversationHandler(conversationService *services.ConversationService, messageService *services.MessageService) *ConversationHandler {
	return &ConversationHandler{
		conversationService: conversationService,
		messageService:      messageService,
	}
}

func (h *ConversationHandler) ListConversations(c echo.Context) error {
	filter := services.ConversationFilter{
		Status:       c.QueryParam("status"),
		DepartmentID: uintQuery(c, "department_id"),
		AgentID:      uintQuery(c, "agent_id"),
		Source:       c.QueryParam("source"),
		Search:       c.QueryParam("search"),
		OrderBy:      c.QueryParam("orderby"),
		Order:        c.QueryParam("order"),
		Page:         intQuery(c, "page"),
		PerPage:      intQuery(c, "per_page"),
	}

	conversations, total, err := h.conversationService.ListConversations(filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch conversations"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversations": conversations,
		"total":         total,
	})
}

func (h *ConversationHandler) GetConversation(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}

	conv, err := h.conversationService.GetConversation(id)
	if err != nil {
		switch err {
		case services.ErrConversationNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch conversation"})
		}
	}
	return c.JSON(http.StatusOK, conv)
}

func (h *ConversationHandler) UpdateStatus(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.conversationService.UpdateStatus(id, req.Status); err != nil {
		switch err {
		case services.ErrInvalidStatus:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case services.ErrConversationNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update status"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

func (h *ConversationHandler) AssignAgent(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}
	var req struct {
		AgentID uint `json:"agent_id"`
	}
	if err := c.Bind(&req); err != nil || req.AgentID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.conversationService.AssignAgent(id, req.AgentID); err != nil {
		switch err {
		case services.ErrConversationNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to assign agent"})
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"agent_id": req.AgentID})
}

func (h *ConversationHandler) AssignDepartment(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}
	var req struct {
		DepartmentID uint `json:"department_id"`
	}
	if err := c.Bind(&req); err != nil || req.DepartmentID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.conversationService.AssignDepartment(id, req.DepartmentID); err != nil {
		switch err {
		case services.ErrConversationNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to assign department"})
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"department_id": req.DepartmentID})
}

func (h *ConversationHandler) DeleteConversation(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}
	if err := h.conversationService.DeleteConversation(id); err != nil {
		switch err {
		case services.ErrConversationNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete conversation"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "conversation deleted"})
}

func (h *ConversationHandler) GetMessages(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}
	messages, err := h.messageService.ListMessages(id, uintQuery(c, "since_id"), intQuery(c, "limit"), intQuery(c, "offset"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch messages"})
	}
	return c.JSON(http.StatusOK, messages)
}

// SendMessage posts an agent reply into the conversation.
func (h *ConversationHandler) SendMessage(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}
	agent := c.Get("agent").(*models.Agent)

	var req struct {
		Content     string `json:"content"`
		MessageType string `json:"message_type"`
		Attachments string `json:"attachments"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	msg := models.Message{
		ConversationID: id,
		AgentID:        &agent.ID,
		Content:        req.Content,
		MessageType:    req.MessageType,
		Attachments:    req.Attachments,
	}
	if err := h.messageService.CreateMessage(&msg); err != nil {
		switch err {
		case services.ErrEmptyMessage:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case services.ErrConversationNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to send message"})
		}
	}
	return c.JSON(http.StatusCreated, msg)
}

// MarkRead flags the visitor's messages as read by the agent.
func (h *ConversationHandler) MarkRead(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}
	updated, err := h.messageService.MarkRead(id, services.ReaderAgent)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to mark read"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"updated": updated})
}

// Stats reports conversation counts per status for the dashboard.
func (h *ConversationHandler) Stats(c echo.Context) error {
	stats := map[string]int64{}
	for _, status := range []string{
		models.ConversationOpen,
		models.ConversationPending,
		models.ConversationResolved,
		models.ConversationArchived,
	} {
		count, err := h.conversationService.CountByStatus(status)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch stats"})
		}
		stats[status] = count
	}
	return c.JSON(http.StatusOK, stats)
}
