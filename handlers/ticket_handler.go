package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"helpdesk/models"
	"helpdesk/services"
)

type TicketHandler struct {
	ticketService *services.TicketService
}

func NewTicketHandler(ticketService *services.TicketService) *TicketHandler {
	return &TicketHandler{ticketService: ticketService}
}

func (h *TicketHandler) ListTickets(c echo.Context) error {
	filter := services.TicketFilter{
		Status:          c.QueryParam("status"),
		Priority:        c.QueryParam("priority"),
		AssignedAgentID: uintQuery(c, "agent_id"),
		DepartmentID:    uintQuery(c, "department_id"),
		Search:          c.QueryParam("search"),
		OrderBy:         c.QueryParam("orderby"),
		Order:           c.QueryParam("order"),
		Page:            intQuery(c, "page"),
		PerPage:         intQuery(c, "per_page"),
	}

	tickets, total, err := h.ticketService.ListTickets(filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch tickets"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tickets": tickets,
		"total":   total,
	})
}

func (h *TicketHandler) GetTicket(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid ticket ID"})
	}

	ticket, err := h.ticketService.GetTicket(id)
	if err != nil {
		switch err {
		case services.ErrTicketNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch ticket"})
		}
	}

	replies, err := h.ticketService.Replies(id, true)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch replies"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"ticket":  ticket,
		"replies": replies,
	})
}

func (h *TicketHandler) CreateTicket(c echo.Context) error {
	var ticket models.Ticket
	if err := c.Bind(&ticket); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := h.ticketService.CreateTicket(&ticket); err != nil {
		switch err {
		case services.ErrTicketSubject, services.ErrTicketRequester,
			services.ErrInvalidStatus, services.ErrInvalidPriority:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create ticket"})
		}
	}
	return c.JSON(http.StatusCreated, ticket)
}

func (h *TicketHandler) UpdateStatus(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid ticket ID"})
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.ticketService.UpdateStatus(id, req.Status); err != nil {
		switch err {
		case services.ErrInvalidStatus:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case services.ErrTicketNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update status"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

func (h *TicketHandler) UpdatePriority(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid ticket ID"})
	}
	var req struct {
		Priority string `json:"priority"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.ticketService.UpdatePriority(id, req.Priority); err != nil {
		switch err {
		case services.ErrInvalidPriority:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case services.ErrTicketNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update priority"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"priority": req.Priority})
}

func (h *TicketHandler) AssignAgent(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid ticket ID"})
	}
	var req struct {
		AgentID uint `json:"agent_id"`
	}
	if err := c.Bind(&req); err != nil || req.AgentID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.ticketService.AssignAgent(id, req.AgentID); err != nil {
		switch err {
		case services.ErrTicketNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to assign agent"})
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"agent_id": req.AgentID})
}

func (h *TicketHandler) AssignDepartment(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid ticket ID"})
	}
	var req struct {
		DepartmentID uint `json:"department_id"`
	}
	if err := c.Bind(&req); err != nil || req.DepartmentID == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.ticketService.AssignDepartment(id, req.DepartmentID); err != nil {
		switch err {
		case services.ErrTicketNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to assign department"})
		}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"department_id": req.DepartmentID})
}

func (h *TicketHandler) DeleteTicket(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid ticket ID"})
	}
	if err := h.ticketService.DeleteTicket(id); err != nil {
		switch err {
		case services.ErrTicketNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete ticket"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "ticket deleted"})
}

// AddReply posts an agent reply or internal note to a ticket.
func (h *TicketHandler) AddReply(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid ticket ID"})
	}
	agent := c.Get("agent").(*models.Agent)

	var req struct {
		Content     string `json:"content"`
		Attachments string `json:"attachments"`
		IsNote      bool   `json:"is_note"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	reply := models.TicketReply{
		TicketID:    id,
		AgentID:     &agent.ID,
		Content:     req.Content,
		Attachments: req.Attachments,
		IsNote:      req.IsNote,
	}
	if err := h.ticketService.AddReply(&reply); err != nil {
		switch err {
		case services.ErrEmptyReply:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case services.ErrTicketNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to add reply"})
		}
	}
	return c.JSON(http.StatusCreated, reply)
}
