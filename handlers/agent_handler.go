package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"helpdesk/models"
	"helpdesk/services"
)

type AgentHandler struct {
	agentService  *services.AgentService
	ratingService *services.RatingService
}

func NewAgentHandler(agentService *services.AgentService, ratingService *services.RatingService) *AgentHandler {
	return &AgentHandler{agentService: agentService, ratingService: ratingService}
}

func (h *AgentHandler) ListAgents(c echo.Context) error {
	filter := services.AgentFilter{
		DepartmentID: uintQuery(c, "department_id"),
		Role:         c.QueryParam("role"),
		Status:       c.QueryParam("status"),
	}
	agents, err := h.agentService.ListAgents(filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch agents"})
	}
	return c.JSON(http.StatusOK, agents)
}

func (h *AgentHandler) GetAgent(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid agent ID"})
	}

	agent, err := h.agentService.GetAgent(id)
	if err != nil {
		switch err {
		case services.ErrAgentNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch agent"})
		}
	}

	openCount, _ := h.agentService.OpenCount(agent.ID)
	avg, count, _ := h.ratingService.AgentAverage(agent.ID)
	return c.JSON(http.StatusOK, map[string]interface{}{
		"agent":        agent,
		"open_count":   openCount,
		"rating_avg":   avg,
		"rating_count": count,
	})
}

func (h *AgentHandler) CreateAgent(c echo.Context) error {
	var agent models.Agent
	if err := c.Bind(&agent); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := h.agentService.CreateAgent(&agent); err != nil {
		switch err {
		case services.ErrAgentUserRequired:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create agent"})
		}
	}
	return c.JSON(http.StatusCreated, agent)
}

func (h *AgentHandler) UpdateAgent(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid agent ID"})
	}

	agent, err := h.agentService.GetAgent(id)
	if err != nil {
		switch err {
		case services.ErrAgentNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch agent"})
		}
	}

	if err := c.Bind(agent); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	agent.ID = id
	if err := h.agentService.UpdateAgent(agent); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update agent"})
	}
	return c.JSON(http.StatusOK, agent)
}

func (h *AgentHandler) DeleteAgent(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid agent ID"})
	}
	if err := h.agentService.DeleteAgent(id); err != nil {
		switch err {
		case services.ErrAgentNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete agent"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "agent deleted"})
}

// SetStatus updates the calling agent's own presence.
func (h *AgentHandler) SetStatus(c echo.Context) error {
	user := c.Get("user").(*models.User)
	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	if err := h.agentService.SetStatus(user.ID, req.Status); err != nil {
		switch err {
		case services.ErrInvalidAgentStatus:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case services.ErrAgentNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update status"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": req.Status})
}

func (h *AgentHandler) OnlineAgents(c echo.Context) error {
	agents, err := h.agentService.OnlineAgents(uintQuery(c, "department_id"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch agents"})
	}
	return c.JSON(http.StatusOK, agents)
}
