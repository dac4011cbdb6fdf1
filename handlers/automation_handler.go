package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"helpdesk/models"
	"helpdesk/services"
)

type AutomationHandler struct {
	automationService *services.AutomationService
}

func NewAutomationHandler(automationService *services.AutomationService) *AutomationHandler {
	return &AutomationHandler{automationService: automationService}
}

func (h *AutomationHandler) ListAutomations(c echo.Context) error {
	automations, err := h.automationService.ListAutomations()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch automations"})
	}
	return c.JSON(http.StatusOK, automations)
}

func (h *AutomationHandler) GetAutomation(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid automation ID"})
	}
	automation, err := h.automationService.GetAutomation(id)
	if err != nil {
		switch err {
		case services.ErrAutomationNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch automation"})
		}
	}
	return c.JSON(http.StatusOK, automation)
}

func (h *AutomationHandler) CreateAutomation(c echo.Context) error {
	var automation models.Automation
	if err := c.Bind(&automation); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := h.automationService.CreateAutomation(&automation); err != nil {
		switch err {
		case services.ErrAutomationName, services.ErrInvalidTrigger, services.ErrInvalidAction:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create automation"})
		}
	}
	return c.JSON(http.StatusCreated, automation)
}

func (h *AutomationHandler) UpdateAutomation(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid automation ID"})
	}
	var automation models.Automation
	if err := c.Bind(&automation); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	automation.ID = id
	if err := h.automationService.UpdateAutomation(&automation); err != nil {
		switch err {
		case services.ErrAutomationName, services.ErrInvalidTrigger, services.ErrInvalidAction:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case services.ErrAutomationNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to update automation"})
		}
	}
	return c.JSON(http.StatusOK, automation)
}

func (h *AutomationHandler) DeleteAutomation(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid automation ID"})
	}
	if err := h.automationService.DeleteAutomation(id); err != nil {
		switch err {
		case services.ErrAutomationNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to delete automation"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "automation deleted"})
}
