package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"helpdesk/models"
	"helpdesk/services"
)

type NotificationHandler struct {
	notificationService *services.NotificationService
}

func NewNotificationHandler(notificationService *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notificationService: notificationService}
}

func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	agent := c.Get("agent").(*models.Agent)
	notifications, err := h.notificationService.List(agent.ID, intQuery(c, "limit"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch notifications"})
	}
	return c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	agent := c.Get("agent").(*models.Agent)
	count, err := h.notificationService.UnreadCount(agent.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to count notifications"})
	}
	return c.JSON(http.StatusOK, map[string]int64{"unread": count})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	agent := c.Get("agent").(*models.Agent)
	updated, err := h.notificationService.MarkAllRead(agent.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to mark notifications"})
	}
	return c.JSON(http.StatusOK, map[string]int64{"updated": updated})
}
