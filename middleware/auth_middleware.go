package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"helpdesk/models"
	"helpdesk/services"
)

// AuthMiddleware resolves the bearer token (header or, for websocket
// upgrades, query param) into the authenticated user and stores it on
// the context under "user".
func AuthMiddleware(authService *services.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			var tokenString string
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) != 2 || parts[0] != "Bearer" {
					return c.JSON(http.StatusUnauthorized, map[string]string{
						"error": "invalid authorization header",
					})
				}
				tokenString = parts[1]
			} else {
				tokenString = c.QueryParam("token")
				if tokenString == "" {
					return c.JSON(http.StatusUnauthorized, map[string]string{
						"error": "missing authorization token",
					})
				}
				tokenString = strings.TrimPrefix(tokenString, "Bearer ")
			}

			claims, err := authService.ValidateToken(tokenString)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "invalid token",
				})
			}
			user, err := authService.GetUser(claims.UserID)
			if err != nil {
				return c.JSON(http.StatusNotFound, map[string]string{
					"error": "user not found",
				})
			}

			c.Set("user", user)
			return next(c)
		}
	}
}

// AgentMiddleware requires the authenticated user to have an agent
// profile and stores it under "agent". Must run after AuthMiddleware.
func AgentMiddleware(agentService *services.AgentService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get("user").(*models.User)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}
			agent, err := agentService.GetAgentByUserID(user.ID)
			if err != nil {
				return c.JSON(http.StatusForbidden, map[string]string{
					"error": "agent access required",
				})
			}
			c.Set("agent", agent)
			return next(c)
		}
	}
}

// AdminMiddleware restricts a route group to admin users or admin-role
// agents. Must run after AuthMiddleware.
func AdminMiddleware(agentService *services.AgentService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := c.Get("user").(*models.User)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"error": "authentication required",
				})
			}
			if user.Type == "admin" {
				return next(c)
			}
			agent, err := agentService.GetAgentByUserID(user.ID)
			if err == nil && agent.Role == models.RoleAdmin {
				c.Set("agent", agent)
				return next(c)
			}
			return c.JSON(http.StatusForbidden, map[string]string{
				"error": "admin access required",
			})
		}
	}
}
