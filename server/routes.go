package server

import (
	"github.com/labstack/echo/v4"
)

func (s *Server) SetupRoutes(authMiddleware, agentMiddleware, adminMiddleware, rateLimit echo.MiddlewareFunc) {
	e := s.Echo
	api := e.Group("/api/v1")

	// Auth routes (unprotected)
	auth := api.Group("/auth")
	{
		auth.POST("/register", s.AuthHandler.Register)
		auth.POST("/login", s.AuthHandler.Login)
		auth.POST("/refresh", s.AuthHandler.Refresh)
	}

	// Public widget and help center routes, throttled per IP
	public := api.Group("/public", rateLimit)
	{
		public.POST("/conversations", s.VisitorHandler.StartConversation)
		public.GET("/conversations", s.VisitorHandler.History)
		public.POST("/conversations/:id/messages", s.VisitorHandler.SendMessage)
		public.GET("/conversations/:id/messages", s.VisitorHandler.GetMessages)
		public.POST("/conversations/:id/read", s.VisitorHandler.MarkRead)
		public.POST("/conversations/:id/typing", s.VisitorHandler.SetTyping)
		public.GET("/conversations/:id/typing", s.VisitorHandler.GetTyping)
		public.POST("/conversations/:id/rating", s.VisitorHandler.SubmitRating)
		public.POST("/tickets", s.VisitorHandler.SubmitTicket)
		public.POST("/tickets/:id/replies", s.VisitorHandler.ReplyTicket)
		public.GET("/kb/articles", s.VisitorHandler.ListArticles)
		public.GET("/kb/articles/:slug", s.VisitorHandler.GetArticle)
		public.POST("/kb/articles/:id/feedback", s.VisitorHandler.ArticleFeedback)
	}

	// Authenticated routes
	protected := api.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/user", s.AuthHandler.Me)
		protected.GET("/conversations/:id/ws", s.WSHandler.HandleWebSocket)
	}

	// Agent console
	agent := protected.Group("", agentMiddleware)
	{
		agent.PUT("/agents/status", s.AgentHandler.SetStatus)
		agent.GET("/agents/online", s.AgentHandler.OnlineAgents)

		conversations := agent.Group("/conversations")
		{
			conversations.GET("", s.ConversationHandler.ListConversations)
			conversations.GET("/stats", s.ConversationHandler.Stats)
			conversations.GET("/:id", s.ConversationHandler.GetConversation)
			conversations.PUT("/:id/status", s.ConversationHandler.UpdateStatus)
			conversations.PUT("/:id/agent", s.ConversationHandler.AssignAgent)
			conversations.PUT("/:id/department", s.ConversationHandler.AssignDepartment)
			conversations.GET("/:id/messages", s.ConversationHandler.GetMessages)
			conversations.POST("/:id/messages", s.ConversationHandler.SendMessage)
			conversations.POST("/:id/read", s.ConversationHandler.MarkRead)
			conversations.GET("/:id/participants", s.WSHandler.GetParticipants)
		}

		tickets := agent.Group("/tickets")
		{
			tickets.GET("", s.TicketHandler.ListTickets)
			tickets.POST("", s.TicketHandler.CreateTicket)
			tickets.GET("/:id", s.TicketHandler.GetTicket)
			tickets.PUT("/:id/status", s.TicketHandler.UpdateStatus)
			tickets.PUT("/:id/priority", s.TicketHandler.UpdatePriority)
			tickets.PUT("/:id/agent", s.TicketHandler.AssignAgent)
			tickets.PUT("/:id/department", s.TicketHandler.AssignDepartment)
			tickets.POST("/:id/replies", s.TicketHandler.AddReply)
		}

		agent.GET("/notifications", s.NotificationHandler.ListNotifications)
		agent.GET("/notifications/unread", s.NotificationHandler.UnreadCount)
		agent.POST("/notifications/read", s.NotificationHandler.MarkAllRead)

		agent.GET("/saved-replies", s.SavedReplyHandler.ListSavedReplies)
		agent.POST("/saved-replies", s.SavedReplyHandler.CreateSavedReply)
		agent.PUT("/saved-replies/:id", s.SavedReplyHandler.UpdateSavedReply)
		agent.DELETE("/saved-replies/:id", s.SavedReplyHandler.DeleteSavedReply)

		agent.GET("/kb/categories", s.KBHandler.ListCategories)
		agent.GET("/kb/articles", s.KBHandler.ListArticles)
		agent.GET("/kb/articles/:id", s.KBHandler.GetArticle)

		agent.GET("/departments", s.DepartmentHandler.ListDepartments)
		agent.GET("/agents", s.AgentHandler.ListAgents)
		agent.GET("/agents/:id", s.AgentHandler.GetAgent)
	}

	// Admin-only management
	admin := protected.Group("/admin", adminMiddleware)
	{
		admin.POST("/agents", s.AgentHandler.CreateAgent)
		admin.PUT("/agents/:id", s.AgentHandler.UpdateAgent)
		admin.DELETE("/agents/:id", s.AgentHandler.DeleteAgent)

		admin.POST("/departments", s.DepartmentHandler.CreateDepartment)
		admin.PUT("/departments/:id", s.DepartmentHandler.UpdateDepartment)
		admin.DELETE("/departments/:id", s.DepartmentHandler.DeleteDepartment)

		admin.GET("/automations", s.AutomationHandler.ListAutomations)
		admin.POST("/automations", s.AutomationHandler.CreateAutomation)
		admin.GET("/automations/:id", s.AutomationHandler.GetAutomation)
		admin.PUT("/automations/:id", s.AutomationHandler.UpdateAutomation)
		admin.DELETE("/automations/:id", s.AutomationHandler.DeleteAutomation)

		admin.POST("/kb/categories", s.KBHandler.CreateCategory)
		admin.DELETE("/kb/categories/:id", s.KBHandler.DeleteCategory)
		admin.POST("/kb/articles", s.KBHandler.CreateArticle)
		admin.PUT("/kb/articles/:id", s.KBHandler.UpdateArticle)
		admin.DELETE("/kb/articles/:id", s.KBHandler.DeleteArticle)

		admin.DELETE("/conversations/:id", s.ConversationHandler.DeleteConversation)
		admin.DELETE("/tickets/:id", s.TicketHandler.DeleteTicket)
	}
}
