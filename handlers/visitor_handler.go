package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"helpdesk/models"
	"helpdesk/redis"
	"helpdesk/services"
)

// VisitorHandler is the unauthenticated surface behind the chat widget
// and the public help center. Visitors are identified by email, not by
// tokens.
type VisitorHandler struct {
	authService         *services.AuthService
	conversationService *services.ConversationService
	messageService      *services.MessageService
	ticketService       *services.TicketService
	ratingService       *services.RatingService
	routerService       *services.RouterService
	kbService           *services.KBService
	redis               *redis.RedisClient
	policy              services.Policy
}

func NewVisitorHandler(
	authService *services.AuthService,
	conversationService *services.ConversationService,
	messageService *services.MessageService,
	ticketService *services.TicketService,
	ratingService *services.RatingService,
	routerService *services.RouterService,
	kbService *services.KBService,
	redisClient *redis.RedisClient,
	policy services.Policy,
) *VisitorHandler {
	return &VisitorHandler{
		authService:         authService,
		conversationService: conversationService,
		messageService:      messageService,
		ticketService:       ticketService,
		ratingService:       ratingService,
		routerService:       routerService,
		kbService:           kbService,
		redis:               redisClient,
		policy:              policy,
	}
}

// StartConversation opens a conversation for a visitor and routes it to
// an agent under the configured policy. When no agent is eligible the
// conversation stays unassigned and the dispatcher broadcasts instead.
func (h *VisitorHandler) StartConversation(c echo.Context) error {
	var req struct {
		Email        string `json:"email"`
		Name         string `json:"name"`
		Subject      string `json:"subject"`
		Message      string `json:"message"`
		DepartmentID uint   `json:"department_id"`
		CurrentPage  string `json:"current_page"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email required"})
	}

	user, err := h.authService.FindOrCreateGuest(req.Email, req.Name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to resolve visitor"})
	}

	conv := models.Conversation{
		UserID:      &user.ID,
		Subject:     req.Subject,
		UserEmail:   req.Email,
		UserName:    req.Name,
		UserIP:      c.RealIP(),
		UserBrowser: c.Request().UserAgent(),
		CurrentPage: req.CurrentPage,
	}
	if req.DepartmentID != 0 {
		conv.DepartmentID = &req.DepartmentID
	}

	agent, err := h.routerService.SelectAgent(c.Request().Context(), req.DepartmentID, h.policy)
	if err != nil {
		log.Printf("agent selection failed: %v", err)
	}
	if agent != nil {
		conv.AgentID = &agent.ID
	}

	if err := h.conversationService.CreateConversation(&conv); err != nil {
		switch err {
		case services.ErrVisitorRequired, services.ErrInvalidStatus:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to start conversation"})
		}
	}

	if req.Message != "" {
		msg := models.Message{
			ConversationID: conv.ID,
			UserID:         &user.ID,
			Content:        req.Message,
		}
		if err := h.messageService.CreateMessage(&msg); err != nil {
			log.Printf("initial message failed for conversation %d: %v", conv.ID, err)
		}
	}

	return c.JSON(http.StatusCreated, conv)
}

func (h *VisitorHandler) SendMessage(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}
	var req struct {
		Email   string `json:"email"`
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	conv, err := h.conversationService.GetConversation(id)
	if err != nil || conv.UserEmail != req.Email {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "conversation not found"})
	}

	msg := models.Message{
		ConversationID: id,
		UserID:         conv.UserID,
		Content:        req.Content,
	}
	if err := h.messageService.CreateMessage(&msg); err != nil {
		switch err {
		case services.ErrEmptyMessage:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to send message"})
		}
	}
	return c.JSON(http.StatusCreated, msg)
}

// GetMessages polls new messages for the widget, excluding internal
// notes.
func (h *VisitorHandler) GetMessages(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}
	messages, err := h.messageService.ListMessages(id, uintQuery(c, "since_id"), intQuery(c, "limit"), 0)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch messages"})
	}

	visible := make([]models.Message, 0, len(messages))
	for _, m := range messages {
		if m.MessageType == models.MessageNote {
			continue
		}
		visible = append(visible, m)
	}
	return c.JSON(http.StatusOK, visible)
}

func (h *VisitorHandler) MarkRead(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}
	updated, err := h.messageService.MarkRead(id, services.ReaderUser)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to mark read"})
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"updated": updated})
}

func (h *VisitorHandler) SetTyping(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}
	var req struct {
		Typing bool `json:"typing"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := h.redis.SetTyping(context.Background(), id, "user", req.Typing); err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to set typing"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"typing": req.Typing})
}

// GetTyping reports whether the agent side is typing.
func (h *VisitorHandler) GetTyping(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}
	typing, err := h.redis.GetTyping(context.Background(), id, "agent")
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch typing"})
	}
	return c.JSON(http.StatusOK, map[string]bool{"typing": typing})
}

func (h *VisitorHandler) SubmitTicket(c echo.Context) error {
	var req struct {
		Email    string `json:"email"`
		Name     string `json:"name"`
		Subject  string `json:"subject"`
		Message  string `json:"message"`
		Priority string `json:"priority"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if req.Email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email required"})
	}

	user, err := h.authService.FindOrCreateGuest(req.Email, req.Name)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to resolve visitor"})
	}

	ticket := models.Ticket{
		UserID:    &user.ID,
		UserEmail: req.Email,
		Subject:   req.Subject,
		Priority:  req.Priority,
	}
	if err := h.ticketService.CreateTicket(&ticket); err != nil {
		switch err {
		case services.ErrTicketSubject, services.ErrTicketRequester, services.ErrInvalidPriority:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to create ticket"})
		}
	}

	if req.Message != "" {
		reply := models.TicketReply{
			TicketID: ticket.ID,
			UserID:   &user.ID,
			Content:  req.Message,
		}
		if err := h.ticketService.AddReply(&reply); err != nil {
			log.Printf("initial reply failed for ticket %d: %v", ticket.ID, err)
		}
	}

	return c.JSON(http.StatusCreated, ticket)
}

// ReplyTicket lets the requester answer on their own ticket, verified by
// email.
func (h *VisitorHandler) ReplyTicket(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid ticket ID"})
	}
	var req struct {
		Email   string `json:"email"`
		Content string `json:"content"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	ticket, err := h.ticketService.GetTicket(id)
	if err != nil || ticket.UserEmail != req.Email {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "ticket not found"})
	}

	reply := models.TicketReply{
		TicketID: id,
		UserID:   ticket.UserID,
		Content:  req.Content,
	}
	if err := h.ticketService.AddReply(&reply); err != nil {
		switch err {
		case services.ErrEmptyReply, services.ErrReplySenderNeeded:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to add reply"})
		}
	}
	return c.JSON(http.StatusCreated, reply)
}

func (h *VisitorHandler) SubmitRating(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}
	var req struct {
		Rating  int    `json:"rating"`
		Comment string `json:"comment"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	rating, err := h.ratingService.SubmitRating(id, req.Rating, req.Comment)
	if err != nil {
		switch err {
		case services.ErrInvalidScore:
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		case services.ErrAlreadyRated:
			return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
		case services.ErrConversationNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to submit rating"})
		}
	}
	return c.JSON(http.StatusCreated, rating)
}

// Public help center endpoints.

func (h *VisitorHandler) ListArticles(c echo.Context) error {
	articles, err := h.kbService.ListArticles(uintQuery(c, "category_id"), c.QueryParam("search"), false)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch articles"})
	}
	return c.JSON(http.StatusOK, articles)
}

// GetArticle serves a published article by slug and counts the view.
func (h *VisitorHandler) GetArticle(c echo.Context) error {
	slug := c.Param("slug")
	article, err := h.kbService.GetArticleBySlug(slug)
	if err != nil || article.Status != "published" {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "article not found"})
	}
	if err := h.kbService.IncrementViews(article.ID); err != nil {
		log.Printf("view count failed for article %d: %v", article.ID, err)
	}
	return c.JSON(http.StatusOK, article)
}

func (h *VisitorHandler) ArticleFeedback(c echo.Context) error {
	id, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid article ID"})
	}
	var req struct {
		Helpful bool `json:"helpful"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if err := h.kbService.RecordFeedback(id, req.Helpful); err != nil {
		switch err {
		case services.ErrArticleNotFound:
			return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
		default:
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to record feedback"})
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "feedback recorded"})
}

// History lists a visitor's prior conversations by email.
func (h *VisitorHandler) History(c echo.Context) error {
	email := c.QueryParam("email")
	if email == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email required"})
	}
	conversations, err := h.conversationService.UserConversations(email)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to fetch conversations"})
	}
	return c.JSON(http.StatusOK, conversations)
}
