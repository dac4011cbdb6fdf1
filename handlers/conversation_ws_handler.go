package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"helpdesk/events"
	"helpdesk/models"
	"helpdesk/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type BroadcastMessage struct {
	Data      map[string]interface{}
	ExceptIDs map[string]bool // client ids to skip
}

// ParticipantInfo describes a connected party for the presence list.
type ParticipantInfo struct {
	UserID  uint   `json:"user_id"`
	Name    string `json:"name"`
	IsAgent bool   `json:"is_agent"`
}

// ConversationClient is one websocket connection bound to a conversation
// room.
type ConversationClient struct {
	ID      string
	UserID  uint
	AgentID uint // zero for visitors
	Name    string
	Conn    *websocket.Conn
	Room    *ConversationRoom
	Send    chan map[string]interface{}
	ctx     context.Context
	cancel  context.CancelFunc
}

// ConversationRoom fans messages out to every connection watching one
// conversation.
type ConversationRoom struct {
	ConversationID uint
	Clients        map[string]*ConversationClient
	mu             sync.RWMutex
	Broadcast      chan *BroadcastMessage
	Unregister     chan *ConversationClient
	ctx            context.Context
	cancel         context.CancelFunc
	redis          *redis.Client
	manager        *ConversationRoomManager
}

type ConversationRoomManager struct {
	rooms map[uint]*ConversationRoom
	mu    sync.RWMutex
	redis *redis.Client
}

func NewConversationRoomManager(redisClient *redis.Client) *ConversationRoomManager {
	return &ConversationRoomManager{
		rooms: make(map[uint]*ConversationRoom),
		redis: redisClient,
	}
}

// Join registers the client with the conversation's room, creating the
// room on first use. Registration happens under the manager lock so a
// concurrent reap of an emptied room cannot strand the client.
func (m *ConversationRoomManager) Join(conversationID uint, client *ConversationClient) *ConversationRoom {
	m.mu.Lock()

	room, exists := m.rooms[conversationID]
	if !exists {
		ctx, cancel := context.WithCancel(context.Background())
		room = &ConversationRoom{
			ConversationID: conversationID,
			Clients:        make(map[string]*ConversationClient),
			Broadcast:      make(chan *BroadcastMessage, 256),
			Unregister:     make(chan *ConversationClient, 16),
			ctx:            ctx,
			cancel:         cancel,
			redis:          m.redis,
			manager:        m,
		}
		m.rooms[conversationID] = room
		go room.run()
	}

	room.mu.Lock()
	room.Clients[client.ID] = client
	room.mu.Unlock()
	client.Room = room

	m.mu.Unlock()

	room.addParticipantToRedis(client)
	return room
}

// release drops the room from the manager once its last client has
// unregistered and stops its run loop. Returns false when another
// client joined in the meantime.
func (m *ConversationRoomManager) release(room *ConversationRoom) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	room.mu.RLock()
	empty := len(room.Clients) == 0
	room.mu.RUnlock()
	if !empty {
		return false
	}

	delete(m.rooms, room.ConversationID)
	room.cancel()
	return true
}

// Room returns the room if any clients ever joined it; used by the event
// bridge to push db-originated messages into live rooms.
func (m *ConversationRoomManager) Room(conversationID uint) *ConversationRoom {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.rooms[conversationID]
}

func (room *ConversationRoom) run() {
	for {
		select {
		case <-room.ctx.Done():
			return

		case client := <-room.Unregister:
			room.mu.Lock()
			if _, ok := room.Clients[client.ID]; ok {
				delete(room.Clients, client.ID)
				close(client.Send)
			}
			empty := len(room.Clients) == 0
			room.mu.Unlock()

			room.removeParticipantFromRedis(client)

			if empty && room.manager.release(room) {
				return
			}

		case message := <-room.Broadcast:
			room.mu.RLock()
			clients := make([]*ConversationClient, 0, len(room.Clients))
			for _, client := range room.Clients {
				clients = append(clients, client)
			}
			room.mu.RUnlock()

			for _, client := range clients {
				if message.ExceptIDs != nil && message.ExceptIDs[client.ID] {
					continue
				}

				select {
				case client.Send <- message.Data:
				default:
					log.Printf("Client %s send buffer full, disconnecting", client.ID)
					room.Unregister <- client
				}
			}
		}
	}
}

func (room *ConversationRoom) presenceKey() string {
	return fmt.Sprintf("helpdesk:conversation:%d:online_users", room.ConversationID)
}

func (room *ConversationRoom) addParticipantToRedis(client *ConversationClient) {
	ctx := context.Background()

	info := ParticipantInfo{
		UserID:  client.UserID,
		Name:    client.Name,
		IsAgent: client.AgentID != 0,
	}

	data, err := json.Marshal(info)
	if err != nil {
		log.Printf("Failed to marshal participant info: %v", err)
		return
	}

	field := fmt.Sprintf("%d", client.UserID)
	if err := room.redis.HSet(ctx, room.presenceKey(), field, data).Err(); err != nil {
		log.Printf("Failed to add participant to Redis: %v", err)
		return
	}

	room.redis.Expire(ctx, room.presenceKey(), 24*time.Hour)
}

func (room *ConversationRoom) removeParticipantFromRedis(client *ConversationClient) {
	ctx := context.Background()

	// Another tab may still hold a connection for the same user.
	room.mu.RLock()
	hasOtherConnection := false
	for _, c := range room.Clients {
		if c.UserID == client.UserID && c.ID != client.ID {
			hasOtherConnection = true
			break
		}
	}
	room.mu.RUnlock()

	if !hasOtherConnection {
		field := fmt.Sprintf("%d", client.UserID)
		if err := room.redis.HDel(ctx, room.presenceKey(), field).Err(); err != nil {
			log.Printf("Failed to remove participant from Redis: %v", err)
		}
	}
}

func (room *ConversationRoom) GetParticipantsFromRedis() ([]ParticipantInfo, error) {
	result, err := room.redis.HGetAll(context.Background(), room.presenceKey()).Result()
	if err != nil {
		return nil, err
	}

	participants := make([]ParticipantInfo, 0, len(result))
	for _, data := range result {
		var info ParticipantInfo
		if err := json.Unmarshal([]byte(data), &info); err != nil {
			log.Printf("Failed to unmarshal participant info: %v", err)
			continue
		}
		participants = append(participants, info)
	}

	return participants, nil
}

// ConversationWSHandler streams a conversation live to agents and
// visitors. Inbound chat messages go through the message service so
// automations and notifications fire exactly as they do for the REST
// path; the bus bridge pushes them back out to every room member.
type ConversationWSHandler struct {
	messageService *services.MessageService
	agentService   *services.AgentService
	redis          *redis.Client
	roomManager    *ConversationRoomManager
}

func NewConversationWSHandler(messageService *services.MessageService, agentService *services.AgentService, redisClient *redis.Client) *ConversationWSHandler {
	return &ConversationWSHandler{
		messageService: messageService,
		agentService:   agentService,
		redis:          redisClient,
		roomManager:    NewConversationRoomManager(redisClient),
	}
}

// AttachBus subscribes the handler to new-message events so messages
// created over REST (or relayed from another instance) reach websocket
// clients too.
func (h *ConversationWSHandler) AttachBus(bus *events.Bus) {
	bus.Subscribe(events.NewMessage, func(e events.Event) {
		room := h.roomManager.Room(e.ConversationID)
		if room == nil {
			return
		}
		msg, err := h.messageService.GetMessage(e.MessageID)
		if err != nil {
			return
		}
		room.Broadcast <- &BroadcastMessage{Data: messagePayload(msg)}
	})
}

func messagePayload(msg *models.Message) map[string]interface{} {
	return map[string]interface{}{
		"type": "message",
		"payload": map[string]interface{}{
			"id":              msg.ID,
			"conversation_id": msg.ConversationID,
			"user_id":         msg.UserID,
			"agent_id":        msg.AgentID,
			"content":         msg.Content,
			"message_type":    msg.MessageType,
			"created_at":      msg.CreatedAt,
		},
	}
}

func (h *ConversationWSHandler) HandleWebSocket(c echo.Context) error {
	conversationID, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}
	user := c.Get("user").(*models.User)

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	var agentID uint
	if agent, err := h.agentService.GetAgentByUserID(user.ID); err == nil {
		agentID = agent.ID
	}

	ctx, cancel := context.WithCancel(context.Background())
	client := &ConversationClient{
		ID:      uuid.New().String(),
		UserID:  user.ID,
		AgentID: agentID,
		Name:    user.Name,
		Conn:    ws,
		Send:    make(chan map[string]interface{}, 256),
		ctx:     ctx,
		cancel:  cancel,
	}

	room := h.roomManager.Join(conversationID, client)

	h.sendInitData(client, room)
	h.broadcastPresence(room, client, "participant_joined")

	go h.writePump(client)
	h.readPump(client)

	return nil
}

func (h *ConversationWSHandler) readPump(client *ConversationClient) {
	defer func() {
		client.cancel()
		client.Room.Unregister <- client
		client.Conn.Close()

		h.broadcastPresence(client.Room, client, "participant_left")
	}()

	client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	client.Conn.SetPongHandler(func(string) error {
		client.Conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		var msg map[string]interface{}
		err := client.Conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		h.handleMessage(client, msg)
	}
}

func (h *ConversationWSHandler) writePump(client *ConversationClient) {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		client.Conn.Close()
	}()

	for {
		select {
		case <-client.ctx.Done():
			return

		case message, ok := <-client.Send:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := client.Conn.WriteJSON(message); err != nil {
				log.Printf("WriteJSON error: %v", err)
				return
			}

		case <-ticker.C:
			client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (h *ConversationWSHandler) sendInitData(client *ConversationClient, room *ConversationRoom) {
	participants, err := room.GetParticipantsFromRedis()
	if err != nil {
		log.Printf("Failed to get participants from Redis: %v", err)
		participants = []ParticipantInfo{}
	}

	client.Send <- map[string]interface{}{
		"type": "init",
		"payload": map[string]interface{}{
			"participants": participants,
		},
	}
}

func (h *ConversationWSHandler) handleMessage(client *ConversationClient, msg map[string]interface{}) {
	msgType, ok := msg["type"].(string)
	if !ok {
		return
	}

	payload, _ := msg["payload"].(map[string]interface{})

	switch msgType {
	case "message":
		h.handleChatMessage(client, payload)
	case "typing":
		h.handleTyping(client, payload)
	}
}

// handleChatMessage persists through the message service; the broadcast
// back to the room happens via the bus bridge, so REST and websocket
// senders share one code path.
func (h *ConversationWSHandler) handleChatMessage(client *ConversationClient, payload map[string]interface{}) {
	content, ok := payload["content"].(string)
	if !ok || content == "" {
		return
	}

	msg := models.Message{
		ConversationID: client.Room.ConversationID,
		Content:        content,
	}
	if client.AgentID != 0 {
		msg.AgentID = &client.AgentID
	} else {
		msg.UserID = &client.UserID
	}

	if err := h.messageService.CreateMessage(&msg); err != nil {
		log.Printf("Failed to save websocket message: %v", err)
	}
}

func (h *ConversationWSHandler) handleTyping(client *ConversationClient, payload map[string]interface{}) {
	isTyping, ok := payload["is_typing"].(bool)
	if !ok {
		return
	}

	client.Room.Broadcast <- &BroadcastMessage{
		Data: map[string]interface{}{
			"type": "typing",
			"payload": map[string]interface{}{
				"user_id":   client.UserID,
				"name":      client.Name,
				"is_agent":  client.AgentID != 0,
				"is_typing": isTyping,
			},
		},
		ExceptIDs: map[string]bool{client.ID: true},
	}
}

func (h *ConversationWSHandler) broadcastPresence(room *ConversationRoom, client *ConversationClient, event string) {
	room.Broadcast <- &BroadcastMessage{
		Data: map[string]interface{}{
			"type": event,
			"payload": map[string]interface{}{
				"user_id":  client.UserID,
				"name":     client.Name,
				"is_agent": client.AgentID != 0,
			},
		},
		ExceptIDs: map[string]bool{client.ID: true},
	}
}

// GetParticipants exposes room presence over HTTP for the agent
// dashboard.
func (h *ConversationWSHandler) GetParticipants(c echo.Context) error {
	conversationID, ok := idParam(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid conversation ID"})
	}

	key := fmt.Sprintf("helpdesk:conversation:%d:online_users", conversationID)
	result, err := h.redis.HGetAll(context.Background(), key).Result()
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "failed to fetch participants",
		})
	}

	participants := make([]ParticipantInfo, 0, len(result))
	for _, data := range result {
		var info ParticipantInfo
		if err := json.Unmarshal([]byte(data), &info); err != nil {
			log.Printf("Failed to unmarshal participant info: %v", err)
			continue
		}
		participants = append(participants, info)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"conversation_id": conversationID,
		"count":           len(participants),
		"participants":    participants,
	})
}
