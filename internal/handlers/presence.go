package handlers

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"community-bot-backend/internal/engine"
	"community-bot-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PresenceHandler ingests presence transitions over a WebSocket and pushes
// profile updates back out. It implements engine.Broadcaster so every
// successful mutation reaches the affected user's connection.
type PresenceHandler struct {
	engine   *engine.Engine
	logger   *zap.Logger
	hub      *presenceHub
	stopOnce sync.Once
}

type presenceHub struct {
	clients    map[string]*websocket.Conn
	register   chan *wsClient
	unregister chan *wsClient
	push       chan *Message
	stop       chan struct{}
}

type wsClient struct {
	UserID string
	Conn   *websocket.Conn
}

// Message is the frame format in both directions. Inbound frames use Type
// PING or PRESENCE (with Status online/offline); outbound frames are PONG,
// PROFILE_UPDATE and ERROR.
type Message struct {
	ID     string      `json:"id,omitempty"`
	Type   string      `json:"type"`
	UserID string      `json:"user_id,omitempty"`
	Status string      `json:"status,omitempty"`
	Data   interface{} `json:"data,omitempty"`
}

func NewPresenceHandler(eng *engine.Engine, logger *zap.Logger) *PresenceHandler {
	hub := &presenceHub{
		clients:    make(map[string]*websocket.Conn),
		register:   make(chan *wsClient),
		unregister: make(chan *wsClient),
		push:       make(chan *Message, 100),
		stop:       make(chan struct{}),
	}

	h := &PresenceHandler{engine: eng, logger: logger, hub: hub}
	go hub.run(logger)
	return h
}

// Stop shuts the hub loop down. Idempotent; called once HTTP has drained so
// no new connections arrive.
func (h *PresenceHandler) Stop() {
	h.stopOnce.Do(func() { close(h.hub.stop) })
}

func (h *PresenceHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", zap.String("user", userID), zap.Error(err))
		return
	}

	client := &wsClient{UserID: userID, Conn: conn}
	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Warn("websocket read error", zap.String("user", userID), zap.Error(err))
			}
			break
		}
		h.handleMessage(client, &msg)
	}
}

func (h *PresenceHandler) handleMessage(client *wsClient, msg *Message) {
	switch msg.Type {
	case "PING":
		h.send(client.UserID, &Message{Type: "PONG"})
	case "PRESENCE":
		if msg.Status != "online" && msg.Status != "offline" {
			h.send(client.UserID, &Message{Type: "ERROR", Data: "status must be online or offline"})
			return
		}
		if err := h.engine.SetPresence(client.UserID, msg.Status == "online"); err != nil {
			h.logger.Warn("presence update failed", zap.String("user", client.UserID), zap.Error(err))
			h.send(client.UserID, &Message{Type: "ERROR", Data: "presence update failed"})
		}
	default:
		h.send(client.UserID, &Message{Type: "ERROR", Data: "unknown message type"})
	}
}

// ProfileUpdated implements engine.Broadcaster. Non-blocking: a full push
// buffer drops the frame rather than stalling a mutation.
func (h *PresenceHandler) ProfileUpdated(userID string, profile *models.ProfileView) {
	msg := &Message{
		ID:     uuid.NewString(),
		Type:   "PROFILE_UPDATE",
		UserID: userID,
		Data:   profile,
	}
	select {
	case h.hub.push <- msg:
	default:
		h.logger.Warn("profile push buffer full, dropping update", zap.String("user", userID))
	}
}

func (h *PresenceHandler) send(userID string, msg *Message) {
	msg.ID = uuid.NewString()
	msg.UserID = userID
	select {
	case h.hub.push <- msg:
	default:
		h.logger.Debug("push buffer full, dropping frame",
			zap.String("user", userID), zap.String("type", msg.Type))
	}
}

func (hub *presenceHub) run(logger *zap.Logger) {
	for {
		select {
		case <-hub.stop:
			for _, conn := range hub.clients {
				conn.Close()
			}
			return

		case client := <-hub.register:
			hub.clients[client.UserID] = client.Conn
			logger.Info("websocket client connected", zap.String("user", client.UserID))

		case client := <-hub.unregister:
			if conn, ok := hub.clients[client.UserID]; ok && conn == client.Conn {
				delete(hub.clients, client.UserID)
				logger.Info("websocket client disconnected", zap.String("user", client.UserID))
			}

		case msg := <-hub.push:
			if conn, ok := hub.clients[msg.UserID]; ok {
				if err := conn.WriteJSON(msg); err != nil {
					logger.Warn("websocket write failed", zap.String("user", msg.UserID), zap.Error(err))
				}
			}
		}
	}
}
