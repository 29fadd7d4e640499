package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"hatstore-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebSocketHandler streams spin results to connected clients.
type WebSocketHandler struct {
	hub    *WebSocketHub
	logger zerolog.Logger
}

type WebSocketHub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message
}

type Client struct {
	UserID int64
	Conn   *websocket.Conn
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewWebSocketHandler(logger zerolog.Logger) *WebSocketHandler {
	hub := &WebSocketHub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan *Message, 100),
	}

	go hub.run()

	return &WebSocketHandler{
		hub:    hub,
		logger: logger.With().Str("component", "ws").Logger(),
	}
}

// BroadcastSpin queues a spin result for all connected clients. Never
// blocks: when the queue is full the result is dropped.
func (h *WebSocketHandler) BroadcastSpin(result *models.SpinResult) {
	msg := &Message{Type: "SPIN_RESULT", Data: result.Public()}
	select {
	case h.hub.broadcast <- msg:
	default:
		h.logger.Warn().Msg("Spin broadcast queue full, dropping")
	}
}

func (h *WebSocketHandler) HandleWebSocket(c *gin.Context) {
	userID := c.GetInt64("user_id")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn().Err(err).Msg("Failed to upgrade to WebSocket")
		return
	}

	client := &Client{
		UserID: userID,
		Conn:   conn,
	}

	h.hub.register <- client

	defer func() {
		h.hub.unregister <- client
		conn.Close()
	}()

	for {
		var msg Message
		err := conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug().Err(err).Msg("WebSocket closed")
			}
			break
		}

		if msg.Type == "PING" {
			h.sendPong(client)
		}
	}
}

func (h *WebSocketHandler) sendPong(client *Client) {
	msg := Message{
		Type: "PONG",
		Data: gin.H{"timestamp": time.Now().Unix()},
	}

	client.Conn.WriteJSON(msg)
}

func (hub *WebSocketHub) run() {
	for {
		select {
		case client := <-hub.register:
			hub.clients[client] = true
		case client := <-hub.unregister:
			delete(hub.clients, client)
		case msg := <-hub.broadcast:
			for client := range hub.clients {
				if err := client.Conn.WriteJSON(msg); err != nil {
					client.Conn.Close()
					delete(hub.clients, client)
				}
			}
		}
	}
}
