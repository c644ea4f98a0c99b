package chatws

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/abhishekjoshi1998/EduPayout/internal/metrics"
	"github.com/abhishekjoshi1998/EduPayout/internal/models"
	"github.com/abhishekjoshi1998/EduPayout/internal/services"
	websocket "github.com/gofiber/contrib/websocket"
)

const sendTimeout = 10 * time.Second

// Hub fans chat messages out to every open connection of the users involved.
// All client bookkeeping happens on the Run goroutine.
type Hub struct {
	clients    map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan delivery
	direct     chan directFrame
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	send   chan []byte
}

type sender interface {
	SendMessage(ctx context.Context, actor services.Actor, mentorID int64, content string) (*services.ChatDelivery, error)
}

type Frame struct {
	Type     string              `json:"type"`
	MentorID int64               `json:"mentor_id,omitempty"`
	Message  *models.ChatMessage `json:"message,omitempty"`
	Error    string              `json:"error,omitempty"`
}

type incomingFrame struct {
	Type     string `json:"type"`
	MentorID int64  `json:"mentor_id"`
	Content  string `json:"content"`
}

type delivery struct {
	payload []byte
	userIDs []int64
}

type directFrame struct {
	client  *Client
	payload []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan delivery, 64),
		direct:     make(chan directFrame, 16),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			set, ok := h.clients[client.userID]
			if !ok {
				set = make(map[*Client]struct{})
				h.clients[client.userID] = set
			}
			set[client] = struct{}{}
			metrics.WebsocketClients.Inc()
		case client := <-h.unregister:
			h.remove(client)
		case d := <-h.broadcast:
			for _, userID := range d.userIDs {
				h.sendToUser(userID, d.payload)
			}
		case f := <-h.direct:
			if _, ok := h.clients[f.client.userID][f.client]; ok {
				h.sendToClient(f.client, f.payload)
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// Publish pushes a stored message to its sender and every recipient.
func (h *Hub) Publish(d *services.ChatDelivery) {
	if d == nil || d.Message == nil {
		return
	}
	payload, err := json.Marshal(Frame{
		Type:     "message",
		MentorID: d.Message.MentorID,
		Message:  d.Message,
	})
	if err != nil {
		log.Printf("chat hub encode message: %v", err)
		return
	}

	userIDs := make([]int64, 0, len(d.RecipientIDs)+1)
	userIDs = append(userIDs, d.Message.SenderID)
	for _, id := range d.RecipientIDs {
		if id != d.Message.SenderID {
			userIDs = append(userIDs, id)
		}
	}
	h.broadcast <- delivery{payload: payload, userIDs: userIDs}
}

func (h *Hub) remove(client *Client) {
	set, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, exists := set[client]; exists {
		delete(set, client)
		close(client.send)
		metrics.WebsocketClients.Dec()
	}
	if len(set) == 0 {
		delete(h.clients, client.userID)
	}
}

func (h *Hub) sendToUser(userID int64, payload []byte) {
	set, ok := h.clients[userID]
	if !ok {
		return
	}

	for client := range set {
		h.sendToClient(client, payload)
	}
}

func (h *Hub) sendToClient(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		// slow consumer
		h.remove(client)
	}
}

func (c *Client) ReadPump(service sender, role string) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	actor := services.Actor{UserID: c.userID, Role: role}
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming incomingFrame
		if err := json.Unmarshal(payload, &incoming); err != nil {
			writeError(c, "invalid message payload")
			continue
		}
		if incoming.Type != "message" {
			writeError(c, "unsupported message type")
			continue
		}
		if actor.IsAdmin() && incoming.MentorID <= 0 {
			writeError(c, "invalid mentor id")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		d, err := service.SendMessage(ctx, actor, incoming.MentorID, incoming.Content)
		cancel()
		if err != nil {
			writeError(c, "failed to send message")
			continue
		}
		c.hub.Publish(d)
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func writeError(client *Client, message string) {
	payload, err := json.Marshal(Frame{Type: "error", Error: message})
	if err != nil {
		return
	}
	client.hub.direct <- directFrame{client: client, payload: payload}
}
