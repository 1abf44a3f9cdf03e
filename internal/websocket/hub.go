package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Event kinds pushed to connected browser widgets.
const (
	TypeLogout      = "logout"
	TypeCartUpdated = "cart_updated"
)

// Message is a notification pushed to all connected clients. The logout
// event deliberately carries no payload.
type Message struct {
	Type  string         `json:"type"`
	Extra map[string]any `json:"extra,omitempty"`
}

// Hub maintains the set of connected event-socket clients. It lets the
// header badge and the chatbot react to session and cart changes
// without any widget polling another.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

// Unregister removes a client and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// Broadcast sends a message to every connected client. Clients whose
// buffers are full miss the message rather than blocking the rest.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal broadcast", "error", err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
