package notifications

import (
	"context"
	"sync"

	"chelagram/internal/middleware"

	"github.com/gofiber/websocket/v2"
)

// Hub tracks connected websocket clients by user and forwards Redis events to
// them. A user may hold several connections (multiple tabs/devices).
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[uint]map[*Client]struct{})}
}

// Register attaches a websocket connection for a user and returns its client.
func (h *Hub) Register(userID uint, conn *websocket.Conn) *Client {
	client := NewClient(h, conn, userID)

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*Client]struct{})
	}
	h.clients[userID][client] = struct{}{}
	h.mu.Unlock()

	middleware.ActiveWebSockets.Inc()
	return client
}

// Unregister detaches a client and closes its send channel.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	set, ok := h.clients[client.UserID]
	if ok {
		if _, present := set[client]; present {
			delete(set, client)
			close(client.Send)
			middleware.ActiveWebSockets.Dec()
		}
		if len(set) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	h.mu.Unlock()
}

// SendToUser delivers a payload to every connection the user currently holds.
func (h *Hub) SendToUser(userID uint, payload []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		c.TrySend(payload)
	}
}

// StartWiring subscribes the hub to the notifier's user channels so events
// published by the chat service reach connected clients.
func (h *Hub) StartWiring(ctx context.Context, n *Notifier) error {
	return n.StartUserSubscriber(ctx, func(channel, payload string) {
		userID := UserIDFromChannel(channel)
		if userID == 0 {
			return
		}
		h.SendToUser(userID, []byte(payload))
	})
}

// Shutdown closes every connected client.
func (h *Hub) Shutdown(_ context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for userID, set := range h.clients {
		for client := range set {
			close(client.Send)
			_ = client.Conn.Close()
			middleware.ActiveWebSockets.Dec()
		}
		delete(h.clients, userID)
	}
	return nil
}
