package websocket

import (
	"encoding/json"
	"sync"

	"github.com/Ahmed2300/triptracker/pkg/logger"
)

// Hub maintains the set of connected clients and pushes ride updates to them.
// It is the realtime surface customers and drivers listen on: customers
// subscribe to their ride's topic, drivers to the pending feed and regions.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     *logger.Logger
}

// Message is the envelope for every event pushed to clients
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// NewHub creates a new hub
func NewHub(log *logger.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     log,
	}
}

// Run processes register/unregister events until the process exits
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			h.logger.Info("Client registered",
				logger.String("client_id", client.ID),
				logger.String("user_type", client.UserType),
			)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.Send)
			}
			h.mu.Unlock()
			h.logger.Info("Client unregistered",
				logger.String("client_id", client.ID),
			)
		}
	}
}

// Register registers a new client
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister unregisters a client
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastToTopic sends a message to every client subscribed to a topic.
// Ride updates go to "ride:<id>", pending-feed announcements to region
// topics like "region:9q8yy".
func (h *Hub) BroadcastToTopic(topic string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal topic message", logger.Err(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.IsSubscribed(topic) {
			client.trySend(data, h.logger)
		}
	}
}

// BroadcastToType sends a message to every client of a user type
// ("customer", "driver" or "dashboard")
func (h *Hub) BroadcastToType(userType string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal message", logger.Err(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for client := range h.clients {
		if client.UserType == userType {
			if client.trySend(data, h.logger) {
				count++
			}
		}
	}

	h.logger.Debug("Message broadcast to user type",
		logger.String("user_type", userType),
		logger.Int("count", count),
	)
}

// SendToUser sends a message to every connection a user currently holds
func (h *Hub) SendToUser(userID string, msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("Failed to marshal message", logger.Err(err))
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		if client.UserID == userID {
			client.trySend(data, h.logger)
		}
	}
}

// ActiveConnections returns the number of connected clients
func (h *Hub) ActiveConnections() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
