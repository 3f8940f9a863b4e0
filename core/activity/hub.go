// Package activity implements the live activity feed: a websocket hub
// broadcasting play, like and follow events to every connected client.
package activity

import (
	"encoding/json"
	"sync"
	"time"

	"musewave/logger"
)

// EventType identifies what happened.
type EventType string

const (
	EventPlay   EventType = "play"
	EventLike   EventType = "like"
	EventFollow EventType = "follow"
)

// Event is one feed entry.
type Event struct {
	Type         EventType `json:"type"`
	UserID       int64     `json:"userId"`
	Username     string    `json:"username,omitempty"`
	TrackID      int64     `json:"trackId,omitempty"`
	TrackTitle   string    `json:"trackTitle,omitempty"`
	TargetUserID int64     `json:"targetUserId,omitempty"`
	Timestamp    int64     `json:"timestamp"`
}

// Hub fans events out to all connected clients. Single feed, no rooms.
type Hub struct {
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte

	mu       sync.RWMutex
	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates the hub. Call Run in a goroutine before registering clients.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 256),
		done:       make(chan struct{}),
	}
}

// Run is the hub main loop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case msg := <-h.broadcast:
			h.broadcastMessage(msg)

		case <-h.done:
			h.cleanup()
			return
		}
	}
}

// Stop shuts the hub down and closes every client send channel. Safe to call
// more than once.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

// Register adds a client to the feed. Returns immediately once the hub has
// stopped, so pump goroutines tearing down during shutdown never hang.
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

// Unregister removes a client. Like Register, it does not block after Stop.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Publish broadcasts an event to every connected client. Non-blocking for the
// caller; a full hub queue drops the event rather than stalling the request
// path that produced it.
func (h *Hub) Publish(event *Event) {
	event.Timestamp = time.Now().UnixMilli()
	data, err := json.Marshal(event)
	if err != nil {
		logger.Warn("failed to encode activity event", logger.ErrorField(err))
		return
	}

	select {
	case h.broadcast <- data:
	default:
		logger.Warn("activity feed queue full, event dropped", logger.String("type", string(event.Type)))
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	h.mu.Unlock()

	logger.Info("activity client connected", logger.Int64("user", client.UserID))
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
		logger.Info("activity client disconnected", logger.Int64("user", client.UserID))
	}
}

func (h *Hub) broadcastMessage(msg []byte) {
	h.mu.RLock()
	clientList := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clientList = append(clientList, client)
	}
	h.mu.RUnlock()

	for _, client := range clientList {
		select {
		case client.send <- msg:
		default:
			// Slow consumer, drop the connection. Runs on the hub
			// goroutine, so unregister directly instead of going back
			// through the channel Run is not draining right now.
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) cleanup() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		close(client.send)
	}
	h.clients = make(map[*Client]bool)
}
