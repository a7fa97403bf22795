package hub

import (
	"encoding/json"
	"sync"
)

// Event types pushed to connected clients.
const (
	EventFriendRequest = "friend_request"
	EventRequestAccept = "friend_request_accepted"
	EventDirectMessage = "direct_message"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client represents a single client connection for one user.
// It's essentially a channel that the SSE handler will listen to.
type Client chan []byte

// Hub manages the active connections of each user. A user may be connected
// from several devices at once.
type Hub struct {
	users map[uint]map[Client]bool
	mu    sync.RWMutex
}

// GlobalHub is the singleton instance of our Hub.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		users: make(map[uint]map[Client]bool),
	}
}

// Subscribe adds a new client connection for a user.
func (h *Hub) Subscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Client]bool)
	}
	h.users[userID][client] = true
}

// Unsubscribe removes a client connection of a user.
func (h *Hub) Unsubscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.users[userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the SSE handler to stop.
			if len(clients) == 0 {
				delete(h.users, userID)
			}
		}
	}
}

// NotifyUser sends an event to all of a user's connections. Users who are
// not connected simply miss the event; nothing is queued.
func (h *Hub) NotifyUser(userID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.users[userID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		return
	}

	for client := range clients {
		// Use a non-blocking send to prevent a slow client from blocking the hub.
		select {
		case client <- messageBytes:
		default:
			// Client channel is full, maybe they are disconnected or slow.
			// The unsubscribe logic will handle cleaning this up eventually.
		}
	}
}
