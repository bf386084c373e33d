// Package ws implements the real-time delivery path for order chats. Rooms are
// keyed by chat id; the database remains the durable message log, so delivery
// here is best-effort and reconnection plus a REST refetch is the recovery path.
package ws

import (
	"log"
	"sync"
	"time"
)

// Event is the wire format pushed to connected clients
type Event struct {
	Type    string          `json:"type"` // "message" or "read"
	ChatID  uint            `json:"chat_id"`
	Message *MessagePayload `json:"message,omitempty"`
	UserID  uint            `json:"user_id,omitempty"` // reader id on "read" events
}

// MessagePayload mirrors the stored chat message fields that clients render
type MessagePayload struct {
	Sender    uint      `json:"sender"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Client is one connected socket belonging to an authenticated user. A user may
// hold several connections (multiple tabs); each is its own Client.
type Client struct {
	UserID uint
	send   chan Event
	closed bool
	mu     sync.Mutex
}

// NewClient creates a client with a buffered outbound queue
func NewClient(userID uint) *Client {
	return &Client{
		UserID: userID,
		send:   make(chan Event, 32),
	}
}

// Send returns the channel the write pump drains
func (c *Client) Send() <-chan Event {
	return c.send
}

// deliver enqueues an event without ever blocking the hub. A client too slow to
// drain its queue loses the event; the store still has it.
func (c *Client) deliver(event Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- event:
	default:
		log.Printf("Dropping event for slow websocket client (user=%d)", c.UserID)
	}
}

// Close marks the client closed and releases its queue
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Hub routes events to the clients joined to each chat room
type Hub struct {
	mu    sync.RWMutex
	rooms map[uint]map[*Client]bool
}

var defaultHub = NewHub()

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[uint]map[*Client]bool),
	}
}

// GetHub returns the process-wide hub instance
func GetHub() *Hub {
	return defaultHub
}

// SetHub replaces the process-wide hub instance (primarily for testing)
func SetHub(h *Hub) {
	defaultHub = h
}

// Join adds a client to a chat room. Participant authorization happens before
// this call; the hub itself only routes.
func (h *Hub) Join(chatID uint, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[chatID]
	if !ok {
		room = make(map[*Client]bool)
		h.rooms[chatID] = room
	}
	room[client] = true
}

// Leave removes a client from a chat room
func (h *Hub) Leave(chatID uint, client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if room, ok := h.rooms[chatID]; ok {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, chatID)
		}
	}
}

// Remove drops a client from every room, for use on disconnect
func (h *Hub) Remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for chatID, room := range h.rooms {
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, chatID)
		}
	}
}

// BroadcastMessage pushes a new chat message to every room member except the
// sender's own connections. The sender already holds the message from its
// submit response, so there is no self-echo.
func (h *Hub) BroadcastMessage(chatID, senderID uint, payload MessagePayload) {
	event := Event{
		Type:    "message",
		ChatID:  chatID,
		Message: &payload,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[chatID] {
		if client.UserID == senderID {
			continue
		}
		client.deliver(event)
	}
}

// BroadcastRead pushes a read receipt to every room member except the reader's
// own connections, so the other party can refresh its unread badge
func (h *Hub) BroadcastRead(chatID, readerID uint) {
	event := Event{
		Type:   "read",
		ChatID: chatID,
		UserID: readerID,
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.rooms[chatID] {
		if client.UserID == readerID {
			continue
		}
		client.deliver(event)
	}
}

// RoomSize returns the number of clients joined to a chat room
func (h *Hub) RoomSize(chatID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[chatID])
}
