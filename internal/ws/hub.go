package ws

import (
	"encoding/json"
	"log"
	"strconv"
	"sync"

	"devhub/internal/models"
	"devhub/internal/observability"
	"devhub/internal/services"
)

var _ services.Notifier = (*Hub)(nil)

// UserRoom is the personal room a client joins after setup.
func UserRoom(userID int) string {
	return "user:" + strconv.Itoa(userID)
}

// ChatRoom is the room of clients currently viewing a chat.
func ChatRoom(chatID int) string {
	return "chat:" + strconv.Itoa(chatID)
}

// Hub maintains rooms of connected clients. Delivery is best-effort: a client whose
// send buffer is full misses the event.
type Hub struct {
	rooms       map[string]map[*Client]struct{}
	memberships map[*Client]map[string]struct{}
	mu          sync.RWMutex
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		rooms:       make(map[string]map[*Client]struct{}),
		memberships: make(map[*Client]map[string]struct{}),
	}
}

// Register tracks a client so it can later join rooms.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.memberships[c]; !ok {
		h.memberships[c] = make(map[string]struct{})
	}
}

// Unregister removes the client from every room and closes its send channel.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rooms, ok := h.memberships[c]
	if !ok {
		return
	}
	for room := range rooms {
		if members, ok := h.rooms[room]; ok {
			delete(members, c)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
	}
	delete(h.memberships, c)
	close(c.send)
}

// Join adds a registered client to room. Joining twice is a no-op.
func (h *Hub) Join(room string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	rooms, ok := h.memberships[c]
	if !ok {
		return
	}
	if _, ok := h.rooms[room]; !ok {
		h.rooms[room] = make(map[*Client]struct{})
	}
	h.rooms[room][c] = struct{}{}
	rooms[room] = struct{}{}
}

// InRoom reports whether c has joined room.
func (h *Hub) InRoom(room string, c *Client) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[room][c]
	return ok
}

// RoomSize returns the number of clients in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Stats returns the number of registered clients and non-empty rooms.
func (h *Hub) Stats() (clients int, rooms int) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.memberships), len(h.rooms)
}

// Broadcast sends event to every client in room except the given one (which may be nil).
func (h *Hub) Broadcast(room string, event models.RealtimeEvent, except *Client) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("websocket marshal error: event=%s err=%v", event.Event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[room] {
		if c == except {
			continue
		}
		c.enqueue(payload, event.Event)
	}
}

// NotifyNewMessage fans a persisted message out to the chat room, then asks each
// participant's personal room to refresh its chat list.
func (h *Hub) NotifyNewMessage(chat models.Chat, msg models.MessageView) {
	h.Broadcast(ChatRoom(chat.ID), models.RealtimeEvent{
		Event: EventNewMessage,
		Data:  models.NewMessagePayload{MessageView: msg, Participants: chat.Participants()},
	}, nil)
	for _, userID := range chat.Participants() {
		h.Broadcast(UserRoom(userID), models.RealtimeEvent{Event: EventRefreshChats, Data: chat.ID}, nil)
	}
}

func (c *Client) enqueue(payload []byte, event string) {
	select {
	case c.send <- payload:
		observability.IncWSEvent("out", event)
	default:
		observability.IncWSDropped()
	}
}
