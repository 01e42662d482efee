package models

import "time"

// Message represents a chat message. Messages are immutable.
type Message struct {
	ID        int       `db:"id" json:"id"`
	ChatID    int       `db:"chat_id" json:"chat_id"`
	SenderID  int       `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// MessageView is a message with the sender's public fields attached.
type MessageView struct {
	Message
	Sender *PublicUser `json:"sender,omitempty"`
}

// RealtimeEvent is the frame written to websocket clients.
type RealtimeEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// NewMessagePayload is the data of a newMessage event.
type NewMessagePayload struct {
	MessageView
	Participants []int `json:"participants"`
}
