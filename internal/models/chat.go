package models

import "time"

// Chat represents a private chat between exactly two users.
// Participants are stored sorted so User1ID < User2ID.
type Chat struct {
	ID              int       `db:"id" json:"id"`
	User1ID         int       `db:"user1_id" json:"user1_id"`
	User2ID         int       `db:"user2_id" json:"user2_id"`
	LatestMessageID *int      `db:"latest_message_id" json:"latest_message_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Participants returns both participant ids.
func (c Chat) Participants() []int {
	return []int{c.User1ID, c.User2ID}
}

// HasParticipant reports whether userID belongs to the chat.
func (c Chat) HasParticipant(userID int) bool {
	return c.User1ID == userID || c.User2ID == userID
}

// ChatView provides the API-friendly view of a chat with its relations expanded.
type ChatView struct {
	ID            int          `json:"id"`
	Participants  []PublicUser `json:"participants"`
	LatestMessage *MessageView `json:"latestMessage,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
