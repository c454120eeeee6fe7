package entity

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

type ChatSession struct {
	SessionID string    `db:"session_id" json:"sessionId"`
	UserID    string    `db:"user_id" json:"userId,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
	Active    bool      `db:"active" json:"active"`
}

type ChatMessage struct {
	MessageID string      `db:"message_id" json:"messageId"`
	SessionID string      `db:"session_id" json:"sessionId"`
	Role      MessageRole `db:"role" json:"role"`
	Content   string      `db:"content" json:"content"`
	Timestamp time.Time   `db:"timestamp" json:"timestamp"`
	// Sources is a JSON-encoded list of retrieved chunks, set on assistant messages.
	Sources []byte `db:"sources" json:"-"`
}
