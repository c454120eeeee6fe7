package postgres

import (
	"context"
	"time"

	"book-rag-api/internal/domain/entity"
	"book-rag-api/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type messageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

// save message
func (r *messageRepository) Save(ctx context.Context, message *entity.ChatMessage) error {
	if message.MessageID == "" {
		message.MessageID = uuid.New().String()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now().UTC()
	}

	query := `
		INSERT INTO chat_messages (message_id, session_id, role, content, timestamp, sources)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		message.MessageID,
		message.SessionID,
		message.Role,
		message.Content,
		message.Timestamp,
		message.Sources,
	)
	return err
}

// list messages for a session ordered by timestamp
func (r *messageRepository) ListBySession(ctx context.Context, sessionID string) ([]entity.ChatMessage, error) {
	var messages []entity.ChatMessage
	query := `
		SELECT message_id, session_id, role, content, timestamp, sources
		FROM chat_messages
		WHERE session_id = $1
		ORDER BY timestamp
	`
	err := r.db.SelectContext(ctx, &messages, query, sessionID)
	if err != nil {
		return nil, err
	}
	return messages, nil
}
