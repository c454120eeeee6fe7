package repository

import (
	"context"

	"book-rag-api/internal/domain/entity"
)

type MessageRepository interface {
	Save(ctx context.Context, message *entity.ChatMessage) error
	ListBySession(ctx context.Context, sessionID string) ([]entity.ChatMessage, error)
}
