package repository

import (
	"context"

	"book-rag-api/internal/domain/entity"
)

type SessionRepository interface {
	Create(ctx context.Context, session *entity.ChatSession) error
	// FindByID returns (nil, nil) when the session does not exist.
	FindByID(ctx context.Context, sessionID string) (*entity.ChatSession, error)
	// Deactivate marks a session inactive. Returns false when the session is unknown.
	Deactivate(ctx context.Context, sessionID string) (bool, error)
}
