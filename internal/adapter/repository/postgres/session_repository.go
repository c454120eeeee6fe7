package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"book-rag-api/internal/domain/entity"
	"book-rag-api/internal/domain/repository"

	"github.com/jmoiron/sqlx"
)

type sessionRepository struct {
	db *sqlx.DB
}

func NewSessionRepository(db *sqlx.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// create session
func (r *sessionRepository) Create(ctx context.Context, session *entity.ChatSession) error {
	session.CreatedAt = time.Now().UTC()
	session.UpdatedAt = session.CreatedAt
	session.Active = true

	query := `
		INSERT INTO chat_sessions (session_id, user_id, created_at, updated_at, active)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		session.SessionID,
		session.UserID,
		session.CreatedAt,
		session.UpdatedAt,
		session.Active,
	)
	return err
}

// find session by id
func (r *sessionRepository) FindByID(ctx context.Context, sessionID string) (*entity.ChatSession, error) {
	var session entity.ChatSession
	query := `SELECT session_id, user_id, created_at, updated_at, active FROM chat_sessions WHERE session_id = $1`
	err := r.db.GetContext(ctx, &session, query, sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Deactivate marks a session inactive, reporting whether it existed.
func (r *sessionRepository) Deactivate(ctx context.Context, sessionID string) (bool, error) {
	query := `UPDATE chat_sessions SET active = false, updated_at = NOW() WHERE session_id = $1`
	result, err := r.db.ExecContext(ctx, query, sessionID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}
