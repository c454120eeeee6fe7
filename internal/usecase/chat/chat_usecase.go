package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"book-rag-api/internal/domain/entity"
	"book-rag-api/internal/domain/repository"

	"github.com/google/uuid"
)

// Turn is the result of one chat interaction.
type Turn struct {
	SessionID string
	Response  string
	Sources   []entity.RetrievedChunk
	Timestamp time.Time
}

// ChatUsecase orchestrates a chat turn: persist the user message, retrieve
// context for the requested mode, generate a grounded answer, persist the
// assistant message with its sources.
type ChatUsecase struct {
	sessions  repository.SessionRepository
	messages  repository.MessageRepository
	embedder  EmbeddingService
	retriever *Retriever
	generator *Generator
}

// NewChatUsecase wires the chat turn. Session and message repositories may be
// nil when the database is unreachable; chat still answers, history is
// skipped.
func NewChatUsecase(
	sessions repository.SessionRepository,
	messages repository.MessageRepository,
	embedder EmbeddingService,
	retriever *Retriever,
	generator *Generator,
) *ChatUsecase {
	return &ChatUsecase{
		sessions:  sessions,
		messages:  messages,
		embedder:  embedder,
		retriever: retriever,
		generator: generator,
	}
}

// HandleMessage processes one user message in the given mode.
func (uc *ChatUsecase) HandleMessage(ctx context.Context, sessionID, message, mode, selectedText string) (*Turn, error) {
	if mode != ModeFullBook && mode != ModeSelectedText {
		return nil, fmt.Errorf("invalid mode: %s", mode)
	}
	if mode == ModeSelectedText && selectedText == "" {
		return nil, fmt.Errorf("selected_text is required in selected-text mode")
	}

	uc.ensureSession(ctx, sessionID)
	uc.saveMessage(ctx, sessionID, entity.RoleUser, message, nil)

	var chunks []entity.RetrievedChunk
	var err error
	if mode == ModeSelectedText {
		chunks, err = uc.retriever.RetrieveBySelectedText(ctx, selectedText, uc.embedder)
	} else {
		var queryEmbedding []float32
		queryEmbedding, err = uc.embedder.EmbedText(ctx, message)
		if err == nil {
			chunks, err = uc.retriever.RetrieveRelevantChunks(ctx, queryEmbedding, 0)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}

	answer := uc.generator.GenerateAnswer(ctx, message, chunks, mode)

	uc.saveMessage(ctx, sessionID, entity.RoleAssistant, answer, chunks)

	return &Turn{
		SessionID: sessionID,
		Response:  answer,
		Sources:   chunks,
		Timestamp: time.Now().UTC(),
	}, nil
}

// History returns the ordered messages of a session.
func (uc *ChatUsecase) History(ctx context.Context, sessionID string) ([]entity.ChatMessage, error) {
	if uc.messages == nil {
		return []entity.ChatMessage{}, nil
	}
	return uc.messages.ListBySession(ctx, sessionID)
}

// DeleteSession marks a session inactive. Returns false when unknown.
func (uc *ChatUsecase) DeleteSession(ctx context.Context, sessionID string) (bool, error) {
	if uc.sessions == nil {
		return false, fmt.Errorf("session persistence unavailable")
	}
	return uc.sessions.Deactivate(ctx, sessionID)
}

func (uc *ChatUsecase) ensureSession(ctx context.Context, sessionID string) {
	if uc.sessions == nil {
		return
	}
	existing, err := uc.sessions.FindByID(ctx, sessionID)
	if err != nil {
		log.Printf("error looking up session %s: %v", sessionID, err)
		return
	}
	if existing == nil {
		if err := uc.sessions.Create(ctx, &entity.ChatSession{SessionID: sessionID}); err != nil {
			log.Printf("error creating session %s: %v", sessionID, err)
		}
	}
}

func (uc *ChatUsecase) saveMessage(ctx context.Context, sessionID string, role entity.MessageRole, content string, sources []entity.RetrievedChunk) {
	if uc.messages == nil {
		return
	}

	var sourcesJSON []byte
	if len(sources) > 0 {
		var err error
		sourcesJSON, err = json.Marshal(sources)
		if err != nil {
			log.Printf("error encoding sources for session %s: %v", sessionID, err)
		}
	}

	msg := &entity.ChatMessage{
		MessageID: uuid.New().String(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Sources:   sourcesJSON,
	}
	if err := uc.messages.Save(ctx, msg); err != nil {
		log.Printf("error saving %s message for session %s: %v", role, sessionID, err)
	}
}
