package handler

import (
	"encoding/json"
	"time"

	"book-rag-api/internal/delivery/http/dto"
	"book-rag-api/internal/domain/entity"
	"book-rag-api/internal/usecase/chat"

	"github.com/gofiber/fiber/v2"
)

const snippetLimit = 200

type ChatHandler struct {
	chatUsecase *chat.ChatUsecase
}

func NewChatHandler(chatUsecase *chat.ChatUsecase) *ChatHandler {
	return &ChatHandler{chatUsecase: chatUsecase}
}

// Chat godoc
// @Summary      Ask a question
// @Description  Answers a question grounded in the ingested book content
// @Tags         Chat
// @Accept       json
// @Produce      json
// @Param        request  body  dto.ChatRequest  true  "Chat request"
// @Success      200  {object}  dto.ChatResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/v1/chat [post]
func (h *ChatHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if req.SessionID == "" || req.Message == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Error: "session_id and message are required"})
	}
	if req.Mode == "" {
		req.Mode = chat.ModeFullBook
	}
	if req.Mode != chat.ModeFullBook && req.Mode != chat.ModeSelectedText {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Error: "mode must be full-book or selected-text"})
	}
	if req.Mode == chat.ModeSelectedText && req.SelectedText == "" {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Error: "selected_text is required in selected-text mode"})
	}

	turn, err := h.chatUsecase.HandleMessage(c.Context(), req.SessionID, req.Message, req.Mode, req.SelectedText)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	return c.Status(fiber.StatusOK).JSON(dto.ChatResponse{
		SessionID: turn.SessionID,
		Response:  turn.Response,
		Sources:   toChunkSources(turn.Sources),
		Timestamp: turn.Timestamp.Format(time.RFC3339),
	})
}

// History godoc
// @Summary      Get chat history
// @Description  Retrieves the ordered messages of a session
// @Tags         Chat
// @Produce      json
// @Param        session_id  path  string  true  "Session ID"
// @Success      200  {object}  dto.ChatHistoryResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/v1/history/{session_id} [get]
func (h *ChatHandler) History(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	messages, err := h.chatUsecase.History(c.Context(), sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}

	out := make([]dto.HistoryMessage, 0, len(messages))
	for _, msg := range messages {
		item := dto.HistoryMessage{
			MessageID: msg.MessageID,
			SessionID: msg.SessionID,
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp.Format(time.RFC3339),
		}
		if msg.Role == entity.RoleAssistant && len(msg.Sources) > 0 {
			var sources []entity.RetrievedChunk
			if err := json.Unmarshal(msg.Sources, &sources); err == nil {
				item.Sources = toChunkSources(sources)
			}
		}
		out = append(out, item)
	}

	return c.Status(fiber.StatusOK).JSON(dto.ChatHistoryResponse{
		SessionID: sessionID,
		Messages:  out,
	})
}

// DeleteSession godoc
// @Summary      Delete a session
// @Description  Marks a chat session inactive
// @Tags         Chat
// @Produce      json
// @Param        session_id  path  string  true  "Session ID"
// @Success      200  {object}  dto.DeleteSessionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      500  {object}  dto.ErrorResponse
// @Router       /api/v1/session/{session_id} [delete]
func (h *ChatHandler) DeleteSession(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	found, err := h.chatUsecase.DeleteSession(c.Context(), sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: err.Error()})
	}
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: "Session not found"})
	}

	return c.Status(fiber.StatusOK).JSON(dto.DeleteSessionResponse{
		Status:  "success",
		Message: "Session deactivated successfully",
	})
}

func toChunkSources(chunks []entity.RetrievedChunk) []dto.ChunkSource {
	sources := make([]dto.ChunkSource, 0, len(chunks))
	for _, chunk := range chunks {
		snippet := chunk.Content
		if len(snippet) > snippetLimit {
			snippet = snippet[:snippetLimit] + "..."
		}
		sources = append(sources, dto.ChunkSource{
			ChunkID:        chunk.ChunkID,
			ContentSnippet: snippet,
			DocumentID:     chunk.DocumentID,
			Metadata:       chunk.Metadata,
		})
	}
	return sources
}
