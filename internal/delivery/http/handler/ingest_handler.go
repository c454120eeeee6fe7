package handler

import (
	"book-rag-api/internal/delivery/http/dto"
	"book-rag-api/internal/usecase/ingestion"

	"github.com/gofiber/fiber/v2"
)

type IngestHandler struct {
	pipeline *ingestion.Pipeline
}

func NewIngestHandler(pipeline *ingestion.Pipeline) *IngestHandler {
	return &IngestHandler{pipeline: pipeline}
}

// Ingest godoc
// @Summary      Ingest documents
// @Description  Chunks, embeds and indexes the given document files
// @Tags         Ingest
// @Accept       json
// @Produce      json
// @Param        request  body  dto.IngestRequest  true  "Paths to ingest"
// @Success      200  {object}  entity.IngestReport
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/v1/ingest [post]
func (h *IngestHandler) Ingest(c *fiber.Ctx) error {
	var req dto.IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: "invalid request body"})
	}
	if len(req.DocumentPaths) == 0 {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Error: "document_paths is required"})
	}

	report := h.pipeline.IngestDocuments(c.Context(), req.DocumentPaths, req.ForceReprocess)
	return c.Status(fiber.StatusOK).JSON(report)
}
