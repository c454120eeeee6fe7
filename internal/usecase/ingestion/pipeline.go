package ingestion

import (
	"context"
	"fmt"
	"log"

	"book-rag-api/internal/domain/entity"
)

// EmbeddingService converts chunk texts into fixed-dimension vectors in batch.
type EmbeddingService interface {
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// VectorIndex is the persistent similarity index over embedded chunks.
type VectorIndex interface {
	EnsureCollection(ctx context.Context) error
	// Upsert stores valid points and returns how many were stored. Points
	// with a missing or wrong-dimension vector are skipped, not stored.
	Upsert(ctx context.Context, points []entity.EmbeddedChunk) (int, error)
	Search(ctx context.Context, vector []float32, limit int, filters map[string]any) ([]entity.RetrievedChunk, error)
}

// Pipeline orchestrates Processor -> EmbeddingService -> VectorIndex over a
// batch of file paths. One bad document never aborts the batch.
type Pipeline struct {
	processor *Processor
	embedder  EmbeddingService
	index     VectorIndex
}

func NewPipeline(processor *Processor, embedder EmbeddingService, index VectorIndex) *Pipeline {
	return &Pipeline{
		processor: processor,
		embedder:  embedder,
		index:     index,
	}
}

// IngestDocuments processes each path sequentially, recording per-document
// failures and aggregating chunk counts into a structured report.
func (p *Pipeline) IngestDocuments(ctx context.Context, paths []string, forceReprocess bool) *entity.IngestReport {
	report := &entity.IngestReport{
		Status:             "success",
		ProcessedDocuments: []entity.DocumentResult{},
		FailedDocuments:    []string{},
	}

	for _, path := range paths {
		created, stored, err := p.ingestOne(ctx, path)
		if err != nil {
			log.Printf("error processing %s: %v", path, err)
			report.FailedDocuments = append(report.FailedDocuments, err.Error())
			continue
		}

		report.ProcessedDocuments = append(report.ProcessedDocuments, entity.DocumentResult{
			Path:          path,
			ChunksCreated: created,
			ChunksStored:  stored,
		})
		report.TotalChunksCreated += created
		report.TotalChunksStored += stored
		log.Printf("successfully processed %s: %d chunks created, %d stored", path, created, stored)
	}

	report.Message = fmt.Sprintf(
		"Processed %d documents, %d failed. Created %d chunks, stored %d in the vector index",
		len(report.ProcessedDocuments),
		len(report.FailedDocuments),
		report.TotalChunksCreated,
		report.TotalChunksStored,
	)
	log.Println(report.Message)

	return report
}

func (p *Pipeline) ingestOne(ctx context.Context, path string) (created, stored int, err error) {
	doc, chunks, err := p.processor.ProcessFile(path)
	if err != nil {
		return 0, 0, err
	}
	if len(chunks) == 0 {
		return 0, 0, fmt.Errorf("no chunks generated for %s", path)
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	vectors, err := p.embedder.GenerateBatchEmbeddings(ctx, texts)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to generate embeddings for %s: %w", path, err)
	}
	if len(vectors) != len(chunks) {
		return 0, 0, fmt.Errorf("embedding count mismatch for %s: %d chunks, %d vectors", path, len(chunks), len(vectors))
	}

	points := make([]entity.EmbeddedChunk, len(chunks))
	for i := range chunks {
		points[i] = entity.EmbeddedChunk{Chunk: chunks[i], Vector: vectors[i]}
	}

	stored, err = p.index.Upsert(ctx, points)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to store chunks for %s: %w", path, err)
	}

	log.Printf("stored %d chunks for document %s", stored, doc.Title)
	return len(chunks), stored, nil
}
