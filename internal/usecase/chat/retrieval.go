package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"book-rag-api/internal/domain/entity"
)

const (
	// DefaultTopK is the result limit for full-book retrieval.
	DefaultTopK = 5
	// DefaultSelectedTextTopK casts a wider net: the user has already
	// narrowed scope and expects higher recall within it.
	DefaultSelectedTextTopK = 10
)

// EmbeddingService converts a text into its query vector.
type EmbeddingService interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex is the search side of the vector store.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, limit int, filters map[string]any) ([]entity.RetrievedChunk, error)
}

// Retriever translates a user query or selected text span into a ranked
// chunk list. Empty results are returned as an empty slice, never an error.
type Retriever struct {
	index            VectorIndex
	topK             int
	selectedTextTopK int
}

func NewRetriever(index VectorIndex, topK, selectedTextTopK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if selectedTextTopK <= 0 {
		selectedTextTopK = DefaultSelectedTextTopK
	}
	return &Retriever{index: index, topK: topK, selectedTextTopK: selectedTextTopK}
}

// RetrieveRelevantChunks searches the index with an already-computed query
// embedding.
func (r *Retriever) RetrieveRelevantChunks(ctx context.Context, queryEmbedding []float32, limit int) ([]entity.RetrievedChunk, error) {
	if limit <= 0 {
		limit = r.topK
	}
	chunks, err := r.index.Search(ctx, queryEmbedding, limit, nil)
	if err != nil {
		return nil, err
	}
	log.Printf("retrieved %d relevant chunks", len(chunks))
	return chunks, nil
}

// RetrieveBySelectedText embeds the selected text itself as the query vector.
// An empty selection is rejected before any embedding or search is issued.
func (r *Retriever) RetrieveBySelectedText(ctx context.Context, selectedText string, embedder EmbeddingService) ([]entity.RetrievedChunk, error) {
	if strings.TrimSpace(selectedText) == "" {
		return nil, fmt.Errorf("selected text is empty")
	}

	queryEmbedding, err := embedder.EmbedText(ctx, selectedText)
	if err != nil {
		return nil, fmt.Errorf("failed to embed selected text: %w", err)
	}

	return r.RetrieveRelevantChunks(ctx, queryEmbedding, r.selectedTextTopK)
}
