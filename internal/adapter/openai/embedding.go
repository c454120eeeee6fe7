package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

type EmbeddingClient struct {
	client     *openai.Client
	model      string
	dimensions int
}

// NewEmbeddingClient creates an OpenAI embedding client producing vectors of
// the given dimensionality.
func NewEmbeddingClient(apiKey, model string, dimensions int) *EmbeddingClient {
	return &EmbeddingClient{
		client:     openai.NewClient(apiKey),
		model:      model,
		dimensions: dimensions,
	}
}

// GenerateBatchEmbeddings embeds texts in order. An empty input returns an
// empty result without calling the API.
func (c *EmbeddingClient) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(c.model),
		Dimensions: c.dimensions,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		embedding := make([]float32, len(data.Embedding))
		copy(embedding, data.Embedding)
		vectors[i] = embedding
	}

	return vectors, nil
}

// EmbedText embeds a single text, used for query embedding.
func (c *EmbeddingClient) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.GenerateBatchEmbeddings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding generated")
	}
	return vectors[0], nil
}
