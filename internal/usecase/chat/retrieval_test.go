package chat

import (
	"context"
	"testing"

	"book-rag-api/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeVectorIndex struct {
	results   []entity.RetrievedChunk
	lastLimit int
	calls     int
}

func (f *fakeVectorIndex) Search(_ context.Context, _ []float32, limit int, _ map[string]any) ([]entity.RetrievedChunk, error) {
	f.calls++
	f.lastLimit = limit
	return f.results, nil
}

type fakeEmbedder struct {
	vector []float32
	calls  int
}

func (f *fakeEmbedder) EmbedText(context.Context, string) ([]float32, error) {
	f.calls++
	return f.vector, nil
}

func TestRetrieveRelevantChunks_EmptyIndex(t *testing.T) {
	index := &fakeVectorIndex{results: []entity.RetrievedChunk{}}
	r := NewRetriever(index, 0, 0)

	chunks, err := r.RetrieveRelevantChunks(context.Background(), make([]float32, 4), 0)

	require.NoError(t, err)
	assert.Empty(t, chunks)
	assert.Equal(t, DefaultTopK, index.lastLimit)
}

func TestRetrieveBySelectedText_WiderLimit(t *testing.T) {
	index := &fakeVectorIndex{results: []entity.RetrievedChunk{{ChunkID: "c0"}}}
	embedder := &fakeEmbedder{vector: make([]float32, 4)}
	r := NewRetriever(index, 0, 0)

	chunks, err := r.RetrieveBySelectedText(context.Background(), "the selected passage", embedder)

	require.NoError(t, err)
	assert.Len(t, chunks, 1)
	assert.Equal(t, 1, embedder.calls)
	assert.Equal(t, DefaultSelectedTextTopK, index.lastLimit)
}

func TestRetrieveBySelectedText_EmptySelectionRejected(t *testing.T) {
	index := &fakeVectorIndex{}
	embedder := &fakeEmbedder{vector: make([]float32, 4)}
	r := NewRetriever(index, 0, 0)

	_, err := r.RetrieveBySelectedText(context.Background(), "   ", embedder)

	require.Error(t, err)
	assert.Zero(t, embedder.calls, "no embedding must be issued for an empty selection")
	assert.Zero(t, index.calls, "no query must be issued for an empty selection")
}
