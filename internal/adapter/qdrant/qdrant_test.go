package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"book-rag-api/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, handler http.HandlerFunc) (*Index, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	index := NewIndex(Config{
		URL:        server.URL,
		Collection: "document_chunks",
		Dimension:  4,
	})
	return index, server
}

func embeddedChunk(id string, dim int) entity.EmbeddedChunk {
	return entity.EmbeddedChunk{
		Chunk: entity.Chunk{
			ChunkID: id,
			Content: "some content",
			Metadata: map[string]any{
				"document_id": "doc_1",
				"title":       "intro",
			},
		},
		Vector: make([]float32, dim),
	}
}

func TestEnsureCollection_CreatesWhenAbsent(t *testing.T) {
	var created map[string]any
	index, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.WriteHeader(http.StatusOK)
		}
	})

	require.NoError(t, index.EnsureCollection(context.Background()))

	require.NotNil(t, created)
	vectors := created["vectors"].(map[string]any)
	assert.Equal(t, float64(4), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

func TestEnsureCollection_ExistingMismatchIsNotMigrated(t *testing.T) {
	putCalled := false
	index, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"result":{"config":{"params":{"vectors":{"size":512}}},"points_count":10}}`))
		case http.MethodPut:
			putCalled = true
		}
	})

	require.NoError(t, index.EnsureCollection(context.Background()))
	assert.False(t, putCalled, "a mismatched collection must not be recreated")
}

func TestUpsert_SkipsInvalidPoints(t *testing.T) {
	var body struct {
		Points []struct {
			ID      string         `json:"id"`
			Vector  []float32      `json:"vector"`
			Payload map[string]any `json:"payload"`
		} `json:"points"`
	}
	index, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	})

	points := []entity.EmbeddedChunk{
		embeddedChunk("chunk_0", 4),
		embeddedChunk("chunk_1", 2), // wrong dimension
		{Chunk: entity.Chunk{ChunkID: "chunk_2"}}, // missing vector
	}

	stored, err := index.Upsert(context.Background(), points)

	require.NoError(t, err)
	assert.Equal(t, 1, stored)
	require.Len(t, body.Points, 1)

	payload := body.Points[0].Payload
	assert.Equal(t, "some content", payload["content"])
	assert.Equal(t, "doc_1", payload["document_id"])
	assert.Equal(t, "chunk_0", payload["chunk_id"])
	assert.Equal(t, "intro", payload["metadata"].(map[string]any)["title"])
	assert.NotEmpty(t, body.Points[0].ID)
}

func TestUpsert_FailsWithZeroValidPoints(t *testing.T) {
	called := false
	index, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	_, err := index.Upsert(context.Background(), []entity.EmbeddedChunk{embeddedChunk("chunk_0", 512)})

	require.Error(t, err)
	assert.False(t, called, "no request should be issued without valid points")
}

func TestSearch_RejectsWrongDimensionQuery(t *testing.T) {
	called := false
	index, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	results, err := index.Search(context.Background(), make([]float32, 512), 5, nil)

	require.NoError(t, err)
	assert.Empty(t, results)
	assert.False(t, called, "malformed query vectors must not reach the store")
}

func TestSearch_ParsesResultsAndFilters(t *testing.T) {
	var req map[string]any
	index, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":[
			{"id":"p1","score":0.92,"payload":{"chunk_id":"doc_1_chunk_0","content":"first","document_id":"doc_1","metadata":{"title":"intro"}}},
			{"id":"p2","score":0.81,"payload":{"chunk_id":"doc_1_chunk_3","content":"second","document_id":"doc_1","metadata":{"title":"intro"}}}
		]}`))
	})

	results, err := index.Search(context.Background(), make([]float32, 4), 5, map[string]any{"title": "intro"})

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "doc_1_chunk_0", results[0].ChunkID)
	assert.Equal(t, "first", results[0].Content)
	assert.Equal(t, "doc_1", results[0].DocumentID)
	assert.Equal(t, 0.92, results[0].Score)
	assert.Equal(t, "intro", results[0].Metadata["title"])
	assert.Greater(t, results[0].Score, results[1].Score)

	filter := req["filter"].(map[string]any)
	must := filter["must"].([]any)
	require.Len(t, must, 1)
	condition := must[0].(map[string]any)
	assert.Equal(t, "metadata.title", condition["key"])
	assert.Equal(t, "intro", condition["match"].(map[string]any)["value"])
}

func TestSearch_EmptyIndexReturnsEmpty(t *testing.T) {
	index, _ := newTestIndex(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"result":[]}`))
	})

	results, err := index.Search(context.Background(), make([]float32, 4), 5, nil)

	require.NoError(t, err)
	assert.NotNil(t, results)
	assert.Empty(t, results)
}
