package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"book-rag-api/internal/domain/entity"

	"github.com/google/uuid"
)

// Index is a minimal REST client to a Qdrant collection of cosine-distance
// vectors. It owns schema validation: vector dimensionality and collection
// existence.
type Index struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
}

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Dimension  int
	Timeout    time.Duration
}

func NewIndex(cfg Config) *Index {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Index{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		dimension:  cfg.Dimension,
		client:     &http.Client{Timeout: timeout},
	}
}

// EnsureCollection validates an existing collection's vector size against the
// expected dimension (mismatches are logged, not migrated), or creates the
// collection with cosine distance when absent.
func (s *Index) EnsureCollection(ctx context.Context) error {
	var info struct {
		Result struct {
			Config struct {
				Params struct {
					Vectors struct {
						Size int `json:"size"`
					} `json:"vectors"`
				} `json:"params"`
			} `json:"config"`
			PointsCount int `json:"points_count"`
		} `json:"result"`
	}

	status, err := s.getJSON(ctx, s.collectionURL(""), &info)
	if err != nil {
		return fmt.Errorf("failed to check collection %s: %w", s.collection, err)
	}

	if status == http.StatusOK {
		if info.Result.Config.Params.Vectors.Size != s.dimension {
			log.Printf("collection %s has vector size %d, expected %d. This may cause issues.",
				s.collection, info.Result.Config.Params.Vectors.Size, s.dimension)
		} else {
			log.Printf("collection %s validated with vector size %d (%d points)",
				s.collection, s.dimension, info.Result.PointsCount)
		}
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     s.dimension,
			"distance": "Cosine",
		},
	}
	if err := s.putJSON(ctx, s.collectionURL(""), body); err != nil {
		return fmt.Errorf("failed to create collection %s: %w", s.collection, err)
	}
	log.Printf("collection %s created with %d-dimensional vectors", s.collection, s.dimension)
	return nil
}

// Upsert stores the valid points and returns how many were stored. Points
// with a missing or wrong-dimension vector are skipped and counted as
// failures. Point ids are fresh uuids per call, so re-ingesting a document
// adds new points rather than replacing old ones.
func (s *Index) Upsert(ctx context.Context, points []entity.EmbeddedChunk) (int, error) {
	payload := make([]map[string]any, 0, len(points))
	for _, point := range points {
		if len(point.Vector) == 0 {
			log.Printf("chunk missing embedding: %s", point.ChunkID)
			continue
		}
		if len(point.Vector) != s.dimension {
			log.Printf("invalid embedding dimension %d for chunk %s, expected %d",
				len(point.Vector), point.ChunkID, s.dimension)
			continue
		}

		payload = append(payload, map[string]any{
			"id":     uuid.NewString(),
			"vector": point.Vector,
			"payload": map[string]any{
				"content":     point.Content,
				"document_id": point.Metadata["document_id"],
				"metadata":    point.Metadata,
				"chunk_id":    point.ChunkID,
			},
		})
	}

	if len(payload) == 0 {
		return 0, fmt.Errorf("no valid points to store in collection %s", s.collection)
	}

	body := map[string]any{"points": payload}
	if err := s.putJSON(ctx, s.collectionURL("/points?wait=true"), body); err != nil {
		return 0, fmt.Errorf("failed to upsert points: %w", err)
	}

	return len(payload), nil
}

// Search returns results ordered by descending similarity. A query vector of
// the wrong dimensionality is rejected before issuing the search, yielding an
// empty result. Filters are exact-match conjunctions over metadata.<key>.
func (s *Index) Search(ctx context.Context, vector []float32, limit int, filters map[string]any) ([]entity.RetrievedChunk, error) {
	if len(vector) != s.dimension {
		log.Printf("invalid query embedding dimension: %d, expected %d", len(vector), s.dimension)
		return []entity.RetrievedChunk{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if len(filters) > 0 {
		must := make([]map[string]any, 0, len(filters))
		for key, value := range filters {
			must = append(must, map[string]any{
				"key":   "metadata." + key,
				"match": map[string]any{"value": value},
			})
		}
		req["filter"] = map[string]any{"must": must}
	}

	var resp struct {
		Result []struct {
			ID      string         `json:"id"`
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, s.collectionURL("/points/search"), req, &resp); err != nil {
		return nil, fmt.Errorf("failed to search collection %s: %w", s.collection, err)
	}

	results := make([]entity.RetrievedChunk, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunk := entity.RetrievedChunk{Score: r.Score, ChunkID: r.ID}
		if v, ok := r.Payload["chunk_id"].(string); ok && v != "" {
			chunk.ChunkID = v
		}
		if v, ok := r.Payload["content"].(string); ok {
			chunk.Content = v
		}
		if v, ok := r.Payload["document_id"].(string); ok {
			chunk.DocumentID = v
		}
		if v, ok := r.Payload["metadata"].(map[string]any); ok {
			chunk.Metadata = v
		}
		results = append(results, chunk)
	}

	return results, nil
}

func (s *Index) collectionURL(suffix string) string {
	return fmt.Sprintf("%s/collections/%s%s", s.url, s.collection, suffix)
}

func (s *Index) getJSON(ctx context.Context, url string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK && out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (s *Index) putJSON(ctx context.Context, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Index) postJSON(ctx context.Context, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	s.setHeaders(req)

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func (s *Index) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}
