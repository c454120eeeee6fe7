package entity

// Chunk is a bounded segment of source text prepared for independent retrieval.
// Offsets index into the whitespace-normalized source text.
type Chunk struct {
	ChunkID       string         `json:"chunkId"`
	Content       string         `json:"content"`
	ChunkIndex    int            `json:"chunkIndex"`
	TokenEstimate int            `json:"tokenEstimate"`
	StartOffset   int            `json:"startOffset"`
	EndOffset     int            `json:"endOffset"`
	Metadata      map[string]any `json:"metadata"`
}

// EmbeddedChunk is a chunk plus its embedding vector.
type EmbeddedChunk struct {
	Chunk
	Vector []float32 `json:"-"`
}

// RetrievedChunk is a chunk returned from similarity search.
type RetrievedChunk struct {
	ChunkID    string         `json:"chunk_id"`
	Content    string         `json:"content"`
	DocumentID string         `json:"document_id"`
	Metadata   map[string]any `json:"metadata"`
	Score      float64        `json:"score"`
}
