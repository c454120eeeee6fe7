package entity

// Document is a source file that has been processed into chunks.
type Document struct {
	DocumentID string `json:"documentId"`
	Title      string `json:"title"`
	FilePath   string `json:"filePath"`
	ChunkCount int    `json:"chunkCount"`
}

// DocumentResult reports the outcome of ingesting a single document.
type DocumentResult struct {
	Path          string `json:"path"`
	ChunksCreated int    `json:"chunks_created"`
	ChunksStored  int    `json:"chunks_stored"`
}

// IngestReport is the aggregate result of an ingestion batch.
type IngestReport struct {
	Status             string           `json:"status"`
	ProcessedDocuments []DocumentResult `json:"processed_documents"`
	FailedDocuments    []string         `json:"failed_documents"`
	TotalChunksCreated int              `json:"total_chunks_created"`
	TotalChunksStored  int              `json:"total_chunks_stored"`
	Message            string           `json:"message"`
}
