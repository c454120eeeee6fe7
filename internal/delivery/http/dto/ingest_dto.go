package dto

type IngestRequest struct {
	DocumentPaths  []string `json:"document_paths"`
	ForceReprocess bool     `json:"force_reprocess"`
}
