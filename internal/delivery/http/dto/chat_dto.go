package dto

type ChatRequest struct {
	SessionID    string `json:"session_id"`
	Message      string `json:"message"`
	Mode         string `json:"mode"`
	SelectedText string `json:"selected_text"`
}

type ChatResponse struct {
	SessionID string        `json:"session_id"`
	Response  string        `json:"response"`
	Sources   []ChunkSource `json:"sources"`
	Timestamp string        `json:"timestamp"`
}

type ChunkSource struct {
	ChunkID        string         `json:"chunk_id"`
	ContentSnippet string         `json:"content_snippet"`
	DocumentID     string         `json:"document_id"`
	Metadata       map[string]any `json:"metadata"`
}

type HistoryMessage struct {
	MessageID string        `json:"message_id"`
	SessionID string        `json:"session_id"`
	Role      string        `json:"role"`
	Content   string        `json:"content"`
	Timestamp string        `json:"timestamp"`
	Sources   []ChunkSource `json:"sources,omitempty"`
}

type ChatHistoryResponse struct {
	SessionID string           `json:"session_id"`
	Messages  []HistoryMessage `json:"messages"`
}

type DeleteSessionResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
