package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Port           int
	DatabaseURL    string
	AllowedOrigins []string

	// open ai
	OpenAIKey            string
	OpenAIEmbeddingModel string
	OpenAIChatModel      string

	// vector index
	VectorBackend       string // "qdrant" or "pgvector"
	QdrantURL           string
	QdrantAPIKey        string
	QdrantCollection    string
	EmbeddingDimensions int

	// rag config
	ChunkSize        int
	ChunkOverlap     int
	TopKResults      int
	SelectedTextTopK int
}

func Load() *Config {
	godotenv.Load()

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		port = 8080
	}

	return &Config{
		Port:           port,
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		AllowedOrigins: splitOrigins(getEnv("ALLOWED_ORIGINS", "*")),

		// OpenAI
		OpenAIKey:            getEnv("OPENAI_API_KEY", ""),
		OpenAIEmbeddingModel: getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-large"),
		OpenAIChatModel:      getEnv("OPENAI_CHAT_MODEL", "gpt-4o-mini"),

		// Vector index
		VectorBackend:       getEnv("VECTOR_BACKEND", "qdrant"),
		QdrantURL:           getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:        getEnv("QDRANT_API_KEY", ""),
		QdrantCollection:    getEnv("QDRANT_COLLECTION", "document_chunks"),
		EmbeddingDimensions: getEnvInt("EMBEDDING_DIMENSIONS", 1024),

		// RAG Config
		ChunkSize:        getEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap:     getEnvInt("CHUNK_OVERLAP", 75),
		TopKResults:      getEnvInt("TOP_K_RESULTS", 5),
		SelectedTextTopK: getEnvInt("SELECTED_TEXT_TOP_K", 10),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func splitOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
