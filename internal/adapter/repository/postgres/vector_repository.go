package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"book-rag-api/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
)

// VectorRepository is a pgvector-backed vector index, selectable as an
// alternative to the Qdrant backend. Same contract: cosine similarity,
// payload keys content/document_id/metadata/chunk_id.
type VectorRepository struct {
	db        *sqlx.DB
	dimension int
}

func NewVectorRepository(db *sqlx.DB, dimension int) *VectorRepository {
	return &VectorRepository{db: db, dimension: dimension}
}

// EnsureCollection creates the extension and chunk table if they are missing.
// An existing table with a different vector size is logged, not migrated.
func (r *VectorRepository) EnsureCollection(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `CREATE EXTENSION IF NOT EXISTS vector`); err != nil {
		return fmt.Errorf("failed to create vector extension: %w", err)
	}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS document_chunks (
			id UUID PRIMARY KEY,
			chunk_id TEXT NOT NULL,
			document_id TEXT NOT NULL,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			embedding vector(%d) NOT NULL
		)
	`, r.dimension)
	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create document_chunks table: %w", err)
	}

	var size int
	err := r.db.GetContext(ctx, &size, `
		SELECT coalesce(atttypmod, -1)
		FROM pg_attribute
		WHERE attrelid = 'document_chunks'::regclass AND attname = 'embedding'
	`)
	if err == nil && size > 0 && size != r.dimension {
		log.Printf("document_chunks has vector size %d, expected %d. This may cause issues.", size, r.dimension)
	}

	return nil
}

// Upsert inserts valid points with fresh uuid ids and returns how many were
// stored. Wrong-dimension or missing vectors are skipped.
func (r *VectorRepository) Upsert(ctx context.Context, points []entity.EmbeddedChunk) (int, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO document_chunks (id, chunk_id, document_id, content, metadata, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	stored := 0
	for _, point := range points {
		if len(point.Vector) == 0 {
			log.Printf("chunk missing embedding: %s", point.ChunkID)
			continue
		}
		if len(point.Vector) != r.dimension {
			log.Printf("invalid embedding dimension %d for chunk %s, expected %d",
				len(point.Vector), point.ChunkID, r.dimension)
			continue
		}

		metadata, err := json.Marshal(point.Metadata)
		if err != nil {
			return 0, fmt.Errorf("failed to encode metadata for chunk %s: %w", point.ChunkID, err)
		}

		documentID, _ := point.Metadata["document_id"].(string)
		_, err = tx.ExecContext(ctx, query,
			uuid.New().String(),
			point.ChunkID,
			documentID,
			point.Content,
			metadata,
			pgvector.NewVector(point.Vector),
		)
		if err != nil {
			return 0, err
		}
		stored++
	}

	if stored == 0 {
		return 0, fmt.Errorf("no valid points to store")
	}

	return stored, tx.Commit()
}

// Search returns chunks ordered by descending cosine similarity. A
// wrong-dimension query vector yields an empty result without hitting the
// database. Filters are exact-match conjunctions over metadata keys.
func (r *VectorRepository) Search(ctx context.Context, vector []float32, limit int, filters map[string]any) ([]entity.RetrievedChunk, error) {
	if len(vector) != r.dimension {
		log.Printf("invalid query embedding dimension: %d, expected %d", len(vector), r.dimension)
		return []entity.RetrievedChunk{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	var builder strings.Builder
	builder.WriteString(`
		SELECT chunk_id, document_id, content, metadata,
			1 - (embedding <=> $1) AS score
		FROM document_chunks
	`)

	args := []any{pgvector.NewVector(vector)}
	if len(filters) > 0 {
		conditions := make([]string, 0, len(filters))
		for key, value := range filters {
			args = append(args, fmt.Sprintf("%v", value))
			conditions = append(conditions, fmt.Sprintf("metadata->>'%s' = $%d", key, len(args)))
		}
		builder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}

	args = append(args, limit)
	builder.WriteString(fmt.Sprintf(" ORDER BY embedding <=> $1 LIMIT $%d", len(args)))

	rows, err := r.db.QueryContext(ctx, builder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []entity.RetrievedChunk{}
	for rows.Next() {
		var chunk entity.RetrievedChunk
		var metadata []byte
		if err := rows.Scan(&chunk.ChunkID, &chunk.DocumentID, &chunk.Content, &metadata, &chunk.Score); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &chunk.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata for chunk %s: %w", chunk.ChunkID, err)
			}
		}
		results = append(results, chunk)
	}

	return results, rows.Err()
}
