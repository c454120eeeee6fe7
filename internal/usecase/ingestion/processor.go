package ingestion

import (
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"os"
	"path/filepath"
	"strings"

	"book-rag-api/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

var (
	ErrFileNotFound        = errors.New("file not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
)

var supportedExtensions = map[string]bool{
	".md":   true,
	".mdx":  true,
	".txt":  true,
	".html": true,
	".htm":  true,
}

// Processor turns a source file into embedding-ready chunk records.
type Processor struct {
	chunker *Chunker
}

func NewProcessor(chunker *Chunker) *Processor {
	return &Processor{chunker: chunker}
}

// ProcessFile reads a document, chunks it and stamps provenance metadata on
// every chunk. Missing files and unsupported extensions fail per-document.
func (p *Processor) ProcessFile(path string) (*entity.Document, []entity.Chunk, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !supportedExtensions[ext] {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	text := string(data)
	if ext == ".html" || ext == ".htm" {
		text, err = extractHTMLText(text)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse html %s: %w", path, err)
		}
	}

	title := strings.TrimSuffix(filepath.Base(path), ext)
	documentID := newDocumentID(path)
	log.Printf("processing document: %s (ID: %s)", title, documentID)

	chunks := p.chunker.ChunkText(text, map[string]any{
		"document_id": documentID,
		"title":       title,
		"file_path":   path,
	})

	for i := range chunks {
		chunks[i].ChunkID = fmt.Sprintf("%s_chunk_%d", documentID, i)
		chunks[i].Metadata["chunk_index"] = i
		chunks[i].Metadata["total_chunks"] = len(chunks)
	}

	doc := &entity.Document{
		DocumentID: documentID,
		Title:      title,
		FilePath:   path,
		ChunkCount: len(chunks),
	}
	log.Printf("created %d chunks for document %s", len(chunks), title)

	return doc, chunks, nil
}

// newDocumentID derives an id from the file path plus a random disambiguator,
// so repeated ingestion runs of the same path never collide.
func newDocumentID(path string) string {
	h := fnv.New32a()
	h.Write([]byte(path))
	return fmt.Sprintf("doc_%x_%s", h.Sum32(), uuid.NewString()[:8])
}

func extractHTMLText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	doc.Find("script, style").Remove()
	return doc.Text(), nil
}
