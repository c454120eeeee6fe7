package ingestion

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"book-rag-api/internal/domain/entity"
)

// charsPerToken is the character-count approximation used for sizing:
// 1 token ~ 4 characters of English text.
const charsPerToken = 4

// sentenceTail is how many characters at the end of a window are ignored
// when scanning for a sentence boundary, so we never cut right at the edge.
const sentenceTail = 10

type Chunker struct {
	chunkSize    int // target size in tokens
	overlap      int // overlap in tokens
	maxChunkLen  int // character budget per chunk
	overlapChars int // character budget for overlap
}

// NewChunker creates a chunker with a target chunk size and overlap in tokens.
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Chunker{
		chunkSize:    chunkSize,
		overlap:      overlap,
		maxChunkLen:  chunkSize * charsPerToken,
		overlapChars: overlap * charsPerToken,
	}
}

// ChunkText splits text into overlapping, sentence-respecting chunks.
// The metadata map is stamped onto every produced chunk. Empty or
// whitespace-only input yields no chunks.
func (c *Chunker) ChunkText(text string, metadata map[string]any) []entity.Chunk {
	text = NormalizeWhitespace(text)
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var chunks []entity.Chunk
	start := 0

	for start < len(text) {
		end := start + c.maxChunkLen
		if end >= len(text) {
			end = len(text)
		} else {
			end = c.cutPoint(text, start, end)
		}

		content := strings.TrimSpace(text[start:end])
		if content != "" {
			chunks = append(chunks, entity.Chunk{
				Content:       content,
				ChunkIndex:    len(chunks),
				TokenEstimate: EstimateTokens(content),
				StartOffset:   start,
				EndOffset:     end,
				Metadata:      copyMetadata(metadata),
			})
		}

		if end >= len(text) {
			break
		}

		// Skip overlap for a small trailing remainder so the final chunk
		// does not mostly duplicate its predecessor.
		remaining := len(text) - end
		if remaining > c.maxChunkLen/2 {
			next := end - c.overlapChars
			if next <= start {
				// ensure progress to avoid infinite loop
				next = start + 1
			}
			start = next
		} else {
			start = end
		}
	}

	return RemoveEmptyAndDuplicateChunks(chunks)
}

// cutPoint finds where to end the chunk window [start, limit): the nearest
// sentence terminator past the window midpoint, else the nearest word
// boundary past the midpoint, else a hard character cut.
func (c *Chunker) cutPoint(text string, start, limit int) int {
	window := text[start:limit]
	scan := window
	if len(scan) > sentenceTail {
		scan = scan[:len(scan)-sentenceTail]
	}

	sentenceEnd := -1
	for _, sep := range []string{". ", "? ", "! "} {
		if i := strings.LastIndex(scan, sep); i > sentenceEnd {
			sentenceEnd = i
		}
	}
	if sentenceEnd > len(window)/2 {
		return start + sentenceEnd + 2
	}

	if i := strings.LastIndexByte(scan, ' '); i > len(window)/2 {
		return start + i
	}

	// last resort: hard cut, aligned to a rune boundary
	for limit > start+1 && !utf8.RuneStart(text[limit]) {
		limit--
	}
	return limit
}

// EstimateTokens approximates the token count of text.
func EstimateTokens(text string) int {
	return len(text) / charsPerToken
}

// NormalizeWhitespace collapses all whitespace runs (including newlines)
// into single spaces.
func NormalizeWhitespace(text string) string {
	var result strings.Builder
	result.Grow(len(text))
	prevSpace := false

	for _, r := range strings.TrimSpace(text) {
		if unicode.IsSpace(r) {
			if !prevSpace {
				result.WriteRune(' ')
				prevSpace = true
			}
		} else {
			result.WriteRune(r)
			prevSpace = false
		}
	}

	return result.String()
}

// RemoveEmptyAndDuplicateChunks drops chunks with empty trimmed content and
// chunks whose content exactly duplicates an earlier chunk, preserving order.
// Survivors are renumbered so ChunkIndex stays contiguous from 0.
func RemoveEmptyAndDuplicateChunks(chunks []entity.Chunk) []entity.Chunk {
	seen := make(map[string]struct{}, len(chunks))
	cleaned := make([]entity.Chunk, 0, len(chunks))

	for _, chunk := range chunks {
		content := strings.TrimSpace(chunk.Content)
		if content == "" {
			continue
		}
		if _, ok := seen[content]; ok {
			continue
		}
		seen[content] = struct{}{}
		chunk.ChunkIndex = len(cleaned)
		cleaned = append(cleaned, chunk)
	}

	return cleaned
}

func copyMetadata(metadata map[string]any) map[string]any {
	out := make(map[string]any, len(metadata)+4)
	for k, v := range metadata {
		out[k] = v
	}
	return out
}
