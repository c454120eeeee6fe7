package chat

import (
	"context"
	"fmt"
	"log"
	"strings"

	"book-rag-api/internal/domain/entity"
)

// RefusalAnswer is the fixed sentence returned whenever the answer is not
// present in the provided context, or generation fails.
const RefusalAnswer = "This information is not available in the book."

const (
	ModeFullBook     = "full-book"
	ModeSelectedText = "selected-text"
)

// ChatService is the external text-generation capability.
type ChatService interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Generator produces answers strictly derived from supplied context.
// Grounding is enforced on the output, not just requested in the prompt.
type Generator struct {
	chat ChatService
}

func NewGenerator(chat ChatService) *Generator {
	return &Generator{chat: chat}
}

// GenerateAnswer builds a constrained prompt from the retrieved chunks and
// the query, and returns the model's answer. A response containing the
// refusal sentence anywhere is normalized to exactly that sentence; a
// generation failure returns the refusal sentence as well.
func (g *Generator) GenerateAnswer(ctx context.Context, query string, contextChunks []entity.RetrievedChunk, mode string) string {
	prompt := g.buildPrompt(query, contextChunks, mode)

	answer, err := g.chat.Complete(ctx, prompt)
	if err != nil {
		log.Printf("error generating answer: %v", err)
		return RefusalAnswer
	}

	answer = strings.TrimSpace(answer)
	if strings.Contains(answer, RefusalAnswer) {
		// strip any hedging the model wrapped around the refusal
		return RefusalAnswer
	}

	return answer
}

func (g *Generator) buildPrompt(query string, contextChunks []entity.RetrievedChunk, mode string) string {
	var sources strings.Builder
	for i, chunk := range contextChunks {
		sources.WriteString(fmt.Sprintf("Source %d: %s\n\n", i+1, chunk.Content))
	}

	label, heading := "book content", "Book content"
	if mode == ModeSelectedText {
		label, heading = "selected text", "Selected text"
	}

	return fmt.Sprintf(`Based ONLY on the following %s, answer the question.
If the answer is not available in the provided content, respond with exactly:
%q

%s:
%s
Question: %s

Answer:`, label, RefusalAnswer, heading, sources.String(), query)
}

// ValidateResponse is a weak post-hoc grounding check: the refusal sentence
// is always valid, and any non-empty response is currently accepted. A real
// entailment or overlap check would slot in here.
func (g *Generator) ValidateResponse(response string, contextChunks []entity.RetrievedChunk) bool {
	if response == RefusalAnswer {
		return true
	}
	return len(response) > 0
}
