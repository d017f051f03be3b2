package pipeline

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/config"
	"docqa/internal/providers"
	"docqa/internal/vector"
)

// Retrieval answers a question from the index: embed the question, query for
// the nearest passages, assemble their texts into a context block, and hand
// that to the generative provider. No retries here; collaborator failures
// propagate wrapped.
type Retrieval struct {
	embedder providers.Embedder
	index    vector.Index
	answerer providers.Answerer
	topK     int
}

func NewRetrieval(cfg config.Config, em providers.Embedder, idx vector.Index, an providers.Answerer) *Retrieval {
	topK := cfg.TopK
	if topK <= 0 {
		topK = 5
	}
	return &Retrieval{embedder: em, index: idx, answerer: an, topK: topK}
}

// Answer assumes a non-empty question; the transport layer validates input.
func (p *Retrieval) Answer(ctx context.Context, question string) (string, error) {
	qvec, err := p.embedder.Embed(ctx, question)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}

	matches, err := p.index.Query(ctx, qvec, p.topK, true)
	if err != nil {
		return "", fmt.Errorf("query index: %w", err)
	}

	// Passages join in index order; a match with no text contributes an
	// empty slot rather than erroring.
	parts := make([]string, 0, len(matches))
	blank := true
	for _, m := range matches {
		parts = append(parts, m.Metadata.Text)
		if strings.TrimSpace(m.Metadata.Text) != "" {
			blank = false
		}
	}
	if blank {
		return FallbackAnswer, nil
	}
	docContext := strings.Join(parts, contextSeparator)

	answer, err := p.answerer.Complete(ctx, systemPrompt, question, docContext)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}
