// Package pipeline holds the two-phase core: ingestion (extract, chunk,
// embed, index) and retrieval (embed, search, assemble context, answer).
// Collaborators are injected as narrow interfaces so both phases run
// unchanged against real services or test doubles.
package pipeline

import (
	"context"

	"docqa/internal/models"
)

const (
	// systemPrompt frames every generative call.
	systemPrompt = "You are an AI assistant that answers questions based on the provided PDF context."

	// FallbackAnswer is returned verbatim when retrieval yields no usable
	// context; the generative provider is not called in that case.
	FallbackAnswer = "I could not find relevant information in the uploaded PDFs."

	// contextSeparator joins retrieved passages into the prompt context.
	contextSeparator = "\n\n---\n\n"
)

// Extractor turns raw document bytes into plain text. An empty string with a
// nil error is a valid outcome (image-only documents).
type Extractor interface {
	Extract(data []byte) (string, error)
}

// MetadataStore records one row per ingested document. Failures are treated
// as degradation, not ingestion failure.
type MetadataStore interface {
	Insert(ctx context.Context, rec models.DocumentRecord) error
}
