package providers

import "context"

// Embedder maps one text to a fixed-dimension vector. One provider call per
// text; fanning out across chunks is the caller's job.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Answerer produces an answer to question grounded in docContext. The system
// prompt comes from the caller; implementations own message framing, model
// choice, and sampling parameters.
type Answerer interface {
	Complete(ctx context.Context, system, question, docContext string) (string, error)
}
