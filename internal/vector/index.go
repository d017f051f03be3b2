package vector

import (
	"context"

	"docqa/internal/models"
)

// Record is one indexed passage: the composite passage id, its embedding,
// and the metadata returned on matches.
type Record struct {
	ID       string
	Vector   []float32
	Metadata models.PassageMetadata
}

// Match is a query hit. Matches come back in the order the backing index
// returned them; score semantics vary by backend and callers only rely on
// the ordering.
type Match struct {
	ID       string
	Score    float64
	Metadata models.PassageMetadata
}

// Index is the nearest-neighbor store behind both ingestion and retrieval.
type Index interface {
	Upsert(ctx context.Context, records []Record) error
	Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]Match, error)
	Close() error
}
