package models

import "time"

// Upload is one incoming PDF. Data is held only for the duration of the
// ingest call; nothing downstream keeps a reference to it.
type Upload struct {
	FileName string
	Data     []byte
}

// PassageMetadata travels with every indexed vector and comes back on query
// matches. The field set is fixed; the json tags are the wire shape stored in
// the index payload.
type PassageMetadata struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
}

type IngestStatus string

const (
	// StatusCommitted: extracted, embedded, indexed, and every side effect
	// (blob put, metadata insert) succeeded.
	StatusCommitted IngestStatus = "committed"
	// StatusDegraded: passages are in the index and queryable, but a
	// best-effort side effect failed.
	StatusDegraded IngestStatus = "degraded"
	// StatusFailed: extraction, embedding, or the index upsert failed;
	// nothing usable was committed for this document.
	StatusFailed IngestStatus = "failed"
)

// DocumentSummary is the per-document outcome of an ingest batch.
// ChunkCount counts every chunk the splitter produced, including blank ones
// that were never embedded.
type DocumentSummary struct {
	DocumentID string       `json:"document_id"`
	FileName   string       `json:"file_name"`
	ChunkCount int          `json:"chunk_count"`
	Status     IngestStatus `json:"status"`
	Error      string       `json:"error,omitempty"`
}

// DocumentRecord is the row written to the metadata store for each upload.
type DocumentRecord struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	StoragePath string    `json:"storage_path"`
	CreatedAt   time.Time `json:"created_at"`
}
