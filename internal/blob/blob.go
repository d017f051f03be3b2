// Package blob stores raw uploaded PDFs. Writes are best effort from the
// pipeline's point of view: a failed put degrades the document's ingest
// outcome but never fails it.
package blob

import "context"

// Store persists one named blob. path is slash-separated and opaque to the
// caller, typically "<document_id>/<file_name>".
type Store interface {
	Put(ctx context.Context, path string, data []byte) error
}
