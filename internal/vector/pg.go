package vector

import (
	"context"
	"fmt"
	"strings"

	"docqa/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PGIndex keeps vectors in Postgres with the pgvector extension, for
// deployments that already run the metadata store there. Expected table:
//
//	CREATE TABLE passages (
//	    id          text PRIMARY KEY,
//	    document_id text NOT NULL,
//	    file_name   text NOT NULL,
//	    chunk_index int  NOT NULL,
//	    text        text NOT NULL,
//	    embedding   vector NOT NULL
//	);
type PGIndex struct {
	pool *pgxpool.Pool
}

// NewPGIndex wraps an existing pool. The pool stays owned by the caller;
// Close here is a no-op.
func NewPGIndex(pool *pgxpool.Pool) *PGIndex {
	return &PGIndex{pool: pool}
}

func (p *PGIndex) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx upsert passages: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	for _, r := range records {
		_, err := tx.Exec(ctx, `
INSERT INTO passages (id, document_id, file_name, chunk_index, text, embedding)
VALUES ($1, $2, $3, $4, $5, $6::vector)
ON CONFLICT (id)
DO UPDATE SET
  document_id = EXCLUDED.document_id,
  file_name = EXCLUDED.file_name,
  chunk_index = EXCLUDED.chunk_index,
  text = EXCLUDED.text,
  embedding = EXCLUDED.embedding`,
			r.ID, r.Metadata.DocumentID, r.Metadata.FileName, r.Metadata.ChunkIndex, r.Metadata.Text, vectorLiteral(r.Vector),
		)
		if err != nil {
			return fmt.Errorf("upsert passage %s: %w", r.ID, err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit passages tx: %w", err)
	}
	return nil
}

func (p *PGIndex) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]Match, error) {
	if topK <= 0 {
		return nil, nil
	}
	rows, err := p.pool.Query(ctx, `
SELECT id, document_id, file_name, chunk_index, text,
       1 - (embedding <=> $1::vector) AS score
FROM passages
ORDER BY embedding <=> $1::vector
LIMIT $2`, vectorLiteral(vector), topK)
	if err != nil {
		return nil, fmt.Errorf("query passages: %w", err)
	}
	defer rows.Close()

	matches := make([]Match, 0, topK)
	for rows.Next() {
		var (
			m    Match
			meta models.PassageMetadata
		)
		if err := rows.Scan(&m.ID, &meta.DocumentID, &meta.FileName, &meta.ChunkIndex, &meta.Text, &m.Score); err != nil {
			return nil, fmt.Errorf("scan passage match: %w", err)
		}
		if includeMetadata {
			m.Metadata = meta
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passage matches: %w", err)
	}
	return matches, nil
}

func (p *PGIndex) Close() error { return nil }

func vectorLiteral(v []float32) string {
	parts := make([]string, 0, len(v))
	for _, x := range v {
		parts = append(parts, fmt.Sprintf("%f", x))
	}
	return "[" + strings.Join(parts, ",") + "]"
}
