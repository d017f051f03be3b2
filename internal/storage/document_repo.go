package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"docqa/internal/models"
)

// DB holds the postgres pool shared by the document store and, when
// VECTOR_INDEX=pg, the passage index. One pool serves both tables.
type DB struct {
	Pool *pgxpool.Pool
}

// NewDB connects and pings so a bad DATABASE_URL surfaces at wiring time,
// not on the first upload.
func NewDB(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (d *DB) Close() {
	if d != nil && d.Pool != nil {
		d.Pool.Close()
	}
}

// DocumentRepo persists one row per uploaded document in the documents table
// (id uuid primary key, file_name text, storage_path text, created_at
// timestamptz default now()).
type DocumentRepo struct {
	db *DB
}

func NewDocumentRepo(db *DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

func (r *DocumentRepo) Insert(ctx context.Context, rec models.DocumentRecord) error {
	_, err := r.db.Pool.Exec(ctx, `
INSERT INTO documents (id, file_name, storage_path)
VALUES ($1, $2, $3)
ON CONFLICT (id)
DO UPDATE SET
  file_name = EXCLUDED.file_name,
  storage_path = EXCLUDED.storage_path`,
		rec.ID, rec.FileName, rec.StoragePath,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *DocumentRepo) List(ctx context.Context) ([]models.DocumentRecord, error) {
	rows, err := r.db.Pool.Query(ctx, `
SELECT id::text, file_name, storage_path, created_at
FROM documents
ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	out := make([]models.DocumentRecord, 0)
	for rows.Next() {
		var rec models.DocumentRecord
		if err := rows.Scan(&rec.ID, &rec.FileName, &rec.StoragePath, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return out, nil
}
