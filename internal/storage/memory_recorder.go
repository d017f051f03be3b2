package storage

import (
	"context"
	"sync"
	"time"

	"docqa/internal/models"
)

// MemoryRecorder keeps document rows in process. It stands in for the
// Postgres repo when no database is configured, so the service stays usable
// in development with zero external services.
type MemoryRecorder struct {
	mu   sync.Mutex
	rows []models.DocumentRecord
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{}
}

func (m *MemoryRecorder) Insert(ctx context.Context, rec models.DocumentRecord) error {
	_ = ctx
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == rec.ID {
			m.rows[i] = rec
			return nil
		}
	}
	m.rows = append(m.rows, rec)
	return nil
}

func (m *MemoryRecorder) List(ctx context.Context) ([]models.DocumentRecord, error) {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.DocumentRecord, len(m.rows))
	copy(out, m.rows)
	return out, nil
}
