package vector

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force cosine index over an in-process map. It is the
// default backend so the service runs with no external services, and it backs
// the tests; it is not meant to hold production corpora.
type MemoryIndex struct {
	mu   sync.RWMutex
	rows map[string]Record
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{rows: make(map[string]Record)}
}

func (m *MemoryIndex) Upsert(ctx context.Context, records []Record) error {
	_ = ctx
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range records {
		m.rows[r.ID] = r
	}
	return nil
}

func (m *MemoryIndex) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]Match, error) {
	_ = ctx
	if topK <= 0 {
		return nil, nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Match, 0, len(m.rows))
	for _, r := range m.rows {
		match := Match{ID: r.ID, Score: cosine(vector, r.Vector)}
		if includeMetadata {
			match.Metadata = r.Metadata
		}
		out = append(out, match)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Score > out[j].Score
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (m *MemoryIndex) Close() error { return nil }

// Len reports how many records are held; test helper.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// Get returns a stored record by id; test helper.
func (m *MemoryIndex) Get(id string) (Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rows[id]
	return r, ok
}

func cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
