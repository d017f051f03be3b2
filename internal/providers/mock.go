package providers

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

// MockProvider is the default when no real provider is configured. Embeddings
// are deterministic functions of the input text, so similarity is stable
// across runs and tests; answers are canned but echo the question.
type MockProvider struct {
	dim int
}

func NewMockProvider(dim int) *MockProvider {
	if dim <= 0 {
		dim = 1536
	}
	return &MockProvider{dim: dim}
}

func (m *MockProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	_ = ctx
	return deterministicVector(text, m.dim), nil
}

func (m *MockProvider) Complete(ctx context.Context, system, question, docContext string) (string, error) {
	_ = ctx
	_ = system
	return fmt.Sprintf("Deterministic mock answer to %q based on %d characters of retrieved context. Configure a real provider for semantic quality.", question, len(docContext)), nil
}

func deterministicVector(input string, dim int) []float32 {
	vec := make([]float32, dim)
	seed := []byte(input)
	if len(seed) == 0 {
		seed = []byte("empty")
	}
	for i := 0; i < dim; i++ {
		h := sha256.Sum256(append(seed, byte(i%251)))
		u := binary.BigEndian.Uint32(h[:4])
		vec[i] = float32(u%2000)/1000.0 - 1.0
	}
	return normalize(vec)
}

func normalize(v []float32) []float32 {
	var sum float32
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}
	inv := float32(1.0 / (float64(sum) + 1e-9))
	for i := range v {
		v[i] *= inv
	}
	return v
}
