package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"docqa/internal/models"
)

// PineconeIndex talks to a Pinecone serverless index over its REST data
// plane. The composite passage id is used verbatim as the vector id and the
// passage metadata rides along as the vector's metadata object.
type PineconeIndex struct {
	host   string
	apiKey string
	client *http.Client
}

func NewPineconeIndex(host, apiKey string) (*PineconeIndex, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return nil, fmt.Errorf("pinecone index host not configured")
	}
	if !strings.Contains(host, "://") {
		host = "https://" + host
	}
	return &PineconeIndex{
		host:   strings.TrimRight(host, "/"),
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

type pineconeVector struct {
	ID       string                 `json:"id"`
	Values   []float32              `json:"values"`
	Metadata models.PassageMetadata `json:"metadata"`
}

func (p *PineconeIndex) Upsert(ctx context.Context, records []Record) error {
	if len(records) == 0 {
		return nil
	}
	vectors := make([]pineconeVector, 0, len(records))
	for _, r := range records {
		vectors = append(vectors, pineconeVector{ID: r.ID, Values: r.Vector, Metadata: r.Metadata})
	}
	payload, _ := json.Marshal(map[string]any{"vectors": vectors})
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/vectors/upsert", bytes.NewReader(payload))
	p.setHeaders(httpReq)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("pinecone upsert request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return fmt.Errorf("pinecone upsert error %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func (p *PineconeIndex) Query(ctx context.Context, vector []float32, topK int, includeMetadata bool) ([]Match, error) {
	payload, _ := json.Marshal(map[string]any{
		"vector":          vector,
		"topK":            topK,
		"includeMetadata": includeMetadata,
	})
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, p.host+"/query", bytes.NewReader(payload))
	p.setHeaders(httpReq)
	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("pinecone query request failed: %w", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("pinecone query error %d: %s", resp.StatusCode, string(body))
	}
	var parsed struct {
		Matches []struct {
			ID       string                 `json:"id"`
			Score    float64                `json:"score"`
			Metadata models.PassageMetadata `json:"metadata"`
		} `json:"matches"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode pinecone query response: %w", err)
	}
	out := make([]Match, 0, len(parsed.Matches))
	for _, m := range parsed.Matches {
		out = append(out, Match{ID: m.ID, Score: m.Score, Metadata: m.Metadata})
	}
	return out, nil
}

func (p *PineconeIndex) Close() error { return nil }

func (p *PineconeIndex) setHeaders(req *http.Request) {
	req.Header.Set("Api-Key", p.apiKey)
	req.Header.Set("Content-Type", "application/json")
}
