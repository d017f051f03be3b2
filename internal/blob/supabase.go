package blob

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// SupabaseStore uploads blobs to a Supabase Storage bucket through the
// storage REST API with a service key.
type SupabaseStore struct {
	baseURL string
	key     string
	bucket  string
	client  *http.Client
}

func NewSupabaseStore(baseURL, key, bucket string) (*SupabaseStore, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" || key == "" {
		return nil, fmt.Errorf("supabase url and key are required")
	}
	if bucket == "" {
		bucket = "pdfs"
	}
	return &SupabaseStore{
		baseURL: strings.TrimRight(baseURL, "/"),
		key:     key,
		bucket:  bucket,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

func (s *SupabaseStore) Put(ctx context.Context, path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("empty blob path")
	}
	endpoint := s.baseURL + "/storage/v1/object/" + s.bucket + "/" + escapePath(path)
	httpReq, _ := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	httpReq.Header.Set("Authorization", "Bearer "+s.key)
	httpReq.Header.Set("apikey", s.key)
	httpReq.Header.Set("Content-Type", "application/pdf")
	httpReq.Header.Set("x-upsert", "true")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("supabase upload request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("supabase upload error %d: %s", resp.StatusCode, string(body))
	}
	return nil
}

func escapePath(p string) string {
	parts := strings.Split(p, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return strings.Join(parts, "/")
}
