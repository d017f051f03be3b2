package vector

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"docqa/internal/models"
)

func TestPineconeUpsertWireFormat(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("Api-Key")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{"upsertedCount": 1})
	}))
	defer srv.Close()

	idx, err := NewPineconeIndex(srv.URL, "test-key")
	if err != nil {
		t.Fatalf("new index: %v", err)
	}
	err = idx.Upsert(context.Background(), []Record{{
		ID:     "doc1_0",
		Vector: []float32{0.5, 0.25},
		Metadata: models.PassageMetadata{
			DocumentID: "doc1", FileName: "a.pdf", ChunkIndex: 0, Text: "hello",
		},
	}})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if gotPath != "/vectors/upsert" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api key header missing, got %q", gotKey)
	}
	vectors, ok := gotBody["vectors"].([]any)
	if !ok || len(vectors) != 1 {
		t.Fatalf("unexpected body: %v", gotBody)
	}
	v := vectors[0].(map[string]any)
	if v["id"] != "doc1_0" {
		t.Fatalf("unexpected vector id: %v", v["id"])
	}
	meta := v["metadata"].(map[string]any)
	if meta["document_id"] != "doc1" || meta["file_name"] != "a.pdf" || meta["text"] != "hello" {
		t.Fatalf("unexpected metadata: %v", meta)
	}
}

func TestPineconeUpsertSkipsEmptyBatch(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	idx, _ := NewPineconeIndex(srv.URL, "k")
	if err := idx.Upsert(context.Background(), nil); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if called {
		t.Fatal("empty batch must not hit the wire")
	}
}

func TestPineconeQueryDecodesMatches(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"matches": []map[string]any{
				{"id": "d_1", "score": 0.91, "metadata": map[string]any{"document_id": "d", "file_name": "f.pdf", "chunk_index": 1, "text": "alpha"}},
				{"id": "d_0", "score": 0.85, "metadata": map[string]any{"document_id": "d", "file_name": "f.pdf", "chunk_index": 0, "text": "beta"}},
			},
		})
	}))
	defer srv.Close()

	idx, _ := NewPineconeIndex(srv.URL, "k")
	matches, err := idx.Query(context.Background(), []float32{1, 2}, 5, true)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if gotBody["topK"].(float64) != 5 || gotBody["includeMetadata"].(bool) != true {
		t.Fatalf("unexpected query body: %v", gotBody)
	}
	if len(matches) != 2 || matches[0].Metadata.Text != "alpha" || matches[1].Metadata.Text != "beta" {
		t.Fatalf("unexpected matches: %+v", matches)
	}
	if matches[0].Score != 0.91 {
		t.Fatalf("unexpected score: %f", matches[0].Score)
	}
}

func TestPineconeQueryPropagatesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"index not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	idx, _ := NewPineconeIndex(srv.URL, "k")
	if _, err := idx.Query(context.Background(), []float32{1}, 5, true); err == nil {
		t.Fatal("expected an error from a 404 response")
	}
}

func TestNewPineconeIndexRequiresHost(t *testing.T) {
	if _, err := NewPineconeIndex("", "k"); err == nil {
		t.Fatal("expected an error for empty host")
	}
}
