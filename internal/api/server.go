package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"docqa/internal/blob"
	"docqa/internal/config"
	"docqa/internal/extract"
	"docqa/internal/models"
	"docqa/internal/pipeline"
	"docqa/internal/providers"
	"docqa/internal/storage"
	"docqa/internal/vector"
)

type ingester interface {
	Ingest(ctx context.Context, uploads []models.Upload) ([]models.DocumentSummary, error)
}

type asker interface {
	Answer(ctx context.Context, question string) (string, error)
}

type documentStore interface {
	Insert(ctx context.Context, rec models.DocumentRecord) error
	List(ctx context.Context) ([]models.DocumentRecord, error)
}

type Server struct {
	cfg       config.Config
	db        *storage.DB
	documents documentStore
	ingester  ingester
	asker     asker
	providers *providers.Manager
}

func NewServer(cfg config.Config) *Server {
	pm, err := providers.NewManager(cfg)
	if err != nil {
		panic(err)
	}

	var (
		db   *storage.DB
		meta documentStore
	)
	switch cfg.MetadataStore {
	case "memory":
		meta = storage.NewMemoryRecorder()
	default:
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		db, err = storage.NewDB(ctx, cfg.PostgresURL)
		if err != nil {
			panic(err)
		}
		meta = storage.NewDocumentRepo(db)
	}

	idx, err := newIndex(cfg, db)
	if err != nil {
		panic(err)
	}
	blobs, err := newBlobStore(cfg)
	if err != nil {
		panic(err)
	}

	return &Server{
		cfg:       cfg,
		db:        db,
		documents: meta,
		ingester:  pipeline.NewIngestion(cfg, extract.NewPDF(), pm.Embedder(), idx, blobs, meta),
		asker:     pipeline.NewRetrieval(cfg, pm.Embedder(), idx, pm.Answerer()),
		providers: pm,
	}
}

func newIndex(cfg config.Config, db *storage.DB) (vector.Index, error) {
	switch cfg.VectorIndex {
	case "pinecone":
		return vector.NewPineconeIndex(cfg.PineconeHost, cfg.PineconeAPIKey)
	case "qdrant":
		return vector.NewQdrantIndex(cfg.QdrantAddr, cfg.QdrantCollection)
	case "pg":
		if db == nil {
			return nil, fmt.Errorf("pg vector index requires the postgres metadata store")
		}
		return vector.NewPGIndex(db.Pool), nil
	default:
		return vector.NewMemoryIndex(), nil
	}
}

func newBlobStore(cfg config.Config) (blob.Store, error) {
	switch cfg.BlobStore {
	case "supabase":
		return blob.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseBucket)
	case "none":
		return nil, nil
	default:
		return blob.NewLocalStore(cfg.BlobDir)
	}
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/ask", s.handleAsk)
	mux.HandleFunc("/documents", s.handleDocuments)
	return withCORS(mux)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeErr(w, http.StatusNotFound, fmt.Errorf("not found"))
		return
	}
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "docqa api is running"})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	if err := r.ParseMultipartForm(128 << 20); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("parse multipart: %w", err))
		return
	}

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		if single, ok := firstSingleFile(r.MultipartForm.File); ok {
			files = append(files, single)
		}
	}

	uploads := make([]models.Upload, 0, len(files))
	for _, fh := range files {
		if !strings.HasSuffix(strings.ToLower(fh.Filename), ".pdf") {
			continue
		}
		data, err := readUploadedFile(fh)
		if err != nil {
			writeErr(w, http.StatusInternalServerError, err)
			return
		}
		uploads = append(uploads, models.Upload{FileName: filepath.Base(fh.Filename), Data: data})
	}
	// An empty form and a form with only non-pdf files hit the same boundary.
	if len(uploads) == 0 {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("no pdf files provided"))
		return
	}

	summaries, err := s.ingester.Ingest(r.Context(), uploads)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if summaries == nil {
		summaries = []models.DocumentSummary{}
	}
	// Per-document failures are reported inside the summaries, not as an
	// HTTP error; a batch with one bad PDF still returns 200.
	writeJSON(w, http.StatusOK, map[string]any{"uploaded": summaries})
}

func readUploadedFile(fh *multipart.FileHeader) ([]byte, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return data, nil
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("invalid json: %w", err))
		return
	}
	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		writeErr(w, http.StatusBadRequest, fmt.Errorf("question is required"))
		return
	}

	answer, err := s.asker.Answer(r.Context(), req.Question)
	if err != nil {
		writeErr(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"answer": answer})
}

func (s *Server) handleDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeErr(w, http.StatusMethodNotAllowed, fmt.Errorf("method not allowed"))
		return
	}
	docs, err := s.documents.List(r.Context())
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	if docs == nil {
		docs = []models.DocumentRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func firstSingleFile(m map[string][]*multipart.FileHeader) (*multipart.FileHeader, bool) {
	for _, v := range m {
		if len(v) > 0 {
			return v[0], true
		}
	}
	return nil, false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, code int, err error) {
	apiErr := toAPIError(code, err)
	writeJSON(w, code, map[string]any{
		"error": map[string]any{
			"code":    apiErr.Code,
			"message": apiErr.Message,
		},
	})
}

type apiError struct {
	Code    string
	Message string
}

func toAPIError(status int, err error) apiError {
	msg := "Request failed."
	code := "DQ-API-4000"
	raw := ""
	if err != nil {
		raw = strings.ToLower(err.Error())
	}

	switch {
	case status == http.StatusBadGateway:
		code = "DQ-PROV-5020"
		msg = "Upstream provider unavailable. Retry shortly."
		switch providers.ClassifyError(err) {
		case providers.ErrorQuota:
			code = "DQ-PROV-5021"
			msg = "Provider quota is exhausted. Check billing or switch providers."
		case providers.ErrorRate:
			code = "DQ-PROV-5022"
			msg = "Provider rate limit hit. Retry shortly."
		case providers.ErrorContext:
			code = "DQ-PROV-5023"
			msg = "Retrieved context exceeds the model limit. Ask a narrower question."
		}
		return apiError{Code: code, Message: msg}
	case status >= 500:
		switch {
		case strings.Contains(raw, "relation") && strings.Contains(raw, "does not exist"):
			return apiError{
				Code:    "DQ-DB-5001",
				Message: "Database schema is not initialized. Create the documents table and retry.",
			}
		case strings.Contains(raw, "connect"), strings.Contains(raw, "dial tcp"), strings.Contains(raw, "connection refused"):
			return apiError{
				Code:    "DQ-DB-5002",
				Message: "Database connection is unavailable. Check local services and retry.",
			}
		default:
			return apiError{
				Code:    "DQ-API-5000",
				Message: "Internal server error. Please retry or check service logs.",
			}
		}
	case status == http.StatusBadRequest:
		code = "DQ-API-4001"
		msg = "Invalid request. Check inputs and retry."
	case status == http.StatusNotFound:
		code = "DQ-API-4004"
		msg = "Requested resource was not found."
	case status == http.StatusMethodNotAllowed:
		code = "DQ-API-4005"
		msg = "This endpoint does not support the requested method."
	}

	// For 4xx, keep user-safe validation context only.
	if status >= 400 && status < 500 && err != nil {
		switch {
		case strings.Contains(raw, "question is required"):
			msg = "A question is required."
		case strings.Contains(raw, "no pdf files provided"):
			msg = "No PDF files were provided."
		case strings.Contains(raw, "invalid json"):
			msg = "Malformed JSON request body."
		case strings.Contains(raw, "parse multipart"):
			msg = "Malformed multipart upload."
		}
	}

	return apiError{Code: code, Message: msg}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
