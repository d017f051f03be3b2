package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"docqa/internal/models"
)

type fakeIngester func(context.Context, []models.Upload) ([]models.DocumentSummary, error)

func (f fakeIngester) Ingest(ctx context.Context, uploads []models.Upload) ([]models.DocumentSummary, error) {
	return f(ctx, uploads)
}

type fakeAsker func(context.Context, string) (string, error)

func (f fakeAsker) Answer(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

type fakeDocs struct {
	rows    []models.DocumentRecord
	listErr error
}

func (f *fakeDocs) Insert(ctx context.Context, rec models.DocumentRecord) error {
	f.rows = append(f.rows, rec)
	return nil
}

func (f *fakeDocs) List(ctx context.Context) ([]models.DocumentRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.rows, nil
}

type errEnvelope struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Routes().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func multipartBody(t *testing.T, field string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, content := range files {
		fw, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestRootBanner(t *testing.T) {
	s := &Server{}
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Message string `json:"message"`
	}
	decodeBody(t, rec, &body)
	if body.Message != "docqa api is running" {
		t.Fatalf("message = %q", body.Message)
	}
}

func TestUnknownPathReturns404(t *testing.T) {
	s := &Server{}
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	var env errEnvelope
	decodeBody(t, rec, &env)
	if env.Error.Code != "DQ-API-4004" {
		t.Fatalf("code = %q", env.Error.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := &Server{}
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		OK bool `json:"ok"`
	}
	decodeBody(t, rec, &body)
	if !body.OK {
		t.Fatalf("ok = false, want true")
	}
}

func TestUploadIngestsPDFsOnly(t *testing.T) {
	var got []models.Upload
	s := &Server{ingester: fakeIngester(func(_ context.Context, uploads []models.Upload) ([]models.DocumentSummary, error) {
		got = uploads
		out := make([]models.DocumentSummary, len(uploads))
		for i, u := range uploads {
			out[i] = models.DocumentSummary{
				DocumentID: "doc-1",
				FileName:   u.FileName,
				ChunkCount: 2,
				Status:     models.StatusCommitted,
			}
		}
		return out, nil
	})}

	body, contentType := multipartBody(t, "files", map[string]string{
		"report.PDF": "%PDF-1.4 fake",
		"notes.txt":  "not a pdf",
	})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if len(got) != 1 {
		t.Fatalf("ingested %d uploads, want 1 (non-pdf skipped)", len(got))
	}
	if got[0].FileName != "report.PDF" {
		t.Fatalf("file name = %q", got[0].FileName)
	}
	if string(got[0].Data) != "%PDF-1.4 fake" {
		t.Fatalf("upload data = %q", got[0].Data)
	}

	var resp struct {
		Uploaded []models.DocumentSummary `json:"uploaded"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Uploaded) != 1 || resp.Uploaded[0].Status != models.StatusCommitted {
		t.Fatalf("uploaded = %+v", resp.Uploaded)
	}
}

func TestUploadStripsDirectoryFromFileName(t *testing.T) {
	var got []models.Upload
	s := &Server{ingester: fakeIngester(func(_ context.Context, uploads []models.Upload) ([]models.DocumentSummary, error) {
		got = uploads
		return nil, nil
	})}

	body, contentType := multipartBody(t, "files", map[string]string{"../../sneaky.pdf": "x"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(got) != 1 || got[0].FileName != "sneaky.pdf" {
		t.Fatalf("uploads = %+v", got)
	}
}

func TestUploadFallsBackToAnyFileField(t *testing.T) {
	var got []models.Upload
	s := &Server{ingester: fakeIngester(func(_ context.Context, uploads []models.Upload) ([]models.DocumentSummary, error) {
		got = uploads
		return nil, nil
	})}

	body, contentType := multipartBody(t, "document", map[string]string{"single.pdf": "x"})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(got) != 1 || got[0].FileName != "single.pdf" {
		t.Fatalf("uploads = %+v", got)
	}
}

func TestUploadRejectsEmptyForm(t *testing.T) {
	s := &Server{}
	body, contentType := multipartBody(t, "files", nil)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(s, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var env errEnvelope
	decodeBody(t, rec, &env)
	if env.Error.Message != "No PDF files were provided." {
		t.Fatalf("message = %q", env.Error.Message)
	}
}

func TestUploadRejectsFormWithoutAnyPDF(t *testing.T) {
	s := &Server{ingester: fakeIngester(func(context.Context, []models.Upload) ([]models.DocumentSummary, error) {
		t.Fatal("ingester must not run when every file is filtered out")
		return nil, nil
	})}

	body, contentType := multipartBody(t, "files", map[string]string{
		"notes.txt":  "plain text",
		"photo.jpeg": "jpeg bytes",
	})
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := serve(s, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var env errEnvelope
	decodeBody(t, rec, &env)
	if env.Error.Code != "DQ-API-4001" {
		t.Fatalf("code = %q", env.Error.Code)
	}
	if env.Error.Message != "No PDF files were provided." {
		t.Fatalf("message = %q", env.Error.Message)
	}
}

func TestUploadMethodNotAllowed(t *testing.T) {
	s := &Server{}
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/upload", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestAskTrimsQuestion(t *testing.T) {
	var asked string
	s := &Server{asker: fakeAsker(func(_ context.Context, q string) (string, error) {
		asked = q
		return "42", nil
	})}

	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"  what is it?  "}`))
	rec := serve(s, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if asked != "what is it?" {
		t.Fatalf("asked = %q", asked)
	}
	var resp struct {
		Answer string `json:"answer"`
	}
	decodeBody(t, rec, &resp)
	if resp.Answer != "42" {
		t.Fatalf("answer = %q", resp.Answer)
	}
}

func TestAskRejectsBlankQuestion(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"   "}`))
	rec := serve(s, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var env errEnvelope
	decodeBody(t, rec, &env)
	if env.Error.Message != "A question is required." {
		t.Fatalf("message = %q", env.Error.Message)
	}
}

func TestAskRejectsMalformedJSON(t *testing.T) {
	s := &Server{}
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":`))
	rec := serve(s, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var env errEnvelope
	decodeBody(t, rec, &env)
	if env.Error.Message != "Malformed JSON request body." {
		t.Fatalf("message = %q", env.Error.Message)
	}
}

func TestAskMapsPipelineFailureToBadGateway(t *testing.T) {
	s := &Server{asker: fakeAsker(func(context.Context, string) (string, error) {
		return "", errors.New("generate answer: groq completion error 429: rate limit reached")
	})}
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"q"}`))
	rec := serve(s, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var env errEnvelope
	decodeBody(t, rec, &env)
	if env.Error.Code != "DQ-PROV-5022" {
		t.Fatalf("code = %q, want rate limit code", env.Error.Code)
	}
}

func TestAskQuotaFailureCode(t *testing.T) {
	s := &Server{asker: fakeAsker(func(context.Context, string) (string, error) {
		return "", errors.New("embed question: openai embedding error 402: insufficient_quota")
	})}
	req := httptest.NewRequest(http.MethodPost, "/ask", strings.NewReader(`{"question":"q"}`))
	rec := serve(s, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var env errEnvelope
	decodeBody(t, rec, &env)
	if env.Error.Code != "DQ-PROV-5021" {
		t.Fatalf("code = %q, want quota code", env.Error.Code)
	}
}

func TestDocumentsListsStore(t *testing.T) {
	s := &Server{documents: &fakeDocs{rows: []models.DocumentRecord{
		{ID: "doc-1", FileName: "a.pdf", StoragePath: "doc-1/a.pdf"},
	}}}
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/documents", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		Documents []models.DocumentRecord `json:"documents"`
	}
	decodeBody(t, rec, &resp)
	if len(resp.Documents) != 1 || resp.Documents[0].ID != "doc-1" {
		t.Fatalf("documents = %+v", resp.Documents)
	}
}

func TestDocumentsEmptyStoreIsArray(t *testing.T) {
	s := &Server{documents: &fakeDocs{}}
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/documents", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"documents":[]`) {
		t.Fatalf("body = %s, want empty array not null", rec.Body.String())
	}
}

func TestDocumentsStoreError(t *testing.T) {
	s := &Server{documents: &fakeDocs{listErr: errors.New("connection refused")}}
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/documents", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var env errEnvelope
	decodeBody(t, rec, &env)
	if env.Error.Code != "DQ-DB-5002" {
		t.Fatalf("code = %q", env.Error.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := &Server{}
	rec := serve(s, httptest.NewRequest(http.MethodOptions, "/ask", nil))

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Methods"); got != "GET,POST,OPTIONS" {
		t.Fatalf("allow-methods = %q", got)
	}
}
