package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/ingestion"
	"github.com/jonathan/resume-parser/internal/types"
)

// stubResumeParser implements ResumeParser with canned results
type stubResumeParser struct {
	exts     []string
	parseErr error
	textErr  error
}

func newStubResumeParser() *stubResumeParser {
	return &stubResumeParser{exts: []string{".pdf", ".txt"}}
}

func stubData() *types.ResumeData {
	return types.NewResumeData([]types.FieldOutcome{
		{
			Field:    types.FieldName,
			Value:    types.Scalar("Jane Doe"),
			Resolved: true,
			Winner:   types.StrategyNER,
			Attempts: []types.AttemptRecord{{Strategy: types.StrategyNER, Outcome: types.AttemptResolved}},
		},
		{
			Field:    types.FieldEmail,
			Value:    types.Scalar("jane@example.com"),
			Resolved: true,
			Winner:   types.StrategyRegex,
			Attempts: []types.AttemptRecord{{Strategy: types.StrategyRegex, Outcome: types.AttemptResolved}},
		},
	})
}

func (p *stubResumeParser) ParseFile(_ context.Context, path string) (*types.ResumeData, *ingestion.Metadata, error) {
	if p.parseErr != nil {
		return nil, nil, p.parseErr
	}
	format := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	return stubData(), ingestion.NewMetadata(path, format, "stub text"), nil
}

func (p *stubResumeParser) ParseText(_ context.Context, _ string) (*types.ResumeData, error) {
	if p.textErr != nil {
		return nil, p.textErr
	}
	return stubData(), nil
}

func (p *stubResumeParser) Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range p.exts {
		if e == ext {
			return true
		}
	}
	return false
}

func (p *stubResumeParser) Extensions() []string { return p.exts }

func (p *stubResumeParser) ExtractionConfig() *config.Extraction {
	return config.DefaultExtraction()
}

// newTestServer creates a bare server with a stub parser and no database
func newTestServer() *Server {
	return &Server{
		parser:  newStubResumeParser(),
		workers: 2,
		logger:  zerolog.Nop(),
	}
}

// multipartBody builds a multipart form with one file field
func multipartBody(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("failed to write form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

// TestHealthEndpoint tests the /health endpoint
func TestHealthEndpoint(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp["status"] != "ok" {
		t.Errorf("expected status 'ok', got '%s'", resp["status"])
	}
	if resp["database"] != "disabled" {
		t.Errorf("expected database 'disabled', got '%s'", resp["database"])
	}
}

// TestParseEndpoint tests a successful multipart upload parse
func TestParseEndpoint(t *testing.T) {
	s := newTestServer()

	body, contentType := multipartBody(t, "resume", "jane_doe.txt", "Jane Doe\njane@example.com")
	req := httptest.NewRequest(http.MethodPost, "/v1/parse", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.handleParse(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ParseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.RunID != "" {
		t.Errorf("expected no run_id without a database, got %q", resp.RunID)
	}
	if resp.Fields["name"] != "Jane Doe" {
		t.Errorf("expected name 'Jane Doe', got %v", resp.Fields["name"])
	}
	if resp.Metadata == nil || resp.Metadata.Source != "jane_doe.txt" {
		t.Errorf("expected metadata source 'jane_doe.txt', got %+v", resp.Metadata)
	}
	if resp.Winners[types.FieldEmail] != types.StrategyRegex {
		t.Errorf("expected regex winner for email, got %v", resp.Winners[types.FieldEmail])
	}
	if len(resp.Trails[types.FieldName]) != 1 {
		t.Errorf("expected one attempt in name trail, got %d", len(resp.Trails[types.FieldName]))
	}
}

// TestParseEndpoint_UnsupportedType tests rejection of unknown extensions
func TestParseEndpoint_UnsupportedType(t *testing.T) {
	s := newTestServer()

	body, contentType := multipartBody(t, "resume", "resume.xyz", "data")
	req := httptest.NewRequest(http.MethodPost, "/v1/parse", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.handleParse(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Errorf("expected status 415, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !strings.Contains(resp["error"], ".pdf") {
		t.Errorf("expected supported extensions in error, got %q", resp["error"])
	}
}

// TestParseEndpoint_MissingFile tests a form without the resume field
func TestParseEndpoint_MissingFile(t *testing.T) {
	s := newTestServer()

	body, contentType := multipartBody(t, "document", "resume.txt", "data")
	req := httptest.NewRequest(http.MethodPost, "/v1/parse", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.handleParse(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

// TestParseEndpoint_UnparseableDocument tests the 422 mapping
func TestParseEndpoint_UnparseableDocument(t *testing.T) {
	s := newTestServer()
	s.parser.(*stubResumeParser).parseErr = &ingestion.ParseError{
		Path:    "upload.pdf",
		Format:  "pdf",
		Message: "no text layer",
	}

	body, contentType := multipartBody(t, "resume", "scan.pdf", "binary junk")
	req := httptest.NewRequest(http.MethodPost, "/v1/parse", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()

	s.handleParse(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", w.Code)
	}
}

// TestParseTextEndpoint tests parsing raw text
func TestParseTextEndpoint(t *testing.T) {
	s := newTestServer()

	body := `{"text": "Jane Doe\njane@example.com"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/parse/text", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleParseText(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ParseResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Fields["email"] != "jane@example.com" {
		t.Errorf("expected email in fields, got %v", resp.Fields["email"])
	}
	if resp.Metadata != nil {
		t.Errorf("expected no metadata for text parse, got %+v", resp.Metadata)
	}
}

// TestParseTextEndpoint_EmptyText tests rejection of blank input
func TestParseTextEndpoint_EmptyText(t *testing.T) {
	s := newTestServer()

	body := `{"text": "   "}`
	req := httptest.NewRequest(http.MethodPost, "/v1/parse/text", strings.NewReader(body))
	w := httptest.NewRecorder()

	s.handleParseText(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

// TestParseTextEndpoint_InvalidJSON tests rejection of malformed bodies
func TestParseTextEndpoint_InvalidJSON(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/v1/parse/text", strings.NewReader(`{invalid`))
	w := httptest.NewRecorder()

	s.handleParseText(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

// TestParseTextEndpoint_ExtractionFailure tests the 422 mapping
func TestParseTextEndpoint_ExtractionFailure(t *testing.T) {
	s := newTestServer()
	s.parser.(*stubResumeParser).textErr = &extraction.FieldExtractionError{
		Message: "no strategies configured",
	}

	body := `{"text": "Jane Doe"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/parse/text", strings.NewReader(body))
	w := httptest.NewRecorder()

	s.handleParseText(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("expected status 422, got %d", w.Code)
	}
}

// TestBatchEndpoint_MissingInput tests a batch request with no files
func TestBatchEndpoint_MissingInput(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/v1/batch", strings.NewReader(`{}`))
	w := httptest.NewRecorder()

	s.handleBatch(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

// TestBatchEndpoint_StreamsProgress tests SSE progress and summary events
func TestBatchEndpoint_StreamsProgress(t *testing.T) {
	s := newTestServer()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.txt"), []byte("Jane Doe"), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	body := fmt.Sprintf(`{"dir": %q, "workers": 1}`, dir)
	req := httptest.NewRequest(http.MethodPost, "/v1/batch", strings.NewReader(body))
	w := httptest.NewRecorder()

	s.handleBatch(w, req)

	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %q", ct)
	}
	out := w.Body.String()
	if !strings.Contains(out, "event: progress") {
		t.Errorf("expected progress events in output:\n%s", out)
	}
	if !strings.Contains(out, "event: summary") {
		t.Errorf("expected summary event in output:\n%s", out)
	}
	if !strings.Contains(out, `"succeeded":1`) {
		t.Errorf("expected one success in summary:\n%s", out)
	}
}

// TestValidateEndpoint tests schema validation of a well-formed document
func TestValidateEndpoint(t *testing.T) {
	s := newTestServer()

	body := `{"name": "Jane Doe", "email": "jane@example.com", "skills": ["Go", "SQL"]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/validate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	s.handleValidate(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp ValidateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if !resp.Valid {
		t.Errorf("expected valid document, got errors: %+v", resp.Errors)
	}
}

// TestValidateEndpoint_SchemaViolations tests the per-field error report
func TestValidateEndpoint_SchemaViolations(t *testing.T) {
	s := newTestServer()

	body := `{"name": "Jane Doe", "email": "not-an-email", "phone": "555-0100"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/validate", strings.NewReader(body))
	w := httptest.NewRecorder()

	s.handleValidate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d: %s", w.Code, w.Body.String())
	}

	var resp ValidateResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if resp.Valid {
		t.Fatal("expected invalid document")
	}
	if len(resp.Errors) == 0 {
		t.Fatal("expected at least one schema violation")
	}
	fields := make(map[string]bool)
	for _, issue := range resp.Errors {
		fields[issue.Field] = true
	}
	if !fields["email"] {
		t.Errorf("expected a violation at email, got %+v", resp.Errors)
	}
}

// TestValidateEndpoint_MalformedJSON tests rejection of non-JSON bodies
func TestValidateEndpoint_MalformedJSON(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/v1/validate", strings.NewReader(`{not json`))
	w := httptest.NewRecorder()

	s.handleValidate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "validation error") {
		t.Errorf("expected validation error message, got %s", w.Body.String())
	}
}

// TestListRunsEndpoint_NoDatabase tests the 503 mapping
func TestListRunsEndpoint_NoDatabase(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/v1/runs", nil)
	w := httptest.NewRecorder()

	s.handleListRuns(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

// TestGetRunEndpoint_InvalidID tests GET /v1/runs/{id} with invalid UUID
func TestGetRunEndpoint_InvalidID(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/v1/runs/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	w := httptest.NewRecorder()

	s.handleGetRun(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

// TestDeleteRunEndpoint_InvalidID tests DELETE /v1/runs/{id} with invalid UUID
func TestDeleteRunEndpoint_InvalidID(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodDelete, "/v1/runs/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	w := httptest.NewRecorder()

	s.handleDeleteRun(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
}

// TestFieldsEndpoint tests the field catalog
func TestFieldsEndpoint(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/v1/fields", nil)
	w := httptest.NewRecorder()

	s.handleFields(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var resp struct {
		Fields []FieldInfo `json:"fields"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	if len(resp.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(resp.Fields))
	}

	byField := make(map[types.FieldType]FieldInfo)
	for _, f := range resp.Fields {
		byField[f.Field] = f
	}
	if byField[types.FieldName].Shape != "scalar" {
		t.Errorf("expected scalar shape for name, got %q", byField[types.FieldName].Shape)
	}
	if byField[types.FieldSkills].Shape != "list" {
		t.Errorf("expected list shape for skills, got %q", byField[types.FieldSkills].Shape)
	}
	emailChain := byField[types.FieldEmail].Strategies
	if len(emailChain) != 3 || emailChain[0] != types.StrategyRegex {
		t.Errorf("unexpected email chain: %v", emailChain)
	}
}

// TestLoginWithoutAuthConfigured tests the 501 mapping
func TestLoginWithoutAuthConfigured(t *testing.T) {
	s := newTestServer()

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"api_key": "anything"}`))
	w := httptest.NewRecorder()

	s.handleLogin(w, req)

	if w.Code != http.StatusNotImplemented {
		t.Errorf("expected status 501, got %d", w.Code)
	}
}

// TestAuthProtectedRoutes tests the login flow end to end through the router
func TestAuthProtectedRoutes(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret-do-not-use")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	creds, err := config.NewCredentials()
	if err != nil {
		t.Fatalf("failed to build credentials: %v", err)
	}
	hash, err := creds.HashKey("letmein")
	if err != nil {
		t.Fatalf("failed to hash key: %v", err)
	}

	srv, err := New(newStubResumeParser(), Config{APIKeyHash: hash, Logger: zerolog.Nop()})
	if err != nil {
		t.Fatalf("failed to build server: %v", err)
	}
	handler := srv.Handler()

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/fields", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for health, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"api_key": "wrong"}`)))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad key, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/auth/login",
		strings.NewReader(`{"api_key": "letmein", "client": "ci"}`)))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for login, got %d: %s", w.Code, w.Body.String())
	}
	var login LoginResponse
	if err := json.Unmarshal(w.Body.Bytes(), &login); err != nil {
		t.Fatalf("failed to parse login response: %v", err)
	}
	if login.Token == "" {
		t.Fatal("expected a token in login response")
	}
	if login.Client != "ci" {
		t.Errorf("expected client 'ci', got %q", login.Client)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/fields", nil)
	req.Header.Set("Authorization", "Bearer "+login.Token)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d: %s", w.Code, w.Body.String())
	}
}

// TestCORSMiddleware tests CORS headers are set
func TestCORSMiddleware(t *testing.T) {
	s := newTestServer()

	handler := s.withCORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("expected CORS header Access-Control-Allow-Origin: *")
	}
	if w.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Error("expected CORS header Access-Control-Allow-Methods")
	}
}

// TestCORSMiddleware_OPTIONS tests OPTIONS preflight request
func TestCORSMiddleware_OPTIONS(t *testing.T) {
	s := newTestServer()

	handler := s.withCORS(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("should not reach here")) //nolint:errcheck
	}))

	req := httptest.NewRequest(http.MethodOptions, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200 for OPTIONS, got %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Error("OPTIONS response should have empty body")
	}
}

// TestLoggingMiddleware tests that logging middleware passes through
func TestLoggingMiddleware(t *testing.T) {
	s := newTestServer()

	called := false
	handler := s.withLogging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if !called {
		t.Error("logging middleware should call next handler")
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
}

// TestSSEWriter tests SSE event writing
func TestSSEWriter(t *testing.T) {
	w := httptest.NewRecorder()

	sse, err := NewSSEWriter(w)
	if err != nil {
		t.Fatalf("failed to create SSE writer: %v", err)
	}

	event := map[string]string{"stage": "parse", "message": "hello"}
	if err := sse.WriteEvent("progress", event); err != nil {
		t.Fatalf("failed to write event: %v", err)
	}

	if !bytes.Contains(w.Body.Bytes(), []byte("event: progress")) {
		t.Error("expected 'event: progress' in output")
	}
	if !bytes.Contains(w.Body.Bytes(), []byte("data:")) {
		t.Error("expected 'data:' in output")
	}
}

// TestJSONResponse tests jsonResponse helper
func TestJSONResponse(t *testing.T) {
	s := newTestServer()
	w := httptest.NewRecorder()

	s.jsonResponse(w, http.StatusOK, map[string]string{"key": "value"})

	if w.Header().Get("Content-Type") != "application/json" {
		t.Error("expected Content-Type: application/json")
	}
	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if resp["key"] != "value" {
		t.Errorf("expected key='value', got '%s'", resp["key"])
	}
}

// TestErrorResponse tests errorResponse helper
func TestErrorResponse(t *testing.T) {
	s := newTestServer()
	w := httptest.NewRecorder()

	s.errorResponse(w, http.StatusBadRequest, "test error")

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if resp["error"] != "test error" {
		t.Errorf("expected error='test error', got '%s'", resp["error"])
	}
}
