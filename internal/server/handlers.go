package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/ingestion"
	"github.com/jonathan/resume-parser/internal/pipeline"
	"github.com/jonathan/resume-parser/internal/schemas"
	"github.com/jonathan/resume-parser/internal/store"
	"github.com/jonathan/resume-parser/internal/types"
)

// maxUploadBytes caps resume uploads. Real resumes are well under a
// megabyte of text; 20 MB leaves room for scanned PDFs.
const maxUploadBytes = 20 << 20

// ResumeParser is the parsing surface the server depends on. The root
// resumeparser.Parser satisfies it.
type ResumeParser interface {
	ParseFile(ctx context.Context, path string) (*types.ResumeData, *ingestion.Metadata, error)
	ParseText(ctx context.Context, text string) (*types.ResumeData, error)
	Supported(path string) bool
	Extensions() []string
	ExtractionConfig() *config.Extraction
}

// ParseResponse is the response body for the parse endpoints.
type ParseResponse struct {
	RunID    string                                    `json:"run_id,omitempty"`
	Fields   map[string]any                            `json:"fields"`
	Winners  map[types.FieldType]types.StrategyType    `json:"winners,omitempty"`
	Trails   map[types.FieldType][]types.AttemptRecord `json:"trails"`
	Metadata *ingestion.Metadata                       `json:"metadata,omitempty"`
}

// ParseTextRequest is the request body for /v1/parse/text.
type ParseTextRequest struct {
	Text string `json:"text"`
}

// BatchRequest is the request body for /v1/batch.
type BatchRequest struct {
	Dir     string   `json:"dir,omitempty"`
	Paths   []string `json:"paths,omitempty"`
	Workers int      `json:"workers,omitempty"`
}

// RunDetail is the response body for GET /v1/runs/{id}.
type RunDetail struct {
	Run     store.Run      `json:"run"`
	Results []store.Result `json:"results"`
}

// FieldInfo describes one configured field and its strategy chain.
type FieldInfo struct {
	Field      types.FieldType      `json:"field"`
	Shape      string               `json:"shape"`
	Strategies []types.StrategyType `json:"strategies"`
}

// ValidateResponse is the response body for /v1/validate.
type ValidateResponse struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationIssue `json:"errors,omitempty"`
}

// ValidationIssue is one schema violation at a field path.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// handleParse accepts a multipart resume upload, parses it, and returns
// the extracted fields with their attempt trails.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.errorResponse(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("Upload exceeds %d MB limit", maxUploadBytes>>20))
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Missing resume file field")
		return
	}
	defer file.Close()

	// Strip any client-supplied directory components.
	name := filepath.Base(header.Filename)
	if !s.parser.Supported(name) {
		s.errorResponse(w, http.StatusUnsupportedMediaType,
			fmt.Sprintf("Unsupported file type %q, supported: %s",
				filepath.Ext(name), strings.Join(s.parser.Extensions(), ", ")))
		return
	}

	tmpPath, cleanup, err := stageUpload(file, name)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Failed to stage upload: "+err.Error())
		return
	}
	defer cleanup()

	data, meta, err := s.parser.ParseFile(r.Context(), tmpPath)
	if err != nil {
		s.errorResponse(w, parseStatus(err), "Parse failed: "+err.Error())
		return
	}
	// Report the client's filename, not the staging path.
	meta.Source = name

	resp := buildParseResponse(data, meta)
	if s.store != nil {
		if runID, ok := s.persistRun(r.Context(), data, meta); ok {
			resp.RunID = runID.String()
		}
	}

	s.jsonResponse(w, http.StatusOK, resp)
}

// handleParseText parses raw resume text from a JSON body. Text parses
// are not persisted; there is no source document to tie a run to.
func (s *Server) handleParseText(w http.ResponseWriter, r *http.Request) {
	var req ParseTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.errorResponse(w, http.StatusBadRequest, "text is required")
		return
	}

	data, err := s.parser.ParseText(r.Context(), req.Text)
	if err != nil {
		s.errorResponse(w, parseStatus(err), "Parse failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, buildParseResponse(data, nil))
}

// handleBatch runs a batch parse over server-local files and streams
// progress via SSE, ending with a summary event.
func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if req.Dir == "" && len(req.Paths) == 0 {
		s.errorResponse(w, http.StatusBadRequest, "Either dir or paths is required")
		return
	}
	workers := req.Workers
	if workers <= 0 {
		workers = s.workers
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info().Str("dir", req.Dir).Int("paths", len(req.Paths)).
		Int("workers", workers).Msg("starting batch run")

	summary, err := pipeline.Run(r.Context(), s.parser, pipeline.RunOptions{
		Paths:       req.Paths,
		Dir:         req.Dir,
		Workers:     workers,
		DatabaseURL: s.databaseURL,
		Quiet:       true,
		OnProgress: func(event pipeline.ProgressEvent) {
			if err := sse.WriteEvent("progress", event); err != nil {
				s.logger.Warn().Err(err).Msg("failed to write SSE event")
			}
		},
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("batch run failed")
		sse.WriteError(err.Error())
		return
	}

	sse.WriteSummary(summary)
}

// handleValidate checks a serialized resume document against the embedded
// output schema. Clients use it to verify stored or hand-edited parse
// output without reparsing the source document.
func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Failed to read request body: "+err.Error())
		return
	}
	doc := strings.TrimSpace(string(body))
	if doc == "" {
		verr := &ErrValidation{Field: "body", Message: "a resume document is required"}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}
	if !json.Valid([]byte(doc)) {
		verr := &ErrValidation{Field: "body", Message: "not valid JSON"}
		s.errorResponse(w, HTTPStatus(verr), verr.Error())
		return
	}

	if err := schemas.ValidateResumeData(doc); err != nil {
		var validationErr *schemas.ValidationError
		if !errors.As(err, &validationErr) {
			// Schema loading trouble is ours, not the document's.
			s.errorResponse(w, http.StatusInternalServerError, "Schema unavailable: "+err.Error())
			return
		}
		resp := ValidateResponse{Errors: make([]ValidationIssue, 0, len(validationErr.Errors))}
		for _, fe := range validationErr.Errors {
			resp.Errors = append(resp.Errors, ValidationIssue{Field: fe.Field, Message: fe.Message})
		}
		s.jsonResponse(w, http.StatusBadRequest, resp)
		return
	}

	s.jsonResponse(w, http.StatusOK, ValidateResponse{Valid: true})
}

// handleListRuns lists persisted parse runs, optionally filtered by
// source and status query parameters.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}

	filters := store.RunFilters{
		Source: r.URL.Query().Get("source"),
		Status: r.URL.Query().Get("status"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filters.Limit = n
	}

	runs, err := s.store.ListRuns(r.Context(), filters)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"runs":  runs,
		"count": len(runs),
	})
}

// handleGetRun returns one run with its extracted field results.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return
	}
	if !s.requireStore(w) {
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		notFound := &ErrRunNotFound{RunID: runID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	results, err := s.store.GetResults(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, RunDetail{Run: *run, Results: results})
}

// handleDeleteRun deletes a run and its results.
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	runID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID format")
		return
	}
	if !s.requireStore(w) {
		return
	}

	run, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}
	if run == nil {
		notFound := &ErrRunNotFound{RunID: runID}
		s.errorResponse(w, HTTPStatus(notFound), notFound.Error())
		return
	}

	if err := s.store.DeleteRun(r.Context(), runID); err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "Database error: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status": "deleted",
		"run_id": runID.String(),
	})
}

// handleFields describes the configured fields and their strategy chains.
func (s *Server) handleFields(w http.ResponseWriter, _ *http.Request) {
	cfg := s.parser.ExtractionConfig()
	fields := make([]FieldInfo, 0, len(cfg.Fields()))
	for _, f := range cfg.Fields() {
		info := FieldInfo{Field: f, Strategies: cfg.Strategies(f)}
		if spec, ok := extraction.SpecFor(f); ok {
			info.Shape = spec.Shape.String()
		}
		fields = append(fields, info)
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"fields": fields})
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	database := "disabled"
	if s.store != nil {
		database = "connected"
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"database": database,
	})
}

// handleLogin exchanges an API key for a JWT.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.authHandler == nil {
		err := &ErrAuthDisabled{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}
	s.authHandler.Login(w, r)
}

// buildParseResponse assembles the wire form of a parse result.
func buildParseResponse(data *types.ResumeData, meta *ingestion.Metadata) ParseResponse {
	resp := ParseResponse{
		Fields:   data.ToMap(),
		Trails:   data.Trails(),
		Metadata: meta,
	}
	for _, f := range types.AllFieldTypes() {
		if winner, ok := data.Winner(f); ok {
			if resp.Winners == nil {
				resp.Winners = make(map[types.FieldType]types.StrategyType)
			}
			resp.Winners[f] = winner
		}
	}
	return resp
}

// stageUpload copies an uploaded file to a temp path that keeps the
// original extension so the format readers can dispatch on it.
func stageUpload(src io.Reader, name string) (string, func(), error) {
	dir, err := os.MkdirTemp("", "resume-upload-")
	if err != nil {
		return "", nil, err
	}
	cleanup := func() { os.RemoveAll(dir) }

	path := filepath.Join(dir, "upload"+strings.ToLower(filepath.Ext(name)))
	dst, err := os.Create(path)
	if err != nil {
		cleanup()
		return "", nil, err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		cleanup()
		return "", nil, err
	}
	if err := dst.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}

// persistRun records a completed parse. Persistence failures are logged
// and never surfaced to the client.
func (s *Server) persistRun(ctx context.Context, data *types.ResumeData, meta *ingestion.Metadata) (uuid.UUID, bool) {
	runID, err := s.store.CreateRun(ctx, meta)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to create run record")
		return uuid.Nil, false
	}
	if err := s.store.SaveResults(ctx, runID, data); err != nil {
		s.logger.Warn().Err(err).Str("run_id", runID.String()).Msg("failed to save results")
	}
	if err := s.store.CompleteRun(ctx, runID, store.StatusCompleted); err != nil {
		s.logger.Warn().Err(err).Str("run_id", runID.String()).Msg("failed to complete run")
	}
	return runID, true
}

// requireStore rejects storage endpoints when no database is configured.
func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		err := &ErrNoDatabase{}
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return false
	}
	return true
}
