package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/ingestion"
)

func TestErrInvalidCredentials(t *testing.T) {
	err := &ErrInvalidCredentials{}
	assert.Equal(t, "invalid API key", err.Error())
	assert.Equal(t, http.StatusUnauthorized, HTTPStatus(err))
}

func TestErrAuthDisabled(t *testing.T) {
	err := &ErrAuthDisabled{}
	assert.Equal(t, "authentication is not configured on this server", err.Error())
	assert.Equal(t, http.StatusNotImplemented, HTTPStatus(err))
}

func TestErrRunNotFound(t *testing.T) {
	runID := uuid.New()
	err := &ErrRunNotFound{RunID: runID}
	assert.Equal(t, "run not found: "+runID.String(), err.Error())
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestErrNoDatabase(t *testing.T) {
	err := &ErrNoDatabase{}
	assert.Equal(t, "no database configured", err.Error())
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
}

func TestErrValidation(t *testing.T) {
	err := &ErrValidation{Field: "api_key", Message: "required"}
	assert.Equal(t, "validation error: api_key - required", err.Error())
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(err))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "ErrInvalidCredentials",
			err:      &ErrInvalidCredentials{},
			expected: http.StatusUnauthorized,
		},
		{
			name:     "ErrAuthDisabled",
			err:      &ErrAuthDisabled{},
			expected: http.StatusNotImplemented,
		},
		{
			name:     "ErrRunNotFound",
			err:      &ErrRunNotFound{RunID: uuid.New()},
			expected: http.StatusNotFound,
		},
		{
			name:     "ErrNoDatabase",
			err:      &ErrNoDatabase{},
			expected: http.StatusServiceUnavailable,
		},
		{
			name:     "ErrValidation",
			err:      &ErrValidation{Field: "text", Message: "too short"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "Unknown error",
			err:      assert.AnError,
			expected: http.StatusInternalServerError,
		},
		{
			name:     "Nil error",
			err:      nil,
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "unreadable document",
			err:      &ingestion.ReadError{Path: "gone.pdf"},
			expected: http.StatusBadRequest,
		},
		{
			name:     "undecodable document",
			err:      &ingestion.ParseError{Path: "scan.pdf", Format: "pdf", Message: "no text layer"},
			expected: http.StatusUnprocessableEntity,
		},
		{
			name:     "extraction could not start",
			err:      &extraction.FieldExtractionError{Message: "no strategies configured"},
			expected: http.StatusUnprocessableEntity,
		},
		{
			name:     "wrapped parse error",
			err:      fmt.Errorf("parsing resume: %w", &ingestion.ParseError{Path: "x.docx", Format: "docx", Message: "bad zip"}),
			expected: http.StatusUnprocessableEntity,
		},
		{
			name:     "unknown error",
			err:      assert.AnError,
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseStatus(tt.err))
		})
	}
}
