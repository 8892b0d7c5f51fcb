package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/ingestion"
)

// ErrInvalidCredentials indicates an API key that does not match the stored hash
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid API key"
}

// ErrAuthDisabled indicates login was attempted with no API key hash configured
type ErrAuthDisabled struct{}

func (e *ErrAuthDisabled) Error() string {
	return "authentication is not configured on this server"
}

// ErrRunNotFound indicates a parse run was not found
type ErrRunNotFound struct {
	RunID uuid.UUID
}

func (e *ErrRunNotFound) Error() string {
	return fmt.Sprintf("run not found: %s", e.RunID)
}

// ErrNoDatabase indicates a storage endpoint was hit on a server without persistence
type ErrNoDatabase struct{}

func (e *ErrNoDatabase) Error() string {
	return "no database configured"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	switch err.(type) {
	case *ErrInvalidCredentials:
		return http.StatusUnauthorized
	case *ErrAuthDisabled:
		return http.StatusNotImplemented
	case *ErrRunNotFound:
		return http.StatusNotFound
	case *ErrNoDatabase:
		return http.StatusServiceUnavailable
	case *ErrValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// parseStatus maps a parse failure to an HTTP status. Documents we cannot
// read are the client's problem, everything else is ours.
func parseStatus(err error) int {
	var parseErr *ingestion.ParseError
	if errors.As(err, &parseErr) {
		return http.StatusUnprocessableEntity
	}
	var extractErr *extraction.FieldExtractionError
	if errors.As(err, &extractErr) {
		return http.StatusUnprocessableEntity
	}
	var readErr *ingestion.ReadError
	if errors.As(err, &readErr) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
