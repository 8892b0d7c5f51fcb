package ingestion

import "fmt"

// ReadError represents an I/O failure opening or reading a document
type ReadError struct {
	Path  string
	Cause error
}

func (e *ReadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to read %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("failed to read %s", e.Path)
}

func (e *ReadError) Unwrap() error {
	return e.Cause
}

// ParseError represents a document whose bytes could not be decoded as
// its format
type ParseError struct {
	Path    string
	Format  string
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to parse %s as %s: %s: %v", e.Path, e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to parse %s as %s: %s", e.Path, e.Format, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
