package resumeparser

import (
	"fmt"
	"strings"
)

// FileNotFoundError reports a resume path that does not exist.
type FileNotFoundError struct {
	Path string
}

func (e *FileNotFoundError) Error() string {
	return fmt.Sprintf("resume file not found: %s", e.Path)
}

// UnsupportedFormatError reports a file extension outside the supported
// set.
type UnsupportedFormatError struct {
	Path      string
	Format    string
	Supported []string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported resume format %q for %s (supported: %s)",
		e.Format, e.Path, strings.Join(e.Supported, ", "))
}

// FileParsingError reports a document that exists but whose text could
// not be extracted.
type FileParsingError struct {
	Path  string
	Cause error
}

func (e *FileParsingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to parse resume %s: %v", e.Path, e.Cause)
	}
	return fmt.Sprintf("failed to parse resume %s", e.Path)
}

func (e *FileParsingError) Unwrap() error {
	return e.Cause
}
