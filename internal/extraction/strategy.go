// Package extraction implements the field-extraction coordination
// engine: the strategy contract, the per-field fallback chain, the
// strategy factory, and the coordinator that assembles per-field
// outcomes into a single resume record.
package extraction

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-parser/internal/types"
)

// Strategy is one extraction technique applied to raw resume text for a
// single field. Implementations must be pure functions of their input:
// no state carried between calls, safe for concurrent use.
//
// "Nothing found" is a successful outcome expressed as an empty
// FieldValue with a nil error. A non-nil error is reserved for
// unexpected conditions (backend unreachable, malformed response); the
// chain records it as a failed attempt and moves to the next strategy.
type Strategy interface {
	Extract(ctx context.Context, rawText string, field types.FieldType) (types.FieldValue, error)
}

// ExecutionError wraps an unexpected failure inside one strategy
// attempt. The chain absorbs it; it never reaches a caller directly.
type ExecutionError struct {
	Strategy types.StrategyType
	Field    types.FieldType
	Message  string
	Cause    error
}

func (e *ExecutionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s strategy failed for %s: %s: %v", e.Strategy, e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s strategy failed for %s: %s", e.Strategy, e.Field, e.Message)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// UnsupportedStrategyError reports a (field, strategy) pair with no
// factory registration, e.g. regex extraction for names.
type UnsupportedStrategyError struct {
	Field    types.FieldType
	Strategy types.StrategyType
}

func (e *UnsupportedStrategyError) Error() string {
	return fmt.Sprintf("strategy %s is not supported for field %s", e.Strategy, e.Field)
}

// FieldExtractionError reports the one aggregate-level failure mode:
// extraction could not start at all. Per-field exhaustion is a normal
// outcome and never produces this error.
type FieldExtractionError struct {
	Field   string
	Message string
}

func (e *FieldExtractionError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("extraction failed for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("extraction failed: %s", e.Message)
}
