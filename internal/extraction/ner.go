package extraction

import (
	"context"
	"fmt"

	"github.com/jonathan/resume-parser/internal/ner"
	"github.com/jonathan/resume-parser/internal/types"
)

// EntityRecognizer is the slice of the NER client the strategy needs.
type EntityRecognizer interface {
	Recognize(ctx context.Context, text string, labels []string) ([]ner.Entity, error)
}

// NERStrategy extracts a field by asking an entity-recognition backend
// for spans carrying the field's labels. Spans come back in document
// order, which favors the resume header for scalar fields.
type NERStrategy struct {
	spec       FieldSpec
	recognizer EntityRecognizer
}

// NewNERStrategy binds a field spec to a recognizer backend.
func NewNERStrategy(spec FieldSpec, recognizer EntityRecognizer) *NERStrategy {
	return &NERStrategy{spec: spec, recognizer: recognizer}
}

// Extract implements Strategy.
func (s *NERStrategy) Extract(ctx context.Context, rawText string, field types.FieldType) (types.FieldValue, error) {
	if field != s.spec.Field {
		return types.FieldValue{}, &ExecutionError{
			Strategy: types.StrategyNER,
			Field:    field,
			Message:  fmt.Sprintf("strategy is bound to field %s", s.spec.Field),
		}
	}

	entities, err := s.recognizer.Recognize(ctx, rawText, s.spec.EntityLabels)
	if err != nil {
		return types.FieldValue{}, &ExecutionError{
			Strategy: types.StrategyNER,
			Field:    field,
			Message:  "entity recognition failed",
			Cause:    err,
		}
	}

	wanted := make(map[string]bool, len(s.spec.EntityLabels))
	for _, label := range s.spec.EntityLabels {
		wanted[label] = true
	}
	candidates := make([]string, 0, len(entities))
	for _, e := range entities {
		if wanted[e.Label] {
			candidates = append(candidates, e.Text)
		}
	}
	return s.spec.Normalize(candidates), nil
}
