package extraction

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jonathan/resume-parser/internal/llm"
	"github.com/jonathan/resume-parser/internal/prompts"
	"github.com/jonathan/resume-parser/internal/types"
)

// TextGenerator is the slice of the LLM client the strategy needs.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error)
}

// LLMStrategy extracts a field by prompting a language model for a JSON
// array of candidates. Field extraction is a lite-tier task; the model
// is asked for the field's exact shape and a response in the wrong
// shape is a failed attempt, never coerced.
type LLMStrategy struct {
	spec   FieldSpec
	client TextGenerator
	tier   llm.ModelTier
}

// NewLLMStrategy binds a field spec to a model client.
func NewLLMStrategy(spec FieldSpec, client TextGenerator) *LLMStrategy {
	return &LLMStrategy{spec: spec, client: client, tier: llm.TierLite}
}

// Extract implements Strategy.
func (s *LLMStrategy) Extract(ctx context.Context, rawText string, field types.FieldType) (types.FieldValue, error) {
	if field != s.spec.Field {
		return types.FieldValue{}, &ExecutionError{
			Strategy: types.StrategyLLM,
			Field:    field,
			Message:  fmt.Sprintf("strategy is bound to field %s", s.spec.Field),
		}
	}

	instruction, err := prompts.FieldInstruction(s.spec.PromptKey)
	if err != nil {
		return types.FieldValue{}, &ExecutionError{
			Strategy: types.StrategyLLM,
			Field:    field,
			Message:  "missing prompt template",
			Cause:    err,
		}
	}

	prompt := llm.BuildFieldPrompt(llm.FieldPrompt{
		Field:       field.String(),
		Instruction: instruction,
		MaxItems:    s.spec.Limit,
		Scalar:      s.spec.Shape == types.ValueScalar,
	}, rawText)

	raw, err := s.client.GenerateJSON(ctx, prompt, s.tier)
	if err != nil {
		return types.FieldValue{}, &ExecutionError{
			Strategy: types.StrategyLLM,
			Field:    field,
			Message:  "model call failed",
			Cause:    err,
		}
	}

	items, err := s.parseResponse(raw)
	if err != nil {
		return types.FieldValue{}, &ExecutionError{
			Strategy: types.StrategyLLM,
			Field:    field,
			Message:  "malformed model response",
			Cause:    err,
		}
	}
	return s.spec.Normalize(items), nil
}

// parseResponse decodes the model's JSON array and enforces the field's
// expected shape.
func (s *LLMStrategy) parseResponse(raw string) ([]string, error) {
	arr, err := llm.ExtractJSONArray(raw)
	if err != nil {
		return nil, err
	}

	var items []string
	if err := json.Unmarshal([]byte(arr), &items); err != nil {
		return nil, fmt.Errorf("decode array: %w", err)
	}

	if s.spec.Shape == types.ValueScalar && len(items) > 1 {
		return nil, fmt.Errorf("expected a single %s, got %d values", s.spec.Field, len(items))
	}
	return items, nil
}
