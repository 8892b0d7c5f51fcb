package extraction

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-parser/internal/types"
)

func llmStrategyFor(t *testing.T, field types.FieldType, gen TextGenerator) *LLMStrategy {
	t.Helper()
	spec, ok := SpecFor(field)
	require.True(t, ok)
	return NewLLMStrategy(spec, gen)
}

func TestLLMExtractsList(t *testing.T) {
	gen := &stubGenerator{response: `["Go", "SQL", "Kubernetes"]`}
	strategy := llmStrategyFor(t, types.FieldSkills, gen)

	value, err := strategy.Extract(context.Background(), sampleResume, types.FieldSkills)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL", "Kubernetes"}, value.Items())
}

func TestLLMExtractsScalar(t *testing.T) {
	gen := &stubGenerator{response: `["Jane Doe"]`}
	strategy := llmStrategyFor(t, types.FieldName, gen)

	value, err := strategy.Extract(context.Background(), sampleResume, types.FieldName)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", value.Text())
}

func TestLLMHandlesMarkdownFences(t *testing.T) {
	gen := &stubGenerator{response: "```json\n[\"Jane Doe\"]\n```"}
	strategy := llmStrategyFor(t, types.FieldName, gen)

	value, err := strategy.Extract(context.Background(), sampleResume, types.FieldName)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", value.Text())
}

func TestLLMHandlesChattyResponse(t *testing.T) {
	gen := &stubGenerator{response: `Here are the skills I found: ["Go", "SQL"] Hope that helps!`}
	strategy := llmStrategyFor(t, types.FieldSkills, gen)

	value, err := strategy.Extract(context.Background(), sampleResume, types.FieldSkills)
	require.NoError(t, err)
	assert.Equal(t, []string{"Go", "SQL"}, value.Items())
}

func TestLLMEmptyArrayIsEmptyNotError(t *testing.T) {
	gen := &stubGenerator{response: `[]`}
	strategy := llmStrategyFor(t, types.FieldSkills, gen)

	value, err := strategy.Extract(context.Background(), sampleResume, types.FieldSkills)
	require.NoError(t, err)
	assert.True(t, value.IsEmpty())
	assert.Equal(t, types.ValueAbsent, value.Kind())
}

func TestLLMScalarRejectsMultipleValues(t *testing.T) {
	gen := &stubGenerator{response: `["Jane Doe", "John Smith"]`}
	strategy := llmStrategyFor(t, types.FieldName, gen)

	_, err := strategy.Extract(context.Background(), sampleResume, types.FieldName)
	require.Error(t, err)

	var execErr *ExecutionError
	require.ErrorAs(t, err, &execErr)
	assert.Contains(t, execErr.Message, "malformed model response")
	assert.Contains(t, err.Error(), "expected a single name, got 2 values")
}

func TestLLMMalformedResponseFails(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"no array", `I could not find any skills in this resume.`},
		{"broken json", `["Go", "SQL"`},
		{"wrong element type", `[{"skill": "Go"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{response: tt.response}
			strategy := llmStrategyFor(t, types.FieldSkills, gen)

			_, err := strategy.Extract(context.Background(), sampleResume, types.FieldSkills)
			require.Error(t, err)

			var execErr *ExecutionError
			require.ErrorAs(t, err, &execErr)
			assert.Equal(t, types.StrategyLLM, execErr.Strategy)
		})
	}
}

func TestLLMModelCallFailure(t *testing.T) {
	backendErr := errors.New("rate limited")
	gen := &stubGenerator{err: backendErr}
	strategy := llmStrategyFor(t, types.FieldSkills, gen)

	_, err := strategy.Extract(context.Background(), sampleResume, types.FieldSkills)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model call failed")
	assert.ErrorIs(t, err, backendErr)
}

func TestLLMWrongFieldFails(t *testing.T) {
	gen := &stubGenerator{response: `["Go"]`}
	strategy := llmStrategyFor(t, types.FieldSkills, gen)

	_, err := strategy.Extract(context.Background(), sampleResume, types.FieldName)
	require.Error(t, err)
	assert.Zero(t, gen.calls.Load())
}
