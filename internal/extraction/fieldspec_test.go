package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-parser/internal/types"
)

func TestSpecFor(t *testing.T) {
	name, ok := SpecFor(types.FieldName)
	require.True(t, ok)
	assert.Equal(t, types.ValueScalar, name.Shape)
	assert.Equal(t, []string{"person"}, name.EntityLabels)

	email, ok := SpecFor(types.FieldEmail)
	require.True(t, ok)
	assert.Equal(t, types.ValueScalar, email.Shape)
	assert.NotEmpty(t, email.Patterns)

	skills, ok := SpecFor(types.FieldSkills)
	require.True(t, ok)
	assert.Equal(t, types.ValueList, skills.Shape)

	_, ok = SpecFor(types.FieldType("salary"))
	assert.False(t, ok)
}

func TestNormalizeTrimsAndFilters(t *testing.T) {
	spec := FieldSpec{Field: types.FieldSkills, Shape: types.ValueList, MinLength: 2}

	value := spec.Normalize([]string{"  Go  ", "R", "", "SQL"})
	assert.Equal(t, []string{"Go", "SQL"}, value.Items())
}

func TestNormalizeDeduplicatesCaseInsensitive(t *testing.T) {
	spec := FieldSpec{Field: types.FieldSkills, Shape: types.ValueList, MinLength: 2}

	value := spec.Normalize([]string{"Go", "SQL", "go", "Sql", "Kubernetes"})
	// First spelling wins, order preserved.
	assert.Equal(t, []string{"Go", "SQL", "Kubernetes"}, value.Items())
}

func TestNormalizeAppliesListLimit(t *testing.T) {
	spec := FieldSpec{Field: types.FieldSkills, Shape: types.ValueList, MinLength: 2, Limit: 2}

	value := spec.Normalize([]string{"Go", "SQL", "Kubernetes"})
	assert.Equal(t, []string{"Go", "SQL"}, value.Items())
}

func TestNormalizeScalarTakesFirstCandidate(t *testing.T) {
	spec := FieldSpec{Field: types.FieldName, Shape: types.ValueScalar, MinLength: 1}

	value := spec.Normalize([]string{"Jane Doe", "John Smith"})
	assert.Equal(t, types.ValueScalar, value.Kind())
	assert.Equal(t, "Jane Doe", value.Text())
}

func TestNormalizeEmailRequiresMailboxShape(t *testing.T) {
	spec, ok := SpecFor(types.FieldEmail)
	require.True(t, ok)

	// Non-mailbox candidates are dropped no matter which strategy
	// produced them.
	value := spec.Normalize([]string{"not found", "jane at example dot com", "jane.doe@example.com"})
	assert.Equal(t, "jane.doe@example.com", value.Text())

	value = spec.Normalize([]string{"No email present in this resume."})
	assert.True(t, value.IsEmpty())
}

func TestNormalizeEmptySetIsAbsent(t *testing.T) {
	spec := FieldSpec{Field: types.FieldName, Shape: types.ValueScalar, MinLength: 1}

	value := spec.Normalize(nil)
	assert.Equal(t, types.ValueAbsent, value.Kind())
	assert.True(t, value.IsEmpty())

	value = spec.Normalize([]string{"   ", ""})
	assert.True(t, value.IsEmpty())
}
