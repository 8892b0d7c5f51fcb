// Package types provides type definitions for structured data used throughout the resume-parser system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFieldType_Valid(t *testing.T) {
	assert.True(t, FieldName.Valid())
	assert.True(t, FieldEmail.Valid())
	assert.True(t, FieldSkills.Valid())
	assert.False(t, FieldType("salary").Valid())
	assert.False(t, FieldType("").Valid())
}

func TestParseFieldType(t *testing.T) {
	f, err := ParseFieldType("email")
	require.NoError(t, err)
	assert.Equal(t, FieldEmail, f)

	_, err = ParseFieldType("phone")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown field type: "phone"`)
}

func TestAllFieldTypes_CanonicalOrder(t *testing.T) {
	assert.Equal(t, []FieldType{FieldName, FieldEmail, FieldSkills}, AllFieldTypes())
}

func TestStrategyType_Valid(t *testing.T) {
	assert.True(t, StrategyRegex.Valid())
	assert.True(t, StrategyNER.Valid())
	assert.True(t, StrategyLLM.Valid())
	assert.False(t, StrategyType("magic").Valid())
}

func TestParseStrategyType(t *testing.T) {
	s, err := ParseStrategyType("ner")
	require.NoError(t, err)
	assert.Equal(t, StrategyNER, s)

	_, err = ParseStrategyType("guess")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown strategy type: "guess"`)
}

func TestAllStrategyTypes_CanonicalOrder(t *testing.T) {
	assert.Equal(t, []StrategyType{StrategyRegex, StrategyNER, StrategyLLM}, AllStrategyTypes())
}
