// Package types provides type definitions for structured data used throughout the resume-parser system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// FieldType identifies an extractable resume field. Values are stable
// strings used as mapping keys in configuration and output records.
type FieldType string

const (
	FieldName   FieldType = "name"
	FieldEmail  FieldType = "email"
	FieldSkills FieldType = "skills"
)

// AllFieldTypes returns every known field type in canonical order.
func AllFieldTypes() []FieldType {
	return []FieldType{FieldName, FieldEmail, FieldSkills}
}

// Valid reports whether f is a known field type.
func (f FieldType) Valid() bool {
	switch f {
	case FieldName, FieldEmail, FieldSkills:
		return true
	}
	return false
}

// String returns the stable string form of the field type.
func (f FieldType) String() string {
	return string(f)
}

// ParseFieldType converts a string into a FieldType, rejecting unknown values.
func ParseFieldType(s string) (FieldType, error) {
	f := FieldType(s)
	if !f.Valid() {
		return "", fmt.Errorf("unknown field type: %q", s)
	}
	return f, nil
}

// StrategyType identifies an extraction technique.
type StrategyType string

const (
	StrategyRegex StrategyType = "regex"
	StrategyNER   StrategyType = "ner"
	StrategyLLM   StrategyType = "llm"
)

// AllStrategyTypes returns every known strategy type in canonical order.
func AllStrategyTypes() []StrategyType {
	return []StrategyType{StrategyRegex, StrategyNER, StrategyLLM}
}

// Valid reports whether s is a known strategy type.
func (s StrategyType) Valid() bool {
	switch s {
	case StrategyRegex, StrategyNER, StrategyLLM:
		return true
	}
	return false
}

// String returns the stable string form of the strategy type.
func (s StrategyType) String() string {
	return string(s)
}

// ParseStrategyType converts a string into a StrategyType, rejecting unknown values.
func ParseStrategyType(s string) (StrategyType, error) {
	t := StrategyType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown strategy type: %q", s)
	}
	return t, nil
}
