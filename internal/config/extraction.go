// Package config provides configuration loading and validation for the resume parser.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-parser/internal/types"
)

// Extraction maps each field type to its ordered strategy preference
// list. It is validated at construction and read-only afterwards; to
// reconfigure, build a new value and swap it wholesale.
type Extraction struct {
	chains map[types.FieldType][]types.StrategyType
}

// NewExtraction validates and freezes a field-to-strategies mapping.
// Rejected: an empty mapping, unknown field or strategy values, an empty
// strategy list for any field, and duplicate strategies within one
// field's list.
func NewExtraction(chains map[types.FieldType][]types.StrategyType) (*Extraction, error) {
	if len(chains) == 0 {
		return nil, fmt.Errorf("extraction config error: at least one field is required")
	}
	frozen := make(map[types.FieldType][]types.StrategyType, len(chains))
	for field, strategies := range chains {
		if !field.Valid() {
			return nil, fmt.Errorf("extraction config error: unknown field type %q", string(field))
		}
		if len(strategies) == 0 {
			return nil, fmt.Errorf("extraction config error: field %s has an empty strategy list", field)
		}
		seen := make(map[types.StrategyType]bool, len(strategies))
		list := make([]types.StrategyType, 0, len(strategies))
		for _, s := range strategies {
			if !s.Valid() {
				return nil, fmt.Errorf("extraction config error: field %s lists unknown strategy %q", field, string(s))
			}
			if seen[s] {
				return nil, fmt.Errorf("extraction config error: field %s lists strategy %s twice", field, s)
			}
			seen[s] = true
			list = append(list, s)
		}
		frozen[field] = list
	}
	return &Extraction{chains: frozen}, nil
}

// DefaultExtraction returns the stock configuration: NER then LLM for
// names, regex first for emails, LLM first for skills.
func DefaultExtraction() *Extraction {
	cfg, err := NewExtraction(map[types.FieldType][]types.StrategyType{
		types.FieldName:   {types.StrategyNER, types.StrategyLLM},
		types.FieldEmail:  {types.StrategyRegex, types.StrategyNER, types.StrategyLLM},
		types.FieldSkills: {types.StrategyLLM, types.StrategyNER},
	})
	if err != nil {
		panic(fmt.Sprintf("default extraction config is invalid: %v", err))
	}
	return cfg
}

// Fields returns the configured field types in canonical order.
func (e *Extraction) Fields() []types.FieldType {
	out := make([]types.FieldType, 0, len(e.chains))
	for _, f := range types.AllFieldTypes() {
		if _, ok := e.chains[f]; ok {
			out = append(out, f)
		}
	}
	return out
}

// Has reports whether the field has a configured strategy list.
func (e *Extraction) Has(f types.FieldType) bool {
	_, ok := e.chains[f]
	return ok
}

// Strategies returns a copy of the ordered strategy list for a field,
// or nil when the field is not configured.
func (e *Extraction) Strategies(f types.FieldType) []types.StrategyType {
	list, ok := e.chains[f]
	if !ok {
		return nil
	}
	out := make([]types.StrategyType, len(list))
	copy(out, list)
	return out
}

// extractionFile is the on-disk form of an Extraction.
type extractionFile struct {
	Fields map[string][]string `json:"fields" yaml:"fields"`
}

// LoadExtraction reads an extraction configuration from a YAML or JSON
// file, chosen by extension, and validates it.
func LoadExtraction(path string) (*Extraction, error) {
	if path == "" {
		return nil, fmt.Errorf("extraction config path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read extraction config %s: %w", path, err)
	}

	var file extractionFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse extraction config YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse extraction config JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported extraction config format: %s", filepath.Ext(path))
	}

	chains := make(map[types.FieldType][]types.StrategyType, len(file.Fields))
	for name, list := range file.Fields {
		field, err := types.ParseFieldType(name)
		if err != nil {
			return nil, fmt.Errorf("extraction config error: %w", err)
		}
		strategies := make([]types.StrategyType, 0, len(list))
		for _, s := range list {
			strategy, err := types.ParseStrategyType(s)
			if err != nil {
				return nil, fmt.Errorf("extraction config error: field %s: %w", field, err)
			}
			strategies = append(strategies, strategy)
		}
		chains[field] = strategies
	}
	return NewExtraction(chains)
}
