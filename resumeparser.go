// Package resumeparser extracts structured fields from resume documents.
//
// Each field is extracted by a chain of strategies (regex, named-entity
// recognition, LLM) tried in configured order until one produces a
// usable value. Fields are independent: a field whose chain comes up
// empty is reported as absent, never as an error for the whole parse.
//
// Basic usage:
//
//	parser, err := resumeparser.New()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer parser.Close()
//
//	data, err := parser.ParseResume(ctx, "resume.pdf")
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(data.ToMap()["email"])
package resumeparser

import (
	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/ingestion"
	"github.com/jonathan/resume-parser/internal/types"
)

// Core types re-exported from internal packages.
type (
	FieldType      = types.FieldType
	StrategyType   = types.StrategyType
	FieldValue     = types.FieldValue
	ValueKind      = types.ValueKind
	ResumeData     = types.ResumeData
	FieldOutcome   = types.FieldOutcome
	AttemptRecord  = types.AttemptRecord
	AttemptOutcome = types.AttemptOutcome
)

// Field and strategy identifiers.
const (
	FieldName   = types.FieldName
	FieldEmail  = types.FieldEmail
	FieldSkills = types.FieldSkills

	StrategyRegex = types.StrategyRegex
	StrategyNER   = types.StrategyNER
	StrategyLLM   = types.StrategyLLM
)

// Configuration types.
type (
	Settings         = config.Settings
	ExtractionConfig = config.Extraction
)

// Ingestion types for callers that plug in their own formats.
type (
	Reader   = ingestion.Reader
	Metadata = ingestion.Metadata
)

// Factory builds and caches extraction strategies.
type Factory = extraction.Factory

// Errors surfaced by extraction itself.
type (
	FieldExtractionError     = extraction.FieldExtractionError
	StrategyExecutionError   = extraction.ExecutionError
	UnsupportedStrategyError = extraction.UnsupportedStrategyError
)

// DefaultSettings returns the stock application settings.
func DefaultSettings() *Settings {
	return config.DefaultSettings()
}

// LoadSettings reads settings from a YAML or JSON file and applies
// environment overrides.
func LoadSettings(path string) (*Settings, error) {
	return config.LoadSettings(path)
}

// DefaultExtractionConfig returns the stock strategy chains: NER then
// LLM for names, regex first for emails, LLM first for skills.
func DefaultExtractionConfig() *ExtractionConfig {
	return config.DefaultExtraction()
}

// NewExtractionConfig validates and freezes a custom field-to-strategies
// mapping.
func NewExtractionConfig(chains map[FieldType][]StrategyType) (*ExtractionConfig, error) {
	return config.NewExtraction(chains)
}

// LoadExtractionConfig reads strategy chains from a YAML or JSON file.
func LoadExtractionConfig(path string) (*ExtractionConfig, error) {
	return config.LoadExtraction(path)
}
