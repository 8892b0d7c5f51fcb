// Package config provides configuration loading and validation for the resume parser.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LogSettings controls structured logging output.
type LogSettings struct {
	Level  string `json:"level,omitempty" yaml:"level,omitempty" validate:"omitempty,oneof=trace debug info warn error fatal"`
	Format string `json:"format,omitempty" yaml:"format,omitempty" validate:"omitempty,oneof=json pretty"`
	File   string `json:"file,omitempty" yaml:"file,omitempty"`
}

// ServerSettings controls the HTTP API. Authentication is enabled when
// APIKeyHash is set; the signing secret comes from JWT_SECRET.
type ServerSettings struct {
	Port       int    `json:"port,omitempty" yaml:"port,omitempty" validate:"omitempty,gte=1,lte=65535"`
	APIKeyHash string `json:"api_key_hash,omitempty" yaml:"api_key_hash,omitempty"`
}

// Settings is the application configuration loaded from an optional
// YAML or JSON file with environment variables layered on top. All
// fields are optional; zero values fall back to defaults.
type Settings struct {
	// LLM backend
	Provider     string `json:"provider,omitempty" yaml:"provider,omitempty" validate:"omitempty,oneof=gemini anthropic"`
	Model        string `json:"model,omitempty" yaml:"model,omitempty"`
	GeminiAPIKey string `json:"-" yaml:"-"`
	ClaudeAPIKey string `json:"-" yaml:"-"`

	// NER backend
	NERServerURL string  `json:"ner_server_url,omitempty" yaml:"ner_server_url,omitempty" validate:"omitempty,url"`
	NERModel     string  `json:"ner_model,omitempty" yaml:"ner_model,omitempty"`
	NERThreshold float64 `json:"ner_threshold,omitempty" yaml:"ner_threshold,omitempty" validate:"omitempty,gte=0,lte=1"`

	// Document reading
	TikaURL string `json:"tika_url,omitempty" yaml:"tika_url,omitempty" validate:"omitempty,url"`

	// Persistence
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`

	// Batch behavior
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty" validate:"omitempty,gte=1,lte=64"`

	Log    LogSettings    `json:"log,omitempty" yaml:"log,omitempty"`
	Server ServerSettings `json:"server,omitempty" yaml:"server,omitempty"`
}

// DefaultSettings returns the stock application settings.
func DefaultSettings() *Settings {
	return &Settings{
		Provider:     "gemini",
		NERModel:     "urchade/gliner_multi_pii-v1",
		NERThreshold: 0.5,
		Workers:      4,
		Log:          LogSettings{Level: "info", Format: "pretty"},
		Server:       ServerSettings{Port: 8080},
	}
}

// LoadSettings reads settings from a YAML or JSON file, chosen by
// extension, applies environment overrides, and validates the result.
// An empty path loads defaults plus environment only.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read settings file %s: %w", path, err)
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			if err := yaml.Unmarshal(data, s); err != nil {
				return nil, fmt.Errorf("failed to parse settings YAML: %w", err)
			}
		case ".json":
			if err := json.Unmarshal(data, s); err != nil {
				return nil, fmt.Errorf("failed to parse settings JSON: %w", err)
			}
		default:
			return nil, fmt.Errorf("unsupported settings format: %s", filepath.Ext(path))
		}
	}
	s.applyEnv()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// applyEnv layers environment variables over file values. Environment
// always wins so deployments can override a checked-in settings file.
func (s *Settings) applyEnv() {
	setString(&s.Provider, "PARSER_PROVIDER")
	setString(&s.Model, "PARSER_MODEL")
	setString(&s.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&s.ClaudeAPIKey, "ANTHROPIC_API_KEY")
	setString(&s.NERServerURL, "NER_SERVER_URL")
	setString(&s.NERModel, "NER_MODEL")
	setString(&s.TikaURL, "TIKA_URL")
	setString(&s.DatabaseURL, "DATABASE_URL")
	setString(&s.Log.Level, "PARSER_LOG_LEVEL")
	setString(&s.Log.Format, "PARSER_LOG_FORMAT")
	setString(&s.Log.File, "PARSER_LOG_FILE")
	setString(&s.Server.APIKeyHash, "API_KEY_HASH")

	if v := os.Getenv("NER_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			s.NERThreshold = f
		}
	}
	if v := os.Getenv("PARSER_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.Workers = n
		}
	}
	if v := os.Getenv("PARSER_PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			s.Server.Port = n
		}
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// Validate checks tag constraints plus cross-field rules the tags
// cannot express.
func (s *Settings) Validate() error {
	validate := validator.New()
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("settings error: %w", err)
	}
	if s.Provider == "anthropic" && s.ClaudeAPIKey == "" && s.GeminiAPIKey != "" {
		return fmt.Errorf("settings error: provider is anthropic but ANTHROPIC_API_KEY is not set")
	}
	return nil
}

// APIKey returns the key for the active LLM provider.
func (s *Settings) APIKey() string {
	if s.Provider == "anthropic" {
		return s.ClaudeAPIKey
	}
	return s.GeminiAPIKey
}
