package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearSettingsEnv blanks every variable applyEnv reads so file values
// and defaults are observable.
func clearSettingsEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PARSER_PROVIDER", "PARSER_MODEL", "GEMINI_API_KEY", "ANTHROPIC_API_KEY",
		"NER_SERVER_URL", "NER_MODEL", "NER_THRESHOLD", "TIKA_URL",
		"DATABASE_URL", "PARSER_WORKERS", "PARSER_PORT",
		"PARSER_LOG_LEVEL", "PARSER_LOG_FORMAT", "PARSER_LOG_FILE", "API_KEY_HASH",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultSettings(t *testing.T) {
	s := DefaultSettings()

	assert.Equal(t, "gemini", s.Provider)
	assert.Equal(t, "urchade/gliner_multi_pii-v1", s.NERModel)
	assert.Equal(t, 0.5, s.NERThreshold)
	assert.Equal(t, 4, s.Workers)
	assert.Equal(t, "info", s.Log.Level)
	assert.Equal(t, "pretty", s.Log.Format)
	assert.Equal(t, 8080, s.Server.Port)
}

func TestLoadSettings_EmptyPathUsesDefaults(t *testing.T) {
	clearSettingsEnv(t)

	s, err := LoadSettings("")
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), s)
}

func TestLoadSettings_YAMLFile(t *testing.T) {
	clearSettingsEnv(t)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	content := `provider: anthropic
ner_server_url: http://ner.internal:8000
workers: 8
log:
  level: debug
  format: json
server:
  port: 9090
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, "anthropic", s.Provider)
	assert.Equal(t, "http://ner.internal:8000", s.NERServerURL)
	assert.Equal(t, 8, s.Workers)
	assert.Equal(t, "debug", s.Log.Level)
	assert.Equal(t, "json", s.Log.Format)
	assert.Equal(t, 9090, s.Server.Port)
	assert.Equal(t, "sk-ant-test", s.APIKey())
}

func TestLoadSettings_JSONFile(t *testing.T) {
	clearSettingsEnv(t)

	path := filepath.Join(t.TempDir(), "settings.json")
	content := `{"workers": 2, "database_url": "postgres://localhost/resumes"}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Workers)
	assert.Equal(t, "postgres://localhost/resumes", s.DatabaseURL)
	// Untouched fields keep their defaults.
	assert.Equal(t, "gemini", s.Provider)
}

func TestLoadSettings_EnvironmentWinsOverFile(t *testing.T) {
	clearSettingsEnv(t)

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 2\nner_threshold: 0.3\n"), 0o644))

	t.Setenv("PARSER_WORKERS", "16")
	t.Setenv("NER_THRESHOLD", "0.75")
	t.Setenv("DATABASE_URL", "postgres://db.internal/resumes")

	s, err := LoadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 16, s.Workers)
	assert.Equal(t, 0.75, s.NERThreshold)
	assert.Equal(t, "postgres://db.internal/resumes", s.DatabaseURL)
}

func TestLoadSettings_Errors(t *testing.T) {
	clearSettingsEnv(t)
	dir := t.TempDir()

	badYAML := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(badYAML, []byte("workers: [oops"), 0o644))

	badValues := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(badValues, []byte("workers: 999\n"), 0o644))

	unsupported := filepath.Join(dir, "settings.ini")
	require.NoError(t, os.WriteFile(unsupported, []byte("workers=4"), 0o644))

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{name: "missing file", path: filepath.Join(dir, "nope.yaml"), wantErr: "failed to read settings file"},
		{name: "broken yaml", path: badYAML, wantErr: "failed to parse settings YAML"},
		{name: "out of range", path: badValues, wantErr: "settings error"},
		{name: "unsupported extension", path: unsupported, wantErr: "unsupported settings format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSettings(tt.path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSettings_Validate(t *testing.T) {
	s := DefaultSettings()
	s.Log.Level = "loud"
	require.Error(t, s.Validate())

	s = DefaultSettings()
	s.NERServerURL = "not a url"
	require.Error(t, s.Validate())

	s = DefaultSettings()
	s.Provider = "anthropic"
	s.GeminiAPIKey = "gm-key"
	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY is not set")
}

func TestSettings_APIKey(t *testing.T) {
	s := &Settings{Provider: "gemini", GeminiAPIKey: "gm-key", ClaudeAPIKey: "ant-key"}
	assert.Equal(t, "gm-key", s.APIKey())

	s.Provider = "anthropic"
	assert.Equal(t, "ant-key", s.APIKey())
}
