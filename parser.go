package resumeparser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jonathan/resume-parser/internal/config"
	"github.com/jonathan/resume-parser/internal/extraction"
	"github.com/jonathan/resume-parser/internal/ingestion"
	"github.com/jonathan/resume-parser/internal/llm"
	"github.com/jonathan/resume-parser/internal/ner"
	"github.com/jonathan/resume-parser/internal/types"
)

// Parser is the package entry point: it reads a resume document,
// extracts its text, and runs every configured field chain over it.
// Safe for concurrent use once constructed.
type Parser struct {
	settings    *config.Settings
	extraction  *config.Extraction
	factory     *extraction.Factory
	coordinator *extraction.Coordinator
	extractor   *ingestion.Extractor
	logger      zerolog.Logger
	parallel    bool

	extraExts     []string
	customReaders map[string]ingestion.Reader
}

// Option configures a Parser.
type Option func(*Parser)

// WithSettings supplies application settings (backends, credentials,
// tuning) instead of the defaults.
func WithSettings(s *Settings) Option {
	return func(p *Parser) { p.settings = s }
}

// WithExtractionConfig supplies custom strategy chains.
func WithExtractionConfig(cfg *ExtractionConfig) Option {
	return func(p *Parser) { p.extraction = cfg }
}

// WithFactory supplies a pre-built strategy factory, typically to stub
// backends in tests.
func WithFactory(f *Factory) Option {
	return func(p *Parser) { p.factory = f }
}

// WithExtensions enables built-in readers beyond the default document
// set, e.g. ".html" or ".txt". Unknown extensions fail construction.
func WithExtensions(exts ...string) Option {
	return func(p *Parser) { p.extraExts = append(p.extraExts, exts...) }
}

// WithReader registers a custom reader for an extension.
func WithReader(ext string, r Reader) Option {
	return func(p *Parser) {
		if p.customReaders == nil {
			p.customReaders = make(map[string]ingestion.Reader)
		}
		p.customReaders[ext] = r
	}
}

// WithParallel toggles concurrent field chains within one parse.
func WithParallel(on bool) Option {
	return func(p *Parser) { p.parallel = on }
}

// WithLogger attaches a structured logger; the default discards logs.
func WithLogger(logger zerolog.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

// New builds a Parser. Without options it parses .pdf, .docx, and .doc
// files using the default strategy chains, reaching a local NER server
// and whichever LLM provider the environment configures.
func New(opts ...Option) (*Parser, error) {
	p := &Parser{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}

	if p.settings == nil {
		settings, err := config.LoadSettings("")
		if err != nil {
			return nil, err
		}
		p.settings = settings
	}
	if p.extraction == nil {
		p.extraction = config.DefaultExtraction()
	}
	if p.factory == nil {
		p.factory = defaultFactory(p.settings)
	}

	if p.extractor == nil {
		p.extractor = ingestion.NewExtractor(defaultRegistry(p.settings))
	}
	registry := p.extractor.Registry()
	for _, ext := range p.extraExts {
		reader, ok := builtinReader(ext)
		if !ok {
			return nil, fmt.Errorf("no reader available for extension %q", ext)
		}
		registry.Register(ext, reader)
	}
	for ext, reader := range p.customReaders {
		registry.Register(ext, reader)
	}

	p.coordinator = extraction.NewCoordinator(p.extraction, p.factory, &p.logger)
	p.coordinator.SetParallel(p.parallel)
	return p, nil
}

// defaultRegistry binds the default document formats.
func defaultRegistry(settings *config.Settings) *ingestion.Registry {
	registry := ingestion.NewRegistry()
	registry.Register(".pdf", ingestion.NewPDFReader())
	registry.Register(".docx", ingestion.NewDOCXReader())

	var tika *ingestion.TikaClient
	if settings.TikaURL != "" {
		tika = ingestion.NewTikaClient(ingestion.TikaConfig{ServerURL: settings.TikaURL})
	}
	registry.Register(".doc", ingestion.NewDOCReader(tika))
	return registry
}

// builtinReader maps opt-in extensions to their readers.
func builtinReader(ext string) (ingestion.Reader, bool) {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "html", "htm":
		return ingestion.NewHTMLReader(), true
	case "txt", "md":
		return ingestion.NewPlainTextReader(), true
	}
	return nil, false
}

// defaultFactory wires the strategy factory to the settings-configured
// backends.
func defaultFactory(settings *config.Settings) *extraction.Factory {
	return extraction.NewFactory(extraction.FactoryConfig{
		NewRecognizer: func() extraction.EntityRecognizer {
			return ner.NewClient(ner.Config{
				BaseURL:   settings.NERServerURL,
				Model:     settings.NERModel,
				Threshold: settings.NERThreshold,
			})
		},
		NewGenerator: func(ctx context.Context) (extraction.TextGenerator, error) {
			apiKey := settings.APIKey()
			if apiKey == "" {
				return nil, fmt.Errorf("no API key configured for provider %s", settings.Provider)
			}
			cfg := llm.DefaultConfigFor(llm.Provider(settings.Provider))
			if settings.Model != "" {
				cfg = cfg.WithModel(llm.TierLite, settings.Model)
			}
			return llm.NewClient(ctx, cfg, apiKey)
		},
	})
}

// Close releases backend resources.
func (p *Parser) Close() error {
	return p.factory.Close()
}

// Extensions returns the supported file extensions, sorted.
func (p *Parser) Extensions() []string {
	return p.extractor.Registry().Extensions()
}

// Supported reports whether the parser has a reader for the file's extension.
func (p *Parser) Supported(path string) bool {
	return p.extractor.Supported(path)
}

// ExtractionConfig returns the strategy chains the parser runs with.
func (p *Parser) ExtractionConfig() *ExtractionConfig {
	return p.extraction
}

// ParseResume parses one resume document into structured fields.
//
// Error surface: FileNotFoundError when the path does not exist,
// UnsupportedFormatError for an extension with no reader,
// FileParsingError when text extraction fails, and
// FieldExtractionError when the document yields no text at all.
// Per-field strategy failures never surface here; they are recorded in
// the result's attempt trails.
func (p *Parser) ParseResume(ctx context.Context, path string) (*ResumeData, error) {
	data, _, err := p.ParseFile(ctx, path)
	return data, err
}

// ParseFile is ParseResume plus metadata about the ingested document.
func (p *Parser) ParseFile(ctx context.Context, path string) (*ResumeData, *Metadata, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, nil, &FileNotFoundError{Path: path}
		}
		return nil, nil, &FileParsingError{Path: path, Cause: err}
	}

	if !p.extractor.Supported(path) {
		return nil, nil, &UnsupportedFormatError{
			Path:      path,
			Format:    strings.ToLower(filepath.Ext(path)),
			Supported: p.Extensions(),
		}
	}

	text, meta, err := p.extractor.Extract(ctx, path)
	if err != nil {
		return nil, nil, &FileParsingError{Path: path, Cause: err}
	}

	data, err := p.coordinator.ExtractAll(ctx, text)
	if err != nil {
		return nil, meta, err
	}

	p.logger.Info().
		Str("source", path).
		Int("chars", meta.Chars).
		Int("fields", len(data.Fields())).
		Msg("resume parsed")
	return data, meta, nil
}

// ParseText runs field extraction over already-extracted resume text.
func (p *Parser) ParseText(ctx context.Context, rawText string) (*ResumeData, error) {
	return p.coordinator.ExtractAll(ctx, ingestion.CleanText(rawText))
}

// Fields returns the field types the parser extracts, in output order.
func (p *Parser) Fields() []types.FieldType {
	return p.extraction.Fields()
}
