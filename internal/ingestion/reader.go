// Package ingestion turns resume documents into clean plain text. A
// Registry maps file extensions to format readers; the Extractor routes
// a path to its reader and normalizes whatever comes back.
package ingestion

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Reader extracts raw text from one document format.
type Reader interface {
	Read(ctx context.Context, path string) (string, error)
}

// Registry maps lowercase file extensions (with leading dot) to readers.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	readers map[string]Reader
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{readers: make(map[string]Reader)}
}

// Register binds an extension to a reader, replacing any previous
// binding. The extension is normalized to lowercase with a leading dot.
func (r *Registry) Register(ext string, reader Reader) {
	ext = normalizeExt(ext)
	r.mu.Lock()
	r.readers[ext] = reader
	r.mu.Unlock()
}

// Lookup returns the reader bound to an extension.
func (r *Registry) Lookup(ext string) (Reader, bool) {
	ext = normalizeExt(ext)
	r.mu.RLock()
	reader, ok := r.readers[ext]
	r.mu.RUnlock()
	return reader, ok
}

// Extensions returns every bound extension, sorted.
func (r *Registry) Extensions() []string {
	r.mu.RLock()
	out := make([]string, 0, len(r.readers))
	for ext := range r.readers {
		out = append(out, ext)
	}
	r.mu.RUnlock()
	sort.Strings(out)
	return out
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// Extractor routes files to the reader registered for their extension
// and cleans the extracted text.
type Extractor struct {
	registry *Registry
}

// NewExtractor wraps a registry.
func NewExtractor(registry *Registry) *Extractor {
	return &Extractor{registry: registry}
}

// Registry exposes the underlying registry so callers can derive the
// supported-extension set.
func (e *Extractor) Registry() *Registry {
	return e.registry
}

// Supported reports whether a reader is registered for the path's
// extension.
func (e *Extractor) Supported(path string) bool {
	_, ok := e.registry.Lookup(filepath.Ext(path))
	return ok
}

// Extract reads a document, cleans the text, and describes what it
// ingested. Callers should check the extension is supported first;
// routing failures here surface as ParseError.
func (e *Extractor) Extract(ctx context.Context, path string) (string, *Metadata, error) {
	ext := normalizeExt(filepath.Ext(path))
	reader, ok := e.registry.Lookup(ext)
	if !ok {
		return "", nil, &ParseError{Path: path, Format: ext, Message: "no reader registered for extension"}
	}

	raw, err := reader.Read(ctx, path)
	if err != nil {
		return "", nil, err
	}

	cleaned := CleanText(raw)
	return cleaned, NewMetadata(path, ext, cleaned), nil
}

// ExtractText is Extract without the metadata.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	text, _, err := e.Extract(ctx, path)
	return text, err
}
