package ingestion

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultTikaURL = "http://localhost:9998"

// TikaConfig configures the Tika server client.
type TikaConfig struct {
	ServerURL string
	Timeout   time.Duration
}

// TikaClient talks to an Apache Tika server, which handles the legacy
// binary formats no pure-Go parser covers.
type TikaClient struct {
	serverURL  string
	httpClient *http.Client
}

// NewTikaClient creates a Tika client. Zero-value config fields fall
// back to localhost and a 60 second timeout.
func NewTikaClient(cfg TikaConfig) *TikaClient {
	if cfg.ServerURL == "" {
		cfg.ServerURL = defaultTikaURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &TikaClient{
		serverURL:  strings.TrimRight(cfg.ServerURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// ExtractText sends document bytes to the server's /tika endpoint and
// returns the plain-text rendition.
func (c *TikaClient) ExtractText(ctx context.Context, data []byte, contentType, name string) (string, error) {
	url := fmt.Sprintf("%s/tika", c.serverURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to create tika request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "text/plain")
	if name != "" {
		req.Header.Set("X-Tika-Resource-Name", name)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach tika server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("tika server returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read tika response: %w", err)
	}
	return string(text), nil
}

// Health checks the server's /tika endpoint is answering.
func (c *TikaClient) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.serverURL+"/tika", nil)
	if err != nil {
		return fmt.Errorf("failed to create tika request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach tika server: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tika server returned status %d", resp.StatusCode)
	}
	return nil
}

// DOCReader extracts text from legacy Word documents via Tika. A nil
// client makes every read fail with a ParseError, so .doc stays in the
// supported set but reports a clear error until a server is configured.
type DOCReader struct {
	tika *TikaClient
}

// NewDOCReader returns a legacy Word reader backed by a Tika client.
func NewDOCReader(tika *TikaClient) *DOCReader {
	return &DOCReader{tika: tika}
}

// Read uploads the document to Tika and returns its text.
func (r *DOCReader) Read(ctx context.Context, path string) (string, error) {
	if r.tika == nil {
		return "", &ParseError{Path: path, Format: ".doc", Message: "no tika server configured for legacy Word extraction"}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &ReadError{Path: path, Cause: err}
	}

	text, err := r.tika.ExtractText(ctx, data, "application/msword", filepath.Base(path))
	if err != nil {
		return "", &ParseError{Path: path, Format: ".doc", Message: "tika extraction failed", Cause: err}
	}
	return text, nil
}
