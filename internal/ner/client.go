// Package ner provides an HTTP client for a GLiNER-style named entity
// recognition inference server. The server owns the model weights; this
// client only sends text plus candidate labels and reads back spans.
package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Entity is one recognized span.
type Entity struct {
	Text  string  `json:"text"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
	Start int     `json:"start"`
	End   int     `json:"end"`
}

// Config configures the NER client.
type Config struct {
	// BaseURL is the inference server base URL (default: http://localhost:8000).
	BaseURL string

	// Model is the model identifier the server should use
	// (default: urchade/gliner_multi_pii-v1).
	Model string

	// Threshold is the minimum span confidence (default: 0.5).
	Threshold float64

	// Timeout is the HTTP request timeout (default: 30s).
	Timeout time.Duration
}

// Client calls the inference server. Safe for concurrent use.
type Client struct {
	baseURL   string
	model     string
	threshold float64
	client    *http.Client
}

// NewClient creates a NER client with defaults applied.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8000"
	}
	if cfg.Model == "" {
		cfg.Model = "urchade/gliner_multi_pii-v1"
	}
	if cfg.Threshold == 0 {
		cfg.Threshold = 0.5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:   cfg.BaseURL,
		model:     cfg.Model,
		threshold: cfg.Threshold,
		client:    &http.Client{Timeout: cfg.Timeout},
	}
}

// predictRequest is the request body for the server's predict endpoint.
type predictRequest struct {
	Text      string   `json:"text"`
	Labels    []string `json:"labels"`
	Model     string   `json:"model,omitempty"`
	Threshold float64  `json:"threshold"`
}

// predictResponse is the server's predict response.
type predictResponse struct {
	Entities []Entity `json:"entities"`
}

// Recognize sends text to the server and returns spans matching the
// requested labels, in document order as the server emits them.
func (c *Client) Recognize(ctx context.Context, text string, labels []string) ([]Entity, error) {
	body, err := json.Marshal(predictRequest{
		Text:      text,
		Labels:    labels,
		Model:     c.model,
		Threshold: c.threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call NER server: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("NER server returned status %d: %s", resp.StatusCode, string(msg))
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Entities, nil
}

// Health checks whether the inference server is reachable.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call NER server: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("NER server returned status %d", resp.StatusCode)
	}
	return nil
}
