package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Metadata describes one ingested document
type Metadata struct {
	Source    string `json:"source"`
	Format    string `json:"format"`
	Chars     int    `json:"chars"`
	Words     int    `json:"words"`
	Hash      string `json:"hash"`      // SHA256 hex digest of the cleaned text
	Timestamp string `json:"timestamp"` // RFC3339 format
}

// NewMetadata creates metadata for a cleaned document
func NewMetadata(source, format, text string) *Metadata {
	return &Metadata{
		Source:    source,
		Format:    format,
		Chars:     len(text),
		Words:     len(strings.Fields(text)),
		Hash:      computeHash(text),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
