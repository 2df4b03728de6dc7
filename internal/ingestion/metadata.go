package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata describes where ingested advert text came from
type Metadata struct {
	Source    SourceKind `json:"source"`
	URL       string     `json:"url,omitempty"`
	Filename  string     `json:"filename,omitempty"`
	Platform  string     `json:"platform,omitempty"`   // Detected job board
	FromCache bool       `json:"from_cache,omitempty"` // Page served from the page cache
	Rendered  bool       `json:"rendered,omitempty"`   // Text came from the headless browser
	Timestamp string     `json:"timestamp"`            // RFC3339 format
	Hash      string     `json:"hash"`                 // SHA256 hex digest of the text
	Chars     int        `json:"chars"`
}

// NewMetadata creates metadata for content with the current timestamp
func NewMetadata(source SourceKind, content string) *Metadata {
	return &Metadata{
		Source:    source,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
		Chars:     len([]rune(content)),
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
