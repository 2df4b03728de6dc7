package db

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/advert-optimiser/internal/types"
)

// Advert is a published job advert record
type Advert struct {
	ID          uuid.UUID    `json:"id"`
	JobTitle    string       `json:"job_title"`
	Department  string       `json:"department"`
	Grade       string       `json:"grade"`
	ClosingDate *time.Time   `json:"closing_date,omitempty"`
	Record      types.Record `json:"record"`
	SourceURL   *string      `json:"source_url,omitempty"`
	ContentHash string       `json:"content_hash"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// AdvertCreateInput holds the data for publishing an advert
type AdvertCreateInput struct {
	Record    types.Record
	SourceURL string
}

// ListAdvertsOptions filters and paginates ListAdverts
type ListAdvertsOptions struct {
	Department string // Exact match when set
	Limit      int
	Offset     int
}

// FetchedPage is a cached job advert web page
type FetchedPage struct {
	ID           uuid.UUID  `json:"id"`
	URL          string     `json:"url"`
	Platform     string     `json:"platform"`
	RawHTML      *string    `json:"raw_html,omitempty"`
	ParsedText   *string    `json:"parsed_text,omitempty"`
	ContentHash  *string    `json:"content_hash,omitempty"`
	HTTPStatus   *int       `json:"http_status,omitempty"`
	FetchStatus  string     `json:"fetch_status"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	FetchedAt    time.Time  `json:"fetched_at"`
	ExpiresAt    *time.Time `json:"expires_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// FetchStatus constants for fetched pages
const (
	FetchStatusSuccess  = "success"   // Page fetched successfully
	FetchStatusError    = "error"     // Generic error (may retry)
	FetchStatusNotFound = "not_found" // 404/410
	FetchStatusBlocked  = "blocked"   // 403/429
)

// DefaultPageCacheTTL is how long a fetched advert page is served from cache
const DefaultPageCacheTTL = 24 * time.Hour

// FetchStatusFromHTTP determines fetch status from HTTP status code
func FetchStatusFromHTTP(status int) string {
	switch {
	case status >= 200 && status < 300:
		return FetchStatusSuccess
	case status == 404 || status == 410:
		return FetchStatusNotFound
	case status == 403 || status == 429:
		return FetchStatusBlocked
	default:
		return FetchStatusError
	}
}

// HashContent returns the hex SHA-256 of content
func HashContent(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// IsFresh returns true if the page was fetched within maxAge
func (p *FetchedPage) IsFresh(maxAge time.Duration) bool {
	return time.Since(p.FetchedAt) < maxAge
}

// IsExpired returns true if the page's explicit expiry has passed
func (p *FetchedPage) IsExpired() bool {
	if p.ExpiresAt == nil {
		return false
	}
	return time.Now().After(*p.ExpiresAt)
}

// parseClosingDate converts a YYYY-MM-DD field value to a date, nil when empty or malformed
func parseClosingDate(value string) *time.Time {
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil
	}
	return &t
}
