package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// GetPageByURL retrieves a cached page, nil when the URL was never fetched
func (db *DB) GetPageByURL(ctx context.Context, pageURL string) (*FetchedPage, error) {
	var p FetchedPage
	err := db.pool.QueryRow(ctx,
		`SELECT id, url, platform, raw_html, parsed_text, content_hash, http_status,
		        fetch_status, error_message, fetched_at, expires_at, created_at, updated_at
		 FROM fetched_pages WHERE url = $1`,
		pageURL,
	).Scan(&p.ID, &p.URL, &p.Platform, &p.RawHTML, &p.ParsedText, &p.ContentHash,
		&p.HTTPStatus, &p.FetchStatus, &p.ErrorMessage, &p.FetchedAt, &p.ExpiresAt,
		&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get fetched page: %w", err)
	}
	return &p, nil
}

// GetFreshPage retrieves a page only if it was fetched successfully within maxAge
func (db *DB) GetFreshPage(ctx context.Context, pageURL string, maxAge time.Duration) (*FetchedPage, error) {
	page, err := db.GetPageByURL(ctx, pageURL)
	if err != nil || page == nil {
		return nil, err
	}
	if !page.IsFresh(maxAge) || page.IsExpired() || page.FetchStatus != FetchStatusSuccess {
		return nil, nil
	}
	return page, nil
}

// SavePage inserts or updates a successfully fetched page
func (db *DB) SavePage(ctx context.Context, page *FetchedPage) error {
	var contentHash *string
	if page.RawHTML != nil {
		hash := HashContent(*page.RawHTML)
		contentHash = &hash
	}

	expiresAt := page.ExpiresAt
	if expiresAt == nil {
		t := time.Now().Add(DefaultPageCacheTTL)
		expiresAt = &t
	}

	fetchStatus := page.FetchStatus
	if fetchStatus == "" {
		fetchStatus = FetchStatusSuccess
	}

	err := db.pool.QueryRow(ctx,
		`INSERT INTO fetched_pages (url, platform, raw_html, parsed_text, content_hash,
		                            http_status, fetch_status, error_message, fetched_at, expires_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), $9)
		 ON CONFLICT (url) DO UPDATE SET
		     platform = $2,
		     raw_html = $3,
		     parsed_text = $4,
		     content_hash = $5,
		     http_status = $6,
		     fetch_status = $7,
		     error_message = $8,
		     fetched_at = NOW(),
		     expires_at = $9,
		     updated_at = NOW()
		 RETURNING id, fetched_at, created_at, updated_at`,
		page.URL, page.Platform, page.RawHTML, page.ParsedText, contentHash,
		page.HTTPStatus, fetchStatus, page.ErrorMessage, expiresAt,
	).Scan(&page.ID, &page.FetchedAt, &page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save fetched page: %w", err)
	}

	page.ContentHash = contentHash
	page.FetchStatus = fetchStatus
	page.ExpiresAt = expiresAt
	return nil
}

// RecordFailedFetch stores a failed fetch so the page is not served from cache
func (db *DB) RecordFailedFetch(ctx context.Context, pageURL string, httpStatus int, errorMsg string) error {
	var status *int
	if httpStatus > 0 {
		status = &httpStatus
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO fetched_pages (url, http_status, fetch_status, error_message, fetched_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (url) DO UPDATE SET
		     http_status = $2,
		     fetch_status = $3,
		     error_message = $4,
		     fetched_at = NOW(),
		     updated_at = NOW()`,
		pageURL, status, FetchStatusFromHTTP(httpStatus), errorMsg,
	)
	if err != nil {
		return fmt.Errorf("failed to record failed fetch: %w", err)
	}
	return nil
}
