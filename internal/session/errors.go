package session

import "errors"

var (
	// ErrSessionNotFound is returned for unknown or expired session IDs
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoTextExtractor is returned by Ingest when the session has no TextExtractor
	ErrNoTextExtractor = errors.New("no text extractor configured")
)
