package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/advert-optimiser/internal/fetch"
	"github.com/jonathan/advert-optimiser/internal/ingestion"
	"github.com/jonathan/advert-optimiser/internal/optimisation"
	"github.com/jonathan/advert-optimiser/internal/parsing"
	"github.com/jonathan/advert-optimiser/internal/schemas"
	"github.com/jonathan/advert-optimiser/internal/session"
	"github.com/jonathan/advert-optimiser/internal/validation"
	"github.com/jonathan/advert-optimiser/internal/wizard"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"rejected", &validation.RejectedError{Field: "closing_date", Reason: validation.DateReason}, http.StatusUnprocessableEntity, "rejected"},
		{"contract", &wizard.ContractError{Field: "grade", Cursor: "job_title"}, http.StatusConflict, "contract_violation"},
		{"schema", &schemas.ValidationError{Errors: []schemas.FieldError{{Field: "salary"}}}, http.StatusUnprocessableEntity, "invalid_record"},
		{"bad request", &ErrValidation{Field: "id", Message: "must be a UUID"}, http.StatusBadRequest, "invalid_request"},
		{"session", session.ErrSessionNotFound, http.StatusNotFound, "session_not_found"},
		{"advert", ErrAdvertNotFound, http.StatusNotFound, "advert_not_found"},
		{"suggestion", fmt.Errorf("%w: summary", optimisation.ErrNoSuggestion), http.StatusNotFound, "no_suggestion"},
		{"source missing", parsing.ErrSourceMissing, http.StatusBadRequest, "source_missing"},
		{"upload missing", &ingestion.ExtractionError{Source: ingestion.SourceUpload, Cause: ingestion.ErrSourceMissing}, http.StatusBadRequest, "source_missing"},
		{"unsupported", &ingestion.ExtractionError{Source: ingestion.SourceUpload, Cause: ingestion.ErrUnsupportedFormat}, http.StatusUnsupportedMediaType, "unsupported_format"},
		{"extraction failed", fmt.Errorf("%w: model returned prose", parsing.ErrExtractionFailed), http.StatusBadGateway, "extraction_failed"},
		{"fetch", &ingestion.ExtractionError{Source: ingestion.SourceURL, Cause: &fetch.Error{URL: "https://x", StatusCode: 503, Retryable: true}}, http.StatusBadGateway, "fetch_failed"},
		{"unreadable", &ingestion.ExtractionError{Source: ingestion.SourceUpload, Message: "empty"}, http.StatusUnprocessableEntity, "unreadable_source"},
		{"not configured", fmt.Errorf("publishing: %w", ErrNotConfigured), http.StatusNotImplemented, "not_configured"},
		{"no extractor", session.ErrNoTextExtractor, http.StatusNotImplemented, "not_configured"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := classify(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestClassify_FetchRetryable(t *testing.T) {
	_, body := classify(&fetch.Error{URL: "https://x", StatusCode: 404})
	assert.False(t, body.Retryable)

	_, body = classify(&fetch.Error{URL: "https://x", StatusCode: 429, Retryable: true})
	assert.True(t, body.Retryable)
}

func TestClassify_RejectedCarriesReason(t *testing.T) {
	_, body := classify(&validation.RejectedError{Field: "closing_date", Reason: validation.DateReason})
	assert.Equal(t, "closing_date", body.Field)
	assert.Equal(t, validation.DateReason, body.Reason)
}
