package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/jonathan/advert-optimiser/internal/fetch"
	"github.com/jonathan/advert-optimiser/internal/ingestion"
	"github.com/jonathan/advert-optimiser/internal/optimisation"
	"github.com/jonathan/advert-optimiser/internal/parsing"
	"github.com/jonathan/advert-optimiser/internal/schemas"
	"github.com/jonathan/advert-optimiser/internal/session"
	"github.com/jonathan/advert-optimiser/internal/types"
	"github.com/jonathan/advert-optimiser/internal/validation"
	"github.com/jonathan/advert-optimiser/internal/wizard"
)

var (
	// ErrNotConfigured is returned by routes whose backing service was not set up
	ErrNotConfigured = errors.New("not configured on this server")
	// ErrAdvertNotFound is returned for unknown published advert IDs
	ErrAdvertNotFound = errors.New("advert not found")
)

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return "validation error: " + e.Field + " - " + e.Message
}

// ErrorBody is the JSON shape of every error response
type ErrorBody struct {
	Error     string               `json:"error"`
	Code      string               `json:"code"`
	Field     string               `json:"field,omitempty"`
	Reason    string               `json:"reason,omitempty"`
	Retryable bool                 `json:"retryable,omitempty"`
	Details   []schemas.FieldError `json:"details,omitempty"`
	Session   *session.Snapshot    `json:"session,omitempty"`
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	status, _ := classify(err)
	return status
}

// classify maps an error to its status and response body
func classify(err error) (int, ErrorBody) {
	body := ErrorBody{Error: err.Error()}

	var (
		rejected      *validation.RejectedError
		contract      *wizard.ContractError
		invalid       *schemas.ValidationError
		badRequest    *ErrValidation
		fieldErrs     validator.ValidationErrors
		extractionErr *ingestion.ExtractionError
		fetchErr      *fetch.Error
	)

	switch {
	case errors.As(err, &rejected):
		body.Code, body.Field, body.Reason = "rejected", rejected.Field, rejected.Reason
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &contract):
		body.Code, body.Field = "contract_violation", contract.Field
		return http.StatusConflict, body
	case errors.As(err, &invalid):
		body.Code, body.Details = "invalid_record", invalid.Errors
		return http.StatusUnprocessableEntity, body
	case errors.As(err, &badRequest):
		body.Code, body.Field = "invalid_request", badRequest.Field
		return http.StatusBadRequest, body
	case errors.As(err, &fieldErrs):
		body.Code = "invalid_request"
		if len(fieldErrs) > 0 {
			body.Field, body.Reason = fieldErrs[0].Field(), fieldErrs[0].Tag()
		}
		return http.StatusBadRequest, body
	case errors.Is(err, session.ErrSessionNotFound):
		body.Code = "session_not_found"
		return http.StatusNotFound, body
	case errors.Is(err, ErrAdvertNotFound):
		body.Code = "advert_not_found"
		return http.StatusNotFound, body
	case errors.Is(err, optimisation.ErrNoSuggestion):
		body.Code = "no_suggestion"
		return http.StatusNotFound, body
	case errors.Is(err, types.ErrSourceMissing):
		body.Code = "source_missing"
		return http.StatusBadRequest, body
	case errors.Is(err, ingestion.ErrUnsupportedFormat):
		body.Code = "unsupported_format"
		return http.StatusUnsupportedMediaType, body
	case errors.Is(err, parsing.ErrExtractionFailed):
		body.Code, body.Retryable = "extraction_failed", true
		return http.StatusBadGateway, body
	case errors.As(err, &fetchErr):
		body.Code, body.Retryable = "fetch_failed", fetchErr.Retryable
		return http.StatusBadGateway, body
	case errors.As(err, &extractionErr):
		body.Code = "unreadable_source"
		return http.StatusUnprocessableEntity, body
	case errors.Is(err, ErrNotConfigured), errors.Is(err, session.ErrNoTextExtractor):
		body.Code = "not_configured"
		return http.StatusNotImplemented, body
	default:
		body.Code = "internal"
		return http.StatusInternalServerError, body
	}
}

// codeForStatus gives plain error responses a machine-readable code
func codeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "invalid_request"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusRequestEntityTooLarge:
		return "too_large"
	case http.StatusNotImplemented:
		return "not_configured"
	default:
		return "internal"
	}
}

// writeError writes err with its mapped status. Internal errors are logged and their text hidden.
func (s *Server) writeError(w http.ResponseWriter, err error, snap *session.Snapshot) {
	status, body := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.Error(err))
		body.Error = "internal server error"
	}
	body.Session = snap
	s.jsonResponse(w, status, body)
}
