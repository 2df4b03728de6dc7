package parsing

import (
	"errors"
	"fmt"

	"github.com/jonathan/advert-optimiser/internal/types"
)

// ErrSourceMissing is returned when extraction is called with empty or whitespace-only text
var ErrSourceMissing = types.ErrSourceMissing

// ErrExtractionFailed is matched (errors.Is) by every failure of the structuring step.
// The record is left empty and the caller may retry.
var ErrExtractionFailed = errors.New("extraction failed")

// APICallError represents a failure of the structuring service itself
type APICallError struct {
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("structurer call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("structurer call failed: %s", e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}

// Is reports APICallError as an extraction failure
func (e *APICallError) Is(target error) bool {
	return target == ErrExtractionFailed
}

// ParseError represents a structurer payload that was not a JSON object, even after recovery
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("parse error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("parse error: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}

// Is reports ParseError as an extraction failure
func (e *ParseError) Is(target error) bool {
	return target == ErrExtractionFailed
}
