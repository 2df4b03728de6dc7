package rewriting

import (
	"errors"
	"fmt"
)

// ErrEmptyRewrite is returned when the model answers with no usable text
var ErrEmptyRewrite = errors.New("rewriter returned empty text")

// APICallError represents a failure calling the rewriting model
type APICallError struct {
	Field   string
	Message string
	Cause   error
}

func (e *APICallError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("rewrite of %s failed: %s: %v", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("rewrite of %s failed: %s", e.Field, e.Message)
}

func (e *APICallError) Unwrap() error {
	return e.Cause
}
