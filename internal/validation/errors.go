// Package validation provides the per-field syntactic rules applied to job advert answers.
package validation

import "fmt"

// RejectedError is returned when an answer fails the rule for its field.
// The record is left unchanged and the caller should re-prompt with Reason.
type RejectedError struct {
	Field  string
	Reason string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Reason)
}
