// Package ingestion turns an uploaded document, pasted text or a web page into plain advert text.
package ingestion

import (
	"errors"
	"fmt"

	"github.com/jonathan/advert-optimiser/internal/types"
)

// ErrSourceMissing is returned when no usable source was supplied
var ErrSourceMissing = types.ErrSourceMissing

// ErrUnsupportedFormat is returned for uploads whose extension is not .txt, .docx or .pdf
var ErrUnsupportedFormat = errors.New("unsupported file format")

// ExtractionError reports a failure to obtain text from a source
type ExtractionError struct {
	Source  SourceKind
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s extraction failed: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s extraction failed: %s", e.Source, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}
