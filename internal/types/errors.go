package types

import "errors"

// ErrSourceMissing is returned when extraction is requested without any source text
var ErrSourceMissing = errors.New("no job advert source supplied")
