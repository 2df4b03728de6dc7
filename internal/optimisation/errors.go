package optimisation

import "errors"

// ErrNoSuggestion is returned when applying a field that has no pending suggestion
var ErrNoSuggestion = errors.New("no pending suggestion for field")
