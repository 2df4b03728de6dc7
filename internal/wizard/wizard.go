// Package wizard drives guided completion of the missing fields of a job advert record.
package wizard

import (
	"github.com/jonathan/advert-optimiser/internal/store"
	"github.com/jonathan/advert-optimiser/internal/types"
	"github.com/jonathan/advert-optimiser/internal/validation"
)

// State is the wizard state as seen by callers
type State string

const (
	// StateIdle means no field is being prompted
	StateIdle State = "idle"
	// StatePrompting means the cursor is set to a missing field
	StatePrompting State = "prompting"
)

// Prompt describes the field currently being asked about
type Prompt struct {
	Field string          `json:"field"`
	Label string          `json:"label"`
	Kind  types.FieldKind `json:"kind"`
	Hint  string          `json:"hint,omitempty"`
}

// Outcome reports the effect of an accepted answer
type Outcome struct {
	Field    string   `json:"field"`
	Value    string   `json:"value"`
	Optimise []string `json:"optimise,omitempty"` // Long-text fields to hand to the optimiser
	Next     string   `json:"next,omitempty"`     // Field now being prompted, "" when idle
}

// Wizard is the completion state machine over a store.
// The cursor is either empty or a member of the store's missing-field queue.
type Wizard struct {
	store  *store.Store
	cursor string
}

// New creates a wizard over st, starting idle
func New(st *store.Store) *Wizard {
	return &Wizard{store: st}
}

// State returns the current state without advancing
func (w *Wizard) State() State {
	if w.cursor == "" {
		return StateIdle
	}
	return StatePrompting
}

// Cursor returns the field being prompted, or ""
func (w *Wizard) Cursor() string {
	return w.cursor
}

// Current returns the field to prompt for, moving from idle to the first
// missing field in schema order when there is one.
func (w *Wizard) Current() (string, bool) {
	if w.cursor == "" {
		if missing := w.store.Missing(); len(missing) > 0 {
			w.cursor = missing[0]
		}
	}
	return w.cursor, w.cursor != ""
}

// Prompt is Current with display details for the field
func (w *Wizard) Prompt() (Prompt, bool) {
	field, ok := w.Current()
	if !ok {
		return Prompt{}, false
	}
	f, _ := types.LookupField(field)
	return Prompt{Field: f.Name, Label: f.Label(), Kind: f.Kind, Hint: f.Hint}, true
}

// Submit answers the cursor field.
// A field other than the cursor returns *ContractError. An invalid answer returns
// *validation.RejectedError and leaves the state and record unchanged.
func (w *Wizard) Submit(field, raw string) (Outcome, error) {
	if field != w.cursor || w.cursor == "" {
		return Outcome{}, &ContractError{Field: field, Cursor: w.cursor}
	}

	value, err := validation.ValidateNamed(field, raw)
	if err != nil {
		return Outcome{}, err
	}
	if err := w.store.Set(field, value); err != nil {
		return Outcome{}, err
	}
	w.cursor = ""

	out := Outcome{Field: field, Value: value}
	if types.KindOf(field) == types.KindLongText && value != "" {
		out.Optimise = []string{field}
	}
	out.Next, _ = w.Current()
	return out, nil
}

// ReplaceAll overwrites the whole record, clears the cursor and returns
// every non-empty long-text field for optimisation, in schema order.
func (w *Wizard) ReplaceAll(r types.Record) []string {
	w.Reset(r)
	var optimise []string
	for _, field := range types.LongTextFields() {
		if r.Get(field) != "" && !w.store.IsMissing(field) {
			optimise = append(optimise, field)
		}
	}
	return optimise
}

// Reset replaces the record and clears the cursor without queueing optimisation
func (w *Wizard) Reset(r types.Record) {
	w.store.Replace(r)
	w.cursor = ""
}

// Invalidate clears the cursor after the record changed outside the wizard
func (w *Wizard) Invalidate() {
	w.cursor = ""
}
