// Package store holds the in-progress job advert record and its derived completion state.
package store

import (
	"github.com/jonathan/advert-optimiser/internal/types"
)

// Progress reports how many schema fields currently hold a value
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Store holds one record and the missing-field queue derived from it.
// The queue is recomputed on every mutation and cannot be edited directly.
// A Store is not safe for concurrent use; the owning session serialises access.
type Store struct {
	record  types.Record
	missing []string
}

// New returns a store seeded with r
func New(r types.Record) *Store {
	s := &Store{}
	s.Replace(r)
	return s
}

// Record returns a copy of the current record
func (s *Store) Record() types.Record {
	return s.record
}

// Get returns the current value of a field
func (s *Store) Get(field string) string {
	return s.record.Get(field)
}

// Set writes a single field and recomputes the queue
func (s *Store) Set(field, value string) error {
	if err := s.record.Set(field, value); err != nil {
		return err
	}
	s.recompute()
	return nil
}

// Replace overwrites the whole record and recomputes the queue
func (s *Store) Replace(r types.Record) {
	s.record = r
	s.recompute()
}

// Missing returns the missing-field queue in schema order
func (s *Store) Missing() []string {
	out := make([]string, len(s.missing))
	copy(out, s.missing)
	return out
}

// IsMissing reports whether field is in the missing-field queue
func (s *Store) IsMissing(field string) bool {
	for _, f := range s.missing {
		if f == field {
			return true
		}
	}
	return false
}

// Complete reports whether every field holds a value
func (s *Store) Complete() bool {
	return len(s.missing) == 0
}

// Progress returns the done/total count of filled fields
func (s *Store) Progress() Progress {
	total := len(types.FieldNames())
	return Progress{Done: total - len(s.missing), Total: total}
}

func (s *Store) recompute() {
	s.missing = s.record.MissingFields()
}
