package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Record holds one string value per schema field, in schema order.
// Empty string means unset. Records are plain values and compare with ==.
type Record struct {
	values [fieldCount]string
}

// NewRecord returns an empty record (every field unset)
func NewRecord() Record {
	return Record{}
}

// RecordFromMap builds a record from a field -> value map.
// Unknown keys are ignored; absent keys stay empty.
func RecordFromMap(m map[string]string) Record {
	var r Record
	for name, value := range m {
		if i, ok := fieldIndex[name]; ok {
			r.values[i] = value
		}
	}
	return r
}

// Get returns the value of a field ("" for unknown names)
func (r Record) Get(name string) string {
	i, ok := fieldIndex[name]
	if !ok {
		return ""
	}
	return r.values[i]
}

// Set writes a field value
func (r *Record) Set(name, value string) error {
	i, ok := fieldIndex[name]
	if !ok {
		return &UnknownFieldError{Field: name}
	}
	r.values[i] = value
	return nil
}

// Map returns the record as a field -> value map
func (r Record) Map() map[string]string {
	m := make(map[string]string, fieldCount)
	for i, f := range schema {
		m[f.Name] = r.values[i]
	}
	return m
}

// MissingFields returns the fields whose value is empty or whitespace-only, in schema order
func (r Record) MissingFields() []string {
	missing := []string{}
	for i, f := range schema {
		if strings.TrimSpace(r.values[i]) == "" {
			missing = append(missing, f.Name)
		}
	}
	return missing
}

// Filled returns how many fields hold a non-blank value
func (r Record) Filled() int {
	return fieldCount - len(r.MissingFields())
}

// IsEmpty reports whether every field is blank
func (r Record) IsEmpty() bool {
	return r.Filled() == 0
}

// MarshalJSON writes the record as a flat object with keys in schema order
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range schema {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, _ := json.Marshal(f.Name)
		val, err := json.Marshal(r.values[i])
		if err != nil {
			return nil, fmt.Errorf("failed to marshal field %s: %w", f.Name, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a flat object of string values.
// Missing keys and nulls become empty; unknown keys are ignored; non-string values are rejected.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("record must be a JSON object: %w", err)
	}

	var out Record
	for i, f := range schema {
		msg, ok := raw[f.Name]
		if !ok || string(msg) == "null" {
			continue
		}
		var s string
		if err := json.Unmarshal(msg, &s); err != nil {
			return fmt.Errorf("field %s must be a string: %w", f.Name, err)
		}
		out.values[i] = s
	}
	*r = out
	return nil
}

// MarshalRecord serialises a record for export: schema order, two-space indentation
func MarshalRecord(r Record) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ParseRecord parses an exported record
func ParseRecord(data []byte) (Record, error) {
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return Record{}, err
	}
	return r, nil
}

// UnknownFieldError is returned when a field name is not part of the schema
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field: %s", e.Field)
}
