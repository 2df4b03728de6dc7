// Package types provides type definitions for structured data used throughout the advert optimiser.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// FieldKind is the semantic type of a job advert field
type FieldKind string

const (
	// KindShortText is a single-line value (title, department, salary...)
	KindShortText FieldKind = "short-text"
	// KindDate is a calendar date in YYYY-MM-DD form
	KindDate FieldKind = "date"
	// KindLongText is free prose that may be rewritten by the optimiser
	KindLongText FieldKind = "long-text"
)

// Field names, in schema order.
const (
	FieldJobTitle          = "job_title"
	FieldDepartment        = "department"
	FieldLocation          = "location"
	FieldSalary            = "salary"
	FieldGrade             = "grade"
	FieldClosingDate       = "closing_date"
	FieldSummary           = "summary"
	FieldResponsibilities  = "responsibilities"
	FieldEssentialCriteria = "essential_criteria"
	FieldDesirableCriteria = "desirable_criteria"
)

// Field describes one entry of the job advert schema
type Field struct {
	Name string    `json:"name"`
	Kind FieldKind `json:"kind"`
	Hint string    `json:"hint,omitempty"` // Display hint shown next to the prompt
}

// Label returns the human readable label for the field ("closing_date" -> "Closing Date")
func (f Field) Label() string {
	return Label(f.Name)
}

// schema is the fixed, ordered field table. Order is the prompting order.
var schema = [fieldCount]Field{
	{Name: FieldJobTitle, Kind: KindShortText},
	{Name: FieldDepartment, Kind: KindShortText},
	{Name: FieldLocation, Kind: KindShortText},
	{Name: FieldSalary, Kind: KindShortText, Hint: "e.g. £38,000 - £44,000 national"},
	{Name: FieldGrade, Kind: KindShortText},
	{Name: FieldClosingDate, Kind: KindDate, Hint: "format: YYYY-MM-DD"},
	{Name: FieldSummary, Kind: KindLongText},
	{Name: FieldResponsibilities, Kind: KindLongText},
	{Name: FieldEssentialCriteria, Kind: KindLongText},
	{Name: FieldDesirableCriteria, Kind: KindLongText},
}

const fieldCount = 10

var fieldIndex = func() map[string]int {
	idx := make(map[string]int, fieldCount)
	for i, f := range schema {
		idx[f.Name] = i
	}
	return idx
}()

// Schema returns a copy of the ordered field table
func Schema() []Field {
	out := make([]Field, fieldCount)
	copy(out, schema[:])
	return out
}

// FieldNames returns the schema field names in order
func FieldNames() []string {
	names := make([]string, fieldCount)
	for i, f := range schema {
		names[i] = f.Name
	}
	return names
}

// LookupField returns the schema entry for name
func LookupField(name string) (Field, bool) {
	i, ok := fieldIndex[name]
	if !ok {
		return Field{}, false
	}
	return schema[i], true
}

// IsField reports whether name belongs to the schema
func IsField(name string) bool {
	_, ok := fieldIndex[name]
	return ok
}

// KindOf returns the kind of a field, or "" for unknown names
func KindOf(name string) FieldKind {
	f, ok := LookupField(name)
	if !ok {
		return ""
	}
	return f.Kind
}

// LongTextFields returns the names of every long-text field in schema order
func LongTextFields() []string {
	var names []string
	for _, f := range schema {
		if f.Kind == KindLongText {
			names = append(names, f.Name)
		}
	}
	return names
}

// Hint returns the display hint for a field, or "" when it has none
func Hint(name string) string {
	f, _ := LookupField(name)
	return f.Hint
}

// Label converts a field name into a title-cased label
func Label(name string) string {
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
