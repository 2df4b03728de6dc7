// Package schemas checks JSON documents, chiefly exported job advert records, against JSON Schemas.
package schemas

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	advertschemas "github.com/jonathan/advert-optimiser/schemas"
)

// FieldError is one schema violation. Field is "(root)" for document-level problems.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError lists every violation found in a document
type ValidationError struct {
	Errors []FieldError
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "validation failed with %d error(s):", len(ve.Errors))
	for _, fe := range ve.Errors {
		fmt.Fprintf(&sb, "\n  - %s: %s", fe.Field, fe.Message)
	}
	return sb.String()
}

// SchemaLoadError is returned when the schema itself cannot be read or compiled
type SchemaLoadError struct {
	Path    string
	Message string
	Cause   error
}

func (e *SchemaLoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("failed to load schema %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("failed to load schema %s: %s", e.Path, e.Message)
}

func (e *SchemaLoadError) Unwrap() error {
	return e.Cause
}

// DocumentError is returned when the document is missing or is not JSON
type DocumentError struct {
	Source string
	Cause  error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %v", e.Source, e.Cause)
}

func (e *DocumentError) Unwrap() error {
	return e.Cause
}

var errNotJSON = errors.New("not valid JSON")

var jobAdvertSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return compile(advertschemas.JobAdvertFile, []byte(advertschemas.JobAdvert))
})

// ValidateRecord checks a record document against the built-in job advert schema
func ValidateRecord(data []byte) error {
	schema, err := jobAdvertSchema()
	if err != nil {
		return err
	}
	return check(schema, "record", data)
}

// ValidateRecordFile reads a record file and validates it with ValidateRecord
func ValidateRecordFile(jsonPath string) error {
	data, err := readDocument("JSON file", jsonPath)
	if err != nil {
		return err
	}
	return ValidateRecord(data)
}

// ValidateJSON validates the JSON file at jsonPath against the schema file at schemaPath
func ValidateJSON(schemaPath, jsonPath string) error {
	raw, err := readDocument("schema file", schemaPath)
	if err != nil {
		return err
	}
	schema, err := compile(schemaPath, raw)
	if err != nil {
		return err
	}

	data, err := readDocument("JSON file", jsonPath)
	if err != nil {
		return err
	}
	return check(schema, jsonPath, data)
}

// ValidateJSONString validates JSON content against schema content
func ValidateJSONString(schemaContent, jsonContent string) error {
	schema, err := compile("(string schema)", []byte(schemaContent))
	if err != nil {
		return err
	}
	return check(schema, "(string document)", []byte(jsonContent))
}

func readDocument(kind, path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, &DocumentError{Source: path, Cause: fmt.Errorf("%s not found", kind)}
	}
	if err != nil {
		return nil, &DocumentError{Source: path, Cause: err}
	}
	return data, nil
}

func compile(name string, raw []byte) (*gojsonschema.Schema, error) {
	if !json.Valid(raw) {
		return nil, &SchemaLoadError{Path: name, Message: "schema is not valid JSON"}
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, &SchemaLoadError{Path: name, Message: "schema does not compile", Cause: err}
	}
	return schema, nil
}

func check(schema *gojsonschema.Schema, source string, data []byte) error {
	if !json.Valid(data) {
		return &DocumentError{Source: source, Cause: errNotJSON}
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &DocumentError{Source: source, Cause: err}
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		ve.Errors = append(ve.Errors, FieldError{
			Field:   desc.Field(),
			Rule:    desc.Type(),
			Message: desc.Description(),
		})
	}
	return ve
}
