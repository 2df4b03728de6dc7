package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/advert-optimiser/internal/types"
)

// DateTag is the validator tag for YYYY-MM-DD dates
const DateTag = "isodate"

// FieldTag is the validator tag accepting job advert field names
const FieldTag = "advert_field"

// DateReason is shown when a closing date does not match the expected format
const DateReason = "please use format YYYY-MM-DD, e.g. 2025-11-07"

var isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

var fieldValidator = mustNewValidator()

// Result is the outcome of validating one raw answer
type Result struct {
	Value  string // Normalised (trimmed) value, set when OK
	Reason string // Rejection reason, set when not OK
	OK     bool
}

// NewValidator returns a validator with the advert-specific tags registered
func NewValidator() (*validator.Validate, error) {
	v := validator.New()
	if err := RegisterTags(v); err != nil {
		return nil, err
	}
	return v, nil
}

// RegisterTags adds the advert-specific tags to an existing validator
func RegisterTags(v *validator.Validate) error {
	if err := v.RegisterValidation(DateTag, isISODate); err != nil {
		return fmt.Errorf("failed to register %s tag: %w", DateTag, err)
	}
	if err := v.RegisterValidation(FieldTag, isSchemaField); err != nil {
		return fmt.Errorf("failed to register %s tag: %w", FieldTag, err)
	}
	return nil
}

func mustNewValidator() *validator.Validate {
	v, err := NewValidator()
	if err != nil {
		panic(err)
	}
	return v
}

func isSchemaField(fl validator.FieldLevel) bool {
	return types.IsField(fl.Field().String())
}

func isISODate(fl validator.FieldLevel) bool {
	return isoDatePattern.MatchString(fl.Field().String())
}

// ValidateField checks a raw answer against the rule for kind.
// Every value is trimmed. Dates must be YYYY-MM-DD; an empty date is valid and stays missing.
// Only the pattern is checked, not whether the date exists on the calendar.
func ValidateField(kind types.FieldKind, raw string) Result {
	value := strings.TrimSpace(raw)

	if kind == types.KindDate {
		if err := fieldValidator.Var(value, "omitempty,"+DateTag); err != nil {
			return Result{Reason: DateReason}
		}
	}

	return Result{Value: value, OK: true}
}

// ValidateNamed validates a raw answer for a named schema field.
// It returns the normalised value or a *RejectedError.
func ValidateNamed(field, raw string) (string, error) {
	f, ok := types.LookupField(field)
	if !ok {
		return "", &types.UnknownFieldError{Field: field}
	}

	res := ValidateField(f.Kind, raw)
	if !res.OK {
		return "", &RejectedError{Field: field, Reason: res.Reason}
	}
	return res.Value, nil
}

// CheckRecord validates every field of a record and returns the rejections in schema order.
// It does not normalise values.
func CheckRecord(r types.Record) []*RejectedError {
	var rejected []*RejectedError
	for _, f := range types.Schema() {
		res := ValidateField(f.Kind, r.Get(f.Name))
		if !res.OK {
			rejected = append(rejected, &RejectedError{Field: f.Name, Reason: res.Reason})
		}
	}
	return rejected
}
