//nolint:revive // types is a standard Go package name pattern
package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSchema_OrderAndKinds(t *testing.T) {
	fields := Schema()
	assert.Len(t, fields, 10)
	assert.Equal(t, FieldJobTitle, fields[0].Name)
	assert.Equal(t, FieldDesirableCriteria, fields[9].Name)

	assert.Equal(t, KindDate, KindOf(FieldClosingDate))
	assert.Equal(t, KindShortText, KindOf(FieldSalary))
	assert.Equal(t, KindLongText, KindOf(FieldSummary))
	assert.Equal(t, FieldKind(""), KindOf("unknown"))
}

func TestSchema_ReturnsCopy(t *testing.T) {
	fields := Schema()
	fields[0].Name = "changed"
	assert.Equal(t, FieldJobTitle, Schema()[0].Name)
}

func TestLongTextFields(t *testing.T) {
	assert.Equal(t, []string{
		FieldSummary,
		FieldResponsibilities,
		FieldEssentialCriteria,
		FieldDesirableCriteria,
	}, LongTextFields())
}

func TestHintsAndLabels(t *testing.T) {
	assert.Equal(t, "format: YYYY-MM-DD", Hint(FieldClosingDate))
	assert.Contains(t, Hint(FieldSalary), "£38,000")
	assert.Equal(t, "", Hint(FieldJobTitle))

	assert.Equal(t, "Closing Date", Label(FieldClosingDate))
	assert.Equal(t, "Essential Criteria", Label(FieldEssentialCriteria))

	f, ok := LookupField(FieldJobTitle)
	assert.True(t, ok)
	assert.Equal(t, "Job Title", f.Label())
}

func TestIsField(t *testing.T) {
	assert.True(t, IsField(FieldGrade))
	assert.False(t, IsField("Grade"))
}
