//nolint:revive // types is a standard Go package name pattern
package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filledRecord() Record {
	return RecordFromMap(map[string]string{
		FieldJobTitle:          "Policy Advisor",
		FieldDepartment:        "Cabinet Office",
		FieldLocation:          "London",
		FieldSalary:            "£38,000 - £44,000",
		FieldGrade:             "SEO",
		FieldClosingDate:       "2025-11-07",
		FieldSummary:           "Support ministers.",
		FieldResponsibilities:  "- Draft briefings\n- Manage stakeholders",
		FieldEssentialCriteria: "Strong writing",
		FieldDesirableCriteria: "Policy experience",
	})
}

func TestNewRecord_AllFieldsMissing(t *testing.T) {
	r := NewRecord()
	assert.Equal(t, FieldNames(), r.MissingFields())
	assert.True(t, r.IsEmpty())
	assert.Equal(t, 0, r.Filled())
}

func TestRecord_SetAndGet(t *testing.T) {
	r := NewRecord()
	require.NoError(t, r.Set(FieldGrade, "HEO"))
	assert.Equal(t, "HEO", r.Get(FieldGrade))
	assert.Equal(t, "", r.Get("not_a_field"))
}

func TestRecord_SetUnknownField(t *testing.T) {
	r := NewRecord()
	err := r.Set("pension", "yes")
	require.Error(t, err)

	var unknown *UnknownFieldError
	assert.ErrorAs(t, err, &unknown)
	assert.Equal(t, "pension", unknown.Field)
}

func TestRecord_ValueSemantics(t *testing.T) {
	a := filledRecord()
	b := a
	require.NoError(t, b.Set(FieldGrade, "G7"))

	assert.Equal(t, "SEO", a.Get(FieldGrade))
	assert.NotEqual(t, a, b)
	assert.True(t, a == filledRecord())
}

func TestRecord_MissingFieldsTreatsWhitespaceAsMissing(t *testing.T) {
	r := filledRecord()
	require.NoError(t, r.Set(FieldLocation, "   \t"))
	require.NoError(t, r.Set(FieldJobTitle, ""))

	assert.Equal(t, []string{FieldJobTitle, FieldLocation}, r.MissingFields())
	assert.Equal(t, 8, r.Filled())
}

func TestRecordFromMap_IgnoresUnknownKeys(t *testing.T) {
	r := RecordFromMap(map[string]string{"job_title": "Analyst", "bonus": "none"})
	assert.Equal(t, "Analyst", r.Get(FieldJobTitle))
	assert.Len(t, r.Map(), len(FieldNames()))
	_, ok := r.Map()["bonus"]
	assert.False(t, ok)
}

func TestMarshalRecord_OrderAndIndent(t *testing.T) {
	data, err := MarshalRecord(NewRecord())
	require.NoError(t, err)

	expected := "{\n" +
		"  \"job_title\": \"\",\n" +
		"  \"department\": \"\",\n" +
		"  \"location\": \"\",\n" +
		"  \"salary\": \"\",\n" +
		"  \"grade\": \"\",\n" +
		"  \"closing_date\": \"\",\n" +
		"  \"summary\": \"\",\n" +
		"  \"responsibilities\": \"\",\n" +
		"  \"essential_criteria\": \"\",\n" +
		"  \"desirable_criteria\": \"\"\n" +
		"}"
	assert.Equal(t, expected, string(data))
}

func TestRecord_RoundTrip(t *testing.T) {
	records := []Record{
		NewRecord(),
		filledRecord(),
		RecordFromMap(map[string]string{
			FieldSummary: "Quotes \"inside\" and unicode £ and\nnewlines",
		}),
	}

	for _, r := range records {
		data, err := MarshalRecord(r)
		require.NoError(t, err)

		parsed, err := ParseRecord(data)
		require.NoError(t, err)
		assert.Equal(t, r, parsed)
	}
}

func TestParseRecord_NullAndMissingKeys(t *testing.T) {
	r, err := ParseRecord([]byte(`{"job_title": null, "grade": "EO"}`))
	require.NoError(t, err)
	assert.Equal(t, "", r.Get(FieldJobTitle))
	assert.Equal(t, "EO", r.Get(FieldGrade))
}

func TestParseRecord_RejectsNonStringValue(t *testing.T) {
	_, err := ParseRecord([]byte(`{"salary": 38000}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "salary")
}

func TestParseRecord_RejectsNonObject(t *testing.T) {
	_, err := ParseRecord([]byte(`["job_title"]`))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "JSON object"))
}
