package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/advert-optimiser/internal/types"
)

func TestNew_EmptyRecord(t *testing.T) {
	s := New(types.NewRecord())
	assert.Equal(t, types.FieldNames(), s.Missing())
	assert.False(t, s.Complete())
	assert.Equal(t, Progress{Done: 0, Total: 10}, s.Progress())
}

func TestSet_RecomputesQueue(t *testing.T) {
	s := New(types.NewRecord())
	require.NoError(t, s.Set(types.FieldJobTitle, "Analyst"))

	assert.False(t, s.IsMissing(types.FieldJobTitle))
	assert.Equal(t, types.FieldDepartment, s.Missing()[0])
	assert.Equal(t, Progress{Done: 1, Total: 10}, s.Progress())

	require.NoError(t, s.Set(types.FieldJobTitle, "   "))
	assert.True(t, s.IsMissing(types.FieldJobTitle))
}

func TestSet_UnknownField(t *testing.T) {
	s := New(types.NewRecord())
	err := s.Set("benefits", "pension")
	var unknown *types.UnknownFieldError
	assert.ErrorAs(t, err, &unknown)
	assert.Len(t, s.Missing(), 10)
}

func TestQueueMatchesRecordAfterEveryMutation(t *testing.T) {
	s := New(types.NewRecord())
	steps := []struct{ field, value string }{
		{types.FieldSummary, "Lead a team"},
		{types.FieldGrade, "G7"},
		{types.FieldSummary, ""},
		{types.FieldClosingDate, "2025-11-07"},
		{types.FieldLocation, "\t"},
	}
	for _, step := range steps {
		require.NoError(t, s.Set(step.field, step.value))
		assert.Equal(t, s.Record().MissingFields(), s.Missing())
	}

	full := types.RecordFromMap(map[string]string{types.FieldJobTitle: "X"})
	s.Replace(full)
	assert.Equal(t, full.MissingFields(), s.Missing())
}

func TestMissing_ReturnsCopy(t *testing.T) {
	s := New(types.NewRecord())
	m := s.Missing()
	m[0] = "tampered"
	assert.Equal(t, types.FieldJobTitle, s.Missing()[0])
}

func TestComplete(t *testing.T) {
	m := map[string]string{}
	for _, f := range types.FieldNames() {
		m[f] = "value"
	}
	s := New(types.RecordFromMap(m))
	assert.True(t, s.Complete())
	assert.Empty(t, s.Missing())
	assert.Equal(t, Progress{Done: 10, Total: 10}, s.Progress())
}
