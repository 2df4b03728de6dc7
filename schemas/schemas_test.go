package schemas_test

import (
	"encoding/json"
	"os"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/advert-optimiser/internal/schemas"
	"github.com/jonathan/advert-optimiser/internal/types"
	advertschemas "github.com/jonathan/advert-optimiser/schemas"
)

func TestJobAdvertSchema_ValidJSON(t *testing.T) {
	data, err := os.ReadFile(advertschemas.JobAdvertFile)
	require.NoError(t, err)
	assert.Equal(t, string(data), advertschemas.JobAdvert)

	var v map[string]any
	require.NoError(t, json.Unmarshal(data, &v))
	assert.Equal(t, "object", v["type"])
	assert.Equal(t, false, v["additionalProperties"])
}

func TestJobAdvertSchema_CoversEveryField(t *testing.T) {
	var v struct {
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal([]byte(advertschemas.JobAdvert), &v))

	var keys []string
	for k := range v.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	expected := types.FieldNames()
	sort.Strings(expected)
	assert.Equal(t, expected, keys)
}

func TestJobAdvertSchema_AcceptsExportedRecord(t *testing.T) {
	data, err := types.MarshalRecord(types.RecordFromMap(map[string]string{
		types.FieldJobTitle:    "Policy Advisor",
		types.FieldClosingDate: "2025-11-07",
	}))
	require.NoError(t, err)

	assert.NoError(t, schemas.ValidateJSONString(advertschemas.JobAdvert, string(data)))
}
