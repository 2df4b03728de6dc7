package parsing

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/advert-optimiser/internal/llm"
	"github.com/jonathan/advert-optimiser/internal/types"
)

// recordingClient is an llm.Client that records the last JSON request
type recordingClient struct {
	response string
	err      error
	prompt   string
	tier     llm.ModelTier
	nOpts    int
}

func (c *recordingClient) GenerateContent(context.Context, string, llm.ModelTier, ...llm.GenerateOption) (string, error) {
	return "", errors.New("unexpected GenerateContent call")
}

func (c *recordingClient) GenerateJSON(_ context.Context, prompt string, tier llm.ModelTier, opts ...llm.GenerateOption) (string, error) {
	c.prompt = prompt
	c.tier = tier
	c.nOpts = len(opts)
	return c.response, c.err
}

func (c *recordingClient) GetModel(llm.ModelTier) string { return "test-model" }
func (c *recordingClient) Close() error                  { return nil }

func TestLLMStructurer_BuildsPromptFromTemplate(t *testing.T) {
	client := &recordingClient{response: `{"job_title": "Analyst"}`}
	s := NewLLMStructurer(client)

	payload, err := s.Structure(t.Context(), "We are hiring an Analyst.", types.NewRecord())
	require.NoError(t, err)
	assert.Equal(t, `{"job_title": "Analyst"}`, payload)

	assert.Equal(t, llm.TierStandard, client.tier)
	assert.Equal(t, 2, client.nOpts)
	assert.Contains(t, client.prompt, "We are hiring an Analyst.")
	assert.Contains(t, client.prompt, `"desirable_criteria": ""`)
	assert.Contains(t, client.prompt, "closing_date (Closing Date): date, format: YYYY-MM-DD")
	assert.NotContains(t, client.prompt, "{{.")
}

func TestLLMStructurer_WithCoordinator(t *testing.T) {
	client := &recordingClient{err: errors.New("quota exceeded")}
	c := NewCoordinator(NewLLMStructurer(client), nil)

	record, err := c.Extract(t.Context(), "advert")
	assert.ErrorIs(t, err, ErrExtractionFailed)
	assert.True(t, record.IsEmpty())
}

func TestFieldGuide_SchemaOrder(t *testing.T) {
	guide := fieldGuide()
	lines := splitLines(guide)
	require.Len(t, lines, len(types.FieldNames()))
	assert.Contains(t, lines[0], "job_title")
	assert.Contains(t, lines[3], "£38,000")
}

func splitLines(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	return append(out, s[start:])
}
