package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			FinishReason: genai.FinishReasonStop,
			Content:      &genai.Content{Parts: []genai.Part{genai.Text(`{"job_title":`), genai.Text(` "Analyst"}`)}},
		}},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, `{"job_title": "Analyst"}`, text)
}

func TestResponseText_Empty(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil response", nil},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"no content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{"no text parts", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}},
		}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := responseText(tt.resp)
			assert.ErrorIs(t, err, ErrEmptyResponse)
		})
	}
}

func TestResponseText_Blocked(t *testing.T) {
	prompt := &genai.GenerateContentResponse{
		PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
	}
	_, err := responseText(prompt)
	var blocked *BlockedError
	require.ErrorAs(t, err, &blocked)

	answer := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		FinishReason: genai.FinishReasonSafety,
		Content:      &genai.Content{Parts: []genai.Part{genai.Text("partial")}},
	}}}
	_, err = responseText(answer)
	require.ErrorAs(t, err, &blocked)
	assert.Contains(t, blocked.Error(), "blocked")
}

func TestNewGeminiClient_MissingKey(t *testing.T) {
	_, err := NewGeminiClient(t.Context(), nil, "")
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
