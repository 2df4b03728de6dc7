// Package rewriting rewrites long-text advert sections into a clearer civil-service style.
package rewriting

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/jonathan/advert-optimiser/internal/llm"
	"github.com/jonathan/advert-optimiser/internal/prompts"
	"github.com/jonathan/advert-optimiser/internal/types"
)

// rewriteTemperature allows some variety; every rewrite is reviewed before it is applied
const rewriteTemperature float32 = 0.3

// Rewriter proposes an improved version of one advert field
type Rewriter interface {
	Rewrite(ctx context.Context, field, text string) (string, error)
}

// LLMRewriter is a Rewriter backed by an LLM client
type LLMRewriter struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewLLMRewriter creates a rewriter on the advanced tier
func NewLLMRewriter(client llm.Client) *LLMRewriter {
	return &LLMRewriter{client: client, tier: llm.TierAdvanced}
}

// Rewrite asks the model for an improved version of text
func (r *LLMRewriter) Rewrite(ctx context.Context, field, text string) (string, error) {
	prompt, err := buildRewritingPrompt(field, text)
	if err != nil {
		return "", &APICallError{Field: field, Message: "failed to build prompt", Cause: err}
	}

	responseText, err := r.client.GenerateContent(ctx, prompt, r.tier,
		llm.WithTemperature(rewriteTemperature),
		llm.WithSystemPrompt(prompts.System(prompts.RewritingFile)))
	if err != nil {
		return "", &APICallError{Field: field, Message: "failed to generate content", Cause: err}
	}

	rewritten := parseRewriteResponse(responseText)
	if rewritten == "" {
		return "", &APICallError{Field: field, Message: "no text in response", Cause: ErrEmptyRewrite}
	}
	return rewritten, nil
}

func buildRewritingPrompt(field, text string) (string, error) {
	return prompts.Render(prompts.RewritingFile, "optimise-field", map[string]string{
		"Label": types.Label(field),
		"Text":  text,
	})
}

// parseRewriteResponse extracts the rewritten text.
// The model should return plain text, but fenced blocks and {"text": ...} wrappers are unwrapped.
func parseRewriteResponse(responseText string) string {
	text := llm.CleanJSONBlock(responseText)

	var jsonResp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(text), &jsonResp); err == nil && jsonResp.Text != "" {
		return strings.TrimSpace(jsonResp.Text)
	}

	return text
}
