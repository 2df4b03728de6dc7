package parsing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/advert-optimiser/internal/llm"
	"github.com/jonathan/advert-optimiser/internal/prompts"
	"github.com/jonathan/advert-optimiser/internal/types"
)

// LLMStructurer is a Structurer backed by an LLM client.
// Decoding is pinned to temperature 0 so a fixed input gives a reproducible record.
type LLMStructurer struct {
	client llm.Client
	tier   llm.ModelTier
}

// NewLLMStructurer creates a structurer on the standard tier
func NewLLMStructurer(client llm.Client) *LLMStructurer {
	return &LLMStructurer{client: client, tier: llm.TierStandard}
}

// Structure asks the model to fill template from text and returns the raw JSON payload
func (s *LLMStructurer) Structure(ctx context.Context, text string, template types.Record) (string, error) {
	prompt, err := buildStructuringPrompt(text, template)
	if err != nil {
		return "", err
	}

	return s.client.GenerateJSON(ctx, prompt, s.tier,
		llm.WithTemperature(0),
		llm.WithSystemPrompt(prompts.System(prompts.StructuringFile)))
}

func buildStructuringPrompt(text string, template types.Record) (string, error) {
	tmpl, err := types.MarshalRecord(template)
	if err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}

	return prompts.Render(prompts.StructuringFile, "extract-advert", map[string]string{
		"Template":   string(tmpl),
		"FieldGuide": fieldGuide(),
		"Text":       text,
	})
}

// fieldGuide lists every field with its kind and hint, one per line
func fieldGuide() string {
	var sb strings.Builder
	for _, f := range types.Schema() {
		fmt.Fprintf(&sb, "- %s (%s): %s", f.Name, f.Label(), f.Kind)
		if f.Hint != "" {
			fmt.Fprintf(&sb, ", %s", f.Hint)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
