package interview

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonathan/advert-optimiser/internal/llm"
	"github.com/jonathan/advert-optimiser/internal/prompts"
)

// questionTemperature favours varied wording between runs
const questionTemperature float32 = 0.7

// Generator drafts interview questions from collected answers
type Generator interface {
	Generate(ctx context.Context, answers Answers) ([]string, error)
}

// LLMGenerator is a Generator backed by an LLM client
type LLMGenerator struct {
	client llm.Client
}

// NewLLMGenerator creates a generator on the advanced tier
func NewLLMGenerator(client llm.Client) *LLMGenerator {
	return &LLMGenerator{client: client}
}

// Generate returns the non-blank lines of the model's answer
func (g *LLMGenerator) Generate(ctx context.Context, answers Answers) ([]string, error) {
	prompt, err := prompts.Render(prompts.InterviewFile, "generate-questions", answers.templateData())
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	text, err := g.client.GenerateContent(ctx, prompt, llm.TierAdvanced,
		llm.WithTemperature(questionTemperature),
		llm.WithSystemPrompt(prompts.System(prompts.InterviewFile)))
	if err != nil {
		return nil, fmt.Errorf("failed to generate questions: %w", err)
	}

	lines := splitLines(text)
	if len(lines) == 0 {
		return nil, fmt.Errorf("model returned no questions")
	}
	return lines, nil
}

// Questions runs g and turns a failure into a single apology line
func Questions(ctx context.Context, g Generator, answers Answers) []string {
	questions, err := g.Generate(ctx, answers)
	if err != nil {
		return []string{fmt.Sprintf("Sorry, I couldn't generate questions: %v", err)}
	}
	return questions
}

func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
