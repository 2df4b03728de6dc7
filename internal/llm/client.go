// Package llm wraps the hosted language models used for advert structuring,
// rewriting and interview question generation.
package llm

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrMissingAPIKey is returned when a provider is created without credentials
	ErrMissingAPIKey = errors.New("API key is required")
	// ErrEmptyResponse is returned when the model answers without any text
	ErrEmptyResponse = errors.New("model returned no text")
)

// Client is the narrow surface the advert services need from a model provider.
// Both calls return the raw text; callers parse it.
type Client interface {
	GenerateContent(ctx context.Context, prompt string, tier ModelTier, opts ...GenerateOption) (string, error)
	// GenerateJSON asks the provider for a JSON object response
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier, opts ...GenerateOption) (string, error)
	GetModel(tier ModelTier) string
	Close() error
}

// NewClient builds the client for config.Provider; an empty provider means Gemini
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	case ProviderGemini, "":
		return NewGeminiClient(ctx, config, apiKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// BlockedError reports a prompt or answer withheld by the provider's safety filter
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("response blocked by provider: %s", e.Reason)
}
