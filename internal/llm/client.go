// Package llm wraps the Gemini, Anthropic and OpenAI chat APIs behind one
// small interface used for bullet suggestions and resume extraction.
package llm

import "context"

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent returns free-form text for prompt
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON returns a JSON document for prompt, stripped of any
	// markdown fences or commentary the model added
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the provider model name used for a tier
	GetModel(tier ModelTier) string
	Close() error
}

// NewClient creates the client for config.Provider. A nil config uses Gemini defaults.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderAnthropic:
		return NewAnthropicClient(config, apiKey)
	case ProviderOpenAI:
		return NewOpenAIClient(config, apiKey)
	default:
		return NewGeminiClient(ctx, config, apiKey)
	}
}
