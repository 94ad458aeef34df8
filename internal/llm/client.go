package llm

import (
	"context"
	"fmt"
)

// Client is an abstraction over LLM providers.
// Implementations must be safe for concurrent use.
type Client interface {
	// Chat sends a single user prompt and returns the model's text answer
	Chat(ctx context.Context, prompt string) (string, error)
	// Close releases any resources held by the client
	Close() error
}

// NewClient creates a provider client based on configuration
func NewClient(ctx context.Context, config *Config) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config)
	case ProviderZhipu:
		return NewZhipuClient(config)
	case ProviderOpenAI, "":
		return NewOpenAIClient(config)
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", config.Provider)
	}
}
