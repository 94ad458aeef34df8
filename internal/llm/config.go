// Package llm provides the gateway to chat-completion providers.
// Every workflow stage sends one prompt and receives one text answer; the
// provider behind the Client interface is a configuration detail.
package llm

import (
	"fmt"
	"strings"
	"time"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderOpenAI is any OpenAI-compatible chat completion endpoint
	ProviderOpenAI Provider = "openai"
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderZhipu is the Zhipu GLM provider
	ProviderZhipu Provider = "zhipu"
)

const (
	// DefaultTimeout bounds a single chat call.
	DefaultTimeout = 2 * time.Minute
	// DefaultTemperature keeps answers close to deterministic.
	DefaultTemperature = 0.1
)

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float64
	Timeout     time.Duration
}

// DefaultConfig returns the default configuration (OpenAI-compatible)
func DefaultConfig() *Config {
	return &Config{
		Provider:    ProviderOpenAI,
		Model:       DefaultModel(ProviderOpenAI),
		Temperature: DefaultTemperature,
		Timeout:     DefaultTimeout,
	}
}

// DefaultModel returns the model used when none is configured for a provider.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderGemini:
		return "gemini-2.5-flash"
	case ProviderZhipu:
		return "glm-4-flash"
	default:
		return "gpt-4o-mini"
	}
}

// ParseProvider converts a provider name into a Provider.
func ParseProvider(name string) (Provider, error) {
	switch p := Provider(strings.ToLower(strings.TrimSpace(name))); p {
	case ProviderOpenAI, ProviderGemini, ProviderZhipu:
		return p, nil
	case "":
		return ProviderOpenAI, nil
	default:
		return "", fmt.Errorf("unsupported LLM provider %q", name)
	}
}

// WithModel returns a copy of the config using the given model
func (c *Config) WithModel(model string) *Config {
	copied := *c
	copied.Model = model
	return &copied
}

// Validate checks that the configuration can be used to build a client.
func (c *Config) Validate() error {
	if _, err := ParseProvider(string(c.Provider)); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("API key is required for provider %s", c.Provider)
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", c.Temperature)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}
	return nil
}

// model returns the configured model or the provider default.
func (c *Config) model() string {
	if c.Model != "" {
		return c.Model
	}
	return DefaultModel(c.Provider)
}
