package llm

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, ProviderOpenAI, config.Provider)
	assert.Equal(t, "gpt-4o-mini", config.Model)
	assert.Equal(t, DefaultTimeout, config.Timeout)
	assert.InDelta(t, 0.1, config.Temperature, 1e-9)
}

func TestDefaultModel(t *testing.T) {
	assert.Equal(t, "gemini-2.5-flash", DefaultModel(ProviderGemini))
	assert.Equal(t, "glm-4-flash", DefaultModel(ProviderZhipu))
	assert.Equal(t, "gpt-4o-mini", DefaultModel(ProviderOpenAI))
}

func TestParseProvider(t *testing.T) {
	tests := []struct {
		input   string
		want    Provider
		wantErr bool
	}{
		{"openai", ProviderOpenAI, false},
		{" Gemini ", ProviderGemini, false},
		{"ZHIPU", ProviderZhipu, false},
		{"", ProviderOpenAI, false},
		{"anthropic", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseProvider(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWithModel(t *testing.T) {
	original := DefaultConfig()
	updated := original.WithModel("gpt-4o")

	assert.Equal(t, "gpt-4o", updated.Model)
	assert.Equal(t, "gpt-4o-mini", original.Model, "original should not change")
}

func TestConfigValidate(t *testing.T) {
	valid := &Config{Provider: ProviderOpenAI, APIKey: "key", Temperature: 0.2, Timeout: time.Second}
	assert.NoError(t, valid.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing key", func(c *Config) { c.APIKey = "" }},
		{"bad provider", func(c *Config) { c.Provider = "other" }},
		{"temperature too high", func(c *Config) { c.Temperature = 3 }},
		{"negative timeout", func(c *Config) { c.Timeout = -time.Second }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := *valid
			tt.mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestConfigModelFallback(t *testing.T) {
	c := &Config{Provider: ProviderZhipu}
	assert.Equal(t, "glm-4-flash", c.model())
	c.Model = "glm-4-plus"
	assert.Equal(t, "glm-4-plus", c.model())
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	for _, p := range []Provider{ProviderOpenAI, ProviderZhipu} {
		t.Run(string(p), func(t *testing.T) {
			_, err := NewClient(t.Context(), &Config{Provider: p})
			assert.Error(t, err)
		})
	}

	_, err := NewClient(t.Context(), &Config{Provider: "other", APIKey: "k"})
	assert.Error(t, err)
}

func TestNewClient_OpenAI(t *testing.T) {
	client, err := NewClient(t.Context(), &Config{Provider: ProviderOpenAI, APIKey: "k", BaseURL: "http://127.0.0.1:1/v1/"})
	assert.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, client)
	assert.NoError(t, client.Close())
}
