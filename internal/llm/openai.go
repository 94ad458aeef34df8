package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements Client for OpenAI-compatible chat completion APIs
// (OpenAI, DashScope, DeepSeek and other compatible gateways).
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float64
}

// NewOpenAIClient creates a new OpenAI-compatible client
func NewOpenAIClient(config *Config) (*OpenAIClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}

	return &OpenAIClient{
		client:      openai.NewClient(opts...),
		model:       config.model(),
		temperature: config.Temperature,
	}, nil
}

// Chat sends the prompt as a single user message
func (c *OpenAIClient) Chat(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:       openai.F(openai.ChatModel(c.model)),
		Temperature: openai.F(c.temperature),
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return completion.Choices[0].Message.Content, nil
}

// Close is a no-op; the HTTP client holds no resources that need releasing.
func (c *OpenAIClient) Close() error {
	return nil
}
