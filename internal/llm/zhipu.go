package llm

import (
	"context"
	"fmt"

	"github.com/yankeguo/zhipu"
)

// ZhipuClient implements Client for Zhipu GLM models
type ZhipuClient struct {
	client      *zhipu.Client
	model       string
	temperature float64
}

// NewZhipuClient creates a new Zhipu client
func NewZhipuClient(config *Config) (*ZhipuClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	client, err := zhipu.NewClient(zhipu.WithAPIKey(config.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Zhipu client: %w", err)
	}

	return &ZhipuClient{
		client:      client,
		model:       config.model(),
		temperature: config.Temperature,
	}, nil
}

// Chat sends the prompt as a single user message
func (c *ZhipuClient) Chat(ctx context.Context, prompt string) (string, error) {
	req := c.client.ChatCompletion(c.model).AddMessage(zhipu.ChatCompletionMessage{
		Role:    zhipu.RoleUser,
		Content: prompt,
	})
	if c.temperature > 0 {
		req = req.SetTemperature(c.temperature)
	}

	completion, err := req.Do(ctx)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("no choices in response")
	}
	return completion.Choices[0].Message.Content, nil
}

// Close is a no-op for the Zhipu client.
func (c *ZhipuClient) Close() error {
	return nil
}
