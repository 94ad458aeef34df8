package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// GatewayError represents a failed call to the LLM provider: transport
// failure, timeout, provider error or an empty answer.
type GatewayError struct {
	Provider Provider
	Message  string
	TimedOut bool
	Cause    error
}

func (e *GatewayError) Error() string {
	prefix := "LLM call failed"
	if e.Provider != "" {
		prefix = fmt.Sprintf("LLM call to %s failed", e.Provider)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}

// Timeout reports whether the call was abandoned because its deadline passed.
func (e *GatewayError) Timeout() bool {
	return e.TimedOut || errors.Is(e.Cause, context.DeadlineExceeded)
}

// Gateway wraps a provider Client with a per-call timeout, error
// normalisation and logging. Each prompt is sent exactly once.
type Gateway struct {
	client   Client
	provider Provider
	timeout  time.Duration
	logger   *slog.Logger
}

// NewGateway wraps client. A nil config uses DefaultConfig and a nil logger uses slog.Default.
func NewGateway(client Client, config *Config, logger *slog.Logger) *Gateway {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		client:   client,
		provider: config.Provider,
		timeout:  config.Timeout,
		logger:   logger,
	}
}

// Open builds the provider client described by config and wraps it in a Gateway.
func Open(ctx context.Context, config *Config, logger *slog.Logger) (*Gateway, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	client, err := NewClient(ctx, config)
	if err != nil {
		return nil, &GatewayError{Provider: config.Provider, Message: "failed to create client", Cause: err}
	}
	return NewGateway(client, config, logger), nil
}

// Chat sends prompt to the provider. Every failure is returned as *GatewayError.
func (g *Gateway) Chat(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", &GatewayError{Provider: g.provider, Message: "empty prompt"}
	}

	callCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()
	answer, err := g.client.Chat(callCtx, prompt)
	elapsed := time.Since(start)

	if err != nil {
		gwErr := g.wrap(callCtx, err)
		g.logger.Warn("llm call failed",
			"provider", g.provider,
			"duration", elapsed,
			"timed_out", gwErr.Timeout(),
			"error", err)
		return "", gwErr
	}
	if strings.TrimSpace(answer) == "" {
		g.logger.Warn("llm returned empty answer", "provider", g.provider, "duration", elapsed)
		return "", &GatewayError{Provider: g.provider, Message: "empty response"}
	}

	g.logger.Debug("llm call completed",
		"provider", g.provider,
		"duration", elapsed,
		"prompt_chars", len(prompt),
		"answer_chars", len(answer))
	return answer, nil
}

// Close releases the underlying client.
func (g *Gateway) Close() error {
	return g.client.Close()
}

func (g *Gateway) wrap(callCtx context.Context, err error) *GatewayError {
	var gwErr *GatewayError
	if errors.As(err, &gwErr) {
		if gwErr.Provider == "" {
			gwErr.Provider = g.provider
		}
		return gwErr
	}

	timedOut := errors.Is(callCtx.Err(), context.DeadlineExceeded)
	msg := "provider request failed"
	switch {
	case timedOut:
		msg = "request timed out"
	case errors.Is(err, context.Canceled):
		msg = "request canceled"
	}
	return &GatewayError{Provider: g.provider, Message: msg, TimedOut: timedOut, Cause: err}
}
