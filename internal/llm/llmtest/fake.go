// Package llmtest provides a scripted llm.Client for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Response is one scripted answer of a FakeClient.
type Response struct {
	Text  string
	Err   error
	Delay time.Duration
}

// Reply scripts a successful answer.
func Reply(text string) Response {
	return Response{Text: text}
}

// Fail scripts a failed call.
func Fail(err error) Response {
	return Response{Err: err}
}

// FakeClient returns scripted responses in order and records every prompt.
// When Handler is set it is used instead of the script.
type FakeClient struct {
	Handler func(ctx context.Context, prompt string) (string, error)

	mu        sync.Mutex
	responses []Response
	prompts   []string
	closed    bool
}

// NewFakeClient creates a client that answers with responses in order.
func NewFakeClient(responses ...Response) *FakeClient {
	return &FakeClient{responses: responses}
}

// NewFuncClient creates a client that delegates every call to handler.
func NewFuncClient(handler func(ctx context.Context, prompt string) (string, error)) *FakeClient {
	return &FakeClient{Handler: handler}
}

// Chat implements llm.Client.
func (f *FakeClient) Chat(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	handler := f.Handler
	var resp Response
	var scripted bool
	if handler == nil && len(f.responses) > 0 {
		resp, f.responses = f.responses[0], f.responses[1:]
		scripted = true
	}
	f.mu.Unlock()

	if handler != nil {
		return handler(ctx, prompt)
	}
	if !scripted {
		return "", fmt.Errorf("llmtest: no scripted response for call %d", f.Calls())
	}

	if resp.Delay > 0 {
		select {
		case <-time.After(resp.Delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return resp.Text, resp.Err
}

// Close implements llm.Client.
func (f *FakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Prompts returns the prompts received so far.
func (f *FakeClient) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

// Calls returns the number of Chat calls received.
func (f *FakeClient) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

// Closed reports whether Close was called.
func (f *FakeClient) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
