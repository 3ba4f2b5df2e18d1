// Package llm wraps a provider with the request policy shared by every
// agent: a minimum-interval rate gate and a uniform error kind.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/deepscout/deepscout/logger"
	"github.com/deepscout/deepscout/provider"
)

// ErrProvider marks failures coming from the LLM collaborator. Callers can
// match it with errors.Is.
var ErrProvider = errors.New("llm provider error")

// Client is an LLM client bound to one provider and model. All requests
// issued through the same Client share a minimum-interval rate gate.
type Client struct {
	provider    provider.Provider
	minInterval time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient creates a client around p. minInterval of zero disables the
// rate gate.
func NewClient(p provider.Provider, minInterval time.Duration) *Client {
	return &Client{provider: p, minInterval: minInterval}
}

// gate enforces the minimum interval between requests. It holds the lock
// while sleeping so that concurrent callers queue up rather than stampede.
func (c *Client) gate(ctx context.Context) error {
	if c.minInterval <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	wait := c.minInterval - time.Since(c.lastCall)
	if wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	c.lastCall = time.Now()
	return nil
}

// Generate requests a plain text completion. It fails explicitly when the
// provider returns empty content; callers never see a silent empty success.
func (c *Client) Generate(ctx context.Context, messages []provider.Message) (string, error) {
	if err := c.gate(ctx); err != nil {
		return "", err
	}
	resp, err := c.provider.Chat(ctx, &provider.Request{Messages: messages})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("%w: empty response from API", ErrProvider)
	}
	return resp.Content, nil
}

// GenerateWithTools requests a completion with tool definitions attached
// and returns the full response so the caller can inspect tool calls.
func (c *Client) GenerateWithTools(ctx context.Context, messages []provider.Message, tools []provider.ToolDef) (*provider.Response, error) {
	if err := c.gate(ctx); err != nil {
		return nil, err
	}
	resp, err := c.provider.Chat(ctx, &provider.Request{Messages: messages, Tools: tools})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	return resp, nil
}

// Summarize implements the memory curator hook: compress the filtered
// prefix into terse bullets. Exposed as a method so a Client can be handed
// to a memory store directly.
func (c *Client) Summarize(ctx context.Context, messages []provider.Message) (string, error) {
	text, err := c.Generate(ctx, messages)
	if err != nil {
		logger.Warn("curator call failed", "err", err)
		return "", err
	}
	return text, nil
}
