// Package llm provides generation-API clients and the lenient parsing of
// their output into domain structures.
package llm

import (
	"context"
	"time"
)

// Client defines the interface for generation-API providers. A call is a
// single prompt in, raw text out; no conversation state is retained.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds configuration for a generation-API client.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	MaxRetries  int
	RetryDelay  time.Duration
	Temperature float64
	MaxTokens   int
}
