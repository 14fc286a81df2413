package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/spendfolio/spendfolio/internal/common"
)

// NewClient creates a generation-API client based on the provided
// configuration. A missing credential fails here, at construction time,
// rather than on the first call.
func NewClient(ctx context.Context, cfg Config) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "gemini", "":
		return newGeminiClient(ctx, cfg)
	case "openai":
		return newOpenAIClient(cfg)
	case "anthropic":
		return newAnthropicClient(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported generation provider %q", common.ErrInvalidConfig, cfg.Provider)
	}
}
