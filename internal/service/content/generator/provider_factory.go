package generator

import (
	"fmt"

	llmprovider "github.com/haowjy/meridian-llm-go"
	"github.com/haowjy/meridian-llm-go/providers/anthropic"
	"github.com/haowjy/meridian-llm-go/providers/lorem"

	"carelearn/internal/config"
)

// NewProvider returns the LLM provider named by the configuration.
//
// Supported providers:
//   - "anthropic" - Claude models via Anthropic API
//   - "lorem" - Mock provider for local development (no API key required);
//     NewGenerator wraps its prose into a sample document
func NewProvider(cfg *config.Config) (llmprovider.Provider, error) {
	switch name := cfg.GenerationProvider(); name {
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		provider, err := anthropic.NewProvider(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Anthropic provider: %w", err)
		}
		return provider, nil

	case "lorem":
		return lorem.NewProvider(), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", name)
	}
}
