package generation

import (
	"context"
	"fmt"
	"os"
	"time"

	"iconograph/internal/config"
)

// NewClientFromConfig builds a TextClient for the configured provider.
func NewClientFromConfig(ctx context.Context, cfg config.LLMConfig, timeout time.Duration) (TextClient, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("no API key found in config or GEMINI_API_KEY")
	}

	switch cfg.Provider {
	case "gemini", "":
		gc := DefaultGeminiConfig(apiKey)
		if cfg.Model != "" {
			gc.Model = cfg.Model
		}
		if timeout > 0 {
			gc.Timeout = timeout
		}
		return NewGeminiClientWithConfig(gc), nil

	case "genai":
		return NewGenAIClient(ctx, apiKey, cfg.Model)

	default:
		return nil, fmt.Errorf("unknown provider: %s (valid: gemini, genai)", cfg.Provider)
	}
}
