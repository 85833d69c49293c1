package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/keshon/ilpo/internal/config"
)

// ErrNotConfigured is returned when the selected provider lacks credentials.
var ErrNotConfigured = errors.New("ai provider not configured")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Provider interface {
	Generate(ctx context.Context, messages []Message) (string, error)
}

// NewProvider picks the provider named by cfg.AIProvider.
func NewProvider(cfg *config.Config) (Provider, error) {
	switch cfg.AIProvider {
	case "pollinations":
		return NewPollinationsProvider(), nil
	case "openai", "gemini", "":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("%w: GEMINI_API_KEY is empty", ErrNotConfigured)
		}
		return NewOpenAIProvider(cfg.GeminiAPIKey, cfg.AIBaseURL, cfg.AIModel), nil
	default:
		return nil, fmt.Errorf("unsupported AI_PROVIDER: %s", cfg.AIProvider)
	}
}
