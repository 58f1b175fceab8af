// File: internal/services/ai/factory.go
package ai

import (
	"context"
	"strings"
)

// NewProvider builds the backend named by cfg.Provider.
func NewProvider(ctx context.Context, cfg *Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case ProviderGemini, "":
		p, err := NewGeminiProvider(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderOpenAI:
		p, err := NewOpenAIProvider(cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case ProviderMock:
		return NewMockProvider(), nil
	default:
		return nil, NewConfigError("unsupported AI provider: " + cfg.Provider)
	}
}
