// File: internal/services/ai/config.go
package ai

import (
	"fmt"
	"time"
)

// Provider names accepted by NewProvider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

type Config struct {
	Provider string

	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	GeminiKey   string
	GeminiModel string

	// Reply generation
	Temperature      float32
	MaxTokens        int
	PresencePenalty  float32
	FrequencyPenalty float32

	// Title generation
	TitleTemperature float32
	TitleMaxTokens   int

	// Timeout bounds a single backend call.
	Timeout time.Duration
}

func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.GeminiKey == "" {
			return fmt.Errorf("GOOGLE_AI_API_KEY is required for the gemini provider")
		}
		if c.GeminiModel == "" {
			return fmt.Errorf("gemini model is required")
		}
	case ProviderOpenAI:
		if c.OpenAIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the openai provider")
		}
		if c.OpenAIModel == "" {
			return fmt.Errorf("openai model is required")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unsupported AI provider %q", c.Provider)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxTokens <= 0 || c.TitleMaxTokens <= 0 {
		return fmt.Errorf("token limits must be positive")
	}
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Provider:         ProviderGemini,
		OpenAIModel:      "gpt-3.5-turbo",
		GeminiModel:      "gemini-1.5-flash",
		Temperature:      0.7,
		MaxTokens:        500,
		PresencePenalty:  0.1,
		FrequencyPenalty: 0.1,
		TitleTemperature: 0.5,
		TitleMaxTokens:   20,
		Timeout:          30 * time.Second,
	}
}
