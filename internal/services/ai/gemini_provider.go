// File: internal/services/ai/gemini_provider.go
package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// textGenerator produces text for a single flat prompt.
type textGenerator interface {
	Generate(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error)
}

type GeminiProvider struct {
	config    *Config
	generator textGenerator
	closeFn   func() error
}

func NewGeminiProvider(ctx context.Context, config *Config) (*GeminiProvider, error) {
	if config.GeminiKey == "" {
		return nil, NewConfigError("GOOGLE_AI_API_KEY is not set")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(config.GeminiKey))
	if err != nil {
		return nil, &AIError{Type: ErrTypeConfig, Operation: "init", Message: "failed to create gemini client", Cause: err}
	}
	return &GeminiProvider{
		config:    config,
		generator: &genaiGenerator{client: client, model: config.GeminiModel},
		closeFn:   client.Close,
	}, nil
}

func newGeminiProviderWithGenerator(config *Config, gen textGenerator) *GeminiProvider {
	return &GeminiProvider{config: config, generator: gen}
}

func (p *GeminiProvider) Name() string { return ProviderGemini }

// GenerateReply flattens the conversation into one labelled prompt.
func (p *GeminiProvider) GenerateReply(ctx context.Context, conversation []Turn, persona string) (string, error) {
	if err := ValidateConversation(conversation); err != nil {
		return "", err
	}
	text, err := p.generator.Generate(ctx, BuildPrompt(persona, conversation), p.config.Temperature, p.config.MaxTokens)
	if err != nil {
		return "", p.wrap("reply", err)
	}
	return text, nil
}

func (p *GeminiProvider) GenerateTitle(ctx context.Context, firstMessage string) (string, error) {
	text, err := p.generator.Generate(ctx, TitlePrompt(firstMessage), p.config.TitleTemperature, p.config.TitleMaxTokens)
	if err != nil {
		return "", p.wrap("title", err)
	}
	return text, nil
}

func (p *GeminiProvider) Close() error {
	if p.closeFn == nil {
		return nil
	}
	return p.closeFn()
}

func (p *GeminiProvider) wrap(operation string, err error) error {
	if _, ok := err.(*AIError); ok {
		return err
	}
	return &AIError{
		Type:      ErrTypeProvider,
		Operation: operation,
		Model:     p.config.GeminiModel,
		Message:   "gemini request failed",
		Cause:     err,
	}
}

type genaiGenerator struct {
	client *genai.Client
	model  string
}

func (g *genaiGenerator) Generate(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(temperature)
	model.SetMaxOutputTokens(int32(maxTokens))

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		// first candidate only
		break
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", &AIError{
			Type:      ErrTypeProvider,
			Operation: "generate",
			Model:     g.model,
			Message:   fmt.Sprintf("empty response from %s", g.model),
		}
	}
	return out, nil
}
