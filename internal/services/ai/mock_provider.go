// File: internal/services/ai/mock_provider.go
package ai

import (
	"context"
	"fmt"
	"strings"
)

// MockProvider answers deterministically without any network access. It backs
// local development and tests.
type MockProvider struct{}

func NewMockProvider() *MockProvider { return &MockProvider{} }

func (p *MockProvider) Name() string { return ProviderMock }

func (p *MockProvider) GenerateReply(ctx context.Context, conversation []Turn, persona string) (string, error) {
	if err := ValidateConversation(conversation); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	latest := conversation[len(conversation)-1].Content
	return fmt.Sprintf("Thanks for sharing. Let's look at %q together. What would an ideal outcome look like for you?", latest), nil
}

func (p *MockProvider) GenerateTitle(ctx context.Context, firstMessage string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	words := strings.Fields(firstMessage)
	if len(words) > 5 {
		words = words[:5]
	}
	if len(words) == 0 {
		return "", &AIError{Type: ErrTypeProvider, Operation: "title", Message: "empty message"}
	}
	return strings.Join(words, " "), nil
}

func (p *MockProvider) HealthCheck(ctx context.Context) error { return nil }
