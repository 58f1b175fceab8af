// File: internal/services/ai/openai_provider.go
package ai

import (
	"context"
	"errors"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	config *Config
	client *openai.Client
}

func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if config.OpenAIKey == "" {
		return nil, NewConfigError("OPENAI_API_KEY is not set")
	}
	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIBaseURL != "" {
		clientConfig.BaseURL = config.OpenAIBaseURL
	}
	return &OpenAIProvider{
		config: config,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

func (p *OpenAIProvider) Name() string { return ProviderOpenAI }

// GenerateReply sends the persona as a system message followed by the conversation
// with native roles. The final user turn carries the counselor instruction.
func (p *OpenAIProvider) GenerateReply(ctx context.Context, conversation []Turn, persona string) (string, error) {
	if err := ValidateConversation(conversation); err != nil {
		return "", err
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(conversation)+1)
	if persona != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: persona,
		})
	}
	last := len(conversation) - 1
	for i, turn := range conversation {
		content := turn.Content
		role := openai.ChatMessageRoleUser
		if turn.Role == RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		if i == last {
			content = content + "\n\n" + ReplyInstruction
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: content})
	}

	return p.complete(ctx, "reply", openai.ChatCompletionRequest{
		Model:            p.config.OpenAIModel,
		Messages:         messages,
		MaxTokens:        p.config.MaxTokens,
		Temperature:      p.config.Temperature,
		PresencePenalty:  p.config.PresencePenalty,
		FrequencyPenalty: p.config.FrequencyPenalty,
	})
}

func (p *OpenAIProvider) GenerateTitle(ctx context.Context, firstMessage string) (string, error) {
	return p.complete(ctx, "title", openai.ChatCompletionRequest{
		Model: p.config.OpenAIModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: titleInstruction},
			{Role: openai.ChatMessageRoleUser, Content: firstMessage},
		},
		MaxTokens:   p.config.TitleMaxTokens,
		Temperature: p.config.TitleTemperature,
	})
}

func (p *OpenAIProvider) HealthCheck(ctx context.Context) error {
	_, err := p.client.ListModels(ctx)
	if err != nil {
		return p.classify("health", err)
	}
	return nil
}

func (p *OpenAIProvider) complete(ctx context.Context, operation string, req openai.ChatCompletionRequest) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", p.classify(operation, err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", &AIError{
			Type:      ErrTypeProvider,
			Operation: operation,
			Model:     req.Model,
			Message:   "empty completion response",
		}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (p *OpenAIProvider) classify(operation string, err error) *AIError {
	aiErr := &AIError{
		Type:      ErrTypeNetwork,
		Operation: operation,
		Model:     p.config.OpenAIModel,
		Message:   "request failed",
		Cause:     err,
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		aiErr.Code = apiErr.HTTPStatusCode
		aiErr.Message = apiErr.Message
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized:
			aiErr.Type = ErrTypeConfig
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests && apiErr.Type == "insufficient_quota":
			aiErr.Type = ErrTypeQuota
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			aiErr.Type = ErrTypeRateLimit
		case apiErr.HTTPStatusCode == http.StatusNotFound:
			aiErr.Type = ErrTypeModel
		default:
			aiErr.Type = ErrTypeProvider
		}
	}
	return aiErr
}
