// File: internal/services/ai_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/iyunix/go-counselor/internal/metrics"
	"github.com/iyunix/go-counselor/internal/services/ai"
)

// FallbackReply is stored as the assistant message whenever the backend cannot answer.
const FallbackReply = "I apologize, but I'm having trouble connecting to my knowledge base right now. " +
	"Please try again in a moment, or feel free to rephrase your question. " +
	"In the meantime, I'd encourage you to think about what specific aspects of your career you'd like to explore or improve."

// FallbackTitle is used when neither the backend nor the first message yields a title.
const FallbackTitle = "Career Discussion"

const (
	maxTitleRunes      = 100
	fallbackTitleWords = 4
	defaultAITimeout   = 30 * time.Second
)

// AIService puts a deadline and a fallback policy around an ai.Provider.
type AIService struct {
	provider ai.Provider
	persona  string
	timeout  time.Duration
	logger   Logger
}

func NewAIService(provider ai.Provider, timeout time.Duration, logger Logger) (*AIService, error) {
	if provider == nil {
		return nil, errors.New("ai provider cannot be nil")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}
	if timeout <= 0 {
		timeout = defaultAITimeout
	}
	return &AIService{
		provider: provider,
		persona:  ai.CounselorPersona,
		timeout:  timeout,
		logger:   logger,
	}, nil
}

func (s *AIService) ProviderName() string {
	return s.provider.Name()
}

// Reply returns the counselor's answer to the last turn. Backend failures,
// timeouts and empty answers yield FallbackReply with a nil error; only a
// malformed conversation is reported as an error.
func (s *AIService) Reply(ctx context.Context, conversation []ai.Turn) (string, error) {
	if err := ai.ValidateConversation(conversation); err != nil {
		return "", err
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	text, err := s.provider.GenerateReply(callCtx, conversation, s.persona)
	s.observe(callCtx, "reply", start, err)

	if err != nil {
		if errors.Is(err, ai.ErrInvalidConversationState) {
			return "", err
		}
		s.logger.Error("AI reply failed, using fallback",
			"provider", s.provider.Name(),
			"turns", len(conversation),
			"error", err)
		metrics.AIFallbacksTotal.WithLabelValues("reply").Inc()
		return FallbackReply, nil
	}

	text = strings.TrimSpace(text)
	if text == "" {
		s.logger.Warn("AI reply was empty, using fallback", "provider", s.provider.Name())
		metrics.AIFallbacksTotal.WithLabelValues("reply").Inc()
		return FallbackReply, nil
	}
	return text, nil
}

// Title derives a short session title from the first user message. It never fails.
func (s *AIService) Title(ctx context.Context, firstMessage string) string {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	raw, err := s.provider.GenerateTitle(callCtx, firstMessage)
	s.observe(callCtx, "title", start, err)

	if err == nil {
		if title := CleanTitle(raw); title != "" {
			return title
		}
	} else {
		s.logger.Warn("AI title failed, deriving from message", "provider", s.provider.Name(), "error", err)
	}

	metrics.AIFallbacksTotal.WithLabelValues("title").Inc()
	return TitleFromMessage(firstMessage)
}

func (s *AIService) observe(ctx context.Context, operation string, start time.Time, err error) {
	outcome := "ok"
	switch {
	case err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
		outcome = "timeout"
	case err != nil:
		outcome = "error"
	}
	metrics.AIRequestsTotal.WithLabelValues(s.provider.Name(), operation, outcome).Inc()
	metrics.AIRequestDuration.WithLabelValues(s.provider.Name(), operation).Observe(time.Since(start).Seconds())
}

// CleanTitle keeps the first line of a generated title without surrounding quotes
// and caps it at the maximum title length.
func CleanTitle(raw string) string {
	title := strings.TrimSpace(raw)
	if i := strings.IndexAny(title, "\r\n"); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(strings.TrimPrefix(title, "Title:"))
	title = strings.TrimSpace(strings.Trim(title, "\"'`*"))
	return truncateRunes(title, maxTitleRunes)
}

// TitleFromMessage is the local title fallback: the first words of the message.
func TitleFromMessage(message string) string {
	words := strings.Fields(message)
	if len(words) == 0 {
		return FallbackTitle
	}
	if len(words) <= fallbackTitleWords {
		return truncateRunes(strings.Join(words, " "), maxTitleRunes)
	}
	return truncateRunes(strings.Join(words[:fallbackTitleWords], " "), maxTitleRunes-3) + "..."
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:max]))
}
