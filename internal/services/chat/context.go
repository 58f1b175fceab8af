// File: internal/services/chat/context.go
package chat

import (
	"strings"
	"unicode/utf8"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/services/ai"
)

// ContextHelper turns stored history into backend conversation turns and
// normalizes user input.
type ContextHelper struct {
	config *Config
	logger Logger
}

func NewContextHelper(config *Config, logger Logger) *ContextHelper {
	return &ContextHelper{
		config: config,
		logger: logger,
	}
}

// BuildConversation maps the session history to backend turns, oldest first.
// Messages the client marked as failed never reach the backend.
func (ch *ContextHelper) BuildConversation(history []domain.Message) []ai.Turn {
	turns := make([]ai.Turn, 0, len(history))
	skipped := 0
	for _, msg := range history {
		if msg.Status == domain.StatusError {
			skipped++
			continue
		}
		role := ai.RoleUser
		if msg.Role == domain.RoleAssistant {
			role = ai.RoleAssistant
		}
		turns = append(turns, ai.Turn{Role: role, Content: msg.Content})
	}
	if skipped > 0 {
		ch.logger.Debug("skipped failed messages in history", "skipped", skipped, "kept", len(turns))
	}
	return turns
}

// NormalizeContent trims the message and enforces the length limit.
func (ch *ContextHelper) NormalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", NewValidationError("send_message", "message content cannot be empty")
	}
	if utf8.RuneCountInString(content) > ch.config.MaxContentLength {
		return "", NewValidationError("send_message", "message content is too long")
	}
	return content, nil
}

// NormalizeTitle trims the title and enforces 1..MaxTitleLength runes.
func (ch *ContextHelper) NormalizeTitle(operation, title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", NewValidationError(operation, "title cannot be empty")
	}
	if utf8.RuneCountInString(title) > ch.config.MaxTitleLength {
		return "", NewValidationError(operation, "title must be 100 characters or less")
	}
	return title, nil
}

// TruncateText safely truncates a UTF-8 string to maxLen runes.
func (ch *ContextHelper) TruncateText(input string, maxLen int) string {
	if input == "" || maxLen <= 0 {
		return ""
	}
	if utf8.RuneCountInString(input) <= maxLen {
		return input
	}

	var b strings.Builder
	count := 0
	for _, r := range input {
		if count >= maxLen {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}
