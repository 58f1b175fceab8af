// File: internal/services/chat_service.go
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/iyunix/go-counselor/internal/domain"
	"github.com/iyunix/go-counselor/internal/metrics"
	"github.com/iyunix/go-counselor/internal/repository/chat"
	"github.com/iyunix/go-counselor/internal/repository/message"
	chatservice "github.com/iyunix/go-counselor/internal/services/chat"
)

type ChatService struct {
	config      *chatservice.Config
	chatRepo    chat.ChatRepository
	messageRepo message.MessageRepository
	aiService   *AIService
	helper      *chatservice.ContextHelper
	logger      Logger
	now         func() time.Time
}

var _ chatservice.Service = (*ChatService)(nil)

func NewChatService(
	chatRepo chat.ChatRepository,
	messageRepo message.MessageRepository,
	aiService *AIService,
	logger Logger,
) (*ChatService, error) {
	if chatRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "chat repository is required")
	}
	if messageRepo == nil {
		return nil, chatservice.NewValidationError("constructor", "message repository is required")
	}
	if aiService == nil {
		return nil, chatservice.NewValidationError("constructor", "AI service is required")
	}
	if logger == nil {
		logger = &NoOpLogger{}
	}

	config := chatservice.DefaultConfig()
	if err := config.Validate(); err != nil {
		return nil, chatservice.NewValidationError("config", err.Error())
	}

	return &ChatService{
		config:      config,
		chatRepo:    chatRepo,
		messageRepo: messageRepo,
		aiService:   aiService,
		helper:      chatservice.NewContextHelper(config, logger),
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *ChatService) CreateSession(ctx context.Context, in chatservice.CreateSessionInput) (*domain.ChatSession, error) {
	title := domain.DefaultSessionTitle
	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		title = strings.TrimSpace(s.helper.TruncateText(strings.TrimSpace(*in.Title), s.config.MaxTitleLength))
	}

	session := &domain.ChatSession{
		UserID:      blankToNil(in.UserID),
		Title:       title,
		Description: blankToNil(in.Description),
	}
	created, err := s.chatRepo.Create(ctx, session)
	if err != nil {
		s.logger.Error("failed to create chat session", "error", err)
		return nil, chatservice.NewInternalError("create_session", "could not create chat session", err)
	}

	metrics.SessionsCreatedTotal.Inc()
	s.logger.Info("chat session created", "session_id", created.ID, "anonymous", created.UserID == nil)
	return created, nil
}

func (s *ChatService) ListSessions(ctx context.Context, userID *string, limit, offset int) (*chatservice.SessionPage, error) {
	if limit < 1 || limit > s.config.MaxPageSize {
		return nil, chatservice.NewValidationError("list_sessions", "limit must be between 1 and 100")
	}
	if offset < 0 {
		return nil, chatservice.NewValidationError("list_sessions", "offset cannot be negative")
	}
	userID = blankToNil(userID)

	sessions, err := s.chatRepo.FindPage(ctx, userID, limit, offset)
	if err != nil {
		return nil, chatservice.NewInternalError("list_sessions", "could not list chat sessions", err)
	}
	total, err := s.chatRepo.CountByUserID(ctx, userID)
	if err != nil {
		return nil, chatservice.NewInternalError("list_sessions", "could not count chat sessions", err)
	}

	return &chatservice.SessionPage{Sessions: sessions, Total: total, Limit: limit, Offset: offset}, nil
}

func (s *ChatService) GetSession(ctx context.Context, sessionID string) (*chatservice.SessionWithMessages, error) {
	session, err := s.findSession(ctx, "get_session", sessionID)
	if err != nil {
		return nil, err
	}
	history, err := s.messageRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, chatservice.NewInternalError("get_session", "could not load messages", err)
	}
	return &chatservice.SessionWithMessages{Session: session, Messages: history}, nil
}

// SendMessage stores the user message, asks the counselor for a reply and stores
// it. For the first message of a session the title is generated alongside the
// reply and both are awaited before returning. Backend failures never fail the
// send: the reply degrades to FallbackReply and the title to a local heuristic.
func (s *ChatService) SendMessage(ctx context.Context, sessionID, content string, isFirstMessage bool) (*chatservice.Exchange, error) {
	content, err := s.helper.NormalizeContent(content)
	if err != nil {
		return nil, err
	}
	if _, err := s.findSession(ctx, "send_message", sessionID); err != nil {
		return nil, err
	}

	userMsg, err := s.messageRepo.Create(ctx, &domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleUser,
		Content:   content,
		Status:    domain.StatusSent,
		CreatedAt: s.now().Truncate(time.Microsecond),
	})
	if err != nil {
		return nil, chatservice.NewInternalError("send_message", "could not store user message", err)
	}
	metrics.MessagesTotal.WithLabelValues(string(domain.RoleUser)).Inc()

	history, err := s.messageRepo.FindBySessionID(ctx, sessionID)
	if err != nil {
		return nil, chatservice.NewInternalError("send_message", "could not load history", err)
	}
	history = historyThrough(history, userMsg)
	conversation := s.helper.BuildConversation(history)

	var (
		reply string
		title string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var replyErr error
		reply, replyErr = s.aiService.Reply(gctx, conversation)
		return replyErr
	})
	if isFirstMessage {
		g.Go(func() error {
			title = s.aiService.Title(gctx, content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("conversation rejected by AI service", "session_id", sessionID, "error", err)
		return nil, chatservice.NewInternalError("send_message", "conversation history is inconsistent", err)
	}

	assistantAt := s.now().Truncate(time.Microsecond)
	if !assistantAt.After(userMsg.CreatedAt) {
		assistantAt = userMsg.CreatedAt.Add(time.Microsecond)
	}
	assistantMsg, err := s.messageRepo.Create(ctx, &domain.Message{
		SessionID: sessionID,
		Role:      domain.RoleAssistant,
		Content:   reply,
		Status:    domain.StatusSent,
		CreatedAt: assistantAt,
	})
	if err != nil {
		return nil, chatservice.NewInternalError("send_message", "could not store assistant message", err)
	}
	metrics.MessagesTotal.WithLabelValues(string(domain.RoleAssistant)).Inc()

	exchange := &chatservice.Exchange{UserMessage: userMsg, AssistantMessage: assistantMsg}
	if isFirstMessage && title != "" {
		if err := s.chatRepo.UpdateTitle(ctx, sessionID, title); err != nil {
			s.logger.Warn("failed to store generated title", "session_id", sessionID, "error", err)
		} else {
			exchange.Title = title
		}
	}
	if exchange.Title == "" {
		if err := s.chatRepo.TouchUpdatedAt(ctx, sessionID, s.now()); err != nil {
			s.logger.Warn("failed to refresh session activity", "session_id", sessionID, "error", err)
		}
	}

	s.logger.Info("message exchange stored",
		"session_id", sessionID,
		"first_message", isFirstMessage,
		"history_len", len(history))
	return exchange, nil
}

func (s *ChatService) DeleteSession(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return chatservice.NewNotFoundError("delete_session", sessionID)
	}
	if err := s.chatRepo.DeleteWithMessages(ctx, sessionID); err != nil {
		if errors.Is(err, chat.ErrChatSessionNotFound) {
			return chatservice.NewNotFoundError("delete_session", sessionID)
		}
		return chatservice.NewInternalError("delete_session", "could not delete chat session", err)
	}
	s.logger.Info("chat session deleted", "session_id", sessionID)
	return nil
}

func (s *ChatService) UpdateSessionTitle(ctx context.Context, sessionID, title string) (*domain.ChatSession, error) {
	title, err := s.helper.NormalizeTitle("update_session_title", title)
	if err != nil {
		return nil, err
	}
	if err := s.chatRepo.UpdateTitle(ctx, sessionID, title); err != nil {
		if errors.Is(err, chat.ErrChatSessionNotFound) {
			return nil, chatservice.NewNotFoundError("update_session_title", sessionID)
		}
		return nil, chatservice.NewInternalError("update_session_title", "could not update title", err)
	}
	return s.findSession(ctx, "update_session_title", sessionID)
}

// UpdateMessageStatus moves a message along its delivery state machine.
func (s *ChatService) UpdateMessageStatus(ctx context.Context, messageID string, status domain.MessageStatus) (*domain.Message, error) {
	if !status.IsValid() {
		return nil, chatservice.NewValidationError("update_message_status", "unknown status "+string(status))
	}
	msg, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		if errors.Is(err, message.ErrMessageNotFound) {
			return nil, chatservice.NewMessageNotFoundError("update_message_status", messageID)
		}
		return nil, chatservice.NewInternalError("update_message_status", "could not load message", err)
	}
	if !msg.Status.CanTransitionTo(status) {
		return nil, chatservice.NewConflictError("update_message_status",
			"cannot move message from "+string(msg.Status)+" to "+string(status))
	}
	if err := s.messageRepo.UpdateStatus(ctx, messageID, msg.Status, status); err != nil {
		if errors.Is(err, message.ErrStatusConflict) {
			return nil, chatservice.NewConflictError("update_message_status", "message status changed concurrently")
		}
		return nil, chatservice.NewInternalError("update_message_status", "could not update status", err)
	}
	msg.Status = status
	return msg, nil
}

func (s *ChatService) findSession(ctx context.Context, operation, sessionID string) (*domain.ChatSession, error) {
	session, err := s.chatRepo.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, chat.ErrChatSessionNotFound) {
			return nil, chatservice.NewNotFoundError(operation, sessionID)
		}
		return nil, chatservice.NewInternalError(operation, "could not load chat session", err)
	}
	return session, nil
}

// historyThrough cuts history at the given message so replies saved by other
// in-flight sends never follow it.
func historyThrough(history []domain.Message, last *domain.Message) []domain.Message {
	for i := range history {
		if history[i].ID == last.ID {
			return history[:i+1]
		}
	}
	kept := make([]domain.Message, 0, len(history)+1)
	for _, msg := range history {
		if !msg.CreatedAt.After(last.CreatedAt) {
			kept = append(kept, msg)
		}
	}
	return append(kept, *last)
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
