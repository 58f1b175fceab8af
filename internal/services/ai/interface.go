// File: internal/services/ai/interface.go
package ai

import "context"

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation as sent to a backend.
type Turn struct {
	Role    Role
	Content string
}

// Provider is a generative backend. Implementations hold no per-request state and
// are safe for concurrent use.
type Provider interface {
	Name() string
	// GenerateReply answers the last turn, which must be from the user.
	GenerateReply(ctx context.Context, conversation []Turn, persona string) (string, error)
	GenerateTitle(ctx context.Context, firstMessage string) (string, error)
}

// HealthChecker is implemented by providers that can verify connectivity cheaply.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
