// File: internal/services/ai/prompt.go
package ai

import (
	"fmt"
	"strings"
)

// CounselorPersona is the system prompt that frames every reply.
const CounselorPersona = `You are a career counselor with more than fifteen years of experience guiding people through their working lives. You help with:

- exploring and assessing career options
- job search strategy
- resumes, cover letters and interview practice
- planning professional growth and building skills
- changing careers and balancing work with the rest of life
- reading industry and labor market trends

Be warm and encouraging while staying professional. Ask a follow-up question when you need more context, tailor advice to the person's situation, and end with concrete next steps. When you are unsure about a specific industry or role, say so and suggest how the person could find out more.`

// ReplyInstruction closes every reply prompt.
const ReplyInstruction = "Please respond as a professional career counselor to the latest user message."

const titleInstruction = "Generate a short, descriptive title (3-6 words) for a career counseling session based on the user's first message. Focus on the main topic or concern. Only return the title, nothing else."

// ValidateConversation rejects conversations a backend must never see.
func ValidateConversation(conversation []Turn) error {
	if len(conversation) == 0 {
		return newConversationError("conversation is empty")
	}
	last := conversation[len(conversation)-1]
	if last.Role != RoleUser {
		return newConversationError(fmt.Sprintf("last turn must be from the user, got %q", last.Role))
	}
	if strings.TrimSpace(last.Content) == "" {
		return newConversationError("latest user message is empty")
	}
	for i, turn := range conversation {
		if turn.Role != RoleUser && turn.Role != RoleAssistant {
			return newConversationError(fmt.Sprintf("turn %d has unknown role %q", i, turn.Role))
		}
	}
	return nil
}

// BuildPrompt flattens a conversation into a single prompt: persona, prior turns
// in order, then the latest user message framed as the thing to answer.
func BuildPrompt(persona string, conversation []Turn) string {
	var b strings.Builder

	if persona != "" {
		b.WriteString("System: ")
		b.WriteString(persona)
		b.WriteString("\n\n")
	}

	prior := conversation[:len(conversation)-1]
	for _, turn := range prior {
		b.WriteString(roleLabel(turn.Role))
		b.WriteString(": ")
		b.WriteString(turn.Content)
		b.WriteString("\n\n")
	}

	b.WriteString(LatestMessageInstruction(conversation[len(conversation)-1].Content))
	return b.String()
}

// LatestMessageInstruction wraps the newest user message with the counselor instruction.
func LatestMessageInstruction(latest string) string {
	return fmt.Sprintf("User: %s\n\n%s", latest, ReplyInstruction)
}

// TitlePrompt is the single-prompt form of the title request.
func TitlePrompt(firstMessage string) string {
	return fmt.Sprintf("%s\n\nUser message: %q", titleInstruction, firstMessage)
}

func roleLabel(role Role) string {
	if role == RoleAssistant {
		return "Assistant"
	}
	return "User"
}
