package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/go-counselor/internal/services/ai"
)

func TestAIService_Reply(t *testing.T) {
	ctx := context.Background()
	turns := []ai.Turn{{Role: ai.RoleUser, Content: "hi"}}

	svc, err := NewAIService(&stubProvider{reply: "  Hello there.  "}, 0, nil)
	require.NoError(t, err)
	out, err := svc.Reply(ctx, turns)
	require.NoError(t, err)
	assert.Equal(t, "Hello there.", out)

	svc, _ = NewAIService(&stubProvider{reply: "   "}, 0, nil)
	out, err = svc.Reply(ctx, turns)
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, out)

	svc, _ = NewAIService(&stubProvider{replyErr: errors.New("network down")}, 0, nil)
	out, err = svc.Reply(ctx, turns)
	require.NoError(t, err)
	assert.Equal(t, FallbackReply, out)
}

func TestAIService_Reply_InvalidConversationIsAnError(t *testing.T) {
	p := &stubProvider{reply: "unused"}
	svc, err := NewAIService(p, 0, nil)
	require.NoError(t, err)

	_, err = svc.Reply(context.Background(), []ai.Turn{
		{Role: ai.RoleUser, Content: "hi"},
		{Role: ai.RoleAssistant, Content: "hello"},
	})
	assert.ErrorIs(t, err, ai.ErrInvalidConversationState)
	assert.Zero(t, p.calls)
}

func TestAIService_Title(t *testing.T) {
	ctx := context.Background()

	svc, _ := NewAIService(&stubProvider{title: "\"Resume Review Tips\"\nextra line"}, 0, nil)
	assert.Equal(t, "Resume Review Tips", svc.Title(ctx, "help with my resume"))

	svc, _ = NewAIService(&stubProvider{titleErr: errors.New("boom")}, 0, nil)
	assert.Equal(t, "Help with my resume", svc.Title(ctx, "Help with my resume"))
	assert.Equal(t, "I want to change...", svc.Title(ctx, "I want to change careers soon"))
	assert.Equal(t, FallbackTitle, svc.Title(ctx, "   "))
}

func TestCleanTitle(t *testing.T) {
	assert.Equal(t, "Career Pivot", CleanTitle("Title: \"Career Pivot\""))
	assert.Equal(t, "", CleanTitle("  \"\"  "))
	assert.Len(t, []rune(CleanTitle(strings.Repeat("é", 150))), 100)
}

func TestNewAIService_RequiresProvider(t *testing.T) {
	_, err := NewAIService(nil, 0, nil)
	assert.Error(t, err)
}
