package ai

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConversation(t *testing.T) {
	cases := []struct {
		name  string
		turns []Turn
		ok    bool
	}{
		{"empty", nil, false},
		{"last is assistant", []Turn{{RoleUser, "hi"}, {RoleAssistant, "hello"}}, false},
		{"blank latest", []Turn{{RoleUser, "  "}}, false},
		{"unknown role", []Turn{{"system", "x"}, {RoleUser, "hi"}}, false},
		{"single user turn", []Turn{{RoleUser, "hi"}}, true},
		{"alternating", []Turn{{RoleUser, "a"}, {RoleAssistant, "b"}, {RoleUser, "c"}}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateConversation(tc.turns)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConversationState)
		})
	}
}

func TestBuildPrompt_OrderAndInstruction(t *testing.T) {
	prompt := BuildPrompt("PERSONA", []Turn{
		{RoleUser, "I want to change careers"},
		{RoleAssistant, "What field interests you?"},
		{RoleUser, "Data science"},
	})

	assert.True(t, strings.HasPrefix(prompt, "System: PERSONA\n\n"))
	first := strings.Index(prompt, "User: I want to change careers")
	second := strings.Index(prompt, "Assistant: What field interests you?")
	latest := strings.Index(prompt, "User: Data science")
	require.True(t, first >= 0 && second >= 0 && latest >= 0)
	assert.Less(t, first, second)
	assert.Less(t, second, latest)
	assert.True(t, strings.HasSuffix(prompt, ReplyInstruction))
}

func TestBuildPrompt_NoPersona(t *testing.T) {
	prompt := BuildPrompt("", []Turn{{RoleUser, "hello"}})
	assert.Equal(t, "User: hello\n\n"+ReplyInstruction, prompt)
}

func TestTitlePrompt_QuotesMessage(t *testing.T) {
	p := TitlePrompt("How do I ask for a raise?")
	assert.Contains(t, p, `"How do I ask for a raise?"`)
	assert.Contains(t, p, "3-6 words")
}

type fakeGenerator struct {
	prompts []string
	temps   []float32
	tokens  []int
	reply   string
	err     error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.temps = append(f.temps, temperature)
	f.tokens = append(f.tokens, maxTokens)
	return f.reply, f.err
}

func TestGeminiProvider_GenerateReply(t *testing.T) {
	gen := &fakeGenerator{reply: "Consider a bootcamp."}
	p := newGeminiProviderWithGenerator(DefaultConfig(), gen)

	out, err := p.GenerateReply(context.Background(), []Turn{{RoleUser, "How do I start in data science?"}}, CounselorPersona)
	require.NoError(t, err)
	assert.Equal(t, "Consider a bootcamp.", out)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "System: "+CounselorPersona)
	assert.Equal(t, float32(0.7), gen.temps[0])
	assert.Equal(t, 500, gen.tokens[0])
}

func TestGeminiProvider_InvalidConversationSkipsBackend(t *testing.T) {
	gen := &fakeGenerator{reply: "unused"}
	p := newGeminiProviderWithGenerator(DefaultConfig(), gen)

	_, err := p.GenerateReply(context.Background(), []Turn{{RoleUser, "hi"}, {RoleAssistant, "hey"}}, CounselorPersona)
	assert.ErrorIs(t, err, ErrInvalidConversationState)
	assert.Empty(t, gen.prompts)
}

func TestGeminiProvider_WrapsBackendError(t *testing.T) {
	boom := errors.New("boom")
	p := newGeminiProviderWithGenerator(DefaultConfig(), &fakeGenerator{err: boom})

	_, err := p.GenerateTitle(context.Background(), "resume help")
	var aiErr *AIError
	require.ErrorAs(t, err, &aiErr)
	assert.Equal(t, ErrTypeProvider, aiErr.Type)
	assert.Equal(t, "title", aiErr.Operation)
	assert.ErrorIs(t, err, boom)
}

func TestNewProvider(t *testing.T) {
	ctx := context.Background()

	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	p, err := NewProvider(ctx, cfg)
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, p.Name())

	cfg = DefaultConfig()
	cfg.Provider = ProviderOpenAI
	_, err = NewProvider(ctx, cfg)
	assert.True(t, IsConfigError(err))

	cfg = DefaultConfig()
	cfg.Provider = ProviderGemini
	_, err = NewProvider(ctx, cfg)
	assert.True(t, IsConfigError(err))

	cfg.Provider = "llama"
	_, err = NewProvider(ctx, cfg)
	assert.True(t, IsConfigError(err))
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.Error(t, cfg.Validate())
	cfg.GeminiKey = "key"
	assert.NoError(t, cfg.Validate())
	cfg.Timeout = 0
	assert.Error(t, cfg.Validate())
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()
	out, err := p.GenerateReply(context.Background(), []Turn{{RoleUser, "hello"}}, "")
	require.NoError(t, err)
	assert.Contains(t, out, "hello")

	title, err := p.GenerateTitle(context.Background(), "one two three four five six seven")
	require.NoError(t, err)
	assert.Equal(t, "one two three four five", title)
}
