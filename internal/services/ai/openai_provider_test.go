package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOpenAITestServer(t *testing.T, status int, body string, captured *openai.ChatCompletionRequest) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestOpenAIProvider(t *testing.T, baseURL string) *OpenAIProvider {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Provider = ProviderOpenAI
	cfg.OpenAIKey = "test-key"
	cfg.OpenAIBaseURL = baseURL + "/v1"
	p, err := NewOpenAIProvider(cfg)
	require.NoError(t, err)
	return p
}

const completionBody = `{"id":"c1","object":"chat.completion","created":1,"model":"gpt-3.5-turbo",
"choices":[{"index":0,"message":{"role":"assistant","content":"  Update your resume first.  "},"finish_reason":"stop"}]}`

func TestOpenAIProvider_GenerateReply(t *testing.T) {
	var req openai.ChatCompletionRequest
	srv, hits := newOpenAITestServer(t, http.StatusOK, completionBody, &req)
	p := newTestOpenAIProvider(t, srv.URL)

	out, err := p.GenerateReply(context.Background(), []Turn{
		{RoleUser, "I got laid off"},
		{RoleAssistant, "I'm sorry to hear that."},
		{RoleUser, "What should I do first?"},
	}, CounselorPersona)
	require.NoError(t, err)
	assert.Equal(t, "Update your resume first.", out)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))

	require.Len(t, req.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, req.Messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, req.Messages[2].Role)
	assert.Contains(t, req.Messages[3].Content, "What should I do first?")
	assert.Contains(t, req.Messages[3].Content, ReplyInstruction)
	assert.Equal(t, 500, req.MaxTokens)
	assert.InDelta(t, 0.7, req.Temperature, 0.001)
	assert.InDelta(t, 0.1, req.PresencePenalty, 0.001)
}

func TestOpenAIProvider_InvalidConversationMakesNoRequest(t *testing.T) {
	srv, hits := newOpenAITestServer(t, http.StatusOK, completionBody, nil)
	p := newTestOpenAIProvider(t, srv.URL)

	_, err := p.GenerateReply(context.Background(), nil, CounselorPersona)
	assert.ErrorIs(t, err, ErrInvalidConversationState)

	_, err = p.GenerateReply(context.Background(), []Turn{{RoleUser, "a"}, {RoleAssistant, "b"}}, CounselorPersona)
	assert.ErrorIs(t, err, ErrInvalidConversationState)
	assert.Equal(t, int32(0), atomic.LoadInt32(hits))
}

func TestOpenAIProvider_GenerateTitle(t *testing.T) {
	var req openai.ChatCompletionRequest
	srv, _ := newOpenAITestServer(t, http.StatusOK, completionBody, &req)
	p := newTestOpenAIProvider(t, srv.URL)

	_, err := p.GenerateTitle(context.Background(), "Switching from law to tech")
	require.NoError(t, err)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "Switching from law to tech", req.Messages[1].Content)
	assert.Equal(t, 20, req.MaxTokens)
	assert.InDelta(t, 0.5, req.Temperature, 0.001)
}

func TestOpenAIProvider_ClassifiesErrors(t *testing.T) {
	cases := []struct {
		status int
		body   string
		want   ErrorType
	}{
		{http.StatusUnauthorized, `{"error":{"message":"bad key","type":"invalid_request_error"}}`, ErrTypeConfig},
		{http.StatusTooManyRequests, `{"error":{"message":"slow down","type":"requests"}}`, ErrTypeRateLimit},
		{http.StatusTooManyRequests, `{"error":{"message":"no credit","type":"insufficient_quota"}}`, ErrTypeQuota},
		{http.StatusInternalServerError, `{"error":{"message":"oops","type":"server_error"}}`, ErrTypeProvider},
	}
	for _, tc := range cases {
		t.Run(string(tc.want), func(t *testing.T) {
			srv, _ := newOpenAITestServer(t, tc.status, tc.body, nil)
			p := newTestOpenAIProvider(t, srv.URL)

			_, err := p.GenerateTitle(context.Background(), "hello")
			var aiErr *AIError
			require.ErrorAs(t, err, &aiErr)
			assert.Equal(t, tc.want, aiErr.Type)
			assert.Equal(t, tc.status, aiErr.Code)
		})
	}
}

func TestOpenAIProvider_EmptyChoices(t *testing.T) {
	srv, _ := newOpenAITestServer(t, http.StatusOK, `{"id":"c","object":"chat.completion","choices":[]}`, nil)
	p := newTestOpenAIProvider(t, srv.URL)

	_, err := p.GenerateReply(context.Background(), []Turn{{RoleUser, "hi"}}, "")
	var aiErr *AIError
	require.ErrorAs(t, err, &aiErr)
	assert.Equal(t, ErrTypeProvider, aiErr.Type)
}
