package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storybook-server/internal/models"
)

// fakeOpenAI serves a single endpoint under /v1 and records the last request body.
type fakeOpenAI struct {
	t        *testing.T
	path     string
	status   int
	response string

	mu   sync.Mutex
	body map[string]any
}

func (f *fakeOpenAI) lastBody() map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.body
}

func (f *fakeOpenAI) start() *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "/v1"+f.path, r.URL.Path)
		assert.Equal(f.t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, err := io.ReadAll(r.Body)
		assert.NoError(f.t, err)
		decoded := map[string]any{}
		assert.NoError(f.t, json.Unmarshal(body, &decoded))
		f.mu.Lock()
		f.body = decoded
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.status)
		_, _ = w.Write([]byte(f.response))
	}))
	f.t.Cleanup(srv.Close)
	return srv
}

func openAIConfig(srv *httptest.Server) OpenAIConfig {
	return OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Timeout: 5 * time.Second}
}

const chatOK = `{
  "id": "chatcmpl-1", "object": "chat.completion", "created": 1, "model": "gpt-4o",
  "choices": [{"index": 0, "message": {"role": "assistant", "content": "{\"storyline\":\"x\"}"}, "finish_reason": "stop"}],
  "usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
}`

func TestChatClient_GenerateStory(t *testing.T) {
	fake := &fakeOpenAI{t: t, path: "/chat/completions", status: http.StatusOK, response: chatOK}
	srv := fake.start()
	client := NewChatClient(openAIConfig(srv), "gpt-4o", 3000, false, zap.NewNop())

	got, err := client.GenerateStory(context.Background(), "a brave turtle")

	require.NoError(t, err)
	assert.Equal(t, `{"storyline":"x"}`, got)
	assert.Equal(t, "gpt-4o", fake.lastBody()["model"])
	assert.EqualValues(t, 3000, fake.lastBody()["max_tokens"])
	assert.NotContains(t, fake.lastBody(), "response_format")

	messages, ok := fake.lastBody()["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	system := messages[0].(map[string]any)
	user := messages[1].(map[string]any)
	assert.Equal(t, "system", system["role"])
	assert.Contains(t, system["content"], "EXACTLY 20 scenes")
	assert.Equal(t, "user", user["role"])
	assert.Equal(t, "a brave turtle", user["content"])
}

func TestChatClient_JSONMode(t *testing.T) {
	fake := &fakeOpenAI{t: t, path: "/chat/completions", status: http.StatusOK, response: chatOK}
	srv := fake.start()
	client := NewChatClient(openAIConfig(srv), "gpt-4o", 3000, true, zap.NewNop())

	_, err := client.GenerateStory(context.Background(), "space cats")

	require.NoError(t, err)
	assert.Equal(t, map[string]any{"type": "json_object"}, fake.lastBody()["response_format"])
}

func TestChatClient_RateLimitIsGenericUpstream(t *testing.T) {
	fake := &fakeOpenAI{t: t, path: "/chat/completions", status: http.StatusTooManyRequests,
		response: `{"error":{"message":"Rate limit reached","type":"requests","code":"rate_limit_exceeded"}}`}
	srv := fake.start()
	client := NewChatClient(openAIConfig(srv), "gpt-4o", 3000, false, zap.NewNop())

	_, err := client.GenerateStory(context.Background(), "space cats")

	var ue *models.UpstreamError
	require.True(t, errors.As(err, &ue))
	assert.ErrorIs(t, err, models.ErrUpstream)
	assert.NotErrorIs(t, err, models.ErrRateLimited)
	assert.Equal(t, http.StatusTooManyRequests, ue.StatusCode)
	assert.Equal(t, "Rate limit reached", ue.Body)
}

func TestChatClient_NoChoices(t *testing.T) {
	fake := &fakeOpenAI{t: t, path: "/chat/completions", status: http.StatusOK,
		response: `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o","choices":[]}`}
	srv := fake.start()
	client := NewChatClient(openAIConfig(srv), "gpt-4o", 3000, false, zap.NewNop())

	_, err := client.GenerateStory(context.Background(), "space cats")

	assert.ErrorIs(t, err, models.ErrMalformedResponse)
}

func TestChatClient_MissingKey(t *testing.T) {
	client := NewChatClient(OpenAIConfig{}, "gpt-4o", 3000, false, zap.NewNop())

	_, err := client.GenerateStory(context.Background(), "space cats")

	assert.ErrorIs(t, err, models.ErrMissingCredential)
}

func TestImageClient_GenerateImage(t *testing.T) {
	fake := &fakeOpenAI{t: t, path: "/images/generations", status: http.StatusOK,
		response: `{"created":1,"data":[{"b64_json":"iVBORw0KGgo="}]}`}
	srv := fake.start()
	client := NewImageClient(openAIConfig(srv), "gpt-image-1", "1024x1024", zap.NewNop())

	got, err := client.GenerateImage(context.Background(), "a castle")

	require.NoError(t, err)
	assert.Equal(t, "iVBORw0KGgo=", got)
	assert.Equal(t, "gpt-image-1", fake.lastBody()["model"])
	assert.Equal(t, "1024x1024", fake.lastBody()["size"])
	assert.EqualValues(t, 1, fake.lastBody()["n"])
	assert.Equal(t, "a castle", fake.lastBody()["prompt"])
	assert.NotContains(t, fake.lastBody(), "response_format")
}

func TestImageClient_RequestsBase64ForDallE(t *testing.T) {
	fake := &fakeOpenAI{t: t, path: "/images/generations", status: http.StatusOK,
		response: `{"created":1,"data":[{"b64_json":"AAAA"}]}`}
	srv := fake.start()
	client := NewImageClient(openAIConfig(srv), "dall-e-3", "1024x1024", zap.NewNop())

	_, err := client.GenerateImage(context.Background(), "a castle")

	require.NoError(t, err)
	assert.Equal(t, "b64_json", fake.lastBody()["response_format"])
}

func TestImageClient_ErrorStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status int
		kind   error
	}{
		{"rate limited", http.StatusTooManyRequests, models.ErrRateLimited},
		{"forbidden", http.StatusForbidden, models.ErrPermissionDenied},
		{"server error", http.StatusInternalServerError, models.ErrUpstream},
		{"bad request", http.StatusBadRequest, models.ErrUpstream},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeOpenAI{t: t, path: "/images/generations", status: tt.status,
				response: `{"error":{"message":"nope","type":"invalid_request_error"}}`}
			srv := fake.start()
			client := NewImageClient(openAIConfig(srv), "gpt-image-1", "1024x1024", zap.NewNop())

			_, err := client.GenerateImage(context.Background(), "a castle")

			var ue *models.UpstreamError
			require.True(t, errors.As(err, &ue))
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.status, ue.StatusCode)
			assert.Equal(t, "image", ue.Service)
		})
	}
}

func TestImageClient_MalformedResponses(t *testing.T) {
	for name, body := range map[string]string{
		"no data":   `{"created":1,"data":[]}`,
		"no base64": `{"created":1,"data":[{"url":"https://img.test/1.png"}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			fake := &fakeOpenAI{t: t, path: "/images/generations", status: http.StatusOK, response: body}
			srv := fake.start()
			client := NewImageClient(openAIConfig(srv), "gpt-image-1", "1024x1024", zap.NewNop())

			_, err := client.GenerateImage(context.Background(), "a castle")

			assert.ErrorIs(t, err, models.ErrMalformedResponse)
		})
	}
}

func TestImageClient_MissingKey(t *testing.T) {
	client := NewImageClient(OpenAIConfig{}, "gpt-image-1", "1024x1024", zap.NewNop())

	_, err := client.GenerateImage(context.Background(), "a castle")

	assert.ErrorIs(t, err, models.ErrMissingCredential)
}
