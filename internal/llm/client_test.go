package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
)

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"id": "chatcmpl-1",
		"choices": []map[string]any{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
		"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 5},
	})
	return string(b)
}

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("gpt-4o-mini", "https://api.example.com/v1", "test-key", "gpt-4o-mini")

		assert.Equal(t, "gpt-4o-mini", c.ID())
		assert.Equal(t, 60*time.Second, c.httpClient.Timeout)
		assert.Equal(t, 3, c.maxRetries)
		assert.Equal(t, time.Second, c.retryBackoff)
		assert.Nil(t, c.limiter)
		assert.Nil(t, c.temperature)
	})

	t.Run("with options", func(t *testing.T) {
		c := NewClient("m", "https://api.example.com/v1", "", "m",
			WithTimeout(5*time.Second),
			WithRetries(5, 2*time.Second),
			WithRateLimit(2),
			WithTemperature(0),
			WithLogger(zerolog.Nop()),
		)
		assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
		assert.Equal(t, 5, c.maxRetries)
		assert.Equal(t, 2*time.Second, c.retryBackoff)
		require.NotNil(t, c.limiter)
		require.NotNil(t, c.temperature)
		assert.Zero(t, *c.temperature)
	})

	t.Run("from config", func(t *testing.T) {
		temp := 0.2
		c := FromConfig(config.LLMConfig{
			ID:                "llama-v3-8b-instruct",
			Model:             "accounts/fireworks/models/llama-v3-8b-instruct",
			BaseURL:           config.DefaultFireworksURL,
			APIKey:            "fw",
			Timeout:           10 * time.Second,
			MaxRetries:        2,
			RequestsPerSecond: 1,
			Temperature:       &temp,
		})
		assert.Equal(t, "llama-v3-8b-instruct", c.ID())
		assert.Equal(t, "accounts/fireworks/models/llama-v3-8b-instruct", c.model)
		assert.Equal(t, 2, c.maxRetries)
		assert.Equal(t, 10*time.Second, c.httpClient.Timeout)
		require.NotNil(t, c.temperature)
		assert.Equal(t, 0.2, *c.temperature)
	})
}

func TestComplete(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(completionBody(`{"success": "Y"}`)))
	}))
	defer server.Close()

	c := NewClient("gpt-4o-mini", server.URL+"/v1", "sk-test", "gpt-4o-mini", WithLogger(zerolog.Nop()))
	out, err := c.Complete(context.Background(), "extract the notional")
	require.NoError(t, err)
	assert.Equal(t, `{"success": "Y"}`, out)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, Message{Role: RoleUser, Content: "extract the notional"}, got.Messages[0])
	assert.Nil(t, got.Temperature)
}

func TestRetry(t *testing.T) {
	t.Run("retries server errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(completionBody("ok")))
		}))
		defer server.Close()

		c := NewClient("m", server.URL, "", "m", WithRetries(3, time.Millisecond), WithLogger(zerolog.Nop()))
		out, err := c.Complete(context.Background(), "q")
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error": {"message": "model not found"}}`))
		}))
		defer server.Close()

		c := NewClient("m", server.URL, "", "m", WithRetries(3, time.Millisecond), WithLogger(zerolog.Nop()))
		_, err := c.Complete(context.Background(), "q")

		var apiErr *APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "model not found", apiErr.Message)
		assert.False(t, apiErr.IsRetryable())
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		c := NewClient("m", server.URL, "", "m", WithRetries(1, time.Millisecond), WithLogger(zerolog.Nop()))
		_, err := c.Complete(context.Background(), "q")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "max retries exceeded")
	})

	t.Run("empty choices", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"choices": []}`))
		}))
		defer server.Close()

		c := NewClient("m", server.URL, "", "m", WithLogger(zerolog.Nop()))
		_, err := c.Complete(context.Background(), "q")
		assert.ErrorIs(t, err, ErrEmptyCompletion)
	})
}

func TestAPIErrorIsRetryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{400, false}, {401, false}, {404, false}, {429, true}, {500, true}, {503, true},
	}
	for _, tt := range tests {
		if got := (&APIError{StatusCode: tt.code}).IsRetryable(); got != tt.want {
			t.Errorf("IsRetryable(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}

func TestTrialContext(t *testing.T) {
	ctx := context.Background()
	_, ok := TrialFrom(ctx)
	assert.False(t, ok)

	sub, _ := TrialFrom(SubTrial(ctx, 0))
	assert.Equal(t, "0", sub)

	ctx = WithTrial(ctx, "3")
	id, ok := TrialFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "3", id)

	sub, _ = TrialFrom(SubTrial(ctx, 1))
	assert.Equal(t, `3\1`, sub)
}

func TestRegistry(t *testing.T) {
	a := NewClient("a", "http://a", "", "a")
	b := NewClient("b", "http://b", "", "b")
	r := NewRegistry(b, a)

	assert.Equal(t, []string{"a", "b"}, r.IDs())
	got, err := r.Get("a")
	require.NoError(t, err)
	assert.Same(t, a, got)

	_, err = r.Get("missing")
	assert.Error(t, err)
}

type fakeChat struct {
	answer   string
	messages []Message
}

func (f *fakeChat) Chat(_ context.Context, messages []Message) (string, error) {
	f.messages = messages
	return f.answer, nil
}

func TestValidator(t *testing.T) {
	tests := []struct {
		answer  string
		ok      bool
		verdict Verdict
	}{
		{"Yes.", true, VerdictYes},
		{"no", false, VerdictNo},
		{"Not given", false, VerdictNotGiven},
		{"maybe", false, VerdictUnknown},
	}
	for _, tt := range tests {
		chat := &fakeChat{answer: tt.answer}
		ok, verdict, err := NewValidator(chat).Validate(context.Background(), "Pay fixed 3%", "fixed rate 3")
		require.NoError(t, err)
		assert.Equal(t, tt.ok, ok, tt.answer)
		assert.Equal(t, tt.verdict, verdict, tt.answer)
		require.Len(t, chat.messages, 3)
		assert.Equal(t, RoleSystem, chat.messages[0].Role)
		assert.Equal(t, "fixed rate 3", chat.messages[2].Content)
	}
}
