package llm

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rickgao/tradeentry-hackathon/internal/log"
	"github.com/rickgao/tradeentry-hackathon/internal/metrics"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Index        int     `json:"index"`
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// ErrEmptyCompletion is returned when the API answers without choices.
var ErrEmptyCompletion = errors.New("completion has no choices")

// Chatter runs a multi-message chat.
type Chatter interface {
	Chat(ctx context.Context, messages []Message) (string, error)
}

// Complete sends query as a single user message.
func (c *Client) Complete(ctx context.Context, query string) (string, error) {
	return c.Chat(ctx, []Message{{Role: RoleUser, Content: query}})
}

// Chat sends the messages and returns the first choice's content.
func (c *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	start := time.Now()
	req := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: c.temperature,
	}

	var resp chatResponse
	err := c.post(ctx, "/chat/completions", req, &resp)
	metrics.LLMRequestDuration.WithLabelValues(c.id).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues(c.id, statusLabel(err)).Inc()
		return "", err
	}
	metrics.LLMRequestsTotal.WithLabelValues(c.id, "ok").Inc()

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	logger := log.WithContext(ctx, c.logger)
	logger.Debug().
		Str("model", c.id).
		Int("prompt_tokens", resp.Usage.PromptTokens).
		Int("completion_tokens", resp.Usage.CompletionTokens).
		Dur("elapsed", time.Since(start)).
		Msg("completion received")

	return resp.Choices[0].Message.Content, nil
}

func statusLabel(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return strconv.Itoa(apiErr.StatusCode)
	}
	return "error"
}
