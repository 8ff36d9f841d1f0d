package llm

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
	"github.com/rickgao/tradeentry-hackathon/internal/log"
)

// Completer turns a query into a completion.
type Completer interface {
	// ID identifies the model, for example "gpt-4o-mini".
	ID() string
	Complete(ctx context.Context, query string) (string, error)
}

// Client talks to an OpenAI-compatible chat completions endpoint.
type Client struct {
	id         string
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger
	limiter    *rate.Limiter

	temperature  *float64
	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// NewClient creates a chat completions client. id names the model in
// logs, metrics and caches; model is the provider's model name.
func NewClient(id, baseURL, apiKey, model string, opts ...ClientOption) *Client {
	c := &Client{
		id:      id,
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout:   60 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger:       log.WithComponent("llm"),
		maxRetries:   3,
		retryBackoff: time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// FromConfig builds a client from an llms entry.
func FromConfig(cfg config.LLMConfig, opts ...ClientOption) *Client {
	base := []ClientOption{
		WithTimeout(cfg.Timeout),
		WithRetries(cfg.MaxRetries, time.Second),
		WithRateLimit(cfg.RequestsPerSecond),
	}
	if cfg.Temperature != nil {
		base = append(base, WithTemperature(*cfg.Temperature))
	}
	return NewClient(cfg.ID, cfg.BaseURL, cfg.APIKey, cfg.Model, append(base, opts...)...)
}

// ID returns the model id.
func (c *Client) ID() string { return c.id }

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetries sets the retry configuration.
func WithRetries(max int, backoff time.Duration) ClientOption {
	return func(c *Client) {
		c.maxRetries = max
		c.retryBackoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit caps outbound requests per second. Zero disables the limit.
func WithRateLimit(rps float64) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithTemperature sets the sampling temperature sent with each request.
func WithTemperature(t float64) ClientOption {
	return func(c *Client) {
		c.temperature = &t
	}
}
