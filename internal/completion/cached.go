package completion

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/rickgao/tradeentry-hackathon/internal/llm"
	"github.com/rickgao/tradeentry-hackathon/internal/log"
	"github.com/rickgao/tradeentry-hackathon/internal/metrics"
)

// Cached wraps a completer with a completion cache.
type Cached struct {
	next   llm.Completer
	cache  Cache
	logger zerolog.Logger
	group  singleflight.Group

	mu      sync.Mutex
	session map[string]struct{}
}

// NewCached returns a caching completer in front of next.
func NewCached(next llm.Completer, cache Cache, logger zerolog.Logger) *Cached {
	return &Cached{
		next:    next,
		cache:   cache,
		logger:  logger,
		session: make(map[string]struct{}),
	}
}

// ID implements llm.Completer.
func (c *Cached) ID() string { return c.next.ID() }

// Complete returns a cached completion for the query and the context's
// trial, calling the model on a miss.
func (c *Cached) Complete(ctx context.Context, query string) (string, error) {
	trial, _ := llm.TrialFrom(ctx)
	key := Key{Channel: c.next.ID(), Trial: trial, Query: query}
	id := ID(key)
	backend := c.cache.Backend()

	if !c.recordedThisSession(id) {
		rec, ok, err := c.cache.Get(ctx, key)
		if err != nil {
			logger := log.WithContext(ctx, c.logger)
			logger.Warn().Err(err).Str("completion_id", id).Msg("completion cache lookup failed")
		} else if ok {
			metrics.CacheLookupsTotal.WithLabelValues(backend, "hit").Inc()
			return rec.Completion, nil
		}
	}
	metrics.CacheLookupsTotal.WithLabelValues(backend, "miss").Inc()

	v, err, _ := c.group.Do(id, func() (any, error) {
		out, err := c.next.Complete(ctx, query)
		if err != nil {
			return "", err
		}
		out = FormatCompletion(out)

		reqID, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("completion request id: %w", err)
		}
		rec := Record{RequestID: reqID.String(), Query: key.Formatted(), Completion: out}
		if err := c.cache.Add(ctx, key, rec); err != nil {
			return "", fmt.Errorf("cache completion: %w", err)
		}
		c.markRecorded(id)
		return out, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *Cached) recordedThisSession(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.session[id]
	return ok
}

func (c *Cached) markRecorded(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session[id] = struct{}{}
}
