package completion

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
)

// Cache stores completions.
type Cache interface {
	// Get returns the latest record stored for key.
	Get(ctx context.Context, key Key) (Record, bool, error)
	// Add stores rec for key; a later Add for the same key takes precedence.
	Add(ctx context.Context, key Key, rec Record) error
	// Backend names the implementation for metrics.
	Backend() string
	Close() error
}

// Open builds the cache selected by cfg.
func Open(ctx context.Context, cfg config.CacheConfig, logger zerolog.Logger) (Cache, error) {
	switch cfg.Backend {
	case config.CacheCSV, "":
		return NewCSVCache(cfg.Dir), nil
	case config.CacheRedis:
		return NewRedisCache(ctx, RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
	case config.CacheBadger:
		return OpenBadgerCache(cfg.Badger.Path)
	case config.CacheNone:
		return NopCache{}, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// NopCache never hits and discards additions.
type NopCache struct{}

func (NopCache) Get(context.Context, Key) (Record, bool, error) { return Record{}, false, nil }
func (NopCache) Add(context.Context, Key, Record) error         { return nil }
func (NopCache) Backend() string                                { return config.CacheNone }
func (NopCache) Close() error                                   { return nil }
