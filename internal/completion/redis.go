package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
)

const redisKeyPrefix = "completions:"

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisCache shares completions between processes through Redis.
type RedisCache struct {
	client *redis.Client
	logger zerolog.Logger
	stats  struct {
		hits   atomic.Int64
		misses atomic.Int64
		sets   atomic.Int64
	}
}

// NewRedisCache connects and pings the server.
func NewRedisCache(ctx context.Context, cfg RedisConfig, logger zerolog.Logger) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	logger.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("connected to redis completion cache")
	return newRedisCache(client, logger), nil
}

func newRedisCache(client *redis.Client, logger zerolog.Logger) *RedisCache {
	return &RedisCache{client: client, logger: logger}
}

func redisKey(k Key) string {
	return redisKeyPrefix + ID(k)
}

// Get implements Cache.
func (c *RedisCache) Get(ctx context.Context, key Key) (Record, bool, error) {
	val, err := c.client.Get(ctx, redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.stats.misses.Add(1)
		return Record{}, false, nil
	}
	if err != nil {
		c.stats.misses.Add(1)
		return Record{}, false, fmt.Errorf("redis get: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(val, &rec); err != nil {
		c.logger.Warn().Err(err).Str("key", redisKey(key)).Msg("discarding malformed cached completion")
		c.stats.misses.Add(1)
		return Record{}, false, nil
	}

	c.stats.hits.Add(1)
	return rec, true, nil
}

// Add implements Cache. Records do not expire.
func (c *RedisCache) Add(ctx context.Context, key Key, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal completion: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	c.stats.sets.Add(1)
	return nil
}

// Stats returns hit, miss and set counters.
func (c *RedisCache) Stats() (hits, misses, sets int64) {
	return c.stats.hits.Load(), c.stats.misses.Load(), c.stats.sets.Load()
}

// HealthCheck pings the server.
func (c *RedisCache) HealthCheck(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Backend implements Cache.
func (c *RedisCache) Backend() string { return config.CacheRedis }

// Close closes the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
