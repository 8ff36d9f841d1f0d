package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	seen := make(map[string]bool, len(c.LLMs))
	for i, l := range c.LLMs {
		prefix := fmt.Sprintf("llms[%d]", i)
		if l.ID == "" {
			return fmt.Errorf("%s.id is required", prefix)
		}
		if seen[l.ID] {
			return fmt.Errorf("%s.id %q is duplicated", prefix, l.ID)
		}
		seen[l.ID] = true
		if l.Provider != ProviderOpenAI && l.Provider != ProviderFireworks {
			return fmt.Errorf("%s.provider must be %s or %s, got %q", prefix, ProviderOpenAI, ProviderFireworks, l.Provider)
		}
		if l.MaxRetries < 0 {
			return fmt.Errorf("%s.max_retries must be >= 0", prefix)
		}
		if l.RequestsPerSecond < 0 {
			return fmt.Errorf("%s.requests_per_second must be >= 0", prefix)
		}
	}

	switch c.Store.Driver {
	case DriverSQLite:
		if c.Store.SQLite.Path == "" {
			return errors.New("store.sqlite.path is required")
		}
	case DriverPostgres:
		if err := c.Store.Postgres.validate("store.postgres"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("store.driver must be %s or %s, got %q", DriverSQLite, DriverPostgres, c.Store.Driver)
	}

	switch c.Cache.Backend {
	case CacheCSV, CacheNone:
	case CacheRedis:
		if c.Cache.Redis.Addr == "" {
			return errors.New("cache.redis.addr is required")
		}
	case CacheBadger:
		if c.Cache.Badger.Path == "" {
			return errors.New("cache.badger.path is required")
		}
	default:
		return fmt.Errorf("cache.backend must be one of csv, redis, badger, none, got %q", c.Cache.Backend)
	}

	if c.Runner.Concurrency < 1 {
		return errors.New("runner.concurrency must be >= 1")
	}
	if c.Runner.TrialCount < 1 {
		return errors.New("runner.trial_count must be >= 1")
	}
	if c.Writer.BatchSize < 1 {
		return errors.New("writer.batch_size must be >= 1")
	}
	if c.Writer.BufferSize < 1 {
		return errors.New("writer.buffer_size must be >= 1")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Telemetry.Enabled && c.Telemetry.Exporter != "http" && c.Telemetry.Exporter != "noop" {
		return fmt.Errorf("telemetry.exporter must be http or noop, got %q", c.Telemetry.Exporter)
	}
	if c.Telemetry.SamplingRate < 0 || c.Telemetry.SamplingRate > 1 {
		return fmt.Errorf("telemetry.sampling_rate must be between 0 and 1, got %v", c.Telemetry.SamplingRate)
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	if db.MinConns > db.MaxConns {
		return fmt.Errorf("%s.min_conns (%d) cannot exceed max_conns (%d)", prefix, db.MinConns, db.MaxConns)
	}
	return nil
}
