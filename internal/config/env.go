package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Secrets are read from the environment and fill fields the YAML left empty.
type Secrets struct {
	OpenAIKey     string `env:"OPENAI_API_KEY"`
	FireworksKey  string `env:"FIREWORKS_API_KEY"`
	DBPassword    string `env:"HACKATHON_DB_PASSWORD"`
	RedisPassword string `env:"HACKATHON_REDIS_PASSWORD"`
	LogLevel      string `env:"LOG_LEVEL"`
	StoreDriver   string `env:"HACKATHON_STORE_DRIVER"`
	CacheBackend  string `env:"HACKATHON_CACHE_BACKEND"`
}

// ParseEnv loads environment variables into target.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	var s Secrets
	if err := ParseEnv(&s); err != nil {
		return err
	}

	for i := range c.LLMs {
		l := &c.LLMs[i]
		if l.APIKey != "" {
			continue
		}
		// Defaults run after env, so an unset provider is still openai here.
		switch l.Provider {
		case ProviderOpenAI, "":
			l.APIKey = s.OpenAIKey
		case ProviderFireworks:
			l.APIKey = s.FireworksKey
		}
	}
	if c.Store.Postgres.Password == "" {
		c.Store.Postgres.Password = s.DBPassword
	}
	if c.Cache.Redis.Password == "" {
		c.Cache.Redis.Password = s.RedisPassword
	}
	if c.Log.Level == "" {
		c.Log.Level = s.LogLevel
	}
	if c.Store.Driver == "" {
		c.Store.Driver = s.StoreDriver
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = s.CacheBackend
	}
	return nil
}
