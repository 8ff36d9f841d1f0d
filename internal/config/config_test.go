package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	yaml := `
instance:
  id: hackathon-test
llms:
  - id: gpt-4o-mini
    provider: openai
  - id: llama-v3-8b-instruct
    provider: fireworks
    model: accounts/fireworks/models/llama-v3-8b-instruct
store:
  driver: sqlite
  sqlite:
    path: /tmp/test.db
`
	cfg, err := Load(writeTempFile(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Instance.ID != "hackathon-test" {
		t.Errorf("Instance.ID = %q, want %q", cfg.Instance.ID, "hackathon-test")
	}
	if len(cfg.LLMs) != 2 {
		t.Fatalf("len(LLMs) = %d, want 2", len(cfg.LLMs))
	}
	l, ok := cfg.LLM("llama-v3-8b-instruct")
	if !ok {
		t.Fatal("LLM(llama-v3-8b-instruct) not found")
	}
	if l.Model != "accounts/fireworks/models/llama-v3-8b-instruct" {
		t.Errorf("Model = %q", l.Model)
	}
	if cfg.Store.SQLite.Path != "/tmp/test.db" {
		t.Errorf("Store.SQLite.Path = %q, want %q", cfg.Store.SQLite.Path, "/tmp/test.db")
	}
}

func TestLoadWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_DB_PASSWORD", "secret123")

	yaml := `
store:
  driver: postgres
  postgres:
    host: localhost
    name: hackathon
    user: hackathon
    password: ${TEST_DB_PASSWORD}
`
	cfg, err := Load(writeTempFile(t, yaml))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Store.Postgres.Password != "secret123" {
		t.Errorf("Postgres.Password = %q, want %q", cfg.Store.Postgres.Password, "secret123")
	}
}

func TestLoadWithDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("FIREWORKS_API_KEY", "fw-key")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("HACKATHON_STORE_DRIVER", "")
	t.Setenv("HACKATHON_CACHE_BACKEND", "")

	yaml := `
llms:
  - id: gpt-4o-mini
  - id: llama
    provider: fireworks
  - id: explicit
    api_key: from-yaml
`
	cfg, err := LoadWithDefaults(writeTempFile(t, yaml))
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"Instance.ID", cfg.Instance.ID, DefaultInstanceID},
		{"Log.Level", cfg.Log.Level, DefaultLogLevel},
		{"LLMs[0].Provider", cfg.LLMs[0].Provider, ProviderOpenAI},
		{"LLMs[0].Model", cfg.LLMs[0].Model, "gpt-4o-mini"},
		{"LLMs[0].BaseURL", cfg.LLMs[0].BaseURL, DefaultOpenAIURL},
		{"LLMs[0].APIKey", cfg.LLMs[0].APIKey, "sk-openai"},
		{"LLMs[1].BaseURL", cfg.LLMs[1].BaseURL, DefaultFireworksURL},
		{"LLMs[1].APIKey", cfg.LLMs[1].APIKey, "fw-key"},
		{"LLMs[2].APIKey", cfg.LLMs[2].APIKey, "from-yaml"},
		{"LLMs[0].Timeout", cfg.LLMs[0].Timeout, DefaultLLMTimeout},
		{"Store.Driver", cfg.Store.Driver, DriverSQLite},
		{"Store.SQLite.BusyTimeout", cfg.Store.SQLite.BusyTimeout, DefaultSQLiteBusyTimeout},
		{"Store.Postgres.Port", cfg.Store.Postgres.Port, DefaultDBPort},
		{"Cache.Backend", cfg.Cache.Backend, CacheCSV},
		{"Cache.Dir", cfg.Cache.Dir, DefaultCacheDir},
		{"Runner.Concurrency", cfg.Runner.Concurrency, DefaultConcurrency},
		{"Runner.TrialCount", cfg.Runner.TrialCount, DefaultTrialCount},
		{"Writer.FlushInterval", cfg.Writer.FlushInterval, time.Second},
		{"Server.Port", cfg.Server.Port, DefaultServerPort},
		{"Server.MetricsPath", cfg.Server.MetricsPath, DefaultMetricsPath},
		{"Telemetry.SamplingRate", cfg.Telemetry.SamplingRate, DefaultSamplingRate},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() after defaults = %v", err)
	}
}

func TestLoadWithDefaultsEnvBeforeDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-env")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("HACKATHON_STORE_DRIVER", DriverPostgres)
	t.Setenv("HACKATHON_CACHE_BACKEND", "")

	cfg, err := LoadWithDefaults(writeTempFile(t, "llms:\n  - id: gpt-4o\n"))
	if err != nil {
		t.Fatalf("LoadWithDefaults failed: %v", err)
	}
	if got := cfg.LLMs[0].APIKey; got != "sk-env" {
		t.Errorf("LLMs[0].APIKey = %q, want sk-env", got)
	}
	if got := cfg.Log.Level; got != "debug" {
		t.Errorf("Log.Level = %q, want debug", got)
	}
	if got := cfg.Store.Driver; got != DriverPostgres {
		t.Errorf("Store.Driver = %q, want %s", got, DriverPostgres)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{LLMs: []LLMConfig{{ID: "gpt-4o-mini"}}}
		cfg.applyDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing llm id", func(c *Config) { c.LLMs[0].ID = "" }, "llms[0].id is required"},
		{"duplicate llm", func(c *Config) { c.LLMs = append(c.LLMs, c.LLMs[0]) }, "duplicated"},
		{"bad provider", func(c *Config) { c.LLMs[0].Provider = "anthropic" }, "llms[0].provider"},
		{"bad driver", func(c *Config) { c.Store.Driver = "mysql" }, "store.driver"},
		{"postgres needs host", func(c *Config) { c.Store.Driver = DriverPostgres }, "store.postgres.host is required"},
		{"bad cache", func(c *Config) { c.Cache.Backend = "memcached" }, "cache.backend"},
		{"zero concurrency", func(c *Config) { c.Runner.Concurrency = 0 }, "runner.concurrency"},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"bad sampling", func(c *Config) { c.Telemetry.SamplingRate = 2 }, "telemetry.sampling_rate"},
		{
			"min conns above max",
			func(c *Config) {
				c.Store.Driver = DriverPostgres
				c.Store.Postgres = DBConfig{Host: "h", Name: "n", User: "u", Password: "p", MaxConns: 1, MinConns: 2}
			},
			"cannot exceed max_conns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of missing file should fail")
	}
}
