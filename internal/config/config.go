package config

import "time"

// Config is the root configuration.
type Config struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Log       LogConfig       `yaml:"log"`
	LLMs      []LLMConfig     `yaml:"llms"`
	Store     StoreConfig     `yaml:"store"`
	Cache     CacheConfig     `yaml:"cache"`
	Runner    RunnerConfig    `yaml:"runner"`
	Writer    WriterConfig    `yaml:"writer"`
	Server    ServerConfig    `yaml:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Preload   PreloadConfig   `yaml:"preload"`
}

// InstanceConfig identifies this deployment.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// LogConfig configures the base logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// LLMConfig describes one OpenAI-compatible model endpoint.
type LLMConfig struct {
	ID                string        `yaml:"id"`
	Provider          string        `yaml:"provider"` // openai or fireworks
	Model             string        `yaml:"model"`
	BaseURL           string        `yaml:"base_url"`
	APIKey            string        `yaml:"api_key"`
	Timeout           time.Duration `yaml:"timeout"`
	MaxRetries        int           `yaml:"max_retries"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
	Temperature       *float64      `yaml:"temperature"`
}

// StoreConfig selects the record store.
type StoreConfig struct {
	Driver   string       `yaml:"driver"` // sqlite or postgres
	SQLite   SQLiteConfig `yaml:"sqlite"`
	Postgres DBConfig     `yaml:"postgres"`
}

// SQLiteConfig holds the embedded database settings.
type SQLiteConfig struct {
	Path         string        `yaml:"path"`
	BusyTimeout  time.Duration `yaml:"busy_timeout"`
	MaxOpenConns int           `yaml:"max_open_conns"`
}

// DBConfig holds a single PostgreSQL connection.
type DBConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Name            string `yaml:"name"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	SSLMode         string `yaml:"ssl_mode"`
	ApplicationName string `yaml:"application_name"`
	MaxConns        int    `yaml:"max_conns"`
	MinConns        int    `yaml:"min_conns"`
}

// CacheConfig selects the completion cache backend.
type CacheConfig struct {
	Backend string      `yaml:"backend"` // csv, redis, badger or none
	Dir     string      `yaml:"dir"`     // csv files live here
	Redis   RedisConfig `yaml:"redis"`
	Badger  BadgerCfg   `yaml:"badger"`
}

// RedisConfig holds the shared cache connection.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// BadgerCfg holds the embedded key-value cache location.
type BadgerCfg struct {
	Path string `yaml:"path"`
}

// RunnerConfig controls solution processing.
type RunnerConfig struct {
	Concurrency int `yaml:"concurrency"`
	TrialCount  int `yaml:"trial_count"`
}

// WriterConfig holds output batch writer settings.
type WriterConfig struct {
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	MetricsPath     string        `yaml:"metrics_path"`
	RateLimit       int           `yaml:"rate_limit"`
	RateLimitWindow time.Duration `yaml:"rate_limit_window"`
}

// TelemetryConfig holds OpenTelemetry tracing settings.
type TelemetryConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Exporter     string  `yaml:"exporter"` // http or noop
	Endpoint     string  `yaml:"endpoint"`
	Environment  string  `yaml:"environment"`
	SamplingRate float64 `yaml:"sampling_rate"`
}

// PreloadConfig lists the files loaded by the load command.
type PreloadConfig struct {
	Inputs    string `yaml:"inputs"`
	Expected  string `yaml:"expected"`
	Solutions string `yaml:"solutions"`
}

// LLM returns the model configuration with the given id.
func (c *Config) LLM(id string) (LLMConfig, bool) {
	for _, l := range c.LLMs {
		if l.ID == id {
			return l, true
		}
	}
	return LLMConfig{}, false
}
