package config

import "time"

// Provider names.
const (
	ProviderOpenAI    = "openai"
	ProviderFireworks = "fireworks"
)

// Store drivers and cache backends.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	CacheCSV    = "csv"
	CacheRedis  = "redis"
	CacheBadger = "badger"
	CacheNone   = "none"
)

// Default values for optional configuration fields.
const (
	DefaultInstanceID         = "hackathon"
	DefaultLogLevel           = "info"
	DefaultOpenAIURL          = "https://api.openai.com/v1"
	DefaultFireworksURL       = "https://api.fireworks.ai/inference/v1"
	DefaultLLMTimeout         = 60 * time.Second
	DefaultMaxRetries         = 3
	DefaultRequestsPerSecond  = 5
	DefaultSQLitePath         = "hackathon.db"
	DefaultSQLiteBusyTimeout  = 5 * time.Second
	DefaultSQLiteMaxOpenConns = 1
	DefaultDBPort             = 5432
	DefaultDBSSLMode          = "prefer"
	DefaultMaxConns           = 10
	DefaultMinConns           = 2
	DefaultCacheDir           = "completions"
	DefaultRedisAddr          = "localhost:6379"
	DefaultBadgerPath         = "completions.badger"
	DefaultConcurrency        = 4
	DefaultTrialCount         = 1
	DefaultBatchSize          = 100
	DefaultFlushInterval      = 1 * time.Second
	DefaultBufferSize         = 1000
	DefaultServerPort         = 8080
	DefaultMetricsPath        = "/metrics"
	DefaultRateLimit          = 10
	DefaultRateLimitWindow    = time.Minute
	DefaultTelemetryExporter  = "http"
	DefaultTelemetryEndpoint  = "localhost:4318"
	DefaultSamplingRate       = 1.0
)

func (c *Config) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = DefaultInstanceID
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	for i := range c.LLMs {
		applyLLMDefaults(&c.LLMs[i])
	}

	// Store defaults
	if c.Store.Driver == "" {
		c.Store.Driver = DriverSQLite
	}
	if c.Store.SQLite.Path == "" {
		c.Store.SQLite.Path = DefaultSQLitePath
	}
	if c.Store.SQLite.BusyTimeout == 0 {
		c.Store.SQLite.BusyTimeout = DefaultSQLiteBusyTimeout
	}
	if c.Store.SQLite.MaxOpenConns == 0 {
		c.Store.SQLite.MaxOpenConns = DefaultSQLiteMaxOpenConns
	}
	applyDBDefaults(&c.Store.Postgres)

	// Cache defaults
	if c.Cache.Backend == "" {
		c.Cache.Backend = CacheCSV
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = DefaultCacheDir
	}
	if c.Cache.Redis.Addr == "" {
		c.Cache.Redis.Addr = DefaultRedisAddr
	}
	if c.Cache.Badger.Path == "" {
		c.Cache.Badger.Path = DefaultBadgerPath
	}

	// Runner and writer defaults
	if c.Runner.Concurrency == 0 {
		c.Runner.Concurrency = DefaultConcurrency
	}
	if c.Runner.TrialCount == 0 {
		c.Runner.TrialCount = DefaultTrialCount
	}
	if c.Writer.BatchSize == 0 {
		c.Writer.BatchSize = DefaultBatchSize
	}
	if c.Writer.FlushInterval == 0 {
		c.Writer.FlushInterval = DefaultFlushInterval
	}
	if c.Writer.BufferSize == 0 {
		c.Writer.BufferSize = DefaultBufferSize
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = DefaultMetricsPath
	}
	if c.Server.RateLimit == 0 {
		c.Server.RateLimit = DefaultRateLimit
	}
	if c.Server.RateLimitWindow == 0 {
		c.Server.RateLimitWindow = DefaultRateLimitWindow
	}

	// Telemetry defaults
	if c.Telemetry.Exporter == "" {
		c.Telemetry.Exporter = DefaultTelemetryExporter
	}
	if c.Telemetry.Endpoint == "" {
		c.Telemetry.Endpoint = DefaultTelemetryEndpoint
	}
	if c.Telemetry.SamplingRate == 0 {
		c.Telemetry.SamplingRate = DefaultSamplingRate
	}
}

func applyLLMDefaults(l *LLMConfig) {
	if l.Provider == "" {
		l.Provider = ProviderOpenAI
	}
	if l.Model == "" {
		l.Model = l.ID
	}
	if l.BaseURL == "" {
		switch l.Provider {
		case ProviderFireworks:
			l.BaseURL = DefaultFireworksURL
		default:
			l.BaseURL = DefaultOpenAIURL
		}
	}
	if l.Timeout == 0 {
		l.Timeout = DefaultLLMTimeout
	}
	if l.MaxRetries == 0 {
		l.MaxRetries = DefaultMaxRetries
	}
	if l.RequestsPerSecond == 0 {
		l.RequestsPerSecond = DefaultRequestsPerSecond
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
