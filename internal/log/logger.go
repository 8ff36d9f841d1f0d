// Package log wraps zerolog with process-wide configuration and
// context helpers for solution and trial fields.
package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rickgao/tradeentry-hackathon/internal/version"
)

// Config controls the base logger.
type Config struct {
	Level   string    // zerolog or PascalCase level name; falls back to LOG_LEVEL, then info
	Output  io.Writer // defaults to os.Stderr
	Service string    // attached to every entry
	Pretty  bool      // human-readable console output
}

var (
	once sync.Once
	mu   sync.RWMutex
	base zerolog.Logger
)

// Configure initialises the base logger. Only the first call has an effect.
func Configure(cfg Config) {
	once.Do(func() {
		mu.Lock()
		defer mu.Unlock()
		base = build(cfg)
	})
}

func build(cfg Config) zerolog.Logger {
	level := zerolog.InfoLevel
	name := cfg.Level
	if name == "" {
		name = os.Getenv("LOG_LEVEL")
	}
	if name != "" {
		if parsed, err := zerolog.ParseLevel(name); err == nil && parsed != zerolog.NoLevel {
			level = parsed
		} else if named, err := ParseLevel(name); err == nil {
			level = named.Zerolog()
		}
	}
	zerolog.TimeFieldFormat = time.RFC3339

	w := cfg.Output
	if w == nil {
		w = os.Stderr
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
	}

	service := cfg.Service
	if service == "" {
		service = "hackathon"
	}

	return zerolog.New(w).Level(level).With().
		Timestamp().
		Str("service", service).
		Str("version", version.Version).
		Logger()
}

// Base returns the configured base logger.
func Base() zerolog.Logger {
	Configure(Config{})
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(component string) zerolog.Logger {
	return Base().With().Str("component", component).Logger()
}

// New builds a standalone logger without touching the base logger.
func New(cfg Config) zerolog.Logger {
	return build(cfg)
}
