package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
	"github.com/rickgao/tradeentry-hackathon/internal/llm"
	"github.com/rickgao/tradeentry-hackathon/internal/log"
	"github.com/rickgao/tradeentry-hackathon/internal/scoring"
	"github.com/rickgao/tradeentry-hackathon/internal/store"
)

// Validator checks an extracted answer against a description.
type Validator interface {
	Validate(ctx context.Context, description, answer string) (bool, llm.Verdict, error)
}

// Server is the HTTP API.
type Server struct {
	cfg       config.ServerConfig
	store     store.Store
	scorer    *scoring.Scorer
	validator Validator
	logger    zerolog.Logger
	handler   http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithValidator enables POST /api/validate.
func WithValidator(v Validator) Option {
	return func(s *Server) { s.validator = v }
}

// New creates a Server. Zero config values fall back to defaults.
func New(cfg config.ServerConfig, st store.Store, scorer *scoring.Scorer, opts ...Option) *Server {
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = config.DefaultMetricsPath
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = config.DefaultRateLimit
	}
	if cfg.RateLimitWindow <= 0 {
		cfg.RateLimitWindow = config.DefaultRateLimitWindow
	}
	s := &Server{
		cfg:    cfg,
		store:  st,
		scorer: scorer,
		logger: log.WithComponent("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.handler = otelhttp.NewHandler(s.routes(), "hackathon")
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(s.logger))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, s.cfg.MetricsPath, promhttp.Handler())

	limit := rateLimit(s.cfg.RateLimit, s.cfg.RateLimitWindow)

	r.Route("/api", func(r chi.Router) {
		r.Get("/solutions", s.handleListSolutions)
		r.Route("/solutions/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetSolution)
			r.Get("/inputs", s.handleInputs)
			r.Get("/outputs", s.handleOutputs)
			r.Get("/score", s.handleScore)
			r.Get("/statistics", s.handleStatistics)
			r.Get("/heatmap", s.handleHeatmap)
			r.With(limit).Post("/generate", s.handleGenerate)
			r.With(limit).Post("/score", s.handleRunScore)
		})
		r.With(limit).Post("/validate", s.handleValidate)
	})
	return r
}

// Run serves on the configured port until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	s.logger.Info().Msg("http server stopped")
	return nil
}
