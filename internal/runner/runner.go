package runner

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
	"github.com/rickgao/tradeentry-hackathon/internal/log"
	"github.com/rickgao/tradeentry-hackathon/internal/metrics"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
	"github.com/rickgao/tradeentry-hackathon/internal/solution"
)

const tracerName = "github.com/rickgao/tradeentry-hackathon/internal/runner"

// Sink receives outputs as they are produced.
type Sink interface {
	Submit(ctx context.Context, o model.Output) error
}

// SinkFunc is a function adapter for Sink.
type SinkFunc func(context.Context, model.Output) error

func (f SinkFunc) Submit(ctx context.Context, o model.Output) error {
	return f(ctx, o)
}

// Stats summarises one run.
type Stats struct {
	Inputs    int
	Trials    int
	Processed int64
	Errors    int64
	Duration  time.Duration
}

// Runner processes a solution's inputs.
type Runner struct {
	cfg      config.RunnerConfig
	solution solution.Solution
	inputs   []model.Input
	sink     Sink
	logger   zerolog.Logger
	tracer   trace.Tracer
}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the runner's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

// WithTracer overrides the global tracer.
func WithTracer(t trace.Tracer) Option {
	return func(r *Runner) { r.tracer = t }
}

// New creates a Runner for sol over inputs, which should already be
// restricted with SelectInputs.
func New(cfg config.RunnerConfig, sol solution.Solution, inputs []model.Input, sink Sink, opts ...Option) *Runner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = config.DefaultConcurrency
	}
	r := &Runner{
		cfg:      cfg,
		solution: sol,
		inputs:   inputs,
		sink:     sink,
		logger:   log.WithComponent("runner"),
		tracer:   otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SelectInputs returns the inputs the solution is configured to process.
func SelectInputs(spec model.SolutionSpec, all []model.Input) ([]model.Input, error) {
	ids, err := solution.ParseTradeIDs(spec.TradeIDs)
	if err != nil {
		return nil, fmt.Errorf("solution %s: %w", spec.ID, err)
	}
	return solution.FilterInputs(all, spec.TradeGroup, ids), nil
}

// TrialIDs returns "1".."n".
func TrialIDs(n int) []string {
	ids := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		ids = append(ids, strconv.Itoa(i))
	}
	return ids
}

// Generate processes every input under the generation trial.
func (r *Runner) Generate(ctx context.Context) (Stats, error) {
	return r.Run(ctx, []string{model.GenerateTrialID})
}

// RunTrials processes every input under trials "1".."n".
func (r *Runner) RunTrials(ctx context.Context, n int) (Stats, error) {
	if n < 1 {
		return Stats{}, fmt.Errorf("trial count must be positive, got %d", n)
	}
	return r.Run(ctx, TrialIDs(n))
}

// Run processes every (input, trial) pair.
func (r *Runner) Run(ctx context.Context, trialIDs []string) (Stats, error) {
	spec := r.solution.Spec()
	start := time.Now()
	stats := Stats{Inputs: len(r.inputs), Trials: len(trialIDs)}

	ctx, span := r.tracer.Start(ctx, "runner.Run", trace.WithAttributes(
		attribute.String("solution", spec.ID),
		attribute.Int("inputs", len(r.inputs)),
		attribute.Int("trials", len(trialIDs)),
	))
	defer span.End()

	var processed, failed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.cfg.Concurrency)

	// Pairs are queued trial by trial.
	for _, trialID := range trialIDs {
		for _, in := range r.inputs {
			if gctx.Err() != nil {
				break
			}
			g.Go(func() error {
				if err := r.process(gctx, in, trialID); err != nil {
					failed.Add(1)
					metrics.InputsProcessedTotal.WithLabelValues(spec.ID, "error").Inc()
					return err
				}
				processed.Add(1)
				metrics.InputsProcessedTotal.WithLabelValues(spec.ID, "ok").Inc()
				return nil
			})
		}
	}

	err := g.Wait()
	stats.Processed = processed.Load()
	stats.Errors = failed.Load()
	stats.Duration = time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.Error().Err(err).Str("solution", spec.ID).Msg("run failed")
		return stats, err
	}

	r.logger.Info().
		Str("solution", spec.ID).
		Int("inputs", stats.Inputs).
		Int("trials", stats.Trials).
		Int64("processed", stats.Processed).
		Dur("duration", stats.Duration).
		Msg("run complete")
	return stats, nil
}

// process runs the solution on a single input and trial.
func (r *Runner) process(ctx context.Context, in model.Input, trialID string) error {
	ctx, span := r.tracer.Start(ctx, "runner.ProcessInput", trace.WithAttributes(
		attribute.String("solution", r.solution.Spec().ID),
		attribute.String("trade_id", in.TradeID),
		attribute.String("trial_id", trialID),
	))
	defer span.End()

	ctx = log.ContextWithTradeID(ctx, in.TradeID)
	out, err := r.solution.ProcessInput(ctx, in, trialID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("trade %s trial %s: %w", in.TradeID, trialID, err)
	}

	if err := r.sink.Submit(ctx, out); err != nil {
		return fmt.Errorf("submit output for trade %s trial %s: %w", in.TradeID, trialID, err)
	}
	return nil
}
