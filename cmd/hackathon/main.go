package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/rickgao/tradeentry-hackathon/internal/completion"
	"github.com/rickgao/tradeentry-hackathon/internal/config"
	"github.com/rickgao/tradeentry-hackathon/internal/llm"
	"github.com/rickgao/tradeentry-hackathon/internal/log"
	"github.com/rickgao/tradeentry-hackathon/internal/preload"
	"github.com/rickgao/tradeentry-hackathon/internal/report"
	"github.com/rickgao/tradeentry-hackathon/internal/scoring"
	"github.com/rickgao/tradeentry-hackathon/internal/server"
	"github.com/rickgao/tradeentry-hackathon/internal/store"
	"github.com/rickgao/tradeentry-hackathon/internal/telemetry"
	"github.com/rickgao/tradeentry-hackathon/internal/version"
	"github.com/rickgao/tradeentry-hackathon/internal/writer"
)

const usage = `usage: hackathon <command> [flags]

commands:
  load      import inputs, expected results and solutions
  generate  run a solution under trial 0
  score     score a solution over N trials
  report    write statistics, heatmap and score files
  serve     run the HTTP API
  version   print the version
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1], os.Args[2:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		logger := log.Base()
		logger.Error().Err(err).Str("command", os.Args[1]).Msg("command failed")
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd string, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	configPath := fs.String("config", "configs/hackathon.yaml", "path to config file")

	switch cmd {
	case "version":
		fmt.Fprintln(stdout, version.String())
		return nil

	case "load":
		inputs := fs.String("inputs", "", "inputs CSV (overrides preload.inputs)")
		expected := fs.String("expected", "", "expected results CSV (overrides preload.expected)")
		solutions := fs.String("solutions", "", "solutions YAML (overrides preload.solutions)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return withApp(ctx, *configPath, func(a *app) error {
			files := a.cfg.Preload
			if *inputs != "" {
				files.Inputs = *inputs
			}
			if *expected != "" {
				files.Expected = *expected
			}
			if *solutions != "" {
				files.Solutions = *solutions
			}
			sum, err := preload.NewLoader(a.store).LoadFiles(ctx, files)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "loaded %d inputs, %d expected results, %d solutions\n", sum.Inputs, sum.Expected, sum.Solutions)
			return nil
		})

	case "generate":
		solutionID := fs.String("solution", "", "solution id")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *solutionID == "" {
			return errors.New("-solution is required")
		}
		return withApp(ctx, *configPath, func(a *app) error {
			stats, err := a.scorer.Generate(ctx, *solutionID)
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "generated %d outputs for %s in %s\n", stats.Processed, *solutionID, stats.Duration.Round(time.Millisecond))
			return nil
		})

	case "score":
		solutionID := fs.String("solution", "", "solution id")
		trials := fs.Int("trials", 0, "number of scoring trials (default runner.trial_count)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *solutionID == "" {
			return errors.New("-solution is required")
		}
		return withApp(ctx, *configPath, func(a *app) error {
			n := *trials
			if n == 0 {
				n = a.cfg.Runner.TrialCount
			}
			sc, err := a.scorer.Run(ctx, *solutionID, n)
			if err != nil {
				return err
			}
			return report.WriteSummary(stdout, sc)
		})

	case "report":
		solutionID := fs.String("solution", "", "solution id")
		out := fs.String("out", "reports", "output directory")
		if err := fs.Parse(args); err != nil {
			return err
		}
		if *solutionID == "" {
			return errors.New("-solution is required")
		}
		return withApp(ctx, *configPath, func(a *app) error {
			sc, err := a.store.GetScoring(ctx, *solutionID)
			if err != nil {
				return err
			}
			stats, err := a.scorer.Statistics(ctx, *solutionID)
			if err != nil {
				return err
			}
			hm, err := a.scorer.Heatmap(ctx, *solutionID)
			if err != nil {
				return err
			}
			if err := report.Write(ctx, *out, report.Report{Scoring: sc, Statistics: stats, Heatmap: hm}); err != nil {
				return err
			}
			statsPath, heatmapPath, summaryPath := report.Paths(*out, *solutionID)
			fmt.Fprintf(stdout, "wrote %s\nwrote %s\nwrote %s\n", statsPath, heatmapPath, summaryPath)
			return nil
		})

	case "serve":
		validatorID := fs.String("validator", "", "llm id used by /api/validate (default: first configured llm)")
		if err := fs.Parse(args); err != nil {
			return err
		}
		return withApp(ctx, *configPath, func(a *app) error {
			var opts []server.Option
			if v := a.validator(*validatorID); v != nil {
				opts = append(opts, server.WithValidator(v))
			}
			return server.New(a.cfg.Server, a.store, a.scorer, opts...).Run(ctx)
		})

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// app holds the components shared by every command.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	store    store.Store
	cache    completion.Cache
	clients  map[string]*llm.Client
	registry *llm.Registry
	writer   *writer.OutputWriter
	scorer   *scoring.Scorer
	tracing  *telemetry.Provider
}

func withApp(ctx context.Context, configPath string, fn func(*app) error) error {
	a, err := newApp(ctx, configPath)
	if err != nil {
		return err
	}
	runErr := fn(a)
	if err := a.close(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log.Configure(log.Config{Level: cfg.Log.Level, Service: cfg.Instance.ID, Pretty: cfg.Log.Pretty})
	logger := log.WithComponent("main")
	logger.Info().
		Str("version", version.Version).
		Str("commit", version.Commit).
		Str("config", configPath).
		Msg("starting hackathon")

	a := &app{cfg: cfg, logger: logger, clients: make(map[string]*llm.Client)}
	ok := false
	defer func() {
		if !ok {
			_ = a.close()
		}
	}()

	a.tracing, err = telemetry.NewProvider(ctx, telemetry.FromConfig(cfg.Telemetry, cfg.Instance.ID, version.Version))
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}

	a.store, err = store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	a.cache, err = completion.Open(ctx, cfg.Cache, log.WithComponent("completion"))
	if err != nil {
		return nil, fmt.Errorf("open completion cache: %w", err)
	}

	a.registry = llm.NewRegistry()
	for _, lc := range cfg.LLMs {
		client := llm.FromConfig(lc, llm.WithLogger(log.WithComponent("llm")))
		a.clients[lc.ID] = client
		a.registry.Register(completion.NewCached(client, a.cache, log.WithComponent("completion")))
	}

	a.writer = writer.New(cfg.Writer, a.store)
	if err := a.writer.Start(ctx); err != nil {
		return nil, err
	}
	a.scorer = scoring.NewScorer(a.store, a.registry, a.writer, cfg.Runner)

	ok = true
	return a, nil
}

// validator returns a validator for the named model, or for the first
// configured model when id is empty.
func (a *app) validator(id string) server.Validator {
	if id == "" && len(a.cfg.LLMs) > 0 {
		id = a.cfg.LLMs[0].ID
	}
	client, ok := a.clients[id]
	if !ok {
		return nil
	}
	return llm.NewValidator(client)
}

func (a *app) close() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var errs []error
	if a.writer != nil {
		errs = append(errs, a.writer.Stop(shutdownCtx))
	}
	if a.cache != nil {
		errs = append(errs, a.cache.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.tracing != nil {
		errs = append(errs, a.tracing.Shutdown(shutdownCtx))
	}
	return errors.Join(errs...)
}
