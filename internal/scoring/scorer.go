package scoring

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
	"github.com/rickgao/tradeentry-hackathon/internal/llm"
	"github.com/rickgao/tradeentry-hackathon/internal/log"
	"github.com/rickgao/tradeentry-hackathon/internal/metrics"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
	"github.com/rickgao/tradeentry-hackathon/internal/runner"
	"github.com/rickgao/tradeentry-hackathon/internal/solution"
	"github.com/rickgao/tradeentry-hackathon/internal/store"
)

// Writer is where runs send their outputs. writer.OutputWriter satisfies it.
type Writer interface {
	runner.Sink
	Flush(ctx context.Context) error
}

// Scorer generates, scores and summarises solutions.
type Scorer struct {
	store    store.Store
	registry *llm.Registry
	writer   Writer
	cfg      config.RunnerConfig
	logger   zerolog.Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithLogger sets the scorer's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Scorer) { s.logger = l }
}

// NewScorer creates a Scorer.
func NewScorer(st store.Store, registry *llm.Registry, w Writer, cfg config.RunnerConfig, opts ...Option) *Scorer {
	s := &Scorer{
		store:    st,
		registry: registry,
		writer:   w,
		cfg:      cfg,
		logger:   log.WithComponent("scoring"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Inputs returns the inputs the solution processes.
func (s *Scorer) Inputs(ctx context.Context, spec model.SolutionSpec) ([]model.Input, error) {
	all, err := s.store.ListInputs(ctx, spec.TradeGroup)
	if err != nil {
		return nil, err
	}
	return runner.SelectInputs(spec, all)
}

func (s *Scorer) runner(ctx context.Context, solutionID string) (*runner.Runner, error) {
	spec, err := s.store.GetSolution(ctx, solutionID)
	if err != nil {
		return nil, err
	}
	sol, err := solution.New(spec, s.registry, solution.WithLogger(s.logger))
	if err != nil {
		return nil, err
	}
	inputs, err := s.Inputs(ctx, spec)
	if err != nil {
		return nil, err
	}
	return runner.New(s.cfg, sol, inputs, s.writer, runner.WithLogger(s.logger)), nil
}

// Generate processes the solution's inputs under the generation trial.
func (s *Scorer) Generate(ctx context.Context, solutionID string) (runner.Stats, error) {
	r, err := s.runner(ctx, solutionID)
	if err != nil {
		return runner.Stats{}, err
	}
	stats, err := r.Generate(ctx)
	if err != nil {
		return stats, err
	}
	return stats, s.writer.Flush(ctx)
}

// clearTrials deletes the scoring-trial outputs of a solution so that a
// shorter run does not leave outputs of an earlier, longer one behind.
// Generate outputs (trial "0") are kept.
func (s *Scorer) clearTrials(ctx context.Context, solutionID string) error {
	outputs, err := s.store.ListOutputs(ctx, solutionID)
	if err != nil {
		return fmt.Errorf("list outputs: %w", err)
	}
	seen := make(map[string]bool)
	for _, o := range outputs {
		if o.TrialID == model.GenerateTrialID || seen[o.TrialID] {
			continue
		}
		seen[o.TrialID] = true
		if err := s.store.DeleteOutputs(ctx, solutionID, o.TrialID); err != nil {
			return fmt.Errorf("clear trial %s: %w", o.TrialID, err)
		}
	}
	return nil
}

// Run scores a solution over trialCount trials.
//
// The stored score is cleared first so that a partial score is never
// visible. Earlier trial outputs are deleted, then outputs for trials
// "1".."trialCount" are regenerated, compared with the expected results
// and the totals saved.
func (s *Scorer) Run(ctx context.Context, solutionID string, trialCount int) (model.Scoring, error) {
	if trialCount < 1 {
		trialCount = 1
	}
	scoring := model.Scoring{Solution: solutionID, TrialCount: trialCount}

	if err := s.store.SaveScoring(ctx, scoring); err != nil {
		return scoring, fmt.Errorf("reset score: %w", err)
	}

	r, err := s.runner(ctx, solutionID)
	if err != nil {
		return scoring, err
	}
	if err := s.clearTrials(ctx, solutionID); err != nil {
		return scoring, err
	}
	if _, err := r.RunTrials(ctx, trialCount); err != nil {
		return scoring, err
	}
	if err := s.writer.Flush(ctx); err != nil {
		return scoring, fmt.Errorf("flush outputs: %w", err)
	}

	scoring, items, err := s.Calculate(ctx, solutionID, trialCount)
	if err != nil {
		return scoring, err
	}
	if err := s.store.ReplaceScoreItems(ctx, solutionID, items); err != nil {
		return scoring, err
	}
	if err := s.store.SaveScoring(ctx, scoring); err != nil {
		return scoring, err
	}

	metrics.ScorePercent.WithLabelValues(solutionID).Set(scoring.Percent())
	s.logger.Info().
		Str("solution", solutionID).
		Int("score", *scoring.Score).
		Int("max_score", *scoring.MaxScore).
		Float64("percent", scoring.Percent()).
		Msg("scoring complete")
	return scoring, nil
}

// Calculate compares stored outputs for trials "1".."trialCount" with the
// expected results. A missing output counts as all fields empty.
func (s *Scorer) Calculate(ctx context.Context, solutionID string, trialCount int) (model.Scoring, []model.ScoreItem, error) {
	scoring := model.Scoring{Solution: solutionID, TrialCount: trialCount}

	spec, err := s.store.GetSolution(ctx, solutionID)
	if err != nil {
		return scoring, nil, err
	}
	inputs, err := s.Inputs(ctx, spec)
	if err != nil {
		return scoring, nil, err
	}

	var items []model.ScoreItem
	score, maxScore := 0, 0
	for _, in := range inputs {
		expected, err := s.expected(ctx, in)
		if err != nil {
			return scoring, nil, err
		}

		for _, trialID := range runner.TrialIDs(trialCount) {
			key := model.OutputKey{Solution: solutionID, TradeGroup: in.TradeGroup, TradeID: in.TradeID, TrialID: trialID}
			actual, err := s.store.GetOutput(ctx, key)
			if errors.Is(err, store.ErrNotFound) {
				actual = model.NewOutput(solutionID, trialID, in)
			} else if err != nil {
				return scoring, nil, err
			}

			matched, mismatched := Compare(expected, actual)
			items = append(items, model.ScoreItem{
				Solution:         solutionID,
				TradeGroup:       in.TradeGroup,
				TradeID:          in.TradeID,
				TrialID:          trialID,
				MatchedFields:    matched,
				MismatchedFields: mismatched,
			})
			score += len(matched)
			maxScore += len(matched) + len(mismatched)
		}
	}

	scoring.Score = &score
	scoring.MaxScore = &maxScore
	return scoring, items, nil
}

func (s *Scorer) expected(ctx context.Context, in model.Input) (model.Output, error) {
	key := model.OutputKey{
		Solution:   model.ExpectedResultsID,
		TradeGroup: in.TradeGroup,
		TradeID:    in.TradeID,
		TrialID:    model.GenerateTrialID,
	}
	out, err := s.store.GetOutput(ctx, key)
	if err != nil {
		return model.Output{}, fmt.Errorf("expected results for trade %s/%s: %w", in.TradeGroup, in.TradeID, err)
	}
	return out, nil
}

// trialCount returns the trial count of the last scoring run.
func (s *Scorer) trialCount(ctx context.Context, solutionID string) (int, error) {
	sc, err := s.store.GetScoring(ctx, solutionID)
	if err != nil {
		return 0, err
	}
	if sc.TrialCount < 1 {
		return 1, nil
	}
	return sc.TrialCount, nil
}

// Statistics lists, for every input and field, the expected value followed
// by each distinct value produced across the scoring trials.
func (s *Scorer) Statistics(ctx context.Context, solutionID string) ([]model.Statistics, error) {
	spec, err := s.store.GetSolution(ctx, solutionID)
	if err != nil {
		return nil, err
	}
	trials, err := s.trialCount(ctx, solutionID)
	if err != nil {
		return nil, err
	}
	inputs, err := s.Inputs(ctx, spec)
	if err != nil {
		return nil, err
	}
	outputs, err := s.store.ListOutputs(ctx, solutionID)
	if err != nil {
		return nil, err
	}

	scored := make(map[string]bool, trials)
	for _, id := range runner.TrialIDs(trials) {
		scored[id] = true
	}
	byTrade := make(map[string][]model.Output)
	for _, o := range outputs {
		if scored[o.TrialID] {
			byTrade[o.TradeGroup+"/"+o.TradeID] = append(byTrade[o.TradeGroup+"/"+o.TradeID], o)
		}
	}

	stats := make([]model.Statistics, 0, len(inputs))
	for _, in := range inputs {
		expected, err := s.expected(ctx, in)
		if err != nil {
			return nil, err
		}
		st := model.Statistics{
			Solution:  solutionID,
			TradeID:   in.TradeID,
			EntryText: in.EntryText,
			Fields:    make(map[string]string, len(model.FieldNames())),
		}
		actual := byTrade[in.TradeGroup+"/"+in.TradeID]
		for _, f := range model.FieldNames() {
			values := make([]string, 0, len(actual))
			for i := range actual {
				values = append(values, actual[i].Field(f))
			}
			st.Fields[f] = FieldSummary(expected.Field(f), values, trials)
		}
		stats = append(stats, st)
	}
	return stats, nil
}

// FieldSummary renders one statistics cell.
func FieldSummary(expected string, actual []string, trials int) string {
	var order []string
	counts := make(map[string]int)
	for _, v := range actual {
		v = displayValue(v)
		if strings.HasPrefix(v, "Error") {
			v = "Error"
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	lines := make([]string, 0, len(order)+1)
	lines = append(lines, displayValue(expected)+" (exp)")
	for _, v := range order {
		if n := counts[v]; n > 1 {
			lines = append(lines, fmt.Sprintf("%s (%d/%d)", v, n, trials))
		} else {
			lines = append(lines, v)
		}
	}
	return strings.Join(lines, "\n")
}

func displayValue(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(empty)"
	}
	return v
}
