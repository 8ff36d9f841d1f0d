package solution

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/rickgao/tradeentry-hackathon/internal/llm"
	"github.com/rickgao/tradeentry-hackathon/internal/log"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
)

// ErrTrialAlreadySet is returned when ProcessInput is called with a
// context that already carries a trial.
var ErrTrialAlreadySet = errors.New("cannot override trial that is already set")

// Solution converts inputs to outputs.
type Solution interface {
	Spec() model.SolutionSpec
	ProcessInput(ctx context.Context, in model.Input, trialID string) (model.Output, error)
}

// Option configures solutions built by New.
type Option func(*options)

type options struct {
	logger zerolog.Logger
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New builds the solution described by spec, resolving its model in registry.
func New(spec model.SolutionSpec, registry *llm.Registry, opts ...Option) (Solution, error) {
	o := options{logger: log.WithComponent("solution")}
	for _, opt := range opts {
		opt(&o)
	}
	o.logger = o.logger.With().Str("solution", spec.ID).Logger()

	if spec.ID == "" {
		return nil, errors.New("solution id is required")
	}
	if _, err := ParseTradeIDs(spec.TradeIDs); err != nil {
		return nil, fmt.Errorf("solution %s: %w", spec.ID, err)
	}

	switch spec.Kind {
	case model.KindExpectedResults:
		return NewExpectedResults(spec), nil
	case model.KindOneStep, model.KindAnnotation:
	default:
		return nil, fmt.Errorf("solution %s: unknown kind %q", spec.ID, spec.Kind)
	}

	if registry == nil {
		return nil, fmt.Errorf("solution %s: no llm registry", spec.ID)
	}
	completer, err := registry.Get(spec.LLM)
	if err != nil {
		return nil, fmt.Errorf("solution %s: %w", spec.ID, err)
	}

	if spec.Kind == model.KindOneStep {
		return NewOneStep(spec, completer, o.logger)
	}
	return NewAnnotation(spec, completer, o.logger), nil
}

// ParseTradeIDs expands a list such as "1-3, 5" into sorted, unique ids.
// Ranges may be given in either order. An empty list yields no ids.
func ParseTradeIDs(s string) ([]int, error) {
	seen := make(map[int]struct{})
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := strconv.Atoi(strings.TrimSpace(lo))
			if err != nil {
				return nil, fmt.Errorf("invalid trade id range %q", part)
			}
			end, err := strconv.Atoi(strings.TrimSpace(hi))
			if err != nil {
				return nil, fmt.Errorf("invalid trade id range %q", part)
			}
			if start > end {
				start, end = end, start
			}
			for id := start; id <= end; id++ {
				seen[id] = struct{}{}
			}
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid trade id %q", part)
		}
		seen[id] = struct{}{}
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, nil
}

// FilterInputs returns the inputs of group, restricted to ids when ids is
// not empty, sorted by numeric trade id.
func FilterInputs(inputs []model.Input, group string, ids []int) []model.Input {
	wanted := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}

	out := make([]model.Input, 0, len(inputs))
	for _, in := range inputs {
		if in.TradeGroup != group {
			continue
		}
		if len(wanted) > 0 {
			if _, ok := wanted[in.TradeNumber()]; !ok {
				continue
			}
		}
		out = append(out, in)
	}
	SortInputs(out)
	return out
}

// SortInputs orders inputs by numeric trade id, then by trade id text.
func SortInputs(inputs []model.Input) {
	sort.SliceStable(inputs, func(i, j int) bool {
		a, b := inputs[i].TradeNumber(), inputs[j].TradeNumber()
		if a != b {
			return a < b
		}
		return inputs[i].TradeID < inputs[j].TradeID
	})
}

// startTrial returns ctx tagged with trialID for completions and logging.
func startTrial(ctx context.Context, spec model.SolutionSpec, trialID string) (context.Context, error) {
	if _, ok := llm.TrialFrom(ctx); ok {
		return nil, ErrTrialAlreadySet
	}
	ctx = llm.WithTrial(ctx, trialID)
	ctx = log.ContextWithTrialID(ctx, trialID)
	return log.ContextWithSolution(ctx, spec.ID), nil
}
