package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the persistence layer.
type Store interface {
	SaveInputs(ctx context.Context, inputs []model.Input) error
	// ListInputs returns the inputs of group, or all inputs when group is empty.
	ListInputs(ctx context.Context, group string) ([]model.Input, error)

	SaveOutputs(ctx context.Context, outputs []model.Output) error
	GetOutput(ctx context.Context, key model.OutputKey) (model.Output, error)
	ListOutputs(ctx context.Context, solution string) ([]model.Output, error)
	// DeleteOutputs removes the outputs of solution for trialID, or for
	// every trial when trialID is empty.
	DeleteOutputs(ctx context.Context, solution, trialID string) error

	SaveSolution(ctx context.Context, spec model.SolutionSpec) error
	GetSolution(ctx context.Context, id string) (model.SolutionSpec, error)
	ListSolutions(ctx context.Context) ([]model.SolutionSpec, error)

	SaveScoring(ctx context.Context, s model.Scoring) error
	GetScoring(ctx context.Context, solution string) (model.Scoring, error)

	ReplaceScoreItems(ctx context.Context, solution string, items []model.ScoreItem) error
	ListScoreItems(ctx context.Context, solution string) ([]model.ScoreItem, error)

	Close() error
}

// Open connects to the store selected by cfg and migrates its schema.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverSQLite, "":
		return OpenSQLite(ctx, cfg.SQLite)
	case config.DriverPostgres:
		return OpenPostgres(ctx, cfg.Postgres)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

func number(id string) int {
	n, err := strconv.Atoi(id)
	if err != nil {
		return -1
	}
	return n
}

func sortOutputs(outputs []model.Output) {
	sort.SliceStable(outputs, func(i, j int) bool {
		a, b := outputs[i], outputs[j]
		if a.TradeGroup != b.TradeGroup {
			return a.TradeGroup < b.TradeGroup
		}
		if x, y := number(a.TradeID), number(b.TradeID); x != y {
			return x < y
		}
		if a.TradeID != b.TradeID {
			return a.TradeID < b.TradeID
		}
		return number(a.TrialID) < number(b.TrialID) ||
			(number(a.TrialID) == number(b.TrialID) && a.TrialID < b.TrialID)
	})
}

func sortInputs(inputs []model.Input) {
	sort.SliceStable(inputs, func(i, j int) bool {
		a, b := inputs[i], inputs[j]
		if a.TradeGroup != b.TradeGroup {
			return a.TradeGroup < b.TradeGroup
		}
		if x, y := a.TradeNumber(), b.TradeNumber(); x != y {
			return x < y
		}
		return a.TradeID < b.TradeID
	})
}

func sortScoreItems(items []model.ScoreItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if x, y := number(a.TradeID), number(b.TradeID); x != y {
			return x < y
		}
		return number(a.TrialID) < number(b.TrialID)
	})
}
