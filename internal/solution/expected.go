package solution

import (
	"context"
	"errors"

	"github.com/rickgao/tradeentry-hackathon/internal/model"
)

// ErrNoGenerate is returned by solutions whose outputs are loaded rather
// than generated.
var ErrNoGenerate = errors.New("expected results are preloaded and cannot be generated")

// ExpectedResults is the reference solution. Its outputs are stored under
// trial "0" by the preloader.
type ExpectedResults struct {
	spec model.SolutionSpec
}

// NewExpectedResults returns the reference solution for spec's trade group.
func NewExpectedResults(spec model.SolutionSpec) *ExpectedResults {
	spec.Kind = model.KindExpectedResults
	return &ExpectedResults{spec: spec}
}

func (e *ExpectedResults) Spec() model.SolutionSpec { return e.spec }

// ProcessInput always fails with ErrNoGenerate.
func (e *ExpectedResults) ProcessInput(context.Context, model.Input, string) (model.Output, error) {
	return model.Output{}, ErrNoGenerate
}
