package runner

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeSolution struct {
	spec    model.SolutionSpec
	failOn  string
	process func(ctx context.Context, in model.Input, trialID string) (model.Output, error)
}

func (f *fakeSolution) Spec() model.SolutionSpec { return f.spec }

func (f *fakeSolution) ProcessInput(ctx context.Context, in model.Input, trialID string) (model.Output, error) {
	if f.process != nil {
		return f.process(ctx, in, trialID)
	}
	if in.TradeID == f.failOn {
		return model.Output{}, errors.New("boom")
	}
	o := model.NewOutput(f.spec.ID, trialID, in)
	o.TenorYears = "5"
	return o, nil
}

type collector struct {
	mu      sync.Mutex
	outputs []model.Output
}

func (c *collector) Submit(_ context.Context, o model.Output) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outputs = append(c.outputs, o)
	return nil
}

func (c *collector) keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var keys []string
	for _, o := range c.outputs {
		keys = append(keys, o.TradeID+"/"+o.TrialID)
	}
	sort.Strings(keys)
	return keys
}

func inputs() []model.Input {
	return []model.Input{
		{TradeGroup: "Swaps", TradeID: "1", EntryText: "one"},
		{TradeGroup: "Swaps", TradeID: "2", EntryText: "two"},
	}
}

func newRunner(sol *fakeSolution, sink Sink) *Runner {
	return New(config.RunnerConfig{Concurrency: 2}, sol, inputs(), sink, WithLogger(zerolog.Nop()))
}

func TestGenerate(t *testing.T) {
	c := &collector{}
	r := newRunner(&fakeSolution{spec: model.SolutionSpec{ID: "OneStep"}}, c)

	stats, err := r.Generate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Processed)
	assert.Equal(t, []string{"1/0", "2/0"}, c.keys())
}

func TestRunTrials(t *testing.T) {
	c := &collector{}
	r := newRunner(&fakeSolution{spec: model.SolutionSpec{ID: "OneStep"}}, c)

	stats, err := r.RunTrials(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Inputs)
	assert.Equal(t, 3, stats.Trials)
	assert.Equal(t, int64(6), stats.Processed)
	assert.Equal(t, []string{"1/1", "1/2", "1/3", "2/1", "2/2", "2/3"}, c.keys())

	_, err = r.RunTrials(context.Background(), 0)
	assert.Error(t, err)
}

func TestRunStopsOnError(t *testing.T) {
	c := &collector{}
	r := newRunner(&fakeSolution{spec: model.SolutionSpec{ID: "OneStep"}, failOn: "2"}, c)

	stats, err := r.RunTrials(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trade 2 trial 1")
	assert.Equal(t, int64(1), stats.Errors)
}

func TestRunSinkError(t *testing.T) {
	sinkErr := errors.New("writer stopped")
	r := newRunner(&fakeSolution{spec: model.SolutionSpec{ID: "OneStep"}},
		SinkFunc(func(context.Context, model.Output) error { return sinkErr }))

	_, err := r.Generate(context.Background())
	assert.ErrorIs(t, err, sinkErr)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	sol := &fakeSolution{
		spec: model.SolutionSpec{ID: "OneStep"},
		process: func(ctx context.Context, in model.Input, trialID string) (model.Output, error) {
			cancel()
			<-ctx.Done()
			return model.Output{}, ctx.Err()
		},
	}
	r := newRunner(sol, &collector{})

	_, err := r.RunTrials(ctx, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSelectInputs(t *testing.T) {
	all := append(inputs(),
		model.Input{TradeGroup: "Swaps", TradeID: "3"},
		model.Input{TradeGroup: "Bonds", TradeID: "1"},
	)

	got, err := SelectInputs(model.SolutionSpec{ID: "s", TradeGroup: "Swaps", TradeIDs: "3, 1"}, all)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].TradeID)
	assert.Equal(t, "3", got[1].TradeID)

	_, err = SelectInputs(model.SolutionSpec{ID: "s", TradeIDs: "x"}, all)
	assert.Error(t, err)
}

func TestTrialIDs(t *testing.T) {
	assert.Equal(t, []string{"1", "2", "3"}, TrialIDs(3))
	assert.Empty(t, TrialIDs(0))
}
