package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "store.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func output(solution, tradeID, trialID string) model.Output {
	o := model.NewOutput(solution, trialID, model.Input{TradeGroup: "Swaps", TradeID: tradeID, EntryText: "trade " + tradeID})
	o.PayLegCcy = "USD"
	o.TenorYears = "5"
	return o
}

func TestInputs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveInputs(ctx, []model.Input{
		{TradeGroup: "Swaps", TradeID: "10", EntryText: "ten"},
		{TradeGroup: "Swaps", TradeID: "2", EntryText: "two"},
		{TradeGroup: "Bonds", TradeID: "1", EntryText: "one"},
	}))
	require.NoError(t, s.SaveInputs(ctx, []model.Input{{TradeGroup: "Swaps", TradeID: "2", EntryText: "two again"}}))

	got, err := s.ListInputs(ctx, "Swaps")
	require.NoError(t, err)
	want := []model.Input{
		{TradeGroup: "Swaps", TradeID: "2", EntryText: "two again"},
		{TradeGroup: "Swaps", TradeID: "10", EntryText: "ten"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListInputs() mismatch (-want +got):\n%s", diff)
	}

	all, err := s.ListInputs(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Bonds", all[0].TradeGroup)
}

func TestOutputs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveOutputs(ctx, []model.Output{
		output("OneStep", "2", "1"),
		output("OneStep", "1", "2"),
		output("OneStep", "1", "1"),
		output("Other", "1", "1"),
	}))

	got, err := s.GetOutput(ctx, model.OutputKey{Solution: "OneStep", TradeGroup: "Swaps", TradeID: "1", TrialID: "2"})
	require.NoError(t, err)
	assert.Equal(t, output("OneStep", "1", "2"), got)

	updated := output("OneStep", "1", "2")
	updated.PayLegCcy = "EUR"
	require.NoError(t, s.SaveOutputs(ctx, []model.Output{updated}))
	got, err = s.GetOutput(ctx, updated.Key())
	require.NoError(t, err)
	assert.Equal(t, "EUR", got.PayLegCcy)

	list, err := s.ListOutputs(ctx, "OneStep")
	require.NoError(t, err)
	var keys []string
	for _, o := range list {
		keys = append(keys, o.TradeID+"/"+o.TrialID)
	}
	assert.Equal(t, []string{"1/1", "1/2", "2/1"}, keys)

	require.NoError(t, s.DeleteOutputs(ctx, "OneStep", "1"))
	list, err = s.ListOutputs(ctx, "OneStep")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "2", list[0].TrialID)

	require.NoError(t, s.DeleteOutputs(ctx, "OneStep", ""))
	list, err = s.ListOutputs(ctx, "OneStep")
	require.NoError(t, err)
	assert.Empty(t, list)

	other, err := s.ListOutputs(ctx, "Other")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}

func TestGetOutputNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetOutput(context.Background(), model.OutputKey{Solution: "x", TradeGroup: "g", TradeID: "1", TrialID: "0"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSolutions(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	spec := model.SolutionSpec{ID: "OneStep", Kind: model.KindOneStep, LLM: "gpt-4o", TradeGroup: "Swaps", Prompt: "{input_text}", Votes: 3}
	require.NoError(t, s.SaveSolution(ctx, spec))
	require.NoError(t, s.SaveSolution(ctx, model.SolutionSpec{ID: "Annotation", Kind: model.KindAnnotation, LLM: "gpt-4o"}))

	got, err := s.GetSolution(ctx, "OneStep")
	require.NoError(t, err)
	assert.Equal(t, spec, got)

	spec.Votes = 5
	require.NoError(t, s.SaveSolution(ctx, spec))
	got, err = s.GetSolution(ctx, "OneStep")
	require.NoError(t, err)
	assert.Equal(t, 5, got.Votes)

	all, err := s.ListSolutions(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Annotation", all[0].ID)

	_, err = s.GetSolution(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScoring(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.SaveScoring(ctx, model.Scoring{Solution: "OneStep", TrialCount: 2}))
	got, err := s.GetScoring(ctx, "OneStep")
	require.NoError(t, err)
	assert.Nil(t, got.Score)
	assert.Nil(t, got.MaxScore)

	score, maxScore := 30, 34
	require.NoError(t, s.SaveScoring(ctx, model.Scoring{Solution: "OneStep", TrialCount: 2, Score: &score, MaxScore: &maxScore}))
	got, err = s.GetScoring(ctx, "OneStep")
	require.NoError(t, err)
	require.NotNil(t, got.Score)
	assert.Equal(t, 30, *got.Score)
	assert.Equal(t, 34, *got.MaxScore)
	assert.Equal(t, 2, got.TrialCount)

	_, err = s.GetScoring(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScoreItems(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := []model.ScoreItem{
		{Solution: "OneStep", TradeGroup: "Swaps", TradeID: "3", TrialID: "1", MatchedFields: []string{"tenor_years"}, MismatchedFields: []string{"pay_leg_ccy"}},
		{Solution: "OneStep", TradeGroup: "Swaps", TradeID: "1", TrialID: "1", MatchedFields: []string{"pay_leg_ccy"}},
	}
	require.NoError(t, s.ReplaceScoreItems(ctx, "OneStep", first))

	got, err := s.ListScoreItems(ctx, "OneStep")
	require.NoError(t, err)
	want := []model.ScoreItem{
		{Solution: "OneStep", TradeGroup: "Swaps", TradeID: "1", TrialID: "1", MatchedFields: []string{"pay_leg_ccy"}, MismatchedFields: []string{}},
		first[0],
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListScoreItems() mismatch (-want +got):\n%s", diff)
	}

	require.NoError(t, s.ReplaceScoreItems(ctx, "OneStep", first[:1]))
	got, err = s.ListScoreItems(ctx, "OneStep")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestRebind(t *testing.T) {
	assert.Equal(t, "a = $1 AND b = $2", rebind("a = ? AND b = ?"))
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mysql"})
	assert.Error(t, err)
}
