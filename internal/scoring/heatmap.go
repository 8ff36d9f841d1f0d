package scoring

import (
	"context"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/rickgao/tradeentry-hackathon/internal/model"
)

// Heatmap holds the fraction of trials in which each field of each trade
// matched the expected value.
type Heatmap struct {
	Solution string `json:"solution"`
	// Rows has one label per trade, "Trade 1" first.
	Rows []string `json:"rows"`
	// Columns has one label per scored field.
	Columns []string `json:"columns"`
	// Values[i][j] is the match rate of field j for trade i.
	Values   [][]float64 `json:"values"`
	Expected [][]float64 `json:"expected"`
	XLabel   string      `json:"x_label"`
	YLabel   string      `json:"y_label"`
}

// FieldLabel turns a field name such as pay_leg_notional into "Pay Notional".
func FieldLabel(field string) string {
	label := cases.Title(language.English).String(strings.ReplaceAll(field, "_", " "))
	return strings.ReplaceAll(label, "Leg ", "")
}

// Heatmap builds the heatmap from the score items of the last scoring run.
func (s *Scorer) Heatmap(ctx context.Context, solutionID string) (Heatmap, error) {
	hm := Heatmap{Solution: solutionID, XLabel: "Fields", YLabel: "Trades"}

	spec, err := s.store.GetSolution(ctx, solutionID)
	if err != nil {
		return hm, err
	}
	trials, err := s.trialCount(ctx, solutionID)
	if err != nil {
		return hm, err
	}
	inputs, err := s.Inputs(ctx, spec)
	if err != nil {
		return hm, err
	}
	items, err := s.store.ListScoreItems(ctx, solutionID)
	if err != nil {
		return hm, err
	}
	return BuildHeatmap(solutionID, inputs, items, trials), nil
}

// BuildHeatmap computes match rates rounded to two places.
func BuildHeatmap(solutionID string, inputs []model.Input, items []model.ScoreItem, trials int) Heatmap {
	if trials < 1 {
		trials = 1
	}
	fields := model.FieldNames()
	hm := Heatmap{Solution: solutionID, XLabel: "Fields", YLabel: "Trades"}
	for _, f := range fields {
		hm.Columns = append(hm.Columns, FieldLabel(f))
	}

	matches := make(map[string]map[string]int)
	for _, it := range items {
		key := it.TradeGroup + "/" + it.TradeID
		if matches[key] == nil {
			matches[key] = make(map[string]int)
		}
		for _, f := range it.MatchedFields {
			matches[key][f]++
		}
	}

	for i, in := range inputs {
		hm.Rows = append(hm.Rows, fmt.Sprintf("Trade %d", i+1))
		row := make([]float64, len(fields))
		ones := make([]float64, len(fields))
		m := matches[in.TradeGroup+"/"+in.TradeID]
		for j, f := range fields {
			row[j] = math.Round(float64(m[f])/float64(trials)*100) / 100
			ones[j] = 1
		}
		hm.Values = append(hm.Values, row)
		hm.Expected = append(hm.Expected, ones)
	}
	return hm
}
