package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/tradeentry-hackathon/internal/model"
	"github.com/rickgao/tradeentry-hackathon/internal/scoring"
)

func intPtr(v int) *int { return &v }

func sampleReport() Report {
	inputs := []model.Input{{TradeGroup: "G", TradeID: "1"}}
	items := []model.ScoreItem{{TradeGroup: "G", TradeID: "1", TrialID: "1", MatchedFields: []string{model.FieldEffectiveDate}}}
	return Report{
		Scoring: model.Scoring{Solution: "OneStep", TrialCount: 1, Score: intPtr(1), MaxScore: intPtr(4)},
		Statistics: []model.Statistics{{
			Solution:  "OneStep",
			TradeID:   "1",
			EntryText: "pay fixed, receive float",
			Fields:    map[string]string{model.FieldTenorYears: "5 (exp)\n10"},
		}},
		Heatmap: scoring.BuildHeatmap("OneStep", inputs, items, 1),
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, Write(context.Background(), dir, sampleReport()))

	statsPath, heatmapPath, summaryPath := Paths(dir, "OneStep")

	summary, err := os.ReadFile(summaryPath)
	require.NoError(t, err)
	assert.Equal(t, "Solution: OneStep\nTrials: 1\nScore: 1/4 (25.00%)\n", string(summary))

	f, err := os.Open(statsPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "TradeId", rows[0][0])
	assert.Equal(t, "pay fixed, receive float", rows[1][1])
	assert.Equal(t, "5 (exp)\n10", rows[1][4])

	hm, err := os.ReadFile(heatmapPath)
	require.NoError(t, err)
	rows, err = csv.NewReader(bytes.NewReader(hm)).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Effective Date", rows[0][1])
	assert.Equal(t, []string{"Trade 1", "1.00", "0.00"}, rows[1][:3])

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestWriteSummaryNotScored(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSummary(&buf, model.Scoring{Solution: "x", TrialCount: 2}))
	assert.Equal(t, "Solution: x\nTrials: 2\nScore: not scored\n", buf.String())
}

func TestPathsSanitize(t *testing.T) {
	stats, _, _ := Paths("d", "team/a")
	assert.Equal(t, filepath.Join("d", "team-a.statistics.csv"), stats)
}
