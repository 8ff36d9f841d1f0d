// Package report writes scoring results to files.
package report

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/renameio/v2"

	"github.com/rickgao/tradeentry-hackathon/internal/log"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
	"github.com/rickgao/tradeentry-hackathon/internal/scoring"
)

// Report is everything written for one solution.
type Report struct {
	Scoring    model.Scoring
	Statistics []model.Statistics
	Heatmap    scoring.Heatmap
}

// Paths returns the files Write creates for solutionID under dir.
func Paths(dir, solutionID string) (statistics, heatmap, summary string) {
	base := filepath.Join(dir, strings.NewReplacer("/", "-", `\`, "-").Replace(solutionID))
	return base + ".statistics.csv", base + ".heatmap.csv", base + ".score.txt"
}

// Write creates dir if needed and replaces the three report files.
// Each file is written to a temporary name and renamed into place.
func Write(ctx context.Context, dir string, r Report) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create report dir: %w", err)
	}
	statsPath, heatmapPath, summaryPath := Paths(dir, r.Scoring.Solution)

	if err := writeAtomic(ctx, statsPath, func(w io.Writer) error { return WriteStatistics(w, r.Statistics) }); err != nil {
		return err
	}
	if err := writeAtomic(ctx, heatmapPath, func(w io.Writer) error { return WriteHeatmap(w, r.Heatmap) }); err != nil {
		return err
	}
	return writeAtomic(ctx, summaryPath, func(w io.Writer) error { return WriteSummary(w, r.Scoring) })
}

func writeAtomic(ctx context.Context, path string, write func(io.Writer) error) error {
	logger := log.FromContext(ctx)

	pendingFile, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending file %s: %w", path, err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("cleanup pending report file")
		}
	}()

	if err := write(pendingFile); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}

// WriteStatistics writes one row per trade with a column per field.
func WriteStatistics(w io.Writer, stats []model.Statistics) error {
	cw := csv.NewWriter(w)
	header := append([]string{"TradeId", "EntryText"}, model.FieldNames()...)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, st := range stats {
		row := []string{st.TradeID, st.EntryText}
		for _, f := range model.FieldNames() {
			row = append(row, st.Fields[f])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteHeatmap writes the match rates with trades as rows.
func WriteHeatmap(w io.Writer, hm scoring.Heatmap) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{hm.YLabel + " \\ " + hm.XLabel}, hm.Columns...)); err != nil {
		return err
	}
	for i, label := range hm.Rows {
		row := []string{label}
		for _, v := range hm.Values[i] {
			row = append(row, strconv.FormatFloat(v, 'f', 2, 64))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSummary writes the total score.
func WriteSummary(w io.Writer, sc model.Scoring) error {
	if sc.Score == nil || sc.MaxScore == nil {
		_, err := fmt.Fprintf(w, "Solution: %s\nTrials: %d\nScore: not scored\n", sc.Solution, sc.TrialCount)
		return err
	}
	_, err := fmt.Fprintf(w, "Solution: %s\nTrials: %d\nScore: %d/%d (%.2f%%)\n",
		sc.Solution, sc.TrialCount, *sc.Score, *sc.MaxScore, sc.Percent())
	return err
}
