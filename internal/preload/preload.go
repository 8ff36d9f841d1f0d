package preload

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
	"github.com/rickgao/tradeentry-hackathon/internal/log"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
	"github.com/rickgao/tradeentry-hackathon/internal/solution"
	"github.com/rickgao/tradeentry-hackathon/internal/store"
)

const (
	colTradeGroup = "tradegroup"
	colTradeID    = "tradeid"
	colEntryText  = "entrytext"
)

// Loader writes preload files to a store.
type Loader struct {
	store  store.Store
	logger zerolog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(ld *Loader) { ld.logger = l }
}

// NewLoader creates a Loader.
func NewLoader(st store.Store, opts ...Option) *Loader {
	l := &Loader{store: st, logger: log.WithComponent("preload")}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Summary counts loaded records.
type Summary struct {
	Inputs    int
	Expected  int
	Solutions int
}

// LoadFiles loads every file named in cfg. Empty paths are skipped.
// Inputs are loaded before expected results, which are checked against them.
func (l *Loader) LoadFiles(ctx context.Context, cfg config.PreloadConfig) (Summary, error) {
	var sum Summary
	steps := []struct {
		path string
		load func(context.Context, io.Reader) (int, error)
		n    *int
	}{
		{cfg.Inputs, l.LoadInputs, &sum.Inputs},
		{cfg.Expected, l.LoadExpected, &sum.Expected},
		{cfg.Solutions, l.LoadSolutions, &sum.Solutions},
	}
	for _, s := range steps {
		if s.path == "" {
			continue
		}
		n, err := loadFile(ctx, s.path, s.load)
		if err != nil {
			return sum, fmt.Errorf("preload %s: %w", s.path, err)
		}
		*s.n = n
		l.logger.Info().Str("path", s.path).Int("records", n).Msg("preloaded")
	}
	return sum, nil
}

func loadFile(ctx context.Context, path string, load func(context.Context, io.Reader) (int, error)) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return load(ctx, f)
}

// LoadInputs reads TradeGroup, TradeId, EntryText rows.
func (l *Loader) LoadInputs(ctx context.Context, r io.Reader) (int, error) {
	rows, err := readCSV(r, colTradeGroup, colTradeID, colEntryText)
	if err != nil {
		return 0, err
	}
	inputs := make([]model.Input, 0, len(rows))
	for _, row := range rows {
		inputs = append(inputs, model.Input{
			TradeGroup: row[colTradeGroup],
			TradeID:    row[colTradeID],
			EntryText:  row[colEntryText],
		})
	}
	if err := l.store.SaveInputs(ctx, inputs); err != nil {
		return 0, err
	}
	return len(inputs), nil
}

// LoadExpected reads expected outputs and stores them as ExpectedResults
// trial "0". Each row must match a loaded input with the same entry text.
// Missing field columns are left empty.
func (l *Loader) LoadExpected(ctx context.Context, r io.Reader) (int, error) {
	rows, err := readCSV(r, colTradeGroup, colTradeID, colEntryText)
	if err != nil {
		return 0, err
	}

	inputs, err := l.store.ListInputs(ctx, "")
	if err != nil {
		return 0, err
	}
	byKey := make(map[string]model.Input, len(inputs))
	for _, in := range inputs {
		byKey[in.TradeGroup+"/"+in.TradeID] = in
	}

	group := ""
	outputs := make([]model.Output, 0, len(rows))
	for i, row := range rows {
		in, ok := byKey[row[colTradeGroup]+"/"+row[colTradeID]]
		if !ok {
			return 0, fmt.Errorf("row %d: no input for trade %s/%s", i+2, row[colTradeGroup], row[colTradeID])
		}
		if !SameEntryText(in.EntryText, row[colEntryText]) {
			return 0, fmt.Errorf("row %d: entry text of trade %s/%s does not match its input", i+2, in.TradeGroup, in.TradeID)
		}

		o := model.NewOutput(model.ExpectedResultsID, model.GenerateTrialID, in)
		for _, f := range model.FieldNames() {
			if v, ok := row[normalizeHeader(f)]; ok {
				_ = o.SetField(f, strings.TrimSpace(v))
			}
		}
		outputs = append(outputs, o)
		if group == "" {
			group = in.TradeGroup
		}
	}

	if len(outputs) == 0 {
		return 0, nil
	}
	if err := l.store.SaveOutputs(ctx, outputs); err != nil {
		return 0, err
	}
	spec := model.SolutionSpec{ID: model.ExpectedResultsID, Kind: model.KindExpectedResults, TradeGroup: group}
	if err := l.store.SaveSolution(ctx, spec); err != nil {
		return 0, err
	}
	return len(outputs), nil
}

// LoadSolutions reads a YAML list of solution definitions. Each is checked
// before anything is saved.
func (l *Loader) LoadSolutions(ctx context.Context, r io.Reader) (int, error) {
	var specs []model.SolutionSpec
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&specs); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("parse solutions: %w", err)
	}

	seen := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if err := ValidateSpec(spec); err != nil {
			return 0, err
		}
		if seen[spec.ID] {
			return 0, fmt.Errorf("duplicate solution id %q", spec.ID)
		}
		seen[spec.ID] = true
	}
	for _, spec := range specs {
		if err := l.store.SaveSolution(ctx, spec); err != nil {
			return 0, err
		}
	}
	return len(specs), nil
}

// ValidateSpec checks a solution definition without resolving its model.
func ValidateSpec(spec model.SolutionSpec) error {
	if spec.ID == "" {
		return errors.New("solution id is required")
	}
	if _, err := solution.ParseTradeIDs(spec.TradeIDs); err != nil {
		return fmt.Errorf("solution %s: %w", spec.ID, err)
	}
	switch spec.Kind {
	case model.KindOneStep:
		if !strings.Contains(spec.Prompt, "{input_text}") {
			return fmt.Errorf("solution %s: prompt must contain {input_text}", spec.ID)
		}
	case model.KindAnnotation:
	case model.KindExpectedResults:
		return nil
	default:
		return fmt.Errorf("solution %s: unknown kind %q", spec.ID, spec.Kind)
	}
	if spec.LLM == "" {
		return fmt.Errorf("solution %s: llm is required", spec.ID)
	}
	if spec.TradeGroup == "" {
		return fmt.Errorf("solution %s: trade_group is required", spec.ID)
	}
	return nil
}

// SameEntryText compares entry texts ignoring surrounding space and case.
func SameEntryText(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(h), "_", ""))
}

// readCSV returns each data row keyed by normalized header.
func readCSV(r io.Reader, required ...string) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make([]string, len(header))
	have := make(map[string]bool, len(header))
	for i, h := range header {
		cols[i] = normalizeHeader(h)
		have[cols[i]] = true
	}
	for _, c := range required {
		if !have[c] {
			return nil, fmt.Errorf("missing column %q", c)
		}
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make(map[string]string, len(cols))
		for i, v := range rec {
			row[cols[i]] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}
