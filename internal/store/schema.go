package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rickgao/tradeentry-hackathon/internal/model"
)

var outputKeyColumns = []string{"solution", "trade_group", "trade_id", "trial_id"}

var outputColumns = append(append(append([]string{}, outputKeyColumns...), "entry_text"), model.FieldNames()...)

func schema() []string {
	fields := make([]string, 0, len(model.FieldNames()))
	for _, f := range model.FieldNames() {
		fields = append(fields, fmt.Sprintf("%s TEXT NOT NULL DEFAULT ''", f))
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS inputs (
			trade_group TEXT NOT NULL,
			trade_id    TEXT NOT NULL,
			entry_text  TEXT NOT NULL,
			PRIMARY KEY (trade_group, trade_id)
		)`,
		`CREATE TABLE IF NOT EXISTS outputs (
			solution    TEXT NOT NULL,
			trade_group TEXT NOT NULL,
			trade_id    TEXT NOT NULL,
			trial_id    TEXT NOT NULL,
			entry_text  TEXT NOT NULL DEFAULT '',
			` + strings.Join(fields, ",\n\t\t\t") + `,
			PRIMARY KEY (solution, trade_group, trade_id, trial_id)
		)`,
		`CREATE TABLE IF NOT EXISTS solutions (
			id   TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			spec TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS scorings (
			solution    TEXT PRIMARY KEY,
			trial_count INTEGER NOT NULL,
			score       INTEGER,
			max_score   INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS score_items (
			solution    TEXT NOT NULL,
			trade_group TEXT NOT NULL,
			trade_id    TEXT NOT NULL,
			trial_id    TEXT NOT NULL,
			matched     TEXT NOT NULL,
			mismatched  TEXT NOT NULL,
			PRIMARY KEY (solution, trade_group, trade_id, trial_id)
		)`,
	}
}

// Queries use ? placeholders; the Postgres store rebinds them.
var (
	upsertInputSQL = `INSERT INTO inputs (trade_group, trade_id, entry_text) VALUES (?, ?, ?)
		ON CONFLICT (trade_group, trade_id) DO UPDATE SET entry_text = excluded.entry_text`

	upsertOutputSQL = func() string {
		updates := make([]string, 0, len(outputColumns))
		for _, c := range outputColumns[len(outputKeyColumns):] {
			updates = append(updates, c+" = excluded."+c)
		}
		return "INSERT INTO outputs (" + strings.Join(outputColumns, ", ") + ") VALUES (" +
			placeholders(len(outputColumns)) + ") ON CONFLICT (" + strings.Join(outputKeyColumns, ", ") +
			") DO UPDATE SET " + strings.Join(updates, ", ")
	}()

	selectOutputsSQL = "SELECT " + strings.Join(outputColumns, ", ") + " FROM outputs"

	upsertSolutionSQL = `INSERT INTO solutions (id, kind, spec) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET kind = excluded.kind, spec = excluded.spec`

	upsertScoringSQL = `INSERT INTO scorings (solution, trial_count, score, max_score) VALUES (?, ?, ?, ?)
		ON CONFLICT (solution) DO UPDATE SET trial_count = excluded.trial_count,
			score = excluded.score, max_score = excluded.max_score`

	insertScoreItemSQL = `INSERT INTO score_items (solution, trade_group, trade_id, trial_id, matched, mismatched)
		VALUES (?, ?, ?, ?, ?, ?)`
)

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// rebind converts ? placeholders to $1, $2, ...
func rebind(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 16)
	n := 0
	for i := 0; i < len(q); i++ {
		if q[i] == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteByte(q[i])
	}
	return b.String()
}

func outputArgs(o model.Output) []any {
	args := []any{o.Solution, o.TradeGroup, o.TradeID, o.TrialID, o.EntryText}
	for _, v := range o.Values() {
		args = append(args, v)
	}
	return args
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return int64(*p)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOutput(s scanner) (model.Output, error) {
	vals := make([]string, len(outputColumns))
	dest := make([]any, len(vals))
	for i := range vals {
		dest[i] = &vals[i]
	}
	if err := s.Scan(dest...); err != nil {
		return model.Output{}, err
	}

	o := model.Output{
		OutputKey: model.OutputKey{Solution: vals[0], TradeGroup: vals[1], TradeID: vals[2], TrialID: vals[3]},
		EntryText: vals[4],
	}
	for i, f := range model.FieldNames() {
		if err := o.SetField(f, vals[5+i]); err != nil {
			return model.Output{}, err
		}
	}
	return o, nil
}

func encodeSpec(spec model.SolutionSpec) (string, error) {
	b, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("encode solution: %w", err)
	}
	return string(b), nil
}

func decodeSpec(data string) (model.SolutionSpec, error) {
	var spec model.SolutionSpec
	if err := json.Unmarshal([]byte(data), &spec); err != nil {
		return spec, fmt.Errorf("decode solution: %w", err)
	}
	return spec, nil
}

func encodeFields(fields []string) string {
	if fields == nil {
		fields = []string{}
	}
	b, _ := json.Marshal(fields)
	return string(b)
}

func decodeFields(data string) ([]string, error) {
	var fields []string
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return nil, fmt.Errorf("decode score item fields: %w", err)
	}
	return fields, nil
}

func scanScoreItem(s scanner) (model.ScoreItem, error) {
	var item model.ScoreItem
	var matched, mismatched string
	if err := s.Scan(&item.Solution, &item.TradeGroup, &item.TradeID, &item.TrialID, &matched, &mismatched); err != nil {
		return item, err
	}
	var err error
	if item.MatchedFields, err = decodeFields(matched); err != nil {
		return item, err
	}
	if item.MismatchedFields, err = decodeFields(mismatched); err != nil {
		return item, err
	}
	return item, nil
}
