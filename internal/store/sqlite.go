package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
	"github.com/rickgao/tradeentry-hackathon/internal/database"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
)

// SQLiteStore is a Store backed by an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens the database file and creates missing tables.
func OpenSQLite(ctx context.Context, cfg config.SQLiteConfig) (*SQLiteStore, error) {
	db, err := database.OpenSQLite(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &SQLiteStore{db: db}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	for _, stmt := range schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// DB exposes the underlying handle.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// withTx runs fn in a transaction, committing when fn returns nil.
func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) SaveInputs(ctx context.Context, inputs []model.Input) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertInputSQL)
		if err != nil {
			return fmt.Errorf("prepare input upsert: %w", err)
		}
		defer stmt.Close()
		for _, in := range inputs {
			if _, err := stmt.ExecContext(ctx, in.TradeGroup, in.TradeID, in.EntryText); err != nil {
				return fmt.Errorf("save input %s/%s: %w", in.TradeGroup, in.TradeID, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) ListInputs(ctx context.Context, group string) ([]model.Input, error) {
	q := "SELECT trade_group, trade_id, entry_text FROM inputs"
	var args []any
	if group != "" {
		q += " WHERE trade_group = ?"
		args = append(args, group)
	}
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	defer rows.Close()

	var inputs []model.Input
	for rows.Next() {
		var in model.Input
		if err := rows.Scan(&in.TradeGroup, &in.TradeID, &in.EntryText); err != nil {
			return nil, fmt.Errorf("scan input: %w", err)
		}
		inputs = append(inputs, in)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	sortInputs(inputs)
	return inputs, nil
}

func (s *SQLiteStore) SaveOutputs(ctx context.Context, outputs []model.Output) error {
	if len(outputs) == 0 {
		return nil
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, upsertOutputSQL)
		if err != nil {
			return fmt.Errorf("prepare output upsert: %w", err)
		}
		defer stmt.Close()
		for _, o := range outputs {
			if _, err := stmt.ExecContext(ctx, outputArgs(o)...); err != nil {
				return fmt.Errorf("save output %s: %w", o.OutputKey, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) GetOutput(ctx context.Context, key model.OutputKey) (model.Output, error) {
	row := s.db.QueryRowContext(ctx,
		selectOutputsSQL+" WHERE solution = ? AND trade_group = ? AND trade_id = ? AND trial_id = ?",
		key.Solution, key.TradeGroup, key.TradeID, key.TrialID)
	o, err := scanOutput(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Output{}, fmt.Errorf("output %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return model.Output{}, fmt.Errorf("get output %s: %w", key, err)
	}
	return o, nil
}

func (s *SQLiteStore) ListOutputs(ctx context.Context, solution string) ([]model.Output, error) {
	rows, err := s.db.QueryContext(ctx, selectOutputsSQL+" WHERE solution = ?", solution)
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	defer rows.Close()

	var outputs []model.Output
	for rows.Next() {
		o, err := scanOutput(rows)
		if err != nil {
			return nil, fmt.Errorf("scan output: %w", err)
		}
		outputs = append(outputs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	sortOutputs(outputs)
	return outputs, nil
}

func (s *SQLiteStore) DeleteOutputs(ctx context.Context, solution, trialID string) error {
	q := "DELETE FROM outputs WHERE solution = ?"
	args := []any{solution}
	if trialID != "" {
		q += " AND trial_id = ?"
		args = append(args, trialID)
	}
	if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
		return fmt.Errorf("delete outputs of %s: %w", solution, err)
	}
	return nil
}

func (s *SQLiteStore) SaveSolution(ctx context.Context, spec model.SolutionSpec) error {
	data, err := encodeSpec(spec)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, upsertSolutionSQL, spec.ID, spec.Kind, data); err != nil {
		return fmt.Errorf("save solution %s: %w", spec.ID, err)
	}
	return nil
}

func (s *SQLiteStore) GetSolution(ctx context.Context, id string) (model.SolutionSpec, error) {
	var data string
	err := s.db.QueryRowContext(ctx, "SELECT spec FROM solutions WHERE id = ?", id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return model.SolutionSpec{}, fmt.Errorf("solution %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.SolutionSpec{}, fmt.Errorf("get solution %s: %w", id, err)
	}
	return decodeSpec(data)
}

func (s *SQLiteStore) ListSolutions(ctx context.Context) ([]model.SolutionSpec, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT spec FROM solutions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list solutions: %w", err)
	}
	defer rows.Close()

	var specs []model.SolutionSpec
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan solution: %w", err)
		}
		spec, err := decodeSpec(data)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, rows.Err()
}

func (s *SQLiteStore) SaveScoring(ctx context.Context, sc model.Scoring) error {
	if _, err := s.db.ExecContext(ctx, upsertScoringSQL, sc.Solution, sc.TrialCount, nullInt(sc.Score), nullInt(sc.MaxScore)); err != nil {
		return fmt.Errorf("save scoring %s: %w", sc.Solution, err)
	}
	return nil
}

func (s *SQLiteStore) GetScoring(ctx context.Context, solution string) (model.Scoring, error) {
	sc := model.Scoring{Solution: solution}
	err := s.db.QueryRowContext(ctx,
		"SELECT trial_count, score, max_score FROM scorings WHERE solution = ?", solution).
		Scan(&sc.TrialCount, &sc.Score, &sc.MaxScore)
	if errors.Is(err, sql.ErrNoRows) {
		return sc, fmt.Errorf("scoring %s: %w", solution, ErrNotFound)
	}
	if err != nil {
		return sc, fmt.Errorf("get scoring %s: %w", solution, err)
	}
	return sc, nil
}

func (s *SQLiteStore) ReplaceScoreItems(ctx context.Context, solution string, items []model.ScoreItem) error {
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM score_items WHERE solution = ?", solution); err != nil {
			return fmt.Errorf("clear score items of %s: %w", solution, err)
		}
		stmt, err := tx.PrepareContext(ctx, insertScoreItemSQL)
		if err != nil {
			return fmt.Errorf("prepare score item insert: %w", err)
		}
		defer stmt.Close()
		for _, it := range items {
			if _, err := stmt.ExecContext(ctx, solution, it.TradeGroup, it.TradeID, it.TrialID,
				encodeFields(it.MatchedFields), encodeFields(it.MismatchedFields)); err != nil {
				return fmt.Errorf("save score item %s/%s: %w", it.TradeID, it.TrialID, err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) ListScoreItems(ctx context.Context, solution string) ([]model.ScoreItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT solution, trade_group, trade_id, trial_id, matched, mismatched FROM score_items WHERE solution = ?",
		solution)
	if err != nil {
		return nil, fmt.Errorf("list score items: %w", err)
	}
	defer rows.Close()

	var items []model.ScoreItem
	for rows.Next() {
		it, err := scanScoreItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan score item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list score items: %w", err)
	}
	sortScoreItems(items)
	return items, nil
}
