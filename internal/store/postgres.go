package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
	"github.com/rickgao/tradeentry-hackathon/internal/database"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
)

// PostgresStore is a Store backed by a shared PostgreSQL database.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to PostgreSQL and creates missing tables.
func OpenPostgres(ctx context.Context, cfg config.DBConfig) (*PostgresStore, error) {
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := NewPostgresStore(pool)
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresStore wraps an existing pool. The schema is not migrated.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	for _, stmt := range schema() {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// sendBatch queues one statement per row and checks every result.
func (s *PostgresStore) sendBatch(ctx context.Context, batch *pgx.Batch) error {
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

func (s *PostgresStore) SaveInputs(ctx context.Context, inputs []model.Input) error {
	if len(inputs) == 0 {
		return nil
	}
	q := rebind(upsertInputSQL)
	batch := &pgx.Batch{}
	for _, in := range inputs {
		batch.Queue(q, in.TradeGroup, in.TradeID, in.EntryText)
	}
	if err := s.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("save inputs: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListInputs(ctx context.Context, group string) ([]model.Input, error) {
	q := "SELECT trade_group, trade_id, entry_text FROM inputs"
	var args []any
	if group != "" {
		q += " WHERE trade_group = $1"
		args = append(args, group)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	inputs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Input, error) {
		var in model.Input
		err := row.Scan(&in.TradeGroup, &in.TradeID, &in.EntryText)
		return in, err
	})
	if err != nil {
		return nil, fmt.Errorf("list inputs: %w", err)
	}
	sortInputs(inputs)
	return inputs, nil
}

// SaveOutputs upserts outputs in a single round trip.
func (s *PostgresStore) SaveOutputs(ctx context.Context, outputs []model.Output) error {
	if len(outputs) == 0 {
		return nil
	}
	q := rebind(upsertOutputSQL)
	batch := &pgx.Batch{}
	for _, o := range outputs {
		batch.Queue(q, outputArgs(o)...)
	}
	if err := s.sendBatch(ctx, batch); err != nil {
		return fmt.Errorf("save outputs: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetOutput(ctx context.Context, key model.OutputKey) (model.Output, error) {
	row := s.pool.QueryRow(ctx,
		selectOutputsSQL+" WHERE solution = $1 AND trade_group = $2 AND trade_id = $3 AND trial_id = $4",
		key.Solution, key.TradeGroup, key.TradeID, key.TrialID)
	o, err := scanOutput(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Output{}, fmt.Errorf("output %s: %w", key, ErrNotFound)
	}
	if err != nil {
		return model.Output{}, fmt.Errorf("get output %s: %w", key, err)
	}
	return o, nil
}

func (s *PostgresStore) ListOutputs(ctx context.Context, solution string) ([]model.Output, error) {
	rows, err := s.pool.Query(ctx, selectOutputsSQL+" WHERE solution = $1", solution)
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	outputs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.Output, error) {
		return scanOutput(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	sortOutputs(outputs)
	return outputs, nil
}

func (s *PostgresStore) DeleteOutputs(ctx context.Context, solution, trialID string) error {
	q := "DELETE FROM outputs WHERE solution = $1"
	args := []any{solution}
	if trialID != "" {
		q += " AND trial_id = $2"
		args = append(args, trialID)
	}
	if _, err := s.pool.Exec(ctx, q, args...); err != nil {
		return fmt.Errorf("delete outputs of %s: %w", solution, err)
	}
	return nil
}

func (s *PostgresStore) SaveSolution(ctx context.Context, spec model.SolutionSpec) error {
	data, err := encodeSpec(spec)
	if err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, rebind(upsertSolutionSQL), spec.ID, spec.Kind, data); err != nil {
		return fmt.Errorf("save solution %s: %w", spec.ID, err)
	}
	return nil
}

func (s *PostgresStore) GetSolution(ctx context.Context, id string) (model.SolutionSpec, error) {
	var data string
	err := s.pool.QueryRow(ctx, "SELECT spec FROM solutions WHERE id = $1", id).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.SolutionSpec{}, fmt.Errorf("solution %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return model.SolutionSpec{}, fmt.Errorf("get solution %s: %w", id, err)
	}
	return decodeSpec(data)
}

func (s *PostgresStore) ListSolutions(ctx context.Context) ([]model.SolutionSpec, error) {
	rows, err := s.pool.Query(ctx, "SELECT spec FROM solutions ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("list solutions: %w", err)
	}
	specs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.SolutionSpec, error) {
		var data string
		if err := row.Scan(&data); err != nil {
			return model.SolutionSpec{}, err
		}
		return decodeSpec(data)
	})
	if err != nil {
		return nil, fmt.Errorf("list solutions: %w", err)
	}
	return specs, nil
}

func (s *PostgresStore) SaveScoring(ctx context.Context, sc model.Scoring) error {
	if _, err := s.pool.Exec(ctx, rebind(upsertScoringSQL), sc.Solution, sc.TrialCount, nullInt(sc.Score), nullInt(sc.MaxScore)); err != nil {
		return fmt.Errorf("save scoring %s: %w", sc.Solution, err)
	}
	return nil
}

func (s *PostgresStore) GetScoring(ctx context.Context, solution string) (model.Scoring, error) {
	sc := model.Scoring{Solution: solution}
	err := s.pool.QueryRow(ctx,
		"SELECT trial_count, score, max_score FROM scorings WHERE solution = $1", solution).
		Scan(&sc.TrialCount, &sc.Score, &sc.MaxScore)
	if errors.Is(err, pgx.ErrNoRows) {
		return sc, fmt.Errorf("scoring %s: %w", solution, ErrNotFound)
	}
	if err != nil {
		return sc, fmt.Errorf("get scoring %s: %w", solution, err)
	}
	return sc, nil
}

func (s *PostgresStore) ReplaceScoreItems(ctx context.Context, solution string, items []model.ScoreItem) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, "DELETE FROM score_items WHERE solution = $1", solution); err != nil {
			return fmt.Errorf("clear score items of %s: %w", solution, err)
		}
		if len(items) == 0 {
			return nil
		}
		q := rebind(insertScoreItemSQL)
		batch := &pgx.Batch{}
		for _, it := range items {
			batch.Queue(q, solution, it.TradeGroup, it.TradeID, it.TrialID,
				encodeFields(it.MatchedFields), encodeFields(it.MismatchedFields))
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("save score items of %s: %w", solution, err)
		}
		return nil
	})
}

func (s *PostgresStore) ListScoreItems(ctx context.Context, solution string) ([]model.ScoreItem, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT solution, trade_group, trade_id, trial_id, matched, mismatched FROM score_items WHERE solution = $1",
		solution)
	if err != nil {
		return nil, fmt.Errorf("list score items: %w", err)
	}
	items, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (model.ScoreItem, error) {
		return scanScoreItem(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list score items: %w", err)
	}
	sortScoreItems(items)
	return items, nil
}

var (
	_ Store = (*SQLiteStore)(nil)
	_ Store = (*PostgresStore)(nil)
)
