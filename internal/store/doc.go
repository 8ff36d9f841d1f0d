// Package store persists inputs, outputs, solution definitions and scores.
//
// Tables:
//   - inputs: one row per (trade_group, trade_id)
//   - outputs: one row per (solution, trade_group, trade_id, trial_id),
//     one TEXT column per scored field
//   - solutions: solution definitions as JSON
//   - scorings: score and max score per solution, NULL while a run is
//     in progress
//   - score_items: matched and mismatched field lists per output
//
// All writes are upserts so that reloading a preload file or rerunning a
// trial replaces the earlier rows.
package store
