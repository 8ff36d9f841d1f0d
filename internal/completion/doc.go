// Package completion caches LLM completions to cut cost and make scoring
// runs reproducible.
//
// A completion is keyed by channel (the model id), trial id and query. The
// CSV backend keeps one <channel>.completions.csv file per model with the
// columns RequestID, Query, Completion; the stored query carries a
// "TrialID: <id>" first line when a trial is set. Redis and Badger backends
// store the same record as JSON under the completion id.
//
// Completions recorded during a session are written through but never
// served back within that session, so repeated trials measure the model
// rather than the cache. To record a fresh cache, delete the old one.
package completion
