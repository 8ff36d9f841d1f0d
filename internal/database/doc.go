// Package database opens the relational stores that hold inputs, outputs
// and scores.
//
// Two backends are supported:
//   - SQLite (modernc.org/sqlite, no cgo): the default, one file per
//     workspace, opened in WAL mode.
//   - PostgreSQL (pgx pool): for shared deployments where several
//     scorers write to the same database.
package database
