package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
)

func TestSQLiteDSN(t *testing.T) {
	got := SQLiteDSN("/tmp/x.db", 2*time.Second)
	want := "file:/tmp/x.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(2000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	if got != want {
		t.Errorf("SQLiteDSN() = %q, want %q", got, want)
	}

	if got := SQLiteDSN("a.db", 0); got != "file:a.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)" {
		t.Errorf("SQLiteDSN() default timeout = %q", got)
	}
}

func TestOpenSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "hackathon.db")
	db, err := OpenSQLite(context.Background(), config.SQLiteConfig{Path: path})
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	defer db.Close()

	var mode string
	if err := db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		t.Fatalf("journal_mode: %v", err)
	}
	if mode != "wal" {
		t.Errorf("journal_mode = %q, want wal", mode)
	}
}
