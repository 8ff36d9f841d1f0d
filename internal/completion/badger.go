package completion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
)

// BadgerCache stores completions in an embedded Badger database.
type BadgerCache struct {
	db *badger.DB
}

// OpenBadgerCache opens or creates the database at path.
func OpenBadgerCache(path string) (*BadgerCache, error) {
	return openBadger(badger.DefaultOptions(path))
}

func openBadger(opts badger.Options) (*BadgerCache, error) {
	db, err := badger.Open(opts.WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerCache{db: db}, nil
}

// Get implements Cache.
func (c *BadgerCache) Get(_ context.Context, key Key) (Record, bool, error) {
	var rec Record
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ID(key)))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, fmt.Errorf("badger get: %w", err)
	}
	return rec, true, nil
}

// Add implements Cache.
func (c *BadgerCache) Add(_ context.Context, key Key, rec Record) error {
	buf, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal completion: %w", err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(ID(key)), buf)
	})
}

// Backend implements Cache.
func (c *BadgerCache) Backend() string { return config.CacheBadger }

// Close implements Cache.
func (c *BadgerCache) Close() error { return c.db.Close() }
