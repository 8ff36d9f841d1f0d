package completion

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
	"github.com/rickgao/tradeentry-hackathon/internal/digest"
)

var csvHeaders = []string{"RequestID", "Query", "Completion"}

// CSVCache keeps one completions file per channel under dir.
type CSVCache struct {
	dir string

	mu       sync.Mutex
	channels map[string]*csvChannel
}

type csvChannel struct {
	path    string
	records map[string]Record // by formatted query
}

// NewCSVCache returns a cache rooted at dir. Files are loaded lazily, once
// per channel.
func NewCSVCache(dir string) *CSVCache {
	return &CSVCache{dir: dir, channels: make(map[string]*csvChannel)}
}

// Path returns the file used for channel.
func (c *CSVCache) Path(channel string) string {
	name := "completions.csv"
	if channel != "" {
		name = strings.NewReplacer("/", "-", `\`, "-").Replace(channel) + ".completions.csv"
	}
	return filepath.Join(c.dir, name)
}

func (c *CSVCache) channel(name string) (*csvChannel, error) {
	if ch, ok := c.channels[name]; ok {
		return ch, nil
	}
	ch := &csvChannel{path: c.Path(name), records: make(map[string]Record)}
	if err := ch.load(); err != nil {
		return nil, err
	}
	c.channels[name] = ch
	return ch, nil
}

func (ch *csvChannel) load() error {
	f, err := os.Open(ch.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("open completions file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(csvHeaders)
	r.LazyQuotes = true

	headers, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read completions header: %w", err)
	}
	if err := checkHeaders(headers); err != nil {
		return err
	}

	for {
		row, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", ch.path, err)
		}
		rec := Record{
			RequestID:  row[0],
			Query:      digest.NormalizeEOL(row[1]),
			Completion: digest.NormalizeEOL(row[2]),
		}
		ch.records[rec.Query] = rec
	}
}

func checkHeaders(headers []string) error {
	if len(headers) == len(csvHeaders) {
		match := true
		for i := range headers {
			if headers[i] != csvHeaders[i] {
				match = false
				break
			}
		}
		if match {
			return nil
		}
	}

	const maxLen = 20
	shown := make([]string, len(headers))
	for i, h := range headers {
		if len(h) >= maxLen {
			h = h[:maxLen] + "..."
		}
		shown[i] = h
	}
	return fmt.Errorf("expected column headers in completions cache are %s. Actual headers: %s",
		strings.Join(csvHeaders, ", "), strings.Join(shown, ", "))
}

// Get implements Cache.
func (c *CSVCache) Get(_ context.Context, key Key) (Record, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, err := c.channel(key.Channel)
	if err != nil {
		return Record{}, false, err
	}
	rec, ok := ch.records[key.Formatted()]
	return rec, ok, nil
}

// Add appends the record to the channel file, writing the header first
// when the file is new.
func (c *CSVCache) Add(_ context.Context, key Key, rec Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch, err := c.channel(key.Channel)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(ch.path), 0o755); err != nil {
		return fmt.Errorf("create completions dir: %w", err)
	}
	_, statErr := os.Stat(ch.path)
	isNew := errors.Is(statErr, os.ErrNotExist)

	f, err := os.OpenFile(ch.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open completions file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(csvHeaders); err != nil {
			return fmt.Errorf("write completions header: %w", err)
		}
	}
	if err := w.Write([]string{rec.RequestID, rec.Query, rec.Completion}); err != nil {
		return fmt.Errorf("write completion: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush completions file: %w", err)
	}

	ch.records[rec.Query] = rec
	return nil
}

// Backend implements Cache.
func (c *CSVCache) Backend() string { return config.CacheCSV }

// Close implements Cache.
func (c *CSVCache) Close() error { return nil }
