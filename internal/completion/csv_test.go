package completion

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatQuery(t *testing.T) {
	assert.Equal(t, "TrialID: 2\nwhat?", FormatQuery("2", "  what?\r\n"))
	assert.Equal(t, "a\nb", FormatQuery("", "a\r\nb"))
}

func TestIDIncludesChannelAndTrial(t *testing.T) {
	a := ID(Key{Channel: "gpt", Trial: "1", Query: "q"})
	b := ID(Key{Channel: "gpt", Trial: "2", Query: "q"})
	assert.NotEqual(t, a, b)
	assert.Equal(t, "q (gpt, 1)", a)
}

func TestCSVCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	key := Key{Channel: "gpt-4o", Trial: "1", Query: "Extract, \"quoted\"\nvalues"}

	c := NewCSVCache(dir)
	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	rec := Record{RequestID: "r1", Query: key.Formatted(), Completion: "{\"a\": \"1,2\"}"}
	require.NoError(t, c.Add(ctx, key, rec))

	data, err := os.ReadFile(filepath.Join(dir, "gpt-4o.completions.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "RequestID,Query,Completion\n"))

	// A fresh cache reads the file back.
	reopened := NewCSVCache(dir)
	got, ok, err := reopened.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestCSVCacheLaterRowWins(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	key := Key{Channel: "m", Query: "q"}

	c := NewCSVCache(dir)
	require.NoError(t, c.Add(ctx, key, Record{RequestID: "1", Query: key.Formatted(), Completion: "old"}))
	require.NoError(t, c.Add(ctx, key, Record{RequestID: "2", Query: key.Formatted(), Completion: "new"}))

	got, ok, err := NewCSVCache(dir).Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", got.Completion)
}

func TestCSVCacheBadHeaders(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "m.completions.csv")
	require.NoError(t, os.WriteFile(path, []byte("Id,Prompt,Answer\n1,q,a\n"), 0o644))

	_, _, err := NewCSVCache(dir).Get(context.Background(), Key{Channel: "m", Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected column headers")
}

func TestCSVCachePathSanitizesChannel(t *testing.T) {
	c := NewCSVCache("/tmp/x")
	assert.Equal(t, filepath.Join("/tmp/x", "accounts-fireworks-llama.completions.csv"),
		c.Path("accounts/fireworks/llama"))
	assert.Equal(t, filepath.Join("/tmp/x", "completions.csv"), c.Path(""))
}
