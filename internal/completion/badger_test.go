package completion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBadgerCache(t *testing.T) {
	ctx := context.Background()
	path := t.TempDir()

	c, err := OpenBadgerCache(path)
	require.NoError(t, err)

	key := Key{Channel: "m", Trial: "3", Query: "q"}
	_, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	rec := Record{RequestID: "r", Query: key.Formatted(), Completion: "c"}
	require.NoError(t, c.Add(ctx, key, rec))
	require.NoError(t, c.Close())

	c, err = OpenBadgerCache(path)
	require.NoError(t, err)
	defer c.Close()

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, rec, got)
	assert.Equal(t, "badger", c.Backend())
}
