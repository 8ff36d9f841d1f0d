package completion

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/tradeentry-hackathon/internal/llm"
)

type mockCompleter struct {
	mock.Mock
}

func (m *mockCompleter) ID() string { return "mock-model" }

func (m *mockCompleter) Complete(ctx context.Context, query string) (string, error) {
	args := m.Called(query)
	return args.String(0), args.Error(1)
}

func TestCachedServesPreviousSession(t *testing.T) {
	ctx := llm.WithTrial(context.Background(), "1")
	dir := t.TempDir()

	first := &mockCompleter{}
	first.On("Complete", "q").Return("  answer\r\n", nil).Once()
	got, err := NewCached(first, NewCSVCache(dir), zerolog.Nop()).Complete(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, "answer", got)
	first.AssertExpectations(t)

	second := &mockCompleter{}
	got, err = NewCached(second, NewCSVCache(dir), zerolog.Nop()).Complete(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, "answer", got)
	second.AssertNotCalled(t, "Complete", mock.Anything)
}

func TestCachedDoesNotReuseWithinSession(t *testing.T) {
	ctx := llm.WithTrial(context.Background(), "1")
	m := &mockCompleter{}
	m.On("Complete", "q").Return("one", nil).Once()
	m.On("Complete", "q").Return("two", nil).Once()

	c := NewCached(m, NewCSVCache(t.TempDir()), zerolog.Nop())
	a, err := c.Complete(ctx, "q")
	require.NoError(t, err)
	b, err := c.Complete(ctx, "q")
	require.NoError(t, err)

	assert.Equal(t, "one", a)
	assert.Equal(t, "two", b)
	m.AssertExpectations(t)
}

func TestCachedTrialsAreIndependent(t *testing.T) {
	dir := t.TempDir()
	m := &mockCompleter{}
	m.On("Complete", "q").Return("x", nil).Twice()

	c := NewCached(m, NewCSVCache(dir), zerolog.Nop())
	_, err := c.Complete(llm.WithTrial(context.Background(), "1"), "q")
	require.NoError(t, err)
	_, err = c.Complete(llm.WithTrial(context.Background(), "2"), "q")
	require.NoError(t, err)
	m.AssertExpectations(t)
}

func TestCachedPropagatesError(t *testing.T) {
	m := &mockCompleter{}
	m.On("Complete", "q").Return("", errors.New("boom"))

	cache := NewCSVCache(t.TempDir())
	_, err := NewCached(m, cache, zerolog.Nop()).Complete(context.Background(), "q")
	require.EqualError(t, err, "boom")

	_, ok, err := cache.Get(context.Background(), Key{Channel: "mock-model", Query: "q"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCachedWithNopCache(t *testing.T) {
	m := &mockCompleter{}
	m.On("Complete", "q").Return("a", nil).Twice()
	c := NewCached(m, NopCache{}, zerolog.Nop())
	for range 2 {
		_, err := c.Complete(context.Background(), "q")
		require.NoError(t, err)
	}
	m.AssertExpectations(t)
	assert.Equal(t, "mock-model", c.ID())
}
