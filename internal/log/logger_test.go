package log

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "warn", Output: &buf, Service: "test"})

	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	l.Warn().Msg("shown")
	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "test", entry["service"])
}

func TestNewAcceptsPascalCaseLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Level: "Warning", Output: &buf})

	l.Info().Msg("hidden")
	assert.Zero(t, buf.Len())
	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithContextAddsFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Output: &buf})

	ctx := ContextWithSolution(context.Background(), "OneStep")
	ctx = ContextWithTrialID(ctx, "3")
	enriched := WithContext(ctx, l)
	enriched.Info().Msg("processed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "OneStep", entry["solution"])
	assert.Equal(t, "3", entry["trial_id"])
	assert.NotContains(t, entry, "trade_id")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"Debug", LevelDebug, false},
		{"Critical", LevelCritical, false},
		{"", LevelError, false},
		{"debug", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, int(tt.want), int(got))
	}
	assert.Equal(t, 4, int(LevelError))
	assert.Equal(t, "Warning", LevelWarning.String())
}
