package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
	"github.com/rickgao/tradeentry-hackathon/internal/llm"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
	"github.com/rickgao/tradeentry-hackathon/internal/scoring"
	"github.com/rickgao/tradeentry-hackathon/internal/store"
)

type directWriter struct{ st store.Store }

func (w directWriter) Submit(ctx context.Context, o model.Output) error {
	return w.st.SaveOutputs(ctx, []model.Output{o})
}

func (w directWriter) Flush(context.Context) error { return nil }

type jsonCompleter struct{}

func (jsonCompleter) ID() string { return "stub-model" }

func (jsonCompleter) Complete(context.Context, string) (string, error) {
	return `{"tenor_years": 5, "pay_leg_ccy": "USD"}`, nil
}

type fakeValidator struct{}

func (fakeValidator) Validate(_ context.Context, description, answer string) (bool, llm.Verdict, error) {
	if strings.Contains(description, answer) {
		return true, llm.VerdictYes, nil
	}
	return false, llm.VerdictNo, nil
}

func newTestServer(t *testing.T, cfg config.ServerConfig) *httptest.Server {
	t.Helper()
	ctx := context.Background()
	st, err := store.OpenSQLite(ctx, config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "server.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	in := model.Input{TradeGroup: "Sample", TradeID: "1", EntryText: "5y USD swap"}
	require.NoError(t, st.SaveInputs(ctx, []model.Input{in}))
	expected := model.NewOutput(model.ExpectedResultsID, model.GenerateTrialID, in)
	expected.TenorYears = "5"
	expected.PayLegCcy = "USD"
	require.NoError(t, st.SaveOutputs(ctx, []model.Output{expected}))
	require.NoError(t, st.SaveSolution(ctx, model.SolutionSpec{
		ID: "OneStep", Kind: model.KindOneStep, LLM: "stub-model", TradeGroup: "Sample", Prompt: "{input_text}",
	}))

	scorer := scoring.NewScorer(st, llm.NewRegistry(jsonCompleter{}), directWriter{st: st},
		config.RunnerConfig{Concurrency: 1}, scoring.WithLogger(zerolog.Nop()))
	srv := New(cfg, st, scorer, WithLogger(zerolog.Nop()), WithValidator(fakeValidator{}))

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, payload string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(payload))
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{})

	resp, body := do(t, http.MethodGet, ts.URL+"/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"ok"`)

	resp, body = do(t, http.MethodGet, ts.URL+"/metrics", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestSolutions(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{})

	resp, body := do(t, http.MethodGet, ts.URL+"/api/solutions", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var specs []model.SolutionSpec
	require.NoError(t, json.Unmarshal(body, &specs))
	require.Len(t, specs, 1)
	assert.Equal(t, "OneStep", specs[0].ID)

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/solutions/OneStep", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodGet, ts.URL+"/api/solutions/missing", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, http.MethodGet, ts.URL+"/api/solutions/OneStep/inputs", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "5y USD swap")
}

func TestGenerateAndScore(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{})

	resp, _ := do(t, http.MethodGet, ts.URL+"/api/solutions/OneStep/score", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/solutions/OneStep/generate", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/solutions/OneStep/score?trials=x", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body := do(t, http.MethodPost, ts.URL+"/api/solutions/OneStep/score?trials=2", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sc struct {
		Score    int     `json:"score"`
		MaxScore int     `json:"max_score"`
		Percent  float64 `json:"percent"`
	}
	require.NoError(t, json.Unmarshal(body, &sc))
	assert.Equal(t, 2*len(model.FieldNames()), sc.MaxScore)
	assert.Equal(t, sc.MaxScore, sc.Score)
	assert.Equal(t, 100.0, sc.Percent)

	resp, body = do(t, http.MethodGet, ts.URL+"/api/solutions/OneStep/outputs?trial=0", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var outputs []model.Output
	require.NoError(t, json.Unmarshal(body, &outputs))
	require.Len(t, outputs, 1)
	assert.Equal(t, "0", outputs[0].TrialID)

	resp, body = do(t, http.MethodGet, ts.URL+"/api/solutions/OneStep/heatmap", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var hm scoring.Heatmap
	require.NoError(t, json.Unmarshal(body, &hm))
	assert.Equal(t, []string{"Trade 1"}, hm.Rows)

	resp, body = do(t, http.MethodGet, ts.URL+"/api/solutions/OneStep/statistics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats []model.Statistics
	require.NoError(t, json.Unmarshal(body, &stats))
	require.Len(t, stats, 1)
	assert.Equal(t, "USD (exp)\nUSD (2/2)", stats[0].Fields["pay_leg_ccy"])
}

func TestValidate(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{})

	resp, body := do(t, http.MethodPost, ts.URL+"/api/validate", `{"description":"notional 10mm USD","answer":"USD"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"valid":true,"verdict":"yes"}`, string(body))

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/validate", `not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, http.MethodPost, ts.URL+"/api/validate", `{"answer":"USD"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRateLimit(t *testing.T) {
	ts := newTestServer(t, config.ServerConfig{RateLimit: 2, RateLimitWindow: time.Minute})

	for i := 0; i < 2; i++ {
		resp, _ := do(t, http.MethodPost, ts.URL+"/api/validate", `{"description":"a","answer":"a"}`)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}
	resp, _ := do(t, http.MethodPost, ts.URL+"/api/validate", `{"description":"a","answer":"a"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "60", resp.Header.Get("Retry-After"))

	// Reads are not limited.
	resp, _ = do(t, http.MethodGet, ts.URL+"/api/solutions", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
