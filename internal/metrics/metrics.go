package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hackathon"

var (
	// LLMRequestsTotal counts chat completion requests by model and outcome.
	LLMRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "llm_requests_total",
		Help:      "Total LLM completion requests, by model and status.",
	}, []string{"model", "status"})

	// LLMRequestDuration observes completion latency including retries.
	LLMRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "llm_request_duration_seconds",
		Help:      "LLM completion latency in seconds, by model.",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
	}, []string{"model"})

	// CacheLookupsTotal counts completion cache lookups.
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "completion_cache_lookups_total",
		Help:      "Completion cache lookups, by backend and result (hit/miss).",
	}, []string{"backend", "result"})

	// InputsProcessedTotal counts processed (input, trial) pairs.
	InputsProcessedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "inputs_processed_total",
		Help:      "Inputs processed, by solution and result (ok/error).",
	}, []string{"solution", "result"})

	// OutputsWrittenTotal counts outputs persisted by the writer.
	OutputsWrittenTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "outputs_written_total",
		Help:      "Outputs persisted to the store.",
	})

	// WriterFlushesTotal counts writer batch flushes by result.
	WriterFlushesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "writer_flushes_total",
		Help:      "Writer batch flushes, by result (ok/error).",
	}, []string{"result"})

	// WriterBufferDepth tracks outputs waiting in the writer buffer.
	WriterBufferDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "writer_buffer_depth",
		Help:      "Outputs waiting in the writer buffer.",
	})

	// ScorePercent is the latest score per solution.
	ScorePercent = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "score_percent",
		Help:      "Latest score in percent, by solution.",
	}, []string{"solution"})
)
