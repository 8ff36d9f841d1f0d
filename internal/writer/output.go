package writer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rickgao/tradeentry-hackathon/internal/config"
	"github.com/rickgao/tradeentry-hackathon/internal/log"
	"github.com/rickgao/tradeentry-hackathon/internal/metrics"
	"github.com/rickgao/tradeentry-hackathon/internal/model"
)

// ErrStopped is returned by Submit and Flush once the writer is stopped.
var ErrStopped = errors.New("output writer stopped")

// DefaultWriteTimeout bounds a single batch write.
const DefaultWriteTimeout = 30 * time.Second

// Saver persists a batch of outputs. store.Store satisfies it.
type Saver interface {
	SaveOutputs(ctx context.Context, outputs []model.Output) error
}

// Metrics are the writer's running counters.
type Metrics struct {
	Submitted int64
	Written   int64
	Flushes   int64
	Errors    int64
}

// OutputWriter buffers outputs and writes them to the store in batches.
type OutputWriter struct {
	cfg    config.WriterConfig
	logger zerolog.Logger
	store  Saver

	// Input from the runner
	input    chan model.Output
	flushReq chan chan error

	// Batching
	batch       []model.Output
	batchMu     sync.Mutex
	flushMu     sync.Mutex
	flushTicker *time.Ticker

	// First failed write since the last Flush, guarded by batchMu.
	writeErr error

	// Lifecycle
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	stopped chan struct{}

	metrics Metrics
}

// Option configures an OutputWriter.
type Option func(*OutputWriter)

// WithLogger sets the writer's logger.
func WithLogger(l zerolog.Logger) Option {
	return func(w *OutputWriter) { w.logger = l }
}

// New creates an OutputWriter. Zero config values fall back to defaults.
func New(cfg config.WriterConfig, store Saver, opts ...Option) *OutputWriter {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = config.DefaultBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = config.DefaultFlushInterval
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = config.DefaultBufferSize
	}
	w := &OutputWriter{
		cfg:      cfg,
		logger:   log.WithComponent("writer"),
		store:    store,
		input:    make(chan model.Output, cfg.BufferSize),
		flushReq: make(chan chan error),
		batch:    make([]model.Output, 0, cfg.BatchSize),
		stopped:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Start begins consuming submitted outputs.
func (w *OutputWriter) Start(ctx context.Context) error {
	w.ctx, w.cancel = context.WithCancel(ctx)
	w.flushTicker = time.NewTicker(w.cfg.FlushInterval)

	w.wg.Add(2)
	go w.consumeLoop()
	go w.flushLoop()

	w.logger.Info().
		Int("batch_size", w.cfg.BatchSize).
		Dur("flush_interval", w.cfg.FlushInterval).
		Msg("output writer started")
	return nil
}

// Stop shuts the writer down and writes whatever is still buffered.
func (w *OutputWriter) Stop(ctx context.Context) error {
	w.logger.Info().Msg("stopping output writer")

	select {
	case <-w.stopped:
		return nil
	default:
		close(w.stopped)
	}

	if w.cancel != nil {
		w.cancel()
	}
	if w.flushTicker != nil {
		w.flushTicker.Stop()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		w.logger.Info().Msg("output writer stopped")
	case <-ctx.Done():
		w.logger.Warn().Msg("output writer stop timed out")
	}

	w.drain()
	w.flush()
	return w.takeErr()
}

// Submit queues an output. It blocks while the buffer is full.
func (w *OutputWriter) Submit(ctx context.Context, o model.Output) error {
	select {
	case <-w.stopped:
		return ErrStopped
	default:
	}

	select {
	case w.input <- o:
		w.batchMu.Lock()
		w.metrics.Submitted++
		w.batchMu.Unlock()
		metrics.WriterBufferDepth.Set(float64(len(w.input)))
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-w.stopped:
		return ErrStopped
	}
}

// Flush writes every output submitted before the call. It returns the
// first write failure since the previous Flush, including failures of
// batches written by the ticker or on reaching the batch size.
func (w *OutputWriter) Flush(ctx context.Context) error {
	reply := make(chan error, 1)
	select {
	case w.flushReq <- reply:
	case <-ctx.Done():
		return ctx.Err()
	case <-w.stopped:
		return ErrStopped
	}

	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats returns current metrics.
func (w *OutputWriter) Stats() Metrics {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	return w.metrics
}

// consumeLoop moves submitted outputs into the batch.
func (w *OutputWriter) consumeLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case o := <-w.input:
			w.handleOutput(o)
		case reply := <-w.flushReq:
			w.drain()
			w.flush()
			reply <- w.takeErr()
		}
	}
}

// flushLoop periodically flushes the batch.
func (w *OutputWriter) flushLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.flushTicker.C:
			w.flush()
		}
	}
}

// drain moves everything waiting in the input channel into the batch.
func (w *OutputWriter) drain() {
	for {
		select {
		case o := <-w.input:
			w.batchMu.Lock()
			w.batch = append(w.batch, o)
			w.batchMu.Unlock()
		default:
			metrics.WriterBufferDepth.Set(0)
			return
		}
	}
}

func (w *OutputWriter) handleOutput(o model.Output) {
	w.batchMu.Lock()
	w.batch = append(w.batch, o)
	shouldFlush := len(w.batch) >= w.cfg.BatchSize
	w.batchMu.Unlock()
	metrics.WriterBufferDepth.Set(float64(len(w.input)))

	if shouldFlush {
		w.flush()
	}
}

// takeErr returns and clears the recorded write failure.
func (w *OutputWriter) takeErr() error {
	w.batchMu.Lock()
	defer w.batchMu.Unlock()
	err := w.writeErr
	w.writeErr = nil
	return err
}

// flush writes the current batch to the store. Flushes are serialized, so
// a flush returns only after any write already in progress has finished.
// A failed batch is dropped and its error kept for the next Flush.
func (w *OutputWriter) flush() {
	w.flushMu.Lock()
	defer w.flushMu.Unlock()

	w.batchMu.Lock()
	if len(w.batch) == 0 {
		w.batchMu.Unlock()
		return
	}

	// Take ownership of current batch
	batch := w.batch
	w.batch = make([]model.Output, 0, w.cfg.BatchSize)
	w.batchMu.Unlock()

	start := time.Now()

	// Writes outlive cancellation so that Stop can persist the last batch.
	parent := context.Background()
	if w.ctx != nil {
		parent = context.WithoutCancel(w.ctx)
	}
	ctx, cancel := context.WithTimeout(parent, DefaultWriteTimeout)
	defer cancel()

	if err := w.store.SaveOutputs(ctx, batch); err != nil {
		w.logger.Error().Err(err).Int("count", len(batch)).Msg("batch write failed")
		w.batchMu.Lock()
		w.metrics.Errors++
		if w.writeErr == nil {
			w.writeErr = fmt.Errorf("write %d outputs: %w", len(batch), err)
		}
		w.batchMu.Unlock()
		metrics.WriterFlushesTotal.WithLabelValues("error").Inc()
		return
	}

	w.batchMu.Lock()
	w.metrics.Written += int64(len(batch))
	w.metrics.Flushes++
	w.batchMu.Unlock()
	metrics.WriterFlushesTotal.WithLabelValues("ok").Inc()
	metrics.OutputsWrittenTotal.Add(float64(len(batch)))

	w.logger.Debug().
		Int("count", len(batch)).
		Dur("duration", time.Since(start)).
		Msg("flushed outputs")
}
