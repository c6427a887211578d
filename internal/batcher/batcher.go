package batcher

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/dushyant25398/Persistent-Systems/internal/infrastructure/sinks"
	"github.com/dushyant25398/Persistent-Systems/internal/model"
)

// BatcherConfig controls when queued records are flushed.
type BatcherConfig struct {
	MaxBatchSize  int
	FlushInterval time.Duration
	QueueSize     int
	WriteTimeout  time.Duration
}

func DefaultBatcherConfig() BatcherConfig {
	return BatcherConfig{
		MaxBatchSize:  100,
		FlushInterval: 5 * time.Second,
		QueueSize:     1024,
		WriteTimeout:  10 * time.Second,
	}
}

// BatcherOpts are optional callbacks. OnFlush runs after each sink write.
type BatcherOpts struct {
	OnFlush func(sink string, count int, err error)
}

// Batcher queues request records and writes them to every sink in batches.
// Insert never blocks: when the queue is full the record is dropped.
type Batcher struct {
	cfg    BatcherConfig
	sinks  []sinks.Sink
	logger zerolog.Logger
	opts   BatcherOpts

	in   chan model.RequestRecord
	quit chan struct{}
	done chan struct{}

	// mu orders Insert's send against Stop closing quit, so every queued
	// record is seen by the final drain.
	mu      sync.RWMutex
	stopped bool
	dropped atomic.Int64
	pending atomic.Int64
}

// NewBatcher starts the flush loop.
func NewBatcher(cfg BatcherConfig, out []sinks.Sink, logger zerolog.Logger, opts *BatcherOpts) *Batcher {
	def := DefaultBatcherConfig()
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = def.MaxBatchSize
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = def.FlushInterval
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = def.QueueSize
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	b := &Batcher{
		cfg:    cfg,
		sinks:  out,
		logger: logger.With().Str("component", "batcher").Logger(),
		in:     make(chan model.RequestRecord, cfg.QueueSize),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	if opts != nil {
		b.opts = *opts
	}
	go b.run()
	return b
}

// Insert queues rec for the next flush.
func (b *Batcher) Insert(rec model.RequestRecord) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.stopped {
		b.dropped.Add(1)
		return
	}
	b.pending.Add(1)
	select {
	case b.in <- rec:
	default:
		b.pending.Add(-1)
		if b.dropped.Add(1)%100 == 1 {
			b.logger.Warn().Int64("dropped", b.dropped.Load()).Msg("archive queue full, dropping records")
		}
	}
}

// Pending is the number of records queued or buffered but not yet flushed.
func (b *Batcher) Pending() int64 { return b.pending.Load() }

// Dropped is the number of records discarded because the queue was full or
// the batcher was stopped.
func (b *Batcher) Dropped() int64 { return b.dropped.Load() }

// Stop flushes everything queued and closes the sinks. It waits at most until ctx is done.
func (b *Batcher) Stop(ctx context.Context) error {
	b.mu.Lock()
	if !b.stopped {
		b.stopped = true
		close(b.quit)
	}
	b.mu.Unlock()
	select {
	case <-b.done:
	case <-ctx.Done():
		return ctx.Err()
	}
	for _, s := range b.sinks {
		if err := s.Close(); err != nil {
			b.logger.Error().Err(err).Str("sink", s.Name()).Msg("close sink")
		}
	}
	return nil
}

func (b *Batcher) run() {
	defer close(b.done)

	ticker := time.NewTicker(b.cfg.FlushInterval)
	defer ticker.Stop()

	batch := make([]model.RequestRecord, 0, b.cfg.MaxBatchSize)
	for {
		select {
		case rec := <-b.in:
			batch = append(batch, rec)
			if len(batch) >= b.cfg.MaxBatchSize {
				batch = b.flush(batch)
			}
		case <-ticker.C:
			batch = b.flush(batch)
		case <-b.quit:
			for {
				select {
				case rec := <-b.in:
					batch = append(batch, rec)
					if len(batch) >= b.cfg.MaxBatchSize {
						batch = b.flush(batch)
					}
				default:
					b.flush(batch)
					return
				}
			}
		}
	}
}

// flush writes batch to every sink and returns an empty slice to reuse.
// Failed writes are logged and not retried.
func (b *Batcher) flush(batch []model.RequestRecord) []model.RequestRecord {
	if len(batch) == 0 {
		return batch
	}
	out := make([]model.RequestRecord, len(batch))
	copy(out, batch)

	for _, s := range b.sinks {
		ctx, cancel := context.WithTimeout(context.Background(), b.cfg.WriteTimeout)
		err := s.Write(ctx, out)
		cancel()
		if err != nil {
			b.logger.Error().Err(err).Str("sink", s.Name()).Int("records", len(out)).Msg("archive write failed")
		}
		if b.opts.OnFlush != nil {
			b.opts.OnFlush(s.Name(), len(out), err)
		}
	}
	b.pending.Add(-int64(len(out)))
	return batch[:0]
}
