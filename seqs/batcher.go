package seqs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"
)

const (
	DefaultBatchSize       = 100
	DefaultInterval        = time.Second
	DefaultWorkers         = 1
	DefaultShutdownTimeout = 5 * time.Second
)

var errShutdownTimeout = errors.New("anym.seqs.Batcher: shutdown timeout waiting for workers")

// BatchHandler handles one batch.
type BatchHandler[T any] func(context.Context, []T) error

// BatchErrHandler receives a failed batch with its error.
type BatchErrHandler[T any] func(context.Context, error, []T)

// BatcherQueue is the source a Batcher drains. Ready fires when items may be
// available, Done is closed once nothing more will be enqueued.
type BatcherQueue[T any] interface {
	Done() <-chan struct{}
	Ready() <-chan struct{}
	Size() int
	TryDequeueBatchInto(dst []T) int
}

// BatcherMonitor observes a Batcher. Flush reasons are "full", "periodic", "drain"
// and "shutdown".
type BatcherMonitor[T any] interface {
	OnFlush(reason string, size int)
	OnWorkerError(ctx context.Context, err error, batch []T)
	OnQueueDepth(size int)
}

type NoopBatcherMonitor[T any] struct{}

func (*NoopBatcherMonitor[T]) OnFlush(string, int)                       {}
func (*NoopBatcherMonitor[T]) OnWorkerError(context.Context, error, []T) {}
func (*NoopBatcherMonitor[T]) OnQueueDepth(int)                          {}

// LogMonitor reports flushes and queue depth at debug level and worker errors at
// warn level.
func LogMonitor[T any](log *slog.Logger) BatcherMonitor[T] {
	return &logMonitor[T]{log: log}
}

type logMonitor[T any] struct{ log *slog.Logger }

func (m *logMonitor[T]) OnFlush(reason string, size int) {
	m.log.Debug("batcher.flush", "reason", reason, "size", size)
}

func (m *logMonitor[T]) OnWorkerError(ctx context.Context, err error, batch []T) {
	m.log.WarnContext(ctx, "batcher.worker_error", "error", err, "size", len(batch))
}

func (m *logMonitor[T]) OnQueueDepth(size int) {
	m.log.Debug("batcher.queue_depth", "size", size)
}

// errorTee forwards worker errors to an extra handler as well.
type errorTee[T any] struct {
	BatcherMonitor[T]
	handler BatchErrHandler[T]
}

func (t *errorTee[T]) OnWorkerError(ctx context.Context, err error, batch []T) {
	t.BatcherMonitor.OnWorkerError(ctx, err, batch)
	t.handler(ctx, err, batch)
}

type batcherConfig[T any] struct {
	size            int
	interval        time.Duration
	workers         int
	shutdownTimeout time.Duration
	monitor         BatcherMonitor[T]
	onError         BatchErrHandler[T]
}

type BatcherOption[T any] func(*batcherConfig[T])

func WithBatcherSize[T any](size int) BatcherOption[T] {
	return func(c *batcherConfig[T]) { c.size = size }
}

// WithInterval sets how often a partial batch is flushed.
func WithInterval[T any](interval time.Duration) BatcherOption[T] {
	return func(c *batcherConfig[T]) { c.interval = interval }
}

func WithConcurrency[T any](workers int) BatcherOption[T] {
	return func(c *batcherConfig[T]) { c.workers = workers }
}

func WithMonitor[T any](m BatcherMonitor[T]) BatcherOption[T] {
	return func(c *batcherConfig[T]) { c.monitor = m }
}

// WithErrorHandler is called for every failed or panicking batch, after the monitor.
func WithErrorHandler[T any](handler BatchErrHandler[T]) BatcherOption[T] {
	if handler == nil {
		panic("anym.seqs.WithErrorHandler: error handler cannot be nil")
	}
	return func(c *batcherConfig[T]) { c.onError = handler }
}

// WithShutdownTimeout bounds how long Run waits for the workers once dispatching
// has stopped. Zero or less waits for every batch.
func WithShutdownTimeout[T any](timeout time.Duration) BatcherOption[T] {
	return func(c *batcherConfig[T]) { c.shutdownTimeout = timeout }
}

// Batcher groups items from a queue into batches by size or elapsed time and hands
// them to a fixed pool of workers.
type Batcher[T any] struct {
	queue   BatcherQueue[T]
	handler BatchHandler[T]
	cfg     batcherConfig[T]
	jobs    chan batch[T]
	workers sync.WaitGroup
}

type batch[T any] struct {
	ctx   context.Context
	items []T
}

func NewBatcher[T any](queue BatcherQueue[T], handler BatchHandler[T], opts ...BatcherOption[T]) *Batcher[T] {
	if handler == nil {
		panic("anym.seqs.NewBatcher: handler cannot be nil")
	}
	cfg := batcherConfig[T]{
		size:            DefaultBatchSize,
		interval:        DefaultInterval,
		workers:         DefaultWorkers,
		shutdownTimeout: DefaultShutdownTimeout,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.size = max(cfg.size, 1)
	cfg.workers = max(cfg.workers, 1)
	if cfg.interval <= 0 {
		cfg.interval = DefaultInterval
	}
	if cfg.monitor == nil {
		cfg.monitor = &NoopBatcherMonitor[T]{}
	}
	if cfg.onError != nil {
		cfg.monitor = &errorTee[T]{BatcherMonitor: cfg.monitor, handler: cfg.onError}
	}

	return &Batcher[T]{
		queue:   queue,
		handler: handler,
		cfg:     cfg,
		jobs:    make(chan batch[T], cfg.workers*2),
	}
}

// Run dispatches batches until the queue is closed and drained or ctx is done, then
// waits for the workers, up to the shutdown timeout when one is set. Batches
// flushed because ctx is done carry a context that stays live until Run returns.
func (b *Batcher[T]) Run(ctx context.Context) {
	b.workers.Add(b.cfg.workers)
	for range b.cfg.workers {
		go func() {
			defer b.workers.Done()
			for job := range b.jobs {
				b.handle(job)
			}
		}()
	}

	sctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	defer cancel()
	b.dispatch(ctx, sctx)
	close(b.jobs)

	if b.cfg.shutdownTimeout <= 0 {
		b.workers.Wait()
		return
	}
	done := make(chan struct{})
	go func() {
		b.workers.Wait()
		close(done)
	}()
	timer := time.NewTimer(b.cfg.shutdownTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		b.cfg.monitor.OnWorkerError(context.Background(), errShutdownTimeout, nil)
	}
}

func (b *Batcher[T]) handle(job batch[T]) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("anym.seqs.Batcher: worker panic: %v\nStack: %s", r, debug.Stack())
			}
			b.cfg.monitor.OnWorkerError(job.ctx, err, job.items)
		}
	}()
	if err := b.handler(job.ctx, job.items); err != nil && job.ctx.Err() == nil {
		b.cfg.monitor.OnWorkerError(job.ctx, err, job.items)
	}
}

func (b *Batcher[T]) send(ctx context.Context, items []T, reason string) {
	b.cfg.monitor.OnFlush(reason, len(items))
	select {
	case b.jobs <- batch[T]{ctx: ctx, items: items}:
	case <-ctx.Done():
		err := fmt.Errorf("anym.seqs.Batcher: context done before sending batch (reason: %s): %w", reason, ctx.Err())
		b.cfg.monitor.OnWorkerError(ctx, err, items)
	}
}

func (b *Batcher[T]) dispatch(ctx, shutdown context.Context) {
	ticker := time.NewTicker(b.cfg.interval)
	defer ticker.Stop()

	buf := make([]T, 0, b.cfg.size)
	flush := func(ctx context.Context, reason string) {
		if len(buf) == 0 {
			return
		}
		b.send(ctx, buf, reason)
		buf = make([]T, 0, b.cfg.size)
	}
	fill := func() int {
		n := b.queue.TryDequeueBatchInto(buf[len(buf):cap(buf)])
		buf = buf[:len(buf)+n]
		return n
	}

	for {
		select {
		case <-ctx.Done():
			// What is already buffered still gets handled.
			flush(shutdown, "shutdown")
			return

		case <-b.queue.Done():
			for fill() > 0 || len(buf) > 0 {
				flush(ctx, "drain")
			}
			return

		case <-ticker.C:
			b.cfg.monitor.OnQueueDepth(b.queue.Size())
			flush(ctx, "periodic")

		case <-b.queue.Ready():
			fill()
			if len(buf) == cap(buf) {
				flush(ctx, "full")
				ticker.Reset(b.cfg.interval)
			}
		}
	}
}
