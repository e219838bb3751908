package seqs

import (
	"context"
	"fmt"
	"iter"
	"runtime"
	"sync"
	"sync/atomic"
)

const defaultBatchSize = 128

type parallelConfig struct {
	ctx         context.Context
	batchSize   int
	workers     int
	orderStable bool
}

// ParallelOption configures ParallelTryMap, ParallelTryFilter and ParallelForeach.
type ParallelOption func(*parallelConfig)

func WithContext(ctx context.Context) ParallelOption {
	return func(c *parallelConfig) { c.ctx = ctx }
}

// WithBatchSize sets how many elements travel to a worker together. Values below 1
// are raised to 1.
func WithBatchSize(size int) ParallelOption {
	return func(c *parallelConfig) { c.batchSize = max(size, 1) }
}

func WithWorkers(count int) ParallelOption {
	return func(c *parallelConfig) { c.workers = max(count, 1) }
}

// WithOrderStable makes results arrive in input order. Without it they arrive as
// batches complete.
func WithOrderStable(stable bool) ParallelOption {
	return func(c *parallelConfig) { c.orderStable = stable }
}

func newParallelConfig(opts []ParallelOption) parallelConfig {
	cfg := parallelConfig{
		ctx:       context.Background(),
		batchSize: defaultBatchSize,
		workers:   runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

type outcome[R any] struct {
	val R
	err error
}

// stage turns one input chunk into outcomes appended to out. It may emit fewer
// outcomes than inputs.
type stage[T, R any] func(in []T, out []outcome[R]) []outcome[R]

type chunk[E any] struct {
	seq   int
	items *[]E
}

// pipeline moves chunks of a source through a stage on a fixed set of workers:
// one feeder, the workers, and a closer that ends the result stream.
type pipeline[T, R any] struct {
	ctx    context.Context
	cfg    parallelConfig
	stage  stage[T, R]
	jobs   chan chunk[T]
	done   chan chunk[outcome[R]]
	window chan struct{} // bounds chunks between feeder and collector

	inPool  sync.Pool
	outPool sync.Pool

	workers  sync.WaitGroup
	feeder   sync.WaitGroup
	stopping atomic.Bool
	fault    any // panic raised by the source, set before feeder is done
}

func newPipeline[T, R any](ctx context.Context, cfg parallelConfig, st stage[T, R]) *pipeline[T, R] {
	p := &pipeline[T, R]{
		ctx:    ctx,
		cfg:    cfg,
		stage:  st,
		jobs:   make(chan chunk[T], cfg.workers*2),
		done:   make(chan chunk[outcome[R]], cfg.workers*2),
		window: make(chan struct{}, cfg.workers*4),
	}
	p.inPool.New = func() any {
		s := make([]T, 0, cfg.batchSize)
		return &s
	}
	p.outPool.New = func() any {
		s := make([]outcome[R], 0, cfg.batchSize)
		return &s
	}
	return p
}

func (p *pipeline[T, R]) run(src iter.Seq[T], yield func(R, error) bool) {
	p.workers.Add(p.cfg.workers)
	for range p.cfg.workers {
		go p.work()
	}
	p.feeder.Add(1)
	go p.feed(src)
	go func() {
		p.workers.Wait()
		close(p.done)
	}()

	if p.cfg.orderStable {
		p.collectOrdered(yield)
	} else {
		p.collect(yield)
	}
}

// feed pulls src on its own goroutine. A panic while pulling ends the input; what
// was read before it is still sent, and the panic is kept in fault for the caller.
func (p *pipeline[T, R]) feed(src iter.Seq[T]) {
	defer p.feeder.Done()
	defer close(p.jobs)

	seq := 0
	buf := p.takeIn()
	defer func() {
		if buf != nil {
			p.releaseIn(buf)
		}
	}()

	send := func() bool {
		select {
		case p.window <- struct{}{}:
		case <-p.ctx.Done():
			return false
		}
		select {
		case p.jobs <- chunk[T]{seq: seq, items: buf}:
			seq++
			buf = nil
			return true
		case <-p.ctx.Done():
			return false
		}
	}

	stopped := false
	p.fault = pull(src, func(v T) bool {
		*buf = append(*buf, v)
		if len(*buf) == p.cfg.batchSize {
			if !send() {
				stopped = true
				return false
			}
			buf = p.takeIn()
		}
		stopped = p.stopping.Load()
		return !stopped
	})
	if !stopped && len(*buf) > 0 {
		send()
	}
}

// pull ranges over src until each returns false and reports a panic raised by src.
func pull[T any](src iter.Seq[T], each func(T) bool) (fault any) {
	defer func() { fault = recover() }()
	for v := range src {
		if !each(v) {
			break
		}
	}
	return nil
}

func (p *pipeline[T, R]) work() {
	defer p.workers.Done()
	for job := range p.jobs {
		if p.stopping.Load() {
			p.releaseIn(job.items)
			continue
		}
		out := p.takeOut()
		*out = p.stage(*job.items, *out)
		p.releaseIn(job.items)

		select {
		case p.done <- chunk[outcome[R]]{seq: job.seq, items: out}:
		case <-p.ctx.Done():
			p.releaseOut(out)
		}
	}
}

func (p *pipeline[T, R]) collect(yield func(R, error) bool) {
	for c := range p.done {
		if !p.emit(c.items, yield) {
			return
		}
	}
}

// collectOrdered parks chunks that arrive early until their predecessors are out.
func (p *pipeline[T, R]) collectOrdered(yield func(R, error) bool) {
	parked := make(map[int]*[]outcome[R])
	defer func() {
		for _, items := range parked {
			p.releaseOut(items)
		}
	}()

	next := 0
	for c := range p.done {
		parked[c.seq] = c.items
		for {
			items, ok := parked[next]
			if !ok {
				break
			}
			delete(parked, next)
			next++
			if !p.emit(items, yield) {
				return
			}
		}
	}
}

func (p *pipeline[T, R]) emit(items *[]outcome[R], yield func(R, error) bool) bool {
	defer p.releaseOut(items)
	<-p.window
	for _, o := range *items {
		if !yield(o.val, o.err) {
			p.stopping.Store(true)
			return false
		}
	}
	return true
}

func (p *pipeline[T, R]) takeIn() *[]T {
	s := p.inPool.Get().(*[]T)
	*s = (*s)[:0]
	return s
}

func (p *pipeline[T, R]) releaseIn(s *[]T) {
	clear(*s)
	p.inPool.Put(s)
}

func (p *pipeline[T, R]) takeOut() *[]outcome[R] {
	s := p.outPool.Get().(*[]outcome[R])
	*s = (*s)[:0]
	return s
}

func (p *pipeline[T, R]) releaseOut(s *[]outcome[R]) {
	clear(*s)
	p.outPool.Put(s)
}

// runParallel drives src through st. With a single worker the stage runs on the
// calling goroutine one element at a time. A panic raised by src is raised again on
// the calling goroutine once the workers have stopped.
func runParallel[T, R any](src iter.Seq[T], st stage[T, R], cfg parallelConfig) iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		if cfg.workers < 2 {
			one := make([]T, 1)
			var out []outcome[R]
			for v := range src {
				if cfg.ctx.Err() != nil {
					return
				}
				one[0] = v
				out = st(one, out[:0])
				for _, o := range out {
					if !yield(o.val, o.err) {
						return
					}
				}
			}
			return
		}

		ctx, cancel := context.WithCancel(cfg.ctx)
		p := newPipeline(ctx, cfg, st)
		stop := context.AfterFunc(ctx, func() { p.stopping.Store(true) })
		defer func() {
			stop()
			cancel()
			p.feeder.Wait()
			if p.fault != nil {
				panic(p.fault)
			}
		}()
		p.run(src, yield)
	}
}

// guarded runs fn and reports a panic as its error.
func guarded[T, R any](fn func(T) (R, error), v T) (res R, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(v)
}

// ParallelTryMap applies transform to the elements of seq on several workers,
// batchSize elements at a time. Every element yields exactly one (result, error)
// pair; a panicking transform yields an error. Order follows WithOrderStable.
func ParallelTryMap[T, R any](seq iter.Seq[T], transform func(T) (R, error), opts ...ParallelOption) iter.Seq2[R, error] {
	st := func(in []T, out []outcome[R]) []outcome[R] {
		for _, v := range in {
			r, err := guarded(transform, v)
			out = append(out, outcome[R]{r, err})
		}
		return out
	}
	return runParallel(seq, st, newParallelConfig(opts))
}

// ParallelTryFilter keeps the elements of seq satisfying predicate, evaluated on
// several workers. An element whose predicate fails is yielded with the error.
func ParallelTryFilter[T any](seq iter.Seq[T], predicate func(T) (bool, error), opts ...ParallelOption) iter.Seq2[T, error] {
	st := func(in []T, out []outcome[T]) []outcome[T] {
		for _, v := range in {
			keep, err := guarded(predicate, v)
			if err != nil || keep {
				out = append(out, outcome[T]{v, err})
			}
		}
		return out
	}
	return runParallel(seq, st, newParallelConfig(opts))
}

// ParallelForeach runs action for every element of seq on up to workers goroutines
// and yields each element with the action's error as soon as it completes.
func ParallelForeach[T any](ctx context.Context, seq iter.Seq[T], action func(T) error, workers int) iter.Seq2[T, error] {
	do := func(v T) (T, error) { return v, action(v) }
	return ParallelTryMap(seq, do, WithContext(ctx), WithWorkers(workers), WithBatchSize(1))
}

// BatchForeach hands seq to h in batches through a Batcher and returns once every
// batch has been handled; it waits for the workers without a deadline unless
// options set one. A panic raised by seq is raised again on the calling goroutine
// after the batches read before it have been handled.
func BatchForeach[T any](ctx context.Context, seq iter.Seq[T], h BatchHandler[T], options ...BatcherOption[T]) {
	q := NewSeqQueue(ctx, seq, 4096)
	opts := append([]BatcherOption[T]{WithShutdownTimeout[T](0)}, options...)
	NewBatcher(q, h, opts...).Run(ctx)
	if rec := q.Wait(); rec != nil {
		panic(rec)
	}
}
