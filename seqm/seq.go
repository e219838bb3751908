// Package seqm is the sequence algebra over canonical wrappers.
//
// A Seq is an immutable description of a pipeline: a source wrapper plus the pending
// transformations. Nothing runs until a terminal operation (ToList, Reduce, Collect,
// ForEach, FindFirst, ...) is called, and every terminal evaluates the pipeline
// afresh, so a Seq over a re-traversable source can be consumed many times and shared
// between goroutines.
//
// Invalid arguments given to intermediate operations do not panic. They are recorded
// on the returned Seq and reported by its terminal operation.
//
// Operations that change the element type (Map, Zip, Sliding, Grouped, ...) are
// package-level functions; the rest are methods.
package seqm

import (
	"context"
	"iter"
	"log/slog"
	"sync"

	"github.com/go-softwarelab/common/pkg/slogx"
	"github.com/google/uuid"

	"anym/anymerr"
	"anym/canonical"
	"anym/seqs"
)

// Seq is a lazy pipeline producing elements of type T.
type Seq[T any] struct {
	env  *Env
	id   uuid.UUID
	plan func(*run) canonical.M[T]
	err  error
	par  *Parallelism
}

// run is the state of one terminal evaluation.
type run struct {
	par  *Parallelism
	ctx  context.Context
	log  *slog.Logger
	mu   sync.Mutex
	fail error
}

func (r *run) setErr(err error) {
	if err == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail == nil {
		r.fail = err
	}
}

func (r *run) err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.fail
}

// Of normalises v through env's registry. A nil env means DefaultEnv.
func Of[T any](env *Env, v any) Seq[T] {
	env = orDefault(env)
	m, err := canonical.From[T](env.registry, v)
	return fromMonad(env, m, err)
}

// Values builds a finite pipeline over vs in the default environment.
func Values[T any](vs ...T) Seq[T] {
	return fromMonad(DefaultEnv(), canonical.FromSlice(vs), nil)
}

// FromSeq builds a lazy pipeline over seq in the default environment.
func FromSeq[T any](seq iter.Seq[T]) Seq[T] {
	return fromMonad(DefaultEnv(), canonical.FromSeq(seq), nil)
}

// Range builds a lazy pipeline over start, start+step, ... up to but excluding end,
// in the default environment. step must not be zero.
func Range(start, end, step int) Seq[int] {
	s := FromSeq(seqs.Range(start, end, step))
	if step == 0 {
		return s.fail(anymerr.InvalidArgument("seqm.Range", "step must not be zero"))
	}
	return s
}

// FromMonad builds a pipeline over an existing wrapper.
func FromMonad[T any](env *Env, m canonical.M[T]) Seq[T] {
	return fromMonad(orDefault(env), m, nil)
}

func fromMonad[T any](env *Env, m canonical.M[T], err error) Seq[T] {
	return Seq[T]{
		env:  env,
		id:   uuid.New(),
		plan: func(*run) canonical.M[T] { return m },
		err:  err,
	}
}

func orDefault(env *Env) *Env {
	if env == nil {
		return DefaultEnv()
	}
	return env
}

// ID identifies the pipeline in logs. Derived pipelines keep their source's id.
func (s Seq[T]) ID() uuid.UUID {
	return s.id
}

// Err reports the first invalid argument recorded while building the pipeline.
func (s Seq[T]) Err() error {
	return s.err
}

// Env returns the environment the pipeline was built in.
func (s Seq[T]) Env() *Env {
	return orDefault(s.env)
}

// Parallel evaluates the whole pipeline with the concurrent engine, starting from
// the environment's parallel defaults. Side effects of Peek and ForEach may run out
// of order; Map, Filter and collected results keep input order unless
// WithOrderStable(false) is given.
func (s Seq[T]) Parallel(opts ...ParallelOption) Seq[T] {
	p := s.Env().parallel
	for _, opt := range opts {
		opt(&p)
	}
	s.par = &p
	return s
}

// Sequential undoes Parallel.
func (s Seq[T]) Sequential() Seq[T] {
	s.par = nil
	return s
}

// IsParallel reports whether terminals use the concurrent engine.
func (s Seq[T]) IsParallel() bool {
	return s.par != nil
}

// then adds a same-typed step.
func (s Seq[T]) then(step func(canonical.M[T], *run) canonical.M[T]) Seq[T] {
	return derive(s, step)
}

// fail records err on a copy of s; the first recorded error wins.
func (s Seq[T]) fail(err error) Seq[T] {
	if s.err == nil {
		s.err = err
	}
	return s
}

func derive[T, R any](s Seq[T], step func(canonical.M[T], *run) canonical.M[R]) Seq[R] {
	prev := s.plan
	return Seq[R]{
		env:  s.env,
		id:   s.id,
		plan: func(r *run) canonical.M[R] { return step(prev(r), r) },
		err:  s.err,
		par:  s.par,
	}
}

func lazy[T any](seq iter.Seq[T]) canonical.M[T] {
	return canonical.FromSeq(seq)
}

// eval builds the pipeline's wrapper for one run, hands it to consume and returns
// the first recorded error. Type mismatches and upstream failures raised while
// pulling elements are returned as errors; any other panic propagates unchanged.
func (s Seq[T]) eval(op string, consume func(r *run, m canonical.M[T])) (err error) {
	if s.err != nil {
		return s.err
	}

	env := s.Env()
	r := &run{par: s.par, ctx: context.Background(), log: env.log}
	if s.par != nil && s.par.Context != nil {
		r.ctx = s.par.Context
	}
	if slogx.IsDebug(env.log) {
		env.log.Debug("seqm.terminal", "pipeline", s.id.String(), "op", op, "parallel", s.par != nil)
	}

	defer func() {
		if rec := recover(); rec != nil {
			if e, ok := rec.(error); ok && (anymerr.IsKind(e, anymerr.KindTypeMismatch) || anymerr.IsKind(e, anymerr.KindUpstream)) {
				err = e
				return
			}
			panic(rec)
		}
	}()

	consume(r, s.plan(r))
	if err := r.ctx.Err(); err != nil {
		r.setErr(err)
	}
	return r.err()
}
