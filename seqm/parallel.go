package seqm

import (
	"fmt"
	"iter"
	"slices"

	"anym/canonical"
	"anym/seqs"
	"anym/sliceutil"
)

// drain turns an error-carrying sequence into a plain one. The first error is
// recorded on r and ends the sequence.
func drain[T any](r *run, seq iter.Seq2[T, error]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v, err := range seq {
			if err != nil {
				r.setErr(err)
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

func executorOptions(r *run) []seqs.ParallelOption {
	return []seqs.ParallelOption{
		seqs.WithContext(r.ctx),
		seqs.WithWorkers(r.par.Workers),
		seqs.WithBatchSize(r.par.BatchSize),
		seqs.WithOrderStable(r.par.OrderStable),
	}
}

// parallelMap fans fn out over the worker pool. Finite sources are materialised and
// split with sliceutil; lazy sources stream through the batching executor.
func parallelMap[T, R any](r *run, m canonical.M[T], fn func(T) (R, error)) canonical.M[R] {
	safe := recovering(fn)
	src := m.Seq()

	if m.Kind() == canonical.KindFinite {
		return lazy(func(yield func(R) bool) {
			out, err := sliceutil.TryParallelMapN(r.ctx, r.par.Workers, slices.Collect(src), safe)
			if err != nil {
				r.setErr(err)
				return
			}
			for _, v := range out {
				if !yield(v) {
					return
				}
			}
		})
	}
	return lazy(drain(r, seqs.ParallelTryMap(src, safe, executorOptions(r)...)))
}

func parallelFilter[T any](r *run, m canonical.M[T], predicate func(T) bool) canonical.M[T] {
	safe := recovering(func(v T) (bool, error) { return predicate(v), nil })
	src := m.Seq()

	if m.Kind() == canonical.KindFinite {
		return lazy(func(yield func(T) bool) {
			out, err := sliceutil.TryParallelFilterN(r.ctx, r.par.Workers, slices.Collect(src), safe)
			if err != nil {
				r.setErr(err)
				return
			}
			for _, v := range out {
				if !yield(v) {
					return
				}
			}
		})
	}
	return lazy(drain(r, seqs.ParallelTryFilter(src, safe, executorOptions(r)...)))
}

// recovering reports a panic in fn as fn's error.
func recovering[T, R any](fn func(T) (R, error)) func(T) (R, error) {
	return func(v T) (res R, err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = panicError(rec)
			}
		}()
		return fn(v)
	}
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", rec)
}
