package seqm

import (
	"context"
	"iter"
	"slices"

	"golang.org/x/sync/errgroup"

	"anym/anymerr"
	"anym/canonical"
	"anym/monoid"
	"anym/seqs"
	"anym/upscale"
)

// ToList materialises the pipeline.
func (s Seq[T]) ToList() ([]T, error) {
	var out []T
	err := s.eval("ToList", func(_ *run, m canonical.M[T]) {
		out = slices.Collect(m.Seq())
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// ToSet materialises the distinct elements.
func ToSet[T comparable](s Seq[T]) (map[T]struct{}, error) {
	set := make(map[T]struct{})
	err := s.eval("ToSet", func(_ *run, m canonical.M[T]) {
		for v := range m.Seq() {
			set[v] = struct{}{}
		}
	})
	if err != nil {
		return nil, err
	}
	return set, nil
}

// ToStream runs the pipeline as it is iterated. Elements are yielded with a nil
// error; a failure is yielded once, with the zero value, and ends the stream.
func (s Seq[T]) ToStream() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		stopped := false
		err := s.eval("ToStream", func(_ *run, m canonical.M[T]) {
			for v := range m.Seq() {
				if !yield(v, nil) {
					stopped = true
					return
				}
			}
		})
		if err != nil && !stopped {
			var zero T
			yield(zero, err)
		}
	}
}

// ForEach runs action for every element. In parallel mode actions run concurrently
// and in no particular order; a panicking action fails the call.
func (s Seq[T]) ForEach(action func(T)) error {
	return s.eval("ForEach", func(r *run, m canonical.M[T]) {
		if r.par == nil {
			for v := range m.Seq() {
				action(v)
			}
			return
		}
		do := func(v T) error {
			action(v)
			return nil
		}
		for _, err := range seqs.ParallelForeach(r.ctx, m.Seq(), do, r.par.Workers) {
			if err != nil {
				r.setErr(err)
				return
			}
		}
	})
}

// ForEachBatch hands the elements to fn in slices of at most size. In parallel mode
// batches are handled by several workers at once. The first error fn returns is
// reported after every batch has been handled.
func (s Seq[T]) ForEachBatch(size int, fn func([]T) error) error {
	if size <= 0 {
		return anymerr.InvalidArgument("seqm.ForEachBatch", "size must be positive, got %d", size)
	}
	return s.eval("ForEachBatch", func(r *run, m canonical.M[T]) {
		if r.par == nil {
			for batch := range seqs.Chunk(m.Seq(), size) {
				r.setErr(fn(batch))
			}
			return
		}
		seqs.BatchForeach(r.ctx, m.Seq(),
			func(_ context.Context, batch []T) error { return fn(batch) },
			seqs.WithBatcherSize[T](size),
			seqs.WithConcurrency[T](r.par.Workers),
			seqs.WithMonitor(seqs.LogMonitor[T](r.log)),
			seqs.WithErrorHandler[T](func(_ context.Context, err error, _ []T) { r.setErr(err) }),
		)
	})
}

func (s Seq[T]) AllMatch(predicate func(T) bool) (bool, error) {
	var ok bool
	err := s.eval("AllMatch", func(_ *run, m canonical.M[T]) {
		ok = seqs.All(m.Seq(), predicate)
	})
	return ok, err
}

func (s Seq[T]) AnyMatch(predicate func(T) bool) (bool, error) {
	var ok bool
	err := s.eval("AnyMatch", func(_ *run, m canonical.M[T]) {
		ok = seqs.Any(m.Seq(), predicate)
	})
	return ok, err
}

func (s Seq[T]) NoneMatch(predicate func(T) bool) (bool, error) {
	found, err := s.AnyMatch(predicate)
	return !found && err == nil, err
}

// FindFirst returns the first element; ok is false for an empty pipeline.
func (s Seq[T]) FindFirst() (v T, ok bool, err error) {
	err = s.eval("FindFirst", func(_ *run, m canonical.M[T]) {
		v, ok = seqs.First(m.Seq())
	})
	return v, ok, err
}

// FindAny returns some element of the pipeline, evaluated sequentially.
func (s Seq[T]) FindAny() (T, bool, error) {
	return s.Sequential().FindFirst()
}

func (s Seq[T]) Count() (int, error) {
	var n int
	err := s.eval("Count", func(_ *run, m canonical.M[T]) {
		n = seqs.Count(m.Seq())
	})
	return n, err
}

// Reduce combines the elements with mo, ignoring its projection. An empty pipeline
// yields mo's zero.
func (s Seq[T]) Reduce(mo monoid.Monoid[T]) (T, error) {
	return s.reduceWith("Reduce", mo, mo.Reduce)
}

// FoldLeft is Reduce.
func (s Seq[T]) FoldLeft(mo monoid.Monoid[T]) (T, error) {
	return s.reduceWith("FoldLeft", mo, mo.Reduce)
}

// FoldRight combines the elements from last to first.
func (s Seq[T]) FoldRight(mo monoid.Monoid[T]) (T, error) {
	return s.reduceWith("FoldRight", mo, func(seq iter.Seq[T]) T {
		return mo.Reduce(seqs.Reverse(seq))
	})
}

// MapReduce projects every element with mo's projection, then combines.
func (s Seq[T]) MapReduce(mo monoid.Monoid[T]) (T, error) {
	return s.reduceWith("MapReduce", mo, mo.MapReduce)
}

func (s Seq[T]) reduceWith(op string, mo monoid.Monoid[T], reduce func(iter.Seq[T]) T) (T, error) {
	var out T
	if !mo.Valid() {
		return out, anymerr.InvalidArgument("seqm."+op, "monoid has no combine function")
	}
	err := s.eval(op, func(_ *run, m canonical.M[T]) {
		out = reduce(m.Seq())
	})
	return out, err
}

// MapReduceWith maps every element to R and combines the results with mo.
func MapReduceWith[T, R any](s Seq[T], mapper func(T) R, mo monoid.Monoid[R]) (R, error) {
	return Map(s, mapper).Reduce(mo)
}

// ReduceAll reduces the same elements with every monoid, returning one result per
// monoid in argument order. The pipeline runs once and is buffered; in parallel mode
// the reductions run concurrently.
func (s Seq[T]) ReduceAll(mos ...monoid.Monoid[T]) ([]T, error) {
	for i, mo := range mos {
		if !mo.Valid() {
			return nil, anymerr.InvalidArgument("seqm.ReduceAll", "monoid %d has no combine function", i)
		}
	}
	reducers := make([]func(iter.Seq[T]) T, len(mos))
	for i, mo := range mos {
		reducers[i] = mo.Reduce
	}
	return fanOut(s, "ReduceAll", reducers)
}

// fanOut buffers the pipeline once and applies every reducer to the buffer.
func fanOut[T, R any](s Seq[T], op string, reducers []func(iter.Seq[T]) R) ([]R, error) {
	var buf []T
	if err := s.eval(op, func(_ *run, m canonical.M[T]) {
		buf = slices.Collect(m.Seq())
	}); err != nil {
		return nil, err
	}

	out := make([]R, len(reducers))
	if s.par == nil || len(reducers) < 2 {
		for i, reduce := range reducers {
			out[i] = reduce(slices.Values(buf))
		}
		return out, nil
	}

	ctx := context.Background()
	if s.par.Context != nil {
		ctx = s.par.Context
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.par.Workers, 1))
	for i, reduce := range reducers {
		safe := recovering(func(seq iter.Seq[T]) (R, error) { return reduce(seq), nil })
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			v, err := safe(slices.Values(buf))
			out[i] = v
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// StartsWith reports whether the pipeline begins with prefix.
func StartsWith[T comparable](s Seq[T], prefix ...T) (bool, error) {
	return StartsWithSeq(s, slices.Values(prefix))
}

// StartsWithSeq is StartsWith for a sequence prefix.
func StartsWithSeq[T comparable](s Seq[T], prefix iter.Seq[T]) (bool, error) {
	var ok bool
	err := s.eval("StartsWith", func(_ *run, m canonical.M[T]) {
		ok = seqs.StartsWith(m.Seq(), prefix)
	})
	return ok, err
}

// StartsWithFunc reports whether the pipeline begins with prefix under eq. Only as
// many elements as prefix holds are pulled; a shorter pipeline never matches.
func (s Seq[T]) StartsWithFunc(prefix iter.Seq[T], eq func(a, b T) bool) (bool, error) {
	var ok bool
	err := s.eval("StartsWith", func(_ *run, m canonical.M[T]) {
		ok = seqs.StartsWithFunc(m.Seq(), prefix, eq)
	})
	return ok, err
}

// Upscaled materialises the pipeline and passes it, as a lazy canonical host, through
// the environment's upscaler. With the identity upscaler the result is a
// canonical.Host; with the enhanced one it is an *upscale.Hosted.
func (s Seq[T]) Upscaled() (any, error) {
	list, err := s.ToList()
	if err != nil {
		return nil, err
	}
	h := canonical.FromSeq(slices.Values(list)).CanonicalHost()
	return s.Env().registry.Upscaler().Upscale(h), nil
}

// Enhanced materialises the pipeline into an upscale.Stream regardless of the
// environment's upscaler.
func (s Seq[T]) Enhanced() (upscale.Stream[T], error) {
	list, err := s.ToList()
	if err != nil {
		return upscale.Stream[T]{}, err
	}
	return upscale.Enhance(slices.Values(list)), nil
}

// Unwrap returns the pipeline's wrapper in the shape R, as canonical.Unwrap does.
// An untransformed pipeline yields its original host value.
func Unwrap[R, T any](s Seq[T]) (R, error) {
	var (
		out  R
		uerr error
	)
	err := s.eval("Unwrap", func(_ *run, m canonical.M[T]) {
		out, uerr = canonical.Unwrap[R](m)
	})
	if err != nil {
		return out, err
	}
	return out, uerr
}
