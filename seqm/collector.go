package seqm

import (
	"iter"
	"slices"
	"strings"

	"anym/anymerr"
	"anym/monoid"
	"anym/seqs"
)

// Collector is a mutable reduction: it consumes the elements and builds a result.
type Collector[T, R any] func(iter.Seq[T]) R

// Collect applies c to the pipeline.
func Collect[T, R any](s Seq[T], c Collector[T, R]) (R, error) {
	out, err := CollectAll(s, c)
	if err != nil {
		var zero R
		return zero, err
	}
	return out[0], nil
}

// CollectAll applies every collector to the same elements and returns the results in
// argument order. The pipeline runs once and is buffered; in parallel mode the
// collectors run concurrently.
func CollectAll[T, R any](s Seq[T], cs ...Collector[T, R]) ([]R, error) {
	reducers := make([]func(iter.Seq[T]) R, len(cs))
	for i, c := range cs {
		if c == nil {
			return nil, anymerr.InvalidArgument("seqm.CollectAll", "collector %d is nil", i)
		}
		reducers[i] = c
	}
	return fanOut(s, "CollectAll", reducers)
}

func ToSliceCollector[T any]() Collector[T, []T] {
	return func(seq iter.Seq[T]) []T {
		out := slices.Collect(seq)
		if out == nil {
			out = []T{}
		}
		return out
	}
}

// Reducing collects with a monoid.
func Reducing[T any](mo monoid.Monoid[T]) Collector[T, T] {
	return mo.Reduce
}

func Summing[T monoid.Numeric]() Collector[T, T] {
	return Reducing(monoid.Sum[T]())
}

// Averaging returns the arithmetic mean, or 0 for no elements.
func Averaging[T monoid.Numeric]() Collector[T, float64] {
	return func(seq iter.Seq[T]) float64 {
		var (
			sum   float64
			count int
		)
		for v := range seq {
			sum += float64(v)
			count++
		}
		if count == 0 {
			return 0
		}
		return sum / float64(count)
	}
}

func Counting[T any]() Collector[T, int] {
	return seqs.Count[T]
}

// Joining concatenates the strings with sep between them.
func Joining(sep string) Collector[string, string] {
	return func(seq iter.Seq[string]) string {
		return strings.Join(slices.Collect(seq), sep)
	}
}

// GroupingBy groups the elements by key, keeping input order inside each group.
func GroupingBy[T any, K comparable](key func(T) K) Collector[T, map[K][]T] {
	return func(seq iter.Seq[T]) map[K][]T {
		groups := make(map[K][]T)
		for v := range seq {
			k := key(v)
			groups[k] = append(groups[k], v)
		}
		return groups
	}
}
