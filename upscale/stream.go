package upscale

import (
	"iter"

	"github.com/go-softwarelab/common/pkg/seq"
)

// Stream is the enhanced lazy sequence. Intermediate methods are lazy; Exists, Every,
// None, Count and Collect consume the underlying sequence.
type Stream[T any] struct {
	seq iter.Seq[T]
}

// Enhance wraps s.
func Enhance[T any](s iter.Seq[T]) Stream[T] {
	if s == nil {
		s = func(func(T) bool) {}
	}
	return Stream[T]{seq: s}
}

func (s Stream[T]) Seq() iter.Seq[T] {
	if s.seq == nil {
		return func(func(T) bool) {}
	}
	return s.seq
}

func (s Stream[T]) Filter(predicate func(T) bool) Stream[T] {
	return Enhance(seq.Filter(s.Seq(), predicate))
}

func (s Stream[T]) Take(n int) Stream[T] {
	return Enhance(seq.Take(s.Seq(), n))
}

func (s Stream[T]) Skip(n int) Stream[T] {
	return Enhance(seq.Skip(s.Seq(), n))
}

// Tap runs fn for every element as it passes.
func (s Stream[T]) Tap(fn func(T)) Stream[T] {
	return Enhance(seq.Tap(s.Seq(), fn))
}

func (s Stream[T]) Append(elems ...T) Stream[T] {
	return Enhance(seq.Append(s.Seq(), elems...))
}

func (s Stream[T]) Prepend(elems ...T) Stream[T] {
	return Enhance(seq.Prepend(s.Seq(), elems...))
}

func (s Stream[T]) Concat(others ...Stream[T]) Stream[T] {
	all := make([]iter.Seq[T], 0, len(others)+1)
	all = append(all, s.Seq())
	for _, o := range others {
		all = append(all, o.Seq())
	}
	return Enhance(seq.Concat(all...))
}

// SortComparing buffers the stream and sorts it with cmp.
func (s Stream[T]) SortComparing(cmp func(a, b T) int) Stream[T] {
	return Enhance(seq.SortComparing(s.Seq(), cmp))
}

func (s Stream[T]) Exists(predicate func(T) bool) bool {
	return seq.Exists(s.Seq(), predicate)
}

func (s Stream[T]) Every(predicate func(T) bool) bool {
	return seq.Every(s.Seq(), predicate)
}

func (s Stream[T]) None(predicate func(T) bool) bool {
	return seq.None(s.Seq(), predicate)
}

func (s Stream[T]) Count() int {
	return seq.Count(s.Seq())
}

func (s Stream[T]) Collect() []T {
	return seq.Collect(s.Seq())
}

// UniqBy drops elements whose key was already seen.
func UniqBy[T any, K comparable](s Stream[T], key func(T) K) Stream[T] {
	return Enhance(seq.UniqBy(s.Seq(), key))
}

// Partition splits s into chunks of size; the last chunk may be shorter.
// size must be positive.
func Partition[T any](s Stream[T], size int) [][]T {
	var out [][]T
	for chunk := range seq.Partition(s.Seq(), size) {
		out = append(out, seq.Collect(chunk))
	}
	return out
}
