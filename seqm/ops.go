package seqm

import (
	"cmp"
	"iter"
	"slices"

	"anym/anymerr"
	"anym/canonical"
	"anym/monoid"
	"anym/seqs"
)

// Filter keeps the elements satisfying predicate.
func (s Seq[T]) Filter(predicate func(T) bool) Seq[T] {
	return s.then(func(m canonical.M[T], r *run) canonical.M[T] {
		if r.par == nil || !m.Kind().Many() {
			return m.Filter(predicate)
		}
		return parallelFilter(r, m, predicate)
	})
}

// Peek runs action on every element as a terminal pulls it.
func (s Seq[T]) Peek(action func(T)) Seq[T] {
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return m.Peek(action)
	})
}

// Cycle repeats the sequence count times. count must be positive.
// Single-pass sources are buffered on the first pass.
func (s Seq[T]) Cycle(count int) Seq[T] {
	if count <= 0 {
		return s.fail(anymerr.InvalidArgument("seqm.Cycle", "count must be positive, got %d", count))
	}
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.Cycle(m.Seq(), count))
	})
}

// CycleMonoid reduces the sequence once with mo and repeats the result count times.
func (s Seq[T]) CycleMonoid(mo monoid.Monoid[T], count int) Seq[T] {
	const op = "seqm.CycleMonoid"
	if count <= 0 {
		return s.fail(anymerr.InvalidArgument(op, "count must be positive, got %d", count))
	}
	if !mo.Valid() {
		return s.fail(anymerr.InvalidArgument(op, "monoid has no combine function"))
	}
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		src := m.Seq()
		return lazy(func(yield func(T) bool) {
			reduced := mo.Reduce(src)
			for v := range seqs.Repeat(reduced, count) {
				if !yield(v) {
					return
				}
			}
		})
	})
}

// CycleWhile repeats the sequence while predicate holds for the last element of each
// full pass. The result is unbounded until the predicate fails; bound it with Limit.
func (s Seq[T]) CycleWhile(predicate func(T) bool) Seq[T] {
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.CycleWhile(m.Seq(), predicate))
	})
}

// CycleUntil repeats the sequence until predicate holds for the last element of a
// full pass. The result is unbounded until then; bound it with Limit.
func (s Seq[T]) CycleUntil(predicate func(T) bool) Seq[T] {
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.CycleUntil(m.Seq(), predicate))
	})
}

// ScanLeft emits mo's zero followed by every running combination, so the result is
// one element longer than the input.
func (s Seq[T]) ScanLeft(mo monoid.Monoid[T]) Seq[T] {
	if !mo.Valid() {
		return s.fail(anymerr.InvalidArgument("seqm.ScanLeft", "monoid has no combine function"))
	}
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.ScanLeft(m.Seq(), mo.Zero(), mo.Combine))
	})
}

// SortedFunc sorts by compare. Equal elements keep their order.
func (s Seq[T]) SortedFunc(compare func(a, b T) int) Seq[T] {
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.SortedFunc(m.Seq(), compare))
	})
}

// Reverse buffers the sequence and yields it backwards.
func (s Seq[T]) Reverse() Seq[T] {
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.Reverse(m.Seq()))
	})
}

// Skip drops the first n elements.
func (s Seq[T]) Skip(n int) Seq[T] {
	if n < 0 {
		return s.fail(anymerr.InvalidArgument("seqm.Skip", "n must not be negative, got %d", n))
	}
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.Skip(m.Seq(), n))
	})
}

// SkipWhile drops elements while predicate holds.
func (s Seq[T]) SkipWhile(predicate func(T) bool) Seq[T] {
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.DropWhile(m.Seq(), predicate))
	})
}

// SkipUntil drops elements until predicate first holds. The triggering element is kept.
func (s Seq[T]) SkipUntil(predicate func(T) bool) Seq[T] {
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.SkipUntil(m.Seq(), predicate))
	})
}

// Limit keeps at most n elements. It is the way to bound CycleWhile and CycleUntil.
func (s Seq[T]) Limit(n int) Seq[T] {
	if n < 0 {
		return s.fail(anymerr.InvalidArgument("seqm.Limit", "n must not be negative, got %d", n))
	}
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.Take(m.Seq(), n))
	})
}

func (s Seq[T]) LimitWhile(predicate func(T) bool) Seq[T] {
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.TakeWhile(m.Seq(), predicate))
	})
}

// LimitUntil keeps elements until predicate first holds. The triggering element is dropped.
func (s Seq[T]) LimitUntil(predicate func(T) bool) Seq[T] {
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.TakeUntil(m.Seq(), predicate))
	})
}

// Append adds other after s.
func (s Seq[T]) Append(other Seq[T]) Seq[T] {
	if other.err != nil {
		return s.fail(other.err)
	}
	return s.then(func(m canonical.M[T], r *run) canonical.M[T] {
		return lazy(seqs.Concat(m.Seq(), other.plan(r).Seq()))
	})
}

// Map applies fn to every element. In parallel mode fn runs on the worker pool.
func Map[T, R any](s Seq[T], fn func(T) R) Seq[R] {
	return derive(s, func(m canonical.M[T], r *run) canonical.M[R] {
		if r.par == nil || !m.Kind().Many() {
			return canonical.Map(m, fn)
		}
		return parallelMap(r, m, func(v T) (R, error) { return fn(v), nil })
	})
}

// TryMap is Map for fallible functions. The first error stops the pipeline and is
// returned by the terminal operation.
func TryMap[T, R any](s Seq[T], fn func(T) (R, error)) Seq[R] {
	return derive(s, func(m canonical.M[T], r *run) canonical.M[R] {
		if r.par != nil && m.Kind().Many() {
			return parallelMap(r, m, fn)
		}
		return lazy(drain(r, seqs.TryMap(m.Seq(), fn)))
	})
}

// FlatMap replaces every element with the elements of the pipeline fn returns.
func FlatMap[T, R any](s Seq[T], fn func(T) Seq[R]) Seq[R] {
	return derive(s, func(m canonical.M[T], r *run) canonical.M[R] {
		return lazy(seqs.FlatMap(m.Seq(), func(v T) iter.Seq[R] {
			inner := fn(v)
			if inner.err != nil {
				r.setErr(inner.err)
				return func(func(R) bool) {}
			}
			return inner.plan(r).Seq()
		}))
	})
}

// FlatMapSlice replaces every element with the slice fn returns.
func FlatMapSlice[T, R any](s Seq[T], fn func(T) []R) Seq[R] {
	return FlatMapSeq(s, func(v T) iter.Seq[R] { return slices.Values(fn(v)) })
}

// FlatMapSeq replaces every element with the sequence fn returns.
func FlatMapSeq[T, R any](s Seq[T], fn func(T) iter.Seq[R]) Seq[R] {
	return derive(s, func(m canonical.M[T], _ *run) canonical.M[R] {
		return lazy(seqs.FlatMap(m.Seq(), fn))
	})
}

// FlatMapAny replaces every element with the elements of whatever wrapper fn returns
// (pointer, channel, supplier, slice, M, ...), normalised through the pipeline's
// registry. A wrapper that does not hold R values fails the pipeline with a type
// mismatch.
func FlatMapAny[T, R any](s Seq[T], fn func(T) any) Seq[R] {
	reg := s.Env().registry
	return derive(s, func(m canonical.M[T], r *run) canonical.M[R] {
		return lazy(func(yield func(R) bool) {
			for v := range m.Seq() {
				inner, err := canonical.From[R](reg, fn(v))
				if err != nil {
					r.setErr(err)
					return
				}
				for x := range inner.Seq() {
					if !yield(x) {
						return
					}
				}
			}
		})
	})
}

// Flatten collapses nested wrappers using the environment's registry and depth cap.
func Flatten(s Seq[any]) Seq[any] {
	env := s.Env()
	return derive(s, func(m canonical.M[any], _ *run) canonical.M[any] {
		return canonical.Flatten(m, env.registry, env.maxDepth)
	})
}

// Zip pairs a and b positionally with combine. The result is as long as the shorter input.
func Zip[T, U, R any](a Seq[T], b Seq[U], combine func(T, U) R) Seq[R] {
	out := derive(a, func(m canonical.M[T], r *run) canonical.M[R] {
		return lazy(seqs.ZipWith(m.Seq(), b.plan(r).Seq(), combine))
	})
	if out.err == nil {
		out.err = b.err
	}
	return out
}

// ZipSeq is Zip against a plain sequence.
func ZipSeq[T, U, R any](a Seq[T], b iter.Seq[U], combine func(T, U) R) Seq[R] {
	return derive(a, func(m canonical.M[T], _ *run) canonical.M[R] {
		return lazy(seqs.ZipWith(m.Seq(), b, combine))
	})
}

// Sliding yields overlapping windows of exactly size elements, advancing by one.
// A sequence shorter than size yields no window.
func Sliding[T any](s Seq[T], size int) Seq[[]T] {
	out := derive(s, func(m canonical.M[T], _ *run) canonical.M[[]T] {
		return lazy(seqs.Window(m.Seq(), size, 1))
	})
	if size <= 0 {
		return out.fail(anymerr.InvalidArgument("seqm.Sliding", "size must be positive, got %d", size))
	}
	return out
}

// Grouped yields consecutive chunks of size elements; the last chunk holds the remainder.
func Grouped[T any](s Seq[T], size int) Seq[[]T] {
	out := derive(s, func(m canonical.M[T], _ *run) canonical.M[[]T] {
		return lazy(seqs.Chunk(m.Seq(), size))
	})
	if size <= 0 {
		return out.fail(anymerr.InvalidArgument("seqm.Grouped", "size must be positive, got %d", size))
	}
	return out
}

// Distinct drops repeated elements, keeping first occurrences in order.
func Distinct[T comparable](s Seq[T]) Seq[T] {
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.Distinct(m.Seq()))
	})
}

// DistinctBy drops elements whose key was already seen.
func DistinctBy[T any, K comparable](s Seq[T], key func(T) K) Seq[T] {
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.DistinctBy(m.Seq(), key))
	})
}

// Sorted sorts in natural order.
func Sorted[T cmp.Ordered](s Seq[T]) Seq[T] {
	return s.then(func(m canonical.M[T], _ *run) canonical.M[T] {
		return lazy(seqs.Sorted(m.Seq()))
	})
}
