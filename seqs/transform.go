package seqs

import (
	"iter"
	"slices"
)

// FlatMap yields every element of f(s) for each s of source, in order.
func FlatMap[S, T any](source iter.Seq[S], f func(S) iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		for s := range source {
			for t := range f(s) {
				if !yield(t) {
					return
				}
			}
		}
	}
}

func Concat[T any](parts ...iter.Seq[T]) iter.Seq[T] {
	return FlatMap(slices.Values(parts), func(p iter.Seq[T]) iter.Seq[T] { return p })
}

// ZipWith combines seq1 and seq2 position by position. It stops with the shorter
// of the two.
func ZipWith[T1, T2, R any](seq1 iter.Seq[T1], seq2 iter.Seq[T2], combine func(T1, T2) R) iter.Seq[R] {
	return func(yield func(R) bool) {
		next, stop := iter.Pull(seq2)
		defer stop()
		for a := range seq1 {
			b, ok := next()
			if !ok || !yield(combine(a, b)) {
				return
			}
		}
	}
}

// Chunk cuts seq into consecutive slices of size. The last one may be shorter.
func Chunk[T any](seq iter.Seq[T], size int) iter.Seq[[]T] {
	return Window(seq, size, size)
}

// Window yields slices of size elements, starting a new one every step elements.
// Windows overlap when step < size and leave gaps when step > size. Only full
// windows are yielded, except that a trailing partial chunk is kept when
// step == size. Every yielded slice is freshly allocated.
func Window[T any](seq iter.Seq[T], size, step int) iter.Seq[[]T] {
	return func(yield func([]T) bool) {
		if size <= 0 || step <= 0 {
			return
		}
		buf := make([]T, 0, size)
		gap := 0
		for v := range seq {
			if gap > 0 {
				gap--
				continue
			}
			buf = append(buf, v)
			if len(buf) < size {
				continue
			}
			if !yield(slices.Clone(buf)) {
				return
			}
			if step < size {
				buf = append(buf[:0], buf[step:]...)
			} else {
				buf = buf[:0]
				gap = step - size
			}
		}
		if step == size && len(buf) > 0 {
			yield(buf)
		}
	}
}

func Distinct[T comparable](seq iter.Seq[T]) iter.Seq[T] {
	return DistinctBy(seq, func(v T) T { return v })
}

// DistinctBy yields the first element seen for every key. Memory grows with the
// number of distinct keys.
func DistinctBy[T any, K comparable](seq iter.Seq[T], key func(T) K) iter.Seq[T] {
	return func(yield func(T) bool) {
		seen := make(map[K]struct{})
		for v := range seq {
			k := key(v)
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			if !yield(v) {
				return
			}
		}
	}
}

// Scan yields the running accumulation after each element.
func Scan[T, R any](seq iter.Seq[T], initial R, reducer func(R, T) R) iter.Seq[R] {
	return func(yield func(R) bool) {
		acc := initial
		for v := range seq {
			acc = reducer(acc, v)
			if !yield(acc) {
				return
			}
		}
	}
}

// ScanLeft is Scan preceded by initial, one element longer than seq.
func ScanLeft[T, R any](seq iter.Seq[T], initial R, reducer func(R, T) R) iter.Seq[R] {
	return Concat(Repeat(initial, 1), Scan(seq, initial, reducer))
}

// Reverse buffers seq and yields it back to front.
func Reverse[T any](seq iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		buf := slices.Collect(seq)
		for i := len(buf) - 1; i >= 0; i-- {
			if !yield(buf[i]) {
				return
			}
		}
	}
}
