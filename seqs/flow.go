package seqs

import "iter"

// Take yields at most n elements and stops pulling from seq once it has them.
func Take[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	return func(yield func(T) bool) {
		if n <= 0 {
			return
		}
		left := n
		for v := range seq {
			if !yield(v) {
				return
			}
			if left--; left == 0 {
				return
			}
		}
	}
}

// Skip drops the first n elements. A non-positive n drops nothing.
func Skip[T any](seq iter.Seq[T], n int) iter.Seq[T] {
	return func(yield func(T) bool) {
		i := 0
		for v := range seq {
			if i < n {
				i++
				continue
			}
			if !yield(v) {
				return
			}
		}
	}
}

func TakeWhile[T any](seq iter.Seq[T], predicate func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		for v := range seq {
			if !predicate(v) || !yield(v) {
				return
			}
		}
	}
}

func DropWhile[T any](seq iter.Seq[T], predicate func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		passing := false
		for v := range seq {
			if !passing && predicate(v) {
				continue
			}
			passing = true
			if !yield(v) {
				return
			}
		}
	}
}

// SkipUntil drops elements until predicate first holds; that element is the first
// one yielded.
func SkipUntil[T any](seq iter.Seq[T], predicate func(T) bool) iter.Seq[T] {
	return DropWhile(seq, func(v T) bool { return !predicate(v) })
}

// TakeUntil yields elements until predicate first holds. The matching element is
// not yielded.
func TakeUntil[T any](seq iter.Seq[T], predicate func(T) bool) iter.Seq[T] {
	return TakeWhile(seq, func(v T) bool { return !predicate(v) })
}
