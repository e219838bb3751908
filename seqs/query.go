package seqs

import "iter"

// Range yields start, start+step, ... up to but excluding end. A zero step yields
// nothing.
func Range(start, end, step int) iter.Seq[int] {
	return func(yield func(int) bool) {
		if step == 0 {
			return
		}
		for i := start; (step > 0 && i < end) || (step < 0 && i > end); i += step {
			if !yield(i) {
				return
			}
		}
	}
}

func Repeat[T any](value T, count int) iter.Seq[T] {
	return func(yield func(T) bool) {
		for range count {
			if !yield(value) {
				return
			}
		}
	}
}

// TryMap pairs every transformed element with transform's error. Iteration goes
// on past an error for as long as the consumer keeps asking.
func TryMap[T, R any](seq iter.Seq[T], transform func(T) (R, error)) iter.Seq2[R, error] {
	return func(yield func(R, error) bool) {
		for v := range seq {
			if !yield(transform(v)) {
				return
			}
		}
	}
}

func First[T any](seq iter.Seq[T]) (T, bool) {
	for v := range seq {
		return v, true
	}
	var zero T
	return zero, false
}

func Any[T any](seq iter.Seq[T], predicate func(T) bool) bool {
	for v := range seq {
		if predicate(v) {
			return true
		}
	}
	return false
}

func All[T any](seq iter.Seq[T], predicate func(T) bool) bool {
	return !Any(seq, func(v T) bool { return !predicate(v) })
}

func Count[T any](seq iter.Seq[T]) int {
	n := 0
	for range seq {
		n++
	}
	return n
}
