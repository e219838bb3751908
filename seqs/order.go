package seqs

import (
	"cmp"
	"iter"
	"slices"
)

// Sorted buffers seq and yields it in ascending natural order.
func Sorted[T cmp.Ordered](seq iter.Seq[T]) iter.Seq[T] {
	return SortedFunc(seq, cmp.Compare[T])
}

// SortedFunc buffers seq and yields it ordered by compare.
// The sort is stable: equal elements keep their input order.
func SortedFunc[T any](seq iter.Seq[T], compare func(a, b T) int) iter.Seq[T] {
	return func(yield func(T) bool) {
		buf := slices.Collect(seq)
		slices.SortStableFunc(buf, compare)
		for _, v := range buf {
			if !yield(v) {
				return
			}
		}
	}
}

// StartsWith reports whether seq begins with every element of prefix, in order.
// An empty prefix always matches; a seq shorter than prefix never does.
func StartsWith[T comparable](seq iter.Seq[T], prefix iter.Seq[T]) bool {
	return StartsWithFunc(seq, prefix, func(a, b T) bool { return a == b })
}

// StartsWithFunc is StartsWith with a custom equality.
// Only as many elements of seq as prefix holds are pulled.
func StartsWithFunc[T any](seq iter.Seq[T], prefix iter.Seq[T], eq func(a, b T) bool) bool {
	next, stop := iter.Pull(seq)
	defer stop()

	for want := range prefix {
		got, ok := next()
		if !ok || !eq(got, want) {
			return false
		}
	}
	return true
}
