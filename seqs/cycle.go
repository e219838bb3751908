package seqs

import "iter"

// Cycle repeats seq count times, in original order.
// The first pass is buffered while it is being yielded, so single-pass sources
// (channels, generators) replay correctly on later passes.
func Cycle[T any](seq iter.Seq[T], count int) iter.Seq[T] {
	return func(yield func(T) bool) {
		if count <= 0 {
			return
		}
		buffer, ok := replayFirstPass(seq, yield)
		if !ok {
			return
		}
		for i := 1; i < count; i++ {
			for _, v := range buffer {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// CycleWhile repeats seq indefinitely. After every full pass the last element of that
// pass is tested with predicate; cycling continues while it returns true.
// The result is unbounded unless the predicate eventually fails, so consumers
// should bound it with Take or a similar operation.
// An empty seq yields nothing.
func CycleWhile[T any](seq iter.Seq[T], predicate func(T) bool) iter.Seq[T] {
	return cyclePasses(seq, predicate)
}

// CycleUntil is CycleWhile with the predicate negated: it stops after the first full
// pass whose last element satisfies predicate.
func CycleUntil[T any](seq iter.Seq[T], predicate func(T) bool) iter.Seq[T] {
	return cyclePasses(seq, func(v T) bool { return !predicate(v) })
}

func cyclePasses[T any](seq iter.Seq[T], keepGoing func(T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		buffer, ok := replayFirstPass(seq, yield)
		if !ok || len(buffer) == 0 {
			return
		}
		last := buffer[len(buffer)-1]
		for keepGoing(last) {
			for _, v := range buffer {
				if !yield(v) {
					return
				}
			}
		}
	}
}

// replayFirstPass yields every element of seq while recording it.
// ok is false when the consumer stopped early.
func replayFirstPass[T any](seq iter.Seq[T], yield func(T) bool) (buffer []T, ok bool) {
	for v := range seq {
		buffer = append(buffer, v)
		if !yield(v) {
			return buffer, false
		}
	}
	return buffer, true
}
