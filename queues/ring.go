// Package queues holds the queue types behind converter ordering and batching.
package queues

import "math/bits"

// Ring is a FIFO over a power-of-two circular buffer that doubles when full.
// It is not safe for concurrent use.
type Ring[T any] struct {
	buf  []T
	head int
	n    int
}

func NewRing[T any](capacity int) *Ring[T] {
	return &Ring[T]{buf: make([]T, roundUp(max(capacity, 1)))}
}

func roundUp(n int) int {
	if n <= 1 {
		return 1
	}
	return 1 << bits.Len(uint(n-1))
}

func (r *Ring[T]) mask() int { return len(r.buf) - 1 }

func (r *Ring[T]) Len() int { return r.n }

func (r *Ring[T]) grow(extra int) {
	if r.n+extra <= len(r.buf) {
		return
	}
	next := make([]T, roundUp(r.n+extra))
	r.copyOut(next)
	r.buf, r.head = next, 0
}

// copyOut copies the live elements, oldest first, into dst and returns how many
// were copied.
func (r *Ring[T]) copyOut(dst []T) int {
	k := min(len(dst), r.n)
	first := copy(dst[:k], r.buf[r.head:min(r.head+k, len(r.buf))])
	copy(dst[first:k], r.buf[:k-first])
	return k
}

func (r *Ring[T]) Push(v T) {
	r.grow(1)
	r.buf[(r.head+r.n)&r.mask()] = v
	r.n++
}

func (r *Ring[T]) PushAll(vs ...T) {
	r.grow(len(vs))
	tail := (r.head + r.n) & r.mask()
	k := copy(r.buf[tail:], vs)
	copy(r.buf, vs[k:])
	r.n += len(vs)
}

func (r *Ring[T]) Pop() (T, bool) {
	var zero T
	if r.n == 0 {
		return zero, false
	}
	v := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) & r.mask()
	r.n--
	return v, true
}

// PopInto moves up to len(dst) elements into dst and returns the count.
func (r *Ring[T]) PopInto(dst []T) int {
	k := r.copyOut(dst)
	for i := range k {
		var zero T
		r.buf[(r.head+i)&r.mask()] = zero
	}
	r.head = (r.head + k) & r.mask()
	r.n -= k
	return k
}
