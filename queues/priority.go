package queues

import (
	"container/heap"
	"iter"
)

// PriorityQueue pops the element that sorts first under before. It is not safe
// for concurrent use.
type PriorityQueue[T any] struct {
	h *binaryHeap[T]
}

type binaryHeap[T any] struct {
	items  []T
	before func(a, b T) bool
}

func (h *binaryHeap[T]) Len() int           { return len(h.items) }
func (h *binaryHeap[T]) Less(i, j int) bool { return h.before(h.items[i], h.items[j]) }
func (h *binaryHeap[T]) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *binaryHeap[T]) Push(x any)         { h.items = append(h.items, x.(T)) }

func (h *binaryHeap[T]) Pop() any {
	last := len(h.items) - 1
	v := h.items[last]
	var zero T
	h.items[last] = zero
	h.items = h.items[:last]
	return v
}

// NewPriorityQueue returns an empty queue ordered by before, which must be a
// strict weak ordering.
func NewPriorityQueue[T any](capacity int, before func(a, b T) bool) *PriorityQueue[T] {
	if before == nil {
		panic("anym.queues.NewPriorityQueue: before cannot be nil")
	}
	return &PriorityQueue[T]{h: &binaryHeap[T]{items: make([]T, 0, max(capacity, 0)), before: before}}
}

func (pq *PriorityQueue[T]) Push(v T) { heap.Push(pq.h, v) }

func (pq *PriorityQueue[T]) Pop() (T, bool) {
	if pq.h.Len() == 0 {
		var zero T
		return zero, false
	}
	return heap.Pop(pq.h).(T), true
}

func (pq *PriorityQueue[T]) Peek() (T, bool) {
	if pq.h.Len() == 0 {
		var zero T
		return zero, false
	}
	return pq.h.items[0], true
}

func (pq *PriorityQueue[T]) Len() int { return pq.h.Len() }

// Drain pops every element in order, including ones pushed while draining.
// Stopping early leaves the rest queued.
func (pq *PriorityQueue[T]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, ok := pq.Pop()
			if !ok || !yield(v) {
				return
			}
		}
	}
}
