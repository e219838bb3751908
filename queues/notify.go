package queues

import (
	"context"
	"errors"
	"sync"
)

var ErrQueueClosed = errors.New("anym.queues: queue is closed")

// NotifyQueue is a bounded, goroutine-safe FIFO that signals readiness over
// channels instead of blocking its consumer.
type NotifyQueue[T any] struct {
	mu       sync.Mutex
	ring     *Ring[T]
	limit    int
	closed   bool
	notEmpty chan struct{}
	notFull  chan struct{}
	done     chan struct{}
}

// NewNotifyQueue returns a queue holding at most limit items. A non-positive limit
// leaves it unbounded.
func NewNotifyQueue[T any](limit int) *NotifyQueue[T] {
	return &NotifyQueue[T]{
		ring:     NewRing[T](max(limit, 16)),
		limit:    limit,
		notEmpty: make(chan struct{}, 1),
		notFull:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
}

func notify(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}

// signal re-arms the readiness channels. Callers hold mu.
func (q *NotifyQueue[T]) signal() {
	if q.ring.Len() > 0 {
		notify(q.notEmpty)
	}
	if q.limit <= 0 || q.ring.Len() < q.limit {
		notify(q.notFull)
	}
}

// TryEnqueueBatch adds all of vs or none of them. It reports false when they do
// not fit.
func (q *NotifyQueue[T]) TryEnqueueBatch(vs ...T) (bool, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false, ErrQueueClosed
	}
	if q.limit > 0 && q.ring.Len()+len(vs) > q.limit {
		return false, nil
	}
	q.ring.PushAll(vs...)
	q.signal()
	return true, nil
}

func (q *NotifyQueue[T]) TryEnqueue(v T) (bool, error) {
	return q.TryEnqueueBatch(v)
}

// EnqueueBatchOrWait waits until vs fit, the queue closes or ctx is done. A batch
// larger than the limit never fits.
func (q *NotifyQueue[T]) EnqueueBatchOrWait(ctx context.Context, vs ...T) error {
	for {
		ok, err := q.TryEnqueueBatch(vs...)
		if err != nil || ok {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.done:
			return ErrQueueClosed
		case <-q.notFull:
		}
	}
}

func (q *NotifyQueue[T]) EnqueueOrWait(ctx context.Context, v T) error {
	return q.EnqueueBatchOrWait(ctx, v)
}

// TryDequeueBatchInto moves up to len(dst) items into dst.
func (q *NotifyQueue[T]) TryDequeueBatchInto(dst []T) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := q.ring.PopInto(dst)
	if n > 0 {
		q.signal()
	}
	return n
}

// DequeueOrWait waits for one item. It returns false once ctx is done, or once the
// queue is closed and empty.
func (q *NotifyQueue[T]) DequeueOrWait(ctx context.Context) (T, bool) {
	one := make([]T, 1)
	for {
		if q.TryDequeueBatchInto(one) == 1 {
			return one[0], true
		}
		select {
		case <-ctx.Done():
			return one[0], false
		case <-q.done:
			if q.TryDequeueBatchInto(one) == 1 {
				return one[0], true
			}
			return one[0], false
		case <-q.notEmpty:
		}
	}
}

func (q *NotifyQueue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ring.Len()
}

// Ready fires when items may be waiting. A receive does not guarantee one is left.
func (q *NotifyQueue[T]) Ready() <-chan struct{} { return q.notEmpty }

// Done is closed by Close.
func (q *NotifyQueue[T]) Done() <-chan struct{} { return q.done }

// Close stops further enqueues. Items already queued can still be dequeued.
func (q *NotifyQueue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.done)
	}
}

func (q *NotifyQueue[T]) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}
