package seqs

import (
	"context"
	"iter"

	"anym/queues"
)

const ingestChunk = 128

// SeqQueue is a BatcherQueue filled from an iterator on its own goroutine. It
// closes once the iterator ends or ctx is done.
type SeqQueue[T any] struct {
	*queues.NotifyQueue[T]
	stopped chan struct{}
	fault   any
}

// NewSeqQueue starts pulling from seq. At most capacity items wait in the queue;
// the iterator is paused while it is full.
func NewSeqQueue[T any](ctx context.Context, seq iter.Seq[T], capacity int) *SeqQueue[T] {
	if capacity <= 0 {
		capacity = ingestChunk
	}
	q := &SeqQueue[T]{
		NotifyQueue: queues.NewNotifyQueue[T](capacity),
		stopped:     make(chan struct{}),
	}
	go q.ingest(ctx, seq, min(capacity, ingestChunk))
	return q
}

// Wait blocks until the iterator is no longer pulled and returns the value it
// panicked with, if any.
func (q *SeqQueue[T]) Wait() any {
	<-q.stopped
	return q.fault
}

func (q *SeqQueue[T]) ingest(ctx context.Context, seq iter.Seq[T], chunk int) {
	defer close(q.stopped)
	defer q.Close()

	buf := make([]T, 0, chunk)
	failed := false
	q.fault = pull(seq, func(v T) bool {
		buf = append(buf, v)
		if len(buf) < chunk {
			return true
		}
		if q.EnqueueBatchOrWait(ctx, buf...) != nil {
			failed = true
			return false
		}
		buf = buf[:0]
		return true
	})
	if !failed && len(buf) > 0 {
		_ = q.EnqueueBatchOrWait(ctx, buf...)
	}
}
