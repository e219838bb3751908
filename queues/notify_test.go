package queues_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anym/queues"
)

func TestNotifyQueue_Limit(t *testing.T) {
	q := queues.NewNotifyQueue[int](2)
	ok, err := q.TryEnqueueBatch(1, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = q.TryEnqueue(3)
	require.NoError(t, err)
	assert.False(t, ok, "full queue rejects")

	ok, _ = q.TryEnqueueBatch(3, 4, 5)
	assert.False(t, ok)
	assert.Equal(t, 2, q.Size())
}

func TestNotifyQueue_ReadySignal(t *testing.T) {
	q := queues.NewNotifyQueue[int](0)
	select {
	case <-q.Ready():
		t.Fatal("empty queue reported ready")
	default:
	}
	require.NoError(t, q.EnqueueOrWait(context.Background(), 1))
	select {
	case <-q.Ready():
	case <-time.After(time.Second):
		t.Fatal("no ready signal")
	}

	dst := make([]int, 4)
	assert.Equal(t, 1, q.TryDequeueBatchInto(dst))
	assert.Equal(t, 0, q.TryDequeueBatchInto(dst))
}

func TestNotifyQueue_EnqueueWaitsForRoom(t *testing.T) {
	q := queues.NewNotifyQueue[int](1)
	ctx := context.Background()
	require.NoError(t, q.EnqueueOrWait(ctx, 1))

	var wg sync.WaitGroup
	wg.Go(func() {
		assert.NoError(t, q.EnqueueOrWait(ctx, 2))
	})

	v, ok := q.DequeueOrWait(ctx)
	require.True(t, ok)
	assert.Equal(t, 1, v)
	wg.Wait()

	v, ok = q.DequeueOrWait(ctx)
	require.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestNotifyQueue_CancelAndClose(t *testing.T) {
	q := queues.NewNotifyQueue[int](1)
	require.NoError(t, q.EnqueueOrWait(context.Background(), 1))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, q.EnqueueOrWait(ctx, 2), context.DeadlineExceeded)

	q.Close()
	q.Close()
	assert.True(t, q.IsClosed())
	assert.ErrorIs(t, q.EnqueueOrWait(context.Background(), 3), queues.ErrQueueClosed)

	select {
	case <-q.Done():
	default:
		t.Fatal("done not closed")
	}

	v, ok := q.DequeueOrWait(context.Background())
	assert.True(t, ok, "queued items survive close")
	assert.Equal(t, 1, v)
	_, ok = q.DequeueOrWait(context.Background())
	assert.False(t, ok)
}
