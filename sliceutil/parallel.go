// Package sliceutil fans work over an already materialised slice out to a fixed
// number of goroutines, one contiguous chunk each.
package sliceutil

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// SerialThreshold is the collection size below which work stays on the calling
// goroutine.
const SerialThreshold = 256

// TryParallelMap is TryParallelMapWithContext with context.Background().
func TryParallelMap[T, R any](collection []T, transform func(T) (R, error)) ([]R, error) {
	return TryParallelMapWithContext(context.Background(), collection, transform)
}

// TryParallelMapWithContext is TryParallelMapN with one worker per CPU.
func TryParallelMapWithContext[T, R any](ctx context.Context, collection []T, transform func(T) (R, error)) ([]R, error) {
	return TryParallelMapN(ctx, runtime.GOMAXPROCS(0), collection, transform)
}

// TryParallelMapN maps collection on up to workers goroutines. The result keeps input
// order. The first error, or ctx's error, stops every worker and is returned.
func TryParallelMapN[T, R any](ctx context.Context, workers int, collection []T, transform func(T) (R, error)) ([]R, error) {
	res := make([]R, len(collection))
	err := forChunks(ctx, workers, len(collection), func(ctx context.Context, _, lo, hi int) error {
		for k := lo; k < hi; k++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			v, err := transform(collection[k])
			if err != nil {
				return err
			}
			res[k] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// TryParallelFilter is TryParallelFilterWithContext with context.Background().
func TryParallelFilter[T any](collection []T, predicate func(T) (bool, error)) ([]T, error) {
	return TryParallelFilterWithContext(context.Background(), collection, predicate)
}

// TryParallelFilterWithContext is TryParallelFilterN with one worker per CPU.
func TryParallelFilterWithContext[T any](ctx context.Context, collection []T, predicate func(T) (bool, error)) ([]T, error) {
	return TryParallelFilterN(ctx, runtime.GOMAXPROCS(0), collection, predicate)
}

// TryParallelFilterN keeps the elements satisfying predicate, evaluated on up to
// workers goroutines. Kept elements stay in input order.
func TryParallelFilterN[T any](ctx context.Context, workers int, collection []T, predicate func(T) (bool, error)) ([]T, error) {
	parts := make([][]T, max(workers, 1))
	err := forChunks(ctx, workers, len(collection), func(ctx context.Context, w, lo, hi int) error {
		local := make([]T, 0, (hi-lo)/2)
		for k := lo; k < hi; k++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			keep, err := predicate(collection[k])
			if err != nil {
				return err
			}
			if keep {
				local = append(local, collection[k])
			}
		}
		parts[w] = local
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := 0
	for _, p := range parts {
		total += len(p)
	}
	res := make([]T, 0, total)
	for _, p := range parts {
		res = append(res, p...)
	}
	return res, nil
}

// forChunks splits [0, n) into at most workers contiguous chunks and runs fn on each.
// Small inputs run as one chunk on the calling goroutine.
func forChunks(ctx context.Context, workers, n int, fn func(ctx context.Context, worker, lo, hi int) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	if workers < 1 || n < SerialThreshold {
		workers = 1
	}
	if workers == 1 {
		return fn(ctx, 0, 0, n)
	}

	size := (n + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w*size < n; w++ {
		lo, hi := w*size, min((w+1)*size, n)
		g.Go(func() error {
			return fn(gctx, w, lo, hi)
		})
	}
	return g.Wait()
}
