/*
Package seqs holds the iterator building blocks seqm composes: slicing and
windowing ([Take], [Window], [Chunk]), combination ([FlatMap], [ZipWith]),
replay ([Cycle], [CycleWhile]) and ordering ([SortedFunc], [Reverse]).

# Concurrency

[ParallelTryMap] and [ParallelTryFilter] push chunks of a source through a fixed
worker pool. Results keep input order when [WithOrderStable] is set. A panic in user
code comes back as that element's error.

[Batcher] groups the items of a [BatcherQueue] by size or elapsed time and hands the
batches to its own workers. [BatchForeach] runs one over an iterator.

	for v, err := range seqs.ParallelTryMap(src, parse, seqs.WithWorkers(8)) {
		...
	}
*/
package seqs
