package seqm_test

import (
	"context"
	"errors"
	"io"
	"slices"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anym/anymerr"
	"anym/canonical"
	"anym/config"
	"anym/monoid"
	"anym/seqm"
	"anym/upscale"
)

func TestReduce(t *testing.T) {
	sum := monoid.Sum[int]()

	got, err := seqm.Values[int]().Reduce(sum)
	require.NoError(t, err)
	assert.Equal(t, 0, got)

	got, err = seqm.Values(2, 3, 4).Reduce(sum)
	require.NoError(t, err)
	assert.Equal(t, 9, got)

	product, err := seqm.Values(2, 3, 4).FoldLeft(monoid.Product[int]())
	require.NoError(t, err)
	assert.Equal(t, 24, product)
}

func TestFoldRight(t *testing.T) {
	joined, err := seqm.Values("a", "b", "c").FoldRight(monoid.Join("-"))
	require.NoError(t, err)
	assert.Equal(t, "c-b-a", joined)

	joined, err = seqm.Values("a", "b", "c").FoldLeft(monoid.Join("-"))
	require.NoError(t, err)
	assert.Equal(t, "a-b-c", joined)
}

func TestMapReduce(t *testing.T) {
	squares := monoid.Sum[int]().WithProjection(func(v int) int { return v * v })

	got, err := seqm.Values(1, 2, 3).MapReduce(squares)
	require.NoError(t, err)
	assert.Equal(t, 14, got)

	// Reduce ignores the projection.
	got, err = seqm.Values(1, 2, 3).Reduce(squares)
	require.NoError(t, err)
	assert.Equal(t, 6, got)

	lengths, err := seqm.MapReduceWith(seqm.Values("go", "rust"), func(s string) int { return len(s) }, monoid.Sum[int]())
	require.NoError(t, err)
	assert.Equal(t, 6, lengths)
}

func TestReduceAll_MatchesSeparateReductions(t *testing.T) {
	s := seqm.Values(3, 9, 4, 1)
	sum, product := monoid.Sum[int](), monoid.Product[int]()

	all, err := s.ReduceAll(sum, product, monoid.Max(0))
	require.NoError(t, err)

	wantSum, err := s.Reduce(sum)
	require.NoError(t, err)
	wantProduct, err := s.Reduce(product)
	require.NoError(t, err)

	assert.Equal(t, []int{wantSum, wantProduct, 9}, all)

	parallel, err := s.Parallel(seqm.WithWorkers(3)).ReduceAll(sum, product, monoid.Max(0))
	require.NoError(t, err)
	assert.Equal(t, all, parallel)
}

func TestReduceAll_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cancelling := monoid.New(0, func(a, b int) int {
		cancel()
		return a + b
	})
	ran := false
	tracking := monoid.New(0, func(a, b int) int {
		ran = true
		return a + b
	})

	_, err := seqm.Values(1, 2, 3).
		Parallel(seqm.WithContext(ctx), seqm.WithWorkers(1)).
		ReduceAll(cancelling, tracking)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran)
}

func TestReduceAll_ReadsSourceOnce(t *testing.T) {
	pulls := 0
	s := seqm.Values(1, 2, 3).Peek(func(int) { pulls++ })

	_, err := s.ReduceAll(monoid.Sum[int](), monoid.Product[int](), monoid.Min(100))
	require.NoError(t, err)
	assert.Equal(t, 3, pulls)

	_, err = s.ReduceAll(monoid.Sum[int](), monoid.Monoid[int]{})
	assert.True(t, errors.Is(err, anymerr.ErrInvalidArgument))
}

func TestStartsWith(t *testing.T) {
	s := seqm.Values(1, 2, 3)

	tests := []struct {
		prefix []int
		want   bool
	}{
		{[]int{1, 2}, true},
		{[]int{}, true},
		{[]int{1, 2, 3}, true},
		{[]int{2}, false},
		{[]int{1, 2, 3, 4}, false},
	}
	for _, tt := range tests {
		got, err := seqm.StartsWith(s, tt.prefix...)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "prefix %v", tt.prefix)
	}

	fold, err := seqm.Values("Go", "Rust").StartsWithFunc(slices.Values([]string{"go"}), strings.EqualFold)
	require.NoError(t, err)
	assert.True(t, fold)
}

func TestMatchingAndFinding(t *testing.T) {
	s := seqm.Values(2, 4, 6)

	all, err := s.AllMatch(func(v int) bool { return v%2 == 0 })
	require.NoError(t, err)
	assert.True(t, all)

	some, err := s.AnyMatch(greater(5))
	require.NoError(t, err)
	assert.True(t, some)

	none, err := s.NoneMatch(greater(6))
	require.NoError(t, err)
	assert.True(t, none)

	v, ok, err := s.Filter(greater(2)).FindFirst()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	_, ok, err = seqm.Values[int]().FindAny()
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestFindFirst_StopsPulling(t *testing.T) {
	pulled := 0
	endless := seqm.FromSeq(func(yield func(int) bool) {
		for i := 0; ; i++ {
			pulled++
			if !yield(i) {
				return
			}
		}
	})

	v, ok, err := endless.Filter(greater(2)).FindFirst()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, 4, pulled)
}

func TestToSetAndToStream(t *testing.T) {
	set, err := seqm.ToSet(seqm.Values("a", "b", "a"))
	require.NoError(t, err)
	assert.Equal(t, map[string]struct{}{"a": {}, "b": {}}, set)

	var got []int
	for v, err := range seqm.Values(1, 2, 3).ToStream() {
		require.NoError(t, err)
		got = append(got, v)
	}
	assert.Equal(t, []int{1, 2, 3}, got)

	var failures []error
	for _, err := range seqm.Values(1).Limit(-1).ToStream() {
		failures = append(failures, err)
	}
	require.Len(t, failures, 1)
	assert.True(t, errors.Is(failures[0], anymerr.ErrInvalidArgument))
}

func TestForEach(t *testing.T) {
	var seen []int
	require.NoError(t, seqm.Values(1, 2, 3).ForEach(func(v int) { seen = append(seen, v) }))
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestForEachBatch(t *testing.T) {
	var batches [][]int
	err := seqm.Values(1, 2, 3, 4, 5).ForEachBatch(2, func(b []int) error {
		batches = append(batches, slices.Clone(b))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2}, {3, 4}, {5}}, batches)

	boom := errors.New("boom")
	err = seqm.Values(1, 2, 3).ForEachBatch(1, func(b []int) error {
		if b[0] == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)

	err = seqm.Values(1).ForEachBatch(0, func([]int) error { return nil })
	assert.True(t, errors.Is(err, anymerr.ErrInvalidArgument))
}

func TestCollectors(t *testing.T) {
	s := seqm.Values(4, 1, 3)

	sum, err := seqm.Collect(s, seqm.Summing[int]())
	require.NoError(t, err)
	assert.Equal(t, 8, sum)

	avg, err := seqm.Collect(s, seqm.Averaging[int]())
	require.NoError(t, err)
	assert.InDelta(t, 8.0/3.0, avg, 1e-9)

	empty, err := seqm.Collect(seqm.Values[int](), seqm.Averaging[int]())
	require.NoError(t, err)
	assert.Zero(t, empty)

	n, err := seqm.Collect(s, seqm.Counting[int]())
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	listed, err := seqm.Collect(seqm.Values[int](), seqm.ToSliceCollector[int]())
	require.NoError(t, err)
	assert.Equal(t, []int{}, listed)

	joined, err := seqm.Collect(seqm.Values("a", "", "b"), seqm.Joining(","))
	require.NoError(t, err)
	assert.Equal(t, "a,,b", joined)

	groups, err := seqm.Collect(seqm.Values("ant", "bee", "ape"), seqm.GroupingBy(func(s string) byte { return s[0] }))
	require.NoError(t, err)
	assert.Equal(t, map[byte][]string{'a': {"ant", "ape"}, 'b': {"bee"}}, groups)

	stats, err := seqm.CollectAll(s, seqm.Summing[int](), seqm.Reducing(monoid.Max(0)), seqm.Reducing(monoid.Min(100)))
	require.NoError(t, err)
	assert.Equal(t, []int{8, 4, 1}, stats)

	_, err = seqm.CollectAll[int, int](s, nil)
	assert.True(t, errors.Is(err, anymerr.ErrInvalidArgument))
}

func TestOf_NormalisesThroughRegistry(t *testing.T) {
	v := 42
	got := list(t, seqm.Of[int](nil, &v))
	assert.Equal(t, []int{42}, got)

	assert.Empty(t, list(t, seqm.Of[int](nil, (*int)(nil))))
	assert.Empty(t, list(t, seqm.Of[int](nil, nil)))

	calls := 0
	supplied := seqm.Of[string](nil, func() string { calls++; return "lazy" })
	assert.Zero(t, calls)
	assert.Equal(t, []string{"lazy"}, list(t, supplied))

	runes := list(t, seqm.Of[rune](nil, "héllo"))
	assert.Equal(t, []rune("héllo"), runes)

	assert.True(t, errors.Is(seqm.Of[string](nil, []int{1}).Err(), anymerr.ErrTypeMismatch))
}

func TestOf_SupplierErrorIsReturnedAsUpstream(t *testing.T) {
	boom := errors.New("upstream down")
	s := seqm.Of[int](nil, func() (int, error) { return 0, boom })

	_, err := s.ToList()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, anymerr.IsKind(err, anymerr.KindUpstream))
	assert.ErrorIs(t, err, anymerr.ErrUpstream)

	_, err = seqm.Map(s.Parallel(seqm.WithWorkers(2)), func(v int) int { return v }).ToList()
	assert.ErrorIs(t, err, boom)
}

func TestOf_ReaderLines(t *testing.T) {
	lines := list(t, seqm.Of[string](nil, strings.NewReader("a b\nc\n")))
	assert.Equal(t, []string{"a b", "c"}, lines)

	broken := io.MultiReader(strings.NewReader("x\n"), iotest.ErrReader(errors.New("disk gone")))
	var seen []string
	err := seqm.Of[string](nil, broken).ForEach(func(v string) { seen = append(seen, v) })
	assert.True(t, anymerr.IsKind(err, anymerr.KindUpstream))
	assert.ErrorContains(t, err, "disk gone")
	assert.Equal(t, []string{"x"}, seen)
}

func TestOf_LazyElementMismatch(t *testing.T) {
	ch := make(chan any, 2)
	ch <- 1
	ch <- "two"
	close(ch)

	s := seqm.Of[int](nil, ch)
	require.NoError(t, s.Err())

	_, err := s.ToList()
	assert.True(t, errors.Is(err, anymerr.ErrTypeMismatch))
}

func TestUnwrap(t *testing.T) {
	v := 7
	ptr, err := seqm.Unwrap[*int](seqm.Of[int](nil, &v))
	require.NoError(t, err)
	assert.Same(t, &v, ptr)

	ints, err := seqm.Unwrap[[]int](seqm.Map(seqm.Values(1, 2), func(v int) int { return v + 1 }))
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, ints)

	_, err = seqm.Unwrap[map[int]int](seqm.Values(1))
	assert.True(t, errors.Is(err, anymerr.ErrTypeMismatch))
}

func TestUpscaled(t *testing.T) {
	identity, err := seqm.Values(1, 2).Upscaled()
	require.NoError(t, err)
	host, ok := identity.(canonical.Host)
	require.True(t, ok)
	assert.Equal(t, canonical.KindLazy, host.Kind)

	cfg := config.Default()
	cfg.Upscaler = "enhanced"
	env, err := seqm.NewEnv(cfg)
	require.NoError(t, err)

	enhanced, err := seqm.Of[int](env, []int{3, 1, 2}).Upscaled()
	require.NoError(t, err)
	stream, ok := upscale.Typed[int](enhanced)
	require.True(t, ok)
	assert.Equal(t, []int{1, 2, 3}, stream.SortComparing(func(a, b int) int { return a - b }).Collect())

	again := list(t, seqm.Of[int](env, enhanced))
	assert.Equal(t, []int{3, 1, 2}, again)
}

func TestEnhanced(t *testing.T) {
	stream, err := seqm.Values(5, 6, 7).Enhanced()
	require.NoError(t, err)
	assert.Equal(t, []int{6, 7}, stream.Skip(1).Collect())
	assert.True(t, stream.Exists(func(v int) bool { return v == 7 }))
}

func TestNewEnv_RejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Parallel.Workers = 0

	_, err := seqm.NewEnv(cfg)
	assert.True(t, errors.Is(err, anymerr.ErrInvalidConfig))
}
