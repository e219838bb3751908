package seqm_test

import (
	"errors"
	"iter"
	"slices"
	"strconv"
	"testing"

	"github.com/go-softwarelab/common/pkg/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anym/anymerr"
	"anym/canonical"
	"anym/monoid"
	"anym/seqm"
)

func list[T any](t *testing.T, s seqm.Seq[T]) []T {
	t.Helper()
	out, err := s.ToList()
	require.NoError(t, err)
	return out
}

func greater(n int) func(int) bool { return func(v int) bool { return v > n } }

func less(n int) func(int) bool { return func(v int) bool { return v < n } }

func TestGrouped(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5, 6}}, list(t, seqm.Grouped(seqm.Values(1, 2, 3, 4, 5, 6), 3)))
	assert.Equal(t, [][]int{{1, 2, 3}, {4, 5}}, list(t, seqm.Grouped(seqm.Values(1, 2, 3, 4, 5), 3)))
	assert.Empty(t, list(t, seqm.Grouped(seqm.Values[int](), 3)))
}

func TestSliding(t *testing.T) {
	assert.Equal(t, [][]int{{1, 2}, {2, 3}}, list(t, seqm.Sliding(seqm.Values(1, 2, 3), 2)))
	assert.Empty(t, list(t, seqm.Sliding(seqm.Values(1), 2)))

	windows := list(t, seqm.Sliding(seqm.Values(1, 2, 3, 4, 5), 3))
	assert.Len(t, windows, 3)
}

func TestZip_TruncatesToShorter(t *testing.T) {
	add := func(a, b int) int { return a + b }

	assert.Equal(t, []int{11, 22}, list(t, seqm.Zip(seqm.Values(1, 2, 3), seqm.Values(10, 20), add)))
	assert.Equal(t, []int{11, 22}, list(t, seqm.ZipSeq(seqm.Values(1, 2), slices.Values([]int{10, 20, 30}), add)))

	pairs := seqm.Zip(seqm.Values("a", "b"), seqm.Values(1, 2), func(s string, n int) string {
		return s + strconv.Itoa(n)
	})
	assert.Equal(t, []string{"a1", "b2"}, list(t, pairs))
}

func TestCycle(t *testing.T) {
	assert.Equal(t, []int{1, 2, 1, 2}, list(t, seqm.Values(1, 2).Cycle(2)))
	assert.Equal(t, []int{1, 2}, list(t, seqm.Values(1, 2).Cycle(1)))
}

func TestCycle_SinglePassSource(t *testing.T) {
	ch := make(chan int, 2)
	ch <- 7
	ch <- 8
	close(ch)

	assert.Equal(t, []int{7, 8, 7, 8, 7, 8}, list(t, seqm.Of[int](nil, ch).Cycle(3)))
}

func TestCycleMonoid(t *testing.T) {
	assert.Equal(t, []int{6, 6, 6}, list(t, seqm.Values(1, 2, 3).CycleMonoid(monoid.Sum[int](), 3)))
}

func TestCycleWhileAndUntil(t *testing.T) {
	passes := 0
	s := seqm.Values(1, 2, 3).CycleWhile(func(last int) bool {
		passes++
		return last == 3 && passes < 2
	})
	assert.Equal(t, []int{1, 2, 3, 1, 2, 3}, list(t, s))

	unbounded := seqm.Values(1, 2).CycleWhile(greater(0)).Limit(5)
	assert.Equal(t, []int{1, 2, 1, 2, 1}, list(t, unbounded))

	once := seqm.Values(1, 2).CycleUntil(is.Not(less(2)))
	assert.Equal(t, []int{1, 2}, list(t, once))

	assert.Empty(t, list(t, seqm.Values[int]().CycleWhile(greater(0))))
}

func TestScanLeft(t *testing.T) {
	assert.Equal(t, []int{0, 1, 3, 6}, list(t, seqm.Values(1, 2, 3).ScanLeft(monoid.Sum[int]())))
	assert.Equal(t, []int{0}, list(t, seqm.Values[int]().ScanLeft(monoid.Sum[int]())))
}

func TestDistinct(t *testing.T) {
	distinct := list(t, seqm.Distinct(seqm.Values(3, 1, 3, 2, 1)))
	assert.Equal(t, []int{3, 1, 2}, distinct)
	assert.True(t, is.UniqueSlice(distinct))

	byLen := seqm.DistinctBy(seqm.Values("go", "js", "rust", "java"), func(s string) int { return len(s) })
	assert.Equal(t, []string{"go", "rust"}, list(t, byLen))
}

func TestSorted(t *testing.T) {
	s := seqm.Values(5, 3, 9, 1, 3)
	once := list(t, seqm.Sorted(s))
	twice := list(t, seqm.Sorted(seqm.Sorted(s)))

	assert.Equal(t, []int{1, 3, 3, 5, 9}, once)
	assert.Equal(t, once, twice)
}

func TestSortedFunc_IsStable(t *testing.T) {
	type item struct {
		key  int
		name string
	}
	s := seqm.Values(item{2, "a"}, item{1, "b"}, item{2, "c"}, item{1, "d"})

	got := list(t, s.SortedFunc(func(a, b item) int { return a.key - b.key }))
	assert.Equal(t, []item{{1, "b"}, {1, "d"}, {2, "a"}, {2, "c"}}, got)
}

func TestSkipAndLimit(t *testing.T) {
	s := seqm.Values(1, 2, 3, 4, 5, 1)

	assert.Equal(t, []int{3, 4, 5, 1}, list(t, s.Skip(2)))
	assert.Equal(t, []int{3, 4, 5, 1}, list(t, s.SkipWhile(less(3))))
	assert.Equal(t, []int{4, 5, 1}, list(t, s.SkipUntil(greater(3))))
	assert.Equal(t, []int{1, 2}, list(t, s.Limit(2)))
	assert.Equal(t, []int{1, 2}, list(t, s.LimitWhile(less(3))))
	assert.Equal(t, []int{1, 2, 3}, list(t, s.LimitUntil(greater(3))))
	assert.Empty(t, list(t, s.Limit(0)))
}

func TestInvalidArguments_AreSticky(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"grouped", seqm.Grouped(seqm.Values(1), 0).Err()},
		{"sliding", seqm.Sliding(seqm.Values(1), -1).Err()},
		{"cycle", seqm.Values(1).Cycle(0).Err()},
		{"cycle monoid", seqm.Values(1).CycleMonoid(monoid.Sum[int](), -2).Err()},
		{"skip", seqm.Values(1).Skip(-1).Err()},
		{"limit", seqm.Values(1).Limit(-1).Err()},
		{"scan", seqm.Values(1).ScanLeft(monoid.Monoid[int]{}).Err()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, anymerr.ErrInvalidArgument), "got %v", tt.err)
		})
	}

	called := false
	s := seqm.Map(seqm.Grouped(seqm.Values(1, 2), 0), func(g []int) int {
		called = true
		return len(g)
	})
	_, err := s.ToList()
	assert.True(t, errors.Is(err, anymerr.ErrInvalidArgument))
	assert.False(t, called)

	_, err = seqm.Values(1).Reduce(monoid.Monoid[int]{})
	assert.True(t, anymerr.IsKind(err, anymerr.KindInvalidArgument))
}

func TestMapFilterPeek(t *testing.T) {
	var peeked []int
	s := seqm.Map(seqm.Values(1, 2, 3, 4).Filter(func(v int) bool { return v%2 == 0 }), strconv.Itoa).
		Peek(func(string) {})
	evens := seqm.Values(1, 2, 3, 4).Peek(func(v int) { peeked = append(peeked, v) }).Filter(greater(2))

	assert.Empty(t, peeked)
	assert.Equal(t, []string{"2", "4"}, list(t, s))
	assert.Equal(t, []int{3, 4}, list(t, evens))
	assert.Equal(t, []int{1, 2, 3, 4}, peeked)
}

func TestPipelineIsPersistent(t *testing.T) {
	base := seqm.Values(1, 2, 3)
	doubled := seqm.Map(base, func(v int) int { return v * 2 })
	_ = base.Filter(func(int) bool { return false })

	assert.Equal(t, []int{1, 2, 3}, list(t, base))
	assert.Equal(t, []int{2, 4, 6}, list(t, doubled))
	assert.Equal(t, []int{2, 4, 6}, list(t, doubled))
}

func TestFlatMapVariants(t *testing.T) {
	repeat := func(v int) seqm.Seq[int] { return seqm.Values(v, v) }
	assert.Equal(t, []int{1, 1, 2, 2}, list(t, seqm.FlatMap(seqm.Values(1, 2), repeat)))

	split := seqm.FlatMapSlice(seqm.Values("a,b", "c"), func(s string) []string {
		return []string{s + "!", s + "?"}
	})
	assert.Equal(t, []string{"a,b!", "a,b?", "c!", "c?"}, list(t, split))

	ranged := seqm.FlatMapSeq(seqm.Values(2, 3), func(n int) iter.Seq[int] {
		return slices.Values(slices.Repeat([]int{n}, n))
	})
	assert.Equal(t, []int{2, 2, 3, 3, 3}, list(t, ranged))

	bad := seqm.FlatMap(seqm.Values(1), func(int) seqm.Seq[[]int] { return seqm.Grouped(seqm.Values(1), 0) })
	_, err := bad.ToList()
	assert.True(t, errors.Is(err, anymerr.ErrInvalidArgument))
}

func TestFlatMapAny_NormalisesWrappers(t *testing.T) {
	lookup := map[string]int{"one": 1, "three": 3}
	found := seqm.FlatMapAny[string, int](seqm.Values("one", "two", "three"), func(k string) any {
		if v, ok := lookup[k]; ok {
			return &v
		}
		return (*int)(nil)
	})
	assert.Equal(t, []int{1, 3}, list(t, found))

	mismatch := seqm.FlatMapAny[int, string](seqm.Values(1), func(v int) any { return []int{v} })
	_, err := mismatch.ToList()
	assert.True(t, errors.Is(err, anymerr.ErrTypeMismatch))
}

func TestTryMap_SurfacesFirstError(t *testing.T) {
	s := seqm.TryMap(seqm.Values("1", "2", "x", "y"), strconv.Atoi)

	_, err := s.ToList()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"x"`)

	ok, err := seqm.TryMap(seqm.Values("4", "5"), strconv.Atoi).ToList()
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, ok)
}

func TestAppendAndReverse(t *testing.T) {
	s := seqm.Values(1, 2).Append(seqm.Values(3))
	assert.Equal(t, []int{1, 2, 3}, list(t, s))
	assert.Equal(t, []int{3, 2, 1}, list(t, s.Reverse()))
}

func TestFlatten(t *testing.T) {
	inner := 5
	flat := list(t, seqm.Flatten(seqm.Values[any](1, []any{2, &inner})))
	assert.Equal(t, []any{1, 2, 5}, flat)

	deep := seqm.Values[any]([]any{[]any{[]any{canonical.FromSlice([]any{"x", "y"})}}})
	assert.Equal(t, []any{"x", "y"}, list(t, seqm.Flatten(deep)))
}
