package monoid_test

import (
	"math"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"

	"anym/monoid"
)

func TestSum_Reduce(t *testing.T) {
	sum := monoid.Sum[int]()

	assert.Equal(t, 0, sum.Reduce(slices.Values([]int{})))
	assert.Equal(t, 9, sum.Reduce(slices.Values([]int{2, 3, 4})))
}

func TestIdentityLaw(t *testing.T) {
	values := []int{-3, 0, 7, 42}
	for _, m := range []monoid.Monoid[int]{
		monoid.Sum[int](),
		monoid.Product[int](),
		monoid.Max(math.MinInt),
		monoid.Min(math.MaxInt),
	} {
		for _, v := range values {
			assert.Equal(t, v, m.Combine(m.Zero(), v))
			assert.Equal(t, v, m.Combine(v, m.Zero()))
		}
	}
}

func TestAssociativity(t *testing.T) {
	join := monoid.Join(",")
	a, b, c := "x", "y", "z"
	assert.Equal(t, join.Combine(join.Combine(a, b), c), join.Combine(a, join.Combine(b, c)))

	cat := monoid.Concat[int]()
	assert.Equal(t,
		cat.Combine(cat.Combine([]int{1}, []int{2}), []int{3}),
		cat.Combine([]int{1}, cat.Combine([]int{2}, []int{3})))
}

func TestMapReduce_UsesProjection(t *testing.T) {
	squares := monoid.Sum[int]().WithProjection(func(v int) int { return v * v })

	assert.True(t, squares.HasProjection())
	assert.Equal(t, 14, squares.MapReduce(slices.Values([]int{1, 2, 3})))
	// Reduce ignores the projection.
	assert.Equal(t, 6, squares.Reduce(slices.Values([]int{1, 2, 3})))
	assert.Equal(t, 5, monoid.Sum[int]().Project(5))
}

func TestJoin(t *testing.T) {
	join := monoid.Join("-")
	assert.Equal(t, "a-b-c", join.Reduce(slices.Values([]string{"a", "b", "c"})))
	assert.Equal(t, "", join.Reduce(slices.Values([]string{})))
}

func TestBooleanMonoids(t *testing.T) {
	assert.True(t, monoid.All().Reduce(slices.Values([]bool{})))
	assert.False(t, monoid.All().Reduce(slices.Values([]bool{true, false})))
	assert.False(t, monoid.Any().Reduce(slices.Values([]bool{})))
	assert.True(t, monoid.Any().Reduce(slices.Values([]bool{false, true})))
}

func TestNew_NilCombinePanics(t *testing.T) {
	assert.Panics(t, func() { monoid.New[int](0, nil) })
	assert.False(t, monoid.Monoid[int]{}.Valid())
}
