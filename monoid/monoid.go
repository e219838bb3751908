// Package monoid provides the identity-plus-combine value used by every reduction in anym.
//
// A Monoid must satisfy two laws for the reductions built on it to be meaningful:
// Combine is associative, and Combine(Zero(), x) == x for every x in the domain.
// The optional projection adapts an element before it is combined (see MapReduce).
package monoid

import (
	"cmp"
	"iter"
	"strings"
)

// Numeric is the set of types the arithmetic monoids operate on.
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Monoid is an immutable identity element plus an associative combiner.
type Monoid[T any] struct {
	zero    T
	combine func(T, T) T
	project func(T) T
}

// New returns a monoid with the given identity and combiner.
func New[T any](zero T, combine func(a, b T) T) Monoid[T] {
	if combine == nil {
		panic("anym.monoid.New: combine cannot be nil")
	}
	return Monoid[T]{zero: zero, combine: combine}
}

// WithProjection returns a copy of m that projects every element through p before combining
// it in MapReduce. Reduce ignores the projection.
func (m Monoid[T]) WithProjection(p func(T) T) Monoid[T] {
	m.project = p
	return m
}

// Zero returns the identity element.
func (m Monoid[T]) Zero() T {
	return m.zero
}

// Combine joins two values.
func (m Monoid[T]) Combine(a, b T) T {
	return m.combine(a, b)
}

// Project applies the projection, or returns v unchanged when there is none.
func (m Monoid[T]) Project(v T) T {
	if m.project == nil {
		return v
	}
	return m.project(v)
}

// HasProjection reports whether WithProjection installed a projection.
func (m Monoid[T]) HasProjection() bool {
	return m.project != nil
}

// Valid reports whether m was built with New (the zero Monoid has no combiner).
func (m Monoid[T]) Valid() bool {
	return m.combine != nil
}

// Reduce folds seq from the left starting at Zero. An empty seq yields Zero.
func (m Monoid[T]) Reduce(seq iter.Seq[T]) T {
	acc := m.zero
	for v := range seq {
		acc = m.combine(acc, v)
	}
	return acc
}

// MapReduce projects every element, then folds like Reduce.
func (m Monoid[T]) MapReduce(seq iter.Seq[T]) T {
	acc := m.zero
	for v := range seq {
		acc = m.combine(acc, m.Project(v))
	}
	return acc
}

// Sum adds numbers, identity 0.
func Sum[N Numeric]() Monoid[N] {
	return New(N(0), func(a, b N) N { return a + b })
}

// Product multiplies numbers, identity 1.
func Product[N Numeric]() Monoid[N] {
	return New(N(1), func(a, b N) N { return a * b })
}

// Max keeps the larger value. floor is the identity and must be <= every element.
func Max[T cmp.Ordered](floor T) Monoid[T] {
	return New(floor, func(a, b T) T { return max(a, b) })
}

// Min keeps the smaller value. ceiling is the identity and must be >= every element.
func Min[T cmp.Ordered](ceiling T) Monoid[T] {
	return New(ceiling, func(a, b T) T { return min(a, b) })
}

// Join concatenates strings with sep, identity "". Empty strings contribute nothing,
// which keeps "" a true identity.
func Join(sep string) Monoid[string] {
	return New("", func(a, b string) string {
		switch {
		case a == "":
			return b
		case b == "":
			return a
		}
		var sb strings.Builder
		sb.Grow(len(a) + len(sep) + len(b))
		sb.WriteString(a)
		sb.WriteString(sep)
		sb.WriteString(b)
		return sb.String()
	})
}

// Concat appends slices, identity nil. The result never aliases its inputs.
func Concat[T any]() Monoid[[]T] {
	return New([]T(nil), func(a, b []T) []T {
		if len(a)+len(b) == 0 {
			return nil
		}
		out := make([]T, 0, len(a)+len(b))
		out = append(out, a...)
		return append(out, b...)
	})
}

// All is logical AND, identity true.
func All() Monoid[bool] {
	return New(true, func(a, b bool) bool { return a && b })
}

// Any is logical OR, identity false.
func Any() Monoid[bool] {
	return New(false, func(a, b bool) bool { return a || b })
}
