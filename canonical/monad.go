package canonical

import (
	"iter"
	"reflect"
	"slices"
)

// M is the typed canonical wrapper. It is an immutable value: every operation
// returns a new M and leaves the receiver usable and unchanged.
type M[T any] struct {
	kind Kind
	// one produces the element of a single-valued wrapper on demand.
	one func() (T, bool)
	seq iter.Seq[T]

	host    any
	hasHost bool
}

// Just wraps a single value.
func Just[T any](v T) M[T] {
	return M[T]{
		kind:    KindSingle,
		one:     func() (T, bool) { return v, true },
		host:    v,
		hasHost: true,
	}
}

// None is the empty single-valued wrapper.
func None[T any]() M[T] {
	return M[T]{kind: KindSingle, one: func() (T, bool) { var zero T; return zero, false }}
}

// Supply wraps a lazily computed optional value. get runs every time the wrapper is
// traversed; memoise inside get when the computation must happen once.
func Supply[T any](get func() (T, bool)) M[T] {
	return M[T]{kind: KindSingle, one: get}
}

// FromSlice wraps a finite collection. The slice is not copied and must not be
// mutated while the wrapper is in use.
func FromSlice[T any](s []T) M[T] {
	return M[T]{kind: KindFinite, seq: slices.Values(s), host: s, hasHost: true}
}

// FromSeq wraps a lazy sequence. Whether it can be traversed twice depends on seq.
func FromSeq[T any](seq iter.Seq[T]) M[T] {
	if seq == nil {
		seq = func(func(T) bool) {}
	}
	return M[T]{kind: KindLazy, seq: seq, host: seq, hasHost: true}
}

func foreign[T any](raw any, v T) M[T] {
	m := Just(v)
	m.kind = KindForeign
	m.host = raw
	return m
}

// Kind reports the wrapper's shape.
func (m M[T]) Kind() Kind {
	if m.kind == 0 {
		return KindSingle
	}
	return m.kind
}

func (m M[T]) single() bool {
	return m.kind == KindSingle || m.kind == KindForeign || m.kind == 0
}

func (m M[T]) get() (T, bool) {
	if m.one == nil {
		var zero T
		return zero, false
	}
	return m.one()
}

// Seq returns the contained elements as a lazy, forward-only sequence.
// Calling it twice is only safe when the host value supports re-traversal.
func (m M[T]) Seq() iter.Seq[T] {
	if m.single() {
		return func(yield func(T) bool) {
			if v, ok := m.get(); ok {
				yield(v)
			}
		}
	}
	if m.seq == nil {
		return func(func(T) bool) {}
	}
	return m.seq
}

// First returns the first element, pulling at most one.
func (m M[T]) First() (T, bool) {
	if m.single() {
		return m.get()
	}
	for v := range m.Seq() {
		return v, true
	}
	var zero T
	return zero, false
}

// Filter keeps the elements satisfying predicate. A single value that fails the
// predicate leaves an empty single-valued wrapper.
func (m M[T]) Filter(predicate func(T) bool) M[T] {
	if m.single() {
		return M[T]{kind: KindSingle, one: func() (T, bool) {
			v, ok := m.get()
			if !ok || !predicate(v) {
				var zero T
				return zero, false
			}
			return v, true
		}}
	}
	src := m.Seq()
	return M[T]{kind: m.kind, seq: func(yield func(T) bool) {
		for v := range src {
			if predicate(v) && !yield(v) {
				return
			}
		}
	}}
}

// Peek runs action on each element as it is pulled by a consumer.
// Nothing runs until the wrapper is traversed.
func (m M[T]) Peek(action func(T)) M[T] {
	if m.single() {
		return M[T]{kind: KindSingle, one: func() (T, bool) {
			v, ok := m.get()
			if ok {
				action(v)
			}
			return v, ok
		}}
	}
	src := m.Seq()
	return M[T]{kind: m.kind, seq: func(yield func(T) bool) {
		for v := range src {
			action(v)
			if !yield(v) {
				return
			}
		}
	}}
}

// CanonicalHost presents m as an untyped Host.
func (m M[T]) CanonicalHost() Host {
	src := m.Seq()
	return Host{
		Kind: m.Kind(),
		Elem: reflect.TypeFor[T](),
		Items: func(yield func(any) bool) {
			for v := range src {
				if !yield(v) {
					return
				}
			}
		},
		Raw: m.host,
	}
}
