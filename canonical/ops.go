package canonical

import (
	"fmt"
	"iter"
	"reflect"
	"slices"

	"anym/anymerr"
)

// From builds the typed wrapper for v.
//
// Typed canonical shapes (M[T], []T, iter.Seq[T]) and Hosters are used directly.
// Everything else goes through n; a Host result is checked against T by its element type before any
// element is pulled. A value no converter recognised becomes a KindForeign wrapper when
// it is a T, and a TypeMismatch otherwise. A nil n behaves like Identity.
func From[T any](n Normalizer, v any) (M[T], error) {
	const op = "canonical.From"

	if m, ok := fromTyped[T](v); ok {
		return m, nil
	}
	if v == nil {
		return None[T](), nil
	}
	if h, ok := v.(Hoster); ok {
		return fromHost[T](op, h.CanonicalHost())
	}
	if n == nil {
		n = Identity
	}
	norm := n.Normalize(v)
	if m, ok := fromTyped[T](norm); ok {
		return m, nil
	}

	switch x := norm.(type) {
	case Hoster:
		return fromHost[T](op, x.CanonicalHost())
	case T:
		return foreign(v, x), nil
	}
	return M[T]{}, anymerr.TypeMismatch(op, "%T is not a wrapper of %s", v, typeName[T]())
}

func fromTyped[T any](v any) (M[T], bool) {
	switch x := v.(type) {
	case M[T]:
		return x, true
	case []T:
		return FromSlice(x), true
	case iter.Seq[T]:
		return FromSeq(x), true
	case func(func(T) bool):
		return FromSeq(iter.Seq[T](x)), true
	}
	return M[T]{}, false
}

// FromHost converts an untyped Host to M[T].
func FromHost[T any](h Host) (M[T], error) {
	return fromHost[T]("canonical.FromHost", h)
}

func fromHost[T any](op string, h Host) (M[T], error) {
	target := reflect.TypeFor[T]()

	// Interface element types can only be checked per element.
	dynamic := h.Elem == nil || h.Elem.Kind() == reflect.Interface
	if !dynamic && !h.Elem.AssignableTo(target) {
		return M[T]{}, anymerr.TypeMismatch(op, "element type %s is not assignable to %s", h.Elem, target)
	}

	items := h.Seq()
	typed := func(yield func(T) bool) {
		for v := range items {
			t, ok := v.(T)
			if !ok && v != nil {
				panic(anymerr.TypeMismatch(op, "element %T is not assignable to %s", v, target))
			}
			if !yield(t) {
				return
			}
		}
	}

	var m M[T]
	switch h.Kind {
	case KindFinite:
		buf := make([]T, 0)
		for v := range items {
			t, ok := v.(T)
			if !ok && v != nil {
				return M[T]{}, anymerr.TypeMismatch(op, "element %T is not assignable to %s", v, target)
			}
			buf = append(buf, t)
		}
		m = FromSlice(buf)
	case KindLazy:
		m = FromSeq(iter.Seq[T](typed))
	default:
		m = Supply(func() (T, bool) {
			for v := range typed {
				return v, true
			}
			var zero T
			return zero, false
		})
		m.kind = h.Kind
		if m.kind == 0 {
			m.kind = KindSingle
		}
	}
	m.host, m.hasHost = h.Raw, h.Raw != nil
	return m, nil
}

// Map applies fn to every element lazily, keeping the wrapper's kind.
func Map[T, R any](m M[T], fn func(T) R) M[R] {
	if m.single() {
		return M[R]{kind: m.Kind(), one: func() (R, bool) {
			v, ok := m.get()
			if !ok {
				var zero R
				return zero, false
			}
			return fn(v), true
		}}
	}
	src := m.Seq()
	return M[R]{kind: m.kind, seq: func(yield func(R) bool) {
		for v := range src {
			if !yield(fn(v)) {
				return
			}
		}
	}}
}

// FlatMap maps every element to a wrapper and concatenates the inner sequences in order.
//
// A single-valued outer wrapper yields a single-valued result holding the first
// element of the inner wrapper, the same way an optional flat-maps into an optional.
func FlatMap[T, R any](m M[T], fn func(T) M[R]) M[R] {
	if m.single() {
		return M[R]{kind: KindSingle, one: func() (R, bool) {
			v, ok := m.get()
			if !ok {
				var zero R
				return zero, false
			}
			return fn(v).First()
		}}
	}
	src := m.Seq()
	return M[R]{kind: m.kind, seq: func(yield func(R) bool) {
		for v := range src {
			for r := range fn(v).Seq() {
				if !yield(r) {
					return
				}
			}
		}
	}}
}

// FlatMapAny is FlatMap for functions returning arbitrary wrappers (pointers, channels,
// slices, other M values). Each result is resolved with From through n. A result that
// cannot be represented as M[R] panics with a TypeMismatch error when it is reached.
func FlatMapAny[T, R any](n Normalizer, m M[T], fn func(T) any) M[R] {
	return FlatMap(m, func(v T) M[R] {
		inner, err := From[R](n, fn(v))
		if err != nil {
			panic(err)
		}
		return inner
	})
}

// Unwrap returns the host value in the shape the caller asks for.
//
// R may be the exact host type, []T, iter.Seq[T], M[T], or T. T is only valid for
// single-valued wrappers holding a value. Any other shape fails with TypeMismatch.
func Unwrap[R, T any](m M[T]) (R, error) {
	const op = "canonical.Unwrap"

	var r R
	if m.hasHost {
		if h, ok := m.host.(R); ok {
			return h, nil
		}
	}

	switch p := any(&r).(type) {
	case *M[T]:
		*p = m
	case *[]T:
		*p = slices.Collect(m.Seq())
	case *iter.Seq[T]:
		*p = m.Seq()
	case *T:
		if !m.single() {
			return r, anymerr.TypeMismatch(op, "%s wrapper cannot be unwrapped to a single %s", m.Kind(), typeName[T]())
		}
		v, ok := m.get()
		if !ok {
			return r, anymerr.TypeMismatch(op, "empty wrapper cannot be unwrapped to %s", typeName[T]())
		}
		*p = v
	default:
		return r, anymerr.TypeMismatch(op, "%s wrapper of %s cannot be unwrapped to %s", m.Kind(), typeName[T](), typeName[R]())
	}
	return r, nil
}

func typeName[T any]() string {
	return fmt.Sprint(reflect.TypeFor[T]())
}
