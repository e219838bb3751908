// Package canonical defines the single normalised wrapper every recognised input is
// turned into before sequence operations run.
//
// A wrapper is one of a closed set of kinds:
//
//   - [KindSingle]: zero or one element, evaluated lazily (optionals, futures, scalars).
//   - [KindFinite]: a re-traversable finite collection.
//   - [KindLazy]: a lazily produced sequence that may only support a single pass.
//   - [KindForeign]: a value no converter recognised, kept verbatim.
//
// Converters (package convert) only see untyped values, so they produce a [Host].
// [From] turns a host, or an already typed shape such as []T or iter.Seq[T], into the
// typed wrapper [M].
package canonical

import (
	"iter"
	"reflect"
)

// Kind tags the shape of the host value held by a wrapper.
type Kind uint8

const (
	KindSingle Kind = iota + 1
	KindFinite
	KindLazy
	KindForeign
)

func (k Kind) String() string {
	switch k {
	case KindSingle:
		return "single"
	case KindFinite:
		return "finite"
	case KindLazy:
		return "lazy"
	case KindForeign:
		return "foreign"
	default:
		return "unknown"
	}
}

// Many reports whether the kind can hold more than one element.
func (k Kind) Many() bool {
	return k == KindFinite || k == KindLazy
}

// Normalizer maps an arbitrary value to its canonical form.
// Values it does not recognise are returned unchanged.
type Normalizer interface {
	Normalize(v any) any
}

// NormalizerFunc adapts a function to the Normalizer interface.
type NormalizerFunc func(any) any

func (f NormalizerFunc) Normalize(v any) any {
	return f(v)
}

// Identity is the Normalizer that recognises nothing.
var Identity Normalizer = NormalizerFunc(func(v any) any { return v })

// Host is the untyped canonical form.
//
// Elem is the static element type when the producer knows it (reflect-based
// converters always do); From uses it to reject a mismatched target type before
// any element is pulled. Items must be re-traversable for KindFinite.
type Host struct {
	Kind  Kind
	Elem  reflect.Type
	Items iter.Seq[any]
	Raw   any
}

// Hoster is implemented by every value that can present itself as a Host,
// including Host itself and every M[T].
type Hoster interface {
	CanonicalHost() Host
}

func (h Host) CanonicalHost() Host {
	return h
}

// Seq returns the host's elements, or an empty sequence when Items is nil.
func (h Host) Seq() iter.Seq[any] {
	if h.Items == nil {
		return func(func(any) bool) {}
	}
	return h.Items
}
