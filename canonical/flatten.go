package canonical

import "iter"

// DefaultMaxDepth caps Flatten recursion when the caller passes a non-positive depth.
const DefaultMaxDepth = 16

// Flatten collapses nested wrappers into one sequence of leaf values.
//
// An element is descended into when it is a Hoster (any M or Host), a []any, an
// iter.Seq[any], or a value n turns into a single-valued or lazy Host (pointers,
// suppliers, channels). Finite shapes other than []any, such as strings or typed
// slices, are leaves. Elements nested deeper than maxDepth are yielded unchanged.
//
// The result keeps m's kind when m is single-valued and holds the first leaf.
func Flatten(m M[any], n Normalizer, maxDepth int) M[any] {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	leaves := func(yield func(any) bool) {
		for v := range m.Seq() {
			if !flattenInto(v, n, 1, maxDepth, yield) {
				return
			}
		}
	}
	if m.single() {
		return Supply(func() (any, bool) {
			for v := range leaves {
				return v, true
			}
			return nil, false
		})
	}
	return M[any]{kind: m.kind, seq: leaves}
}

func flattenInto(v any, n Normalizer, depth, maxDepth int, yield func(any) bool) bool {
	if depth > maxDepth {
		return yield(v)
	}
	inner, ok := nested(v, n)
	if !ok {
		return yield(v)
	}
	for e := range inner {
		if !flattenInto(e, n, depth+1, maxDepth, yield) {
			return false
		}
	}
	return true
}

func nested(v any, n Normalizer) (iter.Seq[any], bool) {
	switch x := v.(type) {
	case nil:
		return nil, false
	case Hoster:
		return x.CanonicalHost().Seq(), true
	case []any:
		return func(yield func(any) bool) {
			for _, e := range x {
				if !yield(e) {
					return
				}
			}
		}, true
	case iter.Seq[any]:
		return x, true
	case func(func(any) bool):
		return x, true
	}
	if n == nil {
		return nil, false
	}
	if h, ok := n.Normalize(v).(Hoster); ok {
		host := h.CanonicalHost()
		if host.Kind == KindSingle || host.Kind == KindLazy {
			return host.Seq(), true
		}
	}
	return nil, false
}
