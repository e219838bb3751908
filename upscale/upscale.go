// Package upscale selects the strategy applied to normalised values before they reach
// callers: Identity passes them through, Enhanced wraps lazy sequences in a Stream with
// extra query operations.
package upscale

import (
	"log/slog"
	"strings"

	"anym/anymerr"
	"anym/canonical"
)

const (
	NameIdentity = "identity"
	NameEnhanced = "enhanced"
)

// Upscaler post-processes normalised values. Implementations must return values that
// still satisfy canonical.Hoster whenever their input did.
type Upscaler interface {
	Name() string
	Upscale(v any) any
}

type identity struct{}

func (identity) Name() string      { return NameIdentity }
func (identity) Upscale(v any) any { return v }

// Identity returns the pass-through strategy.
func Identity() Upscaler {
	return identity{}
}

type enhanced struct{}

func (enhanced) Name() string { return NameEnhanced }

func (enhanced) Upscale(v any) any {
	h, ok := v.(canonical.Host)
	if !ok || h.Kind != canonical.KindLazy {
		return v
	}
	return &Hosted{Stream: Enhance(h.Seq()), host: h}
}

// Enhanced returns the strategy that wraps lazy hosts in a *Hosted.
func Enhanced() Upscaler {
	return enhanced{}
}

// ByName returns the strategy registered under name. An empty name selects Identity.
func ByName(name string, log *slog.Logger) (Upscaler, error) {
	var u Upscaler
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", NameIdentity:
		u = Identity()
	case NameEnhanced:
		u = Enhanced()
	default:
		return nil, anymerr.InvalidArgument("upscale.ByName", "unknown upscaler %q", name)
	}
	if log != nil {
		log.Debug("upscale.selected", "upscaler", u.Name())
	}
	return u, nil
}

// Hosted is an enhanced lazy host. It still presents itself as the original Host, so
// canonical.From accepts it unchanged.
type Hosted struct {
	Stream[any]
	host canonical.Host
}

func (h *Hosted) CanonicalHost() canonical.Host {
	return h.host
}

// Typed views an upscaled value as a Stream of T. ok is false when v was not enhanced.
// Elements that are not a T panic with a type-mismatch error when reached.
func Typed[T any](v any) (Stream[T], bool) {
	if s, ok := v.(Stream[T]); ok {
		return s, true
	}
	h, ok := v.(*Hosted)
	if !ok {
		return Stream[T]{}, false
	}
	m, err := canonical.FromHost[T](h.host)
	if err != nil {
		return Stream[T]{}, false
	}
	return Enhance(m.Seq()), true
}
