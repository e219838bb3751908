// Package registry orders converters and applies the first one that accepts a value.
//
// A Registry is immutable after New. The process-wide registry returned by Default is
// built once, from the built-in converters plus everything passed to Register before
// the first call to Default.
package registry

import (
	"log/slog"
	"slices"
	"sync"

	"anym/anymerr"
	"anym/canonical"
	"anym/convert"
	"anym/logger"
	"anym/queues"
	"anym/upscale"
)

// Registry is an ordered, read-only converter list. It is safe for concurrent use.
type Registry struct {
	converters []convert.Converter
	upscaler   upscale.Upscaler
	log        *slog.Logger
}

var _ canonical.Normalizer = (*Registry)(nil)

type options struct {
	converters []convert.Converter
	upscaler   upscale.Upscaler
	log        *slog.Logger
}

type Option func(*options)

// WithConverters appends converters in registration order.
func WithConverters(cs ...convert.Converter) Option {
	return func(o *options) {
		o.converters = append(o.converters, cs...)
	}
}

// WithUpscaler sets the strategy applied to every normalised value. Default is
// upscale.Identity.
func WithUpscaler(u upscale.Upscaler) Option {
	return func(o *options) {
		if u != nil {
			o.upscaler = u
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// New builds a registry ordered by descending priority. Converters with equal
// priority keep their registration order. Nil converters are skipped.
func New(opts ...Option) *Registry {
	o := options{upscaler: upscale.Identity(), log: logger.L()}
	for _, opt := range opts {
		opt(&o)
	}

	type entry struct {
		c   convert.Converter
		idx int
	}
	pq := queues.NewPriorityQueue(len(o.converters), func(a, b entry) bool {
		if a.c.Priority() != b.c.Priority() {
			return a.c.Priority() > b.c.Priority()
		}
		return a.idx < b.idx
	})
	for i, c := range o.converters {
		if c == nil {
			continue
		}
		pq.Push(entry{c: c, idx: i})
	}

	ordered := make([]convert.Converter, 0, pq.Len())
	for e := range pq.Drain() {
		ordered = append(ordered, e.c)
	}

	r := &Registry{converters: ordered, upscaler: o.upscaler, log: o.log}
	r.log.Debug("registry.built", "converters", r.describe(), "upscaler", r.upscaler.Name())
	return r
}

// Normalize returns the converted value of the first converter accepting v, passed
// through the registry's upscaler. Unrecognised values are returned unchanged.
func (r *Registry) Normalize(v any) any {
	for _, c := range r.converters {
		if c.Accept(v) {
			return r.upscaler.Upscale(c.Convert(v))
		}
	}
	return v
}

// Converters returns the converters in application order.
func (r *Registry) Converters() []convert.Converter {
	return slices.Clone(r.converters)
}

func (r *Registry) Upscaler() upscale.Upscaler {
	return r.upscaler
}

func (r *Registry) describe() []string {
	out := make([]string, 0, len(r.converters))
	for _, c := range r.converters {
		out = append(out, c.Name())
	}
	return out
}

var (
	mu         sync.Mutex
	registered []convert.Converter
	built      bool
	once       sync.Once
	defaultReg *Registry
)

// Register adds c to the process-wide registry. It fails with ErrRegistryFrozen once
// Default has been called.
func Register(c convert.Converter) error {
	mu.Lock()
	defer mu.Unlock()

	if built {
		return &anymerr.OpError{Op: "registry.Register", Kind: anymerr.KindInvalidArgument, Err: anymerr.ErrRegistryFrozen}
	}
	if c == nil {
		return anymerr.InvalidArgument("registry.Register", "converter cannot be nil")
	}
	registered = append(registered, c)
	return nil
}

// Default returns the process-wide registry, building it on first use.
func Default() *Registry {
	once.Do(func() {
		mu.Lock()
		built = true
		cs := append(convert.Builtin(), registered...)
		mu.Unlock()

		defaultReg = New(WithConverters(cs...))
	})
	return defaultReg
}
