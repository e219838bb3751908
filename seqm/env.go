package seqm

import (
	"context"
	"log/slog"
	"sync"

	"anym/config"
	"anym/convert"
	"anym/logger"
	"anym/registry"
	"anym/upscale"
)

// Env is the context every pipeline runs in: the registry that normalises inputs,
// the parallel defaults and the logger. Build one at the top of the call graph and
// pass it down; DefaultEnv exists for callers that never configure anything.
type Env struct {
	registry *registry.Registry
	log      *slog.Logger
	parallel Parallelism
	maxDepth int
}

type envOptions struct {
	registry   *registry.Registry
	converters []convert.Converter
	log        *slog.Logger
}

type EnvOption func(*envOptions)

// WithRegistry uses r as is. The config's upscaler setting is then ignored.
func WithRegistry(r *registry.Registry) EnvOption {
	return func(o *envOptions) {
		o.registry = r
	}
}

// WithConverters adds converters after the built-in ones.
func WithConverters(cs ...convert.Converter) EnvOption {
	return func(o *envOptions) {
		o.converters = append(o.converters, cs...)
	}
}

func WithLogger(l *slog.Logger) EnvOption {
	return func(o *envOptions) {
		o.log = l
	}
}

// NewEnv validates cfg and builds an environment from it.
func NewEnv(cfg config.Config, opts ...EnvOption) (*Env, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	o := envOptions{log: logger.L()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.L()
	}

	reg := o.registry
	if reg == nil {
		u, err := upscale.ByName(cfg.Upscaler, o.log)
		if err != nil {
			return nil, err
		}
		reg = registry.New(
			registry.WithConverters(convert.Builtin()...),
			registry.WithConverters(o.converters...),
			registry.WithUpscaler(u),
			registry.WithLogger(o.log),
		)
	}

	return &Env{
		registry: reg,
		log:      o.log,
		parallel: Parallelism{
			Workers:     cfg.Parallel.Workers,
			BatchSize:   cfg.Parallel.BatchSize,
			OrderStable: cfg.Parallel.OrderStable,
			Context:     context.Background(),
		},
		maxDepth: cfg.Flatten.MaxDepth,
	}, nil
}

var (
	defaultEnvOnce sync.Once
	defaultEnv     *Env
)

// DefaultEnv uses config.Default and the process-wide registry.Default.
func DefaultEnv() *Env {
	defaultEnvOnce.Do(func() {
		env, err := NewEnv(config.Default(), WithRegistry(registry.Default()))
		if err != nil {
			panic(err)
		}
		defaultEnv = env
	})
	return defaultEnv
}

func (e *Env) Registry() *registry.Registry {
	return e.registry
}

// Parallelism describes how a parallel pipeline is evaluated.
type Parallelism struct {
	Workers   int
	BatchSize int
	// OrderStable keeps parallel map results in input order.
	OrderStable bool
	Context     context.Context
}

type ParallelOption func(*Parallelism)

func WithWorkers(n int) ParallelOption {
	return func(p *Parallelism) {
		if n < 1 {
			n = 1
		}
		p.Workers = n
	}
}

func WithBatchSize(n int) ParallelOption {
	return func(p *Parallelism) {
		if n < 1 {
			n = 1
		}
		p.BatchSize = n
	}
}

func WithOrderStable(stable bool) ParallelOption {
	return func(p *Parallelism) {
		p.OrderStable = stable
	}
}

// WithContext bounds parallel workers by ctx. Cancellation surfaces as the
// terminal operation's error.
func WithContext(ctx context.Context) ParallelOption {
	return func(p *Parallelism) {
		if ctx != nil {
			p.Context = ctx
		}
	}
}
