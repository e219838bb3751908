// Package config loads the YAML settings of the sequence environment and validates
// them against an embedded CUE schema.
package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"anym/anymerr"
)

//go:embed schema.cue
var schemaSource string

type Config struct {
	Upscaler string   `yaml:"upscaler" json:"upscaler"`
	Parallel Parallel `yaml:"parallel" json:"parallel"`
	Flatten  Flatten  `yaml:"flatten" json:"flatten"`
	Log      Log      `yaml:"log" json:"log"`
}

type Parallel struct {
	Workers   int `yaml:"workers" json:"workers"`
	BatchSize int `yaml:"batch_size" json:"batch_size"`
	// OrderStable keeps parallel map and filter results in input order.
	OrderStable bool `yaml:"order_stable" json:"order_stable"`
}

type Flatten struct {
	MaxDepth int `yaml:"max_depth" json:"max_depth"`
}

type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Upscaler: "identity",
		Parallel: Parallel{
			Workers:     runtime.GOMAXPROCS(0),
			BatchSize:   128,
			OrderStable: true,
		},
		Flatten: Flatten{MaxDepth: 16},
		Log:     Log{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		return cfg, Validate(cfg)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, anymerr.InvalidConfig("config.Load", fmt.Errorf("read %s: %w", path, err))
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, anymerr.InvalidConfig("config.Parse", fmt.Errorf("parse yaml: %w", err))
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks cfg against the #Config schema.
func Validate(cfg Config) error {
	const op = "config.Validate"

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return anymerr.InvalidConfig(op, fmt.Errorf("compile schema: %w", err))
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	value := def.Unify(ctx.Encode(cfg))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return anymerr.InvalidConfig(op, err)
	}
	return nil
}
