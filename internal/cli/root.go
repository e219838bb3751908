// Package cli is the anym command line: it runs sequence pipelines over integers
// read from arguments or stdin.
package cli

import (
	"fmt"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"anym/config"
	"anym/logger"
	"anym/seqm"
)

// RootOptions holds global flags and the state PersistentPreRunE prepares for
// subcommands.
type RootOptions struct {
	ConfigPath string
	Debug      bool
	Format     string // "text" | "json"

	cfg     config.Config
	env     *seqm.Env
	cleanup func() error
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

func Execute() {
	cmd := NewRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(GetExitCode(err))
	}
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "anym",
		Short:         "anym - sequence algebra over any wrapper",
		Long:          "Run lazy, optionally parallel sequence pipelines and monoid reductions.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.prepare(cmd)
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if opts.cleanup != nil {
				return opts.cleanup()
			}
			return nil
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "YAML config file (defaults apply when omitted)")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "log at debug level to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewReduceCommand(opts))
	cmd.AddCommand(NewFlattenCommand(opts))
	cmd.AddCommand(NewConvertersCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

func (o *RootOptions) prepare(cmd *cobra.Command) error {
	if !slices.Contains(ValidFormats, o.Format) {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", o.Format, ValidFormats))
	}

	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	if o.Debug {
		cfg.Log.Level = "debug"
	}

	cleanup, err := logger.Setup(logger.Config{
		Writer: cmd.ErrOrStderr(),
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return WrapExitError(ExitCommandError, "set up logging", err)
	}
	o.cleanup = cleanup

	env, err := seqm.NewEnv(cfg, seqm.WithLogger(logger.L()))
	if err != nil {
		return WrapExitError(ExitCommandError, "build environment", err)
	}
	o.cfg, o.env = cfg, env
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout()}
}
