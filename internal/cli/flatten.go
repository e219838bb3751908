package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"anym/anymerr"
	"anym/seqm"
)

// NewFlattenCommand creates the flatten command.
func NewFlattenCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flatten [document]",
		Short: "Flatten a nested YAML or JSON list",
		Long: `Flatten nested lists from a YAML or JSON document given as an argument or on
stdin. Nesting deeper than flatten.max_depth is printed as is.`,
		Example: `  anym flatten '[1, [2, [3, 4]], 5]'`,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFlatten(rootOpts, cmd, args)
		},
	}
	return cmd
}

func runFlatten(rootOpts *RootOptions, cmd *cobra.Command, args []string) error {
	var doc []byte
	if len(args) == 1 {
		doc = []byte(args[0])
	} else {
		var err error
		if doc, err = io.ReadAll(cmd.InOrStdin()); err != nil {
			return WrapExitError(ExitCommandError, "read stdin", err)
		}
	}

	var root any
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return WrapExitError(ExitCommandError, "parse document",
			anymerr.InvalidArgument("cli.flatten", "%s", strings.TrimSpace(err.Error())))
	}

	leaves, err := seqm.Flatten(seqm.Of[any](rootOpts.env, []any{root})).ToList()
	if err != nil {
		return pipelineError(err)
	}
	return Lines(rootOpts.formatter(cmd), leaves)
}
