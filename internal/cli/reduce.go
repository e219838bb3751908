package cli

import (
	"math"
	"strings"

	"github.com/go-softwarelab/common/pkg/is"
	"github.com/go-softwarelab/common/pkg/to"
	"github.com/spf13/cobra"

	"anym/anymerr"
	"anym/monoid"
)

var monoids = map[string]func() monoid.Monoid[int]{
	"sum":     monoid.Sum[int],
	"product": monoid.Product[int],
	"max":     func() monoid.Monoid[int] { return monoid.Max(math.MinInt) },
	"min":     func() monoid.Monoid[int] { return monoid.Min(math.MaxInt) },
}

var monoidNames = []string{"sum", "product", "max", "min"}

type reduceOptions struct {
	monoids  string
	parallel bool
}

// NewReduceCommand creates the reduce command.
func NewReduceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &reduceOptions{}

	cmd := &cobra.Command{
		Use:   "reduce [ints...]",
		Short: "Reduce integers with one or more monoids",
		Long: `Reduce integers given as arguments or on stdin with every listed monoid.
The input is read once; with several monoids the reductions share it.`,
		Example: `  anym reduce --monoid sum,max 4 8 15`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReduce(rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().StringVarP(&opts.monoids, "monoid", "m", "sum", "comma-separated monoids (sum|product|max|min)")
	cmd.Flags().BoolVarP(&opts.parallel, "parallel", "p", false, "run the reductions concurrently")
	return cmd
}

func runReduce(rootOpts *RootOptions, opts *reduceOptions, cmd *cobra.Command, args []string) error {
	var (
		names []string
		mos   []monoid.Monoid[int]
	)
	for _, raw := range strings.Split(opts.monoids, ",") {
		if is.BlankString(raw) {
			continue
		}
		name, err := to.Enum(strings.TrimSpace(raw), monoidNames...)
		if err != nil {
			return WrapExitError(ExitCommandError, "parse --monoid",
				anymerr.InvalidArgument("cli.reduce", "unknown monoid %q", strings.TrimSpace(raw)))
		}
		names = append(names, name)
		mos = append(mos, monoids[name]())
	}
	if len(mos) == 0 {
		return NewExitError(ExitCommandError, "parse --monoid: no monoid given")
	}

	s := inputInts(rootOpts.env, cmd.InOrStdin(), args)
	if opts.parallel {
		s = s.Parallel()
	}

	results, err := s.ReduceAll(mos...)
	if err != nil {
		return pipelineError(err)
	}

	values := make(map[string]any, len(names))
	for i, name := range names {
		values[name] = results[i]
	}
	return rootOpts.formatter(cmd).Pairs(names, values)
}
