package cli

import (
	"io"
	"strconv"
	"strings"

	"github.com/go-softwarelab/common/pkg/is"
	"github.com/go-softwarelab/common/pkg/to"
	"github.com/spf13/cobra"

	"anym/anymerr"
	"anym/monoid"
	"anym/seqm"
)

const (
	opCycle    = "cycle"
	opLimit    = "limit"
	opSkip     = "skip"
	opDistinct = "distinct"
	opSort     = "sort"
	opReverse  = "reverse"
	opScan     = "scan"
	opEven     = "even"
	opOdd      = "odd"
	opSliding  = "sliding"
	opGrouped  = "grouped"
)

var opNames = []string{opCycle, opLimit, opSkip, opDistinct, opSort, opReverse, opScan, opEven, opOdd, opSliding, opGrouped}

// step is one parsed pipeline operation.
type step struct {
	name string
	arg  int
}

func (s step) windowing() bool {
	return s.name == opSliding || s.name == opGrouped
}

func takesArg(name string) bool {
	switch name {
	case opCycle, opLimit, opSkip, opSliding, opGrouped:
		return true
	}
	return false
}

type runOptions struct {
	ops      string
	parallel bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run [ints...]",
		Short: "Run a pipeline over integers",
		Long: `Run a comma-separated pipeline over integers given as arguments or on stdin.

Operations: cycle N, limit N, skip N, distinct, sort, reverse, scan, even, odd,
sliding N, grouped N. sliding and grouped must come last.`,
		Example: `  anym run --ops "cycle 2,distinct" 3 1 3
  seq 1 10 | anym run --ops "even,grouped 2"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPipeline(rootOpts, opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.ops, "ops", "", "comma-separated operations")
	cmd.Flags().BoolVarP(&opts.parallel, "parallel", "p", false, "evaluate with the configured worker pool")
	return cmd
}

func runPipeline(rootOpts *RootOptions, opts *runOptions, cmd *cobra.Command, args []string) error {
	steps, err := parseOps(opts.ops)
	if err != nil {
		return WrapExitError(ExitCommandError, "parse --ops", err)
	}

	s := inputInts(rootOpts.env, cmd.InOrStdin(), args)
	if opts.parallel {
		s = s.Parallel()
	}

	var window *step
	for _, st := range steps {
		if st.windowing() {
			window = &st
			break
		}
		s = applyStep(s, st)
	}

	out := rootOpts.formatter(cmd)
	if window == nil {
		values, err := s.ToList()
		if err != nil {
			return pipelineError(err)
		}
		return Lines(out, values)
	}

	var windows seqm.Seq[[]int]
	if window.name == opSliding {
		windows = seqm.Sliding(s, window.arg)
	} else {
		windows = seqm.Grouped(s, window.arg)
	}
	values, err := windows.ToList()
	if err != nil {
		return pipelineError(err)
	}
	return Lines(out, values)
}

// parseOps parses "name [arg], ..." into steps. Names are case-insensitive.
func parseOps(list string) ([]step, error) {
	const op = "cli.parseOps"

	var steps []step
	for _, raw := range strings.Split(list, ",") {
		if is.BlankString(raw) {
			continue
		}
		fields := strings.Fields(raw)
		name, err := to.Enum(fields[0], opNames...)
		if err != nil {
			return nil, anymerr.InvalidArgument(op, "unknown operation %q", fields[0])
		}

		st := step{name: name}
		switch {
		case takesArg(name) && len(fields) != 2:
			return nil, anymerr.InvalidArgument(op, "%s takes one integer argument", name)
		case !takesArg(name) && len(fields) != 1:
			return nil, anymerr.InvalidArgument(op, "%s takes no argument", name)
		case takesArg(name):
			if st.arg, err = strconv.Atoi(fields[1]); err != nil {
				return nil, anymerr.InvalidArgument(op, "%s: %q is not an integer", name, fields[1])
			}
		}

		if len(steps) > 0 && steps[len(steps)-1].windowing() {
			return nil, anymerr.InvalidArgument(op, "%s must be the last operation", steps[len(steps)-1].name)
		}
		steps = append(steps, st)
	}
	return steps, nil
}

func applyStep(s seqm.Seq[int], st step) seqm.Seq[int] {
	switch st.name {
	case opCycle:
		return s.Cycle(st.arg)
	case opLimit:
		return s.Limit(st.arg)
	case opSkip:
		return s.Skip(st.arg)
	case opDistinct:
		return seqm.Distinct(s)
	case opSort:
		return seqm.Sorted(s)
	case opReverse:
		return s.Reverse()
	case opScan:
		return s.ScanLeft(monoid.Sum[int]())
	case opEven:
		return s.Filter(func(v int) bool { return v%2 == 0 })
	case opOdd:
		return s.Filter(func(v int) bool { return v%2 != 0 })
	}
	return s
}

// inputInts parses args, or the whitespace-separated words of stdin when there are
// no args, as integers. A stdin read error fails the pipeline.
func inputInts(env *seqm.Env, stdin io.Reader, args []string) seqm.Seq[int] {
	var words seqm.Seq[string]
	if len(args) > 0 {
		words = seqm.Of[string](env, args)
	} else {
		words = seqm.FlatMapSlice(seqm.Of[string](env, stdin), strings.Fields)
	}
	return seqm.TryMap(words, func(w string) (int, error) {
		v, err := strconv.Atoi(w)
		if err != nil {
			return 0, anymerr.InvalidArgument("cli.input", "%q is not an integer", w)
		}
		return v, nil
	})
}

// pipelineError maps caller mistakes to ExitCommandError and everything else to
// ExitFailure.
func pipelineError(err error) error {
	if anymerr.IsKind(err, anymerr.KindInvalidArgument) || anymerr.IsKind(err, anymerr.KindTypeMismatch) {
		return WrapExitError(ExitCommandError, "invalid pipeline", err)
	}
	return WrapExitError(ExitFailure, "pipeline failed", err)
}
