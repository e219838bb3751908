package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ConverterInfo is one row of the converters listing.
type ConverterInfo struct {
	Priority int    `json:"priority"`
	Name     string `json:"name"`
}

func (c ConverterInfo) String() string {
	return fmt.Sprintf("%3d  %s", c.Priority, c.Name)
}

// NewConvertersCommand creates the converters command.
func NewConvertersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "converters",
		Short: "List converters in the order they are tried",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var rows []ConverterInfo
			for _, c := range rootOpts.env.Registry().Converters() {
				rows = append(rows, ConverterInfo{Priority: c.Priority(), Name: c.Name()})
			}
			return Lines(rootOpts.formatter(cmd), rows)
		},
	}
}

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f := rootOpts.formatter(cmd)
			if f.Format == "json" {
				return f.json(rootOpts.cfg)
			}
			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(rootOpts.cfg); err != nil {
				return err
			}
			return enc.Close()
		},
	}
}
