package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/analysis"
	"github.com/matzehuels/arbor/pkg/arbor"
)

// shollCommand creates the sholl command, a shortcut for printing only the
// Sholl profile.
func (c *CLI) shollCommand() *cobra.Command {
	var (
		flags     analyzeFlags
		increment float64
		format    string
	)

	cmd := &cobra.Command{
		Use:   "sholl [skeleton]",
		Short: "Print the Sholl profile of a skeleton",
		Long: `Print the Sholl profile of a skeleton: the number of cable segments crossing
concentric spheres of radius k*increment around the center (the soma when
tagged, else the root).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(format); err != nil {
				return err
			}
			opts, err := flags.options(cmd, c.analysisDefaults())
			if err != nil {
				return err
			}
			opts.Metrics = []string{analysis.MetricSholl}
			if cmd.Flags().Changed("increment") {
				opts.ShollIncrement = increment
			}

			report, err := c.analyze(cmd.Context(), args[0], &flags, opts)
			if err != nil {
				return err
			}
			return writeSholl(cmd.OutOrStdout(), report.Sholl, format)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input-format", "i", "", "input format: json, compact, swc (default: from extension)")
	cmd.Flags().Float64VarP(&increment, "increment", "r", analysis.DefaultShollIncrement, "shell spacing")
	cmd.Flags().StringVar(&flags.center, "center", "", "center as x,y,z (default: soma, else root)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&format, "format", "f", outputTable, "output format: json, yaml, table")

	return cmd
}

func writeSholl(w io.Writer, p *arbor.ShollProfile, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case outputYAML:
		return encodeYAML(w, p)
	}
	_, err := fmt.Fprintln(w, shollTable(p).Render())
	return err
}
