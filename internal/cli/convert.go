package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	pkgio "github.com/matzehuels/arbor/pkg/io"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var (
		inputFormat string
		name        string
	)

	cmd := &cobra.Command{
		Use:   "convert [input] [output]",
		Short: "Convert a skeleton between formats",
		Long: `Convert a skeleton between formats. The output format follows the output
extension: .json writes native JSON, .swc writes SWC. Synapses and tags other
than "soma" cannot be stored in SWC and are dropped.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSkeleton(args[0], inputFormat)
			if err != nil {
				return err
			}
			if name != "" {
				s.Name = name
			}
			if err := pkgio.Export(s, args[1]); err != nil {
				return fmt.Errorf("convert: %w", err)
			}
			printSuccess("Converted %s", args[0])
			printStats(s.Arbor.CountNodes(), s.InputCount()+s.OutputCount(), false)
			printFile(args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&inputFormat, "input-format", "i", "", "input format: json, compact, swc (default: from extension)")
	cmd.Flags().StringVar(&name, "name", "", "set the skeleton name")

	return cmd
}
