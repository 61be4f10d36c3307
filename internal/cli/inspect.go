package cli

import (
	"fmt"
	"slices"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/analysis"
)

// inspectMetrics are the per-node metrics shown by the inspector.
var inspectMetrics = []string{
	analysis.MetricStrahler,
	analysis.MetricBetweenness,
	analysis.MetricDownstream,
	analysis.MetricFlow,
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var flags analyzeFlags

	cmd := &cobra.Command{
		Use:   "inspect [skeleton]",
		Short: "Browse per-node metrics interactively",
		Long: `Browse per-node metrics in an interactive table: Strahler order,
betweenness centrality, downstream cable and synaptic flow. Sort by any
column; press enter to print the selected node.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts, err := flags.options(cmd, c.analysisDefaults())
			if err != nil {
				return err
			}
			opts.Metrics = slices.Clone(inspectMetrics)

			s, err := loadSkeleton(args[0], flags.input)
			if err != nil {
				return err
			}
			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			report, err := runner.Run(ctx, s, opts)
			if err != nil {
				return fmt.Errorf("analyze %s: %w", args[0], err)
			}

			title := fmt.Sprintf("Skeleton %d", s.ID)
			if s.Name != "" {
				title += " · " + s.Name
			}
			model := NewNodeTableModel(title, buildNodeRows(s, report))
			final, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
			if err != nil {
				return fmt.Errorf("inspector: %w", err)
			}

			m, ok := final.(NodeTableModel)
			if !ok || m.Selected == nil {
				return nil
			}
			row := m.Selected
			printKeyValue("Node", strconv.FormatInt(int64(row.ID), 10))
			printKeyValue("Kind", row.Kind)
			if p, ok := s.Positions[row.ID]; ok {
				printKeyValue("Position", fmt.Sprintf("%s, %s, %s", formatNumber(p.X), formatNumber(p.Y), formatNumber(p.Z)))
			}
			if parent, ok := s.Arbor.Parent(row.ID); ok {
				printKeyValue("Parent", strconv.FormatInt(int64(parent), 10))
			}
			printKeyValue("Strahler", strconv.Itoa(row.Strahler))
			printKeyValue("Betweenness", formatNumber(row.Betweenness))
			printKeyValue("Downstream", formatNumber(row.Downstream))
			printKeyValue("Flow", formatNumber(row.Flow))
			printKeyValue("Synapses", fmt.Sprintf("%d in, %d out", row.Inputs, row.Outputs))
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input-format", "i", "", "input format: json, compact, swc (default: from extension)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&flags.opts.Collapse, "collapse", false, `collapse branches tagged "not a branch"`)
	cmd.Flags().BoolVar(&flags.opts.Normalize, "normalize", false, "scale centralities to [0, 1]")

	return cmd
}
