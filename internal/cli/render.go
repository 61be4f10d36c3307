package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/analysis"
	"github.com/matzehuels/arbor/pkg/arbor"
	"github.com/matzehuels/arbor/pkg/render"
	"github.com/matzehuels/arbor/pkg/skeleton"
)

// renderOpts holds the flags of the render command.
type renderOpts struct {
	output      string
	format      string // dot or svg
	metric      string // per-node metric used for coloring
	topological bool   // draw only root, branch and end nodes
	labels      bool
	axon        bool // highlight the putative axon
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags analyzeFlags
	opts := renderOpts{format: render.FormatSVG}

	cmd := &cobra.Command{
		Use:   "render [skeleton]",
		Short: "Draw a skeleton as a node-link diagram",
		Long: `Draw a skeleton as a node-link diagram in DOT or SVG.

Nodes can be colored by a per-node metric (strahler, betweenness, slab,
downstream, flow) and the diagram reduced to its topological skeleton.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !render.ValidFormats[opts.format] {
				return fmt.Errorf("invalid format: %s (must be 'dot' or 'svg')", opts.format)
			}
			if opts.metric != "" && !isNodeMetric(opts.metric) {
				return fmt.Errorf("invalid metric: %s (must be one of: %s)", opts.metric, strings.Join(analysis.NodeMetrics, ", "))
			}
			aopts, err := flags.options(cmd, c.analysisDefaults())
			if err != nil {
				return err
			}
			return c.runRender(cmd.Context(), cmd.OutOrStdout(), args[0], &flags, aopts, opts)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input-format", "i", "", "input format: json, compact, swc (default: from extension)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: input name with format extension)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg (default), dot")
	cmd.Flags().StringVarP(&opts.metric, "metric", "m", "", "color nodes by a per-node metric")
	cmd.Flags().BoolVar(&opts.topological, "topological", false, "draw only root, branch and end nodes")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "label nodes with their IDs")
	cmd.Flags().BoolVar(&opts.axon, "axon", false, "highlight the putative axon node")

	return cmd
}

func isNodeMetric(m string) bool {
	for _, nm := range analysis.NodeMetrics {
		if m == nm {
			return true
		}
	}
	return false
}

func (c *CLI) runRender(ctx context.Context, stdout io.Writer, input string, flags *analyzeFlags, aopts analysis.Options, opts renderOpts) error {
	logger := loggerFromContext(ctx)

	s, err := loadSkeleton(input, flags.input)
	if err != nil {
		return err
	}
	ropts, err := c.renderOptions(ctx, s, flags, aopts, opts)
	if err != nil {
		return err
	}

	data, err := render.Render(ctx, s.Arbor, ropts, opts.format)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	logger.Debugf("Generated %s: %d bytes", opts.format, len(data))

	path := opts.output
	if path == "" {
		path = strings.TrimSuffix(input, filepath.Ext(input)) + "." + opts.format
	}
	w, closeOut, err := openOutput(path, stdout)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}
	printSuccess("Rendered %s", input)
	if path != "-" {
		printFile(path)
	}
	return nil
}

// renderOptions runs the analyses the diagram needs: the coloring metric
// and, for --axon, flow centrality.
func (c *CLI) renderOptions(ctx context.Context, s *skeleton.Skeleton, flags *analyzeFlags, aopts analysis.Options, opts renderOpts) (render.Options, error) {
	ropts := render.Options{
		Metric:      opts.metric,
		Topological: opts.topological,
		Labels:      opts.labels,
	}
	var metrics []string
	if opts.metric != "" {
		metrics = append(metrics, opts.metric)
	}
	if opts.axon && opts.metric != analysis.MetricFlow {
		metrics = append(metrics, analysis.MetricFlow)
	}
	if len(metrics) == 0 {
		return ropts, nil
	}

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return ropts, err
	}
	defer runner.Close()

	aopts.Metrics = metrics
	report, err := runner.Run(ctx, s, aopts)
	if err != nil {
		return ropts, err
	}
	if opts.metric != "" {
		values, ok := report.NodeValues(opts.metric)
		if !ok {
			printWarning("%s is not computable for this skeleton, drawing without colors", opts.metric)
		}
		ropts.Values = values
	}
	if opts.axon {
		if f := report.Flow; f != nil && f.PutativeAxon != nil {
			ropts.Highlight = []arbor.NodeID{*f.PutativeAxon}
		} else {
			printWarning("no putative axon: the skeleton needs both inputs and outputs")
		}
	}
	return ropts, nil
}
