package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/arbor/pkg/analysis"
	"github.com/matzehuels/arbor/pkg/api"
)

// analyzeFlags holds flags shared by commands that run an analysis.
type analyzeFlags struct {
	input   string // input format, detected from the extension when empty
	metrics string
	center  string
	noCache bool
	refresh bool
	opts    analysis.Options
}

// register adds the analysis flags to cmd, with defaults from opts.
func (f *analyzeFlags) register(cmd *cobra.Command, opts analysis.Options) {
	f.opts = opts
	cmd.Flags().StringVarP(&f.input, "input-format", "i", "", "input format: json, compact, swc (default: from extension)")
	cmd.Flags().StringVarP(&f.metrics, "metrics", "m", strings.Join(opts.Metrics, ","), "metrics to compute (comma-separated, default all)")
	cmd.Flags().Float64Var(&f.opts.ShollIncrement, "sholl-increment", opts.ShollIncrement, "Sholl shell spacing (default 1000)")
	cmd.Flags().Float64Var(&f.opts.RadialIncrement, "radial-increment", opts.RadialIncrement, "synapse density bin width (default 1000)")
	cmd.Flags().StringVar(&f.center, "center", "", "analysis center as x,y,z (default: soma, else root)")
	cmd.Flags().Float64Var(&f.opts.Sigma, "sigma", opts.Sigma, "Gaussian smoothing for cable length (0 disables)")
	cmd.Flags().BoolVar(&f.opts.Normalize, "normalize", opts.Normalize, "scale centralities to [0, 1]")
	cmd.Flags().BoolVar(&f.opts.Collapse, "collapse", opts.Collapse, `collapse branches tagged "not a branch"`)
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}

// options returns the analysis options. Flags left unset fall back to the
// configuration loaded after flag registration.
func (f *analyzeFlags) options(cmd *cobra.Command, defaults analysis.Options) (analysis.Options, error) {
	opts := defaults
	fl := cmd.Flags()
	if fl.Changed("metrics") {
		opts.Metrics = splitList(f.metrics)
	}
	if fl.Changed("sholl-increment") {
		opts.ShollIncrement = f.opts.ShollIncrement
	}
	if fl.Changed("radial-increment") {
		opts.RadialIncrement = f.opts.RadialIncrement
	}
	if fl.Changed("sigma") {
		opts.Sigma = f.opts.Sigma
	}
	if fl.Changed("normalize") {
		opts.Normalize = f.opts.Normalize
	}
	if fl.Changed("collapse") {
		opts.Collapse = f.opts.Collapse
	}
	if f.center != "" {
		p, err := api.ParsePoint(f.center)
		if err != nil {
			return opts, err
		}
		opts.Center = &p
	}
	opts.Refresh = f.refresh
	return opts, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// analyzeCommand creates the analyze command.
func (c *CLI) analyzeCommand() *cobra.Command {
	var (
		flags  analyzeFlags
		output string
		format string
	)

	cmd := &cobra.Command{
		Use:   "analyze [skeleton]",
		Short: "Compute morphology metrics for a skeleton",
		Long: `Compute morphology metrics for a skeleton.

The skeleton is read from a native JSON, compact-skeleton JSON or SWC file
("-" reads native JSON from stdin). All metrics are computed unless --metrics
selects some of: cable, strahler, betweenness, slab, downstream, sholl,
radial, flow, asymmetry.

Reports are cached by skeleton content and options.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateOutput(format); err != nil {
				return err
			}
			opts, err := flags.options(cmd, c.analysisDefaults())
			if err != nil {
				return err
			}
			return c.runAnalyze(cmd, args[0], &flags, opts, output, format)
		},
	}

	flags.register(cmd, analysis.Options{})
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&format, "format", "f", outputJSON, "output format: json, yaml, table")

	return cmd
}

func (c *CLI) runAnalyze(cmd *cobra.Command, input string, flags *analyzeFlags, opts analysis.Options, output, format string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	report, err := c.analyze(ctx, input, flags, opts)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Analysed %s", input))

	w, closeOut, err := openOutput(output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	if err := writeReport(w, report, format); err != nil {
		closeOut()
		return err
	}
	if err := closeOut(); err != nil {
		return err
	}

	printStats(report.Summary.Nodes, report.Summary.Inputs+report.Summary.Outputs, report.CacheInfo.Hit)
	if output != "" && output != "-" {
		printFile(output)
		printNextStep("Render it", fmt.Sprintf("%s render %s --metric strahler", appName, input))
	}
	return nil
}

// analyze loads the skeleton and runs the analysis behind a spinner.
func (c *CLI) analyze(ctx context.Context, input string, flags *analyzeFlags, opts analysis.Options) (*analysis.Report, error) {
	s, err := loadSkeleton(input, flags.input)
	if err != nil {
		return nil, err
	}
	loggerFromContext(ctx).Debug("loaded skeleton", "nodes", s.Arbor.CountNodes(), "inputs", s.InputCount(), "outputs", s.OutputCount())

	runner, err := c.newRunner(ctx, flags.noCache)
	if err != nil {
		return nil, err
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Analysing...")
	spinner.Start()
	report, err := runner.Run(ctx, s, opts)
	if err != nil {
		spinner.StopWithError("Analysis failed")
		return nil, fmt.Errorf("analyze %s: %w", input, err)
	}
	spinner.Stop()
	return report, nil
}
