// Package analysis computes morphology reports for neuron skeletons.
//
// It is the single entry point the CLI and the HTTP API share: both build
// [Options], hand a [skeleton.Skeleton] to a [Runner] and receive a [Report].
// The runner hashes the skeleton content and caches reports, so repeated
// requests for the same neuron and options are served without recomputing.
//
// # Usage
//
//	runner := analysis.NewRunner(cache, nil, logger)
//	defer runner.Close()
//
//	report, err := runner.Run(ctx, s, analysis.Options{
//	    Metrics:        []string{analysis.MetricSholl, analysis.MetricFlow},
//	    ShollIncrement: 2000,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if axon := report.Flow.PutativeAxon; axon != nil {
//	    fmt.Println("axon starts at node", *axon)
//	}
//
// Use [Compute] to bypass caching entirely.
package analysis

import (
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/arbor/pkg/arbor"
	"github.com/matzehuels/arbor/pkg/cache"
	errs "github.com/matzehuels/arbor/pkg/errors"
	pkgio "github.com/matzehuels/arbor/pkg/io"
	"github.com/matzehuels/arbor/pkg/skeleton"
)

// =============================================================================
// Metrics
// =============================================================================

// Metric names accepted in [Options.Metrics].
const (
	MetricBetweenness = "betweenness"
	MetricSlab        = "slab"
	MetricStrahler    = "strahler"
	MetricDownstream  = "downstream"
	MetricSholl       = "sholl"
	MetricRadial      = "radial"
	MetricFlow        = "flow"
	MetricAsymmetry   = "asymmetry"
	MetricCable       = "cable"
)

// AllMetrics lists every metric in report order.
var AllMetrics = []string{
	MetricCable,
	MetricStrahler,
	MetricBetweenness,
	MetricSlab,
	MetricDownstream,
	MetricSholl,
	MetricRadial,
	MetricFlow,
	MetricAsymmetry,
}

// ValidMetrics is the set of supported metric names.
var ValidMetrics = func() map[string]bool {
	m := make(map[string]bool, len(AllMetrics))
	for _, name := range AllMetrics {
		m[name] = true
	}
	return m
}()

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultShollIncrement is the Sholl shell spacing in skeleton units
	// (nanometers for most tracing servers).
	DefaultShollIncrement = 1000.0

	// DefaultRadialIncrement is the bin width of the radial synapse density.
	DefaultRadialIncrement = 1000.0
)

// =============================================================================
// Options
// =============================================================================

// Options configures a report. It supports JSON for API requests.
type Options struct {
	// Metrics selects what to compute; empty means all of [AllMetrics].
	Metrics []string `json:"metrics,omitempty"`

	ShollIncrement  float64 `json:"sholl_increment,omitempty"`
	RadialIncrement float64 `json:"radial_increment,omitempty"`

	// Center is the origin of the Sholl and radial analyses. When nil, the
	// first node tagged "soma" is used, or else the root.
	Center *arbor.Point `json:"center,omitempty"`

	// Sigma is the Gaussian smoothing width for the smoothed cable length.
	// Zero skips smoothing.
	Sigma float64 `json:"sigma,omitempty"`

	// Normalize scales centralities and downstream amounts to [0, 1].
	Normalize bool `json:"normalize,omitempty"`

	// Collapse removes terminal branches tagged "not a branch" before
	// computing, moving their synapses onto the parent branch node.
	Collapse bool `json:"collapse,omitempty"`

	// Refresh bypasses cached reports. The new report is still stored.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// ValidateAndSetDefaults checks the options and fills in defaults. Errors are
// coded INVALID_METRIC or INVALID_INCREMENT. Calling it again is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if len(o.Metrics) == 0 {
		o.Metrics = AllMetrics
	}
	o.Metrics = slices.Clone(o.Metrics)
	for i, m := range o.Metrics {
		name := strings.ToLower(strings.TrimSpace(m))
		if !ValidMetrics[name] {
			return errs.New(errs.ErrCodeInvalidMetric, "unknown metric %q (must be one of: %s)",
				m, strings.Join(AllMetrics, ", "))
		}
		o.Metrics[i] = name
	}
	o.Metrics = canonicalOrder(o.Metrics)

	if o.ShollIncrement == 0 {
		o.ShollIncrement = DefaultShollIncrement
	}
	if o.RadialIncrement == 0 {
		o.RadialIncrement = DefaultRadialIncrement
	}
	if err := errs.ValidatePositive("sholl increment", o.ShollIncrement); err != nil {
		return err
	}
	if err := errs.ValidatePositive("radial increment", o.RadialIncrement); err != nil {
		return err
	}
	if err := errs.ValidateNonNegative("sigma", o.Sigma); err != nil {
		return err
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Wants reports whether metric is selected. Call after ValidateAndSetDefaults.
func (o *Options) Wants(metric string) bool {
	return slices.Contains(o.Metrics, metric)
}

// ReportKeyOpts returns the cache key options of a report.
func (o *Options) ReportKeyOpts() cache.ReportKeyOpts {
	k := cache.ReportKeyOpts{
		Metrics:         o.Metrics,
		ShollIncrement:  o.ShollIncrement,
		RadialIncrement: o.RadialIncrement,
		Sigma:           o.Sigma,
		Normalize:       o.Normalize,
		Collapse:        o.Collapse,
	}
	if o.Center != nil {
		k.Center = []float64{o.Center.X, o.Center.Y, o.Center.Z}
	}
	return k
}

// canonicalOrder deduplicates metrics and sorts them as in AllMetrics, so
// equivalent selections share cache entries.
func canonicalOrder(metrics []string) []string {
	out := make([]string, 0, len(metrics))
	for _, m := range AllMetrics {
		if slices.Contains(metrics, m) {
			out = append(out, m)
		}
	}
	return out
}

// center resolves the analysis origin for s.
func (o *Options) center(s *skeleton.Skeleton) arbor.Point {
	if o.Center != nil {
		return *o.Center
	}
	if soma := s.Tags[pkgio.SomaTag]; len(soma) > 0 {
		return s.Positions[slices.Min(soma)]
	}
	root, _ := s.Arbor.Root()
	return s.Positions[root]
}
