package analysis

import (
	"context"
	"time"

	"github.com/matzehuels/arbor/pkg/arbor"
	errs "github.com/matzehuels/arbor/pkg/errors"
	"github.com/matzehuels/arbor/pkg/observability"
	"github.com/matzehuels/arbor/pkg/skeleton"
)

// Compute builds a report for s without caching. The skeleton is not
// modified; collapsing works on a copy. The context is checked between
// metrics.
func Compute(ctx context.Context, s *skeleton.Skeleton, opts Options) (*Report, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, errs.Classify(err)
	}
	start := time.Now()

	work := s
	collapsed := 0
	if opts.Collapse {
		work = s.Clone()
		collapsed = work.CollapseArtifactualBranches(skeleton.NotABranchTag)
	}

	a := work.Arbor
	be := a.FindBranchAndEndNodes()
	report := &Report{
		SkeletonID: s.ID,
		Name:       s.Name,
		Metrics:    opts.Metrics,
		Center:     opts.center(work),
		Summary: Summary{
			Nodes:     a.CountNodes(),
			Edges:     a.EdgeCount(),
			Branches:  len(be.Branches),
			Ends:      len(be.Ends),
			Inputs:    work.InputCount(),
			Outputs:   work.OutputCount(),
			Cable:     a.CableLength(work.Positions),
			Collapsed: collapsed,
		},
		Stats: Stats{MetricTimes: make(map[string]time.Duration, len(opts.Metrics))},
	}

	for _, metric := range opts.Metrics {
		if err := ctx.Err(); err != nil {
			return nil, errs.Classify(err)
		}
		t := time.Now()
		if err := computeMetric(metric, work, opts, report); err != nil {
			return nil, errs.Classify(err)
		}
		d := time.Since(t)
		report.Stats.MetricTimes[metric] = d
		observability.Analysis().OnMetric(ctx, metric, d)
		opts.Logger.Debug("computed metric", "metric", metric, "duration", d)
	}

	report.Stats.Duration = time.Since(start)
	return report, nil
}

func computeMetric(metric string, s *skeleton.Skeleton, opts Options, r *Report) error {
	a := s.Arbor
	switch metric {
	case MetricCable:
		tc := a.TerminalCableLength(s.Positions)
		r.TerminalCable = &tc
		if opts.Sigma > 0 {
			r.Summary.SmoothCable = a.SmoothCableLength(s.Positions, opts.Sigma)
		}

	case MetricStrahler:
		r.Strahler = a.StrahlerAnalysis()
		for _, order := range r.Strahler {
			r.Summary.MaxStrahler = max(r.Summary.MaxStrahler, order)
		}

	case MetricBetweenness:
		r.Betweenness = a.BetweennessCentrality(opts.Normalize)

	case MetricSlab:
		r.SlabCentrality = a.SlabCentrality(opts.Normalize)

	case MetricDownstream:
		r.DownstreamCable = a.DownstreamAmount(edgeLength(s.Positions), opts.Normalize)

	case MetricSholl:
		sholl, err := a.Sholl(opts.ShollIncrement, func(n arbor.NodeID) float64 {
			return s.Positions[n].DistanceTo(r.Center)
		})
		if err != nil {
			return err
		}
		r.Sholl = &sholl

	case MetricRadial:
		synapses := s.SynapseMap()
		density, err := a.RadialDensity(r.Center, opts.RadialIncrement, s.Positions,
			func(n arbor.NodeID) float64 { return float64(synapses[n]) })
		if err != nil {
			return err
		}
		r.SynapseDensity = &density

	case MetricFlow:
		r.Flow = flow(a, s)

	case MetricAsymmetry:
		r.Asymmetry = &Asymmetry{
			Ends:  a.AsymmetryIndex(),
			Cable: a.CableAsymmetryIndex(s.Positions),
			Load:  a.LoadAsymmetryIndex(s.SynapseMap()),
		}
	}
	return nil
}

func edgeLength(positions map[arbor.NodeID]arbor.Point) arbor.AmountFunc {
	return func(parent, child arbor.NodeID) float64 {
		return positions[parent].DistanceTo(positions[child])
	}
}

func flow(a *arbor.Arbor, s *skeleton.Skeleton) *Flow {
	centrality, ok := a.FlowCentrality(s.Outputs, s.Inputs)
	if !ok {
		return &Flow{}
	}
	f := &Flow{Computable: true, Centrality: centrality}
	for _, n := range a.Nodes() {
		v := centrality[n]
		if f.PutativeAxon == nil || v > f.MaxFlow {
			node := n
			f.PutativeAxon, f.MaxFlow = &node, v
		}
	}
	return f
}
