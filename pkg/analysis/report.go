package analysis

import (
	"time"

	"github.com/matzehuels/arbor/pkg/arbor"
)

// Report is the result of analysing one skeleton. Sections for metrics that
// were not requested are nil.
type Report struct {
	RunID        string   `json:"run_id" yaml:"run_id"`
	SkeletonID   int64    `json:"skeleton_id" yaml:"skeleton_id"`
	Name         string   `json:"name,omitempty" yaml:"name,omitempty"`
	SkeletonHash string   `json:"skeleton_hash" yaml:"skeleton_hash"`
	Metrics      []string `json:"metrics" yaml:"metrics"`

	Summary Summary     `json:"summary" yaml:"summary"`
	Center  arbor.Point `json:"center" yaml:"center"`

	Strahler        map[arbor.NodeID]int     `json:"strahler,omitempty" yaml:"strahler,omitempty"`
	Betweenness     map[arbor.NodeID]float64 `json:"betweenness,omitempty" yaml:"betweenness,omitempty"`
	SlabCentrality  map[arbor.NodeID]float64 `json:"slab_centrality,omitempty" yaml:"slab_centrality,omitempty"`
	DownstreamCable map[arbor.NodeID]float64 `json:"downstream_cable,omitempty" yaml:"downstream_cable,omitempty"`

	Sholl          *arbor.ShollProfile   `json:"sholl,omitempty" yaml:"sholl,omitempty"`
	SynapseDensity *arbor.DensityProfile `json:"synapse_density,omitempty" yaml:"synapse_density,omitempty"`
	TerminalCable  *arbor.TerminalCable  `json:"terminal_cable,omitempty" yaml:"terminal_cable,omitempty"`
	Flow           *Flow                 `json:"flow,omitempty" yaml:"flow,omitempty"`
	Asymmetry      *Asymmetry            `json:"asymmetry,omitempty" yaml:"asymmetry,omitempty"`

	Stats     Stats     `json:"stats" yaml:"stats"`
	CacheInfo CacheInfo `json:"cache" yaml:"cache"`
}

// Summary holds counts and lengths of the analysed arbor.
type Summary struct {
	Nodes    int `json:"nodes" yaml:"nodes"`
	Edges    int `json:"edges" yaml:"edges"`
	Branches int `json:"branches" yaml:"branches"`
	Ends     int `json:"ends" yaml:"ends"`
	Inputs   int `json:"inputs" yaml:"inputs"`
	Outputs  int `json:"outputs" yaml:"outputs"`

	Cable       float64 `json:"cable" yaml:"cable"`
	SmoothCable float64 `json:"smooth_cable,omitempty" yaml:"smooth_cable,omitempty"`
	MaxStrahler int     `json:"max_strahler,omitempty" yaml:"max_strahler,omitempty"`

	// Collapsed counts artifactual branches removed before analysis.
	Collapsed int `json:"collapsed,omitempty" yaml:"collapsed,omitempty"`
}

// Flow holds the synaptic flow centrality. When Computable is false the
// skeleton lacks inputs or outputs and the other fields are empty.
type Flow struct {
	Computable bool                     `json:"computable" yaml:"computable"`
	Centrality map[arbor.NodeID]float64 `json:"centrality,omitempty" yaml:"centrality,omitempty"`

	// PutativeAxon is the node of maximum flow, where the axon most likely
	// leaves the dendritic arbor. Ties go to the smallest node ID.
	PutativeAxon *arbor.NodeID `json:"putative_axon,omitempty" yaml:"putative_axon,omitempty"`
	MaxFlow      float64       `json:"max_flow,omitempty" yaml:"max_flow,omitempty"`
}

// Asymmetry holds the partition asymmetry of branch points measured by end
// count, cable and synapse load.
type Asymmetry struct {
	Ends  arbor.AsymmetryStats `json:"ends" yaml:"ends"`
	Cable arbor.AsymmetryStats `json:"cable" yaml:"cable"`
	Load  arbor.AsymmetryStats `json:"load" yaml:"load"`
}

// Stats records how long the computation took.
type Stats struct {
	Duration    time.Duration            `json:"duration" yaml:"duration"`
	MetricTimes map[string]time.Duration `json:"metric_times,omitempty" yaml:"metric_times,omitempty"`
}

// CacheInfo tells whether the report was served from the cache.
type CacheInfo struct {
	Hit bool   `json:"hit" yaml:"hit"`
	Key string `json:"key,omitempty" yaml:"key,omitempty"`
}

// NodeMetrics lists the metrics that assign a value to every node and can
// therefore color a rendering.
var NodeMetrics = []string{
	MetricStrahler,
	MetricBetweenness,
	MetricSlab,
	MetricDownstream,
	MetricFlow,
}

// NodeValues returns the per-node values of metric, or false when the metric
// is not per-node or was not computed.
func (r *Report) NodeValues(metric string) (map[arbor.NodeID]float64, bool) {
	switch metric {
	case MetricStrahler:
		if r.Strahler == nil {
			return nil, false
		}
		out := make(map[arbor.NodeID]float64, len(r.Strahler))
		for n, v := range r.Strahler {
			out[n] = float64(v)
		}
		return out, true
	case MetricBetweenness:
		return r.Betweenness, r.Betweenness != nil
	case MetricSlab:
		return r.SlabCentrality, r.SlabCentrality != nil
	case MetricDownstream:
		return r.DownstreamCable, r.DownstreamCable != nil
	case MetricFlow:
		if r.Flow == nil || !r.Flow.Computable {
			return nil, false
		}
		return r.Flow.Centrality, true
	}
	return nil, false
}
