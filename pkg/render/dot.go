package render

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/matzehuels/arbor/pkg/arbor"
)

// Options configures diagram generation.
type Options struct {
	// Values colors each node on a blue to red scale between the smallest
	// and largest value. Nodes without a value are grey.
	Values map[arbor.NodeID]float64

	// Metric names Values in the diagram title.
	Metric string

	// Topological draws only the root, branch and end nodes.
	Topological bool

	// Highlight draws these nodes larger with a black outline.
	Highlight []arbor.NodeID

	// Labels prints node IDs (and values) next to the nodes.
	Labels bool
}

// ToDOT converts a into Graphviz DOT source with edges pointing from parent
// to child. Nodes are emitted in ascending ID order so the output is stable.
func ToDOT(a *arbor.Arbor, opts Options) string {
	if opts.Topological {
		a = a.TopologicalCopy()
	}
	lo, hi := valueRange(opts.Values, a)
	highlight := make(map[arbor.NodeID]bool, len(opts.Highlight))
	for _, n := range opts.Highlight {
		highlight[n] = true
	}

	var buf bytes.Buffer
	buf.WriteString("digraph arbor {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, width=0.15, fixedsize=true, label=\"\", penwidth=0];\n")
	buf.WriteString("  edge [arrowhead=none, color=\"#555555\"];\n")
	if opts.Metric != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Metric)
	}
	buf.WriteString("\n")

	for _, n := range a.Nodes() {
		attrs := nodeAttrs(n, opts, lo, hi, highlight[n])
		fmt.Fprintf(&buf, "  n%d [%s];\n", n, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range a.Nodes() {
		if p, ok := a.Parent(n); ok {
			fmt.Fprintf(&buf, "  n%d -> n%d;\n", p, n)
		}
	}
	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(n arbor.NodeID, opts Options, lo, hi float64, highlighted bool) []string {
	fill := "#bbbbbb"
	v, ok := opts.Values[n]
	if ok {
		fill = colorFor(v, lo, hi)
	}
	attrs := []string{fmt.Sprintf("fillcolor=%q", fill)}
	if highlighted {
		attrs = append(attrs, "width=0.35", "penwidth=2", "color=black")
	}
	if opts.Labels {
		label := fmt.Sprintf("%d", n)
		if ok {
			label += fmt.Sprintf("\\n%.3g", v)
		}
		attrs = append(attrs, fmt.Sprintf("xlabel=\"%s\"", label), "fontsize=8")
	}
	return attrs
}

// valueRange returns the extent of the values of the nodes in a.
func valueRange(values map[arbor.NodeID]float64, a *arbor.Arbor) (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, n := range a.Nodes() {
		if v, ok := values[n]; ok {
			lo, hi = min(lo, v), max(hi, v)
		}
	}
	return lo, hi
}

// Color stops of the diverging scale, low to high.
var palette = [...][3]float64{
	{0x31, 0x36, 0x95},
	{0xfe, 0xe0, 0x90},
	{0xa5, 0x00, 0x26},
}

// colorFor maps v within [lo, hi] onto the palette. A degenerate range maps
// to the lowest color.
func colorFor(v, lo, hi float64) string {
	t := 0.0
	if hi > lo {
		t = (v - lo) / (hi - lo)
	}
	t = min(max(t, 0), 1)

	seg := t * float64(len(palette)-1)
	i := min(int(seg), len(palette)-2)
	f := seg - float64(i)
	var rgb [3]int
	for c := range rgb {
		rgb[c] = int(math.Round(palette[i][c] + f*(palette[i+1][c]-palette[i][c])))
	}
	return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2])
}
