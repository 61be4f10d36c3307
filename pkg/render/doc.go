// Package render draws arbors as node-link diagrams with Graphviz.
//
// # Overview
//
// [ToDOT] converts an [arbor.Arbor] into Graphviz DOT source, laid out top to
// bottom from the root. Nodes can be colored by any per-node metric of an
// analysis report (Strahler order, flow centrality, downstream cable), and
// selected nodes, such as the putative axon, can be highlighted.
//
//	dot := render.ToDOT(a, render.Options{
//	    Values:    report.Flow.Centrality,
//	    Metric:    "flow",
//	    Highlight: []arbor.NodeID{*report.Flow.PutativeAxon},
//	})
//	svg, err := render.RenderSVG(dot)
//
// Real skeletons have tens of thousands of nodes. Set [Options.Topological]
// to draw only the root, branch and end nodes, which keeps the diagram
// readable.
//
// # Dependencies
//
// SVG output uses [github.com/goccy/go-graphviz], which runs Graphviz
// in-process through WebAssembly; no system installation is needed.
//
// [arbor.Arbor]: github.com/matzehuels/arbor/pkg/arbor.Arbor
package render
