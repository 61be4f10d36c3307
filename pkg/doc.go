// Package pkg provides the core libraries for Arbor neuron morphology analysis.
//
// # Overview
//
// Arbor turns traced neuron skeletons into morphological measurements: cable
// length, Strahler order, Sholl profiles, centrality measures and the
// segregation of inputs and outputs that locates the putative axon. The pkg
// directory is organized into three areas:
//
//  1. Domain logic: [arbor] (rooted trees and all algorithms) and [skeleton]
//     (positions, synapses and tags attached to an arbor)
//  2. Pipeline: [io] (JSON, compact and SWC formats), [analysis] (metric
//     selection, reports and cached runs) and [render] (Graphviz diagrams)
//  3. Infrastructure: [cache], [config], [errors], [observability], [api]
//     and [buildinfo]
//
// # Architecture
//
// The typical data flow:
//
//	SWC / JSON skeleton
//	         ↓
//	    [io] package (decode + validate the tree)
//	         ↓
//	    [skeleton] package (arbor + positions + synapses)
//	         ↓
//	    [analysis] package (metrics, cached by content hash)
//	         ↓
//	    JSON/YAML report, DOT/SVG diagram
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/arbor/pkg/analysis"
//	    pkgio "github.com/matzehuels/arbor/pkg/io"
//	)
//
//	s, _ := pkgio.Import("neuron.swc")
//	report, _ := analysis.Compute(context.Background(), s, analysis.Options{
//	    Metrics:        []string{"cable", "strahler", "sholl", "flow"},
//	    ShollIncrement: 1000,
//	})
//
// # Command Line
//
// The arbor binary in cmd/arbor wraps these packages: analyze, sholl,
// render, convert and inspect work on local files, serve runs the HTTP API,
// and cache manages the local result cache.
//
// [arbor]: github.com/matzehuels/arbor/pkg/arbor
// [skeleton]: github.com/matzehuels/arbor/pkg/skeleton
// [io]: github.com/matzehuels/arbor/pkg/io
// [analysis]: github.com/matzehuels/arbor/pkg/analysis
// [render]: github.com/matzehuels/arbor/pkg/render
// [cache]: github.com/matzehuels/arbor/pkg/cache
// [config]: github.com/matzehuels/arbor/pkg/config
// [errors]: github.com/matzehuels/arbor/pkg/errors
// [observability]: github.com/matzehuels/arbor/pkg/observability
// [api]: github.com/matzehuels/arbor/pkg/api
// [buildinfo]: github.com/matzehuels/arbor/pkg/buildinfo
package pkg
