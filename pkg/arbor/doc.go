// Package arbor provides a rooted tree for neuron skeleton morphology and the
// algorithms used to characterize it.
//
// # Overview
//
// A skeleton is a tree of reconstruction points. An [Arbor] stores it as a map
// from every child node to its parent; the root is the only node without a
// parent and never appears as a key. Positions, synapse counts and other
// per-node attributes are kept by callers in plain maps keyed by [NodeID] and
// passed to the algorithms that need them. The package performs no I/O.
//
// # Basic Usage
//
// Build an arbor from child/parent pairs with [FromEdges], or grow it from
// paths with [Arbor.AddPath]:
//
//	a, err := arbor.FromEdges([]arbor.Edge{
//		{Child: 2, Parent: 1},
//		{Child: 3, Parent: 2},
//		{Child: 4, Parent: 2},
//	})
//	if err != nil {
//		return err // wraps arbor.ErrMalformedTree
//	}
//	ends := a.FindEndNodes() // [3 4]
//
// Edge input is validated: [Arbor.AddEdges] rejects cycles, forests and
// nodes that do not reach the root, leaving the arbor unchanged.
//
// # Partitions
//
// Most algorithms are linear thanks to [Arbor.Partition]: the tree is split
// into runs that start at an end node and climb until the root or a node
// already visited by a longer run. [Arbor.PartitionSorted] orders these runs
// from shortest to longest, so totals collected in short runs are available
// when the run passing through their merge point is processed. Betweenness,
// flow centrality, downstream amounts and subtree measurements all follow this
// pattern.
//
// # Derived Trees
//
// [Arbor.Clone], [Arbor.SubArbor], [Arbor.SpanningTree] and
// [Arbor.TopologicalCopy] return independent arbors. [Arbor.Reroot] and
// [Arbor.PruneBareTerminalSegments] mutate the receiver.
//
// # Metrics
//
//   - [Arbor.BetweennessCentrality] and [Arbor.SlabCentrality]
//   - [Arbor.FlowCentrality] for synapse flow; its maximum marks the putative
//     axon initial segment
//   - [Arbor.DownstreamAmount] and [Arbor.StrahlerAnalysis]
//   - [Arbor.Sholl] and [Arbor.RadialDensity] for radial analysis
//   - [Arbor.CableLength], [Arbor.SmoothCableLength] and the asymmetry indices
//   - [Arbor.SmoothPositions] and [Arbor.ResampleSlabs] to denoise a trace or
//     give it uniform node spacing
//
// # Determinism
//
// Map iteration is never exposed: children, end nodes and branch nodes are
// listed in ascending NodeID order and partition ties are broken the same
// way, so repeated calls on an unchanged arbor return identical results.
//
// # Concurrency
//
// Arbor instances are not safe for concurrent use. Read-only algorithms may
// run in parallel on the same arbor as long as no goroutine mutates it.
// Traversals are iterative, so deep skeletons do not grow the stack.
package arbor
