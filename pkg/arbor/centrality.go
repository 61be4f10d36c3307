package arbor

import "slices"

// BetweennessCentrality returns, for every node, the number of pairs of other
// nodes whose connecting path passes through it. Edges are treated as
// undirected.
//
// Rather than searching all pairs, partitions are processed from shortest to
// longest while each branch node collects the node counts of the partitions
// that merged into it. A slab node splits the tree into two sides; a branch
// node into one side per merged partition, one for the partition passing
// through it, and one upstream side. The number of paths through a node is
// the sum of pairwise products of its side sizes.
//
// The root is always assigned 0. When normalized is true, values are scaled by
// 2 / ((n-1)(n-2)); arbors with fewer than three nodes are all zero.
func (a *Arbor) BetweennessCentrality(normalized bool) map[NodeID]float64 {
	n := a.CountNodes()
	centrality := make(map[NodeID]float64, n)
	if !a.hasRoot {
		return centrality
	}

	groups := make(map[NodeID][]int)
	for _, seq := range a.PartitionSorted() {
		branch := seq[len(seq)-1]
		cumulative := 0
		for _, node := range seq[:len(seq)-1] {
			g, ok := groups[node]
			if !ok {
				centrality[node] = float64(cumulative * (n - cumulative - 1))
				cumulative++
				continue
			}
			// Branch node reached earlier by shorter partitions.
			other := 0
			for _, c := range g {
				other += c
			}
			g = append(g, cumulative, n-cumulative-other-1)
			paths := 0
			for i := range g {
				for k := i + 1; k < len(g); k++ {
					paths += g[i] * g[k]
				}
			}
			centrality[node] = float64(paths)
			cumulative += other + 1
		}
		groups[branch] = append(groups[branch], cumulative)
	}

	if normalized && n > 2 {
		k := 2.0 / float64((n-1)*(n-2))
		for node := range centrality {
			centrality[node] *= k
		}
	}
	centrality[a.root] = 0
	return centrality
}

// SlabCentrality computes betweenness centrality on the topological copy and
// projects it back: every node of a slab gets the mean centrality of the
// slab's first and last nodes. A branch node keeps the value of the slab that
// ends at it (its parent slab); the root is always 0.
func (a *Arbor) SlabCentrality(normalized bool) map[NodeID]float64 {
	sc := make(map[NodeID]float64, a.CountNodes())
	if !a.hasRoot {
		return sc
	}
	tc := a.TopologicalCopy().BetweennessCentrality(normalized)
	sc[a.root] = tc[a.root]
	for _, slab := range a.Slabs() {
		c := (tc[slab[0]] + tc[slab[len(slab)-1]]) / 2
		if _, ok := sc[slab[0]]; !ok {
			sc[slab[0]] = c
		}
		for _, node := range slab[1:] {
			sc[node] = c
		}
	}
	return sc
}

// FlowCentrality returns, for every node, the number of paths from an input
// synapse to an output synapse that pass through it on their way across the
// edge to its parent, divided by the total number of outputs. The root, which
// has no such edge, is 0. outputs and inputs map nodes to synapse counts;
// absent nodes count as zero.
//
// The second result is false, and the map nil, when there are no inputs or no
// outputs at all: flow is not computable for such an arbor.
//
// If the root is a branch node, a clone rerooted at the first end node is
// traversed instead, so the root never merges partitions.
func (a *Arbor) FlowCentrality(outputs, inputs map[NodeID]int) (map[NodeID]float64, bool) {
	totalOutputs, totalInputs := sumCounts(outputs), sumCounts(inputs)
	if totalOutputs == 0 || totalInputs == 0 || !a.hasRoot {
		return nil, false
	}

	arbor := a
	if be := a.FindBranchAndEndNodes(); slices.Contains(be.Branches, a.root) {
		arbor = a.Clone()
		arbor.reroot(be.Ends[0])
	}

	type flow struct{ inputs, outputs int }
	carried := make(map[NodeID]flow)
	centrality := make(map[NodeID]float64, a.CountNodes())
	centrality[arbor.root] = 0

	for _, seq := range arbor.PartitionSorted() {
		var seenI, seenO int
		for k, node := range seq {
			c := carried[node]
			if k == len(seq)-1 && node != arbor.root {
				// Merge point: hand the running totals to the partition
				// that owns this node.
				carried[node] = flow{c.inputs + seenI, c.outputs + seenO}
				break
			}
			seenI += inputs[node] + c.inputs
			seenO += outputs[node] + c.outputs
			paths := seenI*(totalOutputs-seenO) + seenO*(totalInputs-seenI)
			centrality[node] = float64(paths) / float64(totalOutputs)
		}
	}
	return centrality, true
}

func sumCounts(m map[NodeID]int) int {
	total := 0
	for _, n := range m {
		total += n
	}
	return total
}
