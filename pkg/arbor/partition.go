package arbor

import (
	"cmp"
	"slices"
)

// Partition decomposes the arbor into node sequences. Each sequence starts at
// an end node and walks towards the root until it reaches either the root or
// a node already included by an earlier sequence; that last node is included.
//
// End nodes are processed from the furthest to the closest to the root (ties
// in ascending NodeID order), so the first sequence is the longest path to the
// root. Consecutive pairs across all sequences cover every edge exactly once.
//
// A single-node arbor has no end nodes and yields no sequences.
func (a *Arbor) Partition() [][]NodeID {
	ends := a.FindEndNodes()
	if len(ends) == 0 {
		return nil
	}
	orders := a.NodesOrderFrom(a.root)
	slices.SortStableFunc(ends, func(x, y NodeID) int {
		return cmp.Compare(orders[y], orders[x])
	})

	seen := make(map[NodeID]bool, len(a.edges)+1)
	partitions := make([][]NodeID, 0, len(ends))
	for _, end := range ends {
		seq := []NodeID{end}
		paren, ok := a.edges[end]
		for ok {
			seq = append(seq, paren)
			if seen[paren] {
				break
			}
			seen[paren] = true
			paren, ok = a.edges[paren]
		}
		partitions = append(partitions, seq)
	}
	return partitions
}

// PartitionSorted returns the sequences of [Arbor.Partition] ordered from
// shortest to longest. A sequence ending at a branch node is always strictly
// shorter than the sequence passing through that branch node, so processing in
// this order sees every child contribution before the parent is consumed.
func (a *Arbor) PartitionSorted() [][]NodeID {
	partitions := a.Partition()
	slices.SortStableFunc(partitions, func(x, y []NodeID) int {
		return cmp.Compare(len(x), len(y))
	})
	return partitions
}
