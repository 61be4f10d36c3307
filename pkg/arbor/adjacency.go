package arbor

import "slices"

// DistanceFunc returns the length of the edge between child and parent.
type DistanceFunc func(child, parent NodeID) float64

// Distances holds the result of [Arbor.NodesDistanceTo].
type Distances struct {
	Distances map[NodeID]float64
	Max       float64 // largest distance to any end node
}

// BranchAndEnd holds the result of [Arbor.FindBranchAndEndNodes].
type BranchAndEnd struct {
	Ends     []NodeID
	Branches []NodeID
}

// FindEndNodes returns every node without children, in ascending order.
// The root is never reported, even in a single-node arbor.
func (a *Arbor) FindEndNodes() []NodeID {
	parents := make(map[NodeID]struct{}, len(a.edges))
	for _, p := range a.edges {
		parents[p] = struct{}{}
	}
	var ends []NodeID
	for _, child := range sortedKeys(a.edges) {
		if _, ok := parents[child]; !ok {
			ends = append(ends, child)
		}
	}
	return ends
}

// AllSuccessors maps every node to its children. End nodes map to an empty
// slice. Children are listed in ascending order.
func (a *Arbor) AllSuccessors() map[NodeID][]NodeID {
	succ := make(map[NodeID][]NodeID, len(a.edges)+1)
	if a.hasRoot {
		succ[a.root] = []NodeID{}
	}
	for _, child := range sortedKeys(a.edges) {
		paren := a.edges[child]
		succ[paren] = append(succ[paren], child)
		if _, ok := succ[child]; !ok {
			succ[child] = []NodeID{}
		}
	}
	return succ
}

// AllNeighbors maps every node to its parent (first, when present) followed by
// its children. An isolated root maps to an empty slice.
func (a *Arbor) AllNeighbors() map[NodeID][]NodeID {
	succ := a.AllSuccessors()
	neighbors := make(map[NodeID][]NodeID, len(succ))
	for node, children := range succ {
		n := make([]NodeID, 0, len(children)+1)
		if p, ok := a.edges[node]; ok {
			n = append(n, p)
		}
		neighbors[node] = append(n, children...)
	}
	return neighbors
}

// Successors returns the children of node in ascending order. O(n).
func (a *Arbor) Successors(node NodeID) []NodeID {
	var children []NodeID
	for _, child := range sortedKeys(a.edges) {
		if a.edges[child] == node {
			children = append(children, child)
		}
	}
	return children
}

// Neighbors returns the parent of node (if any) followed by its children. O(n).
func (a *Arbor) Neighbors(node NodeID) []NodeID {
	var n []NodeID
	if p, ok := a.edges[node]; ok {
		n = append(n, p)
	}
	return append(n, a.Successors(node)...)
}

// NextBranchNode follows single-child chains starting at node (inclusive) and
// returns the first node with more than one child. It returns false when an
// end node is reached first, or when node is not in the arbor.
func (a *Arbor) NextBranchNode(node NodeID) (NodeID, bool) {
	if !a.Contains(node) {
		return 0, false
	}
	succ := a.AllSuccessors()
	children := succ[node]
	for len(children) == 1 {
		node = children[0]
		children = succ[node]
	}
	if len(children) > 1 {
		return node, true
	}
	return 0, false
}

// FindBranchNodes returns every node with more than one child, ascending.
func (a *Arbor) FindBranchNodes() []NodeID {
	counts := a.childCounts()
	var branches []NodeID
	for _, node := range sortedKeys(counts) {
		if counts[node] > 1 {
			branches = append(branches, node)
		}
	}
	return branches
}

// FindBranchAndEndNodes computes branch and end nodes in a single pass over
// the child counts.
func (a *Arbor) FindBranchAndEndNodes() BranchAndEnd {
	counts := a.childCounts()
	var be BranchAndEnd
	for _, child := range sortedKeys(a.edges) {
		if counts[child] == 0 {
			be.Ends = append(be.Ends, child)
		}
	}
	for _, node := range sortedKeys(counts) {
		if counts[node] > 1 {
			be.Branches = append(be.Branches, node)
		}
	}
	return be
}

func (a *Arbor) childCounts() map[NodeID]int {
	counts := make(map[NodeID]int, len(a.edges))
	for _, p := range a.edges {
		counts[p]++
	}
	return counts
}

// NodesDistanceTo measures the distance of every node downstream of root,
// accumulating distanceFn over each edge. Max is the largest distance reached
// at an end node. Nodes not downstream of root are absent from the result.
func (a *Arbor) NodesDistanceTo(root NodeID, distanceFn DistanceFunc) Distances {
	d := Distances{Distances: make(map[NodeID]float64)}
	if !a.Contains(root) {
		return d
	}

	type item struct {
		node NodeID
		dist float64
	}
	succ := a.AllSuccessors()
	open := []item{{root, 0}}
	for len(open) > 0 {
		next := open[0]
		open = open[1:]

		paren, dist := next.node, next.dist
		d.Distances[paren] = dist
		children := succ[paren]
		for len(children) == 1 {
			child := children[0]
			dist += distanceFn(child, paren)
			d.Distances[child] = dist
			paren = child
			children = succ[paren]
		}
		if len(children) == 0 {
			d.Max = max(d.Max, dist)
			continue
		}
		for _, child := range children {
			open = append(open, item{child, dist + distanceFn(child, paren)})
		}
	}
	return d
}

// NodesOrderFrom returns the hierarchical order of every node downstream of
// root: root has order 0, its children 1, and so on.
func (a *Arbor) NodesOrderFrom(root NodeID) map[NodeID]int {
	d := a.NodesDistanceTo(root, func(NodeID, NodeID) float64 { return 1 })
	orders := make(map[NodeID]int, len(d.Distances))
	for node, dist := range d.Distances {
		orders[node] = int(dist)
	}
	return orders
}

// postorder returns every node with children listed before their parent.
// It is the reverse of a breadth-first order from the root.
func (a *Arbor) postorder(succ map[NodeID][]NodeID) []NodeID {
	if !a.hasRoot {
		return nil
	}
	order := make([]NodeID, 0, len(succ))
	order = append(order, a.root)
	for i := 0; i < len(order); i++ {
		order = append(order, succ[order[i]]...)
	}
	slices.Reverse(order)
	return order
}
