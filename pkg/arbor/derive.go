package arbor

import (
	"fmt"
	"slices"
)

// SpanningTree returns a new arbor with the minimal set of nodes that connects
// every node in keepers: the keepers themselves plus the nodes on the paths
// between them, including junctions where those paths meet. The result is
// rooted at the keeper closest to this arbor's root (ties in ascending NodeID
// order).
//
// Returns ErrNodeNotFound if a keeper does not belong to the arbor. An empty
// keepers slice yields an empty arbor, a single keeper a single-node arbor.
func (a *Arbor) SpanningTree(keepers []NodeID) (*Arbor, error) {
	keep := make(map[NodeID]bool, len(keepers))
	for _, k := range keepers {
		if !a.Contains(k) {
			return nil, fmt.Errorf("spanning tree keeper %d: %w", k, ErrNodeNotFound)
		}
		keep[k] = true
	}
	switch len(keep) {
	case 0:
		return New(), nil
	case 1:
		return NewSingle(keepers[0]), nil
	}

	// Count keepers at or below every node, children before parents.
	succ := a.AllSuccessors()
	below := make(map[NodeID]int, len(succ))
	branching := make(map[NodeID]int, len(succ))
	for _, node := range a.postorder(succ) {
		if keep[node] {
			below[node]++
		}
		if below[node] == 0 {
			continue
		}
		if p, ok := a.edges[node]; ok {
			below[p] += below[node]
			branching[p]++
		}
	}

	total := len(keep)
	included := func(node NodeID) bool {
		n := below[node]
		return n > 0 && (keep[node] || n < total || branching[node] > 1)
	}

	spanning := New()
	var top NodeID
	for _, node := range a.Nodes() {
		if !included(node) {
			continue
		}
		if p, ok := a.edges[node]; ok && included(p) {
			spanning.edges[node] = p
		} else {
			top = node
		}
	}
	spanning.root, spanning.hasRoot = top, true

	orders := a.NodesOrderFrom(a.root)
	closest := slices.MinFunc(sortedKeys(keep), func(x, y NodeID) int {
		return orders[x] - orders[y]
	})
	if err := spanning.Reroot(closest); err != nil {
		return nil, err
	}
	return spanning, nil
}

// TopologicalCopy returns a new arbor keeping only the root, branch and end
// nodes. Each kept node is linked directly to its nearest kept ancestor.
func (a *Arbor) TopologicalCopy() *Arbor {
	topo := New()
	if !a.hasRoot {
		return topo
	}
	topo.root, topo.hasRoot = a.root, true

	type pair struct{ child, paren NodeID }
	succ := a.AllSuccessors()
	open := []pair{{a.root, a.root}}
	for len(open) > 0 {
		e := open[0]
		open = open[1:]

		child := e.child
		children := succ[child]
		for len(children) == 1 {
			child = children[0]
			children = succ[child]
		}
		if child != a.root {
			topo.edges[child] = e.paren
		}
		for _, c := range children {
			open = append(open, pair{c, child})
		}
	}
	return topo
}

// Slabs returns every maximal run of single-child nodes as a sequence that
// starts at a topological node (root or branch) and ends at the next one
// (branch or end), both inclusive. A single-node arbor has no slabs.
func (a *Arbor) Slabs() [][]NodeID {
	if !a.hasRoot {
		return nil
	}
	var slabs [][]NodeID
	succ := a.AllSuccessors()
	open := [][]NodeID{{a.root}}
	for len(open) > 0 {
		slab := open[0]
		open = open[1:]

		children := succ[slab[len(slab)-1]]
		for len(children) == 1 {
			slab = append(slab, children[0])
			children = succ[children[0]]
		}
		if len(slab) > 1 {
			slabs = append(slabs, slab)
		}
		for _, c := range children {
			open = append(open, []NodeID{slab[len(slab)-1], c})
		}
	}
	return slabs
}

// SubArbor returns a new arbor rooted at newRoot containing newRoot and all
// of its descendants. Returns ErrNodeNotFound if newRoot is not in the arbor.
func (a *Arbor) SubArbor(newRoot NodeID) (*Arbor, error) {
	if !a.Contains(newRoot) {
		return nil, fmt.Errorf("sub arbor at %d: %w", newRoot, ErrNodeNotFound)
	}
	sub := NewSingle(newRoot)
	succ := a.AllSuccessors()
	open := []NodeID{newRoot}
	for len(open) > 0 {
		paren := open[0]
		open = open[1:]
		for _, child := range succ[paren] {
			sub.edges[child] = paren
			open = append(open, child)
		}
	}
	return sub, nil
}

// Without returns a new arbor lacking the given nodes and everything
// downstream of them. The root is never removed.
func (a *Arbor) Without(nodes []NodeID) *Arbor {
	drop := make(map[NodeID]bool, len(nodes))
	for _, n := range nodes {
		drop[n] = true
	}
	if !a.hasRoot {
		return New()
	}
	kept := NewSingle(a.root)
	succ := a.AllSuccessors()
	open := []NodeID{a.root}
	for len(open) > 0 {
		paren := open[0]
		open = open[1:]
		for _, child := range succ[paren] {
			if drop[child] {
				continue
			}
			kept.edges[child] = paren
			open = append(open, child)
		}
	}
	return kept
}
