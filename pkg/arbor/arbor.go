package arbor

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrMalformedTree is returned by [Arbor.AddEdges], [FromEdges] and
	// [Arbor.Validate] when the edges do not describe a single rooted tree:
	// no parentless node exists (a cycle), more than one does (disconnected
	// input), or some node never reaches the root.
	ErrMalformedTree = errors.New("malformed tree")

	// ErrNodeNotFound is returned by operations that require a node to belong
	// to the arbor, such as [Arbor.Reroot] and [Arbor.SubArbor].
	ErrNodeNotFound = errors.New("node not found")

	// ErrInvalidIncrement is returned by [Arbor.Sholl],
	// [Arbor.RadialDensity] and [Arbor.ResampleSlabs] when the radius
	// increment or spacing is not positive.
	ErrInvalidIncrement = errors.New("radius increment must be positive")
)

// NodeID identifies a skeleton node. IDs are compared with strict equality.
type NodeID int64

// Edge is a child to parent relation as stored by skeleton persistence.
type Edge struct {
	Child  NodeID
	Parent NodeID
}

// Arbor is a rooted tree stored as a map from child to parent.
// The root is the single node without a parent and never appears as a key.
//
// The zero value is not usable - use New, FromEdges, or Clone.
// Arbor is not safe for concurrent use without external synchronization.
type Arbor struct {
	root    NodeID
	hasRoot bool
	edges   map[NodeID]NodeID
}

// New creates an empty arbor with no root.
func New() *Arbor {
	return &Arbor{edges: make(map[NodeID]NodeID)}
}

// NewSingle creates an arbor consisting of a single root node.
func NewSingle(root NodeID) *Arbor {
	return &Arbor{root: root, hasRoot: true, edges: make(map[NodeID]NodeID)}
}

// FromEdges builds an arbor from child/parent pairs.
// It is equivalent to New followed by AddEdges.
func FromEdges(pairs []Edge) (*Arbor, error) {
	a := New()
	if err := a.AddEdges(pairs); err != nil {
		return nil, err
	}
	return a, nil
}

// AddEdges inserts every pair and recomputes the root.
//
// The pairs are applied to a staged copy of the edge map. If the result is not
// a single rooted tree, AddEdges returns an error wrapping ErrMalformedTree and
// the arbor is left unchanged. A pair whose child is already present replaces
// that child's parent.
func (a *Arbor) AddEdges(pairs []Edge) error {
	if len(pairs) == 0 {
		return nil
	}
	staged := maps.Clone(a.edges)
	if staged == nil {
		staged = make(map[NodeID]NodeID, len(pairs))
	}
	for _, e := range pairs {
		if e.Child == e.Parent {
			return fmt.Errorf("%w: node %d is its own parent", ErrMalformedTree, e.Child)
		}
		staged[e.Child] = e.Parent
	}

	if a.hasRoot && len(a.edges) == 0 {
		// A single-node arbor contributes its root as a candidate.
		if _, ok := staged[a.root]; !ok && !isParent(staged, a.root) {
			return fmt.Errorf("%w: node %d is not connected", ErrMalformedTree, a.root)
		}
	}

	root, err := uniqueRoot(staged)
	if err != nil {
		return err
	}
	if err := validateReachability(staged, root); err != nil {
		return err
	}

	a.edges = staged
	a.root = root
	a.hasRoot = true
	return nil
}

func isParent(edges map[NodeID]NodeID, node NodeID) bool {
	for _, p := range edges {
		if p == node {
			return true
		}
	}
	return false
}

// uniqueRoot returns the single parent that is not itself a child.
func uniqueRoot(edges map[NodeID]NodeID) (NodeID, error) {
	var (
		root  NodeID
		found bool
	)
	for _, child := range sortedKeys(edges) {
		paren := edges[child]
		if _, ok := edges[paren]; ok {
			continue
		}
		if found && paren != root {
			return 0, fmt.Errorf("%w: multiple roots %d and %d", ErrMalformedTree, root, paren)
		}
		root, found = paren, true
	}
	if !found {
		return 0, fmt.Errorf("%w: no root found (cycle)", ErrMalformedTree)
	}
	return root, nil
}

// validateReachability checks that every key walks up to root without
// revisiting a node. Each node is resolved once, so the check is O(n).
func validateReachability(edges map[NodeID]NodeID, root NodeID) error {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[NodeID]int, len(edges)+1)
	state[root] = done

	var path []NodeID
	for _, start := range sortedKeys(edges) {
		path = path[:0]
		node := start
		for state[node] == unvisited {
			state[node] = onPath
			path = append(path, node)
			paren, ok := edges[node]
			if !ok {
				return fmt.Errorf("%w: node %d does not reach root %d", ErrMalformedTree, node, root)
			}
			node = paren
		}
		if state[node] == onPath {
			return fmt.Errorf("%w: cycle through node %d", ErrMalformedTree, node)
		}
		for _, n := range path {
			state[n] = done
		}
	}
	return nil
}

// Validate reports whether the arbor is a single rooted tree.
// It returns an error wrapping ErrMalformedTree otherwise.
func (a *Arbor) Validate() error {
	if len(a.edges) == 0 {
		return nil
	}
	root, err := uniqueRoot(a.edges)
	if err != nil {
		return err
	}
	if !a.hasRoot || root != a.root {
		return fmt.Errorf("%w: recorded root does not match edges", ErrMalformedTree)
	}
	return validateReachability(a.edges, root)
}

// AddPath inserts edges for a path ordered from root towards a leaf:
// every node is the child of its predecessor. The root is set to path[0]
// only if that node has no parent recorded, so a tree can be grown one
// branch at a time.
//
// AddPath does not check the result. A path that shares no node with the
// existing tree leaves the arbor with two roots; call [Arbor.Validate] after
// growing a tree incrementally, or use [Arbor.AddEdges], which is atomic.
func (a *Arbor) AddPath(path []NodeID) {
	if len(path) == 0 {
		return
	}
	for i := len(path) - 2; i >= 0; i-- {
		a.edges[path[i+1]] = path[i]
	}
	if _, ok := a.edges[path[0]]; !ok {
		a.root, a.hasRoot = path[0], true
	}
}

// AddPathReversed is like AddPath for a path ordered from leaf to root.
func (a *Arbor) AddPathReversed(path []NodeID) {
	if len(path) == 0 {
		return
	}
	for i := len(path) - 2; i >= 0; i-- {
		a.edges[path[i]] = path[i+1]
	}
	last := path[len(path)-1]
	if _, ok := a.edges[last]; !ok {
		a.root, a.hasRoot = last, true
	}
}

// Contains reports whether node is the root or has a parent in the arbor.
func (a *Arbor) Contains(node NodeID) bool {
	if a.hasRoot && node == a.root {
		return true
	}
	_, ok := a.edges[node]
	return ok
}

// FindRoot scans the edges for the first parent that has no parent itself.
// For an arbor without edges it returns the recorded root, if any.
// The second result is false when no root can be found.
func (a *Arbor) FindRoot() (NodeID, bool) {
	for _, child := range sortedKeys(a.edges) {
		paren := a.edges[child]
		if _, ok := a.edges[paren]; !ok {
			return paren, true
		}
	}
	if len(a.edges) == 0 && a.hasRoot {
		return a.root, true
	}
	return 0, false
}

// Root returns the root node and false for an empty arbor.
func (a *Arbor) Root() (NodeID, bool) { return a.root, a.hasRoot }

// Parent returns the parent of node, or false for the root and unknown nodes.
func (a *Arbor) Parent(node NodeID) (NodeID, bool) {
	p, ok := a.edges[node]
	return p, ok
}

// Edges returns a copy of the child to parent map.
func (a *Arbor) Edges() map[NodeID]NodeID { return maps.Clone(a.edges) }

// EdgeCount returns the number of child to parent edges.
func (a *Arbor) EdgeCount() int { return len(a.edges) }

// CountNodes returns the number of nodes, root included.
func (a *Arbor) CountNodes() int {
	if !a.hasRoot {
		return len(a.edges)
	}
	return len(a.edges) + 1
}

// Nodes returns every node in ascending order.
func (a *Arbor) Nodes() []NodeID {
	nodes := sortedKeys(a.edges)
	if a.hasRoot {
		i, _ := slices.BinarySearch(nodes, a.root)
		nodes = slices.Insert(nodes, i, a.root)
	}
	return nodes
}

// Reroot makes newRoot the root by reversing every edge on the path from
// newRoot up to the current root. It mutates the receiver.
// Returns ErrNodeNotFound if newRoot does not belong to the arbor.
func (a *Arbor) Reroot(newRoot NodeID) error {
	if !a.Contains(newRoot) {
		return fmt.Errorf("reroot at %d: %w", newRoot, ErrNodeNotFound)
	}
	a.reroot(newRoot)
	return nil
}

// reroot is Reroot for a node known to be in the arbor.
func (a *Arbor) reroot(newRoot NodeID) {
	if newRoot == a.root {
		return
	}

	path := []NodeID{newRoot}
	paren, ok := a.edges[newRoot]
	for ok {
		delete(a.edges, path[len(path)-1])
		path = append(path, paren)
		paren, ok = a.edges[paren]
	}
	a.AddPath(path)
}

// Clone returns an independent copy: mutating either arbor never affects the
// other.
func (a *Arbor) Clone() *Arbor {
	edges := maps.Clone(a.edges)
	if edges == nil {
		edges = make(map[NodeID]NodeID)
	}
	return &Arbor{root: a.root, hasRoot: a.hasRoot, edges: edges}
}

func sortedKeys[V any](m map[NodeID]V) []NodeID {
	return slices.Sorted(maps.Keys(m))
}
