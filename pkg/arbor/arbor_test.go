package arbor

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// newFixture builds the tree used across the package tests:
//
//	    1
//	    |
//	    2
//	   / \
//	  3   5
//	  |  / \
//	  4 6   7
//	        |
//	        8
func newFixture(t *testing.T) *Arbor {
	t.Helper()
	a, err := FromEdges([]Edge{
		{Child: 2, Parent: 1},
		{Child: 3, Parent: 2},
		{Child: 4, Parent: 3},
		{Child: 5, Parent: 2},
		{Child: 6, Parent: 5},
		{Child: 7, Parent: 5},
		{Child: 8, Parent: 7},
	})
	if err != nil {
		t.Fatalf("FromEdges() error: %v", err)
	}
	return a
}

// gridPositions places the fixture nodes on a grid with unit-length edges.
func gridPositions() map[NodeID]Point {
	return map[NodeID]Point{
		1: {0, 0, 0},
		2: {0, 1, 0},
		3: {0, 2, 0},
		4: {0, 3, 0},
		5: {1, 1, 0},
		6: {2, 1, 0},
		7: {1, 2, 0},
		8: {1, 3, 0},
	}
}

func TestFromEdges_Fixture(t *testing.T) {
	a := newFixture(t)

	root, ok := a.Root()
	if !ok || root != 1 {
		t.Errorf("Root() = %d, %v, want 1, true", root, ok)
	}
	if got := a.CountNodes(); got != 8 {
		t.Errorf("CountNodes() = %d, want 8", got)
	}
	if got := a.EdgeCount(); got != 7 {
		t.Errorf("EdgeCount() = %d, want 7", got)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
	if diff := cmp.Diff([]NodeID{1, 2, 3, 4, 5, 6, 7, 8}, a.Nodes()); diff != "" {
		t.Errorf("Nodes() mismatch (-want +got):\n%s", diff)
	}
}

func TestAddEdges_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		edges []Edge
	}{
		{"Cycle", []Edge{{Child: 1, Parent: 2}, {Child: 2, Parent: 1}}},
		{"SelfParent", []Edge{{Child: 1, Parent: 1}}},
		{"Forest", []Edge{{Child: 2, Parent: 1}, {Child: 4, Parent: 3}}},
		{"CycleBesideRoot", []Edge{{Child: 2, Parent: 1}, {Child: 3, Parent: 4}, {Child: 4, Parent: 3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromEdges(tt.edges)
			if !errors.Is(err, ErrMalformedTree) {
				t.Errorf("FromEdges() error = %v, want ErrMalformedTree", err)
			}
		})
	}
}

func TestAddEdges_LeavesArborUnchangedOnError(t *testing.T) {
	a := newFixture(t)
	before := a.Edges()

	err := a.AddEdges([]Edge{{Child: 9, Parent: 10}})
	if !errors.Is(err, ErrMalformedTree) {
		t.Fatalf("AddEdges() error = %v, want ErrMalformedTree", err)
	}
	if diff := cmp.Diff(before, a.Edges()); diff != "" {
		t.Errorf("edges changed after failed AddEdges (-want +got):\n%s", diff)
	}
	if root, _ := a.Root(); root != 1 {
		t.Errorf("Root() = %d, want 1", root)
	}
}

func TestAddEdges_Incremental(t *testing.T) {
	a := New()
	if err := a.AddEdges([]Edge{{Child: 2, Parent: 1}}); err != nil {
		t.Fatalf("AddEdges() error: %v", err)
	}
	// A new root above the old one.
	if err := a.AddEdges([]Edge{{Child: 1, Parent: 0}}); err != nil {
		t.Fatalf("AddEdges() error: %v", err)
	}
	if root, _ := a.Root(); root != 0 {
		t.Errorf("Root() = %d, want 0", root)
	}
	if got := a.CountNodes(); got != 3 {
		t.Errorf("CountNodes() = %d, want 3", got)
	}
}

func TestAddPath(t *testing.T) {
	a := New()
	a.AddPath([]NodeID{1, 2, 3})
	a.AddPath([]NodeID{2, 4})

	if root, _ := a.Root(); root != 1 {
		t.Errorf("Root() = %d, want 1", root)
	}
	want := map[NodeID]NodeID{2: 1, 3: 2, 4: 2}
	if diff := cmp.Diff(want, a.Edges()); diff != "" {
		t.Errorf("Edges() mismatch (-want +got):\n%s", diff)
	}
}

func TestAddPath_DisjointLeavesTwoRoots(t *testing.T) {
	a := New()
	a.AddPath([]NodeID{7, 8})
	a.AddPath([]NodeID{1, 2})

	if err := a.Validate(); !errors.Is(err, ErrMalformedTree) {
		t.Errorf("Validate() error = %v, want ErrMalformedTree", err)
	}
}

func TestAddPathReversed(t *testing.T) {
	a := New()
	a.AddPathReversed([]NodeID{3, 2, 1})

	if root, _ := a.Root(); root != 1 {
		t.Errorf("Root() = %d, want 1", root)
	}
	want := map[NodeID]NodeID{3: 2, 2: 1}
	if diff := cmp.Diff(want, a.Edges()); diff != "" {
		t.Errorf("Edges() mismatch (-want +got):\n%s", diff)
	}
}

func TestFindRoot(t *testing.T) {
	a := newFixture(t)
	if root, ok := a.FindRoot(); !ok || root != 1 {
		t.Errorf("FindRoot() = %d, %v, want 1, true", root, ok)
	}
	if root, ok := NewSingle(7).FindRoot(); !ok || root != 7 {
		t.Errorf("FindRoot() single = %d, %v, want 7, true", root, ok)
	}
	if _, ok := New().FindRoot(); ok {
		t.Error("FindRoot() on empty arbor should report false")
	}
}

func TestReroot_Involution(t *testing.T) {
	a := newFixture(t)
	original := a.Edges()

	if err := a.Reroot(8); err != nil {
		t.Fatalf("Reroot(8) error: %v", err)
	}
	if root, _ := a.Root(); root != 8 {
		t.Errorf("Root() = %d, want 8", root)
	}
	if err := a.Validate(); err != nil {
		t.Errorf("Validate() after reroot: %v", err)
	}
	if p, _ := a.Parent(5); p != 7 {
		t.Errorf("Parent(5) = %d, want 7", p)
	}

	if err := a.Reroot(1); err != nil {
		t.Fatalf("Reroot(1) error: %v", err)
	}
	if diff := cmp.Diff(original, a.Edges()); diff != "" {
		t.Errorf("reroot round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestReroot_UnknownNode(t *testing.T) {
	a := newFixture(t)
	if err := a.Reroot(99); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("Reroot(99) error = %v, want ErrNodeNotFound", err)
	}
}

func TestClone_Isolation(t *testing.T) {
	a := newFixture(t)
	c := a.Clone()

	if err := c.Reroot(4); err != nil {
		t.Fatalf("Reroot() error: %v", err)
	}
	c.AddPath([]NodeID{8, 9})

	if root, _ := a.Root(); root != 1 {
		t.Errorf("original Root() = %d, want 1", root)
	}
	if a.Contains(9) {
		t.Error("original arbor should not contain node added to clone")
	}
	if got := a.EdgeCount(); got != 7 {
		t.Errorf("original EdgeCount() = %d, want 7", got)
	}
}

// randomTree builds a tree of n nodes with shuffled, non-contiguous IDs.
// Every node but the first gets a parent among the nodes before it.
func randomTree(t *testing.T, rng *rand.Rand, n int) (*Arbor, NodeID) {
	t.Helper()
	ids := make([]NodeID, n)
	for i, p := range rng.Perm(n) {
		ids[i] = NodeID(100 + 3*p)
	}
	edges := make([]Edge, 0, n-1)
	for i := 1; i < n; i++ {
		edges = append(edges, Edge{Child: ids[i], Parent: ids[rng.Intn(i)]})
	}
	rng.Shuffle(len(edges), func(i, k int) { edges[i], edges[k] = edges[k], edges[i] })

	a, err := FromEdges(edges)
	if err != nil {
		t.Fatalf("FromEdges() error: %v", err)
	}
	return a, ids[0]
}

func TestRandomTrees_RoundTrip(t *testing.T) {
	tests := []struct {
		seed int64
		n    int
	}{
		{1, 2},
		{2, 3},
		{3, 10},
		{4, 25},
		{5, 60},
		{6, 200},
	}
	for _, tt := range tests {
		rng := rand.New(rand.NewSource(tt.seed))
		for trial := range 20 {
			a, root := randomTree(t, rng, tt.n)
			original := a.Edges()

			if got, ok := a.FindRoot(); !ok || got != root {
				t.Fatalf("seed %d trial %d: FindRoot() = %d, %v, want %d", tt.seed, trial, got, ok, root)
			}
			if got := a.CountNodes(); got != tt.n {
				t.Errorf("seed %d trial %d: CountNodes() = %d, want %d", tt.seed, trial, got, tt.n)
			}

			seen := make(map[NodeID]int)
			for _, seq := range a.Partition() {
				for i := 0; i+1 < len(seq); i++ {
					if p, _ := a.Parent(seq[i]); p != seq[i+1] {
						t.Errorf("seed %d trial %d: pair %d->%d is not an edge", tt.seed, trial, seq[i], seq[i+1])
					}
					seen[seq[i]]++
				}
			}
			for child, count := range seen {
				if count != 1 {
					t.Errorf("seed %d trial %d: edge from %d covered %d times", tt.seed, trial, child, count)
				}
			}
			if len(seen) != a.EdgeCount() {
				t.Errorf("seed %d trial %d: partition covers %d edges, want %d", tt.seed, trial, len(seen), a.EdgeCount())
			}

			nodes := a.Nodes()
			other := nodes[rng.Intn(len(nodes))]
			c := a.Clone()
			if err := c.Reroot(other); err != nil {
				t.Fatalf("seed %d trial %d: Reroot(%d) error: %v", tt.seed, trial, other, err)
			}
			if err := c.Validate(); err != nil {
				t.Errorf("seed %d trial %d: Validate() after reroot: %v", tt.seed, trial, err)
			}
			if got, _ := c.FindRoot(); got != other {
				t.Errorf("seed %d trial %d: FindRoot() after reroot = %d, want %d", tt.seed, trial, got, other)
			}
			if diff := cmp.Diff(original, a.Edges()); diff != "" {
				t.Errorf("seed %d trial %d: clone reroot changed original (-want +got):\n%s", tt.seed, trial, diff)
			}

			if err := c.Reroot(root); err != nil {
				t.Fatalf("seed %d trial %d: Reroot(%d) error: %v", tt.seed, trial, root, err)
			}
			if diff := cmp.Diff(original, c.Edges()); diff != "" {
				t.Errorf("seed %d trial %d: reroot round trip mismatch (-want +got):\n%s", tt.seed, trial, diff)
			}
		}
	}
}
