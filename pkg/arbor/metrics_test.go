package arbor

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestBetweennessCentrality(t *testing.T) {
	a := newFixture(t)
	want := map[NodeID]float64{
		1: 0, 2: 14, 3: 6, 4: 0, 5: 14, 6: 0, 7: 6, 8: 0,
	}
	if diff := cmp.Diff(want, a.BetweennessCentrality(false)); diff != "" {
		t.Errorf("BetweennessCentrality(false) mismatch (-want +got):\n%s", diff)
	}

	norm := a.BetweennessCentrality(true)
	if got := norm[5]; math.Abs(got-14.0/21.0) > 1e-12 {
		t.Errorf("normalized centrality[5] = %v, want %v", got, 14.0/21.0)
	}
}

func TestBetweennessCentrality_MatchesBruteForce(t *testing.T) {
	a := newFixture(t)
	a.AddPath([]NodeID{3, 30, 31})
	a.AddPath([]NodeID{30, 32})
	a.AddPath([]NodeID{30, 33})

	got := a.BetweennessCentrality(false)
	n := a.CountNodes()
	succ := a.AllSuccessors()
	root, _ := a.Root()
	for _, node := range a.Nodes() {
		if node == root {
			continue
		}
		// Components after removing node: one per child subtree plus the rest.
		var sides []int
		rest := n - 1
		for _, c := range succ[node] {
			sub, _ := a.SubArbor(c)
			sides = append(sides, sub.CountNodes())
			rest -= sub.CountNodes()
		}
		sides = append(sides, rest)
		paths := 0
		for i := range sides {
			for k := i + 1; k < len(sides); k++ {
				paths += sides[i] * sides[k]
			}
		}
		if got[node] != float64(paths) {
			t.Errorf("centrality[%d] = %v, want %d", node, got[node], paths)
		}
	}
}

func TestBetweennessCentrality_Small(t *testing.T) {
	single := NewSingle(1).BetweennessCentrality(true)
	if diff := cmp.Diff(map[NodeID]float64{1: 0}, single); diff != "" {
		t.Errorf("single node mismatch (-want +got):\n%s", diff)
	}

	pair := New()
	pair.AddPath([]NodeID{1, 2})
	if diff := cmp.Diff(map[NodeID]float64{1: 0, 2: 0}, pair.BetweennessCentrality(true)); diff != "" {
		t.Errorf("two nodes mismatch (-want +got):\n%s", diff)
	}
}

func TestBetweennessCentrality_Path(t *testing.T) {
	a := New()
	a.AddPath([]NodeID{1, 2, 3, 4, 5, 6, 7})
	want := map[NodeID]float64{1: 0, 2: 5, 3: 8, 4: 9, 5: 8, 6: 5, 7: 0}
	if diff := cmp.Diff(want, a.BetweennessCentrality(false)); diff != "" {
		t.Errorf("BetweennessCentrality(false) mismatch (-want +got):\n%s", diff)
	}

	for _, n := range []int{4, 5, 8, 11} {
		path := make([]NodeID, n)
		for i := range path {
			path[i] = NodeID(i + 1)
		}
		a := New()
		a.AddPath(path)
		got := a.BetweennessCentrality(false)
		for i := 1; i <= n; i++ {
			if mirror := n + 1 - i; got[NodeID(i)] != got[NodeID(mirror)] {
				t.Errorf("n=%d: centrality[%d] = %v, centrality[%d] = %v, want equal",
					n, i, got[NodeID(i)], mirror, got[NodeID(mirror)])
			}
			if i <= (n+1)/2 && i > 1 && got[NodeID(i)] <= got[NodeID(i-1)] {
				t.Errorf("n=%d: centrality[%d] = %v, not above centrality[%d] = %v",
					n, i, got[NodeID(i)], i-1, got[NodeID(i-1)])
			}
		}
	}
}

func TestBetweennessCentrality_Star(t *testing.T) {
	a := New()
	for leaf := NodeID(2); leaf <= 6; leaf++ {
		a.AddPath([]NodeID{1, leaf})
	}
	for _, normalized := range []bool{false, true} {
		for node, v := range a.BetweennessCentrality(normalized) {
			if v != 0 {
				t.Errorf("normalized=%v: centrality[%d] = %v, want 0", normalized, node, v)
			}
		}
	}
}

func TestSlabCentrality(t *testing.T) {
	a := newFixture(t)
	want := map[NodeID]float64{
		1: 0, 2: 3.5, 3: 3.5, 4: 3.5, 5: 7, 6: 3.5, 7: 3.5, 8: 3.5,
	}
	if diff := cmp.Diff(want, a.SlabCentrality(false)); diff != "" {
		t.Errorf("SlabCentrality(false) mismatch (-want +got):\n%s", diff)
	}
}

func TestDownstreamAmount(t *testing.T) {
	a := newFixture(t)
	one := func(NodeID, NodeID) float64 { return 1 }

	want := map[NodeID]float64{1: 7, 2: 6, 3: 1, 4: 0, 5: 3, 6: 0, 7: 1, 8: 0}
	got := a.DownstreamAmount(one, false)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DownstreamAmount() mismatch (-want +got):\n%s", diff)
	}
	if root, _ := a.Root(); got[root] != float64(a.CountNodes()-1) {
		t.Errorf("root amount = %v, want CountNodes()-1 = %d", got[root], a.CountNodes()-1)
	}

	norm := a.DownstreamAmount(one, true)
	if norm[1] != 1 {
		t.Errorf("normalized root = %v, want 1", norm[1])
	}
	if math.Abs(norm[5]-3.0/7.0) > 1e-12 {
		t.Errorf("normalized [5] = %v, want %v", norm[5], 3.0/7.0)
	}
}

func TestDownstreamAmount_UsesEachEdge(t *testing.T) {
	a := newFixture(t)
	pos := gridPositions()
	pos[8] = Point{1, 5, 0} // edge 8-7 is 3 long

	cable := a.DownstreamAmount(func(parent, child NodeID) float64 {
		return pos[parent].DistanceTo(pos[child])
	}, false)
	if cable[7] != 3 {
		t.Errorf("cable[7] = %v, want 3", cable[7])
	}
	if cable[1] != a.CableLength(pos) {
		t.Errorf("cable[1] = %v, want CableLength() = %v", cable[1], a.CableLength(pos))
	}
}

func TestStrahlerAnalysis(t *testing.T) {
	a := newFixture(t)
	want := map[NodeID]int{1: 2, 2: 2, 3: 1, 4: 1, 5: 2, 6: 1, 7: 1, 8: 1}
	if diff := cmp.Diff(want, a.StrahlerAnalysis()); diff != "" {
		t.Errorf("StrahlerAnalysis() mismatch (-want +got):\n%s", diff)
	}
}

func TestStrahlerAnalysis_RootWithTwoLeaves(t *testing.T) {
	a, err := FromEdges([]Edge{{Child: 2, Parent: 1}, {Child: 3, Parent: 1}})
	if err != nil {
		t.Fatalf("FromEdges() error: %v", err)
	}
	got := a.StrahlerAnalysis()
	if got[1] != 2 || got[2] != 1 || got[3] != 1 {
		t.Errorf("StrahlerAnalysis() = %v, want root 2 and leaves 1", got)
	}
}

func straightPath(n int) (*Arbor, map[NodeID]Point) {
	a := New()
	path := make([]NodeID, n)
	pos := make(map[NodeID]Point, n)
	for i := range n {
		path[i] = NodeID(i)
		pos[NodeID(i)] = Point{X: float64(i)}
	}
	a.AddPath(path)
	return a, pos
}

func TestSholl_StraightPath(t *testing.T) {
	a, pos := straightPath(11) // length 10
	center := Point{}
	dist := func(n NodeID) float64 { return center.DistanceTo(pos[n]) }

	tests := []struct {
		increment float64
		wantBins  int
	}{
		{3, 4},
		{2, 5},
		{1, 10},
		{4, 3},
	}
	for _, tt := range tests {
		got, err := a.Sholl(tt.increment, dist)
		if err != nil {
			t.Fatalf("Sholl(%v) error: %v", tt.increment, err)
		}
		if len(got.Radius) != tt.wantBins || len(got.Crossings) != tt.wantBins {
			t.Errorf("Sholl(%v) bins = %d, want %d", tt.increment, len(got.Crossings), tt.wantBins)
			continue
		}
		for k, c := range got.Crossings {
			if c != 1 {
				t.Errorf("Sholl(%v) crossings[%d] = %d, want 1", tt.increment, k, c)
			}
			if got.Radius[k] != float64(k)*tt.increment {
				t.Errorf("Sholl(%v) radius[%d] = %v, want %v", tt.increment, k, got.Radius[k], float64(k)*tt.increment)
			}
		}
	}
}

func TestSholl_Branching(t *testing.T) {
	a := newFixture(t)
	pos := gridPositions()
	root := pos[1]
	got, err := a.Sholl(1, func(n NodeID) float64 { return root.DistanceTo(pos[n]) })
	if err != nil {
		t.Fatalf("Sholl() error: %v", err)
	}
	// Shell 1 is crossed by 2-3 and 2-5; node 2 lies exactly on it.
	if got.Crossings[0] != 1 {
		t.Errorf("crossings[0] = %d, want 1", got.Crossings[0])
	}
	if got.Crossings[1] != 2 {
		t.Errorf("crossings[1] = %d, want 2", got.Crossings[1])
	}
}

func TestSholl_InvalidIncrement(t *testing.T) {
	a, pos := straightPath(3)
	for _, inc := range []float64{0, -1, math.NaN()} {
		_, err := a.Sholl(inc, func(n NodeID) float64 { return pos[n].X })
		if !errors.Is(err, ErrInvalidIncrement) {
			t.Errorf("Sholl(%v) error = %v, want ErrInvalidIncrement", inc, err)
		}
	}
}

func TestRadialDensity(t *testing.T) {
	a, _ := straightPath(3)
	pos := map[NodeID]Point{0: {X: 0}, 2: {X: 2.5}}

	got, err := a.RadialDensity(Point{}, 1, pos, func(NodeID) float64 { return 1 })
	if err != nil {
		t.Fatalf("RadialDensity() error: %v", err)
	}
	want := DensityProfile{Bins: []float64{0, 1, 2}, Counts: []float64{1, 0, 1}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("RadialDensity() mismatch (-want +got):\n%s", diff)
	}

	if _, err := a.RadialDensity(Point{}, 0, pos, nil); !errors.Is(err, ErrInvalidIncrement) {
		t.Errorf("RadialDensity(0) error = %v, want ErrInvalidIncrement", err)
	}
}

// edgeFlow counts input to output paths crossing the edge from node to its
// parent by summing synapses below node directly.
func edgeFlow(t *testing.T, a *Arbor, node NodeID, outputs, inputs map[NodeID]int) float64 {
	t.Helper()
	sub, err := a.SubArbor(node)
	if err != nil {
		t.Fatalf("SubArbor(%d) error: %v", node, err)
	}
	var in, out int
	for _, n := range sub.Nodes() {
		in += inputs[n]
		out += outputs[n]
	}
	ti, to := sumCounts(inputs), sumCounts(outputs)
	return float64(in*(to-out)+out*(ti-in)) / float64(to)
}

func TestFlowCentrality(t *testing.T) {
	a := newFixture(t)
	inputs := map[NodeID]int{6: 1, 4: 1, 3: 2}
	outputs := map[NodeID]int{8: 2, 6: 1}

	got, ok := a.FlowCentrality(outputs, inputs)
	if !ok {
		t.Fatal("FlowCentrality() reported not computable")
	}
	if len(got) != a.CountNodes() {
		t.Errorf("len(FlowCentrality()) = %d, want %d", len(got), a.CountNodes())
	}
	for _, node := range a.Nodes() {
		if node == 1 {
			continue
		}
		if want := edgeFlow(t, a, node, outputs, inputs); math.Abs(got[node]-want) > 1e-12 {
			t.Errorf("centrality[%d] = %v, want %v", node, got[node], want)
		}
	}
	if got[1] != 0 {
		t.Errorf("centrality[root] = %v, want 0", got[1])
	}
}

func TestFlowCentrality_BranchingRoot(t *testing.T) {
	a, err := FromEdges([]Edge{
		{Child: 2, Parent: 1},
		{Child: 3, Parent: 1},
		{Child: 4, Parent: 3},
	})
	if err != nil {
		t.Fatalf("FromEdges() error: %v", err)
	}
	got, ok := a.FlowCentrality(map[NodeID]int{2: 1}, map[NodeID]int{4: 1})
	if !ok {
		t.Fatal("FlowCentrality() reported not computable")
	}
	want := map[NodeID]float64{1: 1, 2: 0, 3: 1, 4: 1}
	if diff := cmp.Diff(want, got, approx); diff != "" {
		t.Errorf("FlowCentrality() mismatch (-want +got):\n%s", diff)
	}
	if root, _ := a.Root(); root != 1 {
		t.Errorf("FlowCentrality() mutated the receiver: Root() = %d", root)
	}
}

func TestFlowCentrality_NotComputable(t *testing.T) {
	a := newFixture(t)
	if got, ok := a.FlowCentrality(map[NodeID]int{8: 1}, map[NodeID]int{}); ok || got != nil {
		t.Errorf("FlowCentrality() without inputs = %v, %v, want nil, false", got, ok)
	}
	if got, ok := a.FlowCentrality(nil, map[NodeID]int{4: 3}); ok || got != nil {
		t.Errorf("FlowCentrality() without outputs = %v, %v, want nil, false", got, ok)
	}
}

func TestMetrics_Idempotent(t *testing.T) {
	a := newFixture(t)
	if diff := cmp.Diff(a.BetweennessCentrality(true), a.BetweennessCentrality(true)); diff != "" {
		t.Errorf("BetweennessCentrality not idempotent:\n%s", diff)
	}
	if diff := cmp.Diff(a.Partition(), a.Partition()); diff != "" {
		t.Errorf("Partition not idempotent:\n%s", diff)
	}
	if diff := cmp.Diff(a.StrahlerAnalysis(), a.StrahlerAnalysis()); diff != "" {
		t.Errorf("StrahlerAnalysis not idempotent:\n%s", diff)
	}
}
