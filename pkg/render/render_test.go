package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/arbor/pkg/arbor"
)

func testArbor(t *testing.T) *arbor.Arbor {
	t.Helper()
	a, err := arbor.FromEdges([]arbor.Edge{
		{Child: 2, Parent: 1}, {Child: 3, Parent: 2}, {Child: 4, Parent: 3},
		{Child: 5, Parent: 2}, {Child: 6, Parent: 5},
	})
	if err != nil {
		t.Fatalf("FromEdges() error: %v", err)
	}
	return a
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testArbor(t), Options{})
	if !strings.HasPrefix(dot, "digraph arbor {") {
		t.Errorf("ToDOT() should start with digraph header, got %q", dot[:20])
	}
	for _, edge := range []string{"n1 -> n2;", "n2 -> n3;", "n3 -> n4;", "n2 -> n5;", "n5 -> n6;"} {
		if !strings.Contains(dot, edge) {
			t.Errorf("ToDOT() missing edge %q", edge)
		}
	}
	if got := strings.Count(dot, "->"); got != 5 {
		t.Errorf("edge count = %d, want 5", got)
	}
}

func TestToDOT_Deterministic(t *testing.T) {
	a := testArbor(t)
	opts := Options{Values: map[arbor.NodeID]float64{1: 0, 4: 2, 6: 1}, Labels: true}
	if ToDOT(a, opts) != ToDOT(a.Clone(), opts) {
		t.Error("ToDOT() output differs between equal arbors")
	}
}

func TestToDOT_Topological(t *testing.T) {
	dot := ToDOT(testArbor(t), Options{Topological: true})
	if strings.Contains(dot, "n3 ") {
		t.Error("topological diagram should omit slab node 3")
	}
	if !strings.Contains(dot, "n2 -> n4;") {
		t.Error("topological diagram should connect branch node 2 to end 4")
	}
}

func TestToDOT_ValuesAndHighlight(t *testing.T) {
	dot := ToDOT(testArbor(t), Options{
		Values:    map[arbor.NodeID]float64{4: 0, 6: 10},
		Metric:    "flow",
		Highlight: []arbor.NodeID{6},
	})
	if !strings.Contains(dot, `n4 [fillcolor="#313695"]`) {
		t.Error("lowest value should use the first palette color")
	}
	if !strings.Contains(dot, `n6 [fillcolor="#a50026", width=0.35`) {
		t.Error("highest highlighted value should use the last palette color and be enlarged")
	}
	if !strings.Contains(dot, `n1 [fillcolor="#bbbbbb"]`) {
		t.Error("nodes without value should be grey")
	}
	if !strings.Contains(dot, `label="flow"`) {
		t.Error("metric should appear as graph label")
	}
}

func TestColorFor(t *testing.T) {
	tests := []struct {
		v, lo, hi float64
		want      string
	}{
		{0, 0, 1, "#313695"},
		{1, 0, 1, "#a50026"},
		{0.5, 0, 1, "#fee090"},
		{5, 5, 5, "#313695"},
		{-3, 0, 1, "#313695"},
	}
	for _, tt := range tests {
		if got := colorFor(tt.v, tt.lo, tt.hi); got != tt.want {
			t.Errorf("colorFor(%v, %v, %v) = %s, want %s", tt.v, tt.lo, tt.hi, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00"><g/></svg>`)
	got := string(normalizeViewBox(in))
	if !strings.Contains(got, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", got)
	}
	if plain := []byte("<svg><g/></svg>"); string(normalizeViewBox(plain)) != string(plain) {
		t.Error("normalizeViewBox() should leave svg without viewBox unchanged")
	}
}

func TestRender_DOT(t *testing.T) {
	out, err := Render(context.Background(), testArbor(t), Options{}, FormatDOT)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.Contains(string(out), "digraph arbor") {
		t.Error("Render(dot) should return DOT source")
	}
	if _, err := Render(context.Background(), testArbor(t), Options{}, "png"); err == nil {
		t.Error("Render(png) should fail")
	}
}
