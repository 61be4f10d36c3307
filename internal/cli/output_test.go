package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/arbor/pkg/analysis"
	pkgio "github.com/matzehuels/arbor/pkg/io"
)

func testReport(t *testing.T) *analysis.Report {
	t.Helper()
	s, err := pkgio.ReadJSON(strings.NewReader(testNeuron))
	if err != nil {
		t.Fatalf("ReadJSON() error: %v", err)
	}
	r, err := analysis.Compute(context.Background(), s, analysis.Options{ShollIncrement: 1})
	if err != nil {
		t.Fatalf("Compute() error: %v", err)
	}
	return r
}

func TestWriteReport_Table(t *testing.T) {
	var buf bytes.Buffer
	if err := writeReport(&buf, testReport(t), outputTable); err != nil {
		t.Fatalf("writeReport() error: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Skeleton 5", "cli neuron", "End points", "Putative axon", "Asymmetry", "Crossings"} {
		if !strings.Contains(out, want) {
			t.Errorf("table output does not contain %q:\n%s", want, out)
		}
	}
}

func TestWriteReport_Invalid(t *testing.T) {
	if err := writeReport(&bytes.Buffer{}, testReport(t), "xml"); err == nil {
		t.Error("writeReport() should reject unknown formats")
	}
}

func TestBuildNodeRows(t *testing.T) {
	s, err := pkgio.ReadJSON(strings.NewReader(testNeuron))
	if err != nil {
		t.Fatal(err)
	}
	r, err := analysis.Compute(context.Background(), s, analysis.Options{Metrics: inspectMetrics})
	if err != nil {
		t.Fatal(err)
	}
	rows := buildNodeRows(s, r)
	if len(rows) != 5 {
		t.Fatalf("len(rows) = %d, want 5", len(rows))
	}
	kinds := make(map[string]int)
	for _, row := range rows {
		kinds[row.Kind]++
	}
	if kinds[kindRoot] != 1 || kinds[kindBranch] != 1 || kinds[kindEnd] != 2 || kinds[kindSlab] != 1 {
		t.Errorf("kinds = %v, want 1 root, 1 branch, 2 ends, 1 slab", kinds)
	}
}

func TestFormatNumber(t *testing.T) {
	tests := map[float64]string{
		0:       "0",
		1.5:     "1.5",
		2.0:     "2",
		1.23456: "1.235",
		-0.25:   "-0.25",
	}
	for in, want := range tests {
		if got := formatNumber(in); got != want {
			t.Errorf("formatNumber(%v) = %q, want %q", in, got, want)
		}
	}
}
