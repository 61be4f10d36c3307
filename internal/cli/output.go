package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/arbor/pkg/analysis"
	"github.com/matzehuels/arbor/pkg/arbor"
)

// Report output formats.
const (
	outputJSON  = "json"
	outputYAML  = "yaml"
	outputTable = "table"
)

var validOutputs = map[string]bool{outputJSON: true, outputYAML: true, outputTable: true}

func validateOutput(format string) error {
	if !validOutputs[format] {
		return fmt.Errorf("invalid output format: %s (must be 'json', 'yaml' or 'table')", format)
	}
	return nil
}

// writeReport encodes r in the given output format.
func writeReport(w io.Writer, r *analysis.Report, format string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case outputYAML:
		return encodeYAML(w, r)
	case outputTable:
		_, err := io.WriteString(w, reportTables(r))
		return err
	}
	return validateOutput(format)
}

func encodeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// =============================================================================
// Tables
// =============================================================================

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			if col > 0 {
				return lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// reportTables renders the summary and every computed scalar section.
func reportTables(r *analysis.Report) string {
	var b strings.Builder

	title := fmt.Sprintf("Skeleton %d", r.SkeletonID)
	if r.Name != "" {
		title += " · " + r.Name
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")

	s := r.Summary
	summary := newTable("Measure", "Value").Rows(
		[]string{"Nodes", strconv.Itoa(s.Nodes)},
		[]string{"Branch points", strconv.Itoa(s.Branches)},
		[]string{"End points", strconv.Itoa(s.Ends)},
		[]string{"Inputs", strconv.Itoa(s.Inputs)},
		[]string{"Outputs", strconv.Itoa(s.Outputs)},
		[]string{"Cable", formatNumber(s.Cable)},
	)
	if s.SmoothCable > 0 {
		summary.Row("Smoothed cable", formatNumber(s.SmoothCable))
	}
	if s.MaxStrahler > 0 {
		summary.Row("Max Strahler", strconv.Itoa(s.MaxStrahler))
	}
	if s.Collapsed > 0 {
		summary.Row("Collapsed", strconv.Itoa(s.Collapsed))
	}
	if tc := r.TerminalCable; tc != nil {
		summary.Row("Terminal cable", formatNumber(tc.Cable))
		summary.Row("Terminal segments", strconv.Itoa(tc.Ends))
	}
	if f := r.Flow; f != nil {
		if f.Computable && f.PutativeAxon != nil {
			summary.Row("Putative axon", fmt.Sprintf("node %d", *f.PutativeAxon))
			summary.Row("Max flow", formatNumber(f.MaxFlow))
		} else {
			summary.Row("Flow", "not computable")
		}
	}
	b.WriteString(summary.Render())
	b.WriteString("\n")

	if a := r.Asymmetry; a != nil {
		t := newTable("Asymmetry", "Mean", "Std dev", "Branches")
		for _, row := range []struct {
			name  string
			stats arbor.AsymmetryStats
		}{{"ends", a.Ends}, {"cable", a.Cable}, {"load", a.Load}} {
			t.Row(row.name, formatNumber(row.stats.Mean), formatNumber(row.stats.StdDev), strconv.Itoa(row.stats.Branches))
		}
		b.WriteString(t.Render())
		b.WriteString("\n")
	}

	if p := r.Sholl; p != nil {
		b.WriteString(shollTable(p).Render())
		b.WriteString("\n")
	}
	return b.String()
}

func shollTable(p *arbor.ShollProfile) *table.Table {
	t := newTable("Radius", "Crossings")
	for i := range p.Radius {
		t.Row(formatNumber(p.Radius[i]), strconv.Itoa(p.Crossings[i]))
	}
	return t
}

// formatNumber prints at most three decimals and drops trailing zeros.
func formatNumber(f float64) string {
	s := strconv.FormatFloat(f, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
