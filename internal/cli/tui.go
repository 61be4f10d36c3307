package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/arbor/pkg/analysis"
	"github.com/matzehuels/arbor/pkg/arbor"
	"github.com/matzehuels/arbor/pkg/skeleton"
)

var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
	cursorStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

// Node kinds shown in the inspector.
const (
	kindRoot   = "root"
	kindBranch = "branch"
	kindEnd    = "end"
	kindSlab   = "slab"
)

// NodeRow is one node of the inspector table.
type NodeRow struct {
	ID          arbor.NodeID
	Kind        string
	Strahler    int
	Betweenness float64
	Downstream  float64
	Flow        float64
	Inputs      int
	Outputs     int
}

// nodeColumns are the sortable columns, in display order.
var nodeColumns = []string{"Node", "Kind", "Strahler", "Betweenness", "Downstream", "Flow", "In", "Out"}

// buildNodeRows joins the skeleton with the per-node values of report.
func buildNodeRows(s *skeleton.Skeleton, r *analysis.Report) []NodeRow {
	be := s.Arbor.FindBranchAndEndNodes()
	kinds := make(map[arbor.NodeID]string, len(be.Ends)+len(be.Branches))
	for _, n := range be.Ends {
		kinds[n] = kindEnd
	}
	for _, n := range be.Branches {
		kinds[n] = kindBranch
	}
	root, _ := s.Arbor.Root()

	var flow map[arbor.NodeID]float64
	if r.Flow != nil {
		flow = r.Flow.Centrality
	}
	nodes := s.Arbor.Nodes()
	rows := make([]NodeRow, 0, len(nodes))
	for _, n := range nodes {
		kind, ok := kinds[n]
		if n == root {
			kind = kindRoot
		} else if !ok {
			kind = kindSlab
		}
		rows = append(rows, NodeRow{
			ID:          n,
			Kind:        kind,
			Strahler:    r.Strahler[n],
			Betweenness: r.Betweenness[n],
			Downstream:  r.DownstreamCable[n],
			Flow:        flow[n],
			Inputs:      s.Inputs[n],
			Outputs:     s.Outputs[n],
		})
	}
	return rows
}

// =============================================================================
// NodeTableModel - interactive node inspector
// =============================================================================

// NodeTableModel is the bubbletea model of the inspect command: a scrolling
// table of nodes that can be sorted by any column.
type NodeTableModel struct {
	Title    string
	Rows     []NodeRow
	Cursor   int
	Offset   int
	Height   int
	SortCol  int
	Desc     bool
	Selected *NodeRow
}

// NewNodeTableModel creates an inspector sorted by node ID.
func NewNodeTableModel(title string, rows []NodeRow) NodeTableModel {
	m := NodeTableModel{Title: title, Rows: rows, Height: 15}
	m.sort()
	return m
}

func (m NodeTableModel) Init() tea.Cmd {
	return nil
}

func (m NodeTableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.move(-1)
		case "down", "j":
			m.move(1)
		case "pgup":
			m.move(-m.Height)
		case "pgdown", " ":
			m.move(m.Height)
		case "g", "home":
			m.move(-len(m.Rows))
		case "G", "end":
			m.move(len(m.Rows))
		case "s", "right", "l":
			m.SortCol = (m.SortCol + 1) % len(nodeColumns)
			m.sort()
		case "left", "h":
			m.SortCol = (m.SortCol + len(nodeColumns) - 1) % len(nodeColumns)
			m.sort()
		case "r":
			m.Desc = !m.Desc
			m.sort()
		case "enter":
			if len(m.Rows) > 0 {
				row := m.Rows[m.Cursor]
				m.Selected = &row
				return m, tea.Quit
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
		m.move(0)
	}
	return m, nil
}

// move shifts the cursor by delta rows and keeps it visible.
func (m *NodeTableModel) move(delta int) {
	if len(m.Rows) == 0 {
		return
	}
	m.Cursor = min(max(m.Cursor+delta, 0), len(m.Rows)-1)
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// sort orders rows by the sort column, breaking ties by node ID, and moves
// the cursor to the top.
func (m *NodeTableModel) sort() {
	col := m.SortCol
	slices.SortStableFunc(m.Rows, func(a, b NodeRow) int {
		c := compareColumn(a, b, col)
		if m.Desc {
			c = -c
		}
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		return c
	})
	m.Cursor, m.Offset = 0, 0
}

func compareColumn(a, b NodeRow, col int) int {
	switch col {
	case 1:
		return cmp.Compare(a.Kind, b.Kind)
	case 2:
		return cmp.Compare(a.Strahler, b.Strahler)
	case 3:
		return cmp.Compare(a.Betweenness, b.Betweenness)
	case 4:
		return cmp.Compare(a.Downstream, b.Downstream)
	case 5:
		return cmp.Compare(a.Flow, b.Flow)
	case 6:
		return cmp.Compare(a.Inputs, b.Inputs)
	case 7:
		return cmp.Compare(a.Outputs, b.Outputs)
	}
	return cmp.Compare(a.ID, b.ID)
}

func (m NodeTableModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.Title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ←/→ sort column  r reverse  ⏎ select  q quit"))
	b.WriteString("\n\n")

	headers := slices.Clone(nodeColumns)
	arrow := "▲"
	if m.Desc {
		arrow = "▼"
	}
	headers[m.SortCol] += " " + arrow

	end := min(m.Offset+m.Height, len(m.Rows))
	rows := make([][]string, 0, end-m.Offset)
	for _, r := range m.Rows[m.Offset:end] {
		rows = append(rows, []string{
			strconv.FormatInt(int64(r.ID), 10),
			r.Kind,
			strconv.Itoa(r.Strahler),
			formatNumber(r.Betweenness),
			formatNumber(r.Downstream),
			formatNumber(r.Flow),
			strconv.Itoa(r.Inputs),
			strconv.Itoa(r.Outputs),
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			base := lipgloss.NewStyle().Padding(0, 1)
			if row == -1 {
				return styleHeader.Padding(0, 1)
			}
			if m.Offset+row == m.Cursor {
				return cursorStyle.Padding(0, 1)
			}
			if col >= 2 {
				return base.Align(lipgloss.Right)
			}
			return base
		})

	b.WriteString(t.Render())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Rows)), len(m.Rows))))
	return b.String()
}
