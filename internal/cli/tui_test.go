package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/arbor/pkg/arbor"
)

func testRows() []NodeRow {
	return []NodeRow{
		{ID: 3, Kind: kindEnd, Strahler: 1, Flow: 0},
		{ID: 1, Kind: kindRoot, Strahler: 2, Flow: 1},
		{ID: 2, Kind: kindBranch, Strahler: 2, Flow: 2},
		{ID: 4, Kind: kindEnd, Strahler: 1, Flow: 1},
	}
}

func ids(rows []NodeRow) []arbor.NodeID {
	out := make([]arbor.NodeID, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func press(m NodeTableModel, keys ...string) NodeTableModel {
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(NodeTableModel)
	}
	return m
}

func TestNodeTableModel_SortByID(t *testing.T) {
	m := NewNodeTableModel("test", testRows())
	if diff := cmp.Diff([]arbor.NodeID{1, 2, 3, 4}, ids(m.Rows)); diff != "" {
		t.Errorf("initial order mismatch (-want +got):\n%s", diff)
	}
}

func TestNodeTableModel_SortColumns(t *testing.T) {
	m := NewNodeTableModel("test", testRows())

	// Node, Kind, Strahler: ties are broken by ID.
	m = press(m, "s", "s")
	if diff := cmp.Diff([]arbor.NodeID{3, 4, 1, 2}, ids(m.Rows)); diff != "" {
		t.Errorf("strahler order mismatch (-want +got):\n%s", diff)
	}

	// Reversing keeps ties in ID order.
	m = press(m, "r")
	if diff := cmp.Diff([]arbor.NodeID{1, 2, 3, 4}, ids(m.Rows)); diff != "" {
		t.Errorf("reversed order mismatch (-want +got):\n%s", diff)
	}

	// Wrap around backwards from Node to Out.
	m = press(m, "h", "h", "h")
	if m.SortCol != len(nodeColumns)-1 {
		t.Errorf("SortCol = %d, want %d", m.SortCol, len(nodeColumns)-1)
	}
}

func TestNodeTableModel_Navigation(t *testing.T) {
	m := NewNodeTableModel("test", testRows())
	m.Height = 2

	m = press(m, "down", "down", "down", "down")
	if m.Cursor != 3 {
		t.Errorf("Cursor = %d, want 3 (clamped)", m.Cursor)
	}
	if m.Offset != 2 {
		t.Errorf("Offset = %d, want 2 to keep the cursor visible", m.Offset)
	}

	m = press(m, "g")
	if m.Cursor != 0 || m.Offset != 0 {
		t.Errorf("after g: Cursor = %d, Offset = %d, want 0, 0", m.Cursor, m.Offset)
	}

	m = press(m, "down", "enter")
	if m.Selected == nil || m.Selected.ID != 2 {
		t.Errorf("Selected = %v, want node 2", m.Selected)
	}
}

func TestNodeTableModel_View(t *testing.T) {
	m := NewNodeTableModel("Skeleton 5", testRows())
	view := m.View()
	for _, want := range []string{"Skeleton 5", "Node ▲", "branch", "[1/4]"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() does not contain %q:\n%s", want, view)
		}
	}
}

func TestNodeTableModel_Empty(t *testing.T) {
	m := press(NewNodeTableModel("empty", nil), "down", "enter")
	if m.Selected != nil {
		t.Error("nothing should be selectable in an empty table")
	}
	_ = m.View()
}
