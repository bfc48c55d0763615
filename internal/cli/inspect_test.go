package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/paulmach/orb"

	"github.com/waymerge/waymerge/pkg/graph"
)

// triangleGraph builds a three-edge loop with distinct lengths so the sort
// order is unambiguous.
func triangleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	nodes := []graph.Node{
		{ID: 1, Point: orb.Point{11.34, 44.49}},
		{ID: 2, Point: orb.Point{11.35, 44.49}},
		{ID: 3, Point: orb.Point{11.36, 44.50}},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%d) failed: %v", n.ID, err)
		}
	}
	edges := []graph.Edge{
		{From: 1, To: 2, Length: 500, Name: "Via Roma", Lanes: 2},
		{From: 2, To: 3, Length: 1500},
		{From: 3, To: 1, Length: 800},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%d->%d) failed: %v", e.From, e.To, err)
		}
	}
	return g
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewInspectModelSortsByLength(t *testing.T) {
	m := newInspectModel("net.json", triangleGraph(t))

	if len(m.rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(m.rows))
	}
	wantLengths := []float64{1500, 800, 500}
	for i, want := range wantLengths {
		if m.rows[i].length != want {
			t.Errorf("rows[%d].length = %v, want %v", i, m.rows[i].length, want)
		}
	}
	if m.total != 2800 {
		t.Errorf("total = %v, want 2800", m.total)
	}
}

func TestInspectModelNavigation(t *testing.T) {
	m := newInspectModel("net.json", triangleGraph(t))

	next, _ := m.Update(keyMsg("j"))
	m = next.(inspectModel)
	if m.cursor != 1 {
		t.Errorf("cursor after j = %d, want 1", m.cursor)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(inspectModel)
	if m.cursor != 0 {
		t.Errorf("cursor after up = %d, want 0", m.cursor)
	}

	next, _ = m.Update(keyMsg("G"))
	m = next.(inspectModel)
	if m.cursor != 2 {
		t.Errorf("cursor after G = %d, want 2", m.cursor)
	}

	next, _ = m.Update(keyMsg("g"))
	m = next.(inspectModel)
	if m.cursor != 0 || m.offset != 0 {
		t.Errorf("after g cursor = %d offset = %d, want 0, 0", m.cursor, m.offset)
	}

	// Cursor stays in bounds at the edges.
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = next.(inspectModel)
	if m.cursor != 0 {
		t.Errorf("cursor after up at top = %d, want 0", m.cursor)
	}
}

func TestInspectModelScrolls(t *testing.T) {
	m := inspectModel{rows: make([]edgeRow, 40), height: 10}

	for range 12 {
		next, _ := m.Update(keyMsg("j"))
		m = next.(inspectModel)
	}
	if m.cursor != 12 {
		t.Errorf("cursor = %d, want 12", m.cursor)
	}
	if m.offset != 3 {
		t.Errorf("offset = %d, want 3", m.offset)
	}

	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 20})
	m = next.(inspectModel)
	if m.height != 12 {
		t.Errorf("height = %d, want 12", m.height)
	}
}

func TestInspectModelQuitKeys(t *testing.T) {
	m := newInspectModel("net.json", triangleGraph(t))

	for _, key := range []string{"q", "esc", "ctrl+c"} {
		var msg tea.Msg
		switch key {
		case "q":
			msg = keyMsg("q")
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "ctrl+c":
			msg = tea.KeyMsg{Type: tea.KeyCtrlC}
		}
		_, cmd := m.Update(msg)
		if cmd == nil {
			t.Fatalf("%s should quit", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s should produce a quit message", key)
		}
	}
}

func TestInspectModelView(t *testing.T) {
	m := newInspectModel("net.json", triangleGraph(t))
	view := m.View()

	for _, want := range []string{"From", "To", "Length", "Lanes", "Name", "Via Roma", "1.50 km", "[1/3]", "▸"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q", want)
		}
	}
}
