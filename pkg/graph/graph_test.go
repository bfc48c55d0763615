package graph

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

func TestAddNode(t *testing.T) {
	g := New()

	if err := g.AddNode(Node{ID: 1, Point: orb.Point{13.4, 52.5}}); err != nil {
		t.Fatalf("AddNode() error = %v", err)
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() = %d, want 1", g.NodeCount())
	}

	// Re-adding at the same coordinate is a no-op.
	if err := g.AddNode(Node{ID: 1, Point: orb.Point{13.4, 52.5}}); err != nil {
		t.Errorf("AddNode() same coordinate error = %v, want nil", err)
	}
	if g.NodeCount() != 1 {
		t.Errorf("NodeCount() after re-add = %d, want 1", g.NodeCount())
	}

	// Conflicting coordinate is rejected.
	err := g.AddNode(Node{ID: 1, Point: orb.Point{13.5, 52.5}})
	if !errors.Is(err, ErrDuplicateNode) {
		t.Errorf("AddNode() conflicting coordinate error = %v, want ErrDuplicateNode", err)
	}
}

func TestAddEdge(t *testing.T) {
	g := New()
	mustAddNode(t, g, 1, orb.Point{0, 0})
	mustAddNode(t, g, 2, orb.Point{1, 0})

	tests := []struct {
		name    string
		edge    Edge
		wantErr error
	}{
		{
			name: "valid edge",
			edge: Edge{From: 1, To: 2, Length: 100},
		},
		{
			name:    "unknown source",
			edge:    Edge{From: 9, To: 2, Length: 100},
			wantErr: ErrUnknownSourceNode,
		},
		{
			name:    "unknown target",
			edge:    Edge{From: 1, To: 9, Length: 100},
			wantErr: ErrUnknownTargetNode,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AddEdge(tt.edge)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAddEdgeMaterializesGeometry(t *testing.T) {
	g := New()
	mustAddNode(t, g, 1, orb.Point{0, 0})
	mustAddNode(t, g, 2, orb.Point{1, 1})
	mustAddEdge(t, g, Edge{From: 1, To: 2, Length: 100})

	e, ok := g.Edge(1, 2)
	if !ok {
		t.Fatal("Edge(1, 2) not found")
	}
	if len(e.Geometry) != 2 {
		t.Fatalf("len(Geometry) = %d, want 2", len(e.Geometry))
	}
	if e.Geometry[0] != (orb.Point{0, 0}) || e.Geometry[1] != (orb.Point{1, 1}) {
		t.Errorf("Geometry = %v, want straight segment from source to target", e.Geometry)
	}
}

func TestAddEdgeOverwrites(t *testing.T) {
	g := New()
	mustAddNode(t, g, 1, orb.Point{0, 0})
	mustAddNode(t, g, 2, orb.Point{1, 0})

	mustAddEdge(t, g, Edge{From: 1, To: 2, Name: "old", Lanes: 1, Length: 100})
	mustAddEdge(t, g, Edge{From: 1, To: 2, Name: "new", Lanes: 2, Length: 200})

	if g.EdgeCount() != 1 {
		t.Fatalf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	e, _ := g.Edge(1, 2)
	if e.Name != "new" || e.Lanes != 2 {
		t.Errorf("Edge(1, 2) = %q/%d lanes, want new/2", e.Name, e.Lanes)
	}

	// Adjacency must not duplicate on overwrite.
	if got := g.OutDegree(1); got != 1 {
		t.Errorf("OutDegree(1) = %d, want 1", got)
	}
	if got := g.InDegree(2); got != 1 {
		t.Errorf("InDegree(2) = %d, want 1", got)
	}
}

func TestAddEdgeStampsSeq(t *testing.T) {
	g := New()
	mustAddNode(t, g, 1, orb.Point{0, 0})
	mustAddNode(t, g, 2, orb.Point{1, 0})
	mustAddNode(t, g, 3, orb.Point{2, 0})

	mustAddEdge(t, g, Edge{From: 1, To: 2, Length: 100, Seq: 999})
	mustAddEdge(t, g, Edge{From: 2, To: 3, Length: 100})

	first, _ := g.Edge(1, 2)
	second, _ := g.Edge(2, 3)
	if first.Seq >= second.Seq {
		t.Errorf("Seq not monotonic: first = %d, second = %d", first.Seq, second.Seq)
	}
	if first.Seq == 999 {
		t.Error("caller-provided Seq should be overwritten")
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New()
	mustAddNode(t, g, 1, orb.Point{0, 0})
	mustAddNode(t, g, 2, orb.Point{1, 0})
	mustAddEdge(t, g, Edge{From: 1, To: 2, Length: 100})
	mustAddEdge(t, g, Edge{From: 2, To: 1, Length: 100})

	g.RemoveEdge(1, 2)

	if g.HasEdge(1, 2) {
		t.Error("HasEdge(1, 2) = true after removal")
	}
	if !g.HasEdge(2, 1) {
		t.Error("HasEdge(2, 1) = false, opposite direction should survive")
	}
	if got := g.OutDegree(1); got != 0 {
		t.Errorf("OutDegree(1) = %d, want 0", got)
	}

	// Removing a missing edge is a no-op.
	g.RemoveEdge(1, 2)
	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
}

func TestRemoveNodeCascades(t *testing.T) {
	// 1 ↔ 2 ↔ 3 with a self-loop on 2.
	g := New()
	mustAddNode(t, g, 1, orb.Point{0, 0})
	mustAddNode(t, g, 2, orb.Point{1, 0})
	mustAddNode(t, g, 3, orb.Point{2, 0})
	mustAddEdge(t, g, Edge{From: 1, To: 2, Length: 100})
	mustAddEdge(t, g, Edge{From: 2, To: 1, Length: 100})
	mustAddEdge(t, g, Edge{From: 2, To: 3, Length: 100})
	mustAddEdge(t, g, Edge{From: 3, To: 2, Length: 100})
	mustAddEdge(t, g, Edge{From: 2, To: 2, Length: 5})

	g.RemoveNode(2)

	if g.HasNode(2) {
		t.Error("HasNode(2) = true after removal")
	}
	if g.EdgeCount() != 0 {
		t.Errorf("EdgeCount() = %d, want 0 after cascade", g.EdgeCount())
	}
	if got := g.OutDegree(1); got != 0 {
		t.Errorf("OutDegree(1) = %d, want 0", got)
	}
	if got := g.InDegree(3); got != 0 {
		t.Errorf("InDegree(3) = %d, want 0", got)
	}

	// Removing a missing node is a no-op.
	g.RemoveNode(2)
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
}

func TestNeighbors(t *testing.T) {
	// Node 2 connects to 1 (two-way), 3 (outgoing only), and itself.
	g := New()
	mustAddNode(t, g, 1, orb.Point{0, 0})
	mustAddNode(t, g, 2, orb.Point{1, 0})
	mustAddNode(t, g, 3, orb.Point{2, 0})
	mustAddEdge(t, g, Edge{From: 1, To: 2, Length: 100})
	mustAddEdge(t, g, Edge{From: 2, To: 1, Length: 100})
	mustAddEdge(t, g, Edge{From: 2, To: 3, Length: 100})
	mustAddEdge(t, g, Edge{From: 2, To: 2, Length: 5})

	got := g.Neighbors(2)
	want := []NodeID{1, 3}
	if len(got) != len(want) {
		t.Fatalf("Neighbors(2) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Neighbors(2) = %v, want %v", got, want)
			break
		}
	}
}

func TestDegrees(t *testing.T) {
	g := New()
	mustAddNode(t, g, 1, orb.Point{0, 0})
	mustAddNode(t, g, 2, orb.Point{1, 0})
	mustAddNode(t, g, 3, orb.Point{2, 0})
	mustAddEdge(t, g, Edge{From: 1, To: 2, Length: 100})
	mustAddEdge(t, g, Edge{From: 2, To: 1, Length: 100})
	mustAddEdge(t, g, Edge{From: 2, To: 3, Length: 100})

	if got := g.InDegree(2); got != 1 {
		t.Errorf("InDegree(2) = %d, want 1", got)
	}
	if got := g.OutDegree(2); got != 2 {
		t.Errorf("OutDegree(2) = %d, want 2", got)
	}
	if got := g.InDegree(99); got != 0 {
		t.Errorf("InDegree(99) = %d, want 0", got)
	}
}

func TestNodeIDsSorted(t *testing.T) {
	g := New()
	for _, id := range []NodeID{42, 7, 19, 3} {
		mustAddNode(t, g, id, orb.Point{float64(id), 0})
	}

	got := g.NodeIDs()
	want := []NodeID{3, 7, 19, 42}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("NodeIDs() = %v, want %v", got, want)
		}
	}
}

func TestEdgesInsertionOrder(t *testing.T) {
	g := New()
	mustAddNode(t, g, 1, orb.Point{0, 0})
	mustAddNode(t, g, 2, orb.Point{1, 0})
	mustAddNode(t, g, 3, orb.Point{2, 0})
	mustAddEdge(t, g, Edge{From: 2, To: 3, Length: 100})
	mustAddEdge(t, g, Edge{From: 1, To: 2, Length: 100})

	edges := g.Edges()
	if len(edges) != 2 {
		t.Fatalf("len(Edges()) = %d, want 2", len(edges))
	}
	if edges[0].From != 2 || edges[1].From != 1 {
		t.Errorf("Edges() order = [%d->%d, %d->%d], want insertion order [2->3, 1->2]",
			edges[0].From, edges[0].To, edges[1].From, edges[1].To)
	}
}

func TestClone(t *testing.T) {
	g := New()
	mustAddNode(t, g, 1, orb.Point{0, 0})
	mustAddNode(t, g, 2, orb.Point{1, 0})
	mustAddEdge(t, g, Edge{From: 1, To: 2, Name: "Elm Street", Lanes: 2, Length: 100})

	c := g.Clone()

	// Mutating the clone must not affect the original.
	c.RemoveNode(2)
	if !g.HasNode(2) || !g.HasEdge(1, 2) {
		t.Error("mutating clone affected original graph")
	}

	// Geometry slices must be independent.
	c2 := g.Clone()
	e, _ := c2.Edge(1, 2)
	e.Geometry[0] = orb.Point{99, 99}
	orig, _ := g.Edge(1, 2)
	if orig.Geometry[0] == (orb.Point{99, 99}) {
		t.Error("clone shares geometry slice with original")
	}

	// Sequence counter carries over: new edges in the clone keep increasing.
	mustAddNode(t, c2, 3, orb.Point{2, 0})
	mustAddEdge(t, c2, Edge{From: 2, To: 3, Length: 50})
	newEdge, _ := c2.Edge(2, 3)
	oldEdge, _ := c2.Edge(1, 2)
	if newEdge.Seq <= oldEdge.Seq {
		t.Errorf("clone Seq = %d, want greater than %d", newEdge.Seq, oldEdge.Seq)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Graph {
		g := New()
		mustAddNode(t, g, 1, orb.Point{0, 0})
		mustAddNode(t, g, 2, orb.Point{1, 0})
		mustAddEdge(t, g, Edge{From: 1, To: 2, Length: 100})
		return g
	}

	tests := []struct {
		name    string
		mutate  func(g *Graph)
		wantErr error
	}{
		{
			name:   "valid graph",
			mutate: func(g *Graph) {},
		},
		{
			name: "NaN coordinate",
			mutate: func(g *Graph) {
				n, _ := g.Node(1)
				n.Point = orb.Point{math.NaN(), 0}
			},
			wantErr: ErrMissingCoordinate,
		},
		{
			name: "dangling endpoint",
			mutate: func(g *Graph) {
				delete(g.nodes, 2)
			},
			wantErr: ErrInvalidEdgeEndpoint,
		},
		{
			name: "zero length",
			mutate: func(g *Graph) {
				e, _ := g.Edge(1, 2)
				e.Length = 0
			},
			wantErr: ErrUnresolvableLength,
		},
		{
			name: "NaN length",
			mutate: func(g *Graph) {
				e, _ := g.Edge(1, 2)
				e.Length = math.NaN()
			},
			wantErr: ErrUnresolvableLength,
		},
		{
			name: "detached geometry",
			mutate: func(g *Graph) {
				e, _ := g.Edge(1, 2)
				e.Geometry[0] = orb.Point{5, 5}
			},
			wantErr: ErrDetachedGeometry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := valid()
			tt.mutate(g)
			err := g.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestEffectiveLanes(t *testing.T) {
	tests := []struct {
		name  string
		lanes int
		want  int
	}{
		{name: "unknown defaults to one", lanes: 0, want: 1},
		{name: "negative defaults to one", lanes: -3, want: 1},
		{name: "explicit count kept", lanes: 4, want: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Edge{Lanes: tt.lanes}
			if got := e.EffectiveLanes(); got != tt.want {
				t.Errorf("EffectiveLanes() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTotalLength(t *testing.T) {
	g := New()
	mustAddNode(t, g, 1, orb.Point{0, 0})
	mustAddNode(t, g, 2, orb.Point{1, 0})
	mustAddEdge(t, g, Edge{From: 1, To: 2, Length: 120.5})
	mustAddEdge(t, g, Edge{From: 2, To: 1, Length: 120.5})

	if got := g.TotalLength(); got != 241 {
		t.Errorf("TotalLength() = %v, want 241", got)
	}
}

func TestResolveParallel(t *testing.T) {
	tests := []struct {
		name  string
		edges []Edge
		want  []Edge
	}{
		{
			name:  "empty",
			edges: nil,
			want:  nil,
		},
		{
			name: "no duplicates pass through",
			edges: []Edge{
				{From: 1, To: 2, Lanes: 1},
				{From: 2, To: 3, Lanes: 2},
			},
			want: []Edge{
				{From: 1, To: 2, Lanes: 1},
				{From: 2, To: 3, Lanes: 2},
			},
		},
		{
			name: "greater lanes wins",
			edges: []Edge{
				{From: 1, To: 2, Lanes: 1, Name: "narrow"},
				{From: 1, To: 2, Lanes: 2, Name: "wide"},
			},
			want: []Edge{
				{From: 1, To: 2, Lanes: 2, Name: "wide"},
			},
		},
		{
			name: "tie keeps first candidate",
			edges: []Edge{
				{From: 1, To: 2, Lanes: 2, Name: "first"},
				{From: 1, To: 2, Lanes: 2, Name: "second"},
			},
			want: []Edge{
				{From: 1, To: 2, Lanes: 2, Name: "first"},
			},
		},
		{
			name: "unknown lanes compare as one",
			edges: []Edge{
				{From: 1, To: 2, Lanes: 0, Name: "unknown"},
				{From: 1, To: 2, Lanes: 1, Name: "single"},
			},
			want: []Edge{
				{From: 1, To: 2, Lanes: 0, Name: "unknown"},
			},
		},
		{
			name: "opposite directions are distinct",
			edges: []Edge{
				{From: 1, To: 2, Lanes: 1},
				{From: 2, To: 1, Lanes: 2},
			},
			want: []Edge{
				{From: 1, To: 2, Lanes: 1},
				{From: 2, To: 1, Lanes: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveParallel(tt.edges)
			if len(got) != len(tt.want) {
				t.Fatalf("ResolveParallel() returned %d edges, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].From != tt.want[i].From || got[i].To != tt.want[i].To ||
					got[i].Lanes != tt.want[i].Lanes || got[i].Name != tt.want[i].Name {
					t.Errorf("ResolveParallel()[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func mustAddNode(t *testing.T, g *Graph, id NodeID, p orb.Point) {
	t.Helper()
	if err := g.AddNode(Node{ID: id, Point: p}); err != nil {
		t.Fatalf("AddNode(%d) error = %v", id, err)
	}
}

func mustAddEdge(t *testing.T, g *Graph, e Edge) {
	t.Helper()
	if err := g.AddEdge(e); err != nil {
		t.Fatalf("AddEdge(%d->%d) error = %v", e.From, e.To, err)
	}
}
