package graph

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/paulmach/orb"
)

var (
	// ErrDuplicateNode is returned by [Graph.AddNode] when a node with the
	// same ID already exists at a different coordinate. Re-adding a node at
	// its existing coordinate is a no-op.
	ErrDuplicateNode = errors.New("duplicate node ID with conflicting coordinate")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidEdgeEndpoint is returned by [Graph.Validate] when an edge
	// references a node that doesn't exist. This indicates graph corruption.
	ErrInvalidEdgeEndpoint = errors.New("invalid edge endpoint")

	// ErrMissingCoordinate is returned by [Graph.Validate] when a node's
	// coordinate is NaN or infinite. Every node must carry a usable planar
	// coordinate before contraction runs.
	ErrMissingCoordinate = errors.New("node lacks a usable coordinate")

	// ErrUnresolvableLength is returned by [Graph.Validate] when an edge's
	// length is zero, negative, NaN, or infinite. Lengths are summed during
	// contraction and must be resolvable up front.
	ErrUnresolvableLength = errors.New("edge lacks a resolvable length")

	// ErrDetachedGeometry is returned by [Graph.Validate] when an edge's
	// polyline does not start at its source coordinate and end at its target
	// coordinate, or has fewer than two points.
	ErrDetachedGeometry = errors.New("edge geometry detached from endpoints")
)

// NodeID identifies a node. IDs follow the OpenStreetMap convention of 64-bit
// integers but carry no other meaning inside the graph.
type NodeID int64

// Node represents a junction or dead-end with a planar coordinate.
// Point follows orb's x/y (lon/lat) ordering. Coordinates pass through the
// toolkit untouched; no projection is applied.
type Node struct {
	ID    NodeID
	Point orb.Point
}

// Edge represents one direction of a street segment between two nodes.
//
// A two-way street is two Edge values, (u,v) and (v,u), each with its own
// attributes. Lanes of 0 means the lane count is unknown; comparisons treat
// unknown as a single lane (see [Edge.EffectiveLanes]) while exports preserve
// the unknown state.
type Edge struct {
	From NodeID
	To   NodeID

	Name     string         // street name; empty when unnamed, possibly space-joined from several ways
	Lanes    int            // lane count for this direction; 0 = unknown
	Length   float64        // meters, strictly positive
	Geometry orb.LineString // ordered polyline from source coordinate to target coordinate

	// Seq is the insertion sequence number assigned by [Graph.AddEdge],
	// used as the deterministic tie-break when parallel edge candidates are
	// reduced to one. Caller-provided values are overwritten on insert.
	Seq int64
}

// EffectiveLanes returns the lane count used for merge comparisons:
// the stored count, or 1 when the count is unknown.
func (e Edge) EffectiveLanes() int {
	if e.Lanes < 1 {
		return 1
	}
	return e.Lanes
}

// pair is the ordered edge key. At most one edge exists per pair.
type pair struct {
	from, to NodeID
}

// Graph is a directed graph over road junctions with at most one edge per
// ordered node pair. Parallel duplicates exist only transiently as edge
// slices during ingestion assembly and contraction batch application; they
// never live inside a Graph.
//
// The zero value is not usable - use New to create a valid instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	nodes    map[NodeID]*Node
	edges    map[pair]*Edge
	outgoing map[NodeID][]NodeID // nodeID -> successor IDs
	incoming map[NodeID][]NodeID // nodeID -> predecessor IDs
	seq      int64
}

// New creates an empty road-network graph.
func New() *Graph {
	return &Graph{
		nodes:    make(map[NodeID]*Node),
		edges:    make(map[pair]*Edge),
		outgoing: make(map[NodeID][]NodeID),
		incoming: make(map[NodeID][]NodeID),
	}
}

// AddNode adds a node to the graph. Adding a node that already exists at the
// same coordinate is a no-op; a conflicting coordinate for an existing ID
// returns ErrDuplicateNode.
func (g *Graph) AddNode(n Node) error {
	if existing, ok := g.nodes[n.ID]; ok {
		if existing.Point != n.Point {
			return ErrDuplicateNode
		}
		return nil
	}
	node := &n
	g.nodes[node.ID] = node
	return nil
}

// AddEdge inserts a directed edge between two existing nodes, overwriting any
// existing edge for the same ordered pair. Returns ErrUnknownSourceNode or
// ErrUnknownTargetNode if an endpoint is missing.
//
// The edge's Seq field is stamped with a fresh insertion sequence number.
// When Geometry is empty, a straight two-point segment from the source
// coordinate to the target coordinate is materialized so that the geometry
// invariant holds by construction. Supplied geometry is stored as given; the
// graph takes ownership of the slice.
func (g *Graph) AddEdge(e Edge) error {
	src, ok := g.nodes[e.From]
	if !ok {
		return ErrUnknownSourceNode
	}
	dst, ok := g.nodes[e.To]
	if !ok {
		return ErrUnknownTargetNode
	}
	if len(e.Geometry) == 0 {
		e.Geometry = orb.LineString{src.Point, dst.Point}
	}
	g.seq++
	e.Seq = g.seq

	key := pair{e.From, e.To}
	_, replacing := g.edges[key]
	g.edges[key] = &e
	if !replacing {
		g.outgoing[e.From] = append(g.outgoing[e.From], e.To)
		g.incoming[e.To] = append(g.incoming[e.To], e.From)
	}
	return nil
}

// RemoveEdge removes the edge from→to if it exists.
// No error is returned if the edge does not exist.
func (g *Graph) RemoveEdge(from, to NodeID) {
	key := pair{from, to}
	if _, ok := g.edges[key]; !ok {
		return
	}
	delete(g.edges, key)
	g.outgoing[from] = slices.DeleteFunc(g.outgoing[from], func(id NodeID) bool { return id == to })
	g.incoming[to] = slices.DeleteFunc(g.incoming[to], func(id NodeID) bool { return id == from })
}

// RemoveNode removes a node and cascades to every incident edge, in both
// directions. Removing a node that doesn't exist is a no-op. No operation
// leaves an edge referencing a removed node.
func (g *Graph) RemoveNode(id NodeID) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for _, to := range slices.Clone(g.outgoing[id]) {
		g.RemoveEdge(id, to)
	}
	for _, from := range slices.Clone(g.incoming[id]) {
		g.RemoveEdge(from, id)
	}
	delete(g.outgoing, id)
	delete(g.incoming, id)
	delete(g.nodes, id)
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the actual node in the graph.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// HasNode reports whether a node with the given ID exists.
func (g *Graph) HasNode(id NodeID) bool {
	_, ok := g.nodes[id]
	return ok
}

// Edge returns the edge from→to and true, or nil and false if not found.
// The returned pointer refers to the actual edge in the graph.
func (g *Graph) Edge(from, to NodeID) (*Edge, bool) {
	e, ok := g.edges[pair{from, to}]
	return e, ok
}

// HasEdge reports whether a directed edge from→to exists.
func (g *Graph) HasEdge(from, to NodeID) bool {
	_, ok := g.edges[pair{from, to}]
	return ok
}

// Nodes returns all nodes in the graph.
// The order is not guaranteed. The returned slice contains pointers to the
// actual node structs, so modifications affect the graph.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		nodes = append(nodes, n)
	}
	return nodes
}

// NodeIDs returns all node IDs in ascending order. Transformations iterate
// over this for reproducible processing order.
func (g *Graph) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Edges returns a copy of all edges in insertion order (ascending Seq).
// Modifications to the returned slice do not affect the graph, but the
// Geometry slices are shared.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.edges))
	for _, e := range g.edges {
		edges = append(edges, *e)
	}
	slices.SortFunc(edges, func(a, b Edge) int {
		return int(a.Seq - b.Seq)
	})
	return edges
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of directed edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Successors returns the IDs of nodes this node has edges to.
// Returns nil if the node has no successors or doesn't exist. The returned
// slice should not be modified - use it as a read-only view.
func (g *Graph) Successors(id NodeID) []NodeID { return g.outgoing[id] }

// Predecessors returns the IDs of nodes that have edges to this node.
// Returns nil if the node has no predecessors or doesn't exist. The returned
// slice should not be modified - use it as a read-only view.
func (g *Graph) Predecessors(id NodeID) []NodeID { return g.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
// Returns 0 if the node doesn't exist. A self-loop counts once.
func (g *Graph) OutDegree(id NodeID) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
// Returns 0 if the node doesn't exist. A self-loop counts once.
func (g *Graph) InDegree(id NodeID) int { return len(g.incoming[id]) }

// Neighbors returns the distinct union of predecessors and successors,
// excluding the node itself, in ascending ID order. This is the adjacency
// view used by the contraction eligibility rules: a pass-through node has
// exactly two distinct neighbors regardless of how many directed edges
// connect it to them.
func (g *Graph) Neighbors(id NodeID) []NodeID {
	seen := make(map[NodeID]struct{}, len(g.outgoing[id])+len(g.incoming[id]))
	for _, to := range g.outgoing[id] {
		if to != id {
			seen[to] = struct{}{}
		}
	}
	for _, from := range g.incoming[id] {
		if from != id {
			seen[from] = struct{}{}
		}
	}
	neighbors := make([]NodeID, 0, len(seen))
	for n := range seen {
		neighbors = append(neighbors, n)
	}
	slices.Sort(neighbors)
	return neighbors
}

// TotalLength returns the sum of all edge lengths in meters. Both directions
// of a two-way street contribute, mirroring how the edges are stored.
func (g *Graph) TotalLength() float64 {
	var total float64
	for _, e := range g.edges {
		total += e.Length
	}
	return total
}

// Clone returns a deep copy of the graph. Node structs, edge structs, and
// geometry slices are all copied; sequence numbers are preserved so that
// deterministic tie-breaking survives the copy.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		nodes:    make(map[NodeID]*Node, len(g.nodes)),
		edges:    make(map[pair]*Edge, len(g.edges)),
		outgoing: make(map[NodeID][]NodeID, len(g.outgoing)),
		incoming: make(map[NodeID][]NodeID, len(g.incoming)),
		seq:      g.seq,
	}
	for id, n := range g.nodes {
		node := *n
		c.nodes[id] = &node
	}
	for key, e := range g.edges {
		edge := *e
		edge.Geometry = slices.Clone(e.Geometry)
		c.edges[key] = &edge
	}
	for id, targets := range g.outgoing {
		c.outgoing[id] = slices.Clone(targets)
	}
	for id, sources := range g.incoming {
		c.incoming[id] = slices.Clone(sources)
	}
	return c
}

// Validate checks structural integrity and returns nil if the graph is fit
// for contraction. It verifies:
//
//  1. Every node carries a finite coordinate
//  2. Every edge connects existing nodes
//  3. Every edge length is finite and strictly positive
//  4. Every edge polyline starts at its source coordinate and ends at its
//     target coordinate
//
// Returns an error wrapping ErrMissingCoordinate, ErrInvalidEdgeEndpoint,
// ErrUnresolvableLength, or ErrDetachedGeometry identifying the offending
// node or edge. A validation failure is fatal for the caller: contraction
// assumes a structurally valid graph and never re-checks.
func (g *Graph) Validate() error {
	for id, n := range g.nodes {
		if !finitePoint(n.Point) {
			return fmt.Errorf("node %d: %w", id, ErrMissingCoordinate)
		}
	}
	for key, e := range g.edges {
		src, okS := g.nodes[key.from]
		dst, okD := g.nodes[key.to]
		if !okS || !okD {
			return fmt.Errorf("edge %d->%d: %w", key.from, key.to, ErrInvalidEdgeEndpoint)
		}
		if math.IsNaN(e.Length) || math.IsInf(e.Length, 0) || e.Length <= 0 {
			return fmt.Errorf("edge %d->%d: %w", key.from, key.to, ErrUnresolvableLength)
		}
		if len(e.Geometry) < 2 || e.Geometry[0] != src.Point || e.Geometry[len(e.Geometry)-1] != dst.Point {
			return fmt.Errorf("edge %d->%d: %w", key.from, key.to, ErrDetachedGeometry)
		}
	}
	return nil
}

func finitePoint(p orb.Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ResolveParallel reduces a slice of edge candidates so that at most one edge
// remains per ordered (From, To) pair. The edge with the greatest effective
// lane count wins; on a tie the earliest candidate in the slice wins. Order
// of first occurrence is preserved.
//
// Parallel candidates arise wherever edges are assembled from raw material:
// distinct OpenStreetMap ways covering the same node pair, contraction
// batches staging the same shortcut from two directions, and interchange
// files carrying duplicate rows. Graph itself never holds parallels, so the
// reduction always happens before insertion.
func ResolveParallel(edges []Edge) []Edge {
	if len(edges) < 2 {
		return edges
	}
	index := make(map[pair]int, len(edges))
	out := make([]Edge, 0, len(edges))
	for _, e := range edges {
		k := pair{e.From, e.To}
		if i, ok := index[k]; ok {
			if e.EffectiveLanes() > out[i].EffectiveLanes() {
				out[i] = e
			}
			continue
		}
		index[k] = len(out)
		out = append(out, e)
	}
	return out
}
