// Package graph provides a directed graph model for road networks, where
// nodes are junctions or dead-ends and edges are directed street segments.
//
// # Overview
//
// Waymerge simplifies road networks by contracting topologically
// uninteresting pass-through nodes. This package provides the core data
// structure that the contraction operates on: a directed graph with
// per-direction edge attributes (street name, lane count, length in meters,
// and an ordered geometry polyline).
//
// A two-way street is represented as two independent directed edges, one per
// direction, each carrying its own attributes. A one-way street is expressed
// purely by the absence of the opposite edge; there is no one-way flag.
//
// # Basic Usage
//
// Create a graph with [New], add nodes with [Graph.AddNode], and edges with
// [Graph.AddEdge]. Edges can only connect existing nodes, and at most one
// edge exists per ordered node pair (adding again overwrites):
//
//	g := graph.New()
//	g.AddNode(graph.Node{ID: 1, Point: orb.Point{13.39, 52.52}})
//	g.AddNode(graph.Node{ID: 2, Point: orb.Point{13.40, 52.52}})
//	g.AddEdge(graph.Edge{From: 1, To: 2, Name: "Unter den Linden", Lanes: 2, Length: 680})
//
// Query the structure with [Graph.Neighbors], [Graph.Successors],
// [Graph.Predecessors], and the degree methods. Use [Graph.Validate] to
// verify structural integrity before running transformations.
//
// # Geometry
//
// Every edge carries an ordered polyline whose first point equals the source
// node's coordinate and whose last point equals the target node's coordinate.
// [Graph.AddEdge] materializes a straight two-point segment when no geometry
// is supplied, so the invariant holds by construction. Coordinates are only
// ever copied, never recomputed, which keeps exact float comparison sound
// across transformations.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. The contraction algorithm
// in the [simplify] subpackage is single-threaded by design; callers must
// synchronize access if multiple goroutines touch the same graph.
//
// [simplify]: github.com/waymerge/waymerge/pkg/graph/simplify
package graph
