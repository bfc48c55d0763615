package simplify

import (
	"slices"
	"strings"

	"github.com/paulmach/orb"

	"github.com/waymerge/waymerge/pkg/graph"
)

// SkipReason explains why a merge attempt through a node produced no edge.
// The zero value SkipNone indicates success. Skip reasons are ordinary
// control flow: a skipped merge leaves the graph untouched and the node
// survives contraction.
type SkipReason int

const (
	// SkipNone indicates the merge succeeded.
	SkipNone SkipReason = iota

	// SkipOppositeEdgeMissing indicates the (u,via) or (via,v) directed edge
	// is absent. This is the ordinary one-way case: a merge in the other
	// direction may still succeed.
	SkipOppositeEdgeMissing

	// SkipLaneMismatch indicates the two segments carry different lane
	// counts. An unknown count compares as a single lane.
	SkipLaneMismatch

	// SkipNameMismatch indicates neither street name contains the other.
	// Comparison is case-sensitive; an empty name is contained in everything.
	SkipNameMismatch

	// SkipDisjointGeometry indicates the two polylines share no endpoint and
	// cannot be stitched into a single line.
	SkipDisjointGeometry

	// SkipEndpointNotFound indicates the stitched polyline does not contain
	// the exact coordinate of u or v, so it cannot be trimmed to span them.
	SkipEndpointNotFound
)

// String returns a short identifier for logging and metrics.
func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipOppositeEdgeMissing:
		return "opposite_edge_missing"
	case SkipLaneMismatch:
		return "lane_mismatch"
	case SkipNameMismatch:
		return "name_mismatch"
	case SkipDisjointGeometry:
		return "disjoint_geometry"
	case SkipEndpointNotFound:
		return "endpoint_not_found"
	}
	return "unknown"
}

// TryMerge attempts to fuse the path u→via→v into a single directed edge
// u→v. It never mutates the graph: on success it returns the candidate edge
// and SkipNone, on failure a zero edge and the reason.
//
// Checks run in a fixed order: existence of both directed edges, lane
// compatibility, name compatibility, geometry stitching, endpoint trimming.
// The first failing check determines the reason.
//
// The merged edge carries the exact sum of the two lengths (never recomputed
// from geometry), the lane count and name of the incoming (u,via) edge, and
// the stitched polyline trimmed to run from u's coordinate to v's coordinate
// inclusive. The two input polylines are never modified.
//
// TryMerge is direction-specific. Contraction calls it once per direction;
// the two calls are independent and may disagree, which is exactly what
// happens at the end of a one-way street.
func TryMerge(g *graph.Graph, u, via, v graph.NodeID) (graph.Edge, SkipReason) {
	in, ok := g.Edge(u, via)
	if !ok {
		return graph.Edge{}, SkipOppositeEdgeMissing
	}
	out, ok := g.Edge(via, v)
	if !ok {
		return graph.Edge{}, SkipOppositeEdgeMissing
	}

	if in.EffectiveLanes() != out.EffectiveLanes() {
		return graph.Edge{}, SkipLaneMismatch
	}
	if !strings.Contains(in.Name, out.Name) && !strings.Contains(out.Name, in.Name) {
		return graph.Edge{}, SkipNameMismatch
	}

	stitched, ok := stitch(in.Geometry, out.Geometry)
	if !ok {
		return graph.Edge{}, SkipDisjointGeometry
	}

	// Both edges exist, so all three nodes exist.
	src, _ := g.Node(u)
	dst, _ := g.Node(v)
	geom, ok := trim(stitched, src.Point, dst.Point)
	if !ok {
		return graph.Edge{}, SkipEndpointNotFound
	}

	return graph.Edge{
		From:     u,
		To:       v,
		Name:     in.Name,
		Lanes:    in.Lanes,
		Length:   in.Length + out.Length,
		Geometry: geom,
	}, SkipNone
}

// stitch joins two polylines on a shared endpoint, reorienting one side when
// necessary, with the junction vertex appearing once in the result. Returns
// false when the lines share no endpoint. Coordinates compare exactly: they
// are only ever copied between edges, never recomputed.
func stitch(a, b orb.LineString) (orb.LineString, bool) {
	if len(a) == 0 || len(b) == 0 {
		return nil, false
	}
	switch {
	case a[len(a)-1] == b[0]:
		return join(a, b), true
	case a[len(a)-1] == b[len(b)-1]:
		return join(a, reverse(b)), true
	case a[0] == b[0]:
		return join(reverse(a), b), true
	case a[0] == b[len(b)-1]:
		return join(b, a), true
	}
	return nil, false
}

// join concatenates two polylines where the last point of a equals the first
// point of b, keeping the shared vertex once.
func join(a, b orb.LineString) orb.LineString {
	out := make(orb.LineString, 0, len(a)+len(b)-1)
	out = append(out, a...)
	out = append(out, b[1:]...)
	return out
}

func reverse(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, p := range line {
		out[len(line)-1-i] = p
	}
	return out
}

// trim cuts the polyline to span exactly from one coordinate to the other,
// inclusive, reversing when the line runs the opposite way. Returns false
// when either coordinate is not a vertex of the line or both map to the same
// vertex.
func trim(line orb.LineString, from, to orb.Point) (orb.LineString, bool) {
	i := vertexIndex(line, from)
	j := vertexIndex(line, to)
	if i < 0 || j < 0 || i == j {
		return nil, false
	}
	if i < j {
		return slices.Clone(line[i : j+1]), true
	}
	return reverse(line[j : i+1]), true
}

func vertexIndex(line orb.LineString, p orb.Point) int {
	for i, q := range line {
		if q == p {
			return i
		}
	}
	return -1
}
