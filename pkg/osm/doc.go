// Package osm loads road networks from OpenStreetMap PBF extracts into
// waymerge graphs.
//
// # Overview
//
// The loader reads a .osm.pbf file in two sequential scans. The first scan
// collects every way that passes the highway-class filter and counts how
// often each node is referenced. The second scan collects coordinates for
// the referenced nodes. Ways are then cut into edges at segmentation points:
// a way's first and last node, and every node referenced more than once
// across the retained ways. Interior shape nodes fold into the edge geometry
// and never become graph nodes.
//
// # Direction
//
// A bidirectional way emits one directed edge per direction, sharing the
// same attributes with mirrored geometry. A way tagged oneway=yes, true or 1
// emits only the forward edge; oneway=-1 emits only the reversed edge.
//
// # Attributes
//
// Street names come from the name tag and stay empty when untagged. Lane
// counts take the greatest integer among semicolon-separated values of the
// lanes tag, with 0 recording an unknown count. Lengths are haversine sums
// along the geometry in meters.
//
// # Filtering
//
// Road classes are selected through [Filter]. Filtering happens entirely in
// this package: downstream graph processing never sees highway classes.
package osm
