// Package render draws road graphs as images.
//
// # Overview
//
// This package turns a simplified road graph into Graphviz DOT source and
// renders it to SVG, PNG, or PDF. Unlike generic graph drawing, every node
// is pinned at its scaled geographic position, so the output reproduces the
// map layout instead of inventing one.
//
//	dot := render.ToDOT(g, render.Options{})
//	svg, err := render.SVG(dot)
//
// # Positioning
//
// [ToDOT] scales longitude/latitude into Graphviz points, preserving the
// extract's aspect ratio, and emits pos="x,y!" attributes. The trailing
// bang pins the coordinate so the neato engine keeps it.
//
// # Styling
//
// Street pairs that run in both directions collapse to one undirected
// line; one-way streets keep their arrowhead. Line thickness follows the
// lane count, and Options.Labels adds street names.
//
// # Formats
//
// [SVG] renders in process via [github.com/goccy/go-graphviz]. [PNG] and
// [PDF] convert the SVG with the external rsvg-convert tool (librsvg).
//
// # Batch
//
// [Frames] renders a sequence of graphs concurrently, one worker pool wide,
// for producing animation frames or before/after comparisons.
package render
