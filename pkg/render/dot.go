package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/waymerge/waymerge/pkg/graph"
)

// Options configures road graph rendering.
type Options struct {
	// Labels draws street names along edges.
	Labels bool

	// Width is the drawing width in Graphviz points. Node positions are
	// scaled from geographic coordinates to fit; height follows the
	// extract's aspect ratio. Zero means 1000.
	Width float64
}

const defaultWidth = 1000.0

// ToDOT converts a road graph to Graphviz DOT source with every node pinned
// at its scaled geographic position. The result renders with [SVG], [PNG],
// or [PDF], or with external Graphviz tools (the neato engine).
//
// Edge pairs running in both directions collapse to one undirected line
// drawn from the lower node ID; one-way streets keep their arrowhead.
// Line thickness follows the lane count.
func ToDOT(g *graph.Graph, opts Options) string {
	if opts.Width <= 0 {
		opts.Width = defaultWidth
	}
	origin, scale := fitToWidth(g, opts.Width)

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	buf.WriteString("  node [shape=point, width=0.06, color=\"#2b2b2b\"];\n")
	buf.WriteString("  edge [color=\"#5b5b5b\", fontsize=10];\n")
	buf.WriteString("\n")

	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		x := (n.Point[0] - origin[0]) * scale
		y := (n.Point[1] - origin[1]) * scale
		fmt.Fprintf(&buf, "  \"%d\" [pos=\"%.2f,%.2f!\"];\n", id, x, y)
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		twoWay := e.From != e.To && g.HasEdge(e.To, e.From)
		if twoWay && e.From > e.To {
			// Drawn once, from the lower-ID endpoint.
			continue
		}
		attrs := edgeAttrs(e, twoWay, opts.Labels)
		fmt.Fprintf(&buf, "  \"%d\" -> \"%d\" [%s];\n", e.From, e.To, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func edgeAttrs(e graph.Edge, twoWay, labels bool) []string {
	attrs := []string{fmt.Sprintf("penwidth=%d", e.EffectiveLanes())}
	if twoWay {
		attrs = append(attrs, "dir=none")
	}
	if labels && e.Name != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Name))
	}
	return attrs
}

// fitToWidth returns the lower-left corner of the graph's bounding box and
// the factor scaling longitude spans to the target width. A graph with no
// horizontal extent keeps unit scale.
func fitToWidth(g *graph.Graph, width float64) ([2]float64, float64) {
	ids := g.NodeIDs()
	if len(ids) == 0 {
		return [2]float64{}, 1
	}

	first, _ := g.Node(ids[0])
	minX, minY := first.Point[0], first.Point[1]
	maxX := minX
	for _, id := range ids[1:] {
		n, _ := g.Node(id)
		if n.Point[0] < minX {
			minX = n.Point[0]
		}
		if n.Point[0] > maxX {
			maxX = n.Point[0]
		}
		if n.Point[1] < minY {
			minY = n.Point[1]
		}
	}

	scale := 1.0
	if span := maxX - minX; span > 0 {
		scale = width / span
	}
	return [2]float64{minX, minY}, scale
}
