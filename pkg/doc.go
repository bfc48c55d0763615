// Package pkg provides the core libraries for Waymerge road network simplification.
//
// # Overview
//
// Waymerge reduces raw road networks to their topological skeleton: chains of
// degree-two pass-through nodes collapse into single long edges while every
// junction, name boundary, and lane change survives. The pkg directory is
// organized into four main areas:
//
//  1. [graph] - Domain model (directed road graph, simplification passes)
//  2. [osm] - Ingestion (OpenStreetMap PBF extracts → road graph)
//  3. [io] / [render] - Serialization (JSON, CSV) and drawing (DOT, SVG, PNG)
//  4. [pipeline] - Orchestration (load → simplify → export) with caching
//
// # Architecture
//
// The typical data flow through Waymerge:
//
//	OSM PBF extract / JSON / CSV tables
//	         ↓
//	    [osm] or [io] package (build the directed graph)
//	         ↓
//	    [graph/simplify] package (contract chains, prune islands)
//	         ↓
//	    [io] and [render] packages (JSON/CSV tables, DOT/SVG/PNG maps)
//	         ↓
//	    artifacts on disk
//
// # Quick Start
//
// Load a PBF extract, simplify it, and draw the result:
//
//	import (
//	    "context"
//	    "github.com/waymerge/waymerge/pkg/graph/simplify"
//	    "github.com/waymerge/waymerge/pkg/osm"
//	    "github.com/waymerge/waymerge/pkg/render"
//	)
//
//	// 1. Ingest the road network
//	g, _ := osm.LoadPBF(context.Background(), "berlin.osm.pbf", osm.Options{})
//
//	// 2. Contract pass-through chains to a fixed point
//	res := simplify.Contract(g)
//
//	// 3. Keep the giant component, drop self-loops
//	_, _ = simplify.PostProcess(g)
//
//	// 4. Render a coordinate-pinned map
//	svg, _ := render.SVG(render.ToDOT(g, render.Options{}))
//
// # Main Packages
//
// ## Domain Model
//
// [graph] - Directed road graph with one edge per ordered node pair. Nodes
// carry immutable lon/lat coordinates, edges carry length, lanes, street name,
// and a polyline that starts at the source coordinate and ends at the target
// coordinate. Two-way streets are two independent directed edges.
//
// [graph/simplify] - The simplification passes. [simplify.TryMerge] decides
// whether one pass-through node may collapse, [simplify.Contract] sweeps the
// whole graph to a fixed point, and [simplify.PostProcess] extracts the giant
// weak component and removes self-loops.
//
// ## Ingestion
//
// [osm] - Streaming two-scan PBF reader: ways first to find junctions, nodes
// second for coordinates. Ways split at shared nodes, one-way tags decide edge
// direction, and haversine distances supply segment lengths.
//
// ## Serialization and Rendering
//
// [io] - Graph persistence as a single JSON document or as semicolon-separated
// node and edge tables. Imports validate structural invariants before
// returning a graph.
//
// [render] - Graphviz output with coordinates pinned to their map positions
// (neato with fixed pos attributes). SVG natively, PNG/PDF via rsvg-convert,
// frame batches through a worker pool.
//
// ## Infrastructure
//
// [pipeline] - Complete load → simplify → export pipeline used by the CLI and
// by embedding programs. Simplified graphs are cached by source fingerprint,
// rendered images by content hash.
//
// [cache] - Cache backends behind a single interface: filesystem (CLI
// default), Redis (shared environments), and null (disabled). Keys version
// the options that shape the cached value.
//
// [errors] - Coded errors shared across packages. Codes classify failures
// (invalid graph, invalid format, file not found) so the CLI can map them to
// user-facing messages.
//
// [observability] - Optional hooks for pipeline stages and cache operations.
// No-op by default; main registers real implementations.
//
// # Common Workflows
//
// Restrict ingestion to the principal road network:
//
//	filter := osm.Filter{Keep: osm.PrincipalClasses}
//	g, _ := osm.LoadPBF(ctx, "extract.osm.pbf", osm.Options{Filter: filter})
//
// Run the cached pipeline end to end:
//
//	runner := pipeline.NewRunner(fileCache, nil, logger)
//	result, _ := runner.Execute(ctx, pipeline.Options{
//	    Input:   "berlin.osm.pbf",
//	    Formats: []string{pipeline.FormatJSON, pipeline.FormatSVG},
//	})
//
// Round-trip a graph through CSV tables:
//
//	_ = graphio.ExportCSV(g, "nodes.csv", "edges.csv")
//	g2, _ := graphio.ImportCSV("nodes.csv", "edges.csv")
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                  # All tests
//	go test ./pkg/graph/simplify/...   # Specific package
//	go test -run Example               # Examples only
//
// [graph]: https://pkg.go.dev/github.com/waymerge/waymerge/pkg/graph
// [graph/simplify]: https://pkg.go.dev/github.com/waymerge/waymerge/pkg/graph/simplify
// [simplify.TryMerge]: https://pkg.go.dev/github.com/waymerge/waymerge/pkg/graph/simplify#TryMerge
// [simplify.Contract]: https://pkg.go.dev/github.com/waymerge/waymerge/pkg/graph/simplify#Contract
// [simplify.PostProcess]: https://pkg.go.dev/github.com/waymerge/waymerge/pkg/graph/simplify#PostProcess
// [osm]: https://pkg.go.dev/github.com/waymerge/waymerge/pkg/osm
// [io]: https://pkg.go.dev/github.com/waymerge/waymerge/pkg/io
// [render]: https://pkg.go.dev/github.com/waymerge/waymerge/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/waymerge/waymerge/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/waymerge/waymerge/pkg/cache
// [errors]: https://pkg.go.dev/github.com/waymerge/waymerge/pkg/errors
// [observability]: https://pkg.go.dev/github.com/waymerge/waymerge/pkg/observability
package pkg
