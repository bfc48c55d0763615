// Package io provides JSON and CSV import and export for road network
// graphs.
//
// # Overview
//
// This package serializes road graphs to and from two interchange formats:
// a JSON document carrying the full graph including edge geometry, and a
// pair of CSV tables matching the classic node/edge table layout consumed
// by simulation tools. The JSON format is designed for:
//
//   - Caching of loaded and simplified networks for faster re-runs
//   - Integration with external tools that produce or consume graph data
//   - Round-trip preservation: export and re-import produce equal graphs
//
// # JSON Format
//
// The format has two required top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": 1, "x": 11.34, "y": 44.49},
//	    {"id": 2, "x": 11.35, "y": 44.50}
//	  ],
//	  "edges": [
//	    {"u": 1, "v": 2, "name": "Via Zamboni", "lanes": 2, "length": 812.5,
//	     "geometry": [[11.34, 44.49], [11.35, 44.50]]}
//	  ]
//	}
//
// Node coordinates are longitude (x) and latitude (y). Edge fields "name",
// "lanes" and "geometry" are optional: a missing name means unnamed, lanes 0
// means unknown, and a missing geometry defaults to the straight segment
// between the endpoints.
//
// # CSV Tables
//
// The CSV layout uses semicolon separators and one table per entity:
//
//	id;x;y                    nodes table
//	u;v;length;lanes;name     edges table
//
// CSV carries no geometry; re-imported edges get straight-line geometry.
//
// # Import
//
// Use [ImportJSON] or [ImportCSV] to read from file paths, or [ReadJSON] and
// [ReadCSV] to read from any io.Reader. All readers validate the decoded
// structure: unknown endpoint references, non-finite coordinates and
// non-positive lengths are INVALID_GRAPH errors naming the offending record.
// Duplicate rows for the same directed node pair resolve by the duplicate
// rule: the greatest lane count wins, first row wins ties.
//
// # Export
//
// Use [ExportJSON] and [ExportCSV] for files, [WriteJSON], [WriteNodeTable]
// and [WriteEdgeTable] for writers. Output is deterministic: nodes ascend by
// ID and edges keep insertion order.
//
// # Concurrency
//
// All functions are safe to call concurrently with other readers of the same
// graph, but not with concurrent modifications. Readers return independent
// graphs that can be modified freely.
package io
