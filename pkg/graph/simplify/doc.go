// Package simplify provides topological simplification of road-network
// graphs by contracting pass-through nodes.
//
// # Overview
//
// Road networks ingested from OpenStreetMap contain many nodes that carry no
// topological information: points where exactly one street continues without
// branching. This package collapses chains of such nodes into single edges
// while preserving total length, lane counts, street names, and geometric
// shape. Junctions, dead-ends, and any node where streets genuinely differ
// survive untouched.
//
// The [Contract] function runs the complete contraction to a fixed point.
//
// # Merging
//
// [TryMerge] attempts to replace a path u→via→v with a single directed edge
// u→v. The merge succeeds only when the street flows through unchanged:
//
//   - both directed edges (u,via) and (via,v) exist,
//   - lane counts match (an unknown count compares as a single lane),
//   - one street name contains the other (case-sensitive),
//   - the two polylines share an endpoint and stitch into one line,
//   - both outer coordinates appear on the stitched line.
//
// Each check failure maps to a [SkipReason]. Ineligibility is ordinary
// control flow, not an error: a skipped node simply survives contraction.
//
// # Pass Protocol
//
// [Contract] repeats passes until a pass removes no nodes. Each pass freezes
// the node set, collects every eligible node (exactly two distinct
// neighbors, balanced in/out degrees of at most two, no direct shortcut
// between the neighbors), attempts merges in both directions, and applies
// all staged removals and insertions as one batch. A node whose neighbor is
// already claimed for removal in the same pass is deferred to the next pass,
// which keeps every contraction local and independent. Node count never
// increases, so termination is guaranteed.
//
// # Post-Processing
//
// [PostProcess] finishes a simplification run: it keeps only the largest
// weakly connected component, removes self-loops, and sweeps the result for
// invariant violations. A violation aborts with an INTERNAL_INVARIANT error
// because it indicates a defect in the contraction itself, never bad input.
//
// Parallel duplicate candidates for one ordered node pair are resolved by
// [graph.ResolveParallel] wherever they can occur: during ingestion
// assembly, at contraction batch apply, and when interchange files carry
// duplicate rows.
//
// # Usage
//
//	result := simplify.Contract(g)         // modifies g in place
//	stats, err := simplify.PostProcess(g)  // prune, then verify
//	if err != nil {
//	    // internal defect, not user input
//	}
package simplify
