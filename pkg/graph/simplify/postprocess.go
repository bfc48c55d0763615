package simplify

import (
	"github.com/waymerge/waymerge/pkg/errors"
	"github.com/waymerge/waymerge/pkg/graph"
)

// PostProcess finishes a simplification run, modifying the graph in place:
//
//  1. Keep only the largest weakly connected component. Ties break toward
//     the component containing the smallest node ID.
//  2. Remove self-loops, which contraction of closed rings can leave behind.
//
// It then sweeps the result for invariant violations: surviving self-loops,
// more than one weak component, edges referencing missing nodes, detached
// geometry, or unresolvable lengths. A violation means the simplification
// itself is defective, never the input, so it surfaces as an
// INTERNAL_INVARIANT error that callers are expected to treat as fatal.
//
// PostProcess panics if g is nil. An empty graph passes through unchanged.
func PostProcess(g *graph.Graph) (PostStats, error) {
	if g == nil {
		panic("simplify: graph must not be nil")
	}

	var stats PostStats
	stats.ComponentsRemoved, stats.NodesRemoved = keepGiantComponent(g)
	stats.SelfLoopsRemoved = removeSelfLoops(g)

	if err := verify(g); err != nil {
		return stats, err
	}
	return stats, nil
}

// keepGiantComponent removes every node outside the largest weakly connected
// component and returns the number of components and nodes pruned.
func keepGiantComponent(g *graph.Graph) (components, nodes int) {
	all := WeakComponents(g)
	if len(all) < 2 {
		return 0, 0
	}
	for _, component := range all[1:] {
		for _, id := range component {
			g.RemoveNode(id)
		}
		nodes += len(component)
	}
	return len(all) - 1, nodes
}

// removeSelfLoops deletes every edge whose endpoints are the same node and
// returns how many were removed.
func removeSelfLoops(g *graph.Graph) int {
	removed := 0
	for _, e := range g.Edges() {
		if e.From == e.To {
			g.RemoveEdge(e.From, e.To)
			removed++
		}
	}
	return removed
}

// verify sweeps the post-processed graph for invariant violations. The
// checks mirror what PostProcess just established; failing one indicates a
// logic defect upstream.
func verify(g *graph.Graph) error {
	for _, e := range g.Edges() {
		if e.From == e.To {
			return errors.New(errors.ErrCodeInvariant, "self-loop %d->%d survived post-processing", e.From, e.To)
		}
	}
	if components := WeakComponents(g); len(components) > 1 {
		return errors.New(errors.ErrCodeInvariant, "%d weak components survived post-processing", len(components))
	}
	if err := g.Validate(); err != nil {
		return errors.Wrap(errors.ErrCodeInvariant, err, "graph corrupted during simplification")
	}
	return nil
}
