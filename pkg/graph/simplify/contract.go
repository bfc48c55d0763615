package simplify

import (
	"github.com/waymerge/waymerge/pkg/graph"
)

// Contract collapses every pass-through node in the graph, modifying it in
// place, and returns metrics about the run. It is equivalent to calling
// [ContractWithOptions] with zero Options.
func Contract(g *graph.Graph) Result {
	return ContractWithOptions(g, Options{})
}

// ContractWithOptions runs the fixed-point contraction loop over the graph.
//
// # Algorithm
//
// Each pass works against a frozen view of the graph:
//
//  1. Collect eligible nodes in ascending ID order. A node n is eligible
//     when it has exactly two distinct neighbors u < v, its in-degree equals
//     its out-degree, that degree is at most two, and no direct edge u→v
//     exists.
//  2. For each eligible node, attempt [TryMerge] in both directions. When at
//     least one direction succeeds, stage the merged edge(s) and claim n for
//     removal. A node whose neighbor is already claimed this pass is
//     deferred: contractions stay local and independent within a pass, and
//     the deferred node is reconsidered next pass.
//  3. Apply the batch: remove claimed nodes (cascading their incident
//     edges), then insert the staged edges. Collisions on an ordered pair,
//     between staged edges or with an edge already in the graph, resolve by
//     [graph.ResolveParallel] semantics: greatest effective lane count wins,
//     first inserted wins ties.
//
// Passes repeat until one removes no nodes. The node count strictly
// decreases in every earlier pass, so termination is guaranteed. The final
// no-op pass is included in [Result.Passes].
//
// # Single-Threaded
//
// The loop is deliberately sequential. Batched application makes each pass
// deterministic, which the tests rely on; parallelizing the scan would buy
// little since the work is dominated by map lookups.
//
// # Nil Handling
//
// ContractWithOptions panics if g is nil. An empty graph returns immediately
// after one pass.
//
// # Performance
//
// Each pass is O(V log V + E) for the sorted scan and merges. The number of
// passes is bounded by the longest chain of adjacent eligible nodes, which
// halves every pass, so the loop runs O(V log V + E) overall on real road
// networks.
func ContractWithOptions(g *graph.Graph, opts Options) Result {
	if g == nil {
		panic("simplify: graph must not be nil")
	}

	result := Result{
		NodesBefore: g.NodeCount(),
		EdgesBefore: g.EdgeCount(),
		Skips:       make(map[SkipReason]int),
	}

	for opts.MaxPasses == 0 || result.Passes < opts.MaxPasses {
		removed := contractPass(g, &result)
		result.Passes++
		if removed == 0 {
			break
		}
		result.NodesRemoved += removed
	}

	result.NodesAfter = g.NodeCount()
	result.EdgesAfter = g.EdgeCount()
	return result
}

// candidate is an eligible node with its two neighbors in ascending order.
type candidate struct {
	node graph.NodeID
	u, v graph.NodeID
}

// contractPass runs a single pass and returns the number of nodes removed.
// The graph is not mutated until every eligible node has been examined, so
// the whole scan sees the same frozen state.
func contractPass(g *graph.Graph, result *Result) int {
	eligible := eligibleNodes(g)

	claimed := make(map[graph.NodeID]struct{})
	var staged []graph.Edge
	var removals []graph.NodeID

	for _, c := range eligible {
		if _, ok := claimed[c.u]; ok {
			continue
		}
		if _, ok := claimed[c.v]; ok {
			continue
		}

		forward, fr := TryMerge(g, c.u, c.node, c.v)
		backward, br := TryMerge(g, c.v, c.node, c.u)
		if fr != SkipNone {
			result.Skips[fr]++
		}
		if br != SkipNone {
			result.Skips[br]++
		}
		if fr != SkipNone && br != SkipNone {
			continue
		}

		if fr == SkipNone {
			staged = append(staged, forward)
		}
		if br == SkipNone {
			staged = append(staged, backward)
		}
		claimed[c.node] = struct{}{}
		removals = append(removals, c.node)
	}

	for _, id := range removals {
		g.RemoveNode(id)
	}

	resolved := graph.ResolveParallel(staged)
	result.MergedEdges += len(staged)
	result.ParallelPruned += len(staged) - len(resolved)

	for _, e := range resolved {
		if existing, ok := g.Edge(e.From, e.To); ok {
			// A reverse merge can target a pair that already carried a
			// direct edge before the pass. The duplicate rule applies: the
			// incumbent was inserted first and wins ties.
			result.ParallelPruned++
			if e.EffectiveLanes() <= existing.EffectiveLanes() {
				continue
			}
		}
		if err := g.AddEdge(e); err != nil {
			panic(err)
		}
	}

	return len(removals)
}

// eligibleNodes returns contraction candidates under the current graph
// state, in ascending node ID order.
func eligibleNodes(g *graph.Graph) []candidate {
	var out []candidate
	for _, id := range g.NodeIDs() {
		neighbors := g.Neighbors(id)
		if len(neighbors) != 2 {
			continue
		}
		in, outDeg := g.InDegree(id), g.OutDegree(id)
		if in != outDeg || in > 2 {
			continue
		}
		u, v := neighbors[0], neighbors[1]
		if g.HasEdge(u, v) {
			continue
		}
		out = append(out, candidate{node: id, u: u, v: v})
	}
	return out
}
