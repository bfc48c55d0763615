package simplify

import (
	"slices"

	"github.com/waymerge/waymerge/pkg/graph"
)

// WeakComponents returns the weakly connected components of the graph: the
// connected components that remain when edge direction is ignored. Each
// component is a slice of node IDs in ascending order. Components are sorted
// by size descending; equal-sized components order by their smallest member.
//
// Returns nil for an empty graph.
func WeakComponents(g *graph.Graph) [][]graph.NodeID {
	visited := make(map[graph.NodeID]struct{}, g.NodeCount())
	var components [][]graph.NodeID

	// Seeds ascend, so each component's first discovered node is also its
	// smallest member; discovery order doubles as the tie-break.
	for _, id := range g.NodeIDs() {
		if _, ok := visited[id]; ok {
			continue
		}
		component := []graph.NodeID{id}
		visited[id] = struct{}{}
		for i := 0; i < len(component); i++ {
			n := component[i]
			for _, next := range g.Successors(n) {
				if _, ok := visited[next]; !ok {
					visited[next] = struct{}{}
					component = append(component, next)
				}
			}
			for _, next := range g.Predecessors(n) {
				if _, ok := visited[next]; !ok {
					visited[next] = struct{}{}
					component = append(component, next)
				}
			}
		}
		slices.Sort(component)
		components = append(components, component)
	}

	slices.SortStableFunc(components, func(a, b []graph.NodeID) int {
		return len(b) - len(a)
	})
	return components
}
