package simplify

// Result contains metrics about a contraction run.
//
// Result is returned by [Contract] and [ContractWithOptions] to provide
// visibility into what the fixed-point loop did. This is useful for logging,
// regression tracking, and understanding how much structure a network
// actually carries.
type Result struct {
	// Passes is the number of passes executed, including the final pass
	// that found nothing left to contract.
	Passes int

	// NodesBefore and NodesAfter are the node counts at the start and end
	// of the run. NodesAfter is never greater than NodesBefore.
	NodesBefore int
	NodesAfter  int

	// EdgesBefore and EdgesAfter are the edge counts at the start and end
	// of the run.
	EdgesBefore int
	EdgesAfter  int

	// NodesRemoved is the total number of pass-through nodes contracted.
	NodesRemoved int

	// MergedEdges is the number of successful merge operations. A node
	// contracted in both directions contributes two.
	MergedEdges int

	// ParallelPruned is the number of staged edges dropped because another
	// candidate for the same ordered pair won the duplicate resolution.
	ParallelPruned int

	// Skips counts failed merge attempts by reason. A node skipped in both
	// directions contributes two entries. Skips are ordinary control flow;
	// high counts simply describe the network.
	Skips map[SkipReason]int
}

// Options configures [ContractWithOptions].
//
// The zero value runs the contraction to its fixed point (equivalent to
// calling [Contract]).
type Options struct {
	// MaxPasses bounds the number of passes. Zero means no bound: the loop
	// runs until a pass removes no nodes, which is guaranteed to happen
	// because the node count strictly decreases in every earlier pass.
	MaxPasses int
}

// PostStats contains metrics about a post-processing run, returned by
// [PostProcess].
type PostStats struct {
	// ComponentsRemoved is the number of weakly connected components pruned
	// in favor of the giant component.
	ComponentsRemoved int

	// NodesRemoved is the number of nodes removed with those components.
	NodesRemoved int

	// SelfLoopsRemoved is the number of edges with identical endpoints
	// removed.
	SelfLoopsRemoved int
}
