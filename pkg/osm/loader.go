package osm

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"github.com/waymerge/waymerge/pkg/errors"
	"github.com/waymerge/waymerge/pkg/graph"
)

// Options configures a PBF load.
type Options struct {
	// Filter selects highway classes. The zero value keeps every way that
	// carries a highway tag.
	Filter Filter

	// Logger receives progress output. Defaults to the global charm logger.
	Logger *log.Logger
}

// pbfWay carries a retained way between the scan and assembly phases.
type pbfWay struct {
	id    osm.WayID
	name  string
	lanes int
	dir   wayDirection
	refs  []osm.NodeID
}

// LoadPBF reads a .osm.pbf extract and builds the road network graph.
//
// The file is scanned twice: once for ways passing the filter, once for the
// coordinates of the nodes those ways reference. Ways referencing nodes
// missing from the extract, which happens at clipped extract boundaries, are
// dropped with a warning. Parallel edges produced by distinct ways for the
// same ordered node pair resolve by the duplicate rule before assembly, so
// the returned graph holds at most one edge per direction.
//
// The returned graph passes [graph.Graph.Validate] but is otherwise raw: it
// still contains through-nodes, self-loop rings and disconnected fragments.
// Simplification is a separate step.
//
// Returns:
//   - INVALID_PATH or INVALID_FILTER for bad parameters
//   - FILE_NOT_FOUND when the extract cannot be opened
//   - INVALID_FORMAT when PBF decoding fails, with the cause preserved so
//     context cancellation stays detectable via errors.Is
func LoadPBF(ctx context.Context, path string, opts Options) (*graph.Graph, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	if err := opts.Filter.Validate(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()

	start := time.Now()
	ways, use, err := scanWays(ctx, f, opts.Filter)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	logger.Info("scanned ways", "kept", len(ways), "duration", time.Since(start))

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "rewind %s", path)
	}

	start = time.Now()
	coords, err := scanNodes(ctx, f, use)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode %s", path)
	}
	logger.Info("collected coordinates", "nodes", len(coords), "duration", time.Since(start))

	g, dropped := assembleGraph(ways, use, coords)
	if len(dropped) > 0 {
		logger.Warn("dropped ways with nodes outside the extract", "count", len(dropped), "first", dropped[0])
	}
	logger.Info("assembled road network", "nodes", g.NodeCount(), "edges", g.EdgeCount())
	return g, nil
}

// scanWays collects ways passing the filter and counts node references. The
// reference counts drive segmentation: a node referenced more than once is a
// junction between edges.
func scanWays(ctx context.Context, r io.Reader, filter Filter) ([]pbfWay, map[osm.NodeID]int, error) {
	scanner := osmpbf.New(ctx, r, 1)
	defer scanner.Close()
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	var ways []pbfWay
	use := make(map[osm.NodeID]int)
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || len(way.Nodes) < 2 {
			continue
		}
		if !filter.Keeps(way.Tags.Find("highway")) {
			continue
		}
		refs := make([]osm.NodeID, len(way.Nodes))
		for i, n := range way.Nodes {
			refs[i] = n.ID
			use[n.ID]++
		}
		ways = append(ways, pbfWay{
			id:    way.ID,
			name:  way.Tags.Find("name"),
			lanes: parseLanes(way.Tags.Find("lanes")),
			dir:   parseOneway(way.Tags.Find("oneway")),
			refs:  refs,
		})
	}
	return ways, use, scanner.Err()
}

// scanNodes collects coordinates for the referenced nodes.
func scanNodes(ctx context.Context, r io.Reader, use map[osm.NodeID]int) (map[osm.NodeID]orb.Point, error) {
	scanner := osmpbf.New(ctx, r, 1)
	defer scanner.Close()
	scanner.SkipWays = true
	scanner.SkipRelations = true

	coords := make(map[osm.NodeID]orb.Point, len(use))
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, ok := use[node.ID]; ok {
			coords[node.ID] = orb.Point{node.Lon, node.Lat}
		}
	}
	return coords, scanner.Err()
}

// assembleGraph cuts the retained ways into edges and builds the graph.
// Returns the graph and the IDs of ways dropped for missing coordinates.
func assembleGraph(ways []pbfWay, use map[osm.NodeID]int, coords map[osm.NodeID]orb.Point) (*graph.Graph, []osm.WayID) {
	var candidates []graph.Edge
	var dropped []osm.WayID
	for _, w := range ways {
		if !resolvable(w.refs, coords) {
			dropped = append(dropped, w.id)
			continue
		}
		for _, segment := range splitWay(w.refs, use) {
			line := make(orb.LineString, len(segment))
			for i, ref := range segment {
				line[i] = coords[ref]
			}
			length := geo.LengthHaversine(line)
			if length == 0 {
				// Stacked duplicate coordinates span no distance.
				continue
			}

			from := graph.NodeID(segment[0])
			to := graph.NodeID(segment[len(segment)-1])
			if w.dir == directionForward || w.dir == directionBoth {
				candidates = append(candidates, graph.Edge{
					From: from, To: to,
					Name: w.name, Lanes: w.lanes, Length: length, Geometry: line,
				})
			}
			if w.dir == directionReverse || w.dir == directionBoth {
				candidates = append(candidates, graph.Edge{
					From: to, To: from,
					Name: w.name, Lanes: w.lanes, Length: length, Geometry: reverseLine(line),
				})
			}
		}
	}

	g := graph.New()
	for _, e := range graph.ResolveParallel(candidates) {
		if err := g.AddNode(graph.Node{ID: e.From, Point: coords[osm.NodeID(e.From)]}); err != nil {
			panic(err)
		}
		if err := g.AddNode(graph.Node{ID: e.To, Point: coords[osm.NodeID(e.To)]}); err != nil {
			panic(err)
		}
		if err := g.AddEdge(e); err != nil {
			panic(err)
		}
	}
	return g, dropped
}

// splitWay cuts a way's node list at segmentation points: its first and last
// node, and every node referenced more than once across the retained ways.
// Interior nodes become geometry, not graph nodes.
func splitWay(refs []osm.NodeID, use map[osm.NodeID]int) [][]osm.NodeID {
	var segments [][]osm.NodeID
	segment := []osm.NodeID{refs[0]}
	for i := 1; i < len(refs); i++ {
		segment = append(segment, refs[i])
		if i == len(refs)-1 || use[refs[i]] > 1 {
			segments = append(segments, segment)
			segment = []osm.NodeID{refs[i]}
		}
	}
	return segments
}

func resolvable(refs []osm.NodeID, coords map[osm.NodeID]orb.Point) bool {
	for _, ref := range refs {
		if _, ok := coords[ref]; !ok {
			return false
		}
	}
	return true
}

func reverseLine(line orb.LineString) orb.LineString {
	out := make(orb.LineString, len(line))
	for i, p := range line {
		out[len(line)-1-i] = p
	}
	return out
}
