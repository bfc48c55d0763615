package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/waymerge/waymerge/pkg/cache"
	"github.com/waymerge/waymerge/pkg/errors"
	"github.com/waymerge/waymerge/pkg/graph"
	"github.com/waymerge/waymerge/pkg/graph/simplify"
	graphio "github.com/waymerge/waymerge/pkg/io"
	"github.com/waymerge/waymerge/pkg/observability"
	"github.com/waymerge/waymerge/pkg/osm"
	"github.com/waymerge/waymerge/pkg/render"
)

// Runner encapsulates pipeline execution with caching.
// Both the CLI and embedding programs can use it without duplicating the
// caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → simplify → export pipeline with caching.
// Each run is tagged with a fresh ID on its log lines.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger.With("run", uuid.NewString())
	opts.Logger = logger

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Simplified graphs are cached by source fingerprint, so a repeat run
	// over an unchanged input skips both loading and contraction.
	graphKey := r.graphCacheKey(opts)

	// Stage 1: Load
	loadStart := time.Now()
	var g *graph.Graph
	if graphKey != "" && !opts.Refresh {
		g = r.cachedGraph(ctx, graphKey)
	}
	result.CacheInfo.GraphHit = g != nil
	if g == nil {
		observability.Pipeline().OnLoadStart(ctx, opts.InputFormat, opts.Input)
		loaded, err := r.Load(ctx, opts)
		if err != nil {
			observability.Pipeline().OnLoadComplete(ctx, opts.InputFormat, opts.Input, 0, 0, time.Since(loadStart), err)
			return nil, fmt.Errorf("load: %w", err)
		}
		g = loaded
		result.Stats.InputNodes = g.NodeCount()
		result.Stats.InputEdges = g.EdgeCount()
		observability.Pipeline().OnLoadComplete(ctx, opts.InputFormat, opts.Input,
			g.NodeCount(), g.EdgeCount(), time.Since(loadStart), nil)
	}
	result.Stats.LoadTime = time.Since(loadStart)

	logger.Info("loaded network",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"cache_hit", result.CacheInfo.GraphHit,
		"duration", result.Stats.LoadTime)

	// Stage 2: Simplify (skipped when the graph came from cache, since
	// cached graphs are stored post-contraction)
	if !opts.SkipSimplify && !result.CacheInfo.GraphHit {
		simplifyStart := time.Now()
		observability.Pipeline().OnSimplifyStart(ctx, g.NodeCount())
		result.Simplify = simplify.ContractWithOptions(g, simplify.Options{MaxPasses: opts.MaxPasses})
		post, err := simplify.PostProcess(g)
		observability.Pipeline().OnSimplifyComplete(ctx,
			result.Simplify.Passes, result.Simplify.NodesRemoved, time.Since(simplifyStart), err)
		if err != nil {
			return nil, fmt.Errorf("post-process: %w", err)
		}
		result.Post = post
		result.Stats.SimplifyTime = time.Since(simplifyStart)

		logger.Info("simplified network",
			"passes", result.Simplify.Passes,
			"nodes_removed", result.Simplify.NodesRemoved,
			"edges_merged", result.Simplify.MergedEdges,
			"components_pruned", result.Post.ComponentsRemoved,
			"duration", result.Stats.SimplifyTime)
	}

	result.Graph = g
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	// Serialize once: the same bytes serve the content hash, the cache
	// entry, and the JSON artifact.
	data, err := graphio.MarshalGraph(g)
	if err != nil {
		return nil, fmt.Errorf("serialize graph: %w", err)
	}
	result.GraphHash = cache.Hash(data)
	if graphKey != "" && !result.CacheInfo.GraphHit {
		_ = r.Cache.Set(ctx, graphKey, data, cache.TTLGraph)
		observability.Cache().OnCacheSet(ctx, "graph", len(data))
	}

	// Stage 3: Export
	exportStart := time.Now()
	observability.Pipeline().OnExportStart(ctx, opts.Formats)
	artifacts, exportHit, err := r.export(ctx, g, data, result.GraphHash, opts)
	observability.Pipeline().OnExportComplete(ctx, opts.Formats, time.Since(exportStart), err)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	result.Artifacts = artifacts
	result.CacheInfo.ArtifactHit = exportHit
	result.Stats.ExportTime = time.Since(exportStart)

	logger.Info("exported artifacts",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	return result, nil
}

// GraphWithCacheInfo loads and simplifies a road graph with caching and
// returns cache hit info. Callers that want artifacts too should use
// [Runner.Execute] instead.
func (r *Runner) GraphWithCacheInfo(ctx context.Context, opts Options) (*graph.Graph, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, false, err
	}

	key := r.graphCacheKey(opts)

	// Try cache first (unless refresh requested)
	if key != "" && !opts.Refresh {
		if g := r.cachedGraph(ctx, key); g != nil {
			return g, true, nil // Cache hit
		}
	}

	g, err := r.Load(ctx, opts)
	if err != nil {
		return nil, false, err
	}
	if !opts.SkipSimplify {
		simplify.ContractWithOptions(g, simplify.Options{MaxPasses: opts.MaxPasses})
		if _, err := simplify.PostProcess(g); err != nil {
			return nil, false, err
		}
	}

	// Cache the result
	if key != "" {
		if data, err := graphio.MarshalGraph(g); err == nil {
			_ = r.Cache.Set(ctx, key, data, cache.TTLGraph)
		}
	}

	return g, false, nil // Cache miss
}

// Graph is a convenience wrapper that calls GraphWithCacheInfo and discards the cache hit info.
func (r *Runner) Graph(ctx context.Context, opts Options) (*graph.Graph, error) {
	g, _, err := r.GraphWithCacheInfo(ctx, opts)
	return g, err
}

// ExportWithCacheInfo produces the requested artifacts for a graph with
// caching and returns cache hit info. The hit flag covers rendered images
// only; structured formats are cheap enough to regenerate every time.
func (r *Runner) ExportWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	opts.SetExportDefaults()
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}

	data, err := graphio.MarshalGraph(g)
	if err != nil {
		return nil, false, fmt.Errorf("serialize graph for cache key: %w", err)
	}
	return r.export(ctx, g, data, cache.Hash(data), opts)
}

// Export is a convenience wrapper that calls ExportWithCacheInfo and discards the cache hit info.
func (r *Runner) Export(ctx context.Context, g *graph.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.ExportWithCacheInfo(ctx, g, opts)
	return artifacts, err
}

// export produces artifacts keyed by file name. data must be the MarshalGraph
// bytes of g and graphHash their content hash.
func (r *Runner) export(ctx context.Context, g *graph.Graph, data []byte, graphHash string, opts Options) (map[string][]byte, bool, error) {
	artifacts := make(map[string][]byte, len(opts.Formats)+1)

	// DOT source is shared by the dot, svg, and png formats.
	var dot string
	renderDOT := func() string {
		if dot == "" {
			dot = render.ToDOT(g, render.Options{Labels: opts.Labels, Width: opts.Width})
		}
		return dot
	}

	images, imageHits := 0, 0
	for _, format := range opts.Formats {
		switch format {
		case FormatJSON:
			artifacts["graph.json"] = data

		case FormatCSV:
			var nodes, edges bytes.Buffer
			if err := graphio.WriteNodeTable(g, &nodes); err != nil {
				return nil, false, err
			}
			if err := graphio.WriteEdgeTable(g, &edges); err != nil {
				return nil, false, err
			}
			artifacts["nodes.csv"] = nodes.Bytes()
			artifacts["edges.csv"] = edges.Bytes()

		case FormatDOT:
			artifacts["map.dot"] = []byte(renderDOT())

		case FormatSVG, FormatPNG:
			images++
			name := "map." + format
			key := r.Keyer.ArtifactKey(graphHash, opts.ArtifactKeyOpts(format))
			if !opts.Refresh {
				if cached, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
					observability.Cache().OnCacheHit(ctx, "artifact")
					artifacts[name] = cached
					imageHits++
					continue
				}
				observability.Cache().OnCacheMiss(ctx, "artifact")
			}
			img, err := renderImage(renderDOT(), format)
			if err != nil {
				return nil, false, err
			}
			artifacts[name] = img
			_ = r.Cache.Set(ctx, key, img, cache.TTLArtifact)
			observability.Cache().OnCacheSet(ctx, "artifact", len(img))
		}
	}

	return artifacts, images > 0 && imageHits == images, nil
}

// renderImage rasterizes DOT source into the requested image format.
func renderImage(dot, format string) ([]byte, error) {
	switch format {
	case FormatSVG:
		return render.SVG(dot)
	case FormatPNG:
		return render.PNG(dot, DefaultPNGScale)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "no renderer for format %q", format)
}

// Load reads a road network from the configured input without simplifying or
// caching. The input format is resolved from the file extension when not set
// explicitly.
func (r *Runner) Load(ctx context.Context, opts Options) (*graph.Graph, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	switch opts.InputFormat {
	case InputPBF:
		return osm.LoadPBF(ctx, opts.Input, osm.Options{Filter: opts.Filter(), Logger: opts.Logger})
	case InputJSON:
		return graphio.ImportJSON(opts.Input)
	case InputCSV:
		return graphio.ImportCSV(opts.Input, opts.EdgesInput)
	}
	return nil, errors.New(errors.ErrCodeUnsupported, "no loader for input format %q", opts.InputFormat)
}

// graphCacheKey returns the cache key for the simplified graph, or the empty
// string when the run is not cacheable (simplification skipped, or the input
// cannot be fingerprinted).
func (r *Runner) graphCacheKey(opts Options) string {
	if opts.SkipSimplify {
		return ""
	}
	fp, err := sourceFingerprint(opts)
	if err != nil {
		return ""
	}
	return r.Keyer.GraphKey(fp, opts.GraphKeyOpts())
}

// sourceFingerprint hashes the input file contents. CSV input combines the
// node and edge table hashes.
func sourceFingerprint(opts Options) (string, error) {
	h, err := cache.HashFile(opts.Input)
	if err != nil {
		return "", err
	}
	if opts.EdgesInput != "" {
		eh, err := cache.HashFile(opts.EdgesInput)
		if err != nil {
			return "", err
		}
		h = cache.Hash([]byte(h + eh))
	}
	return h, nil
}

// cachedGraph returns the cached simplified graph, or nil on a miss or when
// the entry fails to deserialize.
func (r *Runner) cachedGraph(ctx context.Context, key string) *graph.Graph {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "graph")
		return nil
	}
	g, err := graphio.UnmarshalGraph(data)
	if err != nil {
		// Stale or corrupt entry counts as a miss.
		observability.Cache().OnCacheMiss(ctx, "graph")
		return nil
	}
	observability.Cache().OnCacheHit(ctx, "graph")
	return g
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
