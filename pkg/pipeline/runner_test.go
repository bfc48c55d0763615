package pipeline

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/paulmach/orb"

	"github.com/waymerge/waymerge/pkg/cache"
	"github.com/waymerge/waymerge/pkg/graph"
	graphio "github.com/waymerge/waymerge/pkg/io"
	"github.com/waymerge/waymerge/pkg/observability"
)

func silentLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// chainGraph builds a one-way chain 1 → 2 → 3 where node 2 is a pass-through
// that contraction removes.
func chainGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	nodes := []graph.Node{
		{ID: 1, Point: orb.Point{11.34, 44.49}},
		{ID: 2, Point: orb.Point{11.35, 44.49}},
		{ID: 3, Point: orb.Point{11.36, 44.49}},
	}
	for _, n := range nodes {
		if err := g.AddNode(n); err != nil {
			t.Fatalf("AddNode(%d) failed: %v", n.ID, err)
		}
	}
	edges := []graph.Edge{
		{From: 1, To: 2, Length: 790.25},
		{From: 2, To: 3, Length: 801.75},
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%d->%d) failed: %v", e.From, e.To, err)
		}
	}
	return g
}

// writeFixture exports the chain graph as a JSON input file.
func writeFixture(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chain.json")
	if err := graphio.ExportJSON(chainGraph(t), path); err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	return path
}

func TestRunnerExecute(t *testing.T) {
	r := NewRunner(nil, nil, silentLogger())
	input := writeFixture(t)

	result, err := r.Execute(context.Background(), Options{Input: input})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	if result.Stats.InputNodes != 3 || result.Stats.InputEdges != 2 {
		t.Errorf("input counts = %d nodes, %d edges, want 3, 2",
			result.Stats.InputNodes, result.Stats.InputEdges)
	}
	if result.Stats.NodeCount != 2 || result.Stats.EdgeCount != 1 {
		t.Errorf("final counts = %d nodes, %d edges, want 2, 1",
			result.Stats.NodeCount, result.Stats.EdgeCount)
	}
	if result.Simplify.NodesRemoved != 1 {
		t.Errorf("NodesRemoved = %d, want 1", result.Simplify.NodesRemoved)
	}
	if result.CacheInfo.GraphHit {
		t.Error("First run should not hit the cache")
	}
	if result.GraphHash == "" {
		t.Error("GraphHash should be set")
	}

	e, ok := result.Graph.Edge(1, 3)
	if !ok {
		t.Fatal("merged edge 1->3 missing")
	}
	if want := 790.25 + 801.75; e.Length != want {
		t.Errorf("merged length = %v, want %v", e.Length, want)
	}
}

func TestRunnerExecute_DefaultFormat(t *testing.T) {
	r := NewRunner(nil, nil, silentLogger())
	input := writeFixture(t)

	result, err := r.Execute(context.Background(), Options{Input: input})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	data, ok := result.Artifacts["graph.json"]
	if !ok {
		t.Fatalf("graph.json artifact missing, got %v", artifactNames(result))
	}
	g, err := graphio.UnmarshalGraph(data)
	if err != nil {
		t.Fatalf("artifact did not round-trip: %v", err)
	}
	if g.NodeCount() != 2 {
		t.Errorf("artifact nodes = %d, want 2", g.NodeCount())
	}
}

func TestRunnerExecute_CSVFormat(t *testing.T) {
	r := NewRunner(nil, nil, silentLogger())
	input := writeFixture(t)

	result, err := r.Execute(context.Background(), Options{
		Input:   input,
		Formats: []string{FormatCSV},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	nodes, ok := result.Artifacts["nodes.csv"]
	if !ok {
		t.Fatalf("nodes.csv artifact missing, got %v", artifactNames(result))
	}
	edges, ok := result.Artifacts["edges.csv"]
	if !ok {
		t.Fatalf("edges.csv artifact missing, got %v", artifactNames(result))
	}
	if _, ok := result.Artifacts["graph.json"]; ok {
		t.Error("graph.json should not be produced unless requested")
	}

	g, err := graphio.ReadCSV(bytes.NewReader(nodes), bytes.NewReader(edges))
	if err != nil {
		t.Fatalf("CSV artifacts did not round-trip: %v", err)
	}
	if g.NodeCount() != 2 || g.EdgeCount() != 1 {
		t.Errorf("round-trip = %d nodes, %d edges, want 2, 1", g.NodeCount(), g.EdgeCount())
	}
}

func TestRunnerExecute_DOTFormat(t *testing.T) {
	r := NewRunner(nil, nil, silentLogger())
	input := writeFixture(t)

	result, err := r.Execute(context.Background(), Options{
		Input:   input,
		Formats: []string{FormatDOT},
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	dot := string(result.Artifacts["map.dot"])
	if !strings.Contains(dot, "digraph G {") {
		t.Errorf("map.dot does not look like DOT source:\n%s", dot)
	}
	if !strings.Contains(dot, `"1" -> "3"`) {
		t.Errorf("map.dot missing merged edge:\n%s", dot)
	}
}

func TestRunnerExecute_GraphCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	r := NewRunner(fc, nil, silentLogger())
	input := writeFixture(t)
	opts := Options{Input: input}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute failed: %v", err)
	}
	if first.CacheInfo.GraphHit {
		t.Error("first run should miss the graph cache")
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}
	if !second.CacheInfo.GraphHit {
		t.Error("second run should hit the graph cache")
	}
	if second.Simplify.Passes != 0 {
		t.Error("cached graph should skip simplification")
	}
	if second.Stats.NodeCount != 2 || second.Stats.EdgeCount != 1 {
		t.Errorf("cached counts = %d nodes, %d edges, want 2, 1",
			second.Stats.NodeCount, second.Stats.EdgeCount)
	}
	if second.GraphHash != first.GraphHash {
		t.Errorf("GraphHash changed across runs: %s vs %s", first.GraphHash, second.GraphHash)
	}

	// Refresh bypasses the cache read
	third, err := r.Execute(context.Background(), Options{Input: input, Refresh: true})
	if err != nil {
		t.Fatalf("third Execute failed: %v", err)
	}
	if third.CacheInfo.GraphHit {
		t.Error("refresh run should not hit the cache")
	}
}

func TestRunnerExecute_SkipSimplify(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	r := NewRunner(fc, nil, silentLogger())
	input := writeFixture(t)
	opts := Options{Input: input, SkipSimplify: true}

	result, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Stats.NodeCount != 3 || result.Stats.EdgeCount != 2 {
		t.Errorf("counts = %d nodes, %d edges, want 3, 2",
			result.Stats.NodeCount, result.Stats.EdgeCount)
	}
	if result.Simplify.Passes != 0 {
		t.Error("simplification should not run")
	}

	// Unsimplified runs are never cached
	again, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}
	if again.CacheInfo.GraphHit {
		t.Error("skip-simplify runs should not populate the graph cache")
	}
}

func TestRunnerExecute_InvalidOptions(t *testing.T) {
	r := NewRunner(nil, nil, silentLogger())

	if _, err := r.Execute(context.Background(), Options{}); err == nil {
		t.Error("Execute without input should fail")
	}

	input := writeFixture(t)
	_, err := r.Execute(context.Background(), Options{Input: input, Formats: []string{"gif"}})
	if err == nil {
		t.Error("Execute with unknown format should fail")
	}
}

func TestRunnerExecute_MissingInput(t *testing.T) {
	r := NewRunner(nil, nil, silentLogger())

	_, err := r.Execute(context.Background(), Options{
		Input: filepath.Join(t.TempDir(), "absent.json"),
	})
	if err == nil {
		t.Error("Execute over a missing file should fail")
	}
}

func TestRunnerGraph(t *testing.T) {
	r := NewRunner(nil, nil, silentLogger())
	input := writeFixture(t)

	g, err := r.Graph(context.Background(), Options{Input: input, SkipSimplify: true})
	if err != nil {
		t.Fatalf("Graph failed: %v", err)
	}
	if g.NodeCount() != 3 {
		t.Errorf("NodeCount = %d, want 3 without simplification", g.NodeCount())
	}
}

func TestRunnerGraphWithCacheInfo(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	r := NewRunner(fc, nil, silentLogger())
	input := writeFixture(t)
	opts := Options{Input: input}

	g, hit, err := r.GraphWithCacheInfo(context.Background(), opts)
	if err != nil {
		t.Fatalf("GraphWithCacheInfo failed: %v", err)
	}
	if hit {
		t.Error("first call should miss")
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount = %d, want 2 after simplification", g.NodeCount())
	}

	g, hit, err = r.GraphWithCacheInfo(context.Background(), opts)
	if err != nil {
		t.Fatalf("second GraphWithCacheInfo failed: %v", err)
	}
	if !hit {
		t.Error("second call should hit")
	}
	if g.NodeCount() != 2 {
		t.Errorf("cached NodeCount = %d, want 2", g.NodeCount())
	}
}

func TestRunnerExport(t *testing.T) {
	r := NewRunner(nil, nil, silentLogger())
	g := chainGraph(t)

	artifacts, err := r.Export(context.Background(), g, Options{
		Formats: []string{FormatJSON, FormatDOT},
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if _, ok := artifacts["graph.json"]; !ok {
		t.Error("graph.json artifact missing")
	}
	if _, ok := artifacts["map.dot"]; !ok {
		t.Error("map.dot artifact missing")
	}
}

func TestRunnerExecute_ArtifactCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	r := NewRunner(fc, nil, silentLogger())
	input := writeFixture(t)
	opts := Options{Input: input, Formats: []string{FormatSVG}}

	first, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute failed: %v", err)
	}
	if first.CacheInfo.ArtifactHit {
		t.Error("first run should render the image")
	}
	svg := first.Artifacts["map.svg"]
	if !bytes.Contains(svg, []byte("<svg")) {
		t.Errorf("map.svg does not look like SVG: %.80s", svg)
	}

	second, err := r.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}
	if !second.CacheInfo.ArtifactHit {
		t.Error("second run should serve the image from cache")
	}
	if !bytes.Equal(second.Artifacts["map.svg"], svg) {
		t.Error("cached image differs from the rendered one")
	}
}

func TestRunnerClose(t *testing.T) {
	r := NewRunner(nil, nil, silentLogger())
	if err := r.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

// recordingHooks captures observability events in arrival order.
type recordingHooks struct {
	observability.NoopPipelineHooks
	observability.NoopCacheHooks

	mu     sync.Mutex
	events []string
}

func (h *recordingHooks) record(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, name)
}

func (h *recordingHooks) take() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := h.events
	h.events = nil
	return out
}

func (h *recordingHooks) OnLoadStart(context.Context, string, string) { h.record("load_start") }
func (h *recordingHooks) OnLoadComplete(context.Context, string, string, int, int, time.Duration, error) {
	h.record("load_complete")
}
func (h *recordingHooks) OnSimplifyStart(context.Context, int) { h.record("simplify_start") }
func (h *recordingHooks) OnSimplifyComplete(context.Context, int, int, time.Duration, error) {
	h.record("simplify_complete")
}
func (h *recordingHooks) OnExportStart(context.Context, []string) { h.record("export_start") }
func (h *recordingHooks) OnExportComplete(context.Context, []string, time.Duration, error) {
	h.record("export_complete")
}
func (h *recordingHooks) OnCacheHit(_ context.Context, keyType string) {
	h.record("cache_hit:" + keyType)
}
func (h *recordingHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.record("cache_miss:" + keyType)
}
func (h *recordingHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.record("cache_set:" + keyType)
}

func TestRunnerExecute_EmitsObservabilityEvents(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	defer observability.Reset()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache failed: %v", err)
	}
	r := NewRunner(fc, nil, silentLogger())
	input := writeFixture(t)
	opts := Options{Input: input}

	if _, err := r.Execute(context.Background(), opts); err != nil {
		t.Fatalf("first Execute failed: %v", err)
	}
	want := []string{
		"cache_miss:graph",
		"load_start", "load_complete",
		"simplify_start", "simplify_complete",
		"cache_set:graph",
		"export_start", "export_complete",
	}
	if got := hooks.take(); !slices.Equal(got, want) {
		t.Errorf("cold run events = %v, want %v", got, want)
	}

	// A warm run serves the graph from cache and skips load and simplify.
	if _, err := r.Execute(context.Background(), opts); err != nil {
		t.Fatalf("second Execute failed: %v", err)
	}
	want = []string{"cache_hit:graph", "export_start", "export_complete"}
	if got := hooks.take(); !slices.Equal(got, want) {
		t.Errorf("warm run events = %v, want %v", got, want)
	}
}

func artifactNames(result *Result) []string {
	names := make([]string, 0, len(result.Artifacts))
	for name := range result.Artifacts {
		names = append(names, name)
	}
	return names
}
