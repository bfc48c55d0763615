// Package pipeline chains loading, simplification, and export behind one
// entry point shared by every command.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a road network from an OSM extract, a JSON document, or
//     CSV tables.
//  2. Simplify: Contract interior nodes and post-process the result.
//  3. Export: Produce the requested artifacts (JSON, CSV, DOT, SVG, PNG).
//
// Simplified graphs and rendered images are cached by content fingerprint,
// so repeat runs over an unchanged extract skip straight to export.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Input:   "bologna.osm.pbf",
//	    Keep:    osm.PrincipalClasses,
//	    Formats: []string{"json", "svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["map.svg"]
package pipeline

import (
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/waymerge/waymerge/pkg/cache"
	"github.com/waymerge/waymerge/pkg/errors"
	"github.com/waymerge/waymerge/pkg/graph"
	"github.com/waymerge/waymerge/pkg/graph/simplify"
	"github.com/waymerge/waymerge/pkg/osm"
)

// DefaultPNGScale is the raster scale for PNG export. 2x suits high-DPI
// displays without bloating files.
const DefaultPNGScale = 2.0

// Output format constants.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatCSV:  true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
}

// Input format constants.
const (
	InputPBF  = "pbf"
	InputJSON = "json"
	InputCSV  = "csv"
)

// ValidInputFormats is the set of supported input formats.
var ValidInputFormats = map[string]bool{
	InputPBF:  true,
	InputJSON: true,
	InputCSV:  true,
}

// Options contains all configuration for the pipeline.
// The struct supports JSON serialization for job queues and logs.
type Options struct {
	// Load options
	Input       string   `json:"input"`
	EdgesInput  string   `json:"edges_input,omitempty"`  // edge table path, CSV input only
	InputFormat string   `json:"input_format,omitempty"` // pbf, json, csv; empty = detect by extension
	Keep        []string `json:"keep,omitempty"`         // highway classes to keep (PBF input)
	Drop        []string `json:"drop,omitempty"`         // highway classes to drop (PBF input)

	// Simplify options
	SkipSimplify bool `json:"skip_simplify,omitempty"` // load and export without contraction
	MaxPasses    int  `json:"max_passes,omitempty"`    // 0 = run to fixed point

	// Export options
	Formats []string `json:"formats,omitempty"`
	Labels  bool     `json:"labels,omitempty"` // street names on rendered edges
	Width   float64  `json:"width,omitempty"`  // rendered drawing width in points

	// Refresh bypasses the cache on read; results are still stored.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Graph is the final road graph, simplified unless SkipSimplify was set.
	Graph *graph.Graph

	// GraphHash is the content hash of the final graph.
	GraphHash string

	// Simplify holds contraction metrics. Zero when the graph came from
	// cache or simplification was skipped.
	Simplify simplify.Result

	// Post holds post-processing metrics, zero under the same conditions.
	Post simplify.PostStats

	// Artifacts contains exported outputs keyed by file name, for example
	// "graph.json" or "map.svg".
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	// InputNodes and InputEdges count the graph as loaded. Zero when the
	// simplified graph came from cache.
	InputNodes int
	InputEdges int

	// NodeCount and EdgeCount count the final graph.
	NodeCount int
	EdgeCount int

	LoadTime     time.Duration
	SimplifyTime time.Duration
	ExportTime   time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	GraphHit    bool // simplified graph came from cache
	ArtifactHit bool // every rendered image came from cache
}

// ValidateFormat checks that an output format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid format: %q (must be one of: json, csv, dot, svg, png)", format)
	}
	return nil
}

// ValidateFormats checks that all output formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateInputFormat checks that an input format is supported.
func ValidateInputFormat(format string) error {
	if !ValidInputFormats[format] {
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid input format: %q (must be one of: pbf, json, csv)", format)
	}
	return nil
}

// ValidateAndSetDefaults checks required fields and applies defaults for the
// full pipeline. The method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	o.SetExportDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks required fields for loading, resolves the input
// format from the file extension when unset, and applies load defaults.
func (o *Options) ValidateForLoad() error {
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "input is required")
	}
	if o.InputFormat == "" {
		o.InputFormat = detectInputFormat(o.Input)
		if o.InputFormat == "" {
			return errors.New(errors.ErrCodeInvalidConfig,
				"cannot detect input format of %q; set input_format", o.Input)
		}
	}
	if err := ValidateInputFormat(o.InputFormat); err != nil {
		return err
	}
	if o.InputFormat == InputCSV && o.EdgesInput == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "edges_input is required for csv input")
	}
	if err := o.Filter().Validate(); err != nil {
		return err
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetExportDefaults sets default values for the export stage.
func (o *Options) SetExportDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// Filter returns the highway-class filter for PBF loading.
func (o *Options) Filter() osm.Filter {
	return osm.Filter{Keep: o.Keep, Drop: o.Drop}
}

// GraphKeyOpts returns cache key options for the simplified graph.
func (o *Options) GraphKeyOpts() cache.GraphKeyOpts {
	return cache.GraphKeyOpts{
		Keep:      o.Keep,
		Drop:      o.Drop,
		MaxPasses: o.MaxPasses,
	}
}

// ArtifactKeyOpts returns cache key options for a rendered artifact.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Labels: o.Labels,
		Width:  o.Width,
	}
}

// detectInputFormat maps a file extension to an input format. Unknown
// extensions return the empty string.
func detectInputFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pbf", ".osm":
		return InputPBF
	case ".json":
		return InputJSON
	case ".csv":
		return InputCSV
	}
	return ""
}
