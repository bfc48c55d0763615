package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/waymerge/waymerge/pkg/pipeline"
)

// simplifyCommand creates the simplify command, the main entry point of the
// tool. It runs the full pipeline: load, contract, post-process, export.
func (c *CLI) simplifyCommand() *cobra.Command {
	var (
		output     string
		formatsStr string
		configPath string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "simplify [input]",
		Short: "Simplify a road network into a topological graph",
		Long: `Simplify a road network into a compact topological graph.

The input can be an OpenStreetMap extract (.osm.pbf), a previously exported
graph (.json), or a node table (.csv, with --edges). Chains of pass-through
nodes collapse into single edges that keep the accumulated driving distance,
small disconnected fragments and self loops are pruned, and the result is
exported in one or more formats.

Examples:
  waymerge simplify bologna.osm.pbf
  waymerge simplify bologna.osm.pbf -f json,svg --keep residential,primary
  waymerge simplify nodes.csv --edges edges.csv -o net.json
  waymerge simplify roads.json --no-simplify -f csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			opts.Formats = parseFormats(formatsStr)
			cfg, err := applyConfig(configPath, &opts)
			if err != nil {
				return err
			}
			return c.runSimplify(cmd.Context(), opts, output, noCache, cfg)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json (default), csv, dot, svg, png (comma-separated)")
	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "", "input format: pbf, json, csv (default: detect from extension)")
	cmd.Flags().StringVar(&opts.EdgesInput, "edges", "", "edge table path (CSV input)")
	cmd.Flags().StringSliceVar(&opts.Keep, "keep", nil, "highway classes to keep (default: principal road classes)")
	cmd.Flags().StringSliceVar(&opts.Drop, "drop", nil, "highway classes to drop from the kept set")
	cmd.Flags().IntVar(&opts.MaxPasses, "max-passes", 0, "bound contraction passes (0 = run to fixed point)")
	cmd.Flags().BoolVar(&opts.SkipSimplify, "no-simplify", false, "load and export without contraction")
	cmd.Flags().BoolVar(&opts.Labels, "label-names", false, "draw street names on rendered edges")
	cmd.Flags().Float64Var(&opts.Width, "width", 0, "rendered drawing width in points")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file")

	return cmd
}

// runSimplify executes the pipeline and writes the artifacts.
func (c *CLI) runSimplify(ctx context.Context, opts pipeline.Options, output string, noCache bool, cfg pipeline.Config) error {
	runner, err := c.newRunner(ctx, noCache, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	sp := newSpinner(ctx, fmt.Sprintf("Simplifying %s...", opts.Input))
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			sp.stop()
			return ctx.Err()
		}
		sp.stopError("Simplification failed")
		return fmt.Errorf("simplify: %w", err)
	}
	sp.stop()

	paths, err := writeArtifacts(result.Artifacts, basePath(output, opts.Input))
	if err != nil {
		return err
	}

	printSuccess("Simplified %s", opts.Input)
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, result.CacheInfo.GraphHit)
	if s := result.Simplify; s.NodesBefore > 0 {
		reduction := 100 * float64(s.NodesBefore-s.NodesAfter) / float64(s.NodesBefore)
		printDetail("Contracted %d nodes in %d passes (%.1f%% reduction)", s.NodesRemoved, s.Passes, reduction)
	}

	if jsonPath := pathWithExt(paths, ".json"); jsonPath != "" {
		printNewline()
		printNextStep("Render it", fmt.Sprintf("%s render %s", appName, jsonPath))
	}
	return nil
}

// pathWithExt returns the first path with the given extension, or "".
func pathWithExt(paths []string, ext string) string {
	for _, p := range paths {
		if filepath.Ext(p) == ext {
			return p
		}
	}
	return ""
}
