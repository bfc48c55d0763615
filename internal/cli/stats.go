package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/waymerge/waymerge/pkg/pipeline"
)

// statsCommand creates the stats command for summarizing a network.
func (c *CLI) statsCommand() *cobra.Command {
	var (
		configPath string
		noCache    bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "stats [input]",
		Short: "Summarize a road network before and after simplification",
		Long: `Summarize a road network: node and edge counts, total length, and
what the contraction did. With --no-simplify the summary describes the
network as loaded.

Contraction metrics are only available when the graph is actually
computed; a cached result shows the summary alone.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Input = args[0]
			opts.Formats = []string{pipeline.FormatJSON}
			cfg, err := applyConfig(configPath, &opts)
			if err != nil {
				return err
			}
			return c.runStats(cmd.Context(), opts, noCache, cfg)
		},
	}

	cmd.Flags().StringVar(&opts.InputFormat, "input-format", "", "input format: pbf, json, csv (default: detect from extension)")
	cmd.Flags().StringVar(&opts.EdgesInput, "edges", "", "edge table path (CSV input)")
	cmd.Flags().StringSliceVar(&opts.Keep, "keep", nil, "highway classes to keep (default: principal road classes)")
	cmd.Flags().StringSliceVar(&opts.Drop, "drop", nil, "highway classes to drop from the kept set")
	cmd.Flags().IntVar(&opts.MaxPasses, "max-passes", 0, "bound contraction passes (0 = run to fixed point)")
	cmd.Flags().BoolVar(&opts.SkipSimplify, "no-simplify", false, "summarize the network as loaded")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().StringVar(&configPath, "config", "", "TOML config file")

	return cmd
}

// runStats executes the pipeline and prints a two-section summary.
func (c *CLI) runStats(ctx context.Context, opts pipeline.Options, noCache bool, cfg pipeline.Config) error {
	runner, err := c.newRunner(ctx, noCache, cfg)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	prog := newProgress(c.Logger)
	result, err := runner.Execute(ctx, opts)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("stats: %w", err)
	}
	prog.done(fmt.Sprintf("Processed %s", opts.Input))

	g := result.Graph
	printNewline()
	fmt.Println(StyleTitle.Render("Network Summary"))
	printKeyValue("Nodes", fmt.Sprintf("%d", g.NodeCount()))
	printKeyValue("Edges", fmt.Sprintf("%d", g.EdgeCount()))
	printKeyValue("Length", formatLength(g.TotalLength()))

	if s := result.Simplify; s.Passes > 0 {
		printNewline()
		fmt.Println(StyleTitle.Render("Simplification"))
		printKeyValue("Passes", fmt.Sprintf("%d", s.Passes))
		printKeyValue("Contracted", fmt.Sprintf("%d nodes", s.NodesRemoved))
		printKeyValue("Merged", fmt.Sprintf("%d edges", s.MergedEdges))
		printKeyValue("Parallels", fmt.Sprintf("%d pruned", s.ParallelPruned))
		printKeyValue("Components", fmt.Sprintf("%d pruned", result.Post.ComponentsRemoved))
		printKeyValue("Self loops", fmt.Sprintf("%d removed", result.Post.SelfLoopsRemoved))
		if s.NodesBefore > 0 {
			pct := 100 * float64(s.NodesBefore-s.NodesAfter) / float64(s.NodesBefore)
			printKeyValue("Reduction", fmt.Sprintf("%.1f%%", pct))
		}
	}
	return nil
}
