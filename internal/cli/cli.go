// Package cli implements the waymerge command-line interface.
//
// The package provides commands for simplifying road networks from
// OpenStreetMap extracts or previously exported graph files, rendering
// them as images, browsing them interactively, and managing the result
// cache. Commands are built with cobra; logging uses charmbracelet/log
// with a --verbose flag handled in main.
//
// # Commands
//
//   - simplify: contract a road network and export the result
//   - stats: summarize a network before and after contraction
//   - render: draw exported graphs as SVG, PNG, or DOT
//   - inspect: browse network edges in an interactive table
//   - cache: manage the on-disk result cache
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/waymerge/waymerge/pkg/buildinfo"
	"github.com/waymerge/waymerge/pkg/cache"
	"github.com/waymerge/waymerge/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "waymerge"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance logging to w at the given level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Simplify road networks into topological graphs",
		Long: `Waymerge turns raw road networks into compact topological graphs.

It loads OpenStreetMap extracts (or previously exported JSON/CSV graphs),
contracts pass-through nodes while preserving connections and driving
distance, and exports the result as JSON, CSV, DOT, SVG, or PNG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	// Register all subcommands
	root.AddCommand(c.simplifyCommand())
	root.AddCommand(c.statsCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool, cfg pipeline.Config) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache, cfg)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger), nil
}

// newCache selects the cache backend: disabled, Redis when configured, or
// the file cache under the user cache directory. An unreachable Redis falls
// back to the file cache so a cache outage never blocks the pipeline.
func (c *CLI) newCache(ctx context.Context, noCache bool, cfg pipeline.Config) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	if cfg.Redis != "" {
		rc, err := cache.NewRedisCache(ctx, cfg.Redis)
		if err == nil {
			return rc, nil
		}
		c.Logger.Warn("redis unreachable, falling back to file cache", "addr", cfg.Redis, "err", err)
	}
	dir := cfg.CacheDir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/waymerge/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// applyConfig loads the TOML config at path and fills option fields the
// flags left unset. An empty path is a no-op. The returned Config carries
// the cache settings, which belong to the runner rather than the options.
func applyConfig(path string, opts *pipeline.Options) (pipeline.Config, error) {
	if path == "" {
		return pipeline.Config{}, nil
	}
	cfg, err := pipeline.LoadConfig(path)
	if err != nil {
		return pipeline.Config{}, err
	}
	cfg.Apply(opts)
	return cfg, nil
}

// parseFormats parses a comma-separated format string into a slice,
// lowercasing entries and dropping blanks and duplicates. An empty string
// yields nil so pipeline defaults apply.
func parseFormats(s string) []string {
	seen := make(map[string]bool)
	var formats []string
	for _, part := range strings.Split(s, ",") {
		f := strings.ToLower(strings.TrimSpace(part))
		if f == "" || seen[f] {
			continue
		}
		seen[f] = true
		formats = append(formats, f)
	}
	return formats
}
