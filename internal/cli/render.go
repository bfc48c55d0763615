package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	graphio "github.com/waymerge/waymerge/pkg/io"
	"github.com/waymerge/waymerge/pkg/pipeline"
	"github.com/waymerge/waymerge/pkg/render"
)

// validRenderFormats is the subset of output formats the render command
// accepts. Structured exports belong to the simplify command.
var validRenderFormats = map[string]bool{
	pipeline.FormatSVG: true,
	pipeline.FormatPNG: true,
	pipeline.FormatDOT: true,
}

// renderCommand creates the render command for drawing exported graphs.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		outputDir  string
		formatsStr string
		scale      float64
	)
	ropts := render.Options{}

	cmd := &cobra.Command{
		Use:   "render [graphs...]",
		Short: "Render exported road graphs to SVG, PNG, or DOT",
		Long: `Render one or more exported graph JSON files as drawings with every
node pinned at its geographic position.

Multiple inputs render concurrently and produce one file per input and
format, named after the input. This suits frame sequences exported from
progressive simplification runs.

Examples:
  waymerge render bologna_simplified.json
  waymerge render frames/*.json -f png -o rendered/
  waymerge render net.json -f svg,dot --label-names`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			if len(formats) == 0 {
				formats = []string{pipeline.FormatSVG}
			}
			for _, f := range formats {
				if !validRenderFormats[f] {
					return fmt.Errorf("invalid render format: %q (must be one of: svg, png, dot)", f)
				}
			}
			return c.runRender(cmd.Context(), args, formats, outputDir, scale, ropts)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "o", ".", "directory for rendered files")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")
	cmd.Flags().Float64Var(&scale, "scale", pipeline.DefaultPNGScale, "PNG raster scale")
	cmd.Flags().BoolVar(&ropts.Labels, "label-names", false, "draw street names on edges")
	cmd.Flags().Float64Var(&ropts.Width, "width", 0, "drawing width in points")

	return cmd
}

// runRender loads every input, renders the batch, and writes one file per
// input and format into outputDir.
func (c *CLI) runRender(ctx context.Context, inputs, formats []string, outputDir string, scale float64, ropts render.Options) error {
	frames := make([]render.Frame, 0, len(inputs))
	seen := make(map[string]string, len(inputs))
	for _, input := range inputs {
		g, err := graphio.ImportJSON(input)
		if err != nil {
			return fmt.Errorf("load %s: %w", input, err)
		}
		name := frameName(input)
		if prev, ok := seen[name]; ok {
			return fmt.Errorf("%s and %s map to the same output name %q", prev, input, name)
		}
		seen[name] = input
		frames = append(frames, render.Frame{Name: name, Graph: g, Opts: ropts})
		c.Logger.Debug("loaded graph", "input", input, "nodes", g.NodeCount(), "edges", g.EdgeCount())
	}

	// SVG and PNG both need the rendered images; DOT alone does not.
	needImages := false
	for _, f := range formats {
		if f == pipeline.FormatSVG || f == pipeline.FormatPNG {
			needImages = true
		}
	}

	var images map[string][]byte
	if needImages {
		msg := fmt.Sprintf("Rendering %d graphs...", len(frames))
		if len(frames) == 1 {
			msg = fmt.Sprintf("Rendering %s...", inputs[0])
		}
		sp := newSpinner(ctx, msg)
		var err error
		images, err = render.Frames(ctx, frames)
		if err != nil {
			if ctx.Err() != nil {
				sp.stop()
				return ctx.Err()
			}
			sp.stopError("Rendering failed")
			return fmt.Errorf("render: %w", err)
		}
		sp.stop()
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var paths []string
	for _, frame := range frames {
		for _, format := range formats {
			var data []byte
			var err error
			switch format {
			case pipeline.FormatSVG:
				data = images[frame.Name]
			case pipeline.FormatPNG:
				data, err = render.ToPNG(images[frame.Name], scale)
			case pipeline.FormatDOT:
				data = []byte(render.ToDOT(frame.Graph, frame.Opts))
			}
			if err != nil {
				return fmt.Errorf("%s/%s: %w", frame.Name, format, err)
			}

			path := filepath.Join(outputDir, frame.Name+"."+format)
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			paths = append(paths, path)
		}
	}

	printSuccess("Rendered %d graphs", len(frames))
	for _, p := range paths {
		printFile(p)
	}
	return nil
}
