package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/waymerge/waymerge/pkg/pipeline"
)

// basePath derives the shared output stem for a run's artifacts.
//
// An explicit output keeps its path with any known format extension
// stripped, so "-o city.svg -f svg,png" writes city.svg and city.png.
// Without an output the stem comes from the input name, with ".osm"
// trimmed from extract names and "_simplified" appended so an export
// never clobbers a JSON or CSV input.
func basePath(output, input string) string {
	if output != "" {
		ext := filepath.Ext(output)
		if pipeline.ValidFormats[strings.TrimPrefix(strings.ToLower(ext), ".")] {
			return strings.TrimSuffix(output, ext)
		}
		return output
	}
	stem := strings.TrimSuffix(input, filepath.Ext(input))
	stem = strings.TrimSuffix(stem, ".osm")
	return stem + "_simplified"
}

// artifactPath maps a pipeline artifact name to its destination path. CSV
// artifacts keep their table name because nodes and edges are separate
// files; every other artifact contributes only its extension.
func artifactPath(base, name string) string {
	if filepath.Ext(name) == ".csv" {
		return base + "_" + name
	}
	return base + filepath.Ext(name)
}

// writeArtifacts writes every artifact next to base and returns the
// written paths in deterministic order.
func writeArtifacts(artifacts map[string][]byte, base string) ([]string, error) {
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	names := make([]string, 0, len(artifacts))
	for name := range artifacts {
		names = append(names, name)
	}
	sort.Strings(names)

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path := artifactPath(base, name)
		if err := os.WriteFile(path, artifacts[name], 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// frameName derives an output frame name from an input path: the file
// name with its extension and any ".osm" suffix stripped.
func frameName(input string) string {
	name := filepath.Base(input)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.TrimSuffix(name, ".osm")
}
