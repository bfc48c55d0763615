package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/paulmach/orb"

	"github.com/waymerge/waymerge/pkg/graph"
)

type document struct {
	Nodes []nodeRecord `json:"nodes"`
	Edges []edgeRecord `json:"edges"`
}

type nodeRecord struct {
	ID int64   `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

type edgeRecord struct {
	U        int64          `json:"u"`
	V        int64          `json:"v"`
	Name     string         `json:"name,omitempty"`
	Lanes    int            `json:"lanes,omitempty"`
	Length   float64        `json:"length"`
	Geometry orb.LineString `json:"geometry,omitempty"`
}

// WriteJSON encodes a road graph as JSON and writes it to w.
// The output includes every node coordinate and every edge with its full
// geometry, and can be re-imported with [ReadJSON] for round-trip processing.
// Nodes ascend by ID and edges keep insertion order, so output for a given
// graph is deterministic.
func WriteJSON(g *graph.Graph, w io.Writer) error {
	out := buildDocument(g)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a road graph to a JSON file at path.
// This is a convenience wrapper around [WriteJSON] for file-based output.
func ExportJSON(g *graph.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(g, f)
}

// MarshalGraph returns the JSON document as a byte slice, suitable for cache
// payloads.
func MarshalGraph(g *graph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func buildDocument(g *graph.Graph) document {
	ids := g.NodeIDs()
	edges := g.Edges()

	out := document{
		Nodes: make([]nodeRecord, len(ids)),
		Edges: make([]edgeRecord, len(edges)),
	}
	for i, id := range ids {
		n, _ := g.Node(id)
		out.Nodes[i] = nodeRecord{ID: int64(id), X: n.Point[0], Y: n.Point[1]}
	}
	for i, e := range edges {
		out.Edges[i] = edgeRecord{
			U:        int64(e.From),
			V:        int64(e.To),
			Name:     e.Name,
			Lanes:    e.Lanes,
			Length:   e.Length,
			Geometry: e.Geometry,
		}
	}
	return out
}
