package io

import (
	"bytes"
	"encoding/json"
	"io"
	"os"

	"github.com/paulmach/orb"

	"github.com/waymerge/waymerge/pkg/errors"
	"github.com/waymerge/waymerge/pkg/graph"
)

// ReadJSON decodes a JSON road graph from r.
//
// The input must be a JSON object with "nodes" and "edges" arrays as written
// by [WriteJSON]. Optional edge fields default sensibly: a missing geometry
// becomes the straight segment between the endpoints, lanes 0 records an
// unknown count. Duplicate rows for the same directed pair resolve by the
// duplicate rule before insertion.
//
// ReadJSON returns an error if:
//   - The JSON is malformed (INVALID_FORMAT)
//   - A node is declared twice with different coordinates (INVALID_GRAPH)
//   - An edge references an unknown node ID (INVALID_GRAPH)
//   - The decoded graph fails structural validation (INVALID_GRAPH)
//
// The returned graph is independent of r and can be modified safely.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*graph.Graph, error) {
	var data document
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph document")
	}
	return buildGraph(data)
}

// ImportJSON reads a JSON file at path and returns the decoded road graph.
// It returns the same validation errors as [ReadJSON], plus FILE_NOT_FOUND
// when the file cannot be opened.
func ImportJSON(path string) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	return ReadJSON(f)
}

// UnmarshalGraph decodes a JSON document from a byte slice, the counterpart
// of [MarshalGraph] for cache payloads.
func UnmarshalGraph(data []byte) (*graph.Graph, error) {
	return ReadJSON(bytes.NewReader(data))
}

func buildGraph(data document) (*graph.Graph, error) {
	g := graph.New()
	for _, n := range data.Nodes {
		node := graph.Node{ID: graph.NodeID(n.ID), Point: orb.Point{n.X, n.Y}}
		if err := g.AddNode(node); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "node %d", n.ID)
		}
	}

	candidates := make([]graph.Edge, 0, len(data.Edges))
	for _, e := range data.Edges {
		candidates = append(candidates, graph.Edge{
			From:     graph.NodeID(e.U),
			To:       graph.NodeID(e.V),
			Name:     e.Name,
			Lanes:    e.Lanes,
			Length:   e.Length,
			Geometry: e.Geometry,
		})
	}
	for _, e := range graph.ResolveParallel(candidates) {
		if err := g.AddEdge(e); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "edge %d->%d", e.From, e.To)
		}
	}

	if err := g.Validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidGraph, err, "validate graph")
	}
	return g, nil
}
