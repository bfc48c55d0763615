package io

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/waymerge/waymerge/pkg/errors"
	"github.com/waymerge/waymerge/pkg/graph"
)

// tableSeparator is the field separator of the CSV tables.
const tableSeparator = ';'

var (
	nodeHeader = []string{"id", "x", "y"}
	edgeHeader = []string{"u", "v", "length", "lanes", "name"}
)

// WriteNodeTable writes the node table to w: one row per node with its ID
// and coordinates, ascending by ID.
func WriteNodeTable(g *graph.Graph, w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = tableSeparator

	if err := cw.Write(nodeHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, id := range g.NodeIDs() {
		n, _ := g.Node(id)
		record := []string{
			strconv.FormatInt(int64(id), 10),
			formatFloat(n.Point[0]),
			formatFloat(n.Point[1]),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write node %d: %w", id, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteEdgeTable writes the edge table to w: one row per directed edge in
// insertion order. Geometry is not part of the tables; consumers needing it
// use the JSON document.
func WriteEdgeTable(g *graph.Graph, w io.Writer) error {
	cw := csv.NewWriter(w)
	cw.Comma = tableSeparator

	if err := cw.Write(edgeHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range g.Edges() {
		record := []string{
			strconv.FormatInt(int64(e.From), 10),
			strconv.FormatInt(int64(e.To), 10),
			formatFloat(e.Length),
			strconv.Itoa(e.Lanes),
			e.Name,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write edge %d->%d: %w", e.From, e.To, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the node and edge tables to two files.
func ExportCSV(g *graph.Graph, nodesPath, edgesPath string) error {
	nf, err := os.Create(nodesPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", nodesPath, err)
	}
	defer nf.Close()
	if err := WriteNodeTable(g, nf); err != nil {
		return err
	}

	ef, err := os.Create(edgesPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", edgesPath, err)
	}
	defer ef.Close()
	return WriteEdgeTable(g, ef)
}

// ReadCSV decodes a road graph from its two tables. Edges get straight-line
// geometry between their endpoints; duplicate rows for the same directed
// pair resolve by the duplicate rule. The decoded graph passes the same
// structural validation as [ReadJSON].
func ReadCSV(nodes, edges io.Reader) (*graph.Graph, error) {
	nodeRecords, err := parseNodeTable(nodes)
	if err != nil {
		return nil, err
	}
	edgeRecords, err := parseEdgeTable(edges)
	if err != nil {
		return nil, err
	}
	return buildGraph(document{Nodes: nodeRecords, Edges: edgeRecords})
}

// ImportCSV reads the node and edge tables from two files.
func ImportCSV(nodesPath, edgesPath string) (*graph.Graph, error) {
	nf, err := os.Open(nodesPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", nodesPath)
	}
	defer nf.Close()

	ef, err := os.Open(edgesPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", edgesPath)
	}
	defer ef.Close()

	return ReadCSV(nf, ef)
}

func parseNodeTable(r io.Reader) ([]nodeRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = tableSeparator

	if err := expectHeader(cr, nodeHeader, "nodes"); err != nil {
		return nil, err
	}

	var records []nodeRecord
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "nodes row %d", row)
		}

		id, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "nodes row %d: id", row)
		}
		x, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "nodes row %d: x", row)
		}
		y, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "nodes row %d: y", row)
		}
		records = append(records, nodeRecord{ID: id, X: x, Y: y})
	}
}

func parseEdgeTable(r io.Reader) ([]edgeRecord, error) {
	cr := csv.NewReader(r)
	cr.Comma = tableSeparator

	if err := expectHeader(cr, edgeHeader, "edges"); err != nil {
		return nil, err
	}

	var records []edgeRecord
	for row := 2; ; row++ {
		record, err := cr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "edges row %d", row)
		}

		u, err := strconv.ParseInt(record[0], 10, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "edges row %d: u", row)
		}
		v, err := strconv.ParseInt(record[1], 10, 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "edges row %d: v", row)
		}
		length, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "edges row %d: length", row)
		}
		lanes, err := strconv.Atoi(record[3])
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "edges row %d: lanes", row)
		}
		records = append(records, edgeRecord{U: u, V: v, Length: length, Lanes: lanes, Name: record[4]})
	}
}

// expectHeader consumes the first row and checks it names the expected
// columns in order.
func expectHeader(cr *csv.Reader, want []string, table string) error {
	got, err := cr.Read()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidFormat, err, "%s table header", table)
	}
	if !slices.Equal(got, want) {
		return errors.New(errors.ErrCodeInvalidFormat, "%s table header %v, want %v", table, got, want)
	}
	return nil
}

// formatFloat renders coordinates and lengths with the shortest decimal
// representation that round-trips exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
