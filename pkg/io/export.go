package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/stratum/pkg/core/network"
)

// WriteJSON encodes a network as JSON and writes it to w. Every edge is
// written, including edges naming unknown nodes, and every weight is
// explicit. The output can be re-imported with [ReadJSON].
func WriteJSON(net *network.Network, w io.Writer) error {
	nodes := net.Nodes()
	edges := net.Edges()
	out := graph{
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, len(edges)),
	}

	for i, n := range nodes {
		nd := node{ID: n.ID}
		if len(n.Meta) > 0 {
			nd.Meta = n.Meta
		}
		out.Nodes[i] = nd
	}
	for i, e := range edges {
		weight := e.Weight
		ed := edge{From: e.From, To: e.To, Weight: &weight}
		if len(e.Meta) > 0 {
			ed.Meta = e.Meta
		}
		out.Edges[i] = ed
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes a network to a JSON file at path.
func ExportJSON(net *network.Network, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteJSON(net, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
