package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matzehuels/stratum/pkg/core/network"
	"github.com/matzehuels/stratum/pkg/errors"
)

type graph struct {
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type node struct {
	ID   string           `json:"id"`
	Meta network.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From   string           `json:"from"`
	To     string           `json:"to"`
	Source string           `json:"source,omitempty"`
	Target string           `json:"target,omitempty"`
	Weight *float64         `json:"weight,omitempty"`
	Meta   network.Metadata `json:"meta,omitempty"`
}

// ReadJSON decodes a JSON graph document from r into a network.
//
// Each node must have a non-empty "id" without control characters; IDs are
// trimmed of surrounding whitespace. Each edge needs "from"/"to" (or
// "source"/"target"); "weight" is optional and must be finite and not
// negative.
//
// ReadJSON returns an error if:
//   - The JSON is malformed
//   - A node ID is invalid or duplicated
//   - An edge has a negative or out-of-range weight
//
// Errors are wrapped with context describing which node or edge caused the
// problem. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*network.Network, error) {
	var data graph
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}

	net := network.New(nil)
	for _, n := range data.Nodes {
		id := strings.TrimSpace(n.ID)
		if err := errors.ValidateNodeID(id); err != nil {
			return nil, err
		}
		if err := net.AddNode(network.Node{ID: id, Meta: n.Meta}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %s", id)
		}
	}
	for _, e := range data.Edges {
		from, to := firstNonEmpty(e.From, e.Source), firstNonEmpty(e.To, e.Target)
		w := network.DefaultWeight
		if e.Weight != nil {
			w = *e.Weight
		}
		if err := net.AddEdge(network.Edge{From: from, To: to, Weight: w, Meta: e.Meta}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge %s->%s", from, to)
		}
	}

	return net, nil
}

// ImportJSON reads a JSON file at path and returns the decoded network.
func ImportJSON(path string) (*network.Network, error) {
	f, err := open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadJSON(f)
}

func open(path string) (*os.File, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return f, nil
}

func firstNonEmpty(a, b string) string {
	if a = strings.TrimSpace(a); a != "" {
		return a
	}
	return strings.TrimSpace(b)
}
