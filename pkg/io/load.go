package io

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/stratum/pkg/core/network"
	"github.com/matzehuels/stratum/pkg/errors"
	"github.com/matzehuels/stratum/pkg/schema"
)

// Dataset is a loaded network together with the records it was built from.
type Dataset struct {
	Network  *network.Network
	Problems []schema.Problem
	Edges    []schema.EdgeRecord
}

// BuildNetwork assembles a network from decoded records. Problems with a
// blank id are skipped. Duplicate ids and negative weights are errors; run
// schema validation first to get every issue at once.
func BuildNetwork(problems []schema.Problem, edges []schema.EdgeRecord) (*network.Network, error) {
	net := network.New(nil)
	for i := range problems {
		p := &problems[i]
		if p.ID == "" {
			continue
		}
		if err := net.AddNode(network.Node{ID: p.ID, Meta: p.Meta()}); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "problems row %d: node %s", p.Row, p.ID)
		}
	}
	for _, e := range edges {
		err := net.AddEdge(network.Edge{
			From:   e.Source,
			To:     e.Target,
			Weight: e.Weight,
			Meta:   network.Metadata{"row": e.Row},
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRecord, err, "edges row %d: %s->%s", e.Row, e.Source, e.Target)
		}
	}
	return net, nil
}

// ProblemsFromNetwork rebuilds problem records from node metadata, for
// inputs (such as JSON documents) that carry no problems table. Columns are
// id followed by the union of metadata keys, sorted.
func ProblemsFromNetwork(net *network.Network) []schema.Problem {
	keys := map[string]struct{}{}
	for _, n := range net.Nodes() {
		for k := range n.Meta {
			keys[k] = struct{}{}
		}
	}
	header := []string{schema.ColID}
	extra := make([]string, 0, len(keys))
	for k := range keys {
		if k != schema.ColID {
			extra = append(extra, k)
		}
	}
	slices.Sort(extra)
	header = append(header, extra...)

	out := make([]schema.Problem, 0, net.NodeCount())
	for _, n := range net.Nodes() {
		cells := make([]string, len(header))
		cells[0] = n.ID
		for i, k := range extra {
			if v, ok := n.Meta[k]; ok && v != nil {
				cells[i+1] = stringify(v)
			}
		}
		out = append(out, schema.DecodeProblem(header, cells, 0))
	}
	return out
}

// LoadNetwork loads a dataset from file paths.
//
// A problems path ending in .json is read as a graph document and
// edgesPath is ignored. Otherwise both are CSV tables; an empty edgesPath
// or a missing edges file yields an empty edge set, while a missing
// problems file is an error.
func LoadNetwork(problemsPath, edgesPath string) (*Dataset, error) {
	if strings.EqualFold(filepath.Ext(problemsPath), ".json") {
		net, err := ImportJSON(problemsPath)
		if err != nil {
			return nil, err
		}
		return &Dataset{Network: net, Problems: ProblemsFromNetwork(net)}, nil
	}

	pf, err := open(problemsPath)
	if err != nil {
		return nil, err
	}
	defer pf.Close()
	problems, err := ReadProblemsCSV(pf)
	if err != nil {
		return nil, err
	}

	var edges []schema.EdgeRecord
	if edgesPath != "" {
		ef, err := os.Open(edgesPath)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "open %s", edgesPath)
		default:
			defer ef.Close()
			if edges, err = ReadEdgesCSV(ef); err != nil {
				return nil, err
			}
		}
	}

	net, err := BuildNetwork(problems, edges)
	if err != nil {
		return nil, err
	}
	return &Dataset{Network: net, Problems: problems, Edges: edges}, nil
}

func stringify(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return formatFloat(x)
	}
	return fmt.Sprint(v)
}
