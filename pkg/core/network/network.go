package network

import (
	"errors"
	"math"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Network.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Network.AddNode] when a node with the
	// same ID already exists. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrInvalidWeight is returned by [Network.AddEdge] when an edge carries a
	// negative, infinite or NaN weight. Influence and dependence scores are
	// finite non-negative sums of weights.
	ErrInvalidWeight = errors.New("edge weight must be a finite non-negative number")
)

// DefaultWeight is the weight assigned to edges whose weight is absent.
const DefaultWeight = 1.0

// Metadata stores arbitrary key-value pairs attached to nodes or edges, such
// as the title, sector or impact columns of a problem table. Metadata maps are
// never nil after AddNode/AddEdge.
type Metadata map[string]any

// Node is a problem in the network. Only the ID matters to the analysis; Meta
// carries whatever the input table had alongside it.
type Node struct {
	ID   string   // Unique identifier
	Meta Metadata // Arbitrary key-value metadata (never nil after AddNode)
}

// Edge is a directed influence link From → To with a non-negative weight.
type Edge struct {
	From   string   // Source node ID
	To     string   // Target node ID
	Weight float64  // Influence weight (DefaultWeight when the input had none)
	Meta   Metadata // Arbitrary key-value metadata (never nil after AddEdge)
}

// Network is a directed, optionally weighted graph of problem nodes.
//
// Unlike a DAG, cycles, self-loops and parallel edges are all allowed. The
// node set is static: insertion order defines the "original node order" used
// to order output tables. Edges may reference identifiers that were never
// added as nodes; such edges are kept (see [Network.Dangling]) but take no
// part in any matrix built from the network.
//
// The zero value is not usable - use New. Network is not safe for concurrent
// mutation; concurrent reads are fine once construction is done.
type Network struct {
	nodes []*Node
	index map[string]int
	edges []Edge
	meta  Metadata
}

// New creates an empty network with optional network-level metadata.
func New(meta Metadata) *Network {
	if meta == nil {
		meta = Metadata{}
	}
	return &Network{
		index: make(map[string]int),
		meta:  meta,
	}
}

// Meta returns the network-level metadata map. It is never nil.
func (n *Network) Meta() Metadata { return n.meta }

// AddNode appends a node to the network. Returns ErrInvalidNodeID for an
// empty ID or ErrDuplicateNodeID if the ID is already present.
func (n *Network) AddNode(node Node) error {
	if node.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := n.index[node.ID]; exists {
		return ErrDuplicateNodeID
	}
	if node.Meta == nil {
		node.Meta = Metadata{}
	}
	n.index[node.ID] = len(n.nodes)
	n.nodes = append(n.nodes, &node)
	return nil
}

// AddEdge records a directed edge. Endpoints are not required to exist:
// an edge naming an unknown node is accepted and later ignored by the
// analyses. Returns ErrInvalidWeight for weights below zero, infinite
// or NaN.
func (n *Network) AddEdge(e Edge) error {
	if !(e.Weight >= 0) || math.IsInf(e.Weight, 1) {
		return ErrInvalidWeight
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	n.edges = append(n.edges, e)
	return nil
}

// Nodes returns the nodes in insertion order. The pointers refer to the
// network's own nodes.
func (n *Network) Nodes() []*Node { return slices.Clone(n.nodes) }

// IDs returns node IDs in insertion order.
func (n *Network) IDs() []string {
	ids := make([]string, len(n.nodes))
	for i, node := range n.nodes {
		ids[i] = node.ID
	}
	return ids
}

// Node returns the node with the given ID and true, or nil and false.
func (n *Network) Node(id string) (*Node, bool) {
	i, ok := n.index[id]
	if !ok {
		return nil, false
	}
	return n.nodes[i], true
}

// Edges returns a copy of every recorded edge, dangling ones included, in
// insertion order.
func (n *Network) Edges() []Edge { return slices.Clone(n.edges) }

// NodeCount returns the number of nodes.
func (n *Network) NodeCount() int { return len(n.nodes) }

// EdgeCount returns the number of recorded edges, dangling ones included.
func (n *Network) EdgeCount() int { return len(n.edges) }

// IndexedEdge is an edge whose endpoints have been resolved to matrix indices.
type IndexedEdge struct {
	From, To int
	Weight   float64
}

// ValidEdges returns the edges whose endpoints are both known nodes, resolved
// to matrix indices, in insertion order.
func (n *Network) ValidEdges() []IndexedEdge {
	out := make([]IndexedEdge, 0, len(n.edges))
	for _, e := range n.edges {
		src, okS := n.index[e.From]
		dst, okD := n.index[e.To]
		if okS && okD {
			out = append(out, IndexedEdge{From: src, To: dst, Weight: e.Weight})
		}
	}
	return out
}

// Dangling returns the edges that reference at least one unknown node.
// These are tolerated, not errors; callers typically log them.
func (n *Network) Dangling() []Edge {
	var out []Edge
	for _, e := range n.edges {
		_, okS := n.index[e.From]
		_, okD := n.index[e.To]
		if !okS || !okD {
			out = append(out, e)
		}
	}
	return out
}
