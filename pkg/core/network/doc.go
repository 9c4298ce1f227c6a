// Package network provides the directed problem network analysed by the
// ism and micmac packages.
//
// # Overview
//
// A [Network] is a static set of problem nodes plus a list of directed,
// weighted influence edges. Both structural analyses consume it:
//
//   - ism builds a boolean reachability matrix and levels the nodes
//   - micmac builds a weighted adjacency matrix and scores the nodes
//
// Matrices are dense n×n arenas indexed through [Network.Index], which maps
// each node ID to its position in insertion order. That order is the
// "original node order" every output table preserves.
//
// # Tolerance
//
// Edges may name identifiers that are not in the node set. They are stored
// so they can be reported ([Network.Dangling]) but [Network.ValidEdges]
// excludes them, so they contribute nothing to either matrix. This mirrors
// how problem tables are maintained by hand: an edge row can outlive the
// problem it points at.
//
// Cycles, self-loops and parallel edges are all valid. Parallel edge weights
// accumulate in the adjacency matrix.
//
// # Basic Usage
//
//	net := network.New(nil)
//	_ = net.AddNode(network.Node{ID: "P1"})
//	_ = net.AddNode(network.Node{ID: "P2"})
//	_ = net.AddEdge(network.Edge{From: "P1", To: "P2", Weight: 1})
package network
