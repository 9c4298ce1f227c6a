package ism

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/stratum/pkg/core/network"
)

const maxPropNodes = 8

// randomNetwork decodes (n, codes) into a network of n nodes where each code
// c names the edge (c/maxPropNodes mod n) → (c mod n).
func randomNetwork(n int, codes []int) *network.Network {
	net := network.New(nil)
	for i := 0; i < n; i++ {
		_ = net.AddNode(network.Node{ID: fmt.Sprintf("n%d", i)})
	}
	if n == 0 {
		return net
	}
	for _, c := range codes {
		from := (c / maxPropNodes) % n
		to := (c % maxPropNodes) % n
		_ = net.AddEdge(network.Edge{From: fmt.Sprintf("n%d", from), To: fmt.Sprintf("n%d", to), Weight: 1})
	}
	return net
}

// bfsReach is an independent reachability oracle.
func bfsReach(net *network.Network) [][]bool {
	n := net.NodeCount()
	adj := make([][]int, n)
	for _, e := range net.ValidEdges() {
		adj[e.From] = append(adj[e.From], e.To)
	}
	out := make([][]bool, n)
	for s := 0; s < n; s++ {
		seen := make([]bool, n)
		seen[s] = true
		queue := []int{s}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			for _, nx := range adj[cur] {
				if !seen[nx] {
					seen[nx] = true
					queue = append(queue, nx)
				}
			}
		}
		out[s] = seen
	}
	return out
}

func graphGens() []gopter.Gen {
	return []gopter.Gen{
		gen.IntRange(0, maxPropNodes),
		gen.SliceOf(gen.IntRange(0, maxPropNodes*maxPropNodes-1)),
	}
}

func TestReachabilityProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("closure is reflexive", prop.ForAll(
		func(n int, codes []int) bool {
			r := Reachability(randomNetwork(n, codes))
			for i := 0; i < n; i++ {
				if !r.At(i, i) {
					return false
				}
			}
			return true
		},
		graphGens()...,
	))

	properties.Property("closure is transitive", prop.ForAll(
		func(n int, codes []int) bool {
			r := Reachability(randomNetwork(n, codes))
			for i := 0; i < n; i++ {
				for k := 0; k < n; k++ {
					if !r.At(i, k) {
						continue
					}
					for j := 0; j < n; j++ {
						if r.At(k, j) && !r.At(i, j) {
							return false
						}
					}
				}
			}
			return true
		},
		graphGens()...,
	))

	properties.Property("closure matches breadth-first search", prop.ForAll(
		func(n int, codes []int) bool {
			net := randomNetwork(n, codes)
			r := Reachability(net)
			want := bfsReach(net)
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					if r.At(i, j) != want[i][j] {
						return false
					}
				}
			}
			return true
		},
		graphGens()...,
	))

	properties.TestingRun(t)
}

func TestPartitionProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("every node is placed exactly once", prop.ForAll(
		func(n int, codes []int) bool {
			for _, mode := range []Mode{ModeCycleAware, ModeStrict} {
				lv := Partition(Reachability(randomNetwork(n, codes)), mode)
				seen := make([]int, n)
				for _, g := range lv.Groups {
					if len(g) == 0 {
						return false
					}
					for _, i := range g {
						seen[i]++
					}
				}
				for _, c := range seen {
					if c != 1 {
						return false
					}
				}
				if lv.Count() > n {
					return false
				}
			}
			return true
		},
		graphGens()...,
	))

	properties.Property("upstream nodes sit on strictly higher levels", prop.ForAll(
		func(n int, codes []int) bool {
			r := Reachability(randomNetwork(n, codes))
			level := Partition(r, ModeCycleAware).Assignment(n)
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					if i != j && r.At(i, j) && !r.At(j, i) && level[i] <= level[j] {
						return false
					}
				}
			}
			return true
		},
		graphGens()...,
	))

	properties.Property("mutually reachable nodes share a level", prop.ForAll(
		func(n int, codes []int) bool {
			r := Reachability(randomNetwork(n, codes))
			level := Partition(r, ModeCycleAware).Assignment(n)
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					if r.At(i, j) && r.At(j, i) && level[i] != level[j] {
						return false
					}
				}
			}
			return true
		},
		graphGens()...,
	))

	properties.Property("closed input never needs the fallback", prop.ForAll(
		func(n int, codes []int) bool {
			return !Partition(Reachability(randomNetwork(n, codes)), ModeCycleAware).Fallback
		},
		graphGens()...,
	))

	properties.TestingRun(t)
}
