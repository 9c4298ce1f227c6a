package micmac

import (
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/matzehuels/stratum/pkg/core/network"
)

const maxPropNodes = 7

// randomNetwork decodes (n, codes) into a network of n nodes; each code c is
// the edge (c/maxPropNodes mod n) → (c mod n) with weight 1 + c%3.
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
		_ = net.AddEdge(network.Edge{
			From:   fmt.Sprintf("n%d", from),
			To:     fmt.Sprintf("n%d", to),
			Weight: float64(1 + c%3),
		})
	}
	return net
}

func TestScoreProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	graph := []gopter.Gen{
		gen.IntRange(1, maxPropNodes),
		gen.SliceOf(gen.IntRange(0, maxPropNodes*maxPropNodes-1)),
	}

	properties.Property("scores are non-negative", prop.ForAll(
		func(n int, codes []int) bool {
			for _, s := range Analyze(randomNetwork(n, codes)) {
				if s.Influence < 0 || s.Dependence < 0 {
					return false
				}
			}
			return true
		},
		graph...,
	))

	properties.Property("total influence equals total dependence", prop.ForAll(
		func(n int, codes []int) bool {
			var in, dep float64
			for _, s := range Analyze(randomNetwork(n, codes)) {
				in += s.Influence
				dep += s.Dependence
			}
			return approx(in, dep)
		},
		graph...,
	))

	properties.Property("totals dominate direct scores", prop.ForAll(
		func(n int, codes []int) bool {
			for _, s := range Analyze(randomNetwork(n, codes)) {
				if s.Influence < s.DirectInfluence || s.Dependence < s.DirectDependence {
					return false
				}
			}
			return true
		},
		graph...,
	))

	properties.Property("adding an edge never lowers its endpoints' scores", prop.ForAll(
		func(n int, codes []int, extra int) bool {
			before := Analyze(randomNetwork(n, codes))
			after := Analyze(randomNetwork(n, append(codes, extra)))
			from := (extra / maxPropNodes) % n
			to := (extra % maxPropNodes) % n
			return after[from].Influence >= before[from].Influence &&
				after[to].Dependence >= before[to].Dependence
		},
		gen.IntRange(1, maxPropNodes),
		gen.SliceOf(gen.IntRange(0, maxPropNodes*maxPropNodes-1)),
		gen.IntRange(0, maxPropNodes*maxPropNodes-1),
	))

	properties.Property("every node gets exactly the class Classify assigns", prop.ForAll(
		func(n int, codes []int) bool {
			for _, s := range Analyze(randomNetwork(n, codes)) {
				if s.Class != Classify(s.Influence, s.Dependence) {
					return false
				}
				if s.Class > Linkage {
					return false
				}
			}
			return true
		},
		graph...,
	))

	properties.TestingRun(t)
}

func TestClassifyProperties(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	score := gen.Float64Range(0, 100)

	properties.Property("Linkage only when dependence strictly exceeds influence", prop.ForAll(
		func(i, d float64) bool {
			if Classify(i, d) == Linkage {
				return i > 0 && d > i
			}
			return true
		},
		score, score,
	))

	properties.Property("Dependent only with zero influence", prop.ForAll(
		func(i, d float64) bool {
			if Classify(i, d) == Dependent {
				return i == 0 && d > 0
			}
			return true
		},
		score, score,
	))

	properties.TestingRun(t)
}
