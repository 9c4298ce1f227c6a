package micmac

import (
	"cmp"
	"slices"

	"github.com/matzehuels/stratum/pkg/core/network"
)

// Hops is the path length propagation stops at: scores sum A, A² and A³.
const Hops = 3

// Score is one row of the structural-score table.
type Score struct {
	ID string `json:"id"`

	// Influence and Dependence are the row and column sums of A + A² + A³.
	Influence  float64 `json:"influence"`
	Dependence float64 `json:"dependence"`

	// DirectInfluence and DirectDependence are the row and column sums of A.
	DirectInfluence  float64 `json:"direct_influence"`
	DirectDependence float64 `json:"direct_dependence"`

	Class Class `json:"micmac_class"`
}

// Analyze scores every node of net, in original node order.
//
// A is the weighted adjacency matrix ([Adjacency]). The total influence of a
// node is the sum of its row in A + A² + A³, its dependence the sum of its
// column, so each score counts weighted paths of one, two and three hops.
// Weights are not normalised and large dense networks produce large numbers.
func Analyze(net *network.Network) []Score {
	a := Adjacency(net)
	total := a
	power := a
	for h := 2; h <= Hops; h++ {
		power = power.Mul(a)
		total = total.Add(power)
	}

	directIn, directDep := a.RowSums(), a.ColSums()
	infl, dep := total.RowSums(), total.ColSums()

	ids := net.IDs()
	out := make([]Score, len(ids))
	for i, id := range ids {
		out[i] = Score{
			ID:               id,
			Influence:        infl[i],
			Dependence:       dep[i],
			DirectInfluence:  directIn[i],
			DirectDependence: directDep[i],
			Class:            Classify(infl[i], dep[i]),
		}
	}
	return out
}

// TopDrivers returns up to n scores ordered by influence, highest first.
// Ties keep their original order. The input is not modified.
func TopDrivers(scores []Score, n int) []Score {
	sorted := slices.Clone(scores)
	slices.SortStableFunc(sorted, func(a, b Score) int {
		return cmp.Compare(b.Influence, a.Influence)
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// CountByClass tallies scores per class.
func CountByClass(scores []Score) map[Class]int {
	out := make(map[Class]int, 4)
	for _, s := range scores {
		out[s.Class]++
	}
	return out
}
