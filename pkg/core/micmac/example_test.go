package micmac_test

import (
	"fmt"

	"github.com/matzehuels/stratum/pkg/core/micmac"
	"github.com/matzehuels/stratum/pkg/core/network"
)

func ExampleAnalyze() {
	net := network.New(nil)
	for _, id := range []string{"A", "B", "C"} {
		_ = net.AddNode(network.Node{ID: id})
	}
	_ = net.AddEdge(network.Edge{From: "A", To: "B", Weight: 1})
	_ = net.AddEdge(network.Edge{From: "B", To: "C", Weight: 1})

	for _, s := range micmac.Analyze(net) {
		fmt.Printf("%s I=%g D=%g %s\n", s.ID, s.Influence, s.Dependence, s.Class)
	}
	// Output:
	// A I=2 D=0 Driver
	// B I=1 D=1 Driver
	// C I=0 D=2 Dependent
}

func ExampleClassify() {
	fmt.Println(micmac.Classify(4, 1))
	fmt.Println(micmac.Classify(1, 4))
	fmt.Println(micmac.Classify(0, 4))
	fmt.Println(micmac.Classify(0, 0))
	// Output:
	// Driver
	// Linkage
	// Dependent
	// Autonomous
}
