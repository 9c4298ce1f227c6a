package network

import (
	"errors"
	"math"
	"testing"
)

func TestAddNode(t *testing.T) {
	n := New(nil)

	if err := n.AddNode(Node{ID: "a"}); err != nil {
		t.Fatalf("AddNode(a): %v", err)
	}
	if err := n.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(a) again = %v, want ErrDuplicateNodeID", err)
	}
	if err := n.AddNode(Node{ID: ""}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(\"\") = %v, want ErrInvalidNodeID", err)
	}

	node, ok := n.Node("a")
	if !ok {
		t.Fatal("node a not found")
	}
	if node.Meta == nil {
		t.Error("Meta should be initialised")
	}
}

func TestInsertionOrder(t *testing.T) {
	n := New(nil)
	for _, id := range []string{"c", "a", "b"} {
		_ = n.AddNode(Node{ID: id})
	}

	ids := n.IDs()
	want := []string{"c", "a", "b"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("IDs() = %v, want %v", ids, want)
		}
	}
}

func TestAddEdgeInvalidWeight(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
	}{
		{"negative", -1},
		{"positive infinity", math.Inf(1)},
		{"negative infinity", math.Inf(-1)},
		{"nan", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(nil)
			if err := n.AddEdge(Edge{From: "a", To: "b", Weight: tt.weight}); !errors.Is(err, ErrInvalidWeight) {
				t.Errorf("AddEdge = %v, want ErrInvalidWeight", err)
			}
			if n.EdgeCount() != 0 {
				t.Errorf("EdgeCount() = %d, want 0", n.EdgeCount())
			}
		})
	}

	n := New(nil)
	if err := n.AddEdge(Edge{From: "a", To: "b", Weight: math.MaxFloat64}); err != nil {
		t.Errorf("AddEdge(max finite) = %v", err)
	}
}

func TestValidEdgesAndDangling(t *testing.T) {
	n := New(nil)
	_ = n.AddNode(Node{ID: "a"})
	_ = n.AddNode(Node{ID: "b"})
	_ = n.AddEdge(Edge{From: "a", To: "b", Weight: 2})
	_ = n.AddEdge(Edge{From: "a", To: "ghost", Weight: 1})
	_ = n.AddEdge(Edge{From: "ghost", To: "b", Weight: 1})
	_ = n.AddEdge(Edge{From: "b", To: "b", Weight: 1})

	valid := n.ValidEdges()
	if len(valid) != 2 {
		t.Fatalf("ValidEdges() = %d edges, want 2", len(valid))
	}
	if valid[0] != (IndexedEdge{From: 0, To: 1, Weight: 2}) {
		t.Errorf("ValidEdges()[0] = %+v", valid[0])
	}
	if valid[1] != (IndexedEdge{From: 1, To: 1, Weight: 1}) {
		t.Errorf("ValidEdges()[1] = %+v", valid[1])
	}

	if got := len(n.Dangling()); got != 2 {
		t.Errorf("Dangling() = %d edges, want 2", got)
	}
	if n.EdgeCount() != 4 {
		t.Errorf("EdgeCount() = %d, want 4", n.EdgeCount())
	}
}

func TestEmptyNetwork(t *testing.T) {
	n := New(nil)
	if n.NodeCount() != 0 || len(n.ValidEdges()) != 0 || n.Dangling() != nil {
		t.Error("empty network should have no nodes or edges")
	}
}
