package ism

import (
	"strings"

	"github.com/matzehuels/stratum/pkg/core/network"
)

// BoolMatrix is a dense n×n boolean relation stored row-major in a flat
// buffer. Index i corresponds to the i-th node in network insertion order.
//
// The zero value is an empty (0×0) matrix.
type BoolMatrix struct {
	n    int
	data []bool
}

// NewBoolMatrix returns an n×n matrix with every entry false.
func NewBoolMatrix(n int) *BoolMatrix {
	return &BoolMatrix{n: n, data: make([]bool, n*n)}
}

// Identity returns an n×n matrix with only the diagonal set.
func Identity(n int) *BoolMatrix {
	m := NewBoolMatrix(n)
	for i := 0; i < n; i++ {
		m.data[i*n+i] = true
	}
	return m
}

// Size returns n.
func (m *BoolMatrix) Size() int { return m.n }

// At reports whether (i, j) is set. Panics if i or j is out of range.
func (m *BoolMatrix) At(i, j int) bool {
	m.check(i, j)
	return m.data[i*m.n+j]
}

// Set assigns (i, j). Panics if i or j is out of range.
func (m *BoolMatrix) Set(i, j int, v bool) {
	m.check(i, j)
	m.data[i*m.n+j] = v
}

// Close computes the transitive closure of m in place (Warshall).
//
// For every intermediate k in index order, each row i with (i, k) set is
// OR-ed with row k. Each pass sees the rows as already widened by earlier
// passes, which is what makes a single sweep over k sufficient.
//
// Time is O(n³), no extra space. A 0×0 matrix is left untouched.
func (m *BoolMatrix) Close() {
	n := m.n
	d := m.data
	for k := 0; k < n; k++ {
		rowK := d[k*n : (k+1)*n]
		for i := 0; i < n; i++ {
			if !d[i*n+k] {
				continue
			}
			rowI := d[i*n : (i+1)*n]
			for j, v := range rowK {
				if v {
					rowI[j] = true
				}
			}
		}
	}
}

// String renders the matrix as rows of 0/1 digits, one row per line.
func (m *BoolMatrix) String() string {
	var b strings.Builder
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if m.data[i*m.n+j] {
				b.WriteByte('1')
			} else {
				b.WriteByte('0')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *BoolMatrix) check(i, j int) {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		panic("ism: matrix index out of range")
	}
}

// Reachability builds the closed reachability matrix of net.
//
// The matrix starts as the identity (every node reaches itself), gains one
// entry per edge whose endpoints are both known nodes, and is then closed
// with [BoolMatrix.Close]. Edges naming unknown nodes are skipped. An empty
// network yields a 0×0 matrix.
func Reachability(net *network.Network) *BoolMatrix {
	r := Direct(net)
	r.Close()
	return r
}

// Direct builds the reflexive one-step relation of net without closing it.
func Direct(net *network.Network) *BoolMatrix {
	r := Identity(net.NodeCount())
	for _, e := range net.ValidEdges() {
		r.data[e.From*r.n+e.To] = true
	}
	return r
}
