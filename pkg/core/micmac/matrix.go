package micmac

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/stratum/pkg/core/network"
)

// Matrix is a dense n×n real matrix stored row-major in a flat buffer.
type Matrix struct {
	n    int
	data []float64
}

// NewMatrix returns an n×n zero matrix.
func NewMatrix(n int) *Matrix {
	return &Matrix{n: n, data: make([]float64, n*n)}
}

// Size returns n.
func (m *Matrix) Size() int { return m.n }

// At returns entry (i, j). Panics if out of range.
func (m *Matrix) At(i, j int) float64 {
	m.check(i, j)
	return m.data[i*m.n+j]
}

// Set assigns entry (i, j). Panics if out of range.
func (m *Matrix) Set(i, j int, v float64) {
	m.check(i, j)
	m.data[i*m.n+j] = v
}

// Add returns m + o. Both must be the same size.
func (m *Matrix) Add(o *Matrix) *Matrix {
	m.same(o)
	out := NewMatrix(m.n)
	for i := range m.data {
		out.data[i] = m.data[i] + o.data[i]
	}
	return out
}

// Mul returns the product m·o. Both must be the same size.
//
// The loop order is i → k → j so the inner loop walks both the output row
// and o's row contiguously; zero entries of m are skipped, which keeps
// sparse influence networks cheap.
func (m *Matrix) Mul(o *Matrix) *Matrix {
	m.same(o)
	n := m.n
	out := NewMatrix(n)
	for i := 0; i < n; i++ {
		rowOut := out.data[i*n : (i+1)*n]
		for k := 0; k < n; k++ {
			a := m.data[i*n+k]
			if a == 0 {
				continue
			}
			rowO := o.data[k*n : (k+1)*n]
			for j, b := range rowO {
				rowOut[j] += a * b
			}
		}
	}
	return out
}

// RowSums returns the sum of each row.
func (m *Matrix) RowSums() []float64 {
	out := make([]float64, m.n)
	for i := 0; i < m.n; i++ {
		var s float64
		for _, v := range m.data[i*m.n : (i+1)*m.n] {
			s += v
		}
		out[i] = s
	}
	return out
}

// ColSums returns the sum of each column.
func (m *Matrix) ColSums() []float64 {
	out := make([]float64, m.n)
	for i := 0; i < m.n; i++ {
		for j, v := range m.data[i*m.n : (i+1)*m.n] {
			out[j] += v
		}
	}
	return out
}

// String renders the matrix with one space-separated row per line.
func (m *Matrix) String() string {
	var b strings.Builder
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(strconv.FormatFloat(m.data[i*m.n+j], 'g', -1, 64))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func (m *Matrix) check(i, j int) {
	if i < 0 || i >= m.n || j < 0 || j >= m.n {
		panic(fmt.Sprintf("micmac: index (%d,%d) out of range for %dx%d matrix", i, j, m.n, m.n))
	}
}

func (m *Matrix) same(o *Matrix) {
	if m.n != o.n {
		panic(fmt.Sprintf("micmac: dimension mismatch %dx%d vs %dx%d", m.n, m.n, o.n, o.n))
	}
}

// Adjacency builds the weighted adjacency matrix of net. Entry (i, j) is the
// sum of the weights of all edges i → j; edges naming unknown nodes are
// skipped. The diagonal holds self-loop weights and nothing else.
func Adjacency(net *network.Network) *Matrix {
	a := NewMatrix(net.NodeCount())
	for _, e := range net.ValidEdges() {
		a.data[e.From*a.n+e.To] += e.Weight
	}
	return a
}
