// Package segment finds coherent contiguous regions in an ordered sequence of
// line vectors.
//
// A GramMatrix of pairwise cosine similarities feeds a Cost, a Partitioner
// computes the exact minimum-cost split into K+1 segments with dynamic
// programming, and a Selector scores candidate values of K with AIC.
package segment

import (
	"math"
)

// GramMatrix is an immutable n×n cosine similarity matrix.
//
// Rows with zero norm have similarity 0 to every row, themselves included.
type GramMatrix struct {
	n    int
	data []float64
}

// BuildGram computes pairwise cosine similarities between the given rows.
func BuildGram(rows [][]float64) (*GramMatrix, error) {
	n := len(rows)
	if n == 0 {
		return nil, ErrEmptyCorpus
	}
	if err := validateRows(rows); err != nil {
		return nil, err
	}
	norms := make([]float64, n)
	for i, r := range rows {
		norms[i] = math.Sqrt(dot(r, r))
	}
	g := &GramMatrix{n: n, data: make([]float64, n*n)}
	for i := 0; i < n; i++ {
		if norms[i] == 0 {
			continue
		}
		g.data[i*n+i] = 1
		for j := i + 1; j < n; j++ {
			if norms[j] == 0 {
				continue
			}
			v := dot(rows[i], rows[j]) / (norms[i] * norms[j])
			// rounding can push |v| slightly past 1
			if v > 1 {
				v = 1
			} else if v < -1 {
				v = -1
			}
			g.data[i*n+j] = v
			g.data[j*n+i] = v
		}
	}
	return g, nil
}

// NewGramMatrix wraps a precomputed square similarity matrix.
// The matrix must be symmetric.
func NewGramMatrix(m [][]float64) (*GramMatrix, error) {
	n := len(m)
	if n == 0 {
		return nil, ErrEmptyCorpus
	}
	g := &GramMatrix{n: n, data: make([]float64, n*n)}
	for i, row := range m {
		if len(row) != n {
			return nil, malformed("row %d has %d columns, want %d", i, len(row), n)
		}
		for j, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, malformed("non-finite value at (%d,%d)", i, j)
			}
			g.data[i*n+j] = v
		}
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if g.data[i*n+j] != g.data[j*n+i] {
				return nil, malformed("matrix not symmetric at (%d,%d)", i, j)
			}
		}
	}
	return g, nil
}

// Len returns the number of lines.
func (g *GramMatrix) Len() int { return g.n }

// At returns G[i][j].
func (g *GramMatrix) At(i, j int) float64 { return g.data[i*g.n+j] }

// Row returns a copy of row i.
func (g *GramMatrix) Row(i int) []float64 {
	out := make([]float64, g.n)
	copy(out, g.data[i*g.n:(i+1)*g.n])
	return out
}

func validateRows(rows [][]float64) error {
	d := len(rows[0])
	for i, r := range rows {
		if len(r) != d {
			return malformed("row %d has %d features, want %d", i, len(r), d)
		}
		for j, v := range r {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return malformed("non-finite value at (%d,%d)", i, j)
			}
		}
	}
	return nil
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
