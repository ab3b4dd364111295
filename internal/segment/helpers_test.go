package segment

import (
	"math/rand/v2"
)

func identityRows(n int) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, n)
		rows[i][i] = 1
	}
	return rows
}

// blockRows returns sizes[0] copies of e_0, then sizes[1] copies of e_1, ...
func blockRows(sizes ...int) [][]float64 {
	var rows [][]float64
	for b, size := range sizes {
		for i := 0; i < size; i++ {
			r := make([]float64, len(sizes))
			r[b] = 1
			rows = append(rows, r)
		}
	}
	return rows
}

func randomRows(r *rand.Rand, n, d int) [][]float64 {
	rows := make([][]float64, n)
	for i := range rows {
		rows[i] = make([]float64, d)
		for j := range rows[i] {
			if r.IntN(3) == 0 {
				rows[i][j] = float64(r.IntN(4))
			}
		}
	}
	return rows
}

// combinations calls fn with every strictly increasing k-subset of [lo, hi].
func combinations(lo, hi, k int, fn func([]int)) {
	cur := make([]int, 0, k)
	var rec func(start int)
	rec = func(start int) {
		if len(cur) == k {
			fn(append([]int(nil), cur...))
			return
		}
		for v := start; v <= hi; v++ {
			cur = append(cur, v)
			rec(v + 1)
			cur = cur[:len(cur)-1]
		}
	}
	rec(lo)
}
